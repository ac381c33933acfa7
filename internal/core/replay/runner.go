package replay

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/rs/zerolog"

	"github.com/colonyops/rowsync/internal/core/coordinator"
	"github.com/colonyops/rowsync/internal/core/eventbus"
	"github.com/colonyops/rowsync/internal/core/logging"
	"github.com/colonyops/rowsync/internal/core/sections"
	"github.com/colonyops/rowsync/internal/core/surface"
	"github.com/colonyops/rowsync/internal/core/surface/simsurface"
)

var (
	// ErrDesync reports a surface whose shape disagrees with the coordinator
	// after a step, or that saw a primitive it could not apply.
	ErrDesync = errors.New("surface out of sync")

	// ErrExpectation reports a step that did not fail the way it declared.
	ErrExpectation = errors.New("expectation not met")

	// errAborted is returned by a batch marked fail after its steps ran.
	errAborted = errors.New("batch aborted")
)

var expectedErrors = map[string]error{
	"invalid_index":   coordinator.ErrInvalidIndex,
	"empty_diff":      coordinator.ErrEmptyDiff,
	"reentrant_batch": coordinator.ErrReentrantBatch,
}

// Options configures a run. Script-level settings override Strict and
// Animated.
type Options struct {
	Strict    bool
	Animated  bool
	Animation surface.Animation
	Scroll    surface.ScrollPosition

	Width, Height int

	Logger *zerolog.Logger
	Bus    *eventbus.EventBus
}

// StepResult describes one top-level step.
type StepResult struct {
	Index int
	Kind  string
	Err   error
	Ops   []string
	Shape []int
}

// Report is the outcome of a run. On failure it holds everything up to and
// including the failing step.
type Report struct {
	Script      string
	Steps       []StepResult
	Calls       []simsurface.Call
	Shape       []int
	Sections    []sections.Section[string]
	Completions []bool
}

type runner struct {
	opts     Options
	animated bool
	log      zerolog.Logger

	store  *sections.Store[string]
	sim    *simsurface.Surface
	c      *coordinator.Coordinator[string]
	report *Report
}

// Run executes s against a fresh simulator and coordinator.
func Run(ctx context.Context, s *Script, opts Options) (*Report, error) {
	if opts.Width <= 0 {
		opts.Width = 80
	}
	if opts.Height <= 0 {
		opts.Height = 24
	}
	if s.Strict != nil {
		opts.Strict = *s.Strict
	}
	if s.Animated != nil {
		opts.Animated = *s.Animated
	}

	log := logging.Component("replay")
	if opts.Logger != nil {
		log = *opts.Logger
	}
	ctx = logging.WithScript(ctx, s.Name)

	r := &runner{
		opts:     opts,
		animated: opts.Animated,
		log:      log,
		store:    sections.New[string](nil, toSections(s.Sections)...),
		sim:      simsurface.New(opts.Width, opts.Height),
		report:   &Report{Script: s.Name},
	}
	r.c = coordinator.New[string](r.sim, r.store, nil, coordinator.Options{
		Owner:     s.Name,
		Strict:    opts.Strict,
		Animated:  opts.Animated,
		Animation: opts.Animation,
		Bus:       opts.Bus,
		Logger:    &log,
	})

	if err := r.c.ReloadData(); err != nil {
		return r.finish(), fmt.Errorf("initial reload: %w", err)
	}

	for i, step := range s.Steps {
		if err := ctx.Err(); err != nil {
			return r.finish(), err
		}
		stepCtx := logging.WithStep(ctx, i)

		before := len(r.sim.Calls())
		got, err := r.run(step)
		r.sim.Flush()

		result := StepResult{
			Index: i,
			Kind:  step.Kind(),
			Err:   got,
			Ops:   opNames(r.sim.Calls()[before:]),
			Shape: r.c.Shape(),
		}
		r.report.Steps = append(r.report.Steps, result)

		if err != nil {
			r.log.Error().Ctx(stepCtx).Err(err).Str("kind", result.Kind).Msg("step failed")
			return r.finish(), fmt.Errorf("step %d (%s): %w", i, result.Kind, err)
		}
		if err := r.checkSync(); err != nil {
			r.log.Error().Ctx(stepCtx).Err(err).Str("kind", result.Kind).Msg("surface out of sync")
			return r.finish(), fmt.Errorf("step %d (%s): %w", i, result.Kind, err)
		}

		r.log.Debug().Ctx(stepCtx).
			Str("kind", result.Kind).
			Strs("ops", result.Ops).
			Ints("shape", result.Shape).
			Msg("step done")
	}

	return r.finish(), nil
}

func (r *runner) finish() *Report {
	r.report.Calls = r.sim.Calls()
	r.report.Shape = r.c.Shape()
	r.report.Sections = r.store.Sections()
	return r.report
}

func (r *runner) checkSync() error {
	if v := r.sim.Violations(); len(v) > 0 {
		return fmt.Errorf("%w: %w", ErrDesync, errors.Join(v...))
	}
	if want, got := r.c.Shape(), r.sim.Shape(); !slices.Equal(want, got) {
		return fmt.Errorf("%w: coordinator %v, surface %v", ErrDesync, want, got)
	}
	return nil
}

// run performs step and checks it against its expectation. got is the error
// the step produced; err is non-nil only when got was not what the step
// declared.
func (r *runner) run(step Step) (got error, err error) {
	got = r.apply(step)

	if step.Expect != "" {
		if !errors.Is(got, expectedErrors[step.Expect]) {
			return got, fmt.Errorf("%w: want %s, got %v", ErrExpectation, step.Expect, got)
		}
		return got, nil
	}
	if got != nil && !errors.Is(got, errAborted) {
		return got, got
	}
	return got, nil
}

// apply runs step against the model and the coordinator. The model is edited
// first so cells configured during the update show the new content; when the
// coordinator rejects the step the model is restored.
func (r *runner) apply(step Step) (err error) {
	snapshot := r.store.Sections()
	defer func() {
		if rec := recover(); rec != nil {
			perr, ok := rec.(error)
			if !ok {
				panic(rec)
			}
			err = perr
		}
		if err != nil {
			r.store.Set(snapshot)
		}
	}()

	switch {
	case step.Reload != nil:
		if step.Reload.Sections != nil {
			r.store.Set(toSections(step.Reload.Sections))
		}
		return r.c.ReloadData()

	case step.InsertRows != nil:
		s := step.InsertRows
		values := padValues(s.Values, len(s.Rows))
		_ = r.store.InsertRows(s.Section, s.Rows, values)
		return r.c.InsertRows(s.Section, posts(s.Rows), values...)

	case step.DeleteRows != nil:
		s := step.DeleteRows
		_ = r.store.DeleteRows(s.Section, s.Rows)
		return r.c.DeleteRows(s.Section, pres(s.Rows)...)

	case step.ReloadRows != nil:
		s := step.ReloadRows
		if len(s.Values) == len(s.Rows) {
			for i, row := range s.Rows {
				_ = r.store.SetRow(surface.Path(s.Section, row), s.Values[i])
			}
		}
		return r.c.ReloadRows(s.Section, pres(s.Rows), s.Values...)

	case step.MoveRow != nil:
		s := step.MoveRow
		to := s.Section
		if s.ToSection != nil {
			to = *s.ToSection
		}
		if to == s.Section {
			_ = r.store.MoveRow(s.Section, s.From, s.To)
		}
		return r.c.MoveRow(surface.Path(s.Section, s.From), surface.Path(to, s.To))

	case step.InsertSections != nil:
		s := step.InsertSections
		added := s.New
		if added == nil {
			added = make([]Section, len(s.Sections))
		}
		_ = r.store.InsertSections(s.Sections, toSections(added))
		rows := make([][]string, len(added))
		for i, sec := range added {
			rows[i] = sec.Rows
		}
		return r.c.InsertSections(posts(s.Sections), rows...)

	case step.DeleteSections != nil:
		s := step.DeleteSections
		_ = r.store.DeleteSections(s.Sections)
		return r.c.DeleteSections(pres(s.Sections)...)

	case step.ReloadSections != nil:
		s := step.ReloadSections
		var rows [][]string
		if len(s.New) == len(s.Sections) {
			for i, sec := range s.New {
				_ = r.store.SetSection(s.Sections[i], sec.Rows)
				rows = append(rows, sec.Rows)
			}
		}
		return r.c.ReloadSections(pres(s.Sections), rows...)

	case step.MoveSection != nil:
		s := step.MoveSection
		_ = r.store.MoveSection(s.From, s.To)
		return r.c.MoveSection(coordinator.Pre(s.From), coordinator.Post(s.To))

	case step.Diff != nil:
		return r.applyDiff(step.Diff)

	case step.SectionDiff != nil:
		return r.applySectionDiff(step.SectionDiff)

	case step.Batch != nil:
		return r.applyBatch(step.Batch)

	case step.Select != nil:
		s := step.Select
		return r.c.SelectRow(surface.Path(s.Section, s.Row), s.Animated, r.position(s.Position))

	case step.Deselect != nil:
		s := step.Deselect
		return r.c.DeselectRow(surface.Path(s.Section, s.Row), s.Animated)

	case step.Scroll != nil:
		s := step.Scroll
		return r.c.ScrollToRow(surface.Path(s.Section, s.Row), r.position(s.Position), s.Animated)
	}

	return fmt.Errorf("step has no operation")
}

func (r *runner) applyDiff(s *DiffStep) error {
	_ = r.store.DeleteRows(s.Section, s.Delete)
	inserted := make([]string, len(s.Insert))
	for i, row := range s.Insert {
		inserted[i] = s.Values[row]
	}
	_ = r.store.InsertRows(s.Section, s.Insert, inserted)
	for _, row := range s.Modify {
		if v, ok := s.Values[row]; ok {
			_ = r.store.SetRow(surface.Path(s.Section, row), v)
		}
	}

	values := make(map[coordinator.Post]string, len(s.Values))
	for row, v := range s.Values {
		values[coordinator.Post(row)] = v
	}
	return r.c.ApplyRowDiff(s.Section, coordinator.RowDiff[string]{
		Deletions:     pres(s.Delete),
		Insertions:    posts(s.Insert),
		Modifications: posts(s.Modify),
		Values:        values,
	})
}

func (r *runner) applySectionDiff(s *SectionDiffStep) error {
	_ = r.store.DeleteSections(s.Delete)
	inserted := make([]sections.Section[string], len(s.Insert))
	for i, at := range s.Insert {
		sec := s.Sections[at]
		inserted[i] = sections.Section[string]{Title: sec.Title, Rows: sec.Rows}
	}
	_ = r.store.InsertSections(s.Insert, inserted)
	for _, at := range s.Modify {
		if sec, ok := s.Sections[at]; ok {
			_ = r.store.SetSection(at, sec.Rows)
		}
	}

	rows := make(map[coordinator.Post][]string, len(s.Sections))
	for at, sec := range s.Sections {
		rows[coordinator.Post(at)] = sec.Rows
	}
	return r.c.ApplySectionDiff(coordinator.SectionDiff[string]{
		Deletions:     pres(s.Delete),
		Insertions:    posts(s.Insert),
		Modifications: posts(s.Modify),
		Rows:          rows,
	})
}

func (r *runner) applyBatch(s *BatchStep) error {
	animated := r.animated
	if s.Animated != nil {
		animated = *s.Animated
	}

	return r.c.PerformBatch(coordinator.Batch{
		Animated:  animated,
		Animation: r.opts.Animation,
		Completion: func(finished bool) {
			r.report.Completions = append(r.report.Completions, finished)
		},
	}, func() error {
		for _, inner := range s.Steps {
			if _, err := r.run(inner); err != nil {
				return err
			}
		}
		if s.Fail {
			return errAborted
		}
		return nil
	})
}

func (r *runner) position(name string) surface.ScrollPosition {
	if name == "" {
		return r.opts.Scroll
	}
	pos, err := surface.ParseScrollPosition(name)
	if err != nil {
		return r.opts.Scroll
	}
	return pos
}

func opNames(calls []simsurface.Call) []string {
	out := make([]string, 0, len(calls))
	for _, c := range calls {
		if c.Name == "begin_updates" || c.Name == "end_updates" {
			continue
		}
		out = append(out, c.String())
	}
	return out
}

func toSections(in []Section) []sections.Section[string] {
	out := make([]sections.Section[string], len(in))
	for i, s := range in {
		out[i] = sections.Section[string]{Title: s.Title, Rows: s.Rows}
	}
	return out
}

func padValues(values []string, n int) []string {
	if len(values) >= n {
		return values
	}
	out := make([]string, n)
	copy(out, values)
	return out
}

func pres(idx []int) []coordinator.Pre {
	out := make([]coordinator.Pre, len(idx))
	for i, v := range idx {
		out[i] = coordinator.Pre(v)
	}
	return out
}

func posts(idx []int) []coordinator.Post {
	out := make([]coordinator.Post, len(idx))
	for i, v := range idx {
		out[i] = coordinator.Post(v)
	}
	return out
}
