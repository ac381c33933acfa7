// Package replay runs YAML scripts of list operations through a coordinator
// bound to the reference surface simulator and reports what the surface saw.
package replay

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/hay-kot/criterio"
	"gopkg.in/yaml.v3"
)

// Script is a replay file.
type Script struct {
	Name     string    `yaml:"name"`
	Strict   *bool     `yaml:"strict"`
	Animated *bool     `yaml:"animated"`
	Sections []Section `yaml:"sections"`
	Steps    []Step    `yaml:"steps"`
}

// Section is an initial or inserted section.
type Section struct {
	Title string   `yaml:"title"`
	Rows  []string `yaml:"rows"`
}

// Step is one entry of a script. Exactly one operation field is set.
type Step struct {
	Reload         *ReloadStep      `yaml:"reload"`
	InsertRows     *RowsStep        `yaml:"insert_rows"`
	DeleteRows     *RowsStep        `yaml:"delete_rows"`
	ReloadRows     *RowsStep        `yaml:"reload_rows"`
	MoveRow        *MoveRowStep     `yaml:"move_row"`
	InsertSections *SectionsStep    `yaml:"insert_sections"`
	DeleteSections *SectionsStep    `yaml:"delete_sections"`
	ReloadSections *SectionsStep    `yaml:"reload_sections"`
	MoveSection    *MoveSectionStep `yaml:"move_section"`
	Diff           *DiffStep        `yaml:"diff"`
	SectionDiff    *SectionDiffStep `yaml:"section_diff"`
	Batch          *BatchStep       `yaml:"batch"`
	Select         *SelectStep      `yaml:"select"`
	Deselect       *SelectStep      `yaml:"deselect"`
	Scroll         *SelectStep      `yaml:"scroll"`

	// Expect names the error the step must fail with: invalid_index,
	// empty_diff or reentrant_batch.
	Expect string `yaml:"expect"`
}

// ReloadStep replaces the model before reloading, when Sections is set.
type ReloadStep struct {
	Sections []Section `yaml:"sections"`
}

// RowsStep addresses rows of one section.
type RowsStep struct {
	Section int      `yaml:"section"`
	Rows    []int    `yaml:"rows"`
	Values  []string `yaml:"values"`
}

// MoveRowStep moves a row within a section.
type MoveRowStep struct {
	Section   int  `yaml:"section"`
	From      int  `yaml:"from"`
	To        int  `yaml:"to"`
	ToSection *int `yaml:"to_section"`
}

// SectionsStep addresses whole sections.
type SectionsStep struct {
	Sections []int     `yaml:"sections"`
	New      []Section `yaml:"new"`
}

// MoveSectionStep moves a section.
type MoveSectionStep struct {
	From int `yaml:"from"`
	To   int `yaml:"to"`
}

// DiffStep is a row diff for one section.
type DiffStep struct {
	Section int            `yaml:"section"`
	Delete  []int          `yaml:"delete"`
	Insert  []int          `yaml:"insert"`
	Modify  []int          `yaml:"modify"`
	Values  map[int]string `yaml:"values"`
}

// SectionDiffStep is a diff over sections.
type SectionDiffStep struct {
	Delete   []int           `yaml:"delete"`
	Insert   []int           `yaml:"insert"`
	Modify   []int           `yaml:"modify"`
	Sections map[int]Section `yaml:"sections"`
}

// BatchStep groups steps into one transaction.
type BatchStep struct {
	Animated *bool  `yaml:"animated"`
	Fail     bool   `yaml:"fail"`
	Steps    []Step `yaml:"steps"`
}

// SelectStep names a row for selection or scrolling.
type SelectStep struct {
	Section  int    `yaml:"section"`
	Row      int    `yaml:"row"`
	Position string `yaml:"position"`
	Animated bool   `yaml:"animated"`
}

// Kind returns the name of the operation the step performs, or "" when none
// is set.
func (s Step) Kind() string {
	kinds := s.kinds()
	if len(kinds) != 1 {
		return ""
	}
	return kinds[0]
}

func (s Step) kinds() []string {
	var out []string
	add := func(set bool, name string) {
		if set {
			out = append(out, name)
		}
	}
	add(s.Reload != nil, "reload")
	add(s.InsertRows != nil, "insert_rows")
	add(s.DeleteRows != nil, "delete_rows")
	add(s.ReloadRows != nil, "reload_rows")
	add(s.MoveRow != nil, "move_row")
	add(s.InsertSections != nil, "insert_sections")
	add(s.DeleteSections != nil, "delete_sections")
	add(s.ReloadSections != nil, "reload_sections")
	add(s.MoveSection != nil, "move_section")
	add(s.Diff != nil, "diff")
	add(s.SectionDiff != nil, "section_diff")
	add(s.Batch != nil, "batch")
	add(s.Select != nil, "select")
	add(s.Deselect != nil, "deselect")
	add(s.Scroll != nil, "scroll")
	return out
}

var expectations = map[string]bool{
	"":                true,
	"invalid_index":   true,
	"empty_diff":      true,
	"reentrant_batch": true,
}

var positions = map[string]bool{
	"":       true,
	"none":   true,
	"top":    true,
	"middle": true,
	"bottom": true,
}

// Validate checks the script's structure. Index ranges are not checked here;
// rejecting bad indexes is the coordinator's job and scripts test it.
func (s *Script) Validate() error {
	var errs criterio.FieldErrorsBuilder

	if strings.TrimSpace(s.Name) == "" {
		errs = errs.Append("name", fmt.Errorf("cannot be empty"))
	}
	if len(s.Steps) == 0 {
		errs = errs.Append("steps", fmt.Errorf("array is empty"))
	}
	for i, step := range s.Steps {
		errs = validateStep(errs, fmt.Sprintf("steps[%d]", i), step)
	}

	return errs.ToError()
}

func validateStep(errs criterio.FieldErrorsBuilder, field string, step Step) criterio.FieldErrorsBuilder {
	switch kinds := step.kinds(); len(kinds) {
	case 0:
		return errs.Append(field, fmt.Errorf("no operation set"))
	case 1:
	default:
		return errs.Append(field, fmt.Errorf("multiple operations set: %s", strings.Join(kinds, ", ")))
	}

	if !expectations[step.Expect] {
		errs = errs.Append(field+".expect", fmt.Errorf("unknown error %q", step.Expect))
	}

	for name, sel := range map[string]*SelectStep{"select": step.Select, "deselect": step.Deselect, "scroll": step.Scroll} {
		if sel != nil && !positions[sel.Position] {
			errs = errs.Append(field+"."+name+".position", fmt.Errorf("unknown position %q", sel.Position))
		}
	}

	if step.InsertSections != nil && step.InsertSections.New != nil &&
		len(step.InsertSections.New) != len(step.InsertSections.Sections) {
		errs = errs.Append(field+".insert_sections.new", fmt.Errorf("%d sections for %d positions",
			len(step.InsertSections.New), len(step.InsertSections.Sections)))
	}

	if step.Batch != nil {
		if len(step.Batch.Steps) == 0 && !step.Batch.Fail {
			errs = errs.Append(field+".batch.steps", fmt.Errorf("array is empty"))
		}
		for i, inner := range step.Batch.Steps {
			errs = validateStep(errs, fmt.Sprintf("%s.batch.steps[%d]", field, i), inner)
		}
	}
	return errs
}

// Parse decodes and validates a script.
func Parse(r io.Reader) (*Script, error) {
	s, err := decode(r)
	if err != nil {
		return nil, err
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid script: %w", err)
	}
	return s, nil
}

// Load reads a script file. A script without a name is named after its file.
func Load(path string) (*Script, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open script: %w", err)
	}
	defer func() { _ = f.Close() }()

	s, err := decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if s.Name == "" {
		s.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("%s: invalid script: %w", path, err)
	}
	return s, nil
}

func decode(r io.Reader) (*Script, error) {
	var s Script
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("decode script: %w", err)
	}
	return &s, nil
}
