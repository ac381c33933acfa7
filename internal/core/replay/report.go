package replay

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/colonyops/rowsync/internal/core/styles"
)

// Render writes a human-readable account of the run to w: one line per step
// with the primitives it issued, then the final model.
func (r *Report) Render(w io.Writer, failure error) error {
	var b strings.Builder

	b.WriteString(styles.CommandHeaderStyle.Render("replay " + r.Script))
	b.WriteString("\n")

	kindWidth := 0
	for _, s := range r.Steps {
		kindWidth = max(kindWidth, len(s.Kind))
	}
	kindStyle := styles.CommandStyle.Width(kindWidth + 2)

	for i, s := range r.Steps {
		failed := failure != nil && i == len(r.Steps)-1

		mark := styles.ReplayOKStyle.Render(styles.IconCheck)
		if failed {
			mark = styles.ReplayErrorStyle.Render(styles.IconCross)
		}

		detail := styles.ReplayOpStyle.Render(strings.Join(s.Ops, "; "))
		switch {
		case failed:
			detail = styles.ReplayErrorStyle.Render(failure.Error())
		case s.Err != nil:
			detail = styles.DividerStyle.Render("rejected: " + s.Err.Error())
		case len(s.Ops) == 0:
			detail = styles.DividerStyle.Render("no surface calls")
		}

		line := lipgloss.JoinHorizontal(lipgloss.Top,
			styles.ReplayStepStyle.Render(fmt.Sprint(s.Index)), " ",
			mark, " ",
			kindStyle.Render(s.Kind),
			detail,
		)
		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(styles.ReplayShapeStyle.Render(fmt.Sprintf("shape %v", r.Shape)))
	b.WriteString("\n")
	for _, sec := range r.Sections {
		title := sec.Title
		if title == "" {
			title = "(untitled)"
		}
		b.WriteString(styles.SectionHeaderStyle.Render(styles.IconSection + " " + title))
		b.WriteString("\n")
		for _, row := range sec.Rows {
			b.WriteString(styles.RowStyle.Render(row))
			b.WriteString("\n")
		}
	}

	if len(r.Completions) > 0 {
		interrupted := 0
		for _, finished := range r.Completions {
			if !finished {
				interrupted++
			}
		}
		b.WriteString(styles.DividerStyle.Render(
			fmt.Sprintf("%d completions, %d interrupted", len(r.Completions), interrupted)))
		b.WriteString("\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// Primitives returns every recorded surface call as text, batch markers
// included.
func (r *Report) Primitives() []string {
	out := make([]string, len(r.Calls))
	for i, c := range r.Calls {
		out[i] = c.String()
	}
	return out
}
