package coordinator

import (
	"fmt"

	"github.com/colonyops/rowsync/internal/core/surface"
)

// OpKind names a primitive surface mutation.
type OpKind int

const (
	OpDeleteRows OpKind = iota
	OpInsertRows
	OpReloadRows
	OpMoveRow
	OpDeleteSections
	OpInsertSections
	OpReloadSections
	OpMoveSection
)

var opNames = [...]string{
	OpDeleteRows:     "delete_rows",
	OpInsertRows:     "insert_rows",
	OpReloadRows:     "reload_rows",
	OpMoveRow:        "move_row",
	OpDeleteSections: "delete_sections",
	OpInsertSections: "insert_sections",
	OpReloadSections: "reload_sections",
	OpMoveSection:    "move_section",
}

func (k OpKind) String() string {
	if int(k) < len(opNames) {
		return opNames[k]
	}
	return fmt.Sprintf("op(%d)", int(k))
}

// Op is one primitive mutation waiting in a pending batch. Only the fields
// relevant to Kind are set.
type Op struct {
	Kind      OpKind
	Paths     []surface.IndexPath
	Sections  []int
	From, To  surface.IndexPath
	Animation surface.Animation
}

func (op Op) String() string {
	switch op.Kind {
	case OpMoveRow:
		return fmt.Sprintf("%s %s->%s", op.Kind, op.From, op.To)
	case OpMoveSection:
		return fmt.Sprintf("%s %d->%d", op.Kind, op.From.Section, op.To.Section)
	case OpDeleteSections, OpInsertSections, OpReloadSections:
		return fmt.Sprintf("%s %v", op.Kind, op.Sections)
	default:
		return fmt.Sprintf("%s %v", op.Kind, op.Paths)
	}
}

// issue sends the primitive to s.
func (op Op) issue(s surface.Surface) {
	switch op.Kind {
	case OpDeleteRows:
		s.DeleteRows(op.Paths, op.Animation)
	case OpInsertRows:
		s.InsertRows(op.Paths, op.Animation)
	case OpReloadRows:
		s.ReloadRows(op.Paths, op.Animation)
	case OpMoveRow:
		s.MoveRow(op.From, op.To)
	case OpDeleteSections:
		s.DeleteSections(op.Sections, op.Animation)
	case OpInsertSections:
		s.InsertSections(op.Sections, op.Animation)
	case OpReloadSections:
		s.ReloadSections(op.Sections, op.Animation)
	case OpMoveSection:
		s.MoveSection(op.From.Section, op.To.Section)
	}
}

func rowPaths[I ~int](section int, rows []I) []surface.IndexPath {
	paths := make([]surface.IndexPath, len(rows))
	for i, r := range rows {
		paths[i] = surface.Path(section, int(r))
	}
	return paths
}

func toInts[I ~int](sections []I) []int {
	out := make([]int, len(sections))
	for i, s := range sections {
		out[i] = int(s)
	}
	return out
}
