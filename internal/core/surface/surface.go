// Package surface defines the contract between a coordinator and the
// imperative list widget it keeps in sync.
//
// Index spaces are asymmetric. Deletions and reloads name positions in the
// shape as it was before the call; insertions name positions in the shape as
// it will be after the call. A surface applies each primitive to its current
// shape in the order the primitives arrive.
package surface

import "fmt"

// IndexPath addresses a row within a section.
type IndexPath struct {
	Section int
	Row     int
}

// Path is shorthand for IndexPath{Section: section, Row: row}.
func Path(section, row int) IndexPath {
	return IndexPath{Section: section, Row: row}
}

func (p IndexPath) String() string {
	return fmt.Sprintf("[%d,%d]", p.Section, p.Row)
}

// Point is a coordinate in the surface's content space.
type Point struct {
	X, Y int
}

// Rect is an axis-aligned rectangle in the surface's content space.
type Rect struct {
	X, Y, W, H int
}

// Center returns the rectangle's midpoint.
func (r Rect) Center() Point {
	return Point{X: r.X + r.W/2, Y: r.Y + r.H/2}
}

// Contains reports whether p falls inside r.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X < r.X+r.W && p.Y >= r.Y && p.Y < r.Y+r.H
}

// Intersects reports whether r and o overlap.
func (r Rect) Intersects(o Rect) bool {
	return r.X < o.X+o.W && o.X < r.X+r.W && r.Y < o.Y+o.H && o.Y < r.Y+r.H
}

// Framed is anything that occupies a rectangle on the surface.
type Framed interface {
	Frame() Rect
}

// Cell is a handle to a visible row on the surface.
type Cell interface {
	Framed
}

// Surface is the rendering surface the coordinator drives.
type Surface interface {
	// Bind attaches the source that answers counts and receives cell and
	// selection callbacks.
	Bind(src Source)

	ReloadData()
	BeginUpdates()
	// EndUpdates submits every primitive issued since BeginUpdates as one
	// visual update. completion may be nil; when set, the surface invokes it
	// once the update is finished, never from inside EndUpdates itself.
	EndUpdates(animated bool, completion func(finished bool))

	InsertRows(paths []IndexPath, anim Animation)
	DeleteRows(paths []IndexPath, anim Animation)
	ReloadRows(paths []IndexPath, anim Animation)
	MoveRow(from, to IndexPath)

	InsertSections(sections []int, anim Animation)
	DeleteSections(sections []int, anim Animation)
	ReloadSections(sections []int, anim Animation)
	MoveSection(from, to int)

	SelectRow(path IndexPath, animated bool, pos ScrollPosition)
	DeselectRow(path IndexPath, animated bool)
	ScrollToRow(path IndexPath, pos ScrollPosition, animated bool)

	VisibleCell(path IndexPath) (Cell, bool)
	IndexPathsForRows(rect Rect) []IndexPath
}

// Focusable is implemented by surfaces that can take keyboard focus.
type Focusable interface {
	Focus() bool
	Blur() bool
}

// Source answers the surface's questions about the content it shows.
type Source interface {
	NumberOfSections() int
	NumberOfRows(section int) int
	ConfigureCell(cell Cell, path IndexPath)
	WillDisplay(cell Cell, path IndexPath)
	DidSelectRow(path IndexPath)
	DidDeselectRow(path IndexPath)
}
