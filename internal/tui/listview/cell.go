package listview

import "github.com/colonyops/rowsync/internal/core/surface"

// Cell is a visible row. Its text is set by the source while configuring it.
type Cell struct {
	path  surface.IndexPath
	text  string
	frame surface.Rect
}

// Frame implements surface.Framed.
func (c *Cell) Frame() surface.Rect { return c.frame }

// SetText replaces the row's text.
func (c *Cell) SetText(s string) { c.text = s }

// Text returns the row's text.
func (c *Cell) Text() string { return c.text }

// Path returns the row the cell was configured for.
func (c *Cell) Path() surface.IndexPath { return c.path }
