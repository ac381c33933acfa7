package styles

var (
	IconCheck   = "✓"
	IconCross   = "✗"
	IconArrow   = "→"
	IconSection = "▸"
	IconCursor  = "›"
)
