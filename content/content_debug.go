package content

import (
	"scribe/markup"
	"scribe/utils/debug"
)

// String returns a readable tree of the assignment. It exists solely for
// manual inspection during debugging.
func (a *Assignment) String() string {
	if a == nil {
		return "<nil Assignment>"
	}

	tw := debug.NewTreeWriter()
	tw.Fields(0, "assignment", "id", a.ID, "created", a.Created.Format("2006-01-02T15:04:05"), "source", a.SrcName)
	tw.Line(1, "Meta")
	tw.Fields(2, "title", "value", a.Meta.Title)
	tw.Fields(2, "subject", "value", a.Meta.Subject())
	for _, line := range a.Meta.CoverLines() {
		tw.TextBlock(2, "cover", line)
	}
	if a.Logo != nil {
		tw.Fields(1, "logo", "width", a.Logo.Width, "height", a.Logo.Height, "size", len(a.Logo.Data))
	}
	return tw.String() + markup.DumpBlocks(a.blocks)
}
