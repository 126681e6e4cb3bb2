package markup

import (
	"fmt"

	"scribe/utils/debug"
)

// DumpBlocks returns readable listing of classified blocks for debug reports.
func DumpBlocks(blocks []Block) string {
	tw := debug.NewTreeWriter()
	tw.Line(0, "blocks: %d", len(blocks))
	for i, b := range blocks {
		switch b.Kind {
		case KindHeading:
			tw.Fields(1, b.Kind.String(), "n", i+1, "level", b.Level)
		case KindOrderedItem:
			tw.Fields(1, b.Kind.String(), "n", i+1, "ordinal", b.Ordinal)
		default:
			tw.Fields(1, b.Kind.String(), "n", i+1)
		}
		if b.Text != "" {
			tw.TextBlock(2, "text", b.Text)
		}
	}
	return tw.String()
}

// DumpPages returns readable tree of paginated fragments for debug reports.
func DumpPages(pages []Page, l Layout) string {
	tw := debug.NewTreeWriter()
	tw.Fields(0, "layout", "page", fmt.Sprintf("%gx%g", l.PageWidth, l.PageHeight), "base_chars", l.BaseMaxChars(), "top", l.Top(), "bottom", l.Bottom())
	for _, p := range pages {
		tw.Fields(0, "page", "number", p.Number, "fragments", len(p.Fragments))
		for _, f := range p.Fragments {
			tw.Fields(1, "fragment", "size", f.Style.FontSize, "weight", f.Style.Weight, "indent", f.Style.Indent,
				"lh", f.Style.LineHeight, "cont", f.Continuation, "run", f.Run)
			tw.TextBlock(2, "text", f.Text)
		}
	}
	return tw.String()
}
