package markup

import (
	"strconv"

	"github.com/beevik/etree"
)

// Names of OpenDocument styles referenced by flow markup. They must be
// defined by the styles part of the produced document.
const (
	StyleParagraph = "P1"
	StyleListItem  = "P2"
	StyleCentered  = "P3"
	StyleBullets   = "L1"
	StyleNumbers   = "L2"
)

// FlowStats counts elements produced by EmitFlow.
type FlowStats struct {
	Headings   int
	Paragraphs int
	Breaks     int
	Lists      int
	Items      int
}

// HeadingStyle returns name of the paragraph style used for heading level.
func HeadingStyle(level int) string {
	return "Heading_20_" + strconv.Itoa(min(max(level, 1), 3))
}

func listStyle(s RunStyle) string {
	if s == RunNumbered {
		return StyleNumbers
	}
	return StyleBullets
}

// EmitFlow appends OpenDocument text elements for blocks to parent (normally
// office:text). Consecutive list items of the same kind share one text:list
// container.
func EmitFlow(parent *etree.Element, blocks []Block) FlowStats {
	var (
		st   FlowStats
		run  ListRun
		list *etree.Element
	)

	apply := func(ev Events) {
		if ev.Close {
			list = nil
		}
		if ev.Open {
			list = parent.CreateElement("text:list")
			list.CreateAttr("text:style-name", listStyle(ev.Opened))
			st.Lists++
		}
	}

	for _, b := range blocks {
		apply(run.Feed(b))

		switch b.Kind {
		case KindBlank:
			p := parent.CreateElement("text:p")
			p.CreateAttr("text:style-name", StyleParagraph)
			st.Breaks++
		case KindHeading:
			h := parent.CreateElement("text:h")
			h.CreateAttr("text:style-name", HeadingStyle(b.Level))
			h.CreateAttr("text:outline-level", strconv.Itoa(max(b.Level, 1)))
			if b.Text != "" {
				h.SetText(b.Text)
			}
			st.Headings++
		case KindUnorderedItem, KindOrderedItem:
			item := list.CreateElement("text:list-item")
			p := item.CreateElement("text:p")
			p.CreateAttr("text:style-name", StyleListItem)
			p.SetText(b.DisplayText())
			st.Items++
		default:
			p := parent.CreateElement("text:p")
			p.CreateAttr("text:style-name", StyleParagraph)
			p.SetText(b.Text)
			st.Paragraphs++
		}
	}
	apply(run.Finish())
	return st
}
