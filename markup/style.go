package markup

// Weight of the font used for a block.
type Weight int

const (
	WeightNormal Weight = iota
	WeightBold
)

func (w Weight) String() string {
	if w == WeightBold {
		return "bold"
	}
	return "normal"
}

// Style carries fixed-layout rendering attributes. Indent is a fraction of
// content width, LineHeight multiplies base line height.
type Style struct {
	FontSize   float64
	Weight     Weight
	Indent     float64
	LineHeight float64
}

// StyledBlock is a block prepared for fixed-layout rendering.
type StyledBlock struct {
	Block
	Style   Style
	Display string // list markers included
}

// StyleFor derives style from block kind and heading level. Levels 3 and
// deeper share one style.
func StyleFor(b Block) Style {
	switch b.Kind {
	case KindHeading:
		switch b.Level {
		case 1:
			return Style{FontSize: 18, Weight: WeightBold, LineHeight: 2.0}
		case 2:
			return Style{FontSize: 16, Weight: WeightBold, LineHeight: 1.8}
		default:
			return Style{FontSize: 14, Weight: WeightBold, LineHeight: 1.6}
		}
	case KindUnorderedItem, KindOrderedItem:
		return Style{FontSize: 12, Indent: 0.03, LineHeight: 1.2}
	case KindBlank:
		return Style{FontSize: 12, LineHeight: 0.5}
	}
	return Style{FontSize: 12, LineHeight: 1.3}
}

// Styled annotates blocks with their fixed-layout styles.
func Styled(blocks []Block) []StyledBlock {
	out := make([]StyledBlock, 0, len(blocks))
	for _, b := range blocks {
		out = append(out, StyledBlock{Block: b, Style: StyleFor(b), Display: b.DisplayText()})
	}
	return out
}
