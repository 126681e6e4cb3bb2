package markup

import (
	"errors"
	"fmt"
	"math"
)

// Layout describes physical page geometry for fixed-layout output. All
// lengths are in inches. CharDensity is an empirical number of characters
// fitting into the full normalized page width at 12pt, it is not a font
// metric.
type Layout struct {
	PageWidth      float64
	PageHeight     float64
	MarginLeft     float64
	MarginRight    float64
	MarginTop      float64
	MarginBottom   float64
	BaseLineHeight float64
	CharDensity    float64
}

// DefaultLayout is A4 portrait with one inch margins.
func DefaultLayout() Layout {
	return Layout{
		PageWidth:      8.27,
		PageHeight:     11.69,
		MarginLeft:     1,
		MarginRight:    1,
		MarginTop:      1,
		MarginBottom:   1,
		BaseLineHeight: 0.2,
		CharDensity:    120,
	}
}

// Validate checks that layout leaves a usable content box.
func (l Layout) Validate() error {
	switch {
	case l.PageWidth <= 0 || l.PageHeight <= 0:
		return fmt.Errorf("page size must be positive, got %gx%g", l.PageWidth, l.PageHeight)
	case l.MarginLeft < 0 || l.MarginRight < 0 || l.MarginTop < 0 || l.MarginBottom < 0:
		return errors.New("margins must not be negative")
	case l.MarginLeft+l.MarginRight >= l.PageWidth:
		return fmt.Errorf("horizontal margins (%g) do not fit page width (%g)", l.MarginLeft+l.MarginRight, l.PageWidth)
	case l.MarginTop+l.MarginBottom >= l.PageHeight:
		return fmt.Errorf("vertical margins (%g) do not fit page height (%g)", l.MarginTop+l.MarginBottom, l.PageHeight)
	case l.BaseLineHeight <= 0:
		return fmt.Errorf("base line height must be positive, got %g", l.BaseLineHeight)
	case l.CharDensity <= 0:
		return fmt.Errorf("character density must be positive, got %g", l.CharDensity)
	}
	return nil
}

// ContentWidth returns width of the content box as a fraction of page width.
func (l Layout) ContentWidth() float64 {
	return 1 - (l.MarginLeft+l.MarginRight)/l.PageWidth
}

// Top is the normalized vertical position where content starts (0 is the
// bottom edge of the page, 1 is the top).
func (l Layout) Top() float64 {
	return 1 - l.MarginTop/l.PageHeight
}

// Bottom is the normalized vertical position content may not cross.
func (l Layout) Bottom() float64 {
	return l.MarginBottom / l.PageHeight
}

// BaseMaxChars is the character budget of an unindented 12pt line.
func (l Layout) BaseMaxChars() int {
	return int(math.Floor(l.ContentWidth() * l.CharDensity))
}

// MaxChars is the character budget for a line rendered with style s.
func (l Layout) MaxChars(s Style) int {
	return Budget(l.BaseMaxChars(), l.ContentWidth(), s)
}

// LineHeight returns normalized vertical space taken by a line with style s.
func (l Layout) LineHeight(s Style) float64 {
	return l.BaseLineHeight / l.PageHeight * s.LineHeight * (s.FontSize / 12)
}

// Budget scales base character budget by font size and by the part of
// content width left after indentation.
func Budget(base int, contentWidth float64, s Style) int {
	if s.FontSize <= 0 || contentWidth <= 0 {
		return 0
	}
	return int(math.Floor(float64(base) * 12 / s.FontSize * ((contentWidth - s.Indent) / contentWidth)))
}
