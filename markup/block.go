// Package markup compiles loosely structured Markdown-like text into document
// blocks, flow markup and fixed-layout pages.
package markup

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// Kind of a classified source line.
type Kind int

const (
	KindBlank Kind = iota
	KindHeading
	KindUnorderedItem
	KindOrderedItem
	KindParagraph
)

func (k Kind) String() string {
	switch k {
	case KindBlank:
		return "blank"
	case KindHeading:
		return "heading"
	case KindUnorderedItem:
		return "unordered-item"
	case KindOrderedItem:
		return "ordered-item"
	case KindParagraph:
		return "paragraph"
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// IsList reports whether blocks of this kind belong to a list run.
func (k Kind) IsList() bool {
	return k == KindUnorderedItem || k == KindOrderedItem
}

// Block is one classified line of source text. Level is set for headings
// only, Ordinal for ordered items only.
type Block struct {
	Kind    Kind
	Level   int
	Ordinal string
	Text    string
}

var orderedMarker = regexp.MustCompile(`^\s*(\d+)[.)]\s+`)

// Classify assigns a block kind to a single line. Rules are checked in order
// and the last one matches everything, so classification never fails.
func Classify(line string) Block {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return Block{Kind: KindBlank}
	}

	if strings.HasPrefix(trimmed, "#") {
		rest := strings.TrimLeft(trimmed, "#")
		return Block{
			Kind:  KindHeading,
			Level: len(trimmed) - len(rest),
			Text:  strings.TrimSpace(rest),
		}
	}

	left := strings.TrimLeftFunc(line, unicode.IsSpace)
	for _, marker := range []string{"- ", "* ", "+ "} {
		if strings.HasPrefix(left, marker) {
			return Block{Kind: KindUnorderedItem, Text: strings.TrimSpace(left[len(marker):])}
		}
	}

	if m := orderedMarker.FindStringSubmatchIndex(line); m != nil {
		return Block{
			Kind:    KindOrderedItem,
			Ordinal: line[m[2]:m[3]],
			Text:    strings.TrimSpace(line[m[1]:]),
		}
	}

	return Block{Kind: KindParagraph, Text: trimmed}
}

// ClassifyText splits text into lines and classifies each of them. Leading
// and trailing blank lines of the whole text are dropped.
func ClassifyText(text string) []Block {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	lines := strings.Split(text, "\n")
	blocks := make([]Block, 0, len(lines))
	for _, line := range lines {
		blocks = append(blocks, Classify(strings.TrimRightFunc(line, unicode.IsSpace)))
	}
	return blocks
}

// DisplayText returns the text as it is shown in rendered output, list items
// get their marker back.
func (b Block) DisplayText() string {
	switch b.Kind {
	case KindUnorderedItem:
		return "• " + b.Text
	case KindOrderedItem:
		return b.Ordinal + ". " + b.Text
	case KindBlank:
		return ""
	}
	return b.Text
}

// Markdown serializes block back to source form using canonical markers.
func (b Block) Markdown() string {
	switch b.Kind {
	case KindHeading:
		level := max(b.Level, 1)
		if b.Text == "" {
			return strings.Repeat("#", level)
		}
		return strings.Repeat("#", level) + " " + b.Text
	case KindUnorderedItem:
		return "- " + b.Text
	case KindOrderedItem:
		return b.Ordinal + ". " + b.Text
	case KindBlank:
		return ""
	}
	return b.Text
}
