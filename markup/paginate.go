package markup

import (
	"fmt"
)

// Fragment is one wrapped line of a block's display text. All fragments of
// a block except the last one are continuations and use tight line spacing.
type Fragment struct {
	Text         string
	Style        Style
	Continuation bool
	Run          RunStyle // list run fragment belongs to, if any
}

// Page is a numbered content page. Cover page is never part of page
// sequence.
type Page struct {
	Number    int
	Fragments []Fragment
}

// pageState is the paginator state between fragments. Cursor is the
// normalized vertical position of the next line's top edge.
type pageState struct {
	number    int
	cursor    float64
	fragments []Fragment
}

func freshPage(l Layout, number int) pageState {
	return pageState{number: number, cursor: l.Top()}
}

// closePage returns finished page and state for the next one.
func (ps pageState) closePage(l Layout) (Page, pageState) {
	return Page{Number: ps.number, Fragments: ps.fragments}, freshPage(l, ps.number+1)
}

// place appends fragment of height lh to the page.
func (ps pageState) place(f Fragment, lh float64) pageState {
	ps.fragments = append(ps.fragments, f)
	ps.cursor -= lh
	return ps
}

// Fragments wraps styled display text of every block under the character
// budget derived from layout and block style.
func Fragments(blocks []Block, l Layout) ([]Fragment, error) {
	if err := l.Validate(); err != nil {
		return nil, fmt.Errorf("invalid layout: %w", err)
	}

	var (
		run ListRun
		out = make([]Fragment, 0, len(blocks))
	)
	for i, sb := range Styled(blocks) {
		run.Feed(sb.Block)

		budget := l.MaxChars(sb.Style)
		lines, err := Wrap(sb.Display, budget)
		if err != nil {
			return nil, fmt.Errorf("line %d (%s, font %gpt, budget %d): %w", i+1, sb.Kind, sb.Style.FontSize, budget, err)
		}
		for j, line := range lines {
			f := Fragment{Text: line, Style: sb.Style, Run: run.Style()}
			if j < len(lines)-1 {
				f.Continuation = true
				f.Style.LineHeight = 1.0
			}
			out = append(out, f)
		}
	}
	run.Finish()
	return out, nil
}

// Paginate lays blocks out on fixed size pages top to bottom. A page is
// closed when the next fragment would cross the bottom margin. A fragment
// taller than the whole content box still gets a page of its own. Empty
// input produces one empty page.
func Paginate(blocks []Block, l Layout) ([]Page, error) {
	frags, err := Fragments(blocks, l)
	if err != nil {
		return nil, err
	}
	return paginate(frags, l), nil
}

func paginate(frags []Fragment, l Layout) []Page {
	var (
		pages []Page
		page  Page
		state = freshPage(l, 1)
	)
	for _, f := range frags {
		lh := l.LineHeight(f.Style)
		if state.cursor-lh < l.Bottom() && len(state.fragments) > 0 {
			page, state = state.closePage(l)
			pages = append(pages, page)
		}
		state = state.place(f, lh)
	}
	if len(state.fragments) > 0 || len(pages) == 0 {
		page, _ = state.closePage(l)
		pages = append(pages, page)
	}
	return pages
}
