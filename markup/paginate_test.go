package markup

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

func repeatLines(line string, n int) string {
	lines := make([]string, n)
	for i := range lines {
		lines[i] = line
	}
	return strings.Join(lines, "\n")
}

func TestPaginate_Empty(t *testing.T) {
	pages, err := Paginate(nil, DefaultLayout())
	if err != nil {
		t.Fatalf("Paginate() error = %v", err)
	}
	if len(pages) != 1 {
		t.Fatalf("Paginate(nil) returned %d pages, want 1", len(pages))
	}
	if pages[0].Number != 1 || len(pages[0].Fragments) != 0 {
		t.Errorf("Paginate(nil) = %+v, want single empty page 1", pages[0])
	}
}

func TestPaginate_PageCapacity(t *testing.T) {
	// 37 paragraph lines (1.3 * 0.2in each) fit into 9.69in of content height.
	blocks := ClassifyText(repeatLines("Short paragraph.", 40))

	pages, err := Paginate(blocks, DefaultLayout())
	if err != nil {
		t.Fatalf("Paginate() error = %v", err)
	}
	if len(pages) != 2 {
		t.Fatalf("got %d pages, want 2", len(pages))
	}
	if n := len(pages[0].Fragments); n != 37 {
		t.Errorf("first page holds %d fragments, want 37", n)
	}
	if n := len(pages[1].Fragments); n != 3 {
		t.Errorf("second page holds %d fragments, want 3", n)
	}
}

func TestPaginate_PreservesFragmentOrder(t *testing.T) {
	long := strings.Repeat("word ", 400)
	text := strings.Join([]string{
		"# Heading one",
		"",
		long,
		"## Heading two",
		"- " + long,
		"1. " + long,
		"### Third",
		long,
	}, "\n")
	blocks := ClassifyText(text)
	l := DefaultLayout()

	frags, err := Fragments(blocks, l)
	if err != nil {
		t.Fatalf("Fragments() error = %v", err)
	}
	pages, err := Paginate(blocks, l)
	if err != nil {
		t.Fatalf("Paginate() error = %v", err)
	}
	if len(pages) < 2 {
		t.Fatalf("expected several pages, got %d", len(pages))
	}

	var joined []Fragment
	for i, p := range pages {
		if p.Number != i+1 {
			t.Errorf("page %d numbered %d", i+1, p.Number)
		}
		joined = append(joined, p.Fragments...)

		// nothing crosses bottom margin unless it is alone on its page
		cursor := l.Top()
		for _, f := range p.Fragments {
			cursor -= l.LineHeight(f.Style)
		}
		if cursor < l.Bottom() && len(p.Fragments) > 1 {
			t.Errorf("page %d overflows bottom margin: cursor %f < %f", p.Number, cursor, l.Bottom())
		}
	}
	if !reflect.DeepEqual(joined, frags) {
		t.Errorf("pagination changed fragment sequence: %d fragments in, %d out", len(frags), len(joined))
	}
}

func TestFragments_Continuations(t *testing.T) {
	blocks := []Block{
		Classify(strings.Repeat("lorem ipsum ", 30)),
		Classify("- short item"),
		Classify("2. numbered item"),
		Classify(""),
	}

	frags, err := Fragments(blocks, DefaultLayout())
	if err != nil {
		t.Fatalf("Fragments() error = %v", err)
	}

	var para []Fragment
	for _, f := range frags {
		if f.Run == RunNone && f.Style.FontSize == 12 && f.Text != "" {
			para = append(para, f)
		}
	}
	if len(para) < 2 {
		t.Fatalf("expected wrapped paragraph, got %d fragments", len(para))
	}
	for i, f := range para {
		last := i == len(para)-1
		if f.Continuation == last {
			t.Errorf("fragment %d: continuation=%v", i, f.Continuation)
		}
		wantLH := 1.0
		if last {
			wantLH = 1.3
		}
		if f.Style.LineHeight != wantLH {
			t.Errorf("fragment %d: line height %v, want %v", i, f.Style.LineHeight, wantLH)
		}
	}

	tail := frags[len(frags)-3:]
	want := []Fragment{
		{Text: "• short item", Style: Style{FontSize: 12, Indent: 0.03, LineHeight: 1.2}, Run: RunBullet},
		{Text: "2. numbered item", Style: Style{FontSize: 12, Indent: 0.03, LineHeight: 1.2}, Run: RunNumbered},
		{Text: "", Style: Style{FontSize: 12, LineHeight: 0.5}},
	}
	if !reflect.DeepEqual(tail, want) {
		t.Errorf("tail fragments = %+v, want %+v", tail, want)
	}
}

func TestPaginate_OversizeLine(t *testing.T) {
	l := DefaultLayout()
	l.PageHeight = 2
	l.MarginTop, l.MarginBottom = 0.9, 0.9 // 0.2in of content, shorter than any heading line

	pages, err := Paginate(ClassifyText("# One\n# Two\n# Three"), l)
	if err != nil {
		t.Fatalf("Paginate() error = %v", err)
	}
	if len(pages) != 3 {
		t.Fatalf("got %d pages, want 3", len(pages))
	}
	for i, p := range pages {
		if len(p.Fragments) != 1 {
			t.Errorf("page %d holds %d fragments, want 1", i+1, len(p.Fragments))
		}
	}
}

func TestPaginate_Errors(t *testing.T) {
	narrow := DefaultLayout()
	narrow.CharDensity = 1

	if _, err := Paginate(ClassifyText("text"), narrow); !errors.Is(err, ErrWrapBudgetTooSmall) {
		t.Errorf("Paginate() with tiny budget error = %v, want ErrWrapBudgetTooSmall", err)
	}

	broken := DefaultLayout()
	broken.MarginLeft = 9
	if _, err := Paginate(ClassifyText("text"), broken); err == nil {
		t.Error("Paginate() with invalid layout expected error")
	}
}

func TestPageState_ClosePage(t *testing.T) {
	l := DefaultLayout()
	st := freshPage(l, 4)
	st = st.place(Fragment{Text: "a"}, 0.1)

	page, next := st.closePage(l)
	if page.Number != 4 || len(page.Fragments) != 1 {
		t.Errorf("closePage() page = %+v", page)
	}
	if next.number != 5 || next.cursor != l.Top() || len(next.fragments) != 0 {
		t.Errorf("closePage() next state = %+v", next)
	}
	if st.number != 4 || len(st.fragments) != 1 {
		t.Errorf("closePage() mutated source state: %+v", st)
	}
}
