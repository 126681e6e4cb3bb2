package markup

// RunStyle identifies the container style of a list run.
type RunStyle int

const (
	RunNone RunStyle = iota
	RunBullet
	RunNumbered
)

func (s RunStyle) String() string {
	switch s {
	case RunBullet:
		return "bullet"
	case RunNumbered:
		return "numbered"
	}
	return "none"
}

func runStyleOf(k Kind) RunStyle {
	switch k {
	case KindUnorderedItem:
		return RunBullet
	case KindOrderedItem:
		return RunNumbered
	}
	return RunNone
}

// Events tells an emitter what to do with list containers before it handles
// the block that produced them. When both are set Close comes first.
type Events struct {
	Close  bool
	Open   bool
	Closed RunStyle // style of the run being closed
	Opened RunStyle // style of the run being opened
}

// ListRun tracks whether consecutive blocks form a list run. Zero value is
// ready to use, every output track keeps its own instance.
type ListRun struct {
	style RunStyle
}

// Active reports whether a run is open.
func (lr *ListRun) Active() bool {
	return lr.style != RunNone
}

// Style returns style of the open run or RunNone.
func (lr *ListRun) Style() RunStyle {
	return lr.style
}

// Feed advances the tracker with the next block.
func (lr *ListRun) Feed(b Block) Events {
	next := runStyleOf(b.Kind)
	if next == lr.style {
		return Events{}
	}

	var ev Events
	if lr.style != RunNone {
		ev.Close, ev.Closed = true, lr.style
	}
	if next != RunNone {
		ev.Open, ev.Opened = true, next
	}
	lr.style = next
	return ev
}

// Finish closes a run left open at the end of input.
func (lr *ListRun) Finish() Events {
	if lr.style == RunNone {
		return Events{}
	}
	ev := Events{Close: true, Closed: lr.style}
	lr.style = RunNone
	return ev
}
