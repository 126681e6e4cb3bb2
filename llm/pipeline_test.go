package llm

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

type fakeInvoker struct {
	answer string
	err    error
	calls  [][]Turn
}

func (f *fakeInvoker) Invoke(ctx context.Context, turns []Turn) (string, error) {
	f.calls = append(f.calls, turns)
	return f.answer, f.err
}

func TestPipeline_Analyze(t *testing.T) {
	log := zaptest.NewLogger(t, zaptest.WrapOptions(zap.AddCaller()))
	inv := &fakeInvoker{answer: "\n  1. Summary: short\n"}
	p := NewPipeline(inv, 0, nil, log)

	got, err := p.Analyze(context.Background(), Request{Source: "SOURCE", Questions: "Q?", Clarifications: "C."})
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if got != "1. Summary: short" {
		t.Errorf("Analyze() = %q", got)
	}

	if len(inv.calls) != 1 || len(inv.calls[0]) != 2 {
		t.Fatalf("unexpected calls: %+v", inv.calls)
	}
	sys, user := inv.calls[0][0], inv.calls[0][1]
	if sys.Role != RoleSystem || !strings.Contains(sys.Content, "write 'None' under the Ambiguities section") {
		t.Errorf("system turn = %+v", sys)
	}
	want := "Document Content:\nSOURCE\n\nUser Questions/Instructions:\nQ?\nExisting Clarifications (if any):\nC."
	if user.Role != RoleUser || user.Content != want {
		t.Errorf("user turn = %q, want %q", user.Content, want)
	}
}

func TestPipeline_Assignment(t *testing.T) {
	log := zaptest.NewLogger(t, zaptest.WrapOptions(zap.AddCaller()))
	inv := &fakeInvoker{answer: "# Introduction\nText"}
	p := NewPipeline(inv, 0, nil, log)

	got, err := p.Assignment(context.Background(), Request{Source: "S", Questions: "Q"})
	if err != nil {
		t.Fatalf("Assignment() error = %v", err)
	}
	if got != "# Introduction\nText" {
		t.Errorf("Assignment() = %q", got)
	}

	sys, user := inv.calls[0][0], inv.calls[0][1]
	for _, heading := range []string{"# Introduction", "# Body", "# Conclusion", "# References"} {
		if !strings.Contains(sys.Content, heading) {
			t.Errorf("system prompt misses %q", heading)
		}
	}
	want := "Document Content:\nS\n\nUser Questions/Instructions:\nQ\n\nClarifications (if provided):\n"
	if user.Content != want {
		t.Errorf("user turn = %q, want %q", user.Content, want)
	}
}

func TestPipeline_TrimsSource(t *testing.T) {
	log := zaptest.NewLogger(t, zaptest.WrapOptions(zap.AddCaller()))
	inv := &fakeInvoker{answer: "ok"}
	p := NewPipeline(inv, 30, nil, log)

	if _, err := p.Analyze(context.Background(), Request{Source: "First sentence here. Second sentence is long."}); err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	user := inv.calls[0][1].Content
	if !strings.HasPrefix(user, "Document Content:\nFirst sentence here.\n\n") {
		t.Errorf("source was not trimmed at sentence boundary: %q", user)
	}
}

func TestPipeline_Errors(t *testing.T) {
	log := zaptest.NewLogger(t, zaptest.WrapOptions(zap.AddCaller()))

	boom := errors.New("boom")
	p := NewPipeline(&fakeInvoker{err: boom}, 0, nil, log)
	if _, err := p.Analyze(context.Background(), Request{}); !errors.Is(err, boom) {
		t.Errorf("Analyze() error = %v, want wrapped boom", err)
	}

	p = NewPipeline(&fakeInvoker{answer: " \n\t"}, 0, nil, log)
	if _, err := p.Assignment(context.Background(), Request{}); !errors.Is(err, ErrEmptyResponse) {
		t.Errorf("Assignment() error = %v, want ErrEmptyResponse", err)
	}

	inv := &fakeInvoker{answer: "ok"}
	p = NewPipeline(inv, 0, nil, log)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := p.Analyze(ctx, Request{}); !errors.Is(err, context.Canceled) {
		t.Errorf("Analyze() error = %v, want context.Canceled", err)
	}
	if len(inv.calls) != 0 {
		t.Error("model invoked with canceled context")
	}
}

func TestDumpTurns(t *testing.T) {
	got := dumpTurns([]Turn{{Role: RoleSystem, Content: "s"}, {Role: RoleUser, Content: "u"}})
	want := "--- system ---\ns\n\n--- user ---\nu\n\n"
	if got != want {
		t.Errorf("dumpTurns() = %q, want %q", got, want)
	}
}
