package llm

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"scribe/config"
	"scribe/content/text"
)

// Request carries everything model needs for either phase.
type Request struct {
	Source         string
	Questions      string
	Clarifications string
}

// Pipeline runs two phases of assignment preparation: analysis of the source
// producing summary and open questions, and generation of the assignment
// itself. Phases are independent, caller decides what to feed into the
// second one.
type Pipeline struct {
	inv      Invoker
	splitter *text.Splitter
	maxChars int
	rpt      *config.Report
	log      *zap.Logger

	seq atomic.Int64
}

// NewPipeline creates pipeline. Source text longer than maxChars is trimmed
// at sentence boundary, non-positive value disables trimming. Report may be
// nil.
func NewPipeline(inv Invoker, maxChars int, rpt *config.Report, log *zap.Logger) *Pipeline {
	return &Pipeline{
		inv:      inv,
		splitter: text.NewSplitter(log),
		maxChars: maxChars,
		rpt:      rpt,
		log:      log,
	}
}

// Analyze summarizes source material and lists ambiguities.
func (p *Pipeline) Analyze(ctx context.Context, req Request) (string, error) {
	source := p.source(req.Source)
	return p.run(ctx, "analysis", analysisTurns(source, req.Questions, req.Clarifications))
}

// Assignment produces assignment body in markup form.
func (p *Pipeline) Assignment(ctx context.Context, req Request) (string, error) {
	source := p.source(req.Source)
	return p.run(ctx, "assignment", assignmentTurns(source, req.Questions, req.Clarifications))
}

func (p *Pipeline) source(in string) string {
	out, trimmed := p.splitter.Budget(in, p.maxChars)
	if trimmed {
		p.log.Warn("Source text is too long for the prompt, trimming", zap.Int("limit", p.maxChars), zap.Int("kept", len([]rune(out))))
	}
	return out
}

func (p *Pipeline) run(ctx context.Context, phase string, turns []Turn) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	n := p.seq.Add(1)
	if p.rpt != nil {
		p.rpt.StoreData(fmt.Sprintf("llm/%03d-%s-prompt.txt", n, phase), []byte(dumpTurns(turns)))
	}

	p.log.Info("Invoking model", zap.String("phase", phase))
	start := time.Now()

	out, err := p.inv.Invoke(ctx, turns)
	if err != nil {
		return "", fmt.Errorf("%s failed: %w", phase, err)
	}
	out = strings.TrimSpace(out)
	if len(out) == 0 {
		return "", fmt.Errorf("%s failed: %w", phase, ErrEmptyResponse)
	}

	if p.rpt != nil {
		p.rpt.StoreData(fmt.Sprintf("llm/%03d-%s-response.md", n, phase), []byte(out))
	}
	p.log.Info("Model call completed", zap.String("phase", phase), zap.Duration("elapsed", time.Since(start)))
	return out, nil
}

func dumpTurns(turns []Turn) string {
	var b strings.Builder
	for _, t := range turns {
		fmt.Fprintf(&b, "--- %s ---\n%s\n\n", t.Role, t.Content)
	}
	return b.String()
}
