package convert

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"scribe/content"
	"scribe/extract"
	"scribe/llm"
	"scribe/state"
)

// newInvoker is replaced in tests.
var newInvoker = llm.NewInvoker

// AssistFlags are flags of commands talking to assistant.
func AssistFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "questions", Aliases: []string{"q"}, Usage: "questions or instructions for the assistant, `TEXT`"},
		&cli.StringFlag{Name: "questions-file", Usage: "read questions or instructions from `FILE`"},
		&cli.StringFlag{Name: "clarifications", Usage: "answers to ambiguities found during analysis, `TEXT`"},
		&cli.StringFlag{Name: "clarifications-file", Usage: "read clarifications from `FILE`"},
	}
}

// textFlag returns value of flag "name" followed by content of file named by
// "name-file" flag.
func textFlag(cmd *cli.Command, name string) (string, error) {
	parts := make([]string, 0, 2)
	if s := strings.TrimSpace(cmd.String(name)); len(s) > 0 {
		parts = append(parts, s)
	}
	if path := cmd.String(name + "-file"); len(path) > 0 {
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("unable to read %s from %q: %w", name, path, err)
		}
		if s := strings.TrimSpace(string(data)); len(s) > 0 {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, "\n"), nil
}

func request(cmd *cli.Command) (llm.Request, error) {
	var (
		req llm.Request
		err error
	)
	if req.Questions, err = textFlag(cmd, "questions"); err != nil {
		return req, err
	}
	if req.Clarifications, err = textFlag(cmd, "clarifications"); err != nil {
		return req, err
	}
	return req, nil
}

func newPipeline(ctx context.Context) (*llm.Pipeline, error) {
	env := state.EnvFromContext(ctx)
	cfg := &env.Cfg.Assistant
	log := env.Log.Named("llm")

	inv, err := newInvoker(cfg, log)
	if err != nil {
		return nil, fmt.Errorf("unable to create assistant client: %w", err)
	}
	return llm.NewPipeline(inv, cfg.MaxSourceChars, env.Rpt, log), nil
}

func sourceArg(cmd *cli.Command) (string, error) {
	src := cmd.Args().Get(0)
	if len(src) == 0 {
		return "", errors.New("no input source has been specified")
	}
	return filepath.Abs(src)
}

// Analyze is "analyze" command: assistant reads source material and reports
// summary, requirements and ambiguities needing clarification.
func Analyze(ctx context.Context, cmd *cli.Command) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("analyze")

	src, err := sourceArg(cmd)
	if err != nil {
		return err
	}
	req, err := request(cmd)
	if err != nil {
		return err
	}
	p, err := newPipeline(ctx)
	if err != nil {
		return err
	}

	out := cmd.Root().Writer
	if fname := cmd.Args().Get(1); len(fname) > 0 {
		f, err := os.Create(fname)
		if err != nil {
			return fmt.Errorf("unable to create destination file '%s': %w", fname, err)
		}
		defer f.Close()
		out = f
	}

	log.Info("Processing starting", zap.String("source", src))
	defer func(start time.Time) {
		log.Info("Processing completed", zap.Duration("elapsed", time.Since(start)))
	}(time.Now())

	return analyze(ctx, p, src, req, out, log)
}

func analyze(ctx context.Context, p *llm.Pipeline, src string, req llm.Request, out io.Writer, log *zap.Logger) error {
	text, err := extract.File(ctx, src, log.Named("extract"))
	if err != nil {
		return err
	}
	req.Source = text

	analysis, err := p.Analyze(ctx, req)
	if err != nil {
		return err
	}
	if _, err := io.WriteString(out, analysis+"\n"); err != nil {
		return fmt.Errorf("unable to write analysis: %w", err)
	}
	return nil
}

// Generate is "generate" command: assistant writes assignment from source
// material, result is turned into documents.
func Generate(ctx context.Context, cmd *cli.Command) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("generate")

	src, err := sourceArg(cmd)
	if err != nil {
		return err
	}
	req, err := request(cmd)
	if err != nil {
		return err
	}
	dst, logo, err := prepareOutput(ctx, cmd, 1, log)
	if err != nil {
		return err
	}
	p, err := newPipeline(ctx)
	if err != nil {
		return err
	}

	log.Info("Processing starting", zap.String("source", src), zap.String("destination", dst), zap.Strings("formats", formatNames(env.Formats)))
	defer func(start time.Time) {
		log.Info("Processing completed", zap.Duration("elapsed", time.Since(start)))
	}(time.Now())

	_, err = generate(ctx, p, src, dst, req, metaFromCommand(cmd), logo, log)
	return err
}

// AssignmentName derives name of produced assignment from the source
// material so documents never replace it.
func AssignmentName(src string) string {
	base := filepath.Base(src)
	return strings.TrimSuffix(base, filepath.Ext(base)) + "-assignment.md"
}

func generate(ctx context.Context, p *llm.Pipeline, src, dst string, req llm.Request, meta content.Meta, logo []byte, log *zap.Logger) ([]string, error) {
	text, err := extract.File(ctx, src, log.Named("extract"))
	if err != nil {
		return nil, err
	}
	req.Source = text

	body, err := p.Assignment(ctx, req)
	if err != nil {
		return nil, err
	}
	return produceFrom(ctx, body, AssignmentName(src), dst, meta, logo, log)
}
