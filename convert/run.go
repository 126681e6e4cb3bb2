// Package convert drives processing of assignment sources: reading text,
// optionally asking assistant to write it, and producing documents in all
// requested formats.
package convert

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime/debug"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/maruel/natural"
	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"scribe/config"
	"scribe/content"
	"scribe/extract"
	"scribe/state"
)

// MetaFlags are cover page flags shared by commands producing documents.
func MetaFlags() []cli.Flag {
	defaults := content.DefaultMeta()
	return []cli.Flag{
		&cli.StringFlag{Name: "title", Value: defaults.Title, Usage: "assignment `TITLE`"},
		&cli.StringFlag{Name: "student", Value: defaults.Student, Usage: "student `NAME`"},
		&cli.StringFlag{Name: "registration", Value: defaults.Registration, Usage: "registration `NUMBER`, empty to omit"},
		&cli.StringFlag{Name: "instructor", Value: defaults.Instructor, Usage: "instructor `NAME`, empty to omit"},
		&cli.StringFlag{Name: "semester", Value: defaults.Semester, Usage: "`SEMESTER`, empty to omit"},
		&cli.StringFlag{Name: "university", Value: defaults.University, Usage: "`UNIVERSITY`, empty to omit"},
		&cli.StringFlag{Name: "logo", Usage: "image `FILE` to put on the cover page instead of configured default"},
	}
}

// OutputFlags are flags controlling where and how documents are written.
func OutputFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "to", Value: strings.Join(config.OutputFmtNames(), ","),
			Usage: "comma separated output `TYPES` (supported types: " + strings.Join(config.OutputFmtNames(), ", ") + ")"},
		&cli.BoolFlag{Name: "nodirs", Aliases: []string{"nd"}, Usage: "when producing output do not keep input directory structure"},
		&cli.BoolFlag{Name: "overwrite", Aliases: []string{"ow"}, Usage: "continue even if destination exits, overwrite files"},
	}
}

func metaFromCommand(cmd *cli.Command) content.Meta {
	return content.Meta{
		Title:        cmd.String("title"),
		Student:      cmd.String("student"),
		Registration: cmd.String("registration"),
		Instructor:   cmd.String("instructor"),
		Semester:     cmd.String("semester"),
		University:   cmd.String("university"),
	}
}

// parseFormats reads comma separated list of formats, unknown names are
// ignored. When nothing usable is left all formats are produced.
func parseFormats(list string, log *zap.Logger) []config.OutputFmt {
	var formats []config.OutputFmt
	for name := range strings.SplitSeq(list, ",") {
		name = strings.TrimSpace(name)
		if len(name) == 0 {
			continue
		}
		format, err := config.ParseOutputFmt(strings.ToLower(name))
		if err != nil {
			log.Warn("Unknown output format requested, ignoring", zap.String("format", name), zap.Error(err))
			continue
		}
		if !slices.Contains(formats, format) {
			formats = append(formats, format)
		}
	}
	if len(formats) == 0 {
		formats = config.OutputFmtValues()
	}
	return formats
}

// prepareOutput reads destination and flags shared by all producing
// commands into the environment. Destination argument is at position "at".
func prepareOutput(ctx context.Context, cmd *cli.Command, at int, log *zap.Logger) (dst string, logo []byte, err error) {
	env := state.EnvFromContext(ctx)

	dst = cmd.Args().Get(at)
	if len(dst) == 0 {
		if dst, err = os.Getwd(); err != nil {
			return "", nil, fmt.Errorf("unable to get working directory: %w", err)
		}
	}
	if dst, err = filepath.Abs(dst); err != nil {
		return "", nil, err
	}
	if cmd.Args().Len() > at+1 {
		log.Warn("Mailformed command line, too many destinations", zap.Strings("ignoring", cmd.Args().Slice()[at+1:]))
	}

	env.Formats = parseFormats(cmd.String("to"), log)
	env.NoDirs, env.Overwrite = cmd.Bool("nodirs"), cmd.Bool("overwrite")

	if path := cmd.String("logo"); len(path) > 0 {
		if logo, err = os.ReadFile(path); err != nil {
			return "", nil, fmt.Errorf("unable to read logo from %q: %w", path, err)
		}
	}
	return dst, logo, nil
}

func formatNames(formats []config.OutputFmt) []string {
	names := make([]string, 0, len(formats))
	for _, f := range formats {
		names = append(names, f.String())
	}
	return names
}

// Run is "convert" command: text already written in markup form is turned
// into documents.
func Run(ctx context.Context, cmd *cli.Command) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("convert")

	src := cmd.Args().Get(0)
	if len(src) == 0 {
		return errors.New("no input source has been specified")
	}
	src, err = filepath.Abs(src)
	if err != nil {
		return err
	}

	dst, logo, err := prepareOutput(ctx, cmd, 1, log)
	if err != nil {
		return err
	}

	log.Info("Processing starting", zap.String("source", src), zap.String("destination", dst), zap.Strings("formats", formatNames(env.Formats)))
	defer func(start time.Time) {
		log.Info("Processing completed", zap.Duration("elapsed", time.Since(start)))
	}(time.Now())

	return process(ctx, src, dst, metaFromCommand(cmd), logo, log)
}

// process determines the input type (directory or single file) and processes
// accordingly.
func process(ctx context.Context, src, dst string, meta content.Meta, logo []byte, log *zap.Logger) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	fi, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("input source was not found (%s): %w", src, err)
	}
	if fi.Mode().IsDir() {
		if err := processDir(ctx, src, dst, meta, logo, log); err != nil {
			return fmt.Errorf("unable to process directory: %w", err)
		}
		return nil
	}
	if !fi.Mode().IsRegular() {
		return fmt.Errorf("unexpected path mode for (%s)", src)
	}
	return processFile(ctx, src, filepath.Base(src), dst, meta, logo, log)
}

// listSources returns regular files under directory in natural order of
// their paths.
func listSources(ctx context.Context, dir string, log *zap.Logger) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err != nil {
			log.Warn("Skipping path", zap.String("path", path), zap.Error(err))
			return nil
		}
		if d.Type().IsRegular() {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Sort(natural.StringSlice(paths))
	return paths, nil
}

// processDir processes every file under directory text could be read from.
// Failures are logged and do not stop processing of remaining files.
func processDir(ctx context.Context, dir, dst string, meta content.Meta, logo []byte, log *zap.Logger) error {
	paths, err := listSources(ctx, dir, log)
	if err != nil {
		return err
	}

	count := 0
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return err
		}
		src := strings.TrimPrefix(strings.TrimPrefix(path, dir), string(filepath.Separator))
		err := processFile(ctx, path, src, dst, meta, logo, log)
		switch {
		case err == nil:
			count++
		case extract.IsUnsupported(err):
			log.Debug("Skipping file, not recognized as text source", zap.String("file", path))
		default:
			log.Error("Unable to process file", zap.String("file", path), zap.Error(err))
		}
	}
	if count == 0 {
		log.Debug("Nothing to process", zap.String("dir", dir))
	}
	return nil
}

// processFile produces documents from a single source file. "src" is part of
// the source path (always including file name) relative to the original path.
func processFile(ctx context.Context, path, src, dst string, meta content.Meta, logo []byte, log *zap.Logger) error {
	body, err := extract.File(ctx, path, log.Named("extract"))
	if err != nil {
		return err
	}
	_, err = produceFrom(ctx, body, src, dst, meta, logo, log)
	return err
}

// produceFrom prepares assignment from body text and writes all requested
// documents.
func produceFrom(ctx context.Context, body, src, dst string, meta content.Meta, logo []byte, log *zap.Logger) (produced []string, rerr error) {
	log.Info("Conversion starting", zap.String("from", src))
	defer func(start time.Time) {
		if r := recover(); r != nil {
			log.Error("Conversion ended with panic",
				zap.Any("panic", r), zap.Duration("elapsed", time.Since(start)), zap.String("from", src), zap.ByteString("stack", debug.Stack()))
			rerr = fmt.Errorf("conversion panic: %v", r)
		} else {
			log.Info("Conversion completed", zap.Duration("elapsed", time.Since(start)), zap.Strings("to", produced))
		}
	}(time.Now())

	a, err := content.Prepare(ctx, meta, body, logo, src, log)
	if err != nil {
		return nil, fmt.Errorf("unable to prepare assignment (%s): %w", src, err)
	}
	defer func() {
		if err := a.Release(ctx); err != nil {
			log.Warn("Unable to remove work directory", zap.String("dir", a.WorkDir), zap.Error(err))
		}
	}()

	return Produce(ctx, a, src, dst, log)
}
