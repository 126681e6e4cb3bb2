package convert

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"scribe/config"
	"scribe/content"
	"scribe/convert/odt"
	"scribe/convert/pdf"
	"scribe/markup"
	"scribe/state"
)

// Render writes assignment in requested format to w without touching file
// system.
func Render(w io.Writer, a *content.Assignment, format config.OutputFmt, cfg *config.DocumentConfig, styles []byte) error {
	l := cfg.Layout.Layout()
	switch format {
	case config.OutputFmtOdt:
		return odt.Write(w, a, odt.Options{Styles: styles, Layout: l})
	case config.OutputFmtPdf:
		pages, err := markup.Paginate(a.Blocks(), l)
		if err != nil {
			return fmt.Errorf("unable to paginate: %w", err)
		}
		return pdf.Write(w, a, pages, pdf.Options{Layout: l, PageNumbers: cfg.PageNumbers, Compress: cfg.Compress})
	}
	return fmt.Errorf("unsupported output format %q", format)
}

// Produce creates output file for every requested format. "src" is source
// path relative to the processed input used to derive output names, "dst" is
// destination directory. Failure of one format does not prevent others from
// being produced, names of created files are returned.
func Produce(ctx context.Context, a *content.Assignment, src, dst string, log *zap.Logger) (produced []string, err error) {
	env := state.EnvFromContext(ctx)

	formats := env.Formats
	if len(formats) == 0 {
		formats = config.OutputFmtValues()
	}

	for _, format := range formats {
		if cerr := ctx.Err(); cerr != nil {
			return produced, multierr.Append(err, cerr)
		}

		outputName := buildOutputPath(a, src, dst, format, env)

		var gerr error
		switch format {
		case config.OutputFmtOdt:
			gerr = odt.Generate(ctx, a, outputName, &env.Cfg.Document, log.Named("odt"))
		case config.OutputFmtPdf:
			gerr = pdf.Generate(ctx, a, outputName, &env.Cfg.Document, log.Named("pdf"))
		default:
			gerr = fmt.Errorf("unsupported output format %q", format)
		}
		if gerr != nil {
			err = multierr.Append(err, fmt.Errorf("unable to generate %s: %w", format, gerr))
			continue
		}

		// Store conversion result for debugging
		env.Rpt.Store(fmt.Sprintf("result-%s%s", a.ID, filepath.Ext(outputName)), outputName)
		produced = append(produced, outputName)
	}
	return produced, err
}
