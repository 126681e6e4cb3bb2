// Package pdf renders paginated assignments as fixed-layout documents.
package pdf

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/jung-kurt/gofpdf"
	"go.uber.org/zap"

	"scribe/config"
	"scribe/content"
	"scribe/markup"
	"scribe/misc"
	"scribe/state"
	"scribe/utils/files"
)

const (
	fontFamily = "Times"
	logoName   = "logo"

	// cover page positions, fractions of page height measured from bottom
	coverTop        = 0.85
	coverLogoMaxH   = 0.15
	coverLogoScale  = 0.3
	coverLogoGap    = 0.05
	coverTitleGap   = 0.15
	coverDetailStep = 0.06

	coverBorderPt   = 2
	contentBorderPt = 1
	contentInset    = 0.02

	titleSize      = 24
	detailSize     = 12
	pageNumberSize = 10

	pointsPerInch = 72.0
)

// Options controls rendering.
type Options struct {
	Layout      markup.Layout
	PageNumbers bool
	Compress    bool
}

type renderer struct {
	pdf  *gofpdf.Fpdf
	l    markup.Layout
	tr   func(string) string
	opts Options
}

// Write renders cover page followed by pages and writes document to w.
func Write(w io.Writer, a *content.Assignment, pages []markup.Page, opts Options) error {
	l := opts.Layout
	if err := l.Validate(); err != nil {
		return fmt.Errorf("invalid layout: %w", err)
	}

	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "in",
		Size:           gofpdf.SizeType{Wd: l.PageWidth, Ht: l.PageHeight},
	})
	pdf.SetMargins(l.MarginLeft, l.MarginTop, l.MarginRight)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetCompression(opts.Compress)

	pdf.SetTitle(a.Meta.Title, true)
	pdf.SetAuthor(a.Meta.Student, true)
	pdf.SetSubject(a.Meta.Subject(), true)
	pdf.SetCreator(misc.GetAppName()+"/"+misc.GetVersion(), true)
	if !a.Created.IsZero() {
		pdf.SetCreationDate(a.Created)
	}

	r := &renderer{
		pdf:  pdf,
		l:    l,
		tr:   pdf.UnicodeTranslatorFromDescriptor(""),
		opts: opts,
	}
	r.cover(a)
	for _, p := range pages {
		r.page(p)
	}

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("unable to render document: %w", err)
	}
	return pdf.Output(w)
}

// Generate paginates assignment body and creates output file. Document is
// rendered in the work directory first and copied to its final location
// when complete.
func Generate(ctx context.Context, a *content.Assignment, outputPath string, cfg *config.DocumentConfig, log *zap.Logger) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	env := state.EnvFromContext(ctx)

	if err := files.PrepareOutput(outputPath, env.Overwrite, log); err != nil {
		return err
	}

	l := cfg.Layout.Layout()
	pages, err := markup.Paginate(a.Blocks(), l)
	if err != nil {
		return fmt.Errorf("unable to paginate: %w", err)
	}
	env.Rpt.StoreData(fmt.Sprintf("pages-%s.txt", a.ID), []byte(markup.DumpPages(pages, l)))

	log.Info("Generating PDF", zap.String("output", outputPath), zap.Int("pages", len(pages)+1))

	_, tmpName := filepath.Split(outputPath)
	tmpName = filepath.Join(a.WorkDir, tmpName)

	f, err := os.Create(tmpName)
	if err != nil {
		return fmt.Errorf("unable to create output file: %w", err)
	}
	// clean temporary file
	defer os.Remove(tmpName)

	opts := Options{Layout: l, PageNumbers: cfg.PageNumbers, Compress: cfg.Compress}
	if err := Write(f, a, pages, opts); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("unable to finalize output file: %w", err)
	}
	return files.CopyFile(tmpName, outputPath)
}

// y converts normalized vertical position (0 at the bottom) into page
// coordinates.
func (r *renderer) y(norm float64) float64 {
	return (1 - norm) * r.l.PageHeight
}

// centered draws line of text horizontally centered with its vertical
// middle at normalized position.
func (r *renderer) centered(text string, norm, size float64) {
	s := r.tr(text)
	w := r.pdf.GetStringWidth(s)
	// baseline sits about a third of the em below the middle
	baseline := r.y(norm) + size/pointsPerInch*0.35
	r.pdf.Text((r.l.PageWidth-w)/2, baseline, s)
}

func (r *renderer) cover(a *content.Assignment) {
	pdf, l := r.pdf, r.l
	pdf.AddPage()

	pdf.SetLineWidth(coverBorderPt / pointsPerInch)
	pdf.SetDrawColor(0, 0, 0)
	pdf.Rect(0, 0, l.PageWidth, l.PageHeight, "D")

	y := coverTop
	if aspect := a.Logo.Aspect(); aspect > 0 {
		h := min(coverLogoMaxH, aspect*coverLogoScale)
		w := h / aspect
		opts := gofpdf.ImageOptions{ImageType: "PNG"}
		pdf.RegisterImageOptionsReader(logoName, opts, bytes.NewReader(a.Logo.Data))
		pdf.ImageOptions(logoName, (0.5-w/2)*l.PageWidth, r.y(y), w*l.PageWidth, h*l.PageHeight, false, opts, 0, "")
		y -= h + coverLogoGap
	}

	pdf.SetTextColor(0, 0, 0)
	pdf.SetFont(fontFamily, "B", titleSize)
	r.centered(a.Meta.Title, y, titleSize)
	y -= coverTitleGap

	pdf.SetFont(fontFamily, "", detailSize)
	for _, line := range a.Meta.CoverLines() {
		r.centered(line, y, detailSize)
		y -= coverDetailStep
	}
}

func (r *renderer) page(p markup.Page) {
	pdf, l := r.pdf, r.l
	pdf.AddPage()

	pdf.SetLineWidth(contentBorderPt / pointsPerInch)
	pdf.SetDrawColor(0, 0, 0)
	pdf.Rect(contentInset*l.PageWidth, contentInset*l.PageHeight,
		(1-2*contentInset)*l.PageWidth, (1-2*contentInset)*l.PageHeight, "D")

	pdf.SetTextColor(0, 0, 0)
	var (
		cursor   = l.Top()
		hang     float64
		prevCont bool
	)
	for _, f := range p.Fragments {
		cursor -= l.LineHeight(f.Style)

		style := ""
		if f.Style.Weight == markup.WeightBold {
			style = "B"
		}
		pdf.SetFont(fontFamily, style, f.Style.FontSize)

		x := l.MarginLeft + f.Style.Indent*l.PageWidth
		switch {
		case f.Run == markup.RunNone:
			hang = 0
		case prevCont:
			// wrapped list item line goes under item text
			x += hang
		default:
			hang = r.markerWidth(f.Text)
		}
		prevCont = f.Continuation

		if len(f.Text) > 0 {
			pdf.Text(x, r.y(cursor), r.tr(f.Text))
		}
	}

	if r.opts.PageNumbers {
		pdf.SetFont(fontFamily, "", pageNumberSize)
		pdf.SetTextColor(128, 128, 128)
		r.centered("Page "+strconv.Itoa(p.Number), l.Bottom()/2, pageNumberSize)
	}
}

// markerWidth measures list marker with the following space, text of the
// first line of list item starts with it.
func (r *renderer) markerWidth(text string) float64 {
	marker, _, ok := strings.Cut(text, " ")
	if !ok {
		return 0
	}
	return r.pdf.GetStringWidth(r.tr(marker + " "))
}
