// Package odt produces flow documents in OpenDocument Text format.
package odt

import (
	"archive/zip"
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/beevik/etree"
	fixzip "github.com/hidez8891/zip"
	"go.uber.org/zap"

	"scribe/config"
	"scribe/content"
	"scribe/markup"
	"scribe/misc"
	"scribe/state"
	"scribe/utils/files"
)

const (
	mimetypeContent = "application/vnd.oasis.opendocument.text"
	odfVersion      = "1.3"
	logoPath        = "Pictures/logo.png"

	stylePageBreak = "PB"
	styleBold      = "T1"

	// widest logo on the cover page, inches
	logoMaxWidth  = 2.0
	logoMaxHeight = 1.5
)

//go:embed styles.xml
var defaultStyles []byte

var namespaces = [][2]string{
	{"xmlns:office", "urn:oasis:names:tc:opendocument:xmlns:office:1.0"},
	{"xmlns:style", "urn:oasis:names:tc:opendocument:xmlns:style:1.0"},
	{"xmlns:text", "urn:oasis:names:tc:opendocument:xmlns:text:1.0"},
	{"xmlns:draw", "urn:oasis:names:tc:opendocument:xmlns:drawing:1.0"},
	{"xmlns:fo", "urn:oasis:names:tc:opendocument:xmlns:xsl-fo-compatible:1.0"},
	{"xmlns:svg", "urn:oasis:names:tc:opendocument:xmlns:svg-compatible:1.0"},
	{"xmlns:xlink", "http://www.w3.org/1999/xlink"},
}

// Options controls document production.
type Options struct {
	// Styles replaces embedded styles part when not empty. Page geometry of
	// replacement styles is left untouched.
	Styles []byte
	Layout markup.Layout
}

// Write builds complete document for assignment a and writes it to w.
func Write(w io.Writer, a *content.Assignment, opts Options) error {
	zw := zip.NewWriter(w)

	if err := writeMimetype(zw); err != nil {
		return fmt.Errorf("unable to write mimetype: %w", err)
	}
	if err := writeManifest(zw, a.Logo != nil); err != nil {
		return fmt.Errorf("unable to write manifest: %w", err)
	}
	if err := writeMeta(zw, a); err != nil {
		return fmt.Errorf("unable to write metadata: %w", err)
	}
	if err := writeStyles(zw, opts); err != nil {
		return fmt.Errorf("unable to write styles: %w", err)
	}
	if _, err := writeContent(zw, a); err != nil {
		return fmt.Errorf("unable to write content: %w", err)
	}
	if a.Logo != nil {
		if err := writeDataToZip(zw, logoPath, a.Logo.Data); err != nil {
			return fmt.Errorf("unable to write logo: %w", err)
		}
	}
	return zw.Close()
}

// Generate creates output file. Document is assembled in the work directory
// first and copied to its final location when complete.
func Generate(ctx context.Context, a *content.Assignment, outputPath string, cfg *config.DocumentConfig, log *zap.Logger) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	env := state.EnvFromContext(ctx)

	if err := files.PrepareOutput(outputPath, env.Overwrite, log); err != nil {
		return err
	}

	log.Info("Generating ODT", zap.String("output", outputPath))

	_, tmpName := filepath.Split(outputPath)
	tmpName = filepath.Join(a.WorkDir, tmpName)

	f, err := os.Create(tmpName)
	if err != nil {
		return fmt.Errorf("unable to create output file: %w", err)
	}
	// clean temporary file
	defer os.Remove(tmpName)

	opts := Options{Styles: env.Styles, Layout: cfg.Layout.Layout()}
	if err := Write(f, a, opts); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("unable to finalize output file: %w", err)
	}

	if cfg.FixZip {
		return copyZipWithoutDataDescriptors(tmpName, outputPath)
	}
	return files.CopyFile(tmpName, outputPath)
}

func newDocument(root string) (*etree.Document, *etree.Element) {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	el := doc.CreateElement(root)
	for _, ns := range namespaces {
		el.CreateAttr(ns[0], ns[1])
	}
	el.CreateAttr("office:version", odfVersion)
	return doc, el
}

func writeMimetype(zw *zip.Writer) error {
	w, err := zw.CreateHeader(&zip.FileHeader{
		Name:   "mimetype",
		Method: zip.Store,
	})
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, mimetypeContent)
	return err
}

func writeManifest(zw *zip.Writer, withLogo bool) error {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	manifest := doc.CreateElement("manifest:manifest")
	manifest.CreateAttr("xmlns:manifest", "urn:oasis:names:tc:opendocument:xmlns:manifest:1.0")
	manifest.CreateAttr("manifest:version", odfVersion)

	entry := func(path, mediaType string) {
		e := manifest.CreateElement("manifest:file-entry")
		e.CreateAttr("manifest:full-path", path)
		if path == "/" {
			e.CreateAttr("manifest:version", odfVersion)
		}
		e.CreateAttr("manifest:media-type", mediaType)
	}
	entry("/", mimetypeContent)
	entry("content.xml", "text/xml")
	entry("styles.xml", "text/xml")
	entry("meta.xml", "text/xml")
	if withLogo {
		entry(logoPath, "image/png")
	}
	return writeXMLToZip(zw, "META-INF/manifest.xml", doc)
}

func writeMeta(zw *zip.Writer, a *content.Assignment) error {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	root := doc.CreateElement("office:document-meta")
	root.CreateAttr("xmlns:office", "urn:oasis:names:tc:opendocument:xmlns:office:1.0")
	root.CreateAttr("xmlns:meta", "urn:oasis:names:tc:opendocument:xmlns:meta:1.0")
	root.CreateAttr("xmlns:dc", "http://purl.org/dc/elements/1.1/")
	root.CreateAttr("office:version", odfVersion)

	meta := root.CreateElement("office:meta")
	meta.CreateElement("meta:generator").SetText(misc.GetAppName() + "/" + misc.GetVersion())
	if a.Meta.Title != "" {
		meta.CreateElement("dc:title").SetText(a.Meta.Title)
	}
	if a.Meta.Student != "" {
		meta.CreateElement("dc:creator").SetText(a.Meta.Student)
		meta.CreateElement("meta:initial-creator").SetText(a.Meta.Student)
	}
	if subject := a.Meta.Subject(); subject != "" {
		meta.CreateElement("dc:subject").SetText(subject)
	}
	created := a.Created
	if created.IsZero() {
		created = time.Now()
	}
	meta.CreateElement("meta:creation-date").SetText(created.Format("2006-01-02T15:04:05"))
	meta.CreateElement("dc:date").SetText(created.Format("2006-01-02T15:04:05"))
	meta.CreateElement("dc:language").SetText("en-US")
	meta.CreateElement("dc:identifier").SetText("urn:uuid:" + a.ID.String())

	return writeXMLToZip(zw, "meta.xml", doc)
}

// writeStyles writes configured styles verbatim, embedded ones get page
// geometry from layout.
func writeStyles(zw *zip.Writer, opts Options) error {
	if len(opts.Styles) > 0 {
		return writeDataToZip(zw, "styles.xml", opts.Styles)
	}

	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(defaultStyles); err != nil {
		return fmt.Errorf("unable to parse embedded styles: %w", err)
	}
	if opts.Layout.PageWidth > 0 {
		if props := doc.FindElement("//style:page-layout/style:page-layout-properties"); props != nil {
			l := opts.Layout
			for _, kv := range [][2]any{
				{"fo:page-width", l.PageWidth},
				{"fo:page-height", l.PageHeight},
				{"fo:margin-left", l.MarginLeft},
				{"fo:margin-right", l.MarginRight},
				{"fo:margin-top", l.MarginTop},
				{"fo:margin-bottom", l.MarginBottom},
			} {
				props.CreateAttr(kv[0].(string), inches(kv[1].(float64)))
			}
		}
	}
	return writeXMLToZip(zw, "styles.xml", doc)
}

func writeAutomaticStyles(parent *etree.Element) {
	styles := parent.CreateElement("office:automatic-styles")

	paragraph := func(name string, props ...[2]string) {
		st := styles.CreateElement("style:style")
		st.CreateAttr("style:name", name)
		st.CreateAttr("style:family", "paragraph")
		st.CreateAttr("style:parent-style-name", "Standard")
		pp := st.CreateElement("style:paragraph-properties")
		for _, p := range props {
			pp.CreateAttr(p[0], p[1])
		}
	}
	paragraph(markup.StyleParagraph, [2]string{"fo:text-align", "justify"})
	paragraph(markup.StyleListItem, [2]string{"fo:margin-left", "0.5in"}, [2]string{"fo:text-indent", "-0.25in"})
	paragraph(markup.StyleCentered, [2]string{"fo:text-align", "center"})
	paragraph(stylePageBreak, [2]string{"fo:break-before", "page"})

	bold := styles.CreateElement("style:style")
	bold.CreateAttr("style:name", styleBold)
	bold.CreateAttr("style:family", "text")
	bold.CreateElement("style:text-properties").CreateAttr("fo:font-weight", "bold")
}

func writeContent(zw *zip.Writer, a *content.Assignment) (markup.FlowStats, error) {
	doc, root := newDocument("office:document-content")
	writeAutomaticStyles(root)

	body := root.CreateElement("office:body").CreateElement("office:text")
	writeCover(body, a)

	// body always starts on a new page
	brk := body.CreateElement("text:p")
	brk.CreateAttr("text:style-name", stylePageBreak)

	st := markup.EmitFlow(body, a.Blocks())
	return st, writeXMLToZip(zw, "content.xml", doc)
}

func writeCover(body *etree.Element, a *content.Assignment) {
	if a.Logo != nil {
		w, h := logoFrame(a.Logo.Aspect())
		p := body.CreateElement("text:p")
		p.CreateAttr("text:style-name", markup.StyleCentered)
		frame := p.CreateElement("draw:frame")
		frame.CreateAttr("draw:name", "Logo")
		frame.CreateAttr("text:anchor-type", "as-char")
		frame.CreateAttr("svg:width", inches(w))
		frame.CreateAttr("svg:height", inches(h))
		img := frame.CreateElement("draw:image")
		img.CreateAttr("xlink:href", logoPath)
		img.CreateAttr("xlink:type", "simple")
		img.CreateAttr("xlink:show", "embed")
		img.CreateAttr("xlink:actuate", "onLoad")
	}

	title := body.CreateElement("text:p")
	title.CreateAttr("text:style-name", "Title")
	title.SetText(a.Meta.Title)

	if a.Meta.University != "" {
		sub := body.CreateElement("text:p")
		sub.CreateAttr("text:style-name", "Subtitle")
		sub.SetText(a.Meta.University)
	}

	for _, line := range coverDetails(a.Meta) {
		p := body.CreateElement("text:p")
		p.CreateAttr("text:style-name", markup.StyleCentered)
		label := p.CreateElement("text:span")
		label.CreateAttr("text:style-name", styleBold)
		label.SetText(line[0] + ":")
		p.CreateText(" " + line[1])
	}
}

// coverDetails splits cover lines into label and value.
func coverDetails(m content.Meta) [][2]string {
	var out [][2]string
	for _, line := range m.CoverLines() {
		if label, value, ok := strings.Cut(line, ": "); ok {
			out = append(out, [2]string{label, value})
		}
	}
	return out
}

// logoFrame returns logo size in inches keeping aspect ratio (height/width).
func logoFrame(aspect float64) (float64, float64) {
	if aspect <= 0 {
		return logoMaxWidth, logoMaxHeight
	}
	w, h := logoMaxWidth, logoMaxWidth*aspect
	if h > logoMaxHeight {
		w, h = logoMaxHeight/aspect, logoMaxHeight
	}
	return w, h
}

func inches(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + "in"
}

func writeXMLToZip(zw *zip.Writer, name string, doc *etree.Document) error {
	var buf bytes.Buffer
	if _, err := doc.WriteTo(&buf); err != nil {
		return err
	}
	return writeDataToZip(zw, name, buf.Bytes())
}

func writeDataToZip(zw *zip.Writer, name string, data []byte) error {
	w, err := zw.Create(name)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

func copyZipWithoutDataDescriptors(from, to string) error {
	out, err := os.Create(to)
	if err != nil {
		return fmt.Errorf("unable to create target file (%s): %w", to, err)
	}
	defer out.Close()

	r, err := fixzip.OpenReader(from)
	if err != nil {
		return fmt.Errorf("unable to read archive file (%s): %w", from, err)
	}
	defer r.Close()

	w := fixzip.NewWriter(out)
	defer w.Close()

	for _, file := range r.File {
		// unset data descriptor flag.
		file.Flags &= ^fixzip.FlagDataDescriptor

		// copy zip entry
		if err := w.CopyFile(file); err != nil {
			return fmt.Errorf("unable to write target file (%s): %w", to, err)
		}
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("unable to finalize target file (%s): %w", to, err)
	}
	return out.Close()
}
