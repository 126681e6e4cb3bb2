// Package extract turns uploaded source documents into plain text suitable
// for assistant prompts.
package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/h2non/filetype"
	"go.uber.org/zap"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/unicode/norm"

	"scribe/misc"
)

// ErrUnsupportedFormat is returned for binary data we do not know how to
// read.
var ErrUnsupportedFormat = errors.New("unsupported source format")

// Format is detected source kind.
type Format int

const (
	FormatUnknown Format = iota
	FormatText
	FormatPDF
	FormatDOCX
	FormatODT
)

func (f Format) String() string {
	switch f {
	case FormatText:
		return "text"
	case FormatPDF:
		return "pdf"
	case FormatDOCX:
		return "docx"
	case FormatODT:
		return "odt"
	}
	return "unknown"
}

func (f Format) ext() string {
	if f == FormatUnknown || f == FormatText {
		return ".txt"
	}
	return "." + f.String()
}

const odtMimeType = "application/vnd.oasis.opendocument.text"

// Detect sniffs data and returns its format.
func Detect(data []byte) Format {
	if len(data) == 0 {
		return FormatText
	}
	if filetype.Is(data, "pdf") {
		return FormatPDF
	}
	if f := detectZipped(data); f != FormatUnknown {
		return f
	}
	if kind, err := filetype.Match(data); err == nil && kind != filetype.Unknown {
		// some other known binary: image, archive, executable...
		return FormatUnknown
	}
	if bytes.IndexByte(data, 0) >= 0 {
		return FormatUnknown
	}
	return FormatText
}

// detectZipped looks inside zip container for office document parts.
func detectZipped(data []byte) Format {
	if !bytes.HasPrefix(data, []byte("PK\x03\x04")) {
		return FormatUnknown
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return FormatUnknown
	}

	var hasContent bool
	for _, f := range zr.File {
		switch f.Name {
		case "word/document.xml":
			return FormatDOCX
		case "content.xml":
			hasContent = true
		case "mimetype":
			rc, err := f.Open()
			if err != nil {
				continue
			}
			mt, _ := io.ReadAll(io.LimitReader(rc, 128))
			rc.Close()
			if strings.TrimSpace(string(mt)) == odtMimeType {
				return FormatODT
			}
		}
	}
	if hasContent {
		return FormatODT
	}
	return FormatUnknown
}

// Text extracts text from document data. Result is NFC normalized.
func Text(ctx context.Context, data []byte, log *zap.Logger) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	format := Detect(data)
	log.Debug("Extracting text", zap.Stringer("format", format), zap.Int("size", len(data)))

	var (
		text string
		err  error
	)
	switch format {
	case FormatText:
		text, err = decodeText(data)
	case FormatPDF, FormatDOCX, FormatODT:
		text, err = staged(ctx, data, format, log)
	default:
		return "", ErrUnsupportedFormat
	}
	if err != nil {
		return "", err
	}
	return norm.NFC.String(text), nil
}

// File extracts text from document on disk.
func File(ctx context.Context, path string, log *zap.Logger) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("unable to read source: %w", err)
	}
	text, err := Text(ctx, data, log)
	if err != nil {
		return "", fmt.Errorf("unable to extract text from %q: %w", path, err)
	}
	return text, nil
}

// staged writes data to temporary file, document readers work with files
// only. File is removed on all paths.
func staged(ctx context.Context, data []byte, format Format, log *zap.Logger) (string, error) {
	f, err := os.CreateTemp("", misc.GetAppName()+"-x-*"+format.ext())
	if err != nil {
		return "", fmt.Errorf("unable to create temporary file: %w", err)
	}
	path := f.Name()
	defer func() {
		if err := os.Remove(path); err != nil {
			log.Warn("Unable to remove temporary file", zap.String("path", path), zap.Error(err))
		}
	}()

	if _, err := f.Write(data); err != nil {
		f.Close()
		return "", fmt.Errorf("unable to write temporary file: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("unable to close temporary file: %w", err)
	}

	switch format {
	case FormatPDF:
		return pdfText(ctx, path, log)
	case FormatDOCX:
		return docxText(path)
	case FormatODT:
		return odtText(path)
	}
	return "", ErrUnsupportedFormat
}

func decodeText(data []byte) (string, error) {
	if utf8.Valid(data) {
		return strings.TrimPrefix(string(data), "\ufeff"), nil
	}
	enc, _, _ := charset.DetermineEncoding(data, "text/plain")
	out, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return "", fmt.Errorf("unable to decode text: %w", err)
	}
	return string(out), nil
}
