package extract

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tsawler/tabula"
	"github.com/tsawler/tabula/docx"
	"github.com/tsawler/tabula/odt"
	"github.com/tsawler/tabula/reader"
	"go.uber.org/zap"
)

// pdfText extracts text page by page. Pages which could not be read or have
// no text are skipped. Encrypted documents get one more attempt for every
// failed page using freshly opened reader.
func pdfText(ctx context.Context, path string, log *zap.Logger) (string, error) {
	r, err := reader.Open(path)
	if err != nil {
		return "", fmt.Errorf("unable to open PDF: %w", err)
	}
	defer r.Close()

	count, err := r.PageCount()
	if err != nil {
		return "", fmt.Errorf("unable to get PDF page count: %w", err)
	}
	encrypted := r.Trailer().Get("Encrypt") != nil

	log.Debug("Reading PDF", zap.Int("pages", count), zap.Bool("encrypted", encrypted))

	var pages []string
	for n := 1; n <= count; n++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		text, err := pageText(r, n)
		if err != nil && encrypted {
			log.Debug("Retrying encrypted page", zap.Int("page", n), zap.Error(err))
			text, err = reopenedPageText(path, n)
		}
		if err != nil {
			log.Debug("Skipping unreadable page", zap.Int("page", n), zap.Error(err))
			continue
		}
		if len(strings.TrimSpace(text)) == 0 {
			continue
		}
		pages = append(pages, text)
	}

	if len(pages) < count {
		log.Info("Some PDF pages have no extractable text", zap.Int("pages", count), zap.Int("extracted", len(pages)))
	}
	return strings.Join(pages, "\n\n"), nil
}

// pageText extracts single page (1-based), recovering from reader panics on
// malformed content streams.
func pageText(r *reader.Reader, n int) (text string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("page %d: %v", n, rec)
		}
	}()

	text, _, err = tabula.FromReader(r).Pages(n).Text()
	return text, err
}

func reopenedPageText(path string, n int) (string, error) {
	r, err := reader.Open(path)
	if err != nil {
		return "", err
	}
	defer r.Close()
	return pageText(r, n)
}

func docxText(path string) (string, error) {
	r, err := docx.Open(path)
	if err != nil {
		return "", fmt.Errorf("unable to open DOCX: %w", err)
	}
	defer r.Close()

	text, err := r.Text()
	if err != nil {
		return "", fmt.Errorf("unable to read DOCX: %w", err)
	}
	return text, nil
}

func odtText(path string) (string, error) {
	r, err := odt.Open(path)
	if err != nil {
		return "", fmt.Errorf("unable to open ODT: %w", err)
	}
	defer r.Close()

	text, err := r.Text()
	if err != nil {
		return "", fmt.Errorf("unable to read ODT: %w", err)
	}
	return text, nil
}

// IsUnsupported reports whether err was caused by unknown source format.
func IsUnsupported(err error) bool {
	return errors.Is(err, ErrUnsupportedFormat)
}
