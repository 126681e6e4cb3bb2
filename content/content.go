// Package content keeps assignment being produced: cover page metadata and
// body text in markup form.
package content

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/text/unicode/norm"

	"scribe/markup"
	"scribe/misc"
	"scribe/state"
	"scribe/utils/images"
)

// Meta describes assignment author and context shown on the cover page.
type Meta struct {
	Title        string
	Student      string
	Registration string
	Instructor   string
	Semester     string
	University   string
}

// DefaultMeta returns values used when nothing was specified.
func DefaultMeta() Meta {
	return Meta{
		Title:        "Assignment",
		Student:      "Student Name",
		Registration: "N/A",
		Instructor:   "Instructor",
		Semester:     "N/A",
		University:   "University",
	}
}

// Normalize trims all values.
func (m Meta) Normalize() Meta {
	for _, f := range []*string{&m.Title, &m.Student, &m.Registration, &m.Instructor, &m.Semester, &m.University} {
		*f = strings.TrimSpace(*f)
	}
	return m
}

// Subject is a document subject used in document metadata.
func (m Meta) Subject() string {
	switch {
	case m.Title == "":
		return m.University
	case m.University == "":
		return m.Title
	}
	return m.Title + " - " + m.University
}

// CoverLines returns "Label: value" lines for the cover page, empty values
// are skipped.
func (m Meta) CoverLines() []string {
	var lines []string
	for _, d := range []struct{ label, value string }{
		{"Student Name", m.Student},
		{"Registration Number", m.Registration},
		{"Instructor Name", m.Instructor},
		{"Semester", m.Semester},
		{"University", m.University},
	} {
		if len(d.value) > 0 {
			lines = append(lines, d.label+": "+d.value)
		}
	}
	return lines
}

// Assignment is a complete document ready for rendering.
type Assignment struct {
	ID      uuid.UUID
	Meta    Meta
	Body    string
	Logo    *images.Logo
	Created time.Time

	// SrcName is name of the source file, used to derive output names.
	SrcName string
	WorkDir string

	blocks []markup.Block
}

// Blocks returns classified lines of assignment body.
func (a *Assignment) Blocks() []markup.Block {
	return a.blocks
}

// Prepare normalizes body text and metadata, classifies body lines and
// prepares logo (explicit one or configured default). Work directory is
// created for intermediate files, when debug report is requested directory
// is stored there, otherwise caller must Release it.
func Prepare(ctx context.Context, meta Meta, body string, logo []byte, srcName string, log *zap.Logger) (*Assignment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	env := state.EnvFromContext(ctx)

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("unable to generate document UUID: %w", err)
	}

	a := &Assignment{
		ID:      id,
		Meta:    meta.Normalize(),
		Body:    norm.NFC.String(strings.ReplaceAll(body, "\r\n", "\n")),
		Created: time.Now(),
		SrcName: srcName,
	}
	a.blocks = markup.ClassifyText(a.Body)

	if len(logo) == 0 {
		logo = env.Logo
	}
	if len(logo) > 0 {
		lc := env.Cfg.Document.Logo
		if a.Logo, err = images.PrepareLogo(logo, lc.MaxWidth, lc.MaxHeight, log); err != nil {
			// cover page without logo is still a cover page
			log.Warn("Unable to use logo, skipping", zap.Error(err))
		}
	}

	if a.WorkDir, err = os.MkdirTemp("", misc.GetAppName()+"-"); err != nil {
		return nil, fmt.Errorf("unable to create temporary directory: %w", err)
	}
	env.Rpt.Store(fmt.Sprintf("%s-%s", misc.GetAppName(), a.ID), a.WorkDir)

	if env.Rpt != nil {
		base := "assignment"
		if len(srcName) > 0 {
			base = filepath.Base(srcName)
		}
		if err := os.WriteFile(filepath.Join(a.WorkDir, base+"_body.md"), []byte(a.Body), 0644); err != nil {
			return nil, fmt.Errorf("unable to write body for debugging: %w", err)
		}
		if err := os.WriteFile(filepath.Join(a.WorkDir, base+"_prepared"), []byte(a.String()), 0644); err != nil {
			return nil, fmt.Errorf("unable to write prepared assignment for debugging: %w", err)
		}
	}

	log.Debug("Assignment prepared", zap.Stringer("id", a.ID), zap.Int("blocks", len(a.blocks)), zap.Bool("logo", a.Logo != nil))
	return a, nil
}

// Release removes work directory unless it belongs to debug report.
func (a *Assignment) Release(ctx context.Context) error {
	if a == nil || len(a.WorkDir) == 0 || state.EnvFromContext(ctx).Rpt != nil {
		return nil
	}
	return os.RemoveAll(a.WorkDir)
}
