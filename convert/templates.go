package convert

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"text/template"

	sprig "github.com/go-task/slim-sprig/v3"

	"scribe/config"
	"scribe/content"
)

// Values is a struct that holds variables we make available for template expansion
type Values struct {
	Context      string
	Title        string
	Student      string
	Registration string
	Instructor   string
	Semester     string
	University   string
	Format       string
	SourceName   string
	ID           string
	Date         string
}

func expandTemplate(a *content.Assignment, name config.TemplateFieldName, field string, format config.OutputFmt) (string, error) {
	funcMap := sprig.FuncMap()

	tmpl, err := template.New(string(name)).Funcs(funcMap).Parse(field)
	if err != nil {
		return "", fmt.Errorf("unable to parse template field %s: %w", name, err)
	}

	values := Values{
		Context:      string(name),
		Title:        a.Meta.Title,
		Student:      a.Meta.Student,
		Registration: a.Meta.Registration,
		Instructor:   a.Meta.Instructor,
		Semester:     a.Meta.Semester,
		University:   a.Meta.University,
		Format:       format.String(),
		SourceName:   strings.TrimSuffix(filepath.Base(a.SrcName), filepath.Ext(a.SrcName)),
		ID:           a.ID.String(),
	}
	if !a.Created.IsZero() {
		values.Date = a.Created.Format("2006-01-02")
	}

	buf := new(bytes.Buffer)
	if err := tmpl.Execute(buf, values); err != nil {
		return "", err
	}
	return strings.TrimSpace(buf.String()), nil
}
