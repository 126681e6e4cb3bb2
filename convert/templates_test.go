package convert

import (
	"strings"
	"testing"
	"time"

	"scribe/config"
)

func TestExpandTemplate(t *testing.T) {
	tests := []struct {
		name     string
		field    string
		format   config.OutputFmt
		expected string
	}{
		{"simple text", "simple-text", config.OutputFmtOdt, "simple-text"},
		{"title", "{{ .Title }}", config.OutputFmtOdt, "Test Essay"},
		{"student", "{{ .Student }}", config.OutputFmtOdt, "Jane Roe"},
		{"cover defaults", "{{ .Registration }}|{{ .Instructor }}|{{ .University }}", config.OutputFmtOdt, "N/A|Instructor|University"},
		{"semester", "{{ .Semester }}", config.OutputFmtOdt, "Fall 2025"},
		{"format", "{{ .Format }}", config.OutputFmtPdf, "pdf"},
		{"source name", "{{ .SourceName }}", config.OutputFmtOdt, "essay"},
		{"id", "{{ .ID }}", config.OutputFmtOdt, "0199f0a4-7c7e-7a8b-9c3d-2e1f0a9b8c7d"},
		{"date", "{{ .Date }}", config.OutputFmtOdt, "2025-10-03"},
		{"context", "{{ .Context }}", config.OutputFmtOdt, string(config.OutputNameTemplateFieldName)},
		{"sprig", "{{ .Student | upper }}_{{ .Format | title }}", config.OutputFmtPdf, "JANE ROE_Pdf"},
		{"conditional", "{{ if .Registration }}{{ .Registration }}{{ else }}none{{ end }}", config.OutputFmtOdt, "N/A"},
		{"trimmed", "  {{ .Title }}\n", config.OutputFmtOdt, "Test Essay"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := setupTestAssignment(t, "dir/essay.md")

			result, err := expandTemplate(a, config.OutputNameTemplateFieldName, tt.field, tt.format)
			if err != nil {
				t.Fatalf("expandTemplate() error = %v", err)
			}
			if result != tt.expected {
				t.Errorf("expandTemplate() = %q, want %q", result, tt.expected)
			}
		})
	}
}

func TestExpandTemplate_ZeroDate(t *testing.T) {
	a := setupTestAssignment(t, "")
	a.Created = time.Time{}

	result, err := expandTemplate(a, config.OutputNameTemplateFieldName, "[{{ .Date }}]", config.OutputFmtOdt)
	if err != nil {
		t.Fatalf("expandTemplate() error = %v", err)
	}
	if result != "[]" {
		t.Errorf("expandTemplate() = %q, want %q", result, "[]")
	}
}

func TestExpandTemplate_Errors(t *testing.T) {
	tests := []struct {
		name    string
		field   string
		errPart string
	}{
		{"parse error", "{{ .Title ", "unable to parse template field"},
		{"unknown field", "{{ .Author }}", "Author"},
		{"unknown function", "{{ frobnicate .Title }}", "unable to parse template field"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := setupTestAssignment(t, "")

			_, err := expandTemplate(a, config.OutputNameTemplateFieldName, tt.field, config.OutputFmtOdt)
			if err == nil {
				t.Fatal("expandTemplate() expected error")
			}
			if !strings.Contains(err.Error(), tt.errPart) {
				t.Errorf("expandTemplate() error = %v, want containing %q", err, tt.errPart)
			}
		})
	}
}
