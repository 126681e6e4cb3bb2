package server

import (
	"path/filepath"
	"testing"
	"time"
)

func TestHistory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	h, err := OpenHistory(path, 2)
	if err != nil {
		t.Fatalf("OpenHistory() error = %v", err)
	}

	base := time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)
	for i, title := range []string{"First", "Second", "Third"} {
		rec := Record{ID: title, Title: title, Student: "Jane", Source: "notes.pdf", Created: base.Add(time.Duration(i) * time.Hour)}
		if err := h.Add(rec); err != nil {
			t.Fatalf("Add(%s) error = %v", title, err)
		}
	}

	got, err := h.Recent()
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(got) != 2 || got[0].Title != "Third" || got[1].Title != "Second" {
		t.Fatalf("Recent() = %+v, want Third, Second", got)
	}
	if !got[0].Created.Equal(base.Add(2 * time.Hour)) {
		t.Errorf("created = %v", got[0].Created)
	}
	if got[0].Source != "notes.pdf" || got[0].Student != "Jane" {
		t.Errorf("record = %+v", got[0])
	}

	if err := h.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	// records survive reopening
	h, err = OpenHistory(path, 5)
	if err != nil {
		t.Fatalf("OpenHistory() error = %v", err)
	}
	defer h.Close()
	if got, _ := h.Recent(); len(got) != 2 {
		t.Errorf("after reopen got %d records", len(got))
	}
}

func TestHistory_Nil(t *testing.T) {
	var h *History
	if err := h.Add(Record{ID: "x"}); err != nil {
		t.Errorf("Add() error = %v", err)
	}
	if got, err := h.Recent(); err != nil || got != nil {
		t.Errorf("Recent() = %v, %v", got, err)
	}
	if err := h.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}

func TestOpenHistory_Error(t *testing.T) {
	if _, err := OpenHistory(filepath.Join(t.TempDir(), "missing", "history.db"), 1); err == nil {
		t.Error("OpenHistory() in missing directory expected error")
	}
}
