package config

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"
	"testing"
)

func TestReportClose_RemovesStoredDirs(t *testing.T) {
	// Create a temp file for the report archive
	reportFile, err := os.CreateTemp("", "test-report-*.zip")
	if err != nil {
		t.Fatalf("failed to create temp report file: %v", err)
	}
	defer os.Remove(reportFile.Name())

	r := &Report{
		entries: make(map[string]entry),
		file:    reportFile,
	}

	// Create temp directories to simulate stored WorkDirs
	dir1, err := os.MkdirTemp("", "test-workdir1-")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	dir2, err := os.MkdirTemp("", "test-workdir2-")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}

	// Put a file inside one of them to verify recursive removal
	if err := os.WriteFile(filepath.Join(dir1, "debug.txt"), []byte("test"), 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	// Also store a regular file entry, it should NOT be removed
	tmpFile, err := os.CreateTemp("", "test-stored-file-")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	tmpFile.Close()
	defer os.Remove(tmpFile.Name())

	r.Store("workdir-1", dir1)
	r.Store("workdir-2", dir2)
	r.Store("result-file", tmpFile.Name())

	// Close should finalize the archive and then remove stored directories
	if err := r.Close(); err != nil {
		t.Fatalf("Report.Close() error: %v", err)
	}

	// Directories should be removed
	if _, err := os.Stat(dir1); !os.IsNotExist(err) {
		os.RemoveAll(dir1)
		t.Errorf("expected dir1 to be removed, but it still exists")
	}
	if _, err := os.Stat(dir2); !os.IsNotExist(err) {
		os.RemoveAll(dir2)
		t.Errorf("expected dir2 to be removed, but it still exists")
	}

	// Regular file should still exist
	if _, err := os.Stat(tmpFile.Name()); err != nil {
		t.Errorf("stored file should not be removed, but got error: %v", err)
	}
}

func TestReportClose_NilReport(t *testing.T) {
	var r *Report
	if err := r.Close(); err != nil {
		t.Errorf("Close on nil report should not error, got: %v", err)
	}
}

func TestReportClose_NilFile(t *testing.T) {
	r := &Report{entries: make(map[string]entry)}
	if err := r.Close(); err != nil {
		t.Errorf("Close with nil file should not error, got: %v", err)
	}
}

func TestReport_ArchiveContents(t *testing.T) {
	dir := t.TempDir()
	conf := ReporterConfig{Destination: filepath.Join(dir, "report.zip")}

	r, err := conf.Prepare()
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}

	src := filepath.Join(dir, "prompt.txt")
	if err := os.WriteFile(src, []byte("first"), 0644); err != nil {
		t.Fatalf("failed to write source file: %v", err)
	}
	if err := r.StoreCopy("llm/prompt.txt", src); err != nil {
		t.Fatalf("StoreCopy() error = %v", err)
	}
	// later changes must not affect stored copy
	if err := os.WriteFile(src, []byte("second"), 0644); err != nil {
		t.Fatalf("failed to rewrite source file: %v", err)
	}
	r.StoreData("blocks.txt", []byte("heading level=1"))

	if err := r.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if len(r.copies) != 1 {
		t.Fatalf("expected one temporary copy, got %d", len(r.copies))
	}
	if _, err := os.Stat(r.copies[0]); !os.IsNotExist(err) {
		t.Errorf("temporary copy directory %s was not removed", r.copies[0])
	}

	zr, err := zip.OpenReader(conf.Destination)
	if err != nil {
		t.Fatalf("unable to open report: %v", err)
	}
	defer zr.Close()

	got := make(map[string]string)
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("unable to open %s: %v", f.Name, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatalf("unable to read %s: %v", f.Name, err)
		}
		got[f.Name] = string(data)
	}

	want := map[string]string{
		"llm/prompt.txt": "first",
		"blocks.txt":     "heading level=1",
	}
	for name, content := range want {
		if got[name] != content {
			t.Errorf("report entry %q = %q, want %q", name, got[name], content)
		}
	}
	if _, ok := got["MANIFEST"]; !ok {
		t.Error("report has no MANIFEST")
	}
}

func TestReport_Directory(t *testing.T) {
	dir := t.TempDir()
	conf := ReporterConfig{Destination: filepath.Join(dir, "report.zip")}

	r, err := conf.Prepare()
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}

	work := filepath.Join(dir, "work")
	if err := os.MkdirAll(filepath.Join(work, "pages"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(work, "pages", "001.txt"), []byte("page"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := r.StoreCopy("snapshot", work); err != nil {
		t.Fatalf("StoreCopy() error = %v", err)
	}
	r.Store("work", work)
	r.Store("missing", filepath.Join(dir, "gone"))

	if err := r.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	zr, err := zip.OpenReader(conf.Destination)
	if err != nil {
		t.Fatalf("unable to open report: %v", err)
	}
	defer zr.Close()

	names := make(map[string]bool)
	for _, f := range zr.File {
		names[f.Name] = true
	}
	for _, want := range []string{"MANIFEST", "snapshot/pages/001.txt", "work/pages/001.txt"} {
		if !names[want] {
			t.Errorf("report has no %q, got %v", want, names)
		}
	}
	if _, err := os.Stat(work); !os.IsNotExist(err) {
		t.Error("stored directory was not removed")
	}
}
