package files

import (
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap/zaptest"
)

func TestPrepareOutput(t *testing.T) {
	log := zaptest.NewLogger(t)
	dir := t.TempDir()

	nested := filepath.Join(dir, "a", "b", "out.pdf")
	if err := PrepareOutput(nested, false, log); err != nil {
		t.Fatalf("PrepareOutput() error = %v", err)
	}
	if fi, err := os.Stat(filepath.Dir(nested)); err != nil || !fi.IsDir() {
		t.Fatalf("directory was not created: %v", err)
	}

	if err := os.WriteFile(nested, []byte("old"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := PrepareOutput(nested, false, log); err == nil {
		t.Error("PrepareOutput() over existing file expected error")
	}
	if err := PrepareOutput(nested, true, log); err != nil {
		t.Fatalf("PrepareOutput() with overwrite error = %v", err)
	}
	if _, err := os.Stat(nested); !os.IsNotExist(err) {
		t.Error("existing file was not removed")
	}
}

func TestCopyFile(t *testing.T) {
	dir := t.TempDir()
	src, dst := filepath.Join(dir, "src"), filepath.Join(dir, "dst")

	if err := os.WriteFile(src, []byte("payload"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := CopyFile(src, dst); err != nil {
		t.Fatalf("CopyFile() error = %v", err)
	}
	if data, _ := os.ReadFile(dst); string(data) != "payload" {
		t.Errorf("copied %q", data)
	}
	if err := CopyFile(filepath.Join(dir, "missing"), dst); err == nil {
		t.Error("CopyFile(missing) expected error")
	}
}
