package config

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"maps"
	"os"
	"path"
	"path/filepath"
	"slices"
	"sync"
	"text/tabwriter"
	"time"

	"go.uber.org/multierr"

	"scribe/misc"
)

type ReporterConfig struct {
	Destination string `yaml:"destination" sanitize:"path_clean,assure_dir_exists_for_file" validate:"required,filepath"`
}

// Prepare creates initialized empty reporter.
func (conf *ReporterConfig) Prepare() (*Report, error) {

	r := &Report{entries: make(map[string]entry)}

	if f, err := os.Create(conf.Destination); err == nil {
		r.file = f
	} else if f, err = os.CreateTemp("", misc.GetAppName()+"-report.*.zip"); err == nil {
		r.file = f
	} else {
		return nil, fmt.Errorf("unable to create report: %w", err)
	}
	return r, nil
}

type entry struct {
	original string
	actual   string
	stamp    time.Time
	data     []byte
	copied   bool
}

func (e entry) kind() string {
	switch {
	case e.data != nil:
		return "data"
	case e.copied:
		return "copy"
	}
	return "path"
}

// Report accumulates information necessary to prepare full debug report:
// logs, configuration, work directories with intermediate documents, prompts
// and responses. Safe for concurrent use.
type Report struct {
	mu sync.Mutex
	// archive name -> stored item
	entries map[string]entry
	// temporary directories made by StoreCopy
	copies []string
	file   *os.File
}

// Close finalizes debug report. Stored directories are work directories
// owned by the report, they are removed once archived.
func (r *Report) Close() (err error) {
	if r == nil {
		// no report requested
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.file == nil {
		return nil
	}
	err = multierr.Append(r.finalize(), r.file.Close())

	for _, e := range r.entries {
		if e.data != nil {
			continue
		}
		if info, er := os.Stat(e.actual); er == nil && info.IsDir() {
			err = multierr.Append(err, os.RemoveAll(e.actual))
		}
	}
	for _, dir := range r.copies {
		err = multierr.Append(err, os.RemoveAll(dir))
	}
	return err
}

// Name returns name of underlying file.
func (r *Report) Name() string {
	if r == nil || r.file == nil {
		return ""
	}
	if n, err := filepath.Abs(r.file.Name()); err == nil {
		return n
	}
	return r.file.Name()
}

// Store saves path to file or directory to be put in the final archive later.
func (r *Report) Store(name, path string) {
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if old, exists := r.entries[name]; exists && old.original != path {
		panic(fmt.Sprintf("Attempt to overwrite file in the report for [%s]: was %s, now %s", name, old.original, path))
	}

	e := entry{original: path, actual: path}
	if p, err := filepath.Abs(path); err == nil {
		e.actual = p
	}
	r.entries[name] = e
}

// StoreData saves binary data to be put in the final archive later as a file under requested name.
func (r *Report) StoreData(name string, data []byte) {
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[name]; exists {
		panic(fmt.Sprintf("Attempt to overwrite data in the report for [%s]", name))
	}
	if data == nil {
		data = []byte{}
	}
	r.entries[name] = entry{data: data, stamp: time.Now()}
}

// StoreCopy snapshots file or directory at path, later changes to it do not
// affect the report. Repeated names get timestamp suffix.
func (r *Report) StoreCopy(name, path string) error {
	if r == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return err
	}

	e := entry{original: path, stamp: time.Now(), copied: true}
	if _, exists := r.entries[name]; exists {
		name = fmt.Sprintf("%s-%d", name, e.stamp.UnixNano())
	}

	dir, err := os.MkdirTemp("", misc.GetAppName()+"-r-")
	if err != nil {
		return err
	}
	r.copies = append(r.copies, dir)

	switch {
	case info.Mode().IsRegular():
		e.actual = filepath.Join(dir, filepath.Base(abs))
		if err := snapshotFile(abs, e.actual, info.ModTime()); err != nil {
			return err
		}
	case info.IsDir():
		// regular files only
		err := filepath.WalkDir(abs, func(p string, d fs.DirEntry, err error) error {
			if err != nil || !d.Type().IsRegular() {
				return err
			}
			rel, err := filepath.Rel(abs, p)
			if err != nil {
				return err
			}
			fi, err := d.Info()
			if err != nil {
				return err
			}
			return snapshotFile(p, filepath.Join(dir, rel), fi.ModTime())
		})
		if err != nil {
			return err
		}
		e.actual = dir
	default:
		return fmt.Errorf("unable to copy %s into report: not a file or directory", path)
	}

	r.entries[name] = e
	return nil
}

func snapshotFile(src, dst string, modTime time.Time) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0700); err != nil {
		return err
	}
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	if err := os.WriteFile(dst, data, 0600); err != nil {
		return err
	}
	return os.Chtimes(dst, modTime, modTime)
}

// finalize writes archive with manifest followed by every stored item in
// manifest order. Items which disappeared since stored are skipped.
func (r *Report) finalize() error {
	arc := zip.NewWriter(r.file)

	names := slices.Sorted(maps.Keys(r.entries))
	if err := addToArchive(arc, "MANIFEST", time.Now(), r.manifest(names)); err != nil {
		return multierr.Append(err, arc.Close())
	}

	for _, name := range names {
		if err := r.archiveEntry(arc, name, r.entries[name]); err != nil {
			return multierr.Append(err, arc.Close())
		}
	}
	return arc.Close()
}

func (r *Report) manifest(names []string) io.Reader {
	buf := new(bytes.Buffer)
	tw := tabwriter.NewWriter(buf, 0, 4, 2, ' ', 0)
	now := time.Now()
	for _, name := range names {
		e := r.entries[name]
		stamp := e.stamp
		if stamp.IsZero() {
			stamp = now
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", stamp.UTC().Format(time.RFC3339), e.kind(), name, e.original)
	}
	tw.Flush()
	return buf
}

func (r *Report) archiveEntry(arc *zip.Writer, name string, e entry) error {
	if e.data != nil {
		return addToArchive(arc, name, e.stamp, bytes.NewReader(e.data))
	}

	info, err := os.Stat(e.actual)
	if err != nil {
		return nil
	}
	if !info.IsDir() {
		return addFileToArchive(arc, name, e.actual, info.ModTime())
	}
	return filepath.WalkDir(e.actual, func(p string, d fs.DirEntry, err error) error {
		if err != nil || !d.Type().IsRegular() {
			return err
		}
		rel, err := filepath.Rel(e.actual, p)
		if err != nil {
			return err
		}
		fi, err := d.Info()
		if err != nil {
			return err
		}
		return addFileToArchive(arc, path.Join(name, filepath.ToSlash(rel)), p, fi.ModTime())
	})
}

func addFileToArchive(arc *zip.Writer, name, src string, modTime time.Time) error {
	f, err := os.Open(src)
	if err != nil {
		return err
	}
	defer f.Close()
	return addToArchive(arc, name, modTime, f)
}

func addToArchive(arc *zip.Writer, name string, modTime time.Time, src io.Reader) error {
	w, err := arc.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Deflate, Modified: modTime})
	if err != nil {
		return fmt.Errorf("unable to add %s to report: %w", name, err)
	}
	_, err = io.Copy(w, src)
	return err
}
