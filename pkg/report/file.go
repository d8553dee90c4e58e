package report

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/matzehuels/uiadoption/pkg/errors"
	"github.com/matzehuels/uiadoption/pkg/inventory"
)

const (
	// DataDir is the subdirectory holding one JSON file per report.
	DataDir = "data"
	// IndexFile is the rendered page.
	IndexFile = "index.html"

	ext = ".json"

	// NameLayout stamps report files to the millisecond so runs started in
	// the same second do not overwrite each other.
	NameLayout = "2006-01-02T15:04:05.000Z07:00"
)

// Name returns the file name stem for a report generated at t.
func Name(t time.Time) string { return t.UTC().Format(NameLayout) }

// Path returns where FileSink writes a report generated at t.
func Path(dir string, t time.Time) string {
	return filepath.Join(dir, DataDir, Name(t)+ext)
}

// FileSink writes reports as indented JSON under Dir/data.
type FileSink struct {
	Dir string
}

// NewFileSink creates a sink rooted at dir.
func NewFileSink(dir string) *FileSink { return &FileSink{Dir: dir} }

// Write implements Sink.
func (s *FileSink) Write(_ context.Context, r *inventory.Report) error {
	path := Path(s.Dir, r.GeneratedAt)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(errors.ErrCodeSinkFailed, err, "create %s", filepath.Dir(path))
	}
	data, err := r.Marshal()
	if err != nil {
		return errors.Wrap(errors.ErrCodeSinkFailed, err, "encode report")
	}
	if err := writeFileAtomic(path, data); err != nil {
		return errors.Wrap(errors.ErrCodeSinkFailed, err, "write %s", path)
	}
	return nil
}

// Entry is a stored report file.
type Entry struct {
	Name string
	Path string
	// Time is parsed from Name; zero if the name is not a timestamp.
	Time time.Time
}

// List returns the reports stored under dir, newest first. A missing data
// directory yields an empty list.
func List(dir string) ([]Entry, error) {
	dataDir := filepath.Join(dir, DataDir)
	des, err := os.ReadDir(dataDir)
	if os.IsNotExist(err) {
		return []Entry{}, nil
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "list %s", dataDir)
	}

	entries := make([]Entry, 0, len(des))
	for _, de := range des {
		if de.IsDir() || !strings.HasSuffix(de.Name(), ext) {
			continue
		}
		name := strings.TrimSuffix(de.Name(), ext)
		e := Entry{Name: name, Path: filepath.Join(dataDir, de.Name())}
		// RFC3339 parsing accepts both millisecond names and the older
		// whole-second ones.
		if t, err := time.Parse(time.RFC3339, name); err == nil {
			e.Time = t
		}
		entries = append(entries, e)
	}
	slices.SortStableFunc(entries, func(a, b Entry) int {
		if c := b.Time.Compare(a.Time); c != 0 {
			return c
		}
		return strings.Compare(b.Name, a.Name)
	})
	return entries, nil
}

// Find returns the stored report called name (with or without ".json").
func Find(dir, name string) (Entry, error) {
	name = strings.TrimSuffix(name, ext)
	if name == "" || strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") {
		return Entry{}, errors.New(errors.ErrCodeInvalidInput, "invalid report name %q", name)
	}
	entries, err := List(dir)
	if err != nil {
		return Entry{}, err
	}
	for _, e := range entries {
		if e.Name == name {
			return e, nil
		}
	}
	return Entry{}, errors.New(errors.ErrCodeReportNotFound, "no report named %q in %s", name, dir)
}

// Latest returns the newest stored report.
func Latest(dir string) (Entry, error) {
	entries, err := List(dir)
	if err != nil {
		return Entry{}, err
	}
	if len(entries) == 0 {
		return Entry{}, errors.New(errors.ErrCodeReportNotFound, "no reports in %s", filepath.Join(dir, DataDir))
	}
	return entries[0], nil
}

// Load reads a report file.
func Load(path string) (*inventory.Report, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeReportNotFound, err, "report %s", path)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "read %s", path)
	}
	r, err := inventory.Unmarshal(data)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse %s", path)
	}
	return r, nil
}

// Dated pairs a stored report with its file name, the shape the page reads.
type Dated struct {
	Date string            `json:"date"`
	Data *inventory.Report `json:"data"`
}

// LoadAll loads every stored report, newest first. Unreadable files are
// returned in skipped rather than failing the whole load.
func LoadAll(dir string) (reports []Dated, skipped []Entry, err error) {
	entries, err := List(dir)
	if err != nil {
		return nil, nil, err
	}
	reports = make([]Dated, 0, len(entries))
	for _, e := range entries {
		r, err := Load(e.Path)
		if err != nil {
			skipped = append(skipped, e)
			continue
		}
		reports = append(reports, Dated{Date: e.Name, Data: r})
	}
	return reports, skipped, nil
}

func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
