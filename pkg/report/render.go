package report

import (
	"bytes"
	_ "embed"
	"html/template"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/uiadoption/pkg/errors"
	"github.com/matzehuels/uiadoption/pkg/library"
)

//go:embed templates/index.html.tmpl
var indexTemplate string

var page = template.Must(template.New("index").Funcs(template.FuncMap{
	"label": func(v library.Variant) string { return v.Label() },
}).Parse(indexTemplate))

// DefaultTitle is the page heading.
const DefaultTitle = "UI component adoption"

// VariantRow is one line of the per-variant summary.
type VariantRow struct {
	Variant library.Variant
	Count   int
}

type pageData struct {
	Title     string
	Generated time.Time
	Reports   []Dated
	Latest    *Dated
	Variants  []VariantRow
}

// Summary lists the repository count per variant of d, in classification
// order.
func Summary(d Dated) []VariantRow {
	rows := make([]VariantRow, 0, len(library.Variants))
	for _, v := range library.Variants {
		rows = append(rows, VariantRow{Variant: v, Count: d.Data.Stats.Count(v)})
	}
	return rows
}

// Renderer builds Dir/index.html from the reports stored under Dir.
type Renderer struct {
	Dir    string
	Title  string
	Logger *log.Logger
	// Now stamps the page; defaults to time.Now.
	Now func() time.Time
}

// NewRenderer creates a renderer for dir.
func NewRenderer(dir string, logger *log.Logger) *Renderer {
	if logger == nil {
		logger = log.Default()
	}
	return &Renderer{Dir: dir, Title: DefaultTitle, Logger: logger, Now: time.Now}
}

// Render writes the page and returns its path.
func (r *Renderer) Render() (string, error) {
	reports, skipped, err := LoadAll(r.Dir)
	if err != nil {
		return "", err
	}
	for _, e := range skipped {
		r.Logger.Warn("skipping unreadable report", "file", e.Path)
	}

	var buf bytes.Buffer
	if err := r.Execute(&buf, reports); err != nil {
		return "", err
	}

	path := filepath.Join(r.Dir, IndexFile)
	if err := os.MkdirAll(r.Dir, 0o755); err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidPath, err, "create %s", r.Dir)
	}
	if err := writeFileAtomic(path, buf.Bytes()); err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, err, "write %s", path)
	}
	r.Logger.Debug("rendered page", "path", path, "reports", len(reports))
	return path, nil
}

// Execute renders the page for reports (newest first) to w.
func (r *Renderer) Execute(w io.Writer, reports []Dated) error {
	now := time.Now
	if r.Now != nil {
		now = r.Now
	}
	title := r.Title
	if title == "" {
		title = DefaultTitle
	}

	if reports == nil {
		reports = []Dated{}
	}
	data := pageData{Title: title, Generated: now().UTC(), Reports: reports}
	if len(reports) > 0 {
		data.Latest = &reports[0]
		data.Variants = Summary(reports[0])
	}
	if err := page.Execute(w, data); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "render page")
	}
	return nil
}
