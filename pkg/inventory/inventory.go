// Package inventory defines the records produced by a scan: one Result per
// repository, the Stats accumulated over a run and the Report that is
// persisted.
//
// JSON field names follow the report format consumed by the HTML page, so
// reports written by earlier versions of the tool remain readable.
package inventory

import (
	"encoding/json"
	"slices"
	"time"

	"github.com/matzehuels/uiadoption/pkg/library"
)

// Result describes one analyzed repository.
type Result struct {
	Repo      string          `json:"repo,omitempty" bson:"repo,omitempty" yaml:"repo,omitempty"`
	HTMLURL   string          `json:"html_url,omitempty" bson:"html_url,omitempty" yaml:"html_url,omitempty"`
	Variant   library.Variant `json:"lib" bson:"lib" yaml:"lib"`
	Versions  []string        `json:"versions" bson:"versions" yaml:"versions"`
	Count     int             `json:"count" bson:"count" yaml:"count"`
	Elements  map[string]int  `json:"elements" bson:"elements" yaml:"elements"`
	CreatedAt string          `json:"createdAt" bson:"createdAt" yaml:"createdAt"`
	UpdatedAt string          `json:"updatedAt" bson:"updatedAt" yaml:"updatedAt"`
	PushedAt  string          `json:"pushedAt" bson:"pushedAt" yaml:"pushedAt"`

	// Err is set when the repository could not be analyzed.
	Err error `json:"-" bson:"-" yaml:"-"`
}

// NewResult returns an empty "none" result.
func NewResult(repo string) Result {
	return Result{
		Repo:     repo,
		Variant:  library.None,
		Versions: []string{},
		Elements: map[string]int{},
	}
}

// Failed reports whether the repository could not be analyzed.
func (r Result) Failed() bool { return r.Err != nil }

// Report is the persisted outcome of a scan.
type Report struct {
	RunID       string    `json:"runId,omitempty" bson:"runId,omitempty" yaml:"runId,omitempty"`
	GeneratedAt time.Time `json:"generatedAt" bson:"generatedAt" yaml:"generatedAt"`
	Org         string    `json:"org,omitempty" bson:"org,omitempty" yaml:"org,omitempty"`
	Stats       Stats     `json:"stats" bson:"stats" yaml:"stats"`
	Data        []Result  `json:"data" bson:"data" yaml:"data"`
}

// NewReport builds a report with data sorted by descending component count.
// The input slice is not modified.
func NewReport(runID string, at time.Time, stats Stats, data []Result) *Report {
	sorted := slices.Clone(data)
	if sorted == nil {
		sorted = []Result{}
	}
	SortByCount(sorted)
	return &Report{RunID: runID, GeneratedAt: at.UTC(), Stats: stats, Data: sorted}
}

// SortByCount orders results by descending Count, keeping input order for ties.
func SortByCount(rs []Result) {
	slices.SortStableFunc(rs, func(a, b Result) int { return b.Count - a.Count })
}

// Marshal encodes r as indented JSON.
func (r *Report) Marshal() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

// Unmarshal decodes a report.
func Unmarshal(data []byte) (*Report, error) {
	var r Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, err
	}
	return &r, nil
}
