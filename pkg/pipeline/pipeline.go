// Package pipeline runs the analyzer over a list of repositories and
// aggregates the results into a report.
//
// Repositories are visited strictly one after another: the git fetcher
// reuses a single checkout directory, so there is never more than one tree
// on disk.
//
// # Usage
//
//	runner := pipeline.NewRunner(analyzer.New(fetcher, classifier, counter), logger)
//	out, err := runner.Run(ctx, repos, pipeline.Options{
//	    Limit:    cfg.Limit,
//	    Progress: bar.Update,
//	})
//	if err != nil {
//	    // cancelled: out holds the repositories visited so far
//	}
//	report := out.Report(uuid.NewString(), time.Now())
package pipeline

import (
	"time"

	"github.com/matzehuels/uiadoption/pkg/inventory"
)

// NoLimit is the Options.Limit that visits every repository.
const NoLimit = -1

// Options configures a Run.
type Options struct {
	// Limit stops the batch after this many repositories have been visited.
	// Zero visits nothing; a negative value such as NoLimit means no limit.
	Limit int

	// Progress, when set, is called after each repository with the number
	// visited so far and the length of the input list.
	Progress func(visited, total int)
}

// Limited reports whether a limit is in effect.
func (o Options) Limited() bool { return o.Limit >= 0 }

// Failure records a repository that could not be analyzed.
type Failure struct {
	Repo    string
	HTMLURL string
	Err     error
}

// Outcome is the aggregate of a batch.
type Outcome struct {
	// Visited counts repositories analyzed, including failures and "none".
	Visited int
	// Stats folds the per-repository deltas; Stats.Processed() == Visited.
	Stats inventory.Stats
	// Data holds results whose variant is not "none", in visit order.
	Data []inventory.Result
	// Failures lists repositories that could not be fetched or analyzed.
	Failures []Failure

	Started  time.Time
	Finished time.Time
}

// Duration returns the wall time of the batch.
func (o *Outcome) Duration() time.Duration { return o.Finished.Sub(o.Started) }

// Report assembles the persisted report, data sorted by descending count.
func (o *Outcome) Report(runID string, now time.Time) *inventory.Report {
	return inventory.NewReport(runID, now, o.Stats, o.Data)
}
