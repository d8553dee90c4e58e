package pipeline

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/uiadoption/pkg/inventory"
	"github.com/matzehuels/uiadoption/pkg/library"
	"github.com/matzehuels/uiadoption/pkg/observability"
	"github.com/matzehuels/uiadoption/pkg/source"
)

// RepoAnalyzer analyzes a single repository. *analyzer.Analyzer implements it.
type RepoAnalyzer interface {
	Analyze(ctx context.Context, repo source.Repo) (inventory.Result, inventory.Stats)
}

// Runner drives a RepoAnalyzer over a repository list.
//
// The Runner holds no per-run state; Run may be called repeatedly, but not
// concurrently when the analyzer's fetcher shares a checkout directory.
type Runner struct {
	Analyzer RepoAnalyzer
	Logger   *log.Logger
}

// NewRunner creates a runner. If logger is nil, log.Default() is used.
func NewRunner(a RepoAnalyzer, logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Analyzer: a, Logger: logger}
}

// Run analyzes repos in order until the list or the limit is exhausted.
//
// Cancellation is checked between repositories. A repository whose analysis
// was cut short by cancellation is not recorded; the partial outcome is
// returned together with ctx.Err().
func (r *Runner) Run(ctx context.Context, repos []source.Repo, opts Options) (*Outcome, error) {
	out := &Outcome{
		Data:     []inventory.Result{},
		Failures: []Failure{},
		Started:  time.Now(),
	}
	hooks := observability.Scan()
	hooks.OnScanStart(ctx, len(repos), opts.Limit)

	var err error
	for _, repo := range repos {
		if opts.Limited() && out.Visited >= opts.Limit {
			break
		}
		if err = ctx.Err(); err != nil {
			break
		}

		hooks.OnRepoStart(ctx, repo.Name)
		start := time.Now()
		res, delta := r.Analyzer.Analyze(ctx, repo)
		if err = ctx.Err(); err != nil {
			hooks.OnRepoComplete(ctx, repo.Name, string(library.None), 0, time.Since(start), err)
			break
		}

		out.Visited++
		out.Stats.Merge(delta)
		switch {
		case res.Failed():
			out.Failures = append(out.Failures, Failure{Repo: res.Repo, HTMLURL: res.HTMLURL, Err: res.Err})
		case res.Variant != library.None:
			out.Data = append(out.Data, res)
		}
		hooks.OnRepoComplete(ctx, repo.Name, string(res.Variant), res.Count, time.Since(start), res.Err)

		r.Logger.Debug("repository done",
			"repo", repo.Name,
			"variant", res.Variant,
			"count", res.Count,
			"duration", time.Since(start).Round(time.Millisecond),
		)
		if opts.Progress != nil {
			opts.Progress(out.Visited, len(repos))
		}
	}

	out.Finished = time.Now()
	hooks.OnScanComplete(ctx, out.Visited, len(out.Data), out.Duration(), err)
	return out, err
}
