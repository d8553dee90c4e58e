// Package analyzer turns one repository into an inventory.Result: fetch the
// tree, load its manifests, classify it, extract versions and count
// component usage.
package analyzer

import (
	"context"
	"os"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/uiadoption/pkg/components"
	"github.com/matzehuels/uiadoption/pkg/errors"
	"github.com/matzehuels/uiadoption/pkg/inventory"
	"github.com/matzehuels/uiadoption/pkg/library"
	"github.com/matzehuels/uiadoption/pkg/manifest"
	"github.com/matzehuels/uiadoption/pkg/source"
)

// Analyzer analyzes repositories one at a time.
type Analyzer struct {
	fetcher    source.Fetcher
	classifier *library.Classifier
	counter    *components.Counter
	timeout    time.Duration
	logger     *log.Logger
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithTimeout bounds fetching and analysis of a single repository. Zero
// disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(a *Analyzer) { a.timeout = d }
}

// WithLogger sets the logger. The default is log.Default().
func WithLogger(l *log.Logger) Option {
	return func(a *Analyzer) {
		if l != nil {
			a.logger = l
		}
	}
}

// New creates an Analyzer. A nil classifier uses the default definitions and
// a nil counter uses a line-matching counter.
func New(fetcher source.Fetcher, classifier *library.Classifier, counter *components.Counter, opts ...Option) *Analyzer {
	a := &Analyzer{
		fetcher:    fetcher,
		classifier: classifier,
		counter:    counter,
		logger:     log.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.classifier == nil {
		a.classifier = library.NewClassifier(library.DefaultDefinitions())
	}
	if a.counter == nil {
		a.counter = components.NewCounter(nil, a.logger)
	}
	return a
}

// Analyze fetches and analyzes repo. It never fails: a repository that
// cannot be fetched or analyzed yields a "none" result carrying Err. The
// returned Stats record exactly one repository under the result's variant.
func (a *Analyzer) Analyze(ctx context.Context, repo source.Repo) (inventory.Result, inventory.Stats) {
	res := newResult(repo)

	parent := ctx
	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	co, err := a.fetcher.Checkout(ctx, repo)
	if err != nil {
		err = a.timedOut(parent, ctx, repo.Name, err)
		a.logger.Warn("could not fetch repository", "repo", repo.Name, "err", errors.UserMessage(err))
		res.Err = err
		return res, inventory.Delta(library.None)
	}
	defer func() {
		if err := co.Release(); err != nil {
			a.logger.Debug("release checkout", "repo", repo.Name, "err", err)
		}
	}()

	if err := a.analyzeTree(ctx, &res, co.Dir); err != nil {
		err = a.timedOut(parent, ctx, repo.Name, err)
		a.logger.Warn("could not analyze repository", "repo", repo.Name, "err", err)
		failed := newResult(repo)
		failed.Err = err
		return failed, inventory.Delta(library.None)
	}
	return res, inventory.Delta(res.Variant)
}

// timedOut reports an expired per-repository deadline as TIMEOUT. Errors
// caused by the caller's own context are returned unchanged.
func (a *Analyzer) timedOut(parent, ctx context.Context, repo string, err error) error {
	if parent.Err() == nil && ctx.Err() == context.DeadlineExceeded {
		return errors.Wrap(errors.ErrCodeTimeout, err, "%s: timed out after %s", repo, a.timeout)
	}
	return err
}

// AnalyzeDir analyzes a tree that is already on disk. name is used as the
// repository name of the result.
func (a *Analyzer) AnalyzeDir(ctx context.Context, name, dir string) (inventory.Result, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return inventory.Result{}, errors.Wrap(errors.ErrCodeInvalidPath, err, "analyze %s", dir)
	}
	if !info.IsDir() {
		return inventory.Result{}, errors.New(errors.ErrCodeInvalidPath, "%s is not a directory", dir)
	}
	res := inventory.NewResult(name)
	if err := a.analyzeTree(ctx, &res, dir); err != nil {
		return inventory.Result{}, err
	}
	return res, nil
}

func (a *Analyzer) analyzeTree(ctx context.Context, res *inventory.Result, dir string) error {
	loaded := manifest.Load(dir)
	for _, s := range loaded.Skipped {
		a.logger.Debug("skipping manifest", "repo", res.Repo, "path", s.Path, "err", s.Err)
	}

	v := a.classifier.Classify(loaded.Manifests)
	res.Variant = v
	res.Versions = a.classifier.Versions(loaded.Manifests, v)

	counts, err := a.counter.Count(ctx, dir, v)
	if err != nil {
		return err
	}
	res.Elements = counts.Elements
	res.Count = counts.Total

	a.logger.Debug("analyzed",
		"repo", res.Repo,
		"variant", v,
		"manifests", len(loaded.Manifests),
		"versions", res.Versions,
		"files", counts.Files,
		"count", counts.Total,
	)
	return nil
}

func newResult(repo source.Repo) inventory.Result {
	res := inventory.NewResult(repo.Name)
	res.HTMLURL = repo.HTMLURL
	res.CreatedAt = repo.CreatedAt
	res.UpdatedAt = repo.UpdatedAt
	res.PushedAt = repo.PushedAt
	return res
}
