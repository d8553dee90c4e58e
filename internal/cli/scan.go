package cli

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/matzehuels/uiadoption/pkg/cache"
	"github.com/matzehuels/uiadoption/pkg/config"
	"github.com/matzehuels/uiadoption/pkg/errors"
	"github.com/matzehuels/uiadoption/pkg/pipeline"
	"github.com/matzehuels/uiadoption/pkg/report"
	"github.com/matzehuels/uiadoption/pkg/source"
)

// scanOpts holds the scan flags. Settings that also live in the config are
// applied only when the flag was given.
type scanOpts struct {
	org         string
	limit       int
	checkoutDir string
	timeout     time.Duration
	https       bool
	output      string
	redisURL    string
	mongoURI    string
	history     string

	fromDir         string // scan existing clones instead of GitHub
	match           string // repository name filter
	includeArchived bool
	skipForks       bool
	noCache         bool
	refresh         bool
	noRender        bool
}

func (c *CLI) scanCommand() *cobra.Command {
	var opts scanOpts

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Scan an organization's repositories and write a report",
		Long: `Scan lists the repositories of a GitHub organization, clones each one in turn
(shallow, into a single scratch directory), classifies it and counts component
usage. The result is written to <output>/data/<timestamp>.json and the HTML page
is re-rendered.

Examples:
  uiadoption scan --org govalta
  LIMIT=20 uiadoption scan --org govalta --https
  uiadoption scan --from-dir ~/src/govalta --no-render`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if err := opts.apply(cmd, cfg); err != nil {
				return err
			}
			return c.runScan(cmd.Context(), cfg, opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.org, "org", "", "GitHub organization (env GITHUB_ORG)")
	f.IntVarP(&opts.limit, "limit", "n", config.NoLimit, "stop after this many repositories, negative for all (env LIMIT)")
	f.StringVar(&opts.checkoutDir, "checkout-dir", "", "scratch directory for clones; wiped per repository")
	f.DurationVar(&opts.timeout, "timeout", config.DefaultTimeout, "per-repository timeout, 0 to disable")
	f.BoolVar(&opts.https, "https", false, "clone over HTTPS using GITHUB_API_TOKEN instead of SSH")
	f.StringVarP(&opts.output, "output", "o", "", "report directory (default \"report\")")
	f.StringVar(&opts.redisURL, "redis-url", "", "cache repository listings in Redis")
	f.StringVar(&opts.mongoURI, "mongo-uri", "", "also store the report in MongoDB")
	f.StringVar(&opts.history, "history", "", "record the run in this SQLite database")
	f.StringVar(&opts.fromDir, "from-dir", "", "scan the subdirectories of this directory instead of GitHub")
	f.StringVar(&opts.match, "match", "", "only scan repositories whose name matches this regular expression")
	f.BoolVar(&opts.includeArchived, "include-archived", false, "also scan archived repositories")
	f.BoolVar(&opts.skipForks, "skip-forks", false, "skip forked repositories")
	f.BoolVar(&opts.noCache, "no-cache", false, "do not cache the repository list")
	f.BoolVar(&opts.refresh, "refresh", false, "list repositories again even if cached")
	f.BoolVar(&opts.noRender, "no-render", false, "do not re-render index.html")

	return cmd
}

// apply overlays explicitly set flags on cfg and re-validates it.
func (o *scanOpts) apply(cmd *cobra.Command, cfg *config.Config) error {
	f := cmd.Flags()
	if f.Changed("org") {
		cfg.Org = o.org
	}
	if f.Changed("limit") {
		cfg.Limit = max(o.limit, config.NoLimit)
	}
	if f.Changed("checkout-dir") {
		cfg.CheckoutDir = o.checkoutDir
	}
	if f.Changed("timeout") {
		cfg.Timeout = o.timeout
	}
	if f.Changed("https") {
		cfg.HTTPS = o.https
	}
	if f.Changed("output") {
		cfg.OutputDir = o.output
	}
	if f.Changed("redis-url") {
		cfg.RedisURL = o.redisURL
	}
	if f.Changed("mongo-uri") {
		cfg.Mongo.URI = o.mongoURI
	}
	if f.Changed("history") {
		cfg.HistoryPath = o.history
	}
	if f.Changed("include-archived") {
		cfg.SkipArchived = !o.includeArchived
	}
	if f.Changed("skip-forks") {
		cfg.SkipForks = o.skipForks
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if o.fromDir == "" {
		return cfg.RequireOrg()
	}
	return nil
}

func (c *CLI) runScan(ctx context.Context, cfg *config.Config, opts scanOpts) error {
	filter := source.Filter{
		SkipArchived: cfg.SkipArchived,
		SkipDisabled: true,
		SkipForks:    cfg.SkipForks,
	}
	if opts.match != "" {
		re, err := regexp.Compile(opts.match)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidInput, err, "--match")
		}
		filter.Match = re
	}

	lister, fetcher, closeCache, err := c.newSource(ctx, cfg, opts)
	if err != nil {
		return err
	}
	defer closeCache()

	// Open sinks before the scan so a bad URI fails fast.
	sink, closeSinks, err := c.newSinks(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeSinks()

	target := cfg.Org
	if opts.fromDir != "" {
		target = opts.fromDir
	}
	spin := newSpinner(ctx, fmt.Sprintf("Listing repositories of %s", target))
	spin.Start()
	sw := startStopwatch(c.Logger)
	listed, err := lister.ListRepos(ctx, cfg.Org)
	spin.Stop()
	if err != nil {
		return err
	}
	repos := filter.Apply(listed)
	sw.done("Listed %d repositories, %d selected", len(listed), len(repos))

	a, err := newAnalyzer(cfg, fetcher, c.Logger)
	if err != nil {
		return err
	}
	bar := newProgressBar(os.Stderr, cfg.Limit)
	runner := pipeline.NewRunner(a, c.Logger)
	out, err := runner.Run(ctx, repos, pipeline.Options{Limit: cfg.Limit, Progress: bar.Update})
	bar.Finish()
	if err != nil {
		printWarning("Scan interrupted after %d repositories; no report written", out.Visited)
		return err
	}

	rep := out.Report(uuid.NewString(), time.Now())
	rep.Org = cfg.Org
	if err := sink.Write(ctx, rep); err != nil {
		return err
	}

	printSuccess("Scanned %d repositories in %s", out.Visited, out.Duration().Round(time.Second))
	printStats(out.Stats)
	printResults(rep.Data, 10)
	for _, f := range out.Failures {
		printWarning("%s: %s", f.Repo, errors.UserMessage(f.Err))
	}
	printFile(report.Path(cfg.OutputDir, rep.GeneratedAt))

	if !opts.noRender {
		path, err := report.NewRenderer(cfg.OutputDir, c.Logger).Render()
		if err != nil {
			return err
		}
		printFile(path)
	}
	return nil
}

// newSource builds the lister and fetcher for a scan. The returned func
// closes the repository-list cache.
func (c *CLI) newSource(ctx context.Context, cfg *config.Config, opts scanOpts) (source.Lister, source.Fetcher, func(), error) {
	if opts.fromDir != "" {
		return source.DirLister{Root: opts.fromDir}, source.DirFetcher{Root: opts.fromDir}, func() {}, nil
	}

	repoCache, err := c.newCache(ctx, cfg, opts.noCache)
	if err != nil {
		return nil, nil, nil, err
	}
	keyer := cache.NewScopedKeyer(cache.NewDefaultKeyer(), cache.TokenScope(cfg.Token))
	lister := source.NewCachedLister(source.NewGitHubLister(cfg.Token), repoCache, keyer, c.Logger)
	lister.Limited = cfg.Limit >= 0
	lister.Refresh = opts.refresh

	fetcher := source.NewGitFetcher(cfg.CheckoutDir, c.Logger)
	fetcher.HTTPS = cfg.HTTPS
	fetcher.Token = cfg.Token

	closeCache := func() {
		if err := repoCache.Close(); err != nil {
			c.Logger.Debug("close cache", "err", err)
		}
	}
	return lister, fetcher, closeCache, nil
}

// newSinks opens the configured report sinks. The file sink is always
// first; Mongo and the run history follow when configured.
func (c *CLI) newSinks(ctx context.Context, cfg *config.Config) (report.Sink, func(), error) {
	sinks := report.MultiSink{report.NewFileSink(cfg.OutputDir)}
	var closers []func()
	closeAll := func() {
		for _, fn := range closers {
			fn()
		}
	}

	if cfg.Mongo.URI != "" {
		m, err := report.NewMongoSink(ctx, cfg.Mongo.URI, cfg.Mongo.Database, cfg.Mongo.Collection)
		if err != nil {
			return nil, nil, err
		}
		sinks = append(sinks, m)
		closers = append(closers, func() {
			// The scan context may already be cancelled.
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := m.Close(ctx); err != nil {
				c.Logger.Debug("close mongo", "err", err)
			}
		})
	}
	if cfg.HistoryPath != "" {
		h, err := report.OpenHistory(cfg.HistoryPath)
		if err != nil {
			closeAll()
			return nil, nil, err
		}
		sinks = append(sinks, h)
		closers = append(closers, func() {
			if err := h.Close(); err != nil {
				c.Logger.Debug("close history", "err", err)
			}
		})
	}
	return sinks, closeAll, nil
}
