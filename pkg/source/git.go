package source

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/uiadoption/pkg/errors"
	"github.com/matzehuels/uiadoption/pkg/integrations"
)

// DefaultCheckoutDir is the single working directory clones are made into.
func DefaultCheckoutDir() string {
	return filepath.Join(os.TempDir(), "uiadoption-checkout")
}

// GitRunner executes git with args. It is replaced in tests.
type GitRunner func(ctx context.Context, args ...string) error

// ExecGit runs the git binary found on PATH with prompts disabled.
func ExecGit(ctx context.Context, args ...string) error {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Env = append(os.Environ(), "GIT_TERMINAL_PROMPT=0")
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%w: %s", err, strings.TrimSpace(string(out)))
	}
	return nil
}

// GitFetcher shallow-clones each repository into one well-known directory.
// The directory is wiped before every clone and on Release, so at most one
// checkout exists at a time and a GitFetcher must not be shared between
// concurrent scans.
type GitFetcher struct {
	Dir string
	// HTTPS clones over https instead of the SSH url; Token, when set, is
	// presented as basic credentials.
	HTTPS  bool
	Token  string
	Run    GitRunner
	Logger *log.Logger
}

// NewGitFetcher creates a fetcher cloning into dir (DefaultCheckoutDir when
// empty).
func NewGitFetcher(dir string, logger *log.Logger) *GitFetcher {
	if dir == "" {
		dir = DefaultCheckoutDir()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &GitFetcher{Dir: dir, Run: ExecGit, Logger: logger}
}

// Checkout implements Fetcher.
func (f *GitFetcher) Checkout(ctx context.Context, repo Repo) (*Checkout, error) {
	if err := errors.ValidateCheckoutDir(f.Dir); err != nil {
		return nil, err
	}
	url := f.cloneURL(repo)
	if url == "" {
		return nil, errors.New(errors.ErrCodeFetchFailed, "%s: no clone url", repo.Name)
	}
	if err := os.RemoveAll(f.Dir); err != nil {
		return nil, errors.Wrap(errors.ErrCodeFetchFailed, err, "clear checkout dir")
	}

	args := []string{}
	if f.HTTPS && f.Token != "" {
		cred := base64.StdEncoding.EncodeToString([]byte("x-access-token:" + f.Token))
		args = append(args, "-c", "http.extraHeader=Authorization: Basic "+cred)
	}
	args = append(args, "clone", "--depth", "1", "--quiet", url, f.Dir)

	f.Logger.Debug("cloning", "repo", repo.Name, "url", url)
	run := f.Run
	if run == nil {
		run = ExecGit
	}
	if err := run(ctx, args...); err != nil {
		_ = os.RemoveAll(f.Dir)
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, errors.Wrap(errors.ErrCodeFetchFailed, f.redact(err), "clone %s", repo.Name)
	}

	return NewCheckout(repo, f.Dir, func() error { return os.RemoveAll(f.Dir) }), nil
}

func (f *GitFetcher) cloneURL(repo Repo) string {
	if !f.HTTPS {
		if repo.SSHURL != "" {
			return repo.SSHURL
		}
		return repo.CloneURL
	}
	if repo.CloneURL != "" {
		return repo.CloneURL
	}
	if u := integrations.NormalizeRepoURL(repo.SSHURL); u != "" {
		return u + ".git"
	}
	return ""
}

func (f *GitFetcher) redact(err error) error {
	if f.Token == "" {
		return err
	}
	return fmt.Errorf("%s", strings.ReplaceAll(err.Error(), f.Token, "***"))
}
