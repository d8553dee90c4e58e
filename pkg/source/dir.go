package source

import (
	"context"
	"os"
	"path/filepath"

	"github.com/matzehuels/uiadoption/pkg/errors"
)

// DirFetcher maps repositories to existing directories under Root, named
// after the repository. Nothing is cloned and nothing is deleted.
type DirFetcher struct {
	Root string
}

// Checkout implements Fetcher.
func (f DirFetcher) Checkout(ctx context.Context, repo Repo) (*Checkout, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	dir := filepath.Join(f.Root, repo.Name)
	info, err := os.Stat(dir)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeFetchFailed, err, "%s", repo.Name)
	}
	if !info.IsDir() {
		return nil, errors.New(errors.ErrCodeFetchFailed, "%s: not a directory", dir)
	}
	return NewCheckout(repo, dir, nil), nil
}

// DirLister lists the immediate subdirectories of Root as repositories, for
// scans of a fleet that is already cloned. The org argument is ignored.
type DirLister struct {
	Root string
}

// ListRepos implements Lister. Hidden directories are skipped; the result
// is sorted by name.
func (l DirLister) ListRepos(ctx context.Context, _ string) ([]Repo, error) {
	entries, err := os.ReadDir(l.Root)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "list %s", l.Root)
	}
	repos := []Repo{}
	for _, e := range entries {
		if !e.IsDir() || e.Name()[0] == '.' {
			continue
		}
		repos = append(repos, Repo{Name: e.Name(), HTMLURL: "file://" + filepath.Join(l.Root, e.Name())})
	}
	return repos, nil
}
