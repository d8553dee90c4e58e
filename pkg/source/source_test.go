package source

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/uiadoption/pkg/cache"
	uierrors "github.com/matzehuels/uiadoption/pkg/errors"
)

type stubLister struct {
	repos []Repo
	err   error
	calls int
}

func (s *stubLister) ListRepos(context.Context, string) ([]Repo, error) {
	s.calls++
	return s.repos, s.err
}

type failingCache struct{}

func (failingCache) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, errors.New("connection refused")
}

func (failingCache) Set(context.Context, string, []byte, time.Duration) error {
	return errors.New("connection refused")
}

func (failingCache) Delete(context.Context, string) error { return nil }
func (failingCache) Close() error                         { return nil }

func newFileCache(t *testing.T) *cache.FileCache {
	t.Helper()
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func TestCachedLister_MissThenHit(t *testing.T) {
	ctx := context.Background()
	inner := &stubLister{repos: []Repo{{Name: "a"}, {Name: "b"}}}
	l := NewCachedLister(inner, newFileCache(t), nil, nil)

	for i := range 2 {
		repos, err := l.ListRepos(ctx, "govalta")
		if err != nil {
			t.Fatalf("call %d: %v", i, err)
		}
		if len(repos) != 2 || repos[1].Name != "b" {
			t.Errorf("call %d: repos = %+v", i, repos)
		}
	}
	if inner.calls != 1 {
		t.Errorf("inner calls = %d, want 1", inner.calls)
	}
}

func TestCachedLister_EmptyCachedListRefetches(t *testing.T) {
	ctx := context.Background()
	c := newFileCache(t)
	keyer := cache.NewDefaultKeyer()
	if err := c.Set(ctx, keyer.RepoListKey("govalta", false), []byte("[]"), time.Hour); err != nil {
		t.Fatal(err)
	}

	inner := &stubLister{repos: []Repo{{Name: "fresh"}}}
	repos, err := NewCachedLister(inner, c, keyer, nil).ListRepos(ctx, "govalta")
	if err != nil {
		t.Fatal(err)
	}
	if inner.calls != 1 || len(repos) != 1 || repos[0].Name != "fresh" {
		t.Errorf("repos = %+v, inner calls = %d", repos, inner.calls)
	}
}

func TestCachedLister_UnreadableEntryRefetches(t *testing.T) {
	ctx := context.Background()
	c := newFileCache(t)
	if err := c.Set(ctx, "repos:govalta", []byte("{garbage"), time.Hour); err != nil {
		t.Fatal(err)
	}

	inner := &stubLister{repos: []Repo{{Name: "fresh"}}}
	if _, err := NewCachedLister(inner, c, nil, nil).ListRepos(ctx, "govalta"); err != nil {
		t.Fatal(err)
	}
	if inner.calls != 1 {
		t.Errorf("inner calls = %d, want 1", inner.calls)
	}

	data, ok, _ := c.Get(ctx, "repos:govalta")
	var cached []Repo
	if !ok || json.Unmarshal(data, &cached) != nil || len(cached) != 1 {
		t.Errorf("cache not rewritten: %s", data)
	}
}

func TestCachedLister_LimitedUsesSeparateKey(t *testing.T) {
	ctx := context.Background()
	c := newFileCache(t)
	inner := &stubLister{repos: []Repo{{Name: "a"}}}

	full := NewCachedLister(inner, c, nil, nil)
	limited := NewCachedLister(inner, c, nil, nil)
	limited.Limited = true

	full.ListRepos(ctx, "govalta")
	limited.ListRepos(ctx, "govalta")
	if inner.calls != 2 {
		t.Errorf("inner calls = %d, want 2", inner.calls)
	}
}

func TestCachedLister_Refresh(t *testing.T) {
	ctx := context.Background()
	c := newFileCache(t)
	inner := &stubLister{repos: []Repo{{Name: "a"}}}
	l := NewCachedLister(inner, c, nil, nil)
	l.ListRepos(ctx, "govalta")

	l.Refresh = true
	l.ListRepos(ctx, "govalta")
	if inner.calls != 2 {
		t.Errorf("inner calls = %d, want 2", inner.calls)
	}
}

func TestCachedLister_CacheFailuresAreNotFatal(t *testing.T) {
	inner := &stubLister{repos: []Repo{{Name: "a"}}}
	repos, err := NewCachedLister(inner, failingCache{}, nil, nil).ListRepos(context.Background(), "govalta")
	if err != nil {
		t.Fatalf("ListRepos error = %v, want nil", err)
	}
	if len(repos) != 1 {
		t.Errorf("repos = %+v", repos)
	}
}

func TestCachedLister_InnerError(t *testing.T) {
	inner := &stubLister{err: uierrors.New(uierrors.ErrCodeUnauthorized, "bad token")}
	_, err := NewCachedLister(inner, nil, nil, nil).ListRepos(context.Background(), "govalta")
	if !uierrors.Is(err, uierrors.ErrCodeUnauthorized) {
		t.Errorf("err = %v, want UNAUTHORIZED", err)
	}
}

func TestFilter(t *testing.T) {
	repos := []Repo{
		{Name: "portal"},
		{Name: "old-portal", Archived: true},
		{Name: "blocked", Disabled: true},
		{Name: "portal-fork", Fork: true},
		{Name: "api"},
	}

	tests := []struct {
		name   string
		filter Filter
		want   string
	}{
		{"zero value keeps all", Filter{}, "portal,old-portal,blocked,portal-fork,api"},
		{"skip archived", Filter{SkipArchived: true}, "portal,blocked,portal-fork,api"},
		{"skip archived and disabled", Filter{SkipArchived: true, SkipDisabled: true}, "portal,portal-fork,api"},
		{"skip forks", Filter{SkipForks: true}, "portal,old-portal,blocked,api"},
		{"match", Filter{Match: regexp.MustCompile(`portal`)}, "portal,old-portal,portal-fork"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var names []string
			for _, r := range tt.filter.Apply(repos) {
				names = append(names, r.Name)
			}
			if got := strings.Join(names, ","); got != tt.want {
				t.Errorf("Apply() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestGitFetcher_Checkout(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "checkout")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	stale := filepath.Join(dir, "stale.txt")
	os.WriteFile(stale, []byte("x"), 0o644)

	var gotArgs []string
	f := NewGitFetcher(dir, nil)
	f.Run = func(ctx context.Context, args ...string) error {
		gotArgs = args
		target := args[len(args)-1]
		return os.WriteFile(target+"-marker", nil, 0o644)
	}

	repo := Repo{Name: "portal", SSHURL: "git@github.com:govalta/portal.git"}
	co, err := f.Checkout(context.Background(), repo)
	if err != nil {
		t.Fatalf("Checkout failed: %v", err)
	}
	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Error("checkout dir was not cleared before cloning")
	}
	want := "clone --depth 1 --quiet git@github.com:govalta/portal.git " + dir
	if got := strings.Join(gotArgs, " "); got != want {
		t.Errorf("git args = %q, want %q", got, want)
	}
	if co.Dir != dir {
		t.Errorf("Dir = %q, want %q", co.Dir, dir)
	}

	os.MkdirAll(dir, 0o755)
	if err := co.Release(); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Error("Release did not remove the checkout dir")
	}
	if err := co.Release(); err != nil {
		t.Errorf("second Release = %v, want nil", err)
	}
}

func TestGitFetcher_HTTPSWithToken(t *testing.T) {
	var gotArgs []string
	f := NewGitFetcher(filepath.Join(t.TempDir(), "co"), nil)
	f.HTTPS = true
	f.Token = "ghp_secret"
	f.Run = func(ctx context.Context, args ...string) error {
		gotArgs = args
		return errors.New("fatal: could not read from ghp_secret remote")
	}

	_, err := f.Checkout(context.Background(), Repo{Name: "portal", SSHURL: "git@github.com:govalta/portal.git"})
	if !uierrors.Is(err, uierrors.ErrCodeFetchFailed) {
		t.Fatalf("err = %v, want FETCH_FAILED", err)
	}
	if strings.Contains(err.Error(), "ghp_secret") {
		t.Errorf("error leaks token: %v", err)
	}
	if gotArgs[0] != "-c" || !strings.HasPrefix(gotArgs[1], "http.extraHeader=Authorization: Basic ") {
		t.Errorf("missing auth header args: %v", gotArgs)
	}
	if url := gotArgs[len(gotArgs)-2]; url != "https://github.com/govalta/portal.git" {
		t.Errorf("clone url = %q", url)
	}
}

func TestGitFetcher_RejectsDangerousDir(t *testing.T) {
	f := NewGitFetcher("/", nil)
	f.Run = func(context.Context, ...string) error {
		t.Fatal("git must not run")
		return nil
	}
	_, err := f.Checkout(context.Background(), Repo{Name: "x", SSHURL: "git@github.com:o/x.git"})
	if !uierrors.Is(err, uierrors.ErrCodeInvalidPath) {
		t.Errorf("err = %v, want INVALID_PATH", err)
	}
}

func TestGitFetcher_NoURL(t *testing.T) {
	f := NewGitFetcher(filepath.Join(t.TempDir(), "co"), nil)
	_, err := f.Checkout(context.Background(), Repo{Name: "x"})
	if !uierrors.Is(err, uierrors.ErrCodeFetchFailed) {
		t.Errorf("err = %v, want FETCH_FAILED", err)
	}
}

func TestDirFetcher(t *testing.T) {
	root := t.TempDir()
	os.MkdirAll(filepath.Join(root, "portal"), 0o755)
	os.WriteFile(filepath.Join(root, "notes.txt"), nil, 0o644)

	f := DirFetcher{Root: root}
	co, err := f.Checkout(context.Background(), Repo{Name: "portal"})
	if err != nil {
		t.Fatal(err)
	}
	if co.Dir != filepath.Join(root, "portal") {
		t.Errorf("Dir = %q", co.Dir)
	}
	co.Release()
	if _, err := os.Stat(co.Dir); err != nil {
		t.Error("DirFetcher.Release must not delete the directory")
	}

	for _, name := range []string{"missing", "notes.txt"} {
		if _, err := f.Checkout(context.Background(), Repo{Name: name}); !uierrors.Is(err, uierrors.ErrCodeFetchFailed) {
			t.Errorf("Checkout(%s) err = %v, want FETCH_FAILED", name, err)
		}
	}
}

func TestDirLister(t *testing.T) {
	root := t.TempDir()
	for _, d := range []string{"b-repo", "a-repo", ".git"} {
		os.MkdirAll(filepath.Join(root, d), 0o755)
	}
	os.WriteFile(filepath.Join(root, "file"), nil, 0o644)

	repos, err := DirLister{Root: root}.ListRepos(context.Background(), "")
	if err != nil {
		t.Fatal(err)
	}
	if len(repos) != 2 || repos[0].Name != "a-repo" || repos[1].Name != "b-repo" {
		t.Errorf("repos = %+v", repos)
	}

	if _, err := (DirLister{Root: filepath.Join(root, "nope")}).ListRepos(context.Background(), ""); !uierrors.Is(err, uierrors.ErrCodeInvalidPath) {
		t.Errorf("err = %v, want INVALID_PATH", err)
	}
}
