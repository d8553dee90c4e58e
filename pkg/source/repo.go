// Package source supplies the repositories a scan visits and materialises
// each one on disk.
//
// A [Lister] enumerates repositories (GitHub organisation, local directory),
// optionally behind a [CachedLister]. A [Fetcher] turns a [Repo] into a
// [Checkout]: a directory the analyzer reads and then releases.
package source

import (
	"context"

	"github.com/matzehuels/uiadoption/pkg/integrations/github"
)

// Repo identifies one repository of the fleet.
type Repo struct {
	Name       string `json:"name" yaml:"name"`
	HTMLURL    string `json:"html_url" yaml:"html_url"`
	SSHURL     string `json:"ssh_url,omitempty" yaml:"ssh_url,omitempty"`
	CloneURL   string `json:"clone_url,omitempty" yaml:"clone_url,omitempty"`
	CreatedAt  string `json:"created_at,omitempty" yaml:"created_at,omitempty"`
	UpdatedAt  string `json:"updated_at,omitempty" yaml:"updated_at,omitempty"`
	PushedAt   string `json:"pushed_at,omitempty" yaml:"pushed_at,omitempty"`
	Visibility string `json:"visibility,omitempty" yaml:"visibility,omitempty"`
	Fork       bool   `json:"fork,omitempty" yaml:"fork,omitempty"`
	Archived   bool   `json:"archived,omitempty" yaml:"archived,omitempty"`
	Disabled   bool   `json:"disabled,omitempty" yaml:"disabled,omitempty"`
}

// Lister enumerates the repositories of an organisation.
type Lister interface {
	ListRepos(ctx context.Context, org string) ([]Repo, error)
}

// FromGitHub converts an API repository.
func FromGitHub(r github.Repo) Repo {
	return Repo{
		Name:       r.Name,
		HTMLURL:    r.HTMLURL,
		SSHURL:     r.SSHURL,
		CloneURL:   r.CloneURL,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
		PushedAt:   r.PushedAt,
		Visibility: r.Visibility,
		Fork:       r.Fork,
		Archived:   r.Archived,
		Disabled:   r.Disabled,
	}
}

// GitHubLister lists organisation repositories through the GitHub API.
type GitHubLister struct {
	Client *github.Client
}

// NewGitHubLister creates a lister authenticated with token (may be empty).
func NewGitHubLister(token string) *GitHubLister {
	return &GitHubLister{Client: github.NewClient(token)}
}

// ListRepos implements Lister.
func (l *GitHubLister) ListRepos(ctx context.Context, org string) ([]Repo, error) {
	api, err := l.Client.ListOrgRepos(ctx, org)
	if err != nil {
		return nil, err
	}
	repos := make([]Repo, len(api))
	for i, r := range api {
		repos[i] = FromGitHub(r)
	}
	return repos, nil
}
