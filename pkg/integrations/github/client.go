package github

import (
	"context"
	"fmt"
	"net/url"

	"github.com/matzehuels/uiadoption/pkg/buildinfo"
	"github.com/matzehuels/uiadoption/pkg/errors"
	"github.com/matzehuels/uiadoption/pkg/integrations"
)

const (
	// DefaultBaseURL is the public GitHub REST endpoint.
	DefaultBaseURL = "https://api.github.com"

	// APIVersion is sent as X-GitHub-Api-Version on every request.
	APIVersion = "2022-11-28"

	perPage = 100

	// maxPages bounds pagination in case the API keeps returning full pages.
	maxPages = 1000
)

// Client lists organisation repositories through the GitHub REST API.
type Client struct {
	*integrations.Client
	baseURL string
}

// NewClient creates a GitHub API client with optional authentication.
// Pass an empty string for token to use unauthenticated requests (lower rate
// limits, public repositories only).
func NewClient(token string) *Client {
	return &Client{
		Client:  integrations.NewClient(headers(token)),
		baseURL: DefaultBaseURL,
	}
}

// WithBaseURL points the client at another API root, such as a GitHub
// Enterprise server or a test server.
func (c *Client) WithBaseURL(base string) *Client {
	c.baseURL = base
	return c
}

func headers(token string) map[string]string {
	h := map[string]string{
		"Accept":               "application/vnd.github+json",
		"X-GitHub-Api-Version": APIVersion,
		"User-Agent":           buildinfo.UserAgent(),
	}
	if token != "" {
		h["Authorization"] = "Bearer " + token
	}
	return h
}

// ListOrgRepos returns every repository of org, in API order. Pages of 100
// are requested until an empty page is returned.
func (c *Client) ListOrgRepos(ctx context.Context, org string) ([]Repo, error) {
	if err := errors.ValidateOrgName(org); err != nil {
		return nil, err
	}

	var all []Repo
	for page := 1; page <= maxPages; page++ {
		var repos []Repo
		if err := c.Get(ctx, c.pageURL(org, page), &repos); err != nil {
			if errors.Is(err, errors.ErrCodeNotFound) {
				return nil, errors.Wrap(errors.ErrCodeInvalidOrg, err, "organisation %q not found", org)
			}
			return nil, err
		}
		if len(repos) == 0 {
			break
		}
		all = append(all, repos...)
	}
	if all == nil {
		all = []Repo{}
	}
	return all, nil
}

func (c *Client) pageURL(org string, page int) string {
	q := url.Values{}
	q.Set("per_page", fmt.Sprint(perPage))
	q.Set("page", fmt.Sprint(page))
	return fmt.Sprintf("%s/orgs/%s/repos?%s", c.baseURL, url.PathEscape(org), q.Encode())
}
