package github

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/matzehuels/uiadoption/pkg/errors"
)

func testClient(t *testing.T, serverURL, token string) *Client {
	t.Helper()
	c := NewClient(token).WithBaseURL(serverURL)
	c.WithRetry(2, time.Millisecond)
	return c
}

func repoPage(start, n int) []Repo {
	repos := make([]Repo, n)
	for i := range repos {
		name := fmt.Sprintf("repo-%03d", start+i)
		repos[i] = Repo{
			Name:    name,
			HTMLURL: "https://github.com/govalta/" + name,
			SSHURL:  "git@github.com:govalta/" + name + ".git",
		}
	}
	return repos
}

func TestClient_ListOrgRepos_Paginates(t *testing.T) {
	var pages []int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/orgs/govalta/repos" {
			http.NotFound(w, r)
			return
		}
		if got := r.URL.Query().Get("per_page"); got != "100" {
			t.Errorf("per_page = %q, want 100", got)
		}
		if got := r.Header.Get("X-GitHub-Api-Version"); got != APIVersion {
			t.Errorf("X-GitHub-Api-Version = %q, want %q", got, APIVersion)
		}
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		pages = append(pages, page)

		w.Header().Set("Content-Type", "application/json")
		switch page {
		case 1:
			json.NewEncoder(w).Encode(repoPage(0, 100))
		case 2:
			json.NewEncoder(w).Encode(repoPage(100, 20))
		default:
			w.Write([]byte("[]"))
		}
	}))
	defer server.Close()

	repos, err := testClient(t, server.URL, "").ListOrgRepos(context.Background(), "govalta")
	if err != nil {
		t.Fatalf("ListOrgRepos failed: %v", err)
	}
	if len(repos) != 120 {
		t.Errorf("len(repos) = %d, want 120", len(repos))
	}
	if repos[0].Name != "repo-000" || repos[119].Name != "repo-119" {
		t.Errorf("order lost: first %s, last %s", repos[0].Name, repos[119].Name)
	}
	if fmt.Sprint(pages) != "[1 2 3]" {
		t.Errorf("pages requested = %v, want [1 2 3]", pages)
	}
}

func TestClient_ListOrgRepos_Empty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("[]"))
	}))
	defer server.Close()

	repos, err := testClient(t, server.URL, "").ListOrgRepos(context.Background(), "govalta")
	if err != nil {
		t.Fatal(err)
	}
	if repos == nil || len(repos) != 0 {
		t.Errorf("repos = %v, want empty non-nil", repos)
	}
}

func TestClient_ListOrgRepos_Auth(t *testing.T) {
	tests := []struct {
		token string
		want  string
	}{
		{"", ""},
		{"ghp_secret", "Bearer ghp_secret"},
	}
	for _, tt := range tests {
		var got string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got = r.Header.Get("Authorization")
			w.Write([]byte("[]"))
		}))

		if _, err := testClient(t, server.URL, tt.token).ListOrgRepos(context.Background(), "govalta"); err != nil {
			t.Errorf("token %q: %v", tt.token, err)
		}
		if got != tt.want {
			t.Errorf("Authorization = %q, want %q", got, tt.want)
		}
		server.Close()
	}
}

func TestClient_ListOrgRepos_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   errors.Code
	}{
		{"unknown org", http.StatusNotFound, errors.ErrCodeInvalidOrg},
		{"bad token", http.StatusUnauthorized, errors.ErrCodeUnauthorized},
		{"forbidden", http.StatusForbidden, errors.ErrCodeForbidden},
		{"rate limited", http.StatusTooManyRequests, errors.ErrCodeRateLimited},
		{"server error", http.StatusServiceUnavailable, errors.ErrCodeNetwork},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer server.Close()

			_, err := testClient(t, server.URL, "").ListOrgRepos(context.Background(), "govalta")
			if got := errors.GetCode(err); got != tt.want {
				t.Errorf("code = %q, want %q (err %v)", got, tt.want, err)
			}
		})
	}
}

func TestClient_ListOrgRepos_InvalidOrg(t *testing.T) {
	_, err := NewClient("").ListOrgRepos(context.Background(), "-bad org")
	if !errors.Is(err, errors.ErrCodeInvalidOrg) {
		t.Errorf("err = %v, want INVALID_ORG", err)
	}
}

func TestNewClient(t *testing.T) {
	c := NewClient("test-token")
	if c.Client == nil {
		t.Error("expected client to be initialized")
	}
	if c.baseURL != DefaultBaseURL {
		t.Errorf("baseURL = %q, want %q", c.baseURL, DefaultBaseURL)
	}
}
