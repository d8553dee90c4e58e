// Package github provides an HTTP client for the GitHub REST API.
//
// # Usage
//
//	client := github.NewClient(os.Getenv("GITHUB_API_TOKEN"))
//	repos, err := client.ListOrgRepos(ctx, "govalta")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, r := range repos {
//	    fmt.Println(r.Name, r.SSHURL)
//	}
//
// # Authentication
//
// A token is optional. Without one only public repositories are listed and
// the client is limited to 60 requests/hour; with one the limit is 5000
// requests/hour and private repositories visible to the token are included.
//
// # Errors
//
// Responses are mapped to coded errors: an unknown organisation yields
// INVALID_ORG, a rejected token UNAUTHORIZED, a denied request FORBIDDEN and
// an exhausted quota RATE_LIMITED. Server errors are retried before they
// surface as NETWORK_ERROR.
package github
