// Package integrations provides the HTTP plumbing shared by API clients.
//
// The only client today is [github], which lists the repositories of an
// organisation. [Client] gives it:
//
//   - default headers on every request
//   - retry with exponential backoff for network failures and 5xx responses
//   - mapping of 401, 403, 404 and 429 responses to coded errors from
//     [errors]
//   - request events for [observability.HTTPHooks]
//
// [github]: github.com/matzehuels/uiadoption/pkg/integrations/github
// [errors]: github.com/matzehuels/uiadoption/pkg/errors
// [observability.HTTPHooks]: github.com/matzehuels/uiadoption/pkg/observability.HTTPHooks
package integrations
