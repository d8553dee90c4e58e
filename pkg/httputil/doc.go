// Package httputil provides retry helpers for the GitHub API client.
//
// [Retry] re-runs an operation while it fails with a [RetryableError]:
//
//   - network errors
//   - 5xx server errors
//
// Any other error is returned at once. The delay doubles after every
// attempt; a Retry-After hint carried by [RetryableAfter] raises the wait
// for that attempt.
//
//	err := httputil.RetryWithBackoff(ctx, func() error {
//	    resp, err := client.Do(req)
//	    if err != nil {
//	        return httputil.Retryable(err)
//	    }
//	    ...
//	})
//
// Defaults for [RetryWithBackoff]: 3 attempts, 1 second initial delay.
package httputil
