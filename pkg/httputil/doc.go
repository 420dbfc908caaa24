// Package httputil provides HTTP utilities for remote API clients.
//
// # Client
//
// [Client] sends JSON requests with default headers and maps HTTP status
// codes onto the project error codes:
//
//   - 401, 403: UNAUTHORIZED
//   - 404: NOT_FOUND
//   - 429: RATE_LIMITED (retried)
//   - 5xx and transport failures: NETWORK_ERROR (retried)
//
// # Retry
//
// [Retry] re-runs an operation while it fails with a [RetryableError],
// doubling the delay after each attempt:
//
//	err := httputil.Retry(ctx, 3, time.Second, func() error {
//	    return callRemote(ctx)
//	})
//
// When every attempt fails, the unwrapped cause of the last failure is
// returned so callers can inspect its error code.
package httputil
