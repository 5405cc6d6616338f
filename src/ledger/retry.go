package ledger

import (
	"net/http"
	"time"
)

const (
	retryAttempts = 3
	retryDelay    = 2 * time.Second
	maxRetryDelay = 30 * time.Second
)

// doWithRetry retries a bridge call on transport errors and transient HTTP
// statuses (429 and 5xx) with doubling backoff. The final attempt's outcome is
// returned as-is.
func doWithRetry(fn func() (*http.Response, error)) (*http.Response, error) {
	delay := retryDelay
	var resp *http.Response
	var err error
	for i := 0; i < retryAttempts; i++ {
		resp, err = fn()
		if err == nil && resp.StatusCode != http.StatusTooManyRequests && resp.StatusCode < 500 {
			return resp, nil
		}
		if i == retryAttempts-1 {
			break
		}
		if resp != nil {
			resp.Body.Close()
		}
		time.Sleep(delay)
		if delay < maxRetryDelay {
			delay *= 2
		}
	}
	return resp, err
}
