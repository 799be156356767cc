package middleware

import (
	"net/http"
	"time"
)

// Timeout bounds every API request with http.TimeoutHandler. The canned body
// matches the envelope in model.APIResponse since TimeoutHandler only accepts
// a raw string. Non-positive durations fall back to 30 seconds.
func Timeout(timeout time.Duration) func(http.Handler) http.Handler {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	message := `{"success":false,"error":{"code":"REQUEST_TIMEOUT","message":"request timed out"}}`

	return func(next http.Handler) http.Handler {
		return http.TimeoutHandler(next, timeout, message)
	}
}
