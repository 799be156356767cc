package middleware

import (
	"encoding/json"
	"net/http"
)

// jsonEncode writes the standard response envelope for errors produced inside
// the middleware chain, before a handler ever runs.
func jsonEncode(w http.ResponseWriter, value any) error {
	return json.NewEncoder(w).Encode(value)
}
