// Package httputil centralizes JSON envelopes for the HTTP surface.
package httputil

import (
	"encoding/json"
	"errors"
	"net/http"

	dErrors "davomat/pkg/domain-errors"
)

// WriteJSON writes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError translates a domain error into the JSON error envelope. Internal
// error details are redacted; the code alone reaches the client.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	body := map[string]string{"error": string(code)}
	var de *dErrors.Error
	if code != dErrors.CodeInternal && errors.As(err, &de) && de.Message != "" {
		body["message"] = de.Message
	}
	WriteJSON(w, dErrors.ToHTTPStatus(code), body)
}
