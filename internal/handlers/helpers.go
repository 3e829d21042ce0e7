// Package handlers exposes the transport service over HTTP. Handlers
// decode and hand off to the service; every business decision lives
// below this layer.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/ukydev/school-transport/internal/faults"
)

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.WithError(err).Error("Failed to encode response")
	}
}

// writeError maps a service error to its HTTP status and writes the
// typed error body. Unknown errors become an opaque 500.
func writeError(w http.ResponseWriter, err error) {
	status := faults.HTTPStatus(err)
	var fe *faults.Error
	if errors.As(err, &fe) {
		writeJSON(w, status, fe)
		return
	}
	log.WithError(err).Error("Unhandled error")
	writeJSON(w, status, map[string]string{"error": "internal server error"})
}

// decodeJSON decodes a request body into dst, rejecting unknown fields.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return faults.Validation("", "invalid request body: %v", err)
	}
	return nil
}
