package handler

import (
	"encoding/json"
	"net/http"

	"github.com/bpbdbogor/portal/internal/model"
)

// maxBodyBytes bounds request bodies; a login payload is a few hundred bytes.
const maxBodyBytes = 64 * 1024

// writeJSON serializes v as JSON and writes it to the response with the given
// HTTP status code. The Content-Type header is set to application/json.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeMessage writes the {"message": ...} envelope used by every non-success
// response of the auth API.
func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, model.MessageResponse{Message: message})
}

// readJSON decodes the request body as JSON into v. The body is closed after
// decoding regardless of success or failure.
func readJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	defer r.Body.Close()
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v)
}
