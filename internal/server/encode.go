package server

import (
	"encoding/json"
	"mime"
	"net/http"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
)

// Response media types.
const (
	contentTypeJSON    = "application/json"
	contentTypeMsgpack = "application/msgpack"
)

// errorResponse is the body of every API error.
type errorResponse struct {
	Error string `json:"error" msgpack:"error"`
}

// wantsMsgpack reports whether the client prefers MessagePack over JSON.
func wantsMsgpack(r *http.Request) bool {
	for _, part := range strings.Split(r.Header.Get("Accept"), ",") {
		mt, _, err := mime.ParseMediaType(strings.TrimSpace(part))
		if err != nil {
			continue
		}
		switch mt {
		case contentTypeMsgpack, "application/x-msgpack":
			return true
		}
	}
	return false
}

// writeResponse encodes v in the negotiated format. Encoding happens before
// the status line is written so an encoding failure can still become a 500.
func writeResponse(w http.ResponseWriter, r *http.Request, status int, v any) {
	contentType := contentTypeJSON
	var (
		data []byte
		err  error
	)
	if wantsMsgpack(r) {
		contentType = contentTypeMsgpack
		data, err = msgpack.Marshal(v)
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
		return
	}

	h := w.Header()
	h.Set("Content-Type", contentType)
	h.Set("Cache-Control", "no-cache")
	h.Add("Vary", "Accept")
	w.WriteHeader(status)
	w.Write(data)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeResponse(w, r, status, errorResponse{Error: msg})
}
