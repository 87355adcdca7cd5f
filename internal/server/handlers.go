package server

import (
	"net/http"
	"strconv"
)

func (s *Server) handlePositions(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, r, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	writeResponse(w, r, http.StatusOK, s.svc.Positions(limit))
}

func (s *Server) handleLatest(w http.ResponseWriter, r *http.Request) {
	writeResponse(w, r, http.StatusOK, s.svc.Latest())
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeResponse(w, r, http.StatusOK, s.svc.Status())
}

// handleHealth always answers 200; degraded acquisition is reported in the
// body since the API keeps serving stale history.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeResponse(w, r, http.StatusOK, s.svc.Health(s.now()))
}
