package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/pushchain/candy-machine-client/candyClient/journal"
)

// handleHealth handles GET /health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.ledger != nil && !s.ledger.IsHealthy(r.Context()) {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("LEDGER UNAVAILABLE"))
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

// handleDeployments handles GET /api/v1/deployments
func (s *Server) handleDeployments(w http.ResponseWriter, r *http.Request) {
	deployments, err := s.journal.Deployments(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}

	views := make([]DeploymentView, 0, len(deployments))
	for _, d := range deployments {
		views = append(views, newDeploymentView(d))
	}
	writeJSON(w, http.StatusOK, QueryResponse{Data: views, Count: len(views)})
}

// handleDeployment handles GET /api/v1/deployments/{config}
func (s *Server) handleDeployment(w http.ResponseWriter, r *http.Request) {
	configKey := mux.Vars(r)["config"]

	d, err := s.journal.Deployment(r.Context(), configKey)
	if errors.Is(err, journal.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: fmt.Sprintf("deployment not found for config %s", configKey)})
		return
	}
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, QueryResponse{Data: newDeploymentView(*d)})
}

// handleMints handles GET /api/v1/mints?distributor=<address>&limit=<n>
func (s *Server) handleMints(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	limit := 0
	if raw := query.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "limit must be a positive integer"})
			return
		}
		limit = n
	}

	mints, err := s.journal.Mints(r.Context(), query.Get("distributor"), limit)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}

	views := make([]MintView, 0, len(mints))
	for _, m := range mints {
		views = append(views, newMintView(m))
	}
	writeJSON(w, http.StatusOK, QueryResponse{Data: views, Count: len(views)})
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	s.logger.Error().Err(err).Msg("query failed")
	writeJSON(w, status, ErrorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
