package api

import (
	"fmt"
	"net/http"

	"github.com/Kerhoff/TodoWidget/internal/config"
	"github.com/Kerhoff/TodoWidget/internal/database"
)

// ---------------------------------------------------------------------------
// Database connection
// ---------------------------------------------------------------------------

type statusResponse struct {
	Connected bool `json:"connected"`
}

// connectionFromRequest decodes a partial connection and lays it over the
// current settings, so a client that never saw the password can still submit
// the form.
func (s *Server) connectionFromRequest(r *http.Request) (config.Connection, bool, string) {
	var patch config.ConnectionPatch
	if ok, msg := s.decodeJSON(r, &patch); !ok {
		return config.Connection{}, false, msg
	}
	return s.svc.CurrentConnectionConfig().Apply(patch), true, ""
}

func (s *Server) handleTestConnection(w http.ResponseWriter, r *http.Request) {
	cfg, ok, msg := s.connectionFromRequest(r)
	if !ok {
		s.respondJSON(w, http.StatusBadRequest, database.Result{Success: false, Message: msg})
		return
	}

	s.respondJSON(w, http.StatusOK, s.svc.TestConnection(r.Context(), cfg))
}

func (s *Server) handleApplyConnectionConfig(w http.ResponseWriter, r *http.Request) {
	cfg, ok, msg := s.connectionFromRequest(r)
	if !ok {
		s.respondJSON(w, http.StatusBadRequest, database.Result{Success: false, Message: msg})
		return
	}

	s.respondJSON(w, http.StatusOK, s.svc.ApplyConnectionConfig(r.Context(), cfg))
}

func (s *Server) handleConfigureConnection(w http.ResponseWriter, r *http.Request) {
	var patch config.ConnectionPatch
	if ok, msg := s.decodeJSON(r, &patch); !ok {
		s.respondError(w, http.StatusBadRequest, msg)
		return
	}

	if err := s.svc.UpdateConnectionSettings(patch); err != nil {
		s.respondError(w, http.StatusInternalServerError, fmt.Sprintf("failed to save settings: %v", err))
		return
	}
	s.respondJSON(w, http.StatusOK, s.svc.CurrentConnectionConfig().Masked())
}

func (s *Server) handleGetConnectionConfig(w http.ResponseWriter, r *http.Request) {
	cfg := s.svc.CurrentConnectionConfig()
	if r.URL.Query().Get("reveal") != "true" {
		cfg = cfg.Masked()
	}
	s.respondJSON(w, http.StatusOK, cfg)
}

func (s *Server) handleConnectionStatus(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, statusResponse{Connected: s.svc.CheckConnection(r.Context())})
}
