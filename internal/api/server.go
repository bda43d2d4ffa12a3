package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Kerhoff/TodoWidget/internal/events"
	"github.com/Kerhoff/TodoWidget/internal/metrics"
	"github.com/Kerhoff/TodoWidget/internal/models"
	"github.com/Kerhoff/TodoWidget/internal/repository"
	"github.com/Kerhoff/TodoWidget/internal/service"
)

// Server exposes the widget's command surface over local HTTP.
type Server struct {
	svc     *service.Service
	events  *events.Broadcaster
	metrics *metrics.Metrics
	logger  *logrus.Logger
	mux     *http.ServeMux
}

// NewServer creates a Server, registers all routes, and returns it. m may be
// nil, in which case /metrics is not served.
func NewServer(svc *service.Service, broadcaster *events.Broadcaster, m *metrics.Metrics, logger *logrus.Logger) *Server {
	s := &Server{svc: svc, events: broadcaster, metrics: m, logger: logger, mux: http.NewServeMux()}
	s.routes()
	return s
}

// Handler returns the http.Handler that can be passed to http.Server.
func (s *Server) Handler() http.Handler {
	return s.logRequests(s.mux)
}

// ---------------------------------------------------------------------------
// Routes
// ---------------------------------------------------------------------------

func (s *Server) routes() {
	// API – Daily todos
	s.mux.HandleFunc("GET /api/daily-todos", s.handleListDailyTodos)
	s.mux.HandleFunc("POST /api/daily-todos", s.handleAddDailyTodo)
	s.mux.HandleFunc("GET /api/daily-todos/{id}", s.handleGetDailyTodo)
	s.mux.HandleFunc("PATCH /api/daily-todos/{id}", s.handleUpdateDailyTodo)
	s.mux.HandleFunc("DELETE /api/daily-todos/{id}", s.handleDeleteDailyTodo)

	// API – Midterm todos
	s.mux.HandleFunc("GET /api/midterm-todos", s.handleListMidtermTodos)
	s.mux.HandleFunc("POST /api/midterm-todos", s.handleAddMidtermTodo)
	s.mux.HandleFunc("GET /api/midterm-todos/{id}", s.handleGetMidtermTodo)
	s.mux.HandleFunc("PATCH /api/midterm-todos/{id}", s.handleUpdateMidtermTodo)
	s.mux.HandleFunc("DELETE /api/midterm-todos/{id}", s.handleDeleteMidtermTodo)

	// API – Database connection
	s.mux.HandleFunc("POST /api/db/test", s.handleTestConnection)
	s.mux.HandleFunc("GET /api/db/config", s.handleGetConnectionConfig)
	s.mux.HandleFunc("PUT /api/db/config", s.handleApplyConnectionConfig)
	s.mux.HandleFunc("PATCH /api/db/config", s.handleConfigureConnection)
	s.mux.HandleFunc("GET /api/db/status", s.handleConnectionStatus)

	// Reload notifications
	s.mux.HandleFunc("GET /api/events", s.handleEvents)

	s.mux.HandleFunc("GET /healthz", s.handleHealth)
	if s.metrics != nil {
		s.mux.Handle("GET /metrics", s.metrics.Handler())
	}
}

// requestIDHeader carries the id a caller (or this server) assigned to a request.
const requestIDHeader = "X-Request-ID"

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.New().String()
		}
		w.Header().Set(requestIDHeader, id)

		started := time.Now()
		next.ServeHTTP(w, r)
		s.logger.WithFields(logrus.Fields{
			"request_id": id,
			"method":     r.Method,
			"path":       r.URL.Path,
			"duration":   time.Since(started).String(),
		}).Debug("Handled request")
	})
}

// ---------------------------------------------------------------------------
// JSON helpers
// ---------------------------------------------------------------------------

type failureResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

type successResponse struct {
	Success bool `json:"success"`
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			s.logger.WithError(err).Error("failed to encode JSON response")
		}
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, failureResponse{Success: false, Error: message})
}

// respondFailure maps a service error to a status code and the
// {success:false, error} body.
func (s *Server) respondFailure(w http.ResponseWriter, err error) {
	var verr *models.ValidationError
	switch {
	case errors.Is(err, repository.ErrNotConnected):
		s.respondError(w, http.StatusServiceUnavailable, repository.ErrNotConnected.Error())
	case errors.As(err, &verr):
		s.respondError(w, http.StatusBadRequest, verr.Error())
	case errors.Is(err, repository.ErrNotFound):
		s.respondError(w, http.StatusNotFound, err.Error())
	default:
		s.respondError(w, http.StatusInternalServerError, err.Error())
	}
}

// decodeJSON reads the request body into dst and returns an error message on
// failure.  The caller should return immediately when ok == false.
func (s *Server) decodeJSON(r *http.Request, dst any) (ok bool, errMsg string) {
	if r.Body == nil || r.Body == http.NoBody {
		return false, "request body is empty"
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return false, fmt.Sprintf("invalid JSON: %v", err)
	}
	return true, ""
}

// pathID extracts the {id} path value and converts it to int64.
func pathID(r *http.Request) (int64, error) {
	raw := r.PathValue("id")
	if raw == "" {
		return 0, fmt.Errorf("missing id in path")
	}
	return strconv.ParseInt(raw, 10, 64)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"connected": s.svc.CheckConnection(r.Context()),
	})
}
