package api

import (
	"net/http"
	"strings"

	"github.com/Kerhoff/TodoWidget/internal/models"
)

// ---------------------------------------------------------------------------
// Daily todos
// ---------------------------------------------------------------------------

func (s *Server) handleListDailyTodos(w http.ResponseWriter, r *http.Request) {
	var date *models.Date
	if raw := strings.TrimSpace(r.URL.Query().Get("date")); raw != "" {
		d, err := models.ParseDate(raw)
		if err != nil {
			s.respondError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
			return
		}
		date = &d
	}

	s.respondJSON(w, http.StatusOK, s.svc.ListDailyTodos(r.Context(), date))
}

func (s *Server) handleGetDailyTodo(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid todo id")
		return
	}

	todo, err := s.svc.GetDailyTodo(r.Context(), id)
	if err != nil {
		s.respondFailure(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, todo)
}

func (s *Server) handleAddDailyTodo(w http.ResponseWriter, r *http.Request) {
	var req models.NewDailyTodo
	if ok, msg := s.decodeJSON(r, &req); !ok {
		s.respondError(w, http.StatusBadRequest, msg)
		return
	}

	todo, err := s.svc.AddDailyTodo(r.Context(), req)
	if err != nil {
		s.respondFailure(w, err)
		return
	}
	s.respondJSON(w, http.StatusCreated, todo)
}

func (s *Server) handleUpdateDailyTodo(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid todo id")
		return
	}

	var patch models.DailyTodoPatch
	if ok, msg := s.decodeJSON(r, &patch); !ok {
		s.respondError(w, http.StatusBadRequest, msg)
		return
	}

	todo, err := s.svc.UpdateDailyTodo(r.Context(), id, patch)
	if err != nil {
		s.respondFailure(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, todo)
}

func (s *Server) handleDeleteDailyTodo(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid todo id")
		return
	}

	if err := s.svc.DeleteDailyTodo(r.Context(), id); err != nil {
		s.respondFailure(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, successResponse{Success: true})
}

// ---------------------------------------------------------------------------
// Midterm todos
// ---------------------------------------------------------------------------

func (s *Server) handleListMidtermTodos(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, s.svc.ListMidtermTodos(r.Context()))
}

func (s *Server) handleGetMidtermTodo(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid todo id")
		return
	}

	todo, err := s.svc.GetMidtermTodo(r.Context(), id)
	if err != nil {
		s.respondFailure(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, todo)
}

func (s *Server) handleAddMidtermTodo(w http.ResponseWriter, r *http.Request) {
	var req models.NewMidtermTodo
	if ok, msg := s.decodeJSON(r, &req); !ok {
		s.respondError(w, http.StatusBadRequest, msg)
		return
	}

	todo, err := s.svc.AddMidtermTodo(r.Context(), req)
	if err != nil {
		s.respondFailure(w, err)
		return
	}
	s.respondJSON(w, http.StatusCreated, todo)
}

func (s *Server) handleUpdateMidtermTodo(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid todo id")
		return
	}

	var patch models.MidtermTodoPatch
	if ok, msg := s.decodeJSON(r, &patch); !ok {
		s.respondError(w, http.StatusBadRequest, msg)
		return
	}

	todo, err := s.svc.UpdateMidtermTodo(r.Context(), id, patch)
	if err != nil {
		s.respondFailure(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, todo)
}

func (s *Server) handleDeleteMidtermTodo(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid todo id")
		return
	}

	if err := s.svc.DeleteMidtermTodo(r.Context(), id); err != nil {
		s.respondFailure(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, successResponse{Success: true})
}
