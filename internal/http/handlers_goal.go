package http

import (
	"fmt"
	"net/http"

	"finman/internal/core"
	"finman/internal/services"
)

func (s *Server) handleCreateGoal(w http.ResponseWriter, r *http.Request) {
	var req goalRequest
	if err := DecodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	if req.TargetAmount == nil {
		s.fail(w, r, fmt.Errorf("%w: target amount is required", core.ErrInvalidRequest))
		return
	}

	g, err := s.svc.Goals.Create(r.Context(), currentUser(r), services.NewGoal{
		Name:         sanitizeInput(req.GoalName),
		TargetAmount: amountOrZero(req.TargetAmount),
		TargetDate:   sanitizeInput(req.TargetDate),
		StartDate:    sanitizeInput(req.StartDate),
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	Created(goalResponse(g)).Write(w)
}

func (s *Server) handleListGoals(w http.ResponseWriter, r *http.Request) {
	goals, err := s.svc.Goals.List(r.Context(), currentUser(r))
	if err != nil {
		s.fail(w, r, err)
		return
	}

	resp := GoalListResponse{Goals: make([]GoalResponse, 0, len(goals))}
	for _, g := range goals {
		resp.Goals = append(resp.Goals, goalResponse(g))
	}
	OK(resp).Write(w)
}

func (s *Server) handleGetGoal(w http.ResponseWriter, r *http.Request) {
	id, err := PathInt64(r, "id")
	if err != nil {
		s.fail(w, r, err)
		return
	}

	g, err := s.svc.Goals.Get(r.Context(), currentUser(r), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	OK(goalResponse(g)).Write(w)
}

func (s *Server) handleUpdateGoal(w http.ResponseWriter, r *http.Request) {
	id, err := PathInt64(r, "id")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	var req goalUpdateRequest
	if err := DecodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	g, err := s.svc.Goals.Update(r.Context(), currentUser(r), id, services.GoalPatch{
		TargetAmount: req.TargetAmount,
		TargetDate:   optionalString(req.TargetDate),
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	OK(goalResponse(g)).Write(w)
}

func (s *Server) handleDeleteGoal(w http.ResponseWriter, r *http.Request) {
	id, err := PathInt64(r, "id")
	if err != nil {
		s.fail(w, r, err)
		return
	}

	if err := s.svc.Goals.Delete(r.Context(), currentUser(r), id); err != nil {
		s.fail(w, r, err)
		return
	}
	Message("Goal deleted successfully").Write(w)
}
