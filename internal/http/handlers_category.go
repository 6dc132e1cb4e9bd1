package http

import (
	"net/http"

	"finman/internal/core"
)

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := s.svc.Categories.ListVisible(r.Context(), currentUser(r))
	if err != nil {
		s.fail(w, r, err)
		return
	}

	resp := CategoryListResponse{Categories: make([]CategoryResponse, 0, len(cats))}
	for _, c := range cats {
		resp.Categories = append(resp.Categories, categoryResponse(c))
	}
	OK(resp).Write(w)
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := DecodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	c, err := s.svc.Categories.Create(r.Context(), currentUser(r),
		sanitizeInput(req.Name), core.TransactionType(sanitizeInput(req.Type)))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	Created(categoryResponse(c)).Write(w)
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Categories.Delete(r.Context(), currentUser(r), PathString(r, "name")); err != nil {
		s.fail(w, r, err)
		return
	}
	Message("Category deleted successfully").Write(w)
}
