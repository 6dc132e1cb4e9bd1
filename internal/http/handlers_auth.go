package http

import (
	"net/http"
	"time"

	"finman/internal/services"
)

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := DecodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	user, err := s.svc.Users.Register(r.Context(), services.Registration{
		Username:    sanitizeInput(req.Username),
		Password:    req.Password,
		FullName:    sanitizeInput(req.FullName),
		PhoneNumber: sanitizeInput(req.PhoneNumber),
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	Created(RegisterResponse{Message: "User registered successfully", UserID: user.ID}).Write(w)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := DecodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	session, err := s.svc.Users.Login(r.Context(), sanitizeInput(req.Username), req.Password)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	OK(LoginResponse{
		Message:   "Login successful",
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt.UTC().Format(time.RFC3339),
	}).Write(w)
}

// handleLogout is stateless: tokens expire on their own and the client drops
// its copy.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	Message("Logout successful").Write(w)
}
