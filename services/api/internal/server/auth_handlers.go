package server

import (
	"net/http"

	"finalyearng/pkg/domain"
	"finalyearng/services/api/internal/app"
)

type registerRequest struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	University string `json:"university"`
	Faculty    string `json:"faculty"`
	Department string `json:"department"`
	Degree     string `json:"degree"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token string      `json:"token"`
	User  publicUser  `json:"user"`
}

// publicUser is the client-facing account shape, password hash
// excluded.
type publicUser struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Role       string `json:"role"`
	Status     string `json:"status"`
	University string `json:"university,omitempty"`
	Faculty    string `json:"faculty,omitempty"`
	Department string `json:"department,omitempty"`
	Degree     string `json:"degree,omitempty"`
}

func toPublicUser(u domain.User) publicUser {
	return publicUser{
		ID:         u.ID,
		Name:       u.Name,
		Email:      u.Email,
		Role:       string(u.Role),
		Status:     string(u.Status),
		University: u.University,
		Faculty:    u.Faculty,
		Department: u.Department,
		Degree:     u.Degree,
	}
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	if !s.allowRate(w, r, s.registerLimiter, "too many registration attempts") {
		s.audit(r, "api.register", "rate_limited")
		return
	}
	var req registerRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	user, token, err := s.app.Register(app.RegisterParams{
		Name:       req.Name,
		Email:      req.Email,
		Password:   req.Password,
		University: req.University,
		Faculty:    req.Faculty,
		Department: req.Department,
		Degree:     req.Degree,
	})
	if err != nil {
		s.audit(r, "api.register", "fail", "reason", err.Error())
		writeAppError(w, err)
		return
	}
	s.audit(r, "api.register", "success", "user_id", user.ID)
	writeData(w, http.StatusCreated, authResponse{Token: token, User: toPublicUser(user)})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	if !s.allowRate(w, r, s.loginLimiter, "too many login attempts") {
		s.audit(r, "api.login", "rate_limited")
		return
	}
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	user, token, err := s.app.Login(req.Email, req.Password)
	if err != nil {
		s.audit(r, "api.login", "fail", "reason", err.Error())
		writeAppError(w, err)
		return
	}
	s.audit(r, "api.login", "success", "user_id", user.ID)
	writeData(w, http.StatusOK, authResponse{Token: token, User: toPublicUser(user)})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request, user domain.User) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	writeData(w, http.StatusOK, toPublicUser(user))
}
