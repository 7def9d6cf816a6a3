package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"finalyearng/internal/ratelimit"
	"finalyearng/internal/util"
	"finalyearng/pkg/ai"
	"finalyearng/pkg/auth"
	"finalyearng/pkg/domain"
	"finalyearng/services/api/internal/app"
)

// Config wires the server's dependencies.
type Config struct {
	App          *app.App
	ClientOrigin string

	RedisAddr     string
	RedisPassword string

	RegisterRateLimitPerMinute int
	LoginRateLimitPerMinute    int
	AIRateLimitPerMinute       int

	// TrustedProxies lists proxy CIDRs whose forwarded headers are honored.
	TrustedProxies []string

	// Injectable for tests.
	RegisterLimiter *ratelimit.FixedWindowLimiter
	LoginLimiter    *ratelimit.FixedWindowLimiter
	AILimiter       *ratelimit.FixedWindowLimiter
}

// Server exposes the HTTP API.
type Server struct {
	app          *app.App
	mux          *http.ServeMux
	clientOrigin string

	registerLimiter *ratelimit.FixedWindowLimiter
	loginLimiter    *ratelimit.FixedWindowLimiter
	aiLimiter       *ratelimit.FixedWindowLimiter

	trustedProxies *util.TrustedProxies
}

// New constructs the server with routes configured.
func New(cfg Config) (*Server, error) {
	registerLimit := cfg.RegisterRateLimitPerMinute
	if registerLimit <= 0 {
		registerLimit = 5
	}
	loginLimit := cfg.LoginRateLimitPerMinute
	if loginLimit <= 0 {
		loginLimit = 10
	}
	newLimiter := func(name string, limit int) (*ratelimit.FixedWindowLimiter, error) {
		prefix := "finalyearng:api:ratelimit:" + name
		limiter, err := ratelimit.NewRedisFixedWindowLimiter(cfg.RedisAddr, cfg.RedisPassword, prefix, limit, time.Minute)
		if err != nil {
			return nil, fmt.Errorf("init %s limiter: %w", name, err)
		}
		return limiter, nil
	}
	registerLimiter := cfg.RegisterLimiter
	if registerLimiter == nil {
		var err error
		if registerLimiter, err = newLimiter("register", registerLimit); err != nil {
			return nil, err
		}
	}
	loginLimiter := cfg.LoginLimiter
	if loginLimiter == nil {
		var err error
		if loginLimiter, err = newLimiter("login", loginLimit); err != nil {
			return nil, err
		}
	}
	aiLimiter := cfg.AILimiter
	if aiLimiter == nil && cfg.AIRateLimitPerMinute > 0 {
		var err error
		if aiLimiter, err = newLimiter("ai", cfg.AIRateLimitPerMinute); err != nil {
			return nil, err
		}
	}
	trustedProxies, err := util.NewTrustedProxies(cfg.TrustedProxies)
	if err != nil {
		return nil, fmt.Errorf("parse trusted proxies: %w", err)
	}
	s := &Server{
		app:             cfg.App,
		mux:             http.NewServeMux(),
		clientOrigin:    cfg.ClientOrigin,
		registerLimiter: registerLimiter,
		loginLimiter:    loginLimiter,
		aiLimiter:       aiLimiter,
		trustedProxies:  trustedProxies,
	}
	s.routes()
	return s, nil
}

// Router returns the configured handler.
func (s *Server) Router() http.Handler {
	return util.WithRequestID(util.WithRequestLog("api", util.WithSecurityHeaders(util.WithCORS(s.clientOrigin, s.mux))))
}

func (s *Server) routes() {
	s.mux.HandleFunc("/healthz", s.handleHealth)

	// auth
	s.mux.HandleFunc("/api/auth/register", s.handleRegister)
	s.mux.HandleFunc("/api/auth/login", s.handleLogin)
	s.mux.Handle("/api/auth/me", s.authenticated(s.handleMe))

	// projects
	s.mux.Handle("/api/project", s.authenticated(s.handleProjects))
	s.mux.Handle("/api/project/", s.authenticated(s.handleProjectByID))

	// ai
	s.mux.Handle("/api/ai/topics", s.authenticated(s.handleAITopics))
	s.mux.Handle("/api/ai/generate", s.authenticated(s.handleAIGenerate))
	s.mux.Handle("/api/ai/preliminary", s.authenticated(s.handleAIPreliminary))
	s.mux.Handle("/api/ai/outline", s.authenticated(s.handleAIOutline))
	s.mux.Handle("/api/ai/chat", s.authenticated(s.handleAIChat))
	s.mux.Handle("/api/ai/chat/topic-generation", s.authenticated(s.handleAITopicChat))
	s.mux.Handle("/api/ai/models", s.authenticated(s.handleAIModels))

	// conversations
	s.mux.Handle("/api/conversations", s.authenticated(s.handleConversations))
	s.mux.Handle("/api/conversations/stats", s.authenticated(s.handleConversationStats))
	s.mux.Handle("/api/conversations/", s.authenticated(s.handleConversationByID))

	// saved content
	s.mux.Handle("/api/saved-content", s.authenticated(s.handleSavedContent))
	s.mux.Handle("/api/saved-content/", s.authenticated(s.handleSavedContentByID))

	// admin
	s.mux.Handle("/api/admin/users", s.adminOnly(s.handleAdminUsers))
	s.mux.Handle("/api/admin/users/", s.adminOnly(s.handleAdminUserByID))
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// auth wrappers
type authHandler func(http.ResponseWriter, *http.Request, domain.User)

func (s *Server) authenticated(next authHandler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := s.authorize(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next(w, r, user)
	})
}

func (s *Server) adminOnly(next authHandler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := s.authorize(r)
		if !ok {
			s.audit(r, "api.admin.authorize", "fail", "reason", "unauthorized")
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		if user.Role != domain.RoleAdmin {
			s.audit(r, "api.admin.authorize", "fail", "user_id", user.ID, "reason", "forbidden")
			writeError(w, http.StatusForbidden, "forbidden")
			return
		}
		s.audit(r, "api.admin.authorize", "success", "user_id", user.ID)
		next(w, r, user)
	})
}

func (s *Server) authorize(r *http.Request) (domain.User, bool) {
	token, ok := bearerToken(r)
	if !ok {
		return domain.User{}, false
	}
	return s.app.UserFromToken(token)
}

func bearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	if token == "" {
		return "", false
	}
	return token, true
}

// Response envelope shared by all endpoints.
type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeData(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, envelope{Success: true, Data: data})
}

func writeMessage(w http.ResponseWriter, status int, msg string, data any) {
	writeJSON(w, status, envelope{Success: true, Message: msg, Data: data})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, envelope{Success: false, Message: msg})
}

func methodNotAllowed(w http.ResponseWriter) {
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

// writeAppError maps application and AI sentinel errors to HTTP
// statuses.
func writeAppError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, app.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, app.ErrForbidden):
		writeError(w, http.StatusForbidden, "forbidden")
	case errors.Is(err, app.ErrInvalidCredentials),
		errors.Is(err, app.ErrUserDisabled):
		writeError(w, http.StatusUnauthorized, app.ErrInvalidCredentials.Error())
	case errors.Is(err, app.ErrEmailAlreadyExists):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, app.ErrEmailAndPasswordRequired),
		errors.Is(err, app.ErrNameRequired),
		errors.Is(err, auth.ErrWeakPassword),
		errors.Is(err, app.ErrTopicRequired),
		errors.Is(err, app.ErrDepartmentRequired),
		errors.Is(err, app.ErrMessageRequired),
		errors.Is(err, app.ErrInvalidCategory),
		errors.Is(err, app.ErrInvalidRole),
		errors.Is(err, app.ErrInvalidStatus),
		errors.Is(err, app.ErrConversationClosed):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ai.ErrInvalidRequest), errors.Is(err, ai.ErrSafetyBlocked):
		writeError(w, http.StatusBadRequest, "AI request was rejected, please rephrase and try again")
	case errors.Is(err, ai.ErrAuthOrQuota):
		writeError(w, http.StatusForbidden, "AI service access denied")
	case errors.Is(err, ai.ErrRateLimited):
		writeError(w, http.StatusTooManyRequests, "AI service is busy, please try again shortly")
	case errors.Is(err, ai.ErrServiceUnavailable):
		writeError(w, http.StatusServiceUnavailable, "AI service is temporarily unavailable")
	case errors.Is(err, ai.ErrEmptyResponse),
		errors.Is(err, ai.ErrUnparsableTopics),
		errors.Is(err, ai.ErrUnparsableOutline):
		writeError(w, http.StatusBadGateway, "AI service returned an unusable response")
	default:
		slog.Error("internal error", "err", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func (s *Server) allowRate(w http.ResponseWriter, r *http.Request, limiter *ratelimit.FixedWindowLimiter, msg string) bool {
	if limiter == nil {
		return true
	}
	key := r.URL.Path + "|" + util.ClientIP(r, s.trustedProxies)
	if limiter.Allow(key) {
		return true
	}
	w.Header().Set("Retry-After", "60")
	writeError(w, http.StatusTooManyRequests, msg)
	return false
}

func (s *Server) audit(r *http.Request, event, outcome string, attrs ...any) {
	logAttrs := []any{
		"event", event,
		"outcome", outcome,
		"path", r.URL.Path,
		"method", r.Method,
		"ip", util.ClientIP(r, s.trustedProxies),
		"request_id", util.RequestIDFromRequest(r),
	}
	logAttrs = append(logAttrs, attrs...)
	if outcome == "success" {
		slog.Info("security_event", logAttrs...)
		return
	}
	slog.Warn("security_event", logAttrs...)
}
