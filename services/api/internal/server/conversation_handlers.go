package server

import (
	"net/http"
	"strconv"
	"strings"

	"finalyearng/pkg/domain"
	"finalyearng/services/api/internal/app"
)

type createConversationRequest struct {
	Title          string `json:"title"`
	Type           string `json:"type"`
	ProjectID      string `json:"projectId"`
	InitialMessage string `json:"initialMessage"`
}

type updateConversationRequest struct {
	Title  *string `json:"title"`
	Status *string `json:"status"`
}

type addMessageRequest struct {
	Role     string            `json:"role"`
	Content  string            `json:"content"`
	Metadata map[string]string `json:"metadata"`
}

func (s *Server) handleConversations(w http.ResponseWriter, r *http.Request, user domain.User) {
	switch r.Method {
	case http.MethodGet:
		query := r.URL.Query()
		limit, _ := strconv.Atoi(query.Get("limit"))
		skip, _ := strconv.Atoi(query.Get("skip"))
		items, err := s.app.ListConversations(user.ID, app.ListConversationsParams{
			Type:   query.Get("type"),
			Status: query.Get("status"),
			Limit:  limit,
			Skip:   skip,
		})
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeData(w, http.StatusOK, map[string]any{"conversations": items, "count": len(items)})
	case http.MethodPost:
		var req createConversationRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		conv, err := s.app.CreateConversation(user.ID, app.CreateConversationParams{
			Title:          req.Title,
			Type:           domain.ConversationType(req.Type),
			ProjectID:      req.ProjectID,
			InitialMessage: req.InitialMessage,
		})
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeData(w, http.StatusCreated, conv)
	default:
		methodNotAllowed(w)
	}
}

func (s *Server) handleConversationStats(w http.ResponseWriter, r *http.Request, user domain.User) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	stats, err := s.app.GetConversationStats(user.ID)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeData(w, http.StatusOK, stats)
}

// handleConversationByID serves /api/conversations/{id} and
// /api/conversations/{id}/messages.
func (s *Server) handleConversationByID(w http.ResponseWriter, r *http.Request, user domain.User) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/conversations/")
	parts := strings.SplitN(rest, "/", 2)
	id := parts[0]
	if id == "" {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	if len(parts) == 2 {
		if parts[1] == "messages" {
			s.handleAddConversationMessage(w, r, user, id)
			return
		}
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	switch r.Method {
	case http.MethodGet:
		conv, err := s.app.GetConversation(user.ID, id)
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeData(w, http.StatusOK, conv)
	case http.MethodPut:
		var req updateConversationRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		conv, err := s.app.UpdateConversation(user.ID, id, req.Title, req.Status)
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeData(w, http.StatusOK, conv)
	case http.MethodDelete:
		if err := s.app.DeleteConversation(user.ID, id); err != nil {
			writeAppError(w, err)
			return
		}
		writeMessage(w, http.StatusOK, "conversation deleted", nil)
	default:
		methodNotAllowed(w)
	}
}

func (s *Server) handleAddConversationMessage(w http.ResponseWriter, r *http.Request, user domain.User, conversationID string) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req addMessageRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	conv, msg, err := s.app.AddConversationMessage(user.ID, conversationID, req.Role, req.Content, req.Metadata)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeData(w, http.StatusCreated, map[string]any{"conversation": conv, "message": msg})
}
