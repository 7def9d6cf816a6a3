package server

import (
	"net/http"
	"strings"

	"finalyearng/pkg/domain"
)

type saveContentRequest struct {
	ProjectID string `json:"projectId"`
	Category  string `json:"category"`
	Content   string `json:"content"`
}

func (s *Server) handleSavedContent(w http.ResponseWriter, r *http.Request, user domain.User) {
	switch r.Method {
	case http.MethodGet:
		var projectID *string
		if v := strings.TrimSpace(r.URL.Query().Get("projectId")); v != "" {
			projectID = &v
		}
		items, err := s.app.ListSavedContents(user.ID, projectID)
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeData(w, http.StatusOK, map[string]any{"items": items, "count": len(items)})
	case http.MethodPost:
		var req saveContentRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		var projectID *string
		if v := strings.TrimSpace(req.ProjectID); v != "" {
			projectID = &v
		}
		stored, err := s.app.SaveContent(user.ID, projectID, domain.ContentCategory(req.Category), req.Content)
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeData(w, http.StatusOK, stored)
	default:
		methodNotAllowed(w)
	}
}

func (s *Server) handleSavedContentByID(w http.ResponseWriter, r *http.Request, user domain.User) {
	id := strings.TrimPrefix(r.URL.Path, "/api/saved-content/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	if r.Method != http.MethodDelete {
		methodNotAllowed(w)
		return
	}
	if err := s.app.DeleteSavedContent(user.ID, id); err != nil {
		writeAppError(w, err)
		return
	}
	writeMessage(w, http.StatusOK, "saved content deleted", nil)
}
