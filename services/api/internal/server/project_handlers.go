package server

import (
	"net/http"
	"strings"

	"finalyearng/pkg/domain"
	"finalyearng/services/api/internal/app"
)

type createProjectRequest struct {
	Title      string   `json:"title"`
	Topic      string   `json:"topic"`
	Department string   `json:"department"`
	Domain     string   `json:"domain"`
	Keywords   []string `json:"keywords"`
}

type updateProjectRequest struct {
	Title      *string  `json:"title"`
	Topic      *string  `json:"topic"`
	Department *string  `json:"department"`
	Domain     *string  `json:"domain"`
	Keywords   []string `json:"keywords"`
	Status     *string  `json:"status"`
}

type saveDraftRequest struct {
	Chapters    []domain.Chapter     `json:"chapters"`
	ChatHistory []domain.ChatMessage `json:"chatHistory"`
}

func (s *Server) handleProjects(w http.ResponseWriter, r *http.Request, user domain.User) {
	switch r.Method {
	case http.MethodGet:
		projects, err := s.app.ListProjects(user.ID)
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeData(w, http.StatusOK, map[string]any{"projects": projects, "count": len(projects)})
	case http.MethodPost:
		var req createProjectRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		project, err := s.app.CreateProject(user.ID, app.CreateProjectParams{
			Title:      req.Title,
			Topic:      req.Topic,
			Department: req.Department,
			Domain:     req.Domain,
			Keywords:   req.Keywords,
		})
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeData(w, http.StatusCreated, project)
	default:
		methodNotAllowed(w)
	}
}

// handleProjectByID serves /api/project/{id}, /api/project/{id}/save,
// and /api/project/{id}/saved-content.
func (s *Server) handleProjectByID(w http.ResponseWriter, r *http.Request, user domain.User) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/project/")
	parts := strings.SplitN(rest, "/", 2)
	id := parts[0]
	if id == "" {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	if len(parts) == 2 {
		switch parts[1] {
		case "save":
			s.handleSaveDraft(w, r, user, id)
		case "saved-content":
			s.handleProjectSavedContent(w, r, user, id)
		default:
			writeError(w, http.StatusNotFound, "not found")
		}
		return
	}

	switch r.Method {
	case http.MethodGet:
		project, err := s.app.GetProject(user.ID, id)
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeData(w, http.StatusOK, project)
	case http.MethodPut:
		var req updateProjectRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		params := app.UpdateProjectParams{
			Title:      req.Title,
			Topic:      req.Topic,
			Department: req.Department,
			Domain:     req.Domain,
			Keywords:   req.Keywords,
		}
		if req.Status != nil {
			status := domain.ProjectStatus(*req.Status)
			params.Status = &status
		}
		project, err := s.app.UpdateProject(user.ID, id, params)
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeData(w, http.StatusOK, project)
	case http.MethodDelete:
		if err := s.app.DeleteProject(user.ID, id); err != nil {
			writeAppError(w, err)
			return
		}
		writeMessage(w, http.StatusOK, "project deleted", nil)
	default:
		methodNotAllowed(w)
	}
}

func (s *Server) handleSaveDraft(w http.ResponseWriter, r *http.Request, user domain.User, projectID string) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req saveDraftRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	project, err := s.app.SaveDraft(user.ID, projectID, app.SaveDraftParams{
		Chapters:    req.Chapters,
		ChatHistory: req.ChatHistory,
	})
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeMessage(w, http.StatusOK, "draft saved", project)
}

func (s *Server) handleProjectSavedContent(w http.ResponseWriter, r *http.Request, user domain.User, projectID string) {
	switch r.Method {
	case http.MethodGet:
		items, err := s.app.ListSavedContents(user.ID, &projectID)
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
		stored, err := s.app.SaveContent(user.ID, &projectID, domain.ContentCategory(req.Category), req.Content)
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeData(w, http.StatusOK, stored)
	default:
		methodNotAllowed(w)
	}
}
