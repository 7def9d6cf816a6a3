package server

import (
	"net/http"

	"finalyearng/pkg/ai"
	"finalyearng/pkg/domain"
	"finalyearng/services/api/internal/app"
)

type topicsRequest struct {
	Department string   `json:"department"`
	Domain     string   `json:"domain"`
	Keywords   []string `json:"keywords"`
	Count      int      `json:"count"`
}

type generateChapterRequest struct {
	Topic           string `json:"topic"`
	ChapterNumber   int    `json:"chapterNumber"`
	Department      string `json:"department"`
	ExistingContent string `json:"existingContent"`
}

type preliminaryRequest struct {
	Topic      string `json:"topic"`
	Name       string `json:"name"`
	Department string `json:"department"`
	Faculty    string `json:"faculty"`
	University string `json:"university"`
	Degree     string `json:"degree"`
}

type outlineRequest struct {
	ProjectID string `json:"projectId"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	ProjectID     string        `json:"projectId"`
	Message       string        `json:"message"`
	Context       string        `json:"context"`
	ChapterNumber int           `json:"chapterNumber"`
	History       []chatMessage `json:"history"`
}

type topicChatRequest struct {
	Messages []chatMessage `json:"messages"`
}

func toAIMessages(msgs []chatMessage) []ai.Message {
	out := make([]ai.Message, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, ai.Message{Role: m.Role, Content: m.Content})
	}
	return out
}

func (s *Server) handleAITopics(w http.ResponseWriter, r *http.Request, user domain.User) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	if !s.allowRate(w, r, s.aiLimiter, "too many AI requests") {
		return
	}
	var req topicsRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	topics, err := s.app.GenerateTopics(r.Context(), user, ai.TopicParams{
		Department: req.Department,
		Domain:     req.Domain,
		Keywords:   req.Keywords,
		Count:      req.Count,
	})
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeData(w, http.StatusOK, map[string]any{"topics": topics, "count": len(topics)})
}

func (s *Server) handleAIGenerate(w http.ResponseWriter, r *http.Request, _ domain.User) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	if !s.allowRate(w, r, s.aiLimiter, "too many AI requests") {
		return
	}
	var req generateChapterRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	result, err := s.app.GenerateChapter(r.Context(), ai.ChapterParams{
		Topic:           req.Topic,
		ChapterNumber:   req.ChapterNumber,
		Department:      req.Department,
		ExistingContent: req.ExistingContent,
	})
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeData(w, http.StatusOK, result)
}

func (s *Server) handleAIPreliminary(w http.ResponseWriter, r *http.Request, user domain.User) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	if !s.allowRate(w, r, s.aiLimiter, "too many AI requests") {
		return
	}
	var req preliminaryRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	content, err := s.app.GeneratePreliminaryPages(r.Context(), user, ai.PreliminaryParams{
		Topic:      req.Topic,
		Name:       req.Name,
		Department: req.Department,
		Faculty:    req.Faculty,
		University: req.University,
		Degree:     req.Degree,
	})
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeData(w, http.StatusOK, map[string]string{"content": content})
}

func (s *Server) handleAIOutline(w http.ResponseWriter, r *http.Request, user domain.User) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	if !s.allowRate(w, r, s.aiLimiter, "too many AI requests") {
		return
	}
	var req outlineRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	outline, err := s.app.GenerateOutline(r.Context(), user.ID, req.ProjectID)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeData(w, http.StatusOK, outline)
}

func (s *Server) handleAIChat(w http.ResponseWriter, r *http.Request, user domain.User) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	if !s.allowRate(w, r, s.aiLimiter, "too many AI requests") {
		return
	}
	var req chatRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	result, err := s.app.Chat(r.Context(), user, app.ChatParams{
		ProjectID:     req.ProjectID,
		Message:       req.Message,
		Context:       req.Context,
		ChapterNumber: req.ChapterNumber,
		History:       toAIMessages(req.History),
	})
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeData(w, http.StatusOK, result)
}

func (s *Server) handleAITopicChat(w http.ResponseWriter, r *http.Request, user domain.User) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	if !s.allowRate(w, r, s.aiLimiter, "too many AI requests") {
		return
	}
	var req topicChatRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	response, err := s.app.ChatTopicGeneration(r.Context(), user, toAIMessages(req.Messages))
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeData(w, http.StatusOK, map[string]string{"response": response})
}

func (s *Server) handleAIModels(w http.ResponseWriter, r *http.Request, _ domain.User) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	models := s.app.Models()
	writeData(w, http.StatusOK, map[string]any{"models": models, "count": len(models)})
}
