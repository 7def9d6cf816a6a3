package app

import (
	"fmt"
	"strings"
	"time"

	"finalyearng/pkg/domain"
	"finalyearng/pkg/store"
)

// CreateConversationParams carries the new-conversation payload.
type CreateConversationParams struct {
	Title          string
	Type           domain.ConversationType
	ProjectID      string
	InitialMessage string
}

// CreateConversation starts a conversation, optionally linked to an
// owned project and seeded with a first user message.
func (a *App) CreateConversation(userID string, params CreateConversationParams) (domain.Conversation, error) {
	convType := params.Type
	switch convType {
	case "":
		convType = domain.ConversationGeneral
	case domain.ConversationGeneral, domain.ConversationProjectSpecific, domain.ConversationTopicGeneration:
	default:
		return domain.Conversation{}, fmt.Errorf("invalid conversation type %q", params.Type)
	}

	var projectID *string
	if strings.TrimSpace(params.ProjectID) != "" {
		project, err := a.ownedProject(userID, strings.TrimSpace(params.ProjectID))
		if err != nil {
			return domain.Conversation{}, err
		}
		projectID = &project.ID
		if params.Type == "" {
			convType = domain.ConversationProjectSpecific
		}
	}

	title := strings.TrimSpace(params.Title)
	if title == "" {
		title = "New Conversation"
	}
	now := time.Now().UTC()
	conv := domain.Conversation{
		ID:        newID(),
		UserID:    userID,
		ProjectID: projectID,
		Title:     title,
		Type:      convType,
		Status:    domain.ConversationActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := a.store.CreateConversation(conv); err != nil {
		return domain.Conversation{}, fmt.Errorf("create conversation: %w", err)
	}
	if msg := strings.TrimSpace(params.InitialMessage); msg != "" {
		updated, err := a.store.AppendConversationMessage(conv.ID, domain.ConversationMessage{
			ID:        newID(),
			Role:      "user",
			Content:   msg,
			CreatedAt: now,
		})
		if err != nil {
			return domain.Conversation{}, fmt.Errorf("append initial message: %w", err)
		}
		conv = updated
	}
	return conv, nil
}

// ListConversationsParams filters a conversation listing.
type ListConversationsParams struct {
	Type   string
	Status string
	Limit  int
	Skip   int
}

// ListConversations returns the user's conversations. Deleted
// conversations never appear unless explicitly requested by status.
func (a *App) ListConversations(userID string, params ListConversationsParams) ([]domain.Conversation, error) {
	filter := store.ConversationFilter{Limit: params.Limit, Skip: params.Skip}
	if params.Type != "" {
		filter.Type = domain.ConversationType(params.Type)
	}
	if params.Status != "" {
		filter.Status = domain.ConversationStatus(params.Status)
	}
	return a.store.ListConversationsByUser(userID, filter)
}

// ConversationWithMessages is a conversation populated with its
// message history.
type ConversationWithMessages struct {
	domain.Conversation
	Messages []domain.ConversationMessage `json:"messages"`
}

// GetConversation returns an owned conversation with its messages.
func (a *App) GetConversation(userID, conversationID string) (ConversationWithMessages, error) {
	conv, err := a.ownedConversation(userID, conversationID)
	if err != nil {
		return ConversationWithMessages{}, err
	}
	messages, err := a.store.ListConversationMessages(conv.ID)
	if err != nil {
		return ConversationWithMessages{}, fmt.Errorf("list messages: %w", err)
	}
	return ConversationWithMessages{Conversation: conv, Messages: messages}, nil
}

func (a *App) ownedConversation(userID, conversationID string) (domain.Conversation, error) {
	conv, ok, err := a.store.GetConversation(conversationID)
	if err != nil {
		return domain.Conversation{}, fmt.Errorf("fetch conversation: %w", err)
	}
	if !ok || conv.Status == domain.ConversationDeleted {
		return domain.Conversation{}, ErrNotFound
	}
	if conv.UserID != userID {
		return domain.Conversation{}, ErrForbidden
	}
	return conv, nil
}

// UpdateConversation renames a conversation and/or moves it between
// active and archived.
func (a *App) UpdateConversation(userID, conversationID string, title *string, status *string) (domain.Conversation, error) {
	conv, err := a.ownedConversation(userID, conversationID)
	if err != nil {
		return domain.Conversation{}, err
	}
	var newStatus *domain.ConversationStatus
	if status != nil {
		switch domain.ConversationStatus(*status) {
		case domain.ConversationActive:
			s := domain.ConversationActive
			newStatus = &s
		case domain.ConversationArchived:
			s := domain.ConversationArchived
			newStatus = &s
		default:
			return domain.Conversation{}, ErrInvalidStatus
		}
	}
	if title != nil && strings.TrimSpace(*title) == "" {
		title = nil
	}
	if err := a.store.UpdateConversation(conv.ID, title, newStatus); err != nil {
		return domain.Conversation{}, fmt.Errorf("update conversation: %w", err)
	}
	updated, _, err := a.store.GetConversation(conv.ID)
	if err != nil {
		return domain.Conversation{}, fmt.Errorf("fetch conversation: %w", err)
	}
	return updated, nil
}

// DeleteConversation soft-deletes a conversation.
func (a *App) DeleteConversation(userID, conversationID string) error {
	conv, err := a.ownedConversation(userID, conversationID)
	if err != nil {
		return err
	}
	deleted := domain.ConversationDeleted
	return a.store.UpdateConversation(conv.ID, nil, &deleted)
}

// AddConversationMessage appends a message to an active conversation.
func (a *App) AddConversationMessage(userID, conversationID, role, content string, metadata map[string]string) (domain.Conversation, domain.ConversationMessage, error) {
	if role != "user" && role != "assistant" && role != "system" {
		return domain.Conversation{}, domain.ConversationMessage{}, ErrInvalidRole
	}
	if strings.TrimSpace(content) == "" {
		return domain.Conversation{}, domain.ConversationMessage{}, ErrMessageRequired
	}
	conv, err := a.ownedConversation(userID, conversationID)
	if err != nil {
		return domain.Conversation{}, domain.ConversationMessage{}, err
	}
	if conv.Status != domain.ConversationActive {
		return domain.Conversation{}, domain.ConversationMessage{}, ErrConversationClosed
	}
	msg := domain.ConversationMessage{
		ID:        newID(),
		Role:      role,
		Content:   content,
		Metadata:  metadata,
		CreatedAt: time.Now().UTC(),
	}
	updated, err := a.store.AppendConversationMessage(conv.ID, msg)
	if err != nil {
		return domain.Conversation{}, domain.ConversationMessage{}, fmt.Errorf("append message: %w", err)
	}
	msg.ConversationID = conv.ID
	return updated, msg, nil
}

// ConversationStats summarizes the user's conversations.
type ConversationStats struct {
	Total         int            `json:"total"`
	Active        int            `json:"active"`
	Archived      int            `json:"archived"`
	TotalMessages int            `json:"totalMessages"`
	ByType        map[string]int `json:"byType"`
}

// GetConversationStats aggregates over the user's non-deleted
// conversations.
func (a *App) GetConversationStats(userID string) (ConversationStats, error) {
	conversations, err := a.store.ListConversationsByUser(userID, store.ConversationFilter{})
	if err != nil {
		return ConversationStats{}, fmt.Errorf("list conversations: %w", err)
	}
	stats := ConversationStats{ByType: make(map[string]int)}
	for _, c := range conversations {
		stats.Total++
		stats.TotalMessages += c.MessageCount
		stats.ByType[string(c.Type)]++
		switch c.Status {
		case domain.ConversationActive:
			stats.Active++
		case domain.ConversationArchived:
			stats.Archived++
		}
	}
	return stats, nil
}
