package store

import "finalyearng/pkg/domain"

// ConversationFilter narrows conversation listings. Deleted
// conversations are always excluded unless Status names them.
type ConversationFilter struct {
	Type   domain.ConversationType
	Status domain.ConversationStatus
	Limit  int
	Skip   int
}

// Store defines persistence operations for users, projects,
// conversations, and saved content.
type Store interface {
	// users
	SaveUser(domain.User) error
	HasUserEmail(email string) (bool, error)
	GetUserByEmail(email string) (domain.User, bool, error)
	GetUserByID(id string) (domain.User, bool, error)
	ListUsers() ([]domain.User, error)
	UserCount() (int, error)

	// projects
	SaveProject(domain.Project) error
	GetProject(id string) (domain.Project, bool, error)
	ListProjectsByUser(userID string) ([]domain.Project, error)
	LatestProjectByUser(userID string) (domain.Project, bool, error)
	DeleteProject(id string) error
	// AppendChatHistory appends a turn pair to the project's embedded
	// chat history. Concurrent appenders are not coordinated; the last
	// writer's document wins.
	AppendChatHistory(projectID string, msgs []domain.ChatMessage) error

	// conversations
	CreateConversation(domain.Conversation) error
	GetConversation(id string) (domain.Conversation, bool, error)
	ListConversationsByUser(userID string, filter ConversationFilter) ([]domain.Conversation, error)
	// UpdateConversation applies the non-nil fields.
	UpdateConversation(id string, title *string, status *domain.ConversationStatus) error
	// AppendConversationMessage inserts the message and updates the
	// conversation's message count and last-message timestamp in one
	// transaction, returning the updated conversation.
	AppendConversationMessage(conversationID string, msg domain.ConversationMessage) (domain.Conversation, error)
	ListConversationMessages(conversationID string) ([]domain.ConversationMessage, error)

	// saved content
	UpsertSavedContent(domain.SavedContent) (domain.SavedContent, error)
	ListSavedContents(userID string, projectID *string) ([]domain.SavedContent, error)
	GetSavedContent(id string) (domain.SavedContent, bool, error)
	DeleteSavedContent(id string) error
}

// SessionStore issues and validates session tokens.
type SessionStore interface {
	NewSession(userID string) (string, error)
	GetUserIDByToken(token string) (string, bool, error)
}
