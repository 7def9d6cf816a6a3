package store

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"

	"finalyearng/pkg/domain"
)

type userModel struct {
	ID           string `gorm:"primaryKey"`
	Name         string `gorm:"not null"`
	Email        string `gorm:"uniqueIndex;not null"`
	PasswordHash string `gorm:"not null"`
	Role         string `gorm:"not null"`
	Status       string `gorm:"not null"`
	University   string
	Faculty      string
	Department   string
	Degree       string
	CreatedAt    time.Time `gorm:"not null"`
	UpdatedAt    time.Time `gorm:"not null"`
}

func (userModel) TableName() string { return "users" }

// projectModel keeps chapters, outline, and chat history as jsonb
// documents on the project row, mirroring the shape the client reads
// and writes as a unit.
type projectModel struct {
	ID             string `gorm:"primaryKey"`
	UserID         string `gorm:"index;not null"`
	Title          string `gorm:"not null"`
	Topic          string `gorm:"not null"`
	Department     string `gorm:"not null"`
	Domain         string
	Keywords       datatypes.JSON `gorm:"type:jsonb"`
	Chapters       datatypes.JSON `gorm:"type:jsonb"`
	Outline        datatypes.JSON `gorm:"type:jsonb"`
	ChatHistory    datatypes.JSON `gorm:"type:jsonb"`
	Status         string         `gorm:"not null"`
	TotalWordCount int            `gorm:"not null"`
	LastSaved      time.Time
	CreatedAt      time.Time `gorm:"not null"`
	UpdatedAt      time.Time `gorm:"index;not null"`
}

func (projectModel) TableName() string { return "projects" }

type conversationModel struct {
	ID            string `gorm:"primaryKey"`
	UserID        string `gorm:"index;not null"`
	ProjectID     *string
	Title         string `gorm:"not null"`
	Type          string `gorm:"not null"`
	Status        string `gorm:"index;not null"`
	MessageCount  int    `gorm:"not null"`
	LastMessageAt *time.Time
	CreatedAt     time.Time `gorm:"not null"`
	UpdatedAt     time.Time `gorm:"not null"`
}

func (conversationModel) TableName() string { return "conversations" }

type conversationMessageModel struct {
	ID             string `gorm:"primaryKey"`
	ConversationID string `gorm:"index;not null"`
	Role           string `gorm:"not null"`
	Content        string `gorm:"type:text;not null"`
	Metadata       datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt      time.Time `gorm:"index;not null"`
}

func (conversationMessageModel) TableName() string { return "conversation_messages" }

// savedContentModel stores an empty project id for standalone content
// so the (user, project, category) slot stays unique under the index.
type savedContentModel struct {
	ID           string `gorm:"primaryKey"`
	UserID       string `gorm:"not null;uniqueIndex:idx_saved_content_slot"`
	ProjectID    string `gorm:"uniqueIndex:idx_saved_content_slot"`
	Category     string `gorm:"not null;uniqueIndex:idx_saved_content_slot"`
	Content      string `gorm:"type:text;not null"`
	CreatedAt    time.Time `gorm:"not null"`
	LastModified time.Time `gorm:"not null"`
}

func (savedContentModel) TableName() string { return "saved_contents" }

func toUserModel(u domain.User) userModel {
	return userModel{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Role:         string(u.Role),
		Status:       string(u.Status),
		University:   u.University,
		Faculty:      u.Faculty,
		Department:   u.Department,
		Degree:       u.Degree,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func fromUserModel(m userModel) domain.User {
	return domain.User{
		ID:           m.ID,
		Name:         m.Name,
		Email:        m.Email,
		PasswordHash: m.PasswordHash,
		Role:         domain.UserRole(m.Role),
		Status:       domain.UserStatus(m.Status),
		University:   m.University,
		Faculty:      m.Faculty,
		Department:   m.Department,
		Degree:       m.Degree,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

func marshalDoc(v any) (datatypes.JSON, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal document: %w", err)
	}
	return datatypes.JSON(b), nil
}

func unmarshalDoc(raw datatypes.JSON, v any) error {
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("unmarshal document: %w", err)
	}
	return nil
}

func toProjectModel(p domain.Project) (projectModel, error) {
	m := projectModel{
		ID:             p.ID,
		UserID:         p.UserID,
		Title:          p.Title,
		Topic:          p.Topic,
		Department:     p.Department,
		Domain:         p.Domain,
		Status:         string(p.Status),
		TotalWordCount: p.TotalWordCount,
		LastSaved:      p.LastSaved,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
	var err error
	if m.Keywords, err = marshalDoc(p.Keywords); err != nil {
		return projectModel{}, err
	}
	if m.Chapters, err = marshalDoc(p.Chapters); err != nil {
		return projectModel{}, err
	}
	if m.Outline, err = marshalDoc(p.Outline); err != nil {
		return projectModel{}, err
	}
	if m.ChatHistory, err = marshalDoc(p.ChatHistory); err != nil {
		return projectModel{}, err
	}
	return m, nil
}

func fromProjectModel(m projectModel) (domain.Project, error) {
	p := domain.Project{
		ID:             m.ID,
		UserID:         m.UserID,
		Title:          m.Title,
		Topic:          m.Topic,
		Department:     m.Department,
		Domain:         m.Domain,
		Status:         domain.ProjectStatus(m.Status),
		TotalWordCount: m.TotalWordCount,
		LastSaved:      m.LastSaved,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
	if err := unmarshalDoc(m.Keywords, &p.Keywords); err != nil {
		return domain.Project{}, err
	}
	if err := unmarshalDoc(m.Chapters, &p.Chapters); err != nil {
		return domain.Project{}, err
	}
	if err := unmarshalDoc(m.Outline, &p.Outline); err != nil {
		return domain.Project{}, err
	}
	if err := unmarshalDoc(m.ChatHistory, &p.ChatHistory); err != nil {
		return domain.Project{}, err
	}
	return p, nil
}

func toConversationModel(c domain.Conversation) conversationModel {
	return conversationModel{
		ID:            c.ID,
		UserID:        c.UserID,
		ProjectID:     c.ProjectID,
		Title:         c.Title,
		Type:          string(c.Type),
		Status:        string(c.Status),
		MessageCount:  c.MessageCount,
		LastMessageAt: c.LastMessageAt,
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	}
}

func fromConversationModel(m conversationModel) domain.Conversation {
	return domain.Conversation{
		ID:            m.ID,
		UserID:        m.UserID,
		ProjectID:     m.ProjectID,
		Title:         m.Title,
		Type:          domain.ConversationType(m.Type),
		Status:        domain.ConversationStatus(m.Status),
		MessageCount:  m.MessageCount,
		LastMessageAt: m.LastMessageAt,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

func toConversationMessageModel(msg domain.ConversationMessage) (conversationMessageModel, error) {
	m := conversationMessageModel{
		ID:             msg.ID,
		ConversationID: msg.ConversationID,
		Role:           msg.Role,
		Content:        msg.Content,
		CreatedAt:      msg.CreatedAt,
	}
	if msg.Metadata != nil {
		var err error
		if m.Metadata, err = marshalDoc(msg.Metadata); err != nil {
			return conversationMessageModel{}, err
		}
	}
	return m, nil
}

func fromConversationMessageModel(m conversationMessageModel) (domain.ConversationMessage, error) {
	msg := domain.ConversationMessage{
		ID:             m.ID,
		ConversationID: m.ConversationID,
		Role:           m.Role,
		Content:        m.Content,
		CreatedAt:      m.CreatedAt,
	}
	if err := unmarshalDoc(m.Metadata, &msg.Metadata); err != nil {
		return domain.ConversationMessage{}, err
	}
	return msg, nil
}

func toSavedContentModel(s domain.SavedContent) savedContentModel {
	m := savedContentModel{
		ID:           s.ID,
		UserID:       s.UserID,
		Category:     string(s.Category),
		Content:      s.Content,
		CreatedAt:    s.CreatedAt,
		LastModified: s.LastModified,
	}
	if s.ProjectID != nil {
		m.ProjectID = *s.ProjectID
	}
	return m
}

func fromSavedContentModel(m savedContentModel) domain.SavedContent {
	s := domain.SavedContent{
		ID:           m.ID,
		UserID:       m.UserID,
		Category:     domain.ContentCategory(m.Category),
		Content:      m.Content,
		CreatedAt:    m.CreatedAt,
		LastModified: m.LastModified,
	}
	if m.ProjectID != "" {
		pid := m.ProjectID
		s.ProjectID = &pid
	}
	return s
}
