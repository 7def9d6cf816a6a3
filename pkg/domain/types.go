package domain

import "time"

type UserRole string

const (
	RoleUser  UserRole = "user"
	RoleAdmin UserRole = "admin"
)

type UserStatus string

const (
	StatusActive   UserStatus = "active"
	StatusDisabled UserStatus = "disabled"
)

type ProjectStatus string

const (
	ProjectDraft      ProjectStatus = "draft"
	ProjectInProgress ProjectStatus = "in-progress"
	ProjectCompleted  ProjectStatus = "completed"
)

type ChapterPlanStatus string

const (
	PlanNotStarted ChapterPlanStatus = "not-started"
	PlanInProgress ChapterPlanStatus = "in-progress"
	PlanCompleted  ChapterPlanStatus = "completed"
)

type ConversationType string

const (
	ConversationGeneral         ConversationType = "general"
	ConversationProjectSpecific ConversationType = "project_specific"
	ConversationTopicGeneration ConversationType = "topic_generation"
)

type ConversationStatus string

const (
	ConversationActive   ConversationStatus = "active"
	ConversationArchived ConversationStatus = "archived"
	ConversationDeleted  ConversationStatus = "deleted"
)

// ContentCategory names the slot a saved artifact is filed under.
type ContentCategory string

const (
	CategoryPreliminary ContentCategory = "Preliminary"
	CategoryChapter1    ContentCategory = "Chapter 1"
	CategoryChapter2    ContentCategory = "Chapter 2"
	CategoryChapter3    ContentCategory = "Chapter 3"
	CategoryChapter4    ContentCategory = "Chapter 4"
	CategoryChapter5    ContentCategory = "Chapter 5"
	CategoryReference   ContentCategory = "Reference"
)

// ValidContentCategory reports whether c is one of the fixed categories.
func ValidContentCategory(c ContentCategory) bool {
	switch c {
	case CategoryPreliminary, CategoryChapter1, CategoryChapter2,
		CategoryChapter3, CategoryChapter4, CategoryChapter5, CategoryReference:
		return true
	default:
		return false
	}
}

type User struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	Role         UserRole   `json:"role"`
	Status       UserStatus `json:"status"`
	University   string     `json:"university,omitempty"`
	Faculty      string     `json:"faculty,omitempty"`
	Department   string     `json:"department,omitempty"`
	Degree       string     `json:"degree,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// Chapter is one of the five drafted sections of a project document.
type Chapter struct {
	ChapterNumber int       `json:"chapterNumber"`
	Title         string    `json:"title"`
	Content       string    `json:"content"`
	WordCount     int       `json:"wordCount"`
	LastModified  time.Time `json:"lastModified"`
}

// ChapterPlan is the per-chapter entry of a generated outline.
type ChapterPlan struct {
	ChapterNumber int               `json:"chapterNumber"`
	Title         string            `json:"title"`
	Summary       string            `json:"summary"`
	Status        ChapterPlanStatus `json:"status"`
}

// Outline is the high-level chapter 1-5 plan generated once per project.
// It is replaced wholesale on regeneration, never merged.
type Outline struct {
	GeneratedAt time.Time     `json:"generatedAt"`
	Overview    string        `json:"overview"`
	Chapters    []ChapterPlan `json:"chapters"`
}

// ChatMessage is one immutable turn in a project's chat history.
// ChapterNumber 0 tags whole-project chat, 1-5 chapter-specific chat.
type ChatMessage struct {
	Role          string    `json:"role"`
	Content       string    `json:"content"`
	ChapterNumber int       `json:"chapterNumber"`
	Timestamp     time.Time `json:"timestamp"`
}

type Project struct {
	ID             string        `json:"id"`
	UserID         string        `json:"userId"`
	Title          string        `json:"title"`
	Topic          string        `json:"topic"`
	Department     string        `json:"department"`
	Domain         string        `json:"domain,omitempty"`
	Keywords       []string      `json:"keywords"`
	Chapters       []Chapter     `json:"chapters"`
	Outline        *Outline      `json:"outline,omitempty"`
	ChatHistory    []ChatMessage `json:"chatHistory"`
	Status         ProjectStatus `json:"status"`
	TotalWordCount int           `json:"totalWordCount"`
	LastSaved      time.Time     `json:"lastSaved"`
	CreatedAt      time.Time     `json:"createdAt"`
	UpdatedAt      time.Time     `json:"updatedAt"`
}

// RecalculateWordCount recomputes the derived total from chapter counts.
// Must be called after every chapter mutation.
func (p *Project) RecalculateWordCount() {
	total := 0
	for _, ch := range p.Chapters {
		total += ch.WordCount
	}
	p.TotalWordCount = total
}

type Conversation struct {
	ID            string             `json:"id"`
	UserID        string             `json:"userId"`
	ProjectID     *string            `json:"projectId,omitempty"`
	Title         string             `json:"title"`
	Type          ConversationType   `json:"type"`
	Status        ConversationStatus `json:"status"`
	MessageCount  int                `json:"messageCount"`
	LastMessageAt *time.Time         `json:"lastMessageAt,omitempty"`
	CreatedAt     time.Time          `json:"createdAt"`
	UpdatedAt     time.Time          `json:"updatedAt"`
}

// ConversationMessage is one stored turn of a standalone conversation.
type ConversationMessage struct {
	ID             string            `json:"id"`
	ConversationID string            `json:"conversationId"`
	Role           string            `json:"role"`
	Content        string            `json:"content"`
	Metadata       map[string]string `json:"metadata,omitempty"`
	CreatedAt      time.Time         `json:"createdAt"`
}

// SavedContent is a standalone saved artifact. At most one exists per
// (user, project-or-none, category); saving again overwrites.
type SavedContent struct {
	ID           string          `json:"id"`
	UserID       string          `json:"userId"`
	ProjectID    *string         `json:"projectId,omitempty"`
	Category     ContentCategory `json:"category"`
	Content      string          `json:"content"`
	CreatedAt    time.Time       `json:"createdAt"`
	LastModified time.Time       `json:"lastModified"`
}
