package app

import (
	"fmt"
	"strings"
	"time"

	"finalyearng/pkg/domain"
)

// CreateProjectParams carries the fields a student supplies when
// starting a project.
type CreateProjectParams struct {
	Title      string
	Topic      string
	Department string
	Domain     string
	Keywords   []string
}

// CreateProject starts a new draft project for the user.
func (a *App) CreateProject(userID string, params CreateProjectParams) (domain.Project, error) {
	topic := strings.TrimSpace(params.Topic)
	if topic == "" {
		return domain.Project{}, ErrTopicRequired
	}
	department := strings.TrimSpace(params.Department)
	if department == "" {
		return domain.Project{}, ErrDepartmentRequired
	}
	title := strings.TrimSpace(params.Title)
	if title == "" {
		title = topic
	}
	now := time.Now().UTC()
	project := domain.Project{
		ID:         newID(),
		UserID:     userID,
		Title:      title,
		Topic:      topic,
		Department: department,
		Domain:     strings.TrimSpace(params.Domain),
		Keywords:   params.Keywords,
		Status:     domain.ProjectDraft,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := a.store.SaveProject(project); err != nil {
		return domain.Project{}, fmt.Errorf("save project: %w", err)
	}
	return project, nil
}

// ListProjects returns the user's projects, most recently updated
// first.
func (a *App) ListProjects(userID string) ([]domain.Project, error) {
	return a.store.ListProjectsByUser(userID)
}

// GetProject returns a project owned by the user.
func (a *App) GetProject(userID, projectID string) (domain.Project, error) {
	return a.ownedProject(userID, projectID)
}

func (a *App) ownedProject(userID, projectID string) (domain.Project, error) {
	project, ok, err := a.store.GetProject(projectID)
	if err != nil {
		return domain.Project{}, fmt.Errorf("fetch project: %w", err)
	}
	if !ok {
		return domain.Project{}, ErrNotFound
	}
	if project.UserID != userID {
		return domain.Project{}, ErrForbidden
	}
	return project, nil
}

// UpdateProjectParams lists the mutable project fields. Nil means
// leave unchanged.
type UpdateProjectParams struct {
	Title      *string
	Topic      *string
	Department *string
	Domain     *string
	Keywords   []string
	Status     *domain.ProjectStatus
}

// UpdateProject applies the allowed field updates to an owned project.
func (a *App) UpdateProject(userID, projectID string, params UpdateProjectParams) (domain.Project, error) {
	project, err := a.ownedProject(userID, projectID)
	if err != nil {
		return domain.Project{}, err
	}
	if params.Title != nil && strings.TrimSpace(*params.Title) != "" {
		project.Title = strings.TrimSpace(*params.Title)
	}
	if params.Topic != nil && strings.TrimSpace(*params.Topic) != "" {
		project.Topic = strings.TrimSpace(*params.Topic)
	}
	if params.Department != nil && strings.TrimSpace(*params.Department) != "" {
		project.Department = strings.TrimSpace(*params.Department)
	}
	if params.Domain != nil {
		project.Domain = strings.TrimSpace(*params.Domain)
	}
	if params.Keywords != nil {
		project.Keywords = params.Keywords
	}
	if params.Status != nil {
		switch *params.Status {
		case domain.ProjectDraft, domain.ProjectInProgress, domain.ProjectCompleted:
			project.Status = *params.Status
		default:
			return domain.Project{}, fmt.Errorf("invalid project status %q", *params.Status)
		}
	}
	project.UpdatedAt = time.Now().UTC()
	if err := a.store.SaveProject(project); err != nil {
		return domain.Project{}, fmt.Errorf("save project: %w", err)
	}
	return project, nil
}

// DeleteProject removes an owned project permanently.
func (a *App) DeleteProject(userID, projectID string) error {
	if _, err := a.ownedProject(userID, projectID); err != nil {
		return err
	}
	return a.store.DeleteProject(projectID)
}

// SaveDraftParams carries the document state the client flushes on
// save. Nil slices leave the stored state unchanged.
type SaveDraftParams struct {
	Chapters    []domain.Chapter
	ChatHistory []domain.ChatMessage
}

// SaveDraft replaces the project's chapters and/or chat history and
// recomputes the derived word count.
func (a *App) SaveDraft(userID, projectID string, params SaveDraftParams) (domain.Project, error) {
	project, err := a.ownedProject(userID, projectID)
	if err != nil {
		return domain.Project{}, err
	}
	now := time.Now().UTC()
	if params.Chapters != nil {
		for i := range params.Chapters {
			if params.Chapters[i].WordCount == 0 {
				params.Chapters[i].WordCount = countWords(params.Chapters[i].Content)
			}
			if params.Chapters[i].LastModified.IsZero() {
				params.Chapters[i].LastModified = now
			}
		}
		project.Chapters = params.Chapters
	}
	if params.ChatHistory != nil {
		project.ChatHistory = params.ChatHistory
	}
	project.RecalculateWordCount()
	if project.Status == domain.ProjectDraft && len(project.Chapters) > 0 {
		project.Status = domain.ProjectInProgress
	}
	project.LastSaved = now
	project.UpdatedAt = now
	if err := a.store.SaveProject(project); err != nil {
		return domain.Project{}, fmt.Errorf("save project: %w", err)
	}
	return project, nil
}

func countWords(text string) int {
	return len(strings.Fields(text))
}
