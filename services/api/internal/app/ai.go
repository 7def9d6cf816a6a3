package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"finalyearng/pkg/ai"
	"finalyearng/pkg/domain"
)

// GenerateTopics produces project topic suggestions. The caller's
// profile department fills in when the request omits one.
func (a *App) GenerateTopics(ctx context.Context, user domain.User, params ai.TopicParams) ([]ai.Topic, error) {
	if strings.TrimSpace(params.Department) == "" {
		params.Department = user.Department
	}
	return a.ai.GenerateTopics(ctx, params)
}

// ChapterResult is a generated chapter plus its derived word count.
type ChapterResult struct {
	Content       string `json:"content"`
	WordCount     int    `json:"wordCount"`
	ChapterNumber int    `json:"chapterNumber"`
	Title         string `json:"title"`
}

// GenerateChapter produces one chapter of the project document.
func (a *App) GenerateChapter(ctx context.Context, params ai.ChapterParams) (ChapterResult, error) {
	if strings.TrimSpace(params.Topic) == "" {
		return ChapterResult{}, ErrTopicRequired
	}
	content, err := a.ai.GenerateChapter(ctx, params)
	if err != nil {
		return ChapterResult{}, err
	}
	title, _ := ai.ChapterTitle(params.ChapterNumber)
	return ChapterResult{
		Content:       content,
		WordCount:     countWords(content),
		ChapterNumber: params.ChapterNumber,
		Title:         title,
	}, nil
}

// GeneratePreliminaryPages produces the document front matter. Profile
// fields fill in anything the request leaves blank.
func (a *App) GeneratePreliminaryPages(ctx context.Context, user domain.User, params ai.PreliminaryParams) (string, error) {
	if strings.TrimSpace(params.Topic) == "" {
		return "", ErrTopicRequired
	}
	if params.Name == "" {
		params.Name = user.Name
	}
	if params.Department == "" {
		params.Department = user.Department
	}
	if params.Faculty == "" {
		params.Faculty = user.Faculty
	}
	if params.University == "" {
		params.University = user.University
	}
	if params.Degree == "" {
		params.Degree = user.Degree
	}
	return a.ai.GeneratePreliminaryPages(ctx, params)
}

// GenerateOutline builds the chapter 1-5 plan for an owned project and
// replaces any previous outline wholesale.
func (a *App) GenerateOutline(ctx context.Context, userID, projectID string) (domain.Outline, error) {
	project, err := a.ownedProject(userID, projectID)
	if err != nil {
		return domain.Outline{}, err
	}
	plan, err := a.ai.GenerateOutline(ctx, project.Topic, project.Department)
	if err != nil {
		return domain.Outline{}, err
	}
	outline := domain.Outline{
		GeneratedAt: time.Now().UTC(),
		Overview:    plan.Overview,
		Chapters:    make([]domain.ChapterPlan, 0, len(plan.Chapters)),
	}
	for _, ch := range plan.Chapters {
		outline.Chapters = append(outline.Chapters, domain.ChapterPlan{
			ChapterNumber: ch.ChapterNumber,
			Title:         ch.Title,
			Summary:       ch.Summary,
			Status:        domain.PlanNotStarted,
		})
	}
	project.Outline = &outline
	project.UpdatedAt = time.Now().UTC()
	if err := a.store.SaveProject(project); err != nil {
		return domain.Outline{}, fmt.Errorf("save project: %w", err)
	}
	return outline, nil
}

// ChatParams carries one conversational turn. Context is caller-supplied
// free text appended to the assembled student context. ChapterNumber tags
// the persisted turn pair when the caller is chatting about a specific
// chapter.
type ChatParams struct {
	ProjectID     string
	Message       string
	Context       string
	ChapterNumber int
	History       []ai.Message
}

// ChatResult is the routed response of one conversational turn.
type ChatResult struct {
	Response      string `json:"response"`
	ChapterNumber int    `json:"chapterNumber"`
	ProjectID     string `json:"projectId,omitempty"`
	WordCount     int    `json:"wordCount,omitempty"`
}

// Chat routes one conversational turn. A message that asks for a
// chapter by number is redirected to chapter generation against the
// resolved project; everything else is answered as project review
// chat. The turn pair is persisted to the project's chat history on a
// best-effort basis: the response is returned even when persistence
// fails.
func (a *App) Chat(ctx context.Context, user domain.User, params ChatParams) (ChatResult, error) {
	message := strings.TrimSpace(params.Message)
	if message == "" {
		return ChatResult{}, ErrMessageRequired
	}

	project, hasProject, err := a.resolveChatProject(user.ID, params.ProjectID)
	if err != nil {
		return ChatResult{}, err
	}

	if n, ok := ai.DetectChapterIntent(message); ok && hasProject {
		content, err := a.ai.GenerateChapter(ctx, ai.ChapterParams{
			Topic:         project.Topic,
			ChapterNumber: n,
			Department:    project.Department,
		})
		if err != nil {
			return ChatResult{}, err
		}
		a.persistChatTurn(project.ID, message, content, n)
		return ChatResult{
			Response:      content,
			ChapterNumber: n,
			ProjectID:     project.ID,
			WordCount:     countWords(content),
		}, nil
	}

	profile := ai.ProfileContext{
		University: user.University,
		Faculty:    user.Faculty,
		Department: user.Department,
	}
	extra := strings.TrimSpace(params.Context)
	var contextText string
	if hasProject {
		contextText = ai.AssembleContext(profile, project.Topic, project.Department, extra)
	} else {
		contextText = ai.AssembleContext(profile, "", "", extra)
	}

	conversation := append(append([]ai.Message{}, params.History...), ai.Message{Role: "user", Content: message})
	response, err := a.ai.ChatReview(ctx, conversation, contextText)
	if err != nil {
		return ChatResult{}, err
	}
	result := ChatResult{Response: response}
	if hasProject {
		result.ProjectID = project.ID
		a.persistChatTurn(project.ID, message, response, chapterTag(params.ChapterNumber))
	}
	return result, nil
}

// chapterTag keeps persisted chapter tags inside the 0..5 range used by
// chat history entries. Anything else means "no specific chapter".
func chapterTag(n int) int {
	if n < 0 || n > 5 {
		return 0
	}
	return n
}

// resolveChatProject picks the project a chat turn applies to: an
// explicit ID must be owned by the caller, otherwise the most recently
// updated project is used, otherwise the chat runs without one.
func (a *App) resolveChatProject(userID, projectID string) (domain.Project, bool, error) {
	if strings.TrimSpace(projectID) != "" {
		project, err := a.ownedProject(userID, projectID)
		if err != nil {
			return domain.Project{}, false, err
		}
		return project, true, nil
	}
	project, ok, err := a.store.LatestProjectByUser(userID)
	if err != nil {
		return domain.Project{}, false, fmt.Errorf("fetch latest project: %w", err)
	}
	return project, ok, nil
}

func (a *App) persistChatTurn(projectID, userMessage, assistantMessage string, chapterNumber int) {
	now := time.Now().UTC()
	err := a.store.AppendChatHistory(projectID, []domain.ChatMessage{
		{Role: "user", Content: userMessage, ChapterNumber: chapterNumber, Timestamp: now},
		{Role: "assistant", Content: assistantMessage, ChapterNumber: chapterNumber, Timestamp: now},
	})
	if err != nil {
		slog.Warn("persist chat turn failed", "project_id", projectID, "err", err)
	}
}

// ChatTopicGeneration answers a topic brainstorming conversation with
// the caller's academic profile as context.
func (a *App) ChatTopicGeneration(ctx context.Context, user domain.User, messages []ai.Message) (string, error) {
	if len(messages) == 0 {
		return "", ErrMessageRequired
	}
	return a.ai.ChatTopicGeneration(ctx, messages, ai.UserContext{
		University: user.University,
		Faculty:    user.Faculty,
		Department: user.Department,
	})
}

// ModelInfo describes a selectable generation model.
type ModelInfo struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Models returns the fixed list of generation models the client may
// request.
func (a *App) Models() []ModelInfo {
	return []ModelInfo{
		{ID: "gemini-flash-latest", Name: "Gemini Flash", Description: "Fast drafting model for chapters and chat"},
		{ID: "gemini-pro-latest", Name: "Gemini Pro", Description: "Higher quality model for final drafts"},
	}
}
