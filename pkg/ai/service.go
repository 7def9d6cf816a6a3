package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// Canonical chapter titles for a five-chapter Nigerian final year project.
var chapterTitles = map[int]string{
	1: "Introduction",
	2: "Literature Review",
	3: "Methodology",
	4: "Results and Analysis",
	5: "Conclusion and Recommendations",
}

// ChapterTitle returns the canonical title for a chapter number 1-5.
func ChapterTitle(n int) (string, bool) {
	title, ok := chapterTitles[n]
	return title, ok
}

// Service builds task-specific prompts and drives the Gemini client.
type Service struct {
	client *GeminiClient
}

// NewService wires the task formatters to a client.
func NewService(client *GeminiClient) *Service {
	return &Service{client: client}
}

// Topic is one generated project topic suggestion.
type Topic struct {
	Title       string   `json:"title"`
	Department  string   `json:"department"`
	Domain      string   `json:"domain"`
	Keywords    []string `json:"keywords"`
	Description string   `json:"description"`
}

// TopicParams configures topic generation.
type TopicParams struct {
	Department string
	Domain     string
	Keywords   []string
	Count      int
}

// GenerateTopics asks the model for Count unique topics and parses the
// strict JSON array it was instructed to return. A response that is not
// valid JSON surfaces ErrUnparsableTopics; no fabricated or empty
// result is ever produced from unparsable text.
func (s *Service) GenerateTopics(ctx context.Context, params TopicParams) ([]Topic, error) {
	if strings.TrimSpace(params.Department) == "" {
		return nil, fmt.Errorf("department is required")
	}
	if params.Domain == "" {
		params.Domain = "General"
	}
	if params.Count <= 0 {
		params.Count = 5
	}

	prompt := buildTopicsPrompt(params)
	response, err := s.client.Invoke(ctx, "", []Message{{Role: "user", Content: prompt}}, TaskTopicGeneration)
	if err != nil {
		return nil, err
	}

	var topics []Topic
	if err := json.Unmarshal([]byte(response), &topics); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnparsableTopics, err)
	}
	return topics, nil
}

func buildTopicsPrompt(params TopicParams) string {
	return fmt.Sprintf(`Generate %d unique final year project topics for %s department.
Focus area: %s
Keywords: %s
Return as JSON array only.`,
		params.Count, params.Department, params.Domain, strings.Join(params.Keywords, ", "))
}

// ChapterParams configures chapter generation.
type ChapterParams struct {
	Topic           string
	ChapterNumber   int
	Department      string
	ExistingContent string
}

// GenerateChapter produces the full text of one chapter. Chapter numbers
// outside 1-5 are rejected before any outbound call.
func (s *Service) GenerateChapter(ctx context.Context, params ChapterParams) (string, error) {
	title, ok := ChapterTitle(params.ChapterNumber)
	if !ok {
		return "", fmt.Errorf("chapter number must be between 1 and 5")
	}
	prompt := buildChapterPrompt(params, title)
	return s.client.Invoke(ctx, "", []Message{{Role: "user", Content: prompt}}, TaskChapterGeneration)
}

func buildChapterPrompt(params ChapterParams, title string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Generate Chapter %d: %s for the project: %q\n", params.ChapterNumber, title, params.Topic)
	fmt.Fprintf(&sb, "Department: %s\n", params.Department)
	if params.ExistingContent != "" {
		fmt.Fprintf(&sb, "Existing content to build upon (do not discard it): %s\n", params.ExistingContent)
	}
	sb.WriteString(`
Structure the chapter as follows:
- Chapter title
- Introduction to the chapter
- Numbered subsections covering the chapter topic in depth
- Conclusion of the chapter
- A References section as the final section of the chapter, containing 5 to 10 citations in APA style

The References section is mandatory and must come last.
Generate comprehensive academic content following Nigerian university standards.`)
	return sb.String()
}

// PreliminaryParams configures preliminary pages generation.
type PreliminaryParams struct {
	Topic      string
	Name       string
	Department string
	Faculty    string
	University string
	Degree     string
}

// GeneratePreliminaryPages produces the front matter of the project
// document in a fixed section order.
func (s *Service) GeneratePreliminaryPages(ctx context.Context, params PreliminaryParams) (string, error) {
	if strings.TrimSpace(params.Topic) == "" {
		return "", fmt.Errorf("topic is required")
	}
	prompt := buildPreliminaryPrompt(params)
	return s.client.Invoke(ctx, "", []Message{{Role: "user", Content: prompt}}, TaskPreliminaryPages)
}

func buildPreliminaryPrompt(params PreliminaryParams) string {
	return fmt.Sprintf(`Generate the preliminary pages for the final year project: %q

Student name: %s
Department: %s
Faculty: %s
University: %s
Degree: %s

Produce the following sections, in this exact order, each with a CAPITALIZED heading:
1. Title page
2. Certification
3. Dedication
4. Acknowledgements
5. Abstract (200-250 words)
6. Table of contents
7. List of tables
8. List of figures

Plain text only.`,
		params.Topic, params.Name, params.Department, params.Faculty, params.University, params.Degree)
}

// ChatReview answers a review/edit conversation. The context string is
// prefixed onto every message so the model re-sees it on every turn; no
// model-side memory is assumed.
func (s *Service) ChatReview(ctx context.Context, messages []Message, contextText string) (string, error) {
	contextPrefix := "User question:"
	if strings.TrimSpace(contextText) != "" {
		contextPrefix = fmt.Sprintf("Current project context: %s\n\nUser question:", contextText)
	}
	formatted := make([]Message, 0, len(messages))
	for _, m := range messages {
		formatted = append(formatted, Message{
			Role:    m.Role,
			Content: contextPrefix + " " + m.Content,
		})
	}
	return s.client.Invoke(ctx, "", formatted, TaskChatReview)
}

// UserContext carries the academic profile injected into topic
// generation chats.
type UserContext struct {
	University string
	Faculty    string
	Department string
}

// ChatTopicGeneration answers a topic-generation conversation. Any
// caller-supplied system messages are stripped, and the user context
// block is prepended to the first user message only.
func (s *Service) ChatTopicGeneration(ctx context.Context, messages []Message, userCtx UserContext) (string, error) {
	conversation := make([]Message, 0, len(messages))
	for _, m := range messages {
		if m.Role == "system" {
			continue
		}
		conversation = append(conversation, m)
	}

	if len(conversation) > 0 && conversation[0].Role == "user" {
		infoBlock := fmt.Sprintf(`User Information:
- University: %s
- Faculty: %s
- Department: %s

IMPORTANT: Always reference the user's faculty (%s) and department (%s) when generating topics. Make sure all topics are relevant to their field of study.`,
			userCtx.University, userCtx.Faculty, userCtx.Department, userCtx.Faculty, userCtx.Department)
		conversation[0] = Message{
			Role:    conversation[0].Role,
			Content: infoBlock + "\n\n" + conversation[0].Content,
		}
	}

	return s.client.Invoke(ctx, "", conversation, TaskTopicGenerationChat)
}

// OutlinePlan is the parsed strict-JSON outline returned by the model.
type OutlinePlan struct {
	Overview string `json:"overview"`
	Chapters []struct {
		ChapterNumber int    `json:"chapterNumber"`
		Title         string `json:"title"`
		Summary       string `json:"summary"`
	} `json:"chapters"`
}

// GenerateOutline asks the model for a chapter 1-5 plan for a project
// topic. Malformed JSON or a wrong chapter count surfaces
// ErrUnparsableOutline; a partially populated outline is never returned.
func (s *Service) GenerateOutline(ctx context.Context, topic, department string) (OutlinePlan, error) {
	prompt := buildOutlinePrompt(topic, department)
	response, err := s.client.Invoke(ctx, "", []Message{{Role: "user", Content: prompt}}, TaskChapterGeneration)
	if err != nil {
		return OutlinePlan{}, err
	}

	var plan OutlinePlan
	if err := json.Unmarshal([]byte(response), &plan); err != nil {
		return OutlinePlan{}, fmt.Errorf("%w: %v", ErrUnparsableOutline, err)
	}
	if len(plan.Chapters) != 5 {
		return OutlinePlan{}, fmt.Errorf("%w: expected 5 chapters, got %d", ErrUnparsableOutline, len(plan.Chapters))
	}
	return plan, nil
}

func buildOutlinePrompt(topic, department string) string {
	return fmt.Sprintf(`You are FinalYearNG AI, helping a Nigerian university student plan their full final year project.

Given this project information:
- Topic: %q
- Department: %q

Create a clear plan of how the project will go from Chapter 1 to Chapter 5.

Return STRICT JSON with this exact shape (no extra text):
{
  "overview": "High-level description of the full project.",
  "chapters": [
    {"chapterNumber": 1, "title": "Chapter 1: ...", "summary": "2-5 paragraphs describing what goes into this chapter."},
    {"chapterNumber": 2, "title": "Chapter 2: ...", "summary": "..."},
    {"chapterNumber": 3, "title": "Chapter 3: ...", "summary": "..."},
    {"chapterNumber": 4, "title": "Chapter 4: ...", "summary": "..."},
    {"chapterNumber": 5, "title": "Chapter 5: ...", "summary": "..."}
  ]
}`, topic, department)
}
