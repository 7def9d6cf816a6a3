package store

import (
	"testing"
	"time"

	"finalyearng/pkg/domain"
)

func TestMemoryStoreUserRoundTrip(t *testing.T) {
	s := NewMemoryStore()
	u := domain.User{
		ID:        "u1",
		Name:      "Ada",
		Email:     "ada@example.edu.ng",
		Role:      domain.RoleAdmin,
		Status:    domain.StatusActive,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.SaveUser(u); err != nil {
		t.Fatalf("save user: %v", err)
	}
	got, ok, err := s.GetUserByEmail("ada@example.edu.ng")
	if err != nil || !ok {
		t.Fatalf("get by email: ok=%v err=%v", ok, err)
	}
	if got.ID != "u1" || got.Role != domain.RoleAdmin {
		t.Fatalf("unexpected user: %+v", got)
	}
	if count, _ := s.UserCount(); count != 1 {
		t.Fatalf("expected 1 user, got %d", count)
	}
	if has, _ := s.HasUserEmail("missing@example.com"); has {
		t.Fatalf("expected missing email to report false")
	}
}

func TestMemoryStoreProjectsOrderedByUpdate(t *testing.T) {
	s := NewMemoryStore()
	now := time.Now().UTC()
	for i, id := range []string{"p1", "p2", "p3"} {
		p := domain.Project{
			ID:        id,
			UserID:    "u1",
			Topic:     "Topic " + id,
			Status:    domain.ProjectDraft,
			UpdatedAt: now.Add(time.Duration(i) * time.Minute),
		}
		if err := s.SaveProject(p); err != nil {
			t.Fatalf("save project: %v", err)
		}
	}
	projects, err := s.ListProjectsByUser("u1")
	if err != nil {
		t.Fatalf("list projects: %v", err)
	}
	if len(projects) != 3 || projects[0].ID != "p3" {
		t.Fatalf("expected p3 first, got %+v", projects)
	}
	latest, ok, err := s.LatestProjectByUser("u1")
	if err != nil || !ok || latest.ID != "p3" {
		t.Fatalf("latest project: ok=%v err=%v got=%s", ok, err, latest.ID)
	}
	if _, ok, _ := s.LatestProjectByUser("nobody"); ok {
		t.Fatalf("expected no project for unknown user")
	}
}

func TestMemoryStoreAppendChatHistory(t *testing.T) {
	s := NewMemoryStore()
	if err := s.SaveProject(domain.Project{ID: "p1", UserID: "u1"}); err != nil {
		t.Fatalf("save project: %v", err)
	}
	msgs := []domain.ChatMessage{
		{Role: "user", Content: "write chapter 1", ChapterNumber: 1},
		{Role: "assistant", Content: "CHAPTER ONE", ChapterNumber: 1},
	}
	if err := s.AppendChatHistory("p1", msgs); err != nil {
		t.Fatalf("append chat history: %v", err)
	}
	p, _, _ := s.GetProject("p1")
	if len(p.ChatHistory) != 2 || p.ChatHistory[1].Role != "assistant" {
		t.Fatalf("unexpected chat history: %+v", p.ChatHistory)
	}
	if err := s.AppendChatHistory("missing", msgs); err == nil {
		t.Fatalf("expected error for unknown project")
	}
}

func TestMemoryStoreConversationCounters(t *testing.T) {
	s := NewMemoryStore()
	conv := domain.Conversation{
		ID:     "c1",
		UserID: "u1",
		Type:   domain.ConversationGeneral,
		Status: domain.ConversationActive,
	}
	if err := s.CreateConversation(conv); err != nil {
		t.Fatalf("create conversation: %v", err)
	}
	at := time.Now().UTC()
	updated, err := s.AppendConversationMessage("c1", domain.ConversationMessage{
		ID: "m1", Role: "user", Content: "hello", CreatedAt: at,
	})
	if err != nil {
		t.Fatalf("append message: %v", err)
	}
	if updated.MessageCount != 1 {
		t.Fatalf("expected message count 1, got %d", updated.MessageCount)
	}
	if updated.LastMessageAt == nil || !updated.LastMessageAt.Equal(at) {
		t.Fatalf("expected last message at %v, got %v", at, updated.LastMessageAt)
	}
	msgs, err := s.ListConversationMessages("c1")
	if err != nil || len(msgs) != 1 || msgs[0].ConversationID != "c1" {
		t.Fatalf("unexpected messages: %v err=%v", msgs, err)
	}
}

func TestMemoryStoreConversationFilters(t *testing.T) {
	s := NewMemoryStore()
	seed := []domain.Conversation{
		{ID: "c1", UserID: "u1", Type: domain.ConversationGeneral, Status: domain.ConversationActive},
		{ID: "c2", UserID: "u1", Type: domain.ConversationTopicGeneration, Status: domain.ConversationArchived},
		{ID: "c3", UserID: "u1", Type: domain.ConversationGeneral, Status: domain.ConversationDeleted},
		{ID: "c4", UserID: "u2", Type: domain.ConversationGeneral, Status: domain.ConversationActive},
	}
	for _, c := range seed {
		if err := s.CreateConversation(c); err != nil {
			t.Fatalf("create conversation: %v", err)
		}
	}

	all, err := s.ListConversationsByUser("u1", ConversationFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected deleted conversation excluded, got %d", len(all))
	}

	archived, _ := s.ListConversationsByUser("u1", ConversationFilter{Status: domain.ConversationArchived})
	if len(archived) != 1 || archived[0].ID != "c2" {
		t.Fatalf("unexpected archived list: %+v", archived)
	}

	topicOnly, _ := s.ListConversationsByUser("u1", ConversationFilter{Type: domain.ConversationTopicGeneration})
	if len(topicOnly) != 1 || topicOnly[0].ID != "c2" {
		t.Fatalf("unexpected type filter result: %+v", topicOnly)
	}

	limited, _ := s.ListConversationsByUser("u1", ConversationFilter{Limit: 1})
	if len(limited) != 1 {
		t.Fatalf("expected limit 1, got %d", len(limited))
	}
}

func TestMemoryStoreSavedContentUpsert(t *testing.T) {
	s := NewMemoryStore()
	pid := "p1"
	first := domain.SavedContent{
		ID:           "sc1",
		UserID:       "u1",
		ProjectID:    &pid,
		Category:     domain.CategoryChapter1,
		Content:      "draft one",
		LastModified: time.Now().UTC(),
	}
	stored, err := s.UpsertSavedContent(first)
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if stored.ID != "sc1" {
		t.Fatalf("expected new entry sc1, got %s", stored.ID)
	}

	second := first
	second.ID = "sc2"
	second.Content = "draft two"
	second.LastModified = time.Now().UTC().Add(time.Minute)
	stored, err = s.UpsertSavedContent(second)
	if err != nil {
		t.Fatalf("upsert again: %v", err)
	}
	if stored.ID != "sc1" {
		t.Fatalf("expected slot to be replaced in place, got id %s", stored.ID)
	}
	if stored.Content != "draft two" {
		t.Fatalf("expected content replaced, got %q", stored.Content)
	}

	list, err := s.ListSavedContents("u1", &pid)
	if err != nil || len(list) != 1 {
		t.Fatalf("expected single slot, got %d err=%v", len(list), err)
	}

	// Standalone content occupies a distinct slot from project-scoped.
	standalone := domain.SavedContent{
		ID:           "sc3",
		UserID:       "u1",
		Category:     domain.CategoryChapter1,
		Content:      "standalone",
		LastModified: time.Now().UTC(),
	}
	if _, err := s.UpsertSavedContent(standalone); err != nil {
		t.Fatalf("upsert standalone: %v", err)
	}
	if list, _ := s.ListSavedContents("u1", &pid); len(list) != 1 || list[0].ID != "sc1" {
		t.Fatalf("unexpected project-scoped list: %+v", list)
	}

	// An unfiltered listing includes standalone and project-scoped entries.
	all, _ := s.ListSavedContents("u1", nil)
	if len(all) != 2 {
		t.Fatalf("expected both entries in unfiltered list, got %+v", all)
	}

	if err := s.DeleteSavedContent("sc3"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok, _ := s.GetSavedContent("sc3"); ok {
		t.Fatalf("expected sc3 deleted")
	}
}
