package store

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"finalyearng/pkg/domain"
)

// MemoryStore keeps everything in-process. Used by tests and local
// development without a database.
type MemoryStore struct {
	mu            sync.RWMutex
	users         map[string]domain.User
	email         map[string]string // email -> user ID
	userOrder     []string
	projects      map[string]domain.Project
	conversations map[string]domain.Conversation
	messages      map[string][]domain.ConversationMessage
	saved         map[string]domain.SavedContent
}

// NewMemoryStore initializes an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:         make(map[string]domain.User),
		email:         make(map[string]string),
		projects:      make(map[string]domain.Project),
		conversations: make(map[string]domain.Conversation),
		messages:      make(map[string][]domain.ConversationMessage),
		saved:         make(map[string]domain.SavedContent),
	}
}

// SaveUser registers or updates a user.
func (m *MemoryStore) SaveUser(u domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.users[u.ID]; !exists {
		m.userOrder = append(m.userOrder, u.ID)
	}
	m.users[u.ID] = u
	m.email[u.Email] = u.ID
	return nil
}

// HasUserEmail checks if email exists.
func (m *MemoryStore) HasUserEmail(email string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.email[email]
	return ok, nil
}

// GetUserByEmail looks up a user by email.
func (m *MemoryStore) GetUserByEmail(email string) (domain.User, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.email[email]
	if !ok {
		return domain.User{}, false, nil
	}
	u, ok := m.users[id]
	return u, ok, nil
}

// GetUserByID returns a user by ID.
func (m *MemoryStore) GetUserByID(id string) (domain.User, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	return u, ok, nil
}

// ListUsers returns users in registration order.
func (m *MemoryStore) ListUsers() ([]domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := make([]domain.User, 0, len(m.userOrder))
	for _, id := range m.userOrder {
		if u, ok := m.users[id]; ok {
			res = append(res, u)
		}
	}
	return res, nil
}

// UserCount returns number of users.
func (m *MemoryStore) UserCount() (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.users), nil
}

// SaveProject stores or replaces a project.
func (m *MemoryStore) SaveProject(p domain.Project) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.projects[p.ID] = p
	return nil
}

// GetProject retrieves a project by ID.
func (m *MemoryStore) GetProject(id string) (domain.Project, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.projects[id]
	return p, ok, nil
}

// ListProjectsByUser returns the user's projects, most recently
// updated first.
func (m *MemoryStore) ListProjectsByUser(userID string) ([]domain.Project, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var res []domain.Project
	for _, p := range m.projects {
		if p.UserID == userID {
			res = append(res, p)
		}
	}
	sort.Slice(res, func(i, j int) bool {
		return res[i].UpdatedAt.After(res[j].UpdatedAt)
	})
	return res, nil
}

// LatestProjectByUser returns the most recently updated project.
func (m *MemoryStore) LatestProjectByUser(userID string) (domain.Project, bool, error) {
	projects, _ := m.ListProjectsByUser(userID)
	if len(projects) == 0 {
		return domain.Project{}, false, nil
	}
	return projects[0], true, nil
}

// DeleteProject removes a project.
func (m *MemoryStore) DeleteProject(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.projects, id)
	return nil
}

// AppendChatHistory appends messages to the project's chat history.
func (m *MemoryStore) AppendChatHistory(projectID string, msgs []domain.ChatMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.projects[projectID]
	if !ok {
		return fmt.Errorf("project %s not found", projectID)
	}
	p.ChatHistory = append(p.ChatHistory, msgs...)
	p.UpdatedAt = time.Now().UTC()
	m.projects[projectID] = p
	return nil
}

// CreateConversation records a new conversation.
func (m *MemoryStore) CreateConversation(c domain.Conversation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.conversations[c.ID] = c
	return nil
}

// GetConversation returns one conversation by ID.
func (m *MemoryStore) GetConversation(id string) (domain.Conversation, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.conversations[id]
	return c, ok, nil
}

// ListConversationsByUser returns the user's conversations with the
// same ordering and filter semantics as the DB store.
func (m *MemoryStore) ListConversationsByUser(userID string, filter ConversationFilter) ([]domain.Conversation, error) {
	m.mu.RLock()
	var res []domain.Conversation
	for _, c := range m.conversations {
		if c.UserID != userID {
			continue
		}
		if filter.Status != "" {
			if c.Status != filter.Status {
				continue
			}
		} else if c.Status == domain.ConversationDeleted {
			continue
		}
		if filter.Type != "" && c.Type != filter.Type {
			continue
		}
		res = append(res, c)
	}
	m.mu.RUnlock()
	sort.Slice(res, func(i, j int) bool {
		ti, tj := res[i].UpdatedAt, res[j].UpdatedAt
		if res[i].LastMessageAt != nil {
			ti = *res[i].LastMessageAt
		}
		if res[j].LastMessageAt != nil {
			tj = *res[j].LastMessageAt
		}
		return ti.After(tj)
	})
	if filter.Skip > 0 {
		if filter.Skip >= len(res) {
			return []domain.Conversation{}, nil
		}
		res = res[filter.Skip:]
	}
	if filter.Limit > 0 && filter.Limit < len(res) {
		res = res[:filter.Limit]
	}
	return res, nil
}

// UpdateConversation applies the non-nil fields.
func (m *MemoryStore) UpdateConversation(id string, title *string, status *domain.ConversationStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.conversations[id]
	if !ok {
		return fmt.Errorf("conversation %s not found", id)
	}
	if title != nil {
		c.Title = *title
	}
	if status != nil {
		c.Status = *status
	}
	c.UpdatedAt = time.Now().UTC()
	m.conversations[id] = c
	return nil
}

// AppendConversationMessage inserts the message and bumps counters.
func (m *MemoryStore) AppendConversationMessage(conversationID string, msg domain.ConversationMessage) (domain.Conversation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.conversations[conversationID]
	if !ok {
		return domain.Conversation{}, fmt.Errorf("conversation %s not found", conversationID)
	}
	msg.ConversationID = conversationID
	m.messages[conversationID] = append(m.messages[conversationID], msg)
	at := msg.CreatedAt.UTC()
	c.MessageCount++
	c.LastMessageAt = &at
	c.UpdatedAt = time.Now().UTC()
	m.conversations[conversationID] = c
	return c, nil
}

// ListConversationMessages returns messages in insertion order.
func (m *MemoryStore) ListConversationMessages(conversationID string) ([]domain.ConversationMessage, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	msgs := m.messages[conversationID]
	res := make([]domain.ConversationMessage, len(msgs))
	copy(res, msgs)
	return res, nil
}

func savedSlotKey(userID string, projectID *string, category domain.ContentCategory) string {
	pid := ""
	if projectID != nil {
		pid = *projectID
	}
	return userID + "\x00" + pid + "\x00" + string(category)
}

// UpsertSavedContent writes the (user, project, category) slot.
func (m *MemoryStore) UpsertSavedContent(sc domain.SavedContent) (domain.SavedContent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := savedSlotKey(sc.UserID, sc.ProjectID, sc.Category)
	for id, existing := range m.saved {
		if savedSlotKey(existing.UserID, existing.ProjectID, existing.Category) == key {
			existing.Content = sc.Content
			existing.LastModified = sc.LastModified
			m.saved[id] = existing
			return existing, nil
		}
	}
	m.saved[sc.ID] = sc
	return sc, nil
}

// ListSavedContents returns saved content for the user. A non-nil
// projectID restricts the listing to that project; nil means no filter.
func (m *MemoryStore) ListSavedContents(userID string, projectID *string) ([]domain.SavedContent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var res []domain.SavedContent
	for _, sc := range m.saved {
		if sc.UserID != userID {
			continue
		}
		if projectID != nil && (sc.ProjectID == nil || *sc.ProjectID != *projectID) {
			continue
		}
		res = append(res, sc)
	}
	sort.Slice(res, func(i, j int) bool {
		return res[i].LastModified.After(res[j].LastModified)
	})
	return res, nil
}

// GetSavedContent retrieves one entry by ID.
func (m *MemoryStore) GetSavedContent(id string) (domain.SavedContent, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sc, ok := m.saved[id]
	return sc, ok, nil
}

// DeleteSavedContent removes an entry.
func (m *MemoryStore) DeleteSavedContent(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.saved, id)
	return nil
}
