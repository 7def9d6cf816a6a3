package app

import (
	"fmt"
	"strings"
	"time"

	"finalyearng/pkg/domain"
)

// SaveContent upserts a content slot. At most one entry exists per
// (user, project-or-none, category); saving again overwrites it.
func (a *App) SaveContent(userID string, projectID *string, category domain.ContentCategory, content string) (domain.SavedContent, error) {
	if !domain.ValidContentCategory(category) {
		return domain.SavedContent{}, ErrInvalidCategory
	}
	if strings.TrimSpace(content) == "" {
		return domain.SavedContent{}, fmt.Errorf("content is required")
	}
	if projectID != nil {
		project, err := a.ownedProject(userID, *projectID)
		if err != nil {
			return domain.SavedContent{}, err
		}
		projectID = &project.ID
	}
	now := time.Now().UTC()
	stored, err := a.store.UpsertSavedContent(domain.SavedContent{
		ID:           newID(),
		UserID:       userID,
		ProjectID:    projectID,
		Category:     category,
		Content:      content,
		CreatedAt:    now,
		LastModified: now,
	})
	if err != nil {
		return domain.SavedContent{}, fmt.Errorf("upsert saved content: %w", err)
	}
	return stored, nil
}

// ListSavedContents returns the caller's saved content. When projectID
// is set the project must be owned and only its slots are returned;
// otherwise everything the caller has saved is listed.
func (a *App) ListSavedContents(userID string, projectID *string) ([]domain.SavedContent, error) {
	if projectID != nil {
		if _, err := a.ownedProject(userID, *projectID); err != nil {
			return nil, err
		}
	}
	return a.store.ListSavedContents(userID, projectID)
}

// DeleteSavedContent removes an owned saved content entry.
func (a *App) DeleteSavedContent(userID, id string) error {
	sc, ok, err := a.store.GetSavedContent(id)
	if err != nil {
		return fmt.Errorf("fetch saved content: %w", err)
	}
	if !ok {
		return ErrNotFound
	}
	if sc.UserID != userID {
		return ErrForbidden
	}
	return a.store.DeleteSavedContent(id)
}
