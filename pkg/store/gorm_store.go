package store

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"finalyearng/pkg/domain"
)

const migrateLockID int64 = 84319431

// GormStore implements Store using GORM + Postgres.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore opens the DB and runs auto-migrations.
func NewGormStore(dsn string) (*GormStore, error) {
	gormLog := gormlogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormlogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: gormLog})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := withMigrationLock(db, func(tx *gorm.DB) error {
		if err := tx.AutoMigrate(
			&userModel{},
			&projectModel{},
			&conversationModel{},
			&conversationMessageModel{},
			&savedContentModel{},
		); err != nil {
			return fmt.Errorf("auto migrate: %w", err)
		}
		return nil
	}); err != nil {
		return nil, err
	}
	return &GormStore{db: db}, nil
}

func withMigrationLock(db *gorm.DB, fn func(*gorm.DB) error) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("get sql db: %w", err)
	}
	conn, err := sqlDB.Conn(ctx)
	if err != nil {
		return fmt.Errorf("open sql conn: %w", err)
	}
	defer conn.Close()
	if err := execAdvisory(ctx, conn, "SELECT pg_advisory_lock($1)", migrateLockID); err != nil {
		return fmt.Errorf("acquire migrate lock: %w", err)
	}
	defer func() {
		_ = execAdvisory(ctx, conn, "SELECT pg_advisory_unlock($1)", migrateLockID)
	}()
	return fn(db)
}

func execAdvisory(ctx context.Context, conn *sql.Conn, query string, lockID int64) error {
	_, err := conn.ExecContext(ctx, query, lockID)
	return err
}

// SaveUser registers or updates a user.
func (s *GormStore) SaveUser(u domain.User) error {
	model := toUserModel(u)
	return s.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"name", "email", "password_hash", "role", "status",
			"university", "faculty", "department", "degree", "updated_at",
		}),
	}).Create(&model).Error
}

// HasUserEmail checks if email exists.
func (s *GormStore) HasUserEmail(email string) (bool, error) {
	var count int64
	if err := s.db.Model(&userModel{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// GetUserByEmail looks up a user by email.
func (s *GormStore) GetUserByEmail(email string) (domain.User, bool, error) {
	var model userModel
	if err := s.db.Where("email = ?", email).First(&model).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.User{}, false, nil
		}
		return domain.User{}, false, err
	}
	return fromUserModel(model), true, nil
}

// GetUserByID returns a user by ID.
func (s *GormStore) GetUserByID(id string) (domain.User, bool, error) {
	var model userModel
	if err := s.db.First(&model, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.User{}, false, nil
		}
		return domain.User{}, false, err
	}
	return fromUserModel(model), true, nil
}

// ListUsers returns all users ordered by created_at.
func (s *GormStore) ListUsers() ([]domain.User, error) {
	var models []userModel
	if err := s.db.Order("created_at ASC").Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]domain.User, 0, len(models))
	for _, m := range models {
		res = append(res, fromUserModel(m))
	}
	return res, nil
}

// UserCount returns number of users.
func (s *GormStore) UserCount() (int, error) {
	var count int64
	if err := s.db.Model(&userModel{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return int(count), nil
}

// SaveProject stores or updates a project, embedded documents included.
func (s *GormStore) SaveProject(p domain.Project) error {
	model, err := toProjectModel(p)
	if err != nil {
		return err
	}
	return s.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"title", "topic", "department", "domain", "keywords",
			"chapters", "outline", "chat_history", "status",
			"total_word_count", "last_saved", "updated_at",
		}),
	}).Create(&model).Error
}

// GetProject retrieves a project.
func (s *GormStore) GetProject(id string) (domain.Project, bool, error) {
	var model projectModel
	if err := s.db.First(&model, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.Project{}, false, nil
		}
		return domain.Project{}, false, err
	}
	p, err := fromProjectModel(model)
	if err != nil {
		return domain.Project{}, false, err
	}
	return p, true, nil
}

// ListProjectsByUser returns the user's projects, most recently
// updated first.
func (s *GormStore) ListProjectsByUser(userID string) ([]domain.Project, error) {
	var models []projectModel
	if err := s.db.Where("user_id = ?", userID).
		Order("updated_at DESC").
		Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]domain.Project, 0, len(models))
	for _, m := range models {
		p, err := fromProjectModel(m)
		if err != nil {
			return nil, err
		}
		res = append(res, p)
	}
	return res, nil
}

// LatestProjectByUser returns the user's most recently updated project.
func (s *GormStore) LatestProjectByUser(userID string) (domain.Project, bool, error) {
	var model projectModel
	if err := s.db.Where("user_id = ?", userID).
		Order("updated_at DESC").
		First(&model).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.Project{}, false, nil
		}
		return domain.Project{}, false, err
	}
	p, err := fromProjectModel(model)
	if err != nil {
		return domain.Project{}, false, err
	}
	return p, true, nil
}

// DeleteProject removes the project row.
func (s *GormStore) DeleteProject(id string) error {
	return s.db.Delete(&projectModel{}, "id = ?", id).Error
}

// AppendChatHistory reads, extends, and rewrites the project's chat
// history document. The last writer wins on concurrent appends.
func (s *GormStore) AppendChatHistory(projectID string, msgs []domain.ChatMessage) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var model projectModel
		if err := tx.First(&model, "id = ?", projectID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return fmt.Errorf("project %s not found", projectID)
			}
			return err
		}
		p, err := fromProjectModel(model)
		if err != nil {
			return err
		}
		p.ChatHistory = append(p.ChatHistory, msgs...)
		raw, err := marshalDoc(p.ChatHistory)
		if err != nil {
			return err
		}
		return tx.Model(&projectModel{}).Where("id = ?", projectID).
			Updates(map[string]any{
				"chat_history": raw,
				"updated_at":   time.Now().UTC(),
			}).Error
	})
}

// CreateConversation creates a new conversation record.
func (s *GormStore) CreateConversation(c domain.Conversation) error {
	model := toConversationModel(c)
	return s.db.Create(&model).Error
}

// GetConversation returns one conversation by ID.
func (s *GormStore) GetConversation(id string) (domain.Conversation, bool, error) {
	var model conversationModel
	if err := s.db.First(&model, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.Conversation{}, false, nil
		}
		return domain.Conversation{}, false, err
	}
	return fromConversationModel(model), true, nil
}

// ListConversationsByUser returns the user's conversations, most
// recent activity first. Deleted conversations are excluded unless
// the filter asks for them.
func (s *GormStore) ListConversationsByUser(userID string, filter ConversationFilter) ([]domain.Conversation, error) {
	tx := s.db.Where("user_id = ?", userID)
	if filter.Status != "" {
		tx = tx.Where("status = ?", string(filter.Status))
	} else {
		tx = tx.Where("status <> ?", string(domain.ConversationDeleted))
	}
	if filter.Type != "" {
		tx = tx.Where("type = ?", string(filter.Type))
	}
	tx = tx.Order("last_message_at DESC NULLS LAST").Order("updated_at DESC")
	if filter.Skip > 0 {
		tx = tx.Offset(filter.Skip)
	}
	if filter.Limit > 0 {
		tx = tx.Limit(filter.Limit)
	}
	var models []conversationModel
	if err := tx.Find(&models).Error; err != nil {
		return nil, err
	}
	items := make([]domain.Conversation, 0, len(models))
	for _, model := range models {
		items = append(items, fromConversationModel(model))
	}
	return items, nil
}

// UpdateConversation applies the non-nil fields.
func (s *GormStore) UpdateConversation(id string, title *string, status *domain.ConversationStatus) error {
	updates := map[string]any{
		"updated_at": time.Now().UTC(),
	}
	if title != nil {
		updates["title"] = *title
	}
	if status != nil {
		updates["status"] = string(*status)
	}
	return s.db.Model(&conversationModel{}).Where("id = ?", id).Updates(updates).Error
}

// AppendConversationMessage inserts the message and bumps the
// conversation counters in one transaction.
func (s *GormStore) AppendConversationMessage(conversationID string, msg domain.ConversationMessage) (domain.Conversation, error) {
	var updated conversationModel
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var conv conversationModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&conv, "id = ?", conversationID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return fmt.Errorf("conversation %s not found", conversationID)
			}
			return err
		}
		msg.ConversationID = conversationID
		model, err := toConversationMessageModel(msg)
		if err != nil {
			return err
		}
		if err := tx.Create(&model).Error; err != nil {
			return err
		}
		at := msg.CreatedAt.UTC()
		if err := tx.Model(&conversationModel{}).Where("id = ?", conversationID).
			Updates(map[string]any{
				"message_count":   gorm.Expr("message_count + 1"),
				"last_message_at": at,
				"updated_at":      time.Now().UTC(),
			}).Error; err != nil {
			return err
		}
		return tx.First(&updated, "id = ?", conversationID).Error
	})
	if err != nil {
		return domain.Conversation{}, err
	}
	return fromConversationModel(updated), nil
}

// ListConversationMessages returns a conversation's messages in
// chronological order.
func (s *GormStore) ListConversationMessages(conversationID string) ([]domain.ConversationMessage, error) {
	var models []conversationMessageModel
	if err := s.db.Where("conversation_id = ?", conversationID).
		Order("created_at ASC").
		Find(&models).Error; err != nil {
		return nil, err
	}
	msgs := make([]domain.ConversationMessage, 0, len(models))
	for _, model := range models {
		msg, err := fromConversationMessageModel(model)
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, msg)
	}
	return msgs, nil
}

// UpsertSavedContent writes the (user, project, category) slot,
// replacing existing content and refreshing last_modified.
func (s *GormStore) UpsertSavedContent(sc domain.SavedContent) (domain.SavedContent, error) {
	model := toSavedContentModel(sc)
	if err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "project_id"}, {Name: "category"}},
		DoUpdates: clause.AssignmentColumns([]string{"content", "last_modified"}),
	}).Create(&model).Error; err != nil {
		return domain.SavedContent{}, err
	}
	var stored savedContentModel
	if err := s.db.Where("user_id = ? AND project_id = ? AND category = ?",
		model.UserID, model.ProjectID, model.Category).First(&stored).Error; err != nil {
		return domain.SavedContent{}, err
	}
	return fromSavedContentModel(stored), nil
}

// ListSavedContents returns the user's saved content. A non-nil
// projectID restricts the listing to that project's slots; nil returns
// everything the user has saved, standalone and project-scoped alike.
func (s *GormStore) ListSavedContents(userID string, projectID *string) ([]domain.SavedContent, error) {
	tx := s.db.Where("user_id = ?", userID)
	if projectID != nil {
		tx = tx.Where("project_id = ?", *projectID)
	}
	var models []savedContentModel
	if err := tx.Order("last_modified DESC").Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]domain.SavedContent, 0, len(models))
	for _, m := range models {
		res = append(res, fromSavedContentModel(m))
	}
	return res, nil
}

// GetSavedContent retrieves one saved content entry.
func (s *GormStore) GetSavedContent(id string) (domain.SavedContent, bool, error) {
	var model savedContentModel
	if err := s.db.First(&model, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.SavedContent{}, false, nil
		}
		return domain.SavedContent{}, false, err
	}
	return fromSavedContentModel(model), true, nil
}

// DeleteSavedContent removes the entry.
func (s *GormStore) DeleteSavedContent(id string) error {
	return s.db.Delete(&savedContentModel{}, "id = ?", id).Error
}
