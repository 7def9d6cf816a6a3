package app

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"finalyearng/pkg/ai"
	"finalyearng/pkg/auth"
	"finalyearng/pkg/domain"
	"finalyearng/pkg/store"
)

// Config holds runtime configuration for the core application.
type Config struct {
	DatabaseURL     string
	JWTSecret       string
	SessionTTL      time.Duration
	GeminiAPIKey    string
	GeminiBaseURL   string
	GenerationModel string

	// Injectable for tests.
	Store    store.Store
	Sessions store.SessionStore
	AI       *ai.Service
}

// App is the core application service wiring storage, sessions, and
// the AI orchestration layer together.
type App struct {
	store    store.Store
	sessions store.SessionStore
	ai       *ai.Service
}

// New constructs the application with database storage and session
// management.
func New(cfg Config) (*App, error) {
	if cfg.SessionTTL == 0 {
		cfg.SessionTTL = 7 * 24 * time.Hour
	}

	dataStore := cfg.Store
	if dataStore == nil {
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("database URL required")
		}
		var err error
		dataStore, err = store.NewGormStore(cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("init postgres store: %w", err)
		}
	}

	sessionStore := cfg.Sessions
	if sessionStore == nil {
		var err error
		sessionStore, err = store.NewJWTSessionStore(cfg.JWTSecret, cfg.SessionTTL, store.JWTOptions{})
		if err != nil {
			return nil, fmt.Errorf("init jwt session store: %w", err)
		}
	}

	aiService := cfg.AI
	if aiService == nil {
		options := []ai.GeminiOption{}
		if cfg.GeminiBaseURL != "" {
			options = append(options, ai.WithBaseURL(cfg.GeminiBaseURL))
		}
		if cfg.GenerationModel != "" {
			options = append(options, ai.WithDefaultModel(cfg.GenerationModel))
		}
		client, err := ai.NewGeminiClient(cfg.GeminiAPIKey, ai.NewPromptRegistry(), options...)
		if err != nil {
			return nil, fmt.Errorf("init gemini client: %w", err)
		}
		aiService = ai.NewService(client)
	}

	return &App{
		store:    dataStore,
		sessions: sessionStore,
		ai:       aiService,
	}, nil
}

func newID() string { return uuid.NewString() }

// RegisterParams carries the signup payload.
type RegisterParams struct {
	Name       string
	Email      string
	Password   string
	University string
	Faculty    string
	Department string
	Degree     string
}

// Register creates an account. The first registered user becomes the
// administrator.
func (a *App) Register(params RegisterParams) (domain.User, string, error) {
	email := strings.TrimSpace(strings.ToLower(params.Email))
	if email == "" || params.Password == "" {
		return domain.User{}, "", ErrEmailAndPasswordRequired
	}
	if strings.TrimSpace(params.Name) == "" {
		return domain.User{}, "", ErrNameRequired
	}
	if err := auth.ValidatePassword(params.Password); err != nil {
		return domain.User{}, "", err
	}
	exists, err := a.store.HasUserEmail(email)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("check email: %w", err)
	}
	if exists {
		return domain.User{}, "", ErrEmailAlreadyExists
	}
	count, err := a.store.UserCount()
	if err != nil {
		return domain.User{}, "", fmt.Errorf("count users: %w", err)
	}
	passwordHash, err := auth.HashPassword(params.Password)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("hash password: %w", err)
	}
	role := domain.RoleUser
	if count == 0 {
		role = domain.RoleAdmin
	}
	now := time.Now().UTC()
	user := domain.User{
		ID:           newID(),
		Name:         strings.TrimSpace(params.Name),
		Email:        email,
		PasswordHash: passwordHash,
		Role:         role,
		Status:       domain.StatusActive,
		University:   strings.TrimSpace(params.University),
		Faculty:      strings.TrimSpace(params.Faculty),
		Department:   strings.TrimSpace(params.Department),
		Degree:       strings.TrimSpace(params.Degree),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := a.store.SaveUser(user); err != nil {
		return domain.User{}, "", fmt.Errorf("save user: %w", err)
	}
	token, err := a.sessions.NewSession(user.ID)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("issue session: %w", err)
	}
	return user, token, nil
}

// Login validates credentials and issues a session token.
func (a *App) Login(email, password string) (domain.User, string, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	user, ok, err := a.store.GetUserByEmail(email)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("fetch user: %w", err)
	}
	if !ok {
		return domain.User{}, "", ErrInvalidCredentials
	}
	if user.Status == domain.StatusDisabled {
		return domain.User{}, "", ErrUserDisabled
	}
	if !auth.CheckPassword(password, user.PasswordHash) {
		return domain.User{}, "", ErrInvalidCredentials
	}
	token, err := a.sessions.NewSession(user.ID)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("issue session: %w", err)
	}
	return user, token, nil
}

// UserFromToken resolves a user from a session token.
func (a *App) UserFromToken(token string) (domain.User, bool) {
	uid, ok, err := a.sessions.GetUserIDByToken(token)
	if err != nil || !ok {
		return domain.User{}, false
	}
	user, found, err := a.store.GetUserByID(uid)
	if err != nil || !found {
		return domain.User{}, false
	}
	if user.Status == domain.StatusDisabled {
		return domain.User{}, false
	}
	return user, true
}

// ListUsers returns all accounts for administration.
func (a *App) ListUsers() ([]domain.User, error) {
	return a.store.ListUsers()
}

// UpdateUser applies role and/or status changes to an account.
func (a *App) UpdateUser(id string, role *domain.UserRole, status *domain.UserStatus) (domain.User, error) {
	user, ok, err := a.store.GetUserByID(id)
	if err != nil {
		return domain.User{}, fmt.Errorf("fetch user: %w", err)
	}
	if !ok {
		return domain.User{}, ErrNotFound
	}
	if role != nil {
		user.Role = *role
	}
	if status != nil {
		user.Status = *status
	}
	user.UpdatedAt = time.Now().UTC()
	if err := a.store.SaveUser(user); err != nil {
		return domain.User{}, fmt.Errorf("save user: %w", err)
	}
	return user, nil
}
