package app

import "errors"

var (
	// ErrInvalidCredentials is shown to end users and must not enable
	// account enumeration.
	ErrInvalidCredentials = errors.New("Incorrect email address or password")

	// ErrUserDisabled is returned when an account is disabled.
	// Handlers should generally NOT expose this to clients.
	ErrUserDisabled = errors.New("user disabled")

	ErrEmailAndPasswordRequired = errors.New("email and password required")
	ErrNameRequired             = errors.New("name is required")
	ErrEmailAlreadyExists       = errors.New("email already exists")

	ErrNotFound  = errors.New("not found")
	ErrForbidden = errors.New("forbidden")

	ErrTopicRequired      = errors.New("project topic is required")
	ErrDepartmentRequired = errors.New("department is required")
	ErrMessageRequired    = errors.New("message is required")
	ErrInvalidCategory    = errors.New("invalid content category")
	ErrInvalidRole        = errors.New("message role must be user, assistant, or system")
	ErrInvalidStatus      = errors.New("status must be active or archived")
	ErrConversationClosed = errors.New("conversation is not active")
)
