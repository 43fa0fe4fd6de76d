package services

import "errors"

// Shared errors used across services and the HTTP error mapping.
var (
	// Generic
	ErrNotFound         = errors.New("requested resource not found")
	ErrValidationFailed = errors.New("validation failed")

	// Authentication and authorization. The credential error is deliberately
	// generic: team login must not reveal whether the nickname existed.
	ErrAuthInvalidCredentials   = errors.New("incorrect password")
	ErrAuthenticationRequired   = errors.New("authentication required")
	ErrForbiddenOperation       = errors.New("operation not allowed for the current user")
	ErrCurrentPasswordIncorrect = errors.New("current password is incorrect")

	// Validation / business rules
	ErrNicknameRequired        = errors.New("nickname and password are required")
	ErrDisplayNameRequired     = errors.New("display name is required")
	ErrJerseyNumberOutOfRange  = errors.New("jersey number must be between 0 and 99")
	ErrEventTitleRequired      = errors.New("event title is required")
	ErrEventLocationRequired   = errors.New("event location is required")
	ErrEventTimeRequired       = errors.New("event start and end time are required")
	ErrInvalidAttendanceStatus = errors.New("invalid attendance status")
	ErrGuestCountNegative      = errors.New("guest count must be zero or greater")
	ErrAppTitleRequired        = errors.New("app title is required")
	ErrNewPasswordRequired     = errors.New("current and new password are required")
	ErrInvalidNotificationType = errors.New("invalid notification type")

	// Conflicts
	ErrProfileAlreadyExists = errors.New("profile already exists for this account")

	// Entity lookups
	ErrUserNotFound  = errors.New("user not found")
	ErrEventNotFound = errors.New("event not found")

	// Deployment / upstream
	ErrTeamSettingsNotConfigured = errors.New("team settings are not configured")
	ErrNotificationFailed        = errors.New("failed to send notification")
	ErrNotifierNotConfigured     = errors.New("push notification token is not configured")
	ErrUploaderNotConfigured     = errors.New("file storage is not configured")
)
