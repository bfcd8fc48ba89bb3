package usecase

import "errors"

// Sentinel errors for the dismissal endpoint
var (
	// Validation errors
	ErrMissingFields = errors.New("missing fields")
	ErrInvalidKey    = errors.New("invalid notice key")
	ErrBadToken      = errors.New("bad token")

	// Session errors
	ErrNotLoggedIn = errors.New("not logged in")

	// Store errors
	ErrPersistence = errors.New("failed to save dismissal")
)

// Context keys for error values
const (
	UserIDKey    = "user_id"
	NoticeKeyKey = "notice_key"
)
