package notification

import "errors"

var (
	// ErrNotFound when the notification does not exist or belongs to another user
	ErrNotFound = errors.New("notification not found")
)
