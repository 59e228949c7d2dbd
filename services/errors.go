package services

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// Sentinel error kinds for lifecycle and rating violations. Handlers map these
// to HTTP statuses; callers wrap them with fmt.Errorf("%w: detail", ...) so the
// kind survives errors.Is while the message stays specific.
var (
	ErrNotFound      = errors.New("not found")
	ErrForbidden     = errors.New("not authorized")
	ErrInvalidState  = errors.New("invalid task state")
	ErrConflict      = errors.New("conflict")
	ErrInvalidRating = errors.New("invalid rating")
	ErrValidation    = errors.New("validation failed")
)

// isDuplicateKey reports whether err is a unique-index violation. Both drivers
// translate these to gorm.ErrDuplicatedKey; the string checks cover a
// connection opened without error translation.
func isDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "Duplicate entry") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}
