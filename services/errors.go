package services

import (
	"errors"

	"gorm.io/gorm"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserExists         = errors.New("user already exists")
	ErrAlreadyExists      = errors.New("already exists")
	ErrOpenVersionExists  = errors.New("document already has a draft or in-review version")
	ErrNotVersionAuthor   = errors.New("only the version author can edit its content")
	ErrInvalidContent     = errors.New("content must be a JSON object")
)

// notFound maps gorm's missing-row error onto target.
func notFound(err error, target error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return target
	}
	return err
}
