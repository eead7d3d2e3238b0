package domain

import "errors"

var (
	ErrNotFound        = errors.New("not found")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrInvalidPrompt   = errors.New("invalid prompt")
	ErrInvalidOption   = errors.New("invalid option")
	ErrProviderFailure = errors.New("provider failure")
	ErrStorage         = errors.New("storage error")
	ErrCancelled       = errors.New("generation cancelled")
)
