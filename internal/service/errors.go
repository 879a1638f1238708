package service

import (
	"errors"
	"fmt"
	"kusina-service/internal/auth"
	"kusina-service/internal/repository"
)

// Error kinds returned by every service. Callers classify with errors.Is.
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrInternal     = errors.New("internal error")
)

func invalidInput(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

func forbidden(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrForbidden, fmt.Sprintf(format, args...))
}

func notFound(what string) error {
	return fmt.Errorf("%w: %s not found", ErrNotFound, what)
}

// internalError logs the underlying cause and hides it from the caller.
func internalError(err error, action string) error {
	logger.Error().Err(err).Msgf("Error %s", action)
	return fmt.Errorf("%w: failed %s", ErrInternal, action)
}

func authError(err error) error {
	if errors.Is(err, auth.ErrNotAdmin) {
		return fmt.Errorf("%w: %v", ErrForbidden, err)
	}
	return fmt.Errorf("%w: %v", ErrUnauthorized, err)
}

// storeError maps a repository error for an operation on `what`.
func storeError(err error, what, action string) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return notFound(what)
	case errors.Is(err, repository.ErrConflict):
		return invalidInput("%s changed concurrently, reload and try again", what)
	case errors.Is(err, repository.ErrDuplicate):
		return invalidInput("%s already exists", what)
	default:
		return internalError(err, action)
	}
}
