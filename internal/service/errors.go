// Package service holds the discussion platform's business rules: visibility,
// likes, comment trees, and the community/discussion/comment/user operations
// built on them.
package service

import (
	"errors"

	"agora/internal/models"
	"agora/internal/repository"
)

// lookupError maps a store lookup failure to a typed condition. A missing row
// becomes NotFound for resource/id; anything else is Internal.
func lookupError(err error, resource string, id uint) error {
	if errors.Is(err, repository.ErrNotFound) {
		return models.NewNotFoundError(resource, id)
	}
	return storeError(err)
}

// storeError passes typed conditions through and wraps raw store failures.
func storeError(err error) error {
	if err == nil {
		return nil
	}
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		return err
	}
	if errors.Is(err, repository.ErrDuplicate) {
		return models.NewConflictError("Record already exists")
	}
	return models.NewInternalError(err)
}
