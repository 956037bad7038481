package store

import (
	"errors"
	"fmt"

	"nomorebugs-admin/internal/apperr"
)

// AsAppError classifies a store error for the API. resource names the
// entity kind and id the key that was looked up.
func AsAppError(resource, id string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrNotFound):
		return apperr.NotFound(resource, id)
	case errors.Is(err, ErrDuplicate):
		return apperr.Duplicate(fmt.Sprintf("%s already exists", resource), err)
	default:
		var appErr *apperr.Error
		if errors.As(err, &appErr) {
			return err
		}
		return apperr.Store(resource, err)
	}
}
