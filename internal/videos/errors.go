package videos

import (
	"errors"

	"github.com/learnhub/backend/internal/apperr"
	"github.com/learnhub/backend/internal/repositories"
)

// ErrLocatorUnparseable indicates a media locator from which no storage path could be derived.
var ErrLocatorUnparseable = errors.New("media locator has no storage path")

// storeError passes ErrNotFound through untouched and tags everything else as a
// database provider failure.
func storeError(op string, err error) error {
	if err == nil || errors.Is(err, repositories.ErrNotFound) {
		return err
	}
	return apperr.Provider("database", op, err)
}
