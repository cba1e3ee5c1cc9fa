package auth

import "github.com/propfind/propfind/internal/shared"

// Authorize permits an operation only when the caller owns the resource.
// It must be paired with a conditional mutation keyed on both resource id and
// owner id so the ownership cannot change between check and act.
func Authorize(caller shared.Identity, ownerID int64) error {
	if caller.UserID != ownerID {
		return shared.ErrForbidden
	}
	return nil
}
