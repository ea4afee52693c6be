// Package access holds the single ownership check applied to project and
// endpoint mutations: the caller must own the record or hold the admin role.
package access

import (
	"github.com/mockbay/mockbay/pkg/apierr"
	"github.com/mockbay/mockbay/pkg/mock"
)

// CanAccess returns nil when caller owns the record or is an admin. The
// denial message is deliberately generic.
func CanAccess(ownerID string, caller *mock.User) error {
	if caller == nil {
		return apierr.Unauthorized("authentication required")
	}
	if caller.IsAdmin() || caller.ID == ownerID {
		return nil
	}
	return apierr.PermissionDenied("access denied")
}
