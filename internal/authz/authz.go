// Package authz decides screen-level visibility. It is pure: no I/O, no
// session mutation, deterministic for a given principal and requirement.
package authz

import (
	"github.com/bizpulse/bizdash/internal/session"
)

// CanAccess reports whether the principal may see a screen guarded by the
// required roles. A nil principal is always denied. An empty requirement
// means any authenticated principal is allowed.
func CanAccess(principal *session.Principal, required []session.Role) bool {
	if principal == nil {
		return false
	}
	if len(required) == 0 {
		return true
	}
	for _, r := range required {
		if principal.Role == r {
			return true
		}
	}
	return false
}
