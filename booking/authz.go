/*
authz.go - Authorization policy

PURPOSE:

	One explicit policy function deciding (actor, action, resource) instead
	of role-string comparisons scattered through handlers. Every privileged
	code path calls Authorize and nothing else.

THE RULES:
  - A user may view and cancel only their own bookings
  - Agents and admins may view, cancel, and override any booking
  - Agents and admins manage packages and view reports
  - Only admins list users; role changes additionally require the acting
    admin, and promoting anyone to admin is always rejected - the system
    allows a single master admin account
*/
package booking

import "fmt"

// Actor is the authenticated identity performing an action.
type Actor struct {
	UserID UserID
	Role   Role
}

type Action string

const (
	ActionViewBooking    Action = "booking.view"
	ActionCancelBooking  Action = "booking.cancel"
	ActionConfirmPayment Action = "booking.confirm_payment"
	ActionOverrideStatus Action = "booking.override_status"
	ActionManagePackages Action = "package.manage"
	ActionViewReports    Action = "report.view"
	ActionManageUsers    Action = "user.manage"
	ActionChangeRole     Action = "user.change_role"
)

// Authorize returns nil when the actor may perform action on the resource,
// ErrForbidden otherwise. The resource is the owning UserID for booking
// actions, the target Role for ActionChangeRole, and ignored elsewhere.
func Authorize(actor Actor, action Action, resource any) error {
	switch action {
	case ActionViewBooking, ActionCancelBooking, ActionConfirmPayment:
		owner, _ := resource.(UserID)
		if actor.UserID == owner || actor.Role.Staff() {
			return nil
		}
		return fmt.Errorf("not the owner of this booking: %w", ErrForbidden)

	case ActionOverrideStatus, ActionManagePackages, ActionViewReports:
		if actor.Role.Staff() {
			return nil
		}
		return fmt.Errorf("staff only: %w", ErrForbidden)

	case ActionManageUsers:
		if actor.Role == RoleAdmin {
			return nil
		}
		return fmt.Errorf("admins only: %w", ErrForbidden)

	case ActionChangeRole:
		if actor.Role != RoleAdmin {
			return fmt.Errorf("admins only: %w", ErrForbidden)
		}
		// A single master admin account is allowed in the system; nobody
		// can be promoted to admin through this path.
		if target, _ := resource.(Role); target == RoleAdmin {
			return fmt.Errorf("only a single master admin account is allowed: %w", ErrForbidden)
		}
		return nil
	}

	return fmt.Errorf("unknown action %q: %w", action, ErrForbidden)
}
