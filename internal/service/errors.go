package service

import (
	"errors"
	"fmt"

	"github.com/openparish/steptrack/internal/domain"
)

var (
	// ErrPermissionDenied is the sentinel behind every permission failure.
	// Match with errors.Is; use errors.As with *PermissionDeniedError to
	// recover the attempted action.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrInvalidArgument covers unrecognized roles, report kinds and other
	// inputs that are always surfaced, never coerced.
	ErrInvalidArgument = errors.New("invalid argument")
)

// PermissionDeniedError carries the action the caller was denied.
type PermissionDeniedError struct {
	Action domain.Action
}

func (e *PermissionDeniedError) Error() string {
	return fmt.Sprintf("permission denied: %s", e.Action)
}

func (e *PermissionDeniedError) Unwrap() error { return ErrPermissionDenied }

// requirePermission gates an operation on the session's capability set.
func requirePermission(sess domain.Session, action domain.Action) error {
	if !sess.Allows(action) {
		return &PermissionDeniedError{Action: action}
	}
	return nil
}

// requireAdmin gates account management on the admin identity itself rather
// than the capability table.
func requireAdmin(sess domain.Session) error {
	if !sess.IsAdmin() {
		return &PermissionDeniedError{Action: domain.ActionManageAccounts}
	}
	return nil
}
