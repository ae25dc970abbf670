package services

import (
	"errors"
	"fmt"
)

// ErrValidation marks precondition violations: non-positive XP points,
// scores outside a criterion's bounds, or a judge scoring their own team.
// Handlers map it to 400. Missing records surface as stores.ErrNotFound
// and map to 404.
var ErrValidation = errors.New("validation failed")

// ErrDuplicate marks uniqueness violations (taken usernames, repeat
// scores, repeat judge assignments). It wraps ErrValidation so callers
// that only distinguish valid from invalid keep working; handlers map it
// to 409.
var ErrDuplicate = fmt.Errorf("duplicate: %w", ErrValidation)

// ErrInvalidCredentials covers failed logins; handlers map it to 401
// without leaking whether the username or the password was wrong.
var ErrInvalidCredentials = errors.New("invalid credentials")
