package auth

import (
	"fmt"

	"github.com/mesh-intelligence/shopkeep/pkg/types"
)

// State is the position of a Session in the login sequence.
type State int

// Session states. A terminal with a master key starts Locked; without one
// it starts Unlocked.
const (
	StateLocked State = iota
	StateUnlocked
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateLocked:
		return "locked"
	case StateUnlocked:
		return "unlocked"
	case StateAuthenticated:
		return "authenticated"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Session is the explicit per-terminal context handed to every operation.
// Its zero value is a locked session; use Authenticator.NewSession.
type Session struct {
	state    State
	initial  State
	username string
	role     string
}

// State returns the current state.
func (s *Session) State() State { return s.state }

// Username returns the logged-in user, or "" before login.
func (s *Session) Username() string { return s.username }

// Role returns the logged-in user's role, or "" before login.
func (s *Session) Role() string { return s.role }

// Authenticated reports whether the session passed the credential check.
func (s *Session) Authenticated() bool { return s.state == StateAuthenticated }

// RequireAuthenticated returns ErrUnauthenticated unless logged in.
func (s *Session) RequireAuthenticated() error {
	if s == nil || !s.Authenticated() {
		return types.ErrUnauthenticated
	}
	return nil
}

// RequireRole returns an error unless the session is logged in with one of
// roles.
func (s *Session) RequireRole(roles ...string) error {
	if err := s.RequireAuthenticated(); err != nil {
		return err
	}
	for _, r := range roles {
		if types.NormalizeIdentity(r) == s.role {
			return nil
		}
	}
	return fmt.Errorf("%w: %s", types.ErrForbidden, s.role)
}

// Logout returns the session to its initial state.
func (s *Session) Logout() {
	s.state = s.initial
	s.username = ""
	s.role = ""
}
