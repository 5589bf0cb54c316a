package auth

import (
	"crypto/subtle"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/mesh-intelligence/shopkeep/pkg/types"
)

// Authenticator checks the master key and staff credentials against the
// users dataset.
type Authenticator struct {
	users     types.Dataset
	masterKey string
	log       zerolog.Logger
}

// NewAuthenticator builds an Authenticator. An empty masterKey disables the
// master gate.
func NewAuthenticator(users types.Dataset, masterKey string, log zerolog.Logger) *Authenticator {
	return &Authenticator{users: users, masterKey: masterKey, log: log}
}

// NewSession returns a session in the initial state.
func (a *Authenticator) NewSession() *Session {
	initial := StateUnlocked
	if a.masterKey != "" {
		initial = StateLocked
	}
	return &Session{state: initial, initial: initial}
}

// Unlock opens the master gate. It is a no-op on an already unlocked
// session.
func (a *Authenticator) Unlock(s *Session, key string) error {
	if s.state != StateLocked {
		return nil
	}
	if subtle.ConstantTimeCompare([]byte(a.masterKey), []byte(key)) != 1 {
		return types.ErrInvalidMasterKey
	}
	s.state = StateUnlocked
	return nil
}

// Login moves an unlocked session to authenticated when username and
// password match a users record. Usernames compare case-insensitively.
// A matching legacy plaintext password is rehashed in place. A failed
// attempt leaves the session unchanged. An authenticated session must
// Logout before logging in again.
func (a *Authenticator) Login(s *Session, username, password string) error {
	switch s.state {
	case StateUnlocked:
	case StateLocked:
		return types.ErrLocked
	default:
		return fmt.Errorf("%w as %s", types.ErrAlreadyAuthenticated, s.username)
	}

	name := types.NormalizeIdentity(username)
	if name == "" {
		return types.ErrInvalidCredentials
	}
	rows, err := a.users.Fetch(map[string]any{types.ColUsername: name})
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}

	for _, row := range rows {
		stored, _ := row[types.ColPassword].(string)
		if !VerifyPassword(stored, password) {
			continue
		}
		if !IsHashed(stored) {
			a.upgrade(name, password)
		}
		role, _ := row[types.ColRole].(string)
		s.state = StateAuthenticated
		s.username = name
		s.role = types.NormalizeIdentity(role)
		a.log.Info().Str("user", name).Str("role", s.role).Msg("login")
		return nil
	}
	a.log.Warn().Str("user", name).Msg("login rejected")
	return types.ErrInvalidCredentials
}

// upgrade replaces a plaintext password with its hash. Failure leaves the
// plaintext in place; the login itself still succeeds.
func (a *Authenticator) upgrade(username, password string) {
	hash, err := HashPassword(password)
	if err != nil {
		a.log.Warn().Err(err).Str("user", username).Msg("password upgrade skipped")
		return
	}
	if _, err := a.users.Update(
		map[string]any{types.ColUsername: username},
		types.Record{types.ColPassword: hash},
	); err != nil {
		a.log.Warn().Err(err).Str("user", username).Msg("password upgrade failed")
		return
	}
	a.log.Info().Str("user", username).Msg("legacy password rehashed")
}

// AddUser appends a staff account with a hashed password. Only an
// administrator session may add users.
func (a *Authenticator) AddUser(s *Session, username, password, role string) error {
	if err := s.RequireRole(types.RoleAdmin); err != nil {
		return err
	}
	name := types.NormalizeIdentity(username)
	if name == "" || password == "" {
		return fmt.Errorf("%w: username and password are required", types.ErrInvalidRecord)
	}
	hash, err := HashPassword(password)
	if err != nil {
		return err
	}
	if role == "" {
		role = types.RoleStaff
	}
	if err := a.users.AppendUnique(types.ColUsername, types.Record{
		types.ColUsername: name,
		types.ColPassword: hash,
		types.ColRole:     types.NormalizeIdentity(role),
	}); err != nil {
		return fmt.Errorf("add user %s: %w", name, err)
	}
	return nil
}
