package types

import (
	"errors"
	"fmt"
)

// Store lifecycle errors.
var (
	ErrStoreDetached   = errors.New("store is detached")
	ErrAlreadyAttached = errors.New("store is already attached")
	ErrDatasetNotFound = errors.New("dataset not found")
)

// Dataset errors.
var (
	ErrParseFailure  = errors.New("backing store is unreadable")
	ErrUnknownColumn = errors.New("unknown column")
	ErrInvalidRecord = errors.New("invalid record")
	ErrNotFound      = errors.New("record not found")

	// ErrDuplicateKey is an ErrInvalidRecord whose key column collides with
	// an existing row.
	ErrDuplicateKey = fmt.Errorf("%w: duplicate key", ErrInvalidRecord)
)

// Session and POS errors.
var (
	ErrLocked               = errors.New("terminal is locked")
	ErrInvalidMasterKey     = errors.New("invalid master key")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrAlreadyAuthenticated = errors.New("already logged in")
	ErrUnauthenticated      = errors.New("not logged in")
	ErrForbidden            = errors.New("role not permitted")
	ErrEmptyCart            = errors.New("cart is empty")
)
