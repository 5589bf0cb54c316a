// This file builds the administrator record required in the users dataset.
package sqlite

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/mesh-intelligence/shopkeep/internal/auth"
	"github.com/mesh-intelligence/shopkeep/pkg/types"
)

// generatedPasswordBytes is the entropy of a generated administrator
// password; it is shown as twice as many hex digits.
const generatedPasswordBytes = 8

// adminRecord returns the administrator record to seed, with its password
// hashed. When no password is configured one is generated and returned so
// the caller can show it once.
func (b *Backend) adminRecord() (types.Record, string, error) {
	admin := b.config.Admin
	password := admin.Password
	var generated string
	if password == "" {
		var err error
		if generated, err = generatePassword(); err != nil {
			return nil, "", fmt.Errorf("seeding administrator: %w", err)
		}
		password = generated
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, "", fmt.Errorf("seeding administrator: %w", err)
	}
	return types.Record{
		types.ColUsername: types.NormalizeIdentity(admin.Username),
		types.ColPassword: hash,
		types.ColRole:     types.NormalizeIdentity(admin.Role),
	}, generated, nil
}

// generatePassword returns a random password of hex digits.
func generatePassword() (string, error) {
	buf := make([]byte, generatedPasswordBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
