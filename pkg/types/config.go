package types

import "errors"

// Config holds the backend parameters for Store.Attach.
type Config struct {
	DataDir string `json:"data_dir" yaml:"data_dir"`

	// Strict surfaces unreadable stores as ErrParseFailure and drops legacy
	// columns. The default keeps the shop running: unreadable stores are
	// recreated empty, which discards their content.
	Strict bool `json:"strict" yaml:"strict"`

	Admin Account `json:"admin" yaml:"admin"`
}

// Account is the privileged identity seeded into the users dataset.
type Account struct {
	Username string `json:"username" yaml:"username"`
	Password string `json:"password,omitempty" yaml:"password,omitempty"`
	Role     string `json:"role" yaml:"role"`
}

// Defaults for the seeded administrator. There is no default password: one
// is generated when none is configured.
const (
	DefaultAdminUsername = "ADMIN"
	DefaultAdminRole     = RoleAdmin
)

// Config validation errors.
var (
	ErrAdminUsernameInvalid = errors.New("admin username must not be blank")
	ErrAdminRoleInvalid     = errors.New("admin role must not be blank")
)

// WithDefaults fills the administrator identity when it is unset.
func (c Config) WithDefaults() Config {
	if c.Admin.Username == "" {
		c.Admin.Username = DefaultAdminUsername
	}
	if c.Admin.Role == "" {
		c.Admin.Role = DefaultAdminRole
	}
	return c
}

// Validate checks that the Config is well-formed after defaults are applied.
func (c Config) Validate() error {
	if NormalizeIdentity(c.Admin.Username) == "" {
		return ErrAdminUsernameInvalid
	}
	if NormalizeIdentity(c.Admin.Role) == "" {
		return ErrAdminRoleInvalid
	}
	return nil
}
