package types

import (
	"errors"
	"testing"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr error
	}{
		{
			name:    "defaults are valid",
			config:  Config{DataDir: "/tmp/data"}.WithDefaults(),
			wantErr: nil,
		},
		{
			name:    "blank admin username",
			config:  Config{Admin: Account{Username: "  ", Role: RoleAdmin}},
			wantErr: ErrAdminUsernameInvalid,
		},
		{
			name:    "blank admin role",
			config:  Config{Admin: Account{Username: "owner", Role: ""}},
			wantErr: ErrAdminRoleInvalid,
		},
		{
			name:    "empty DataDir is valid at config level",
			config:  Config{Admin: Account{Username: "owner", Role: "manager"}},
			wantErr: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("expected nil error, got %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error %v, got nil", tt.wantErr)
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected error %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestConfigWithDefaults(t *testing.T) {
	got := Config{}.WithDefaults()
	if got.Admin.Username != DefaultAdminUsername {
		t.Errorf("username = %q, want %q", got.Admin.Username, DefaultAdminUsername)
	}
	if got.Admin.Role != DefaultAdminRole {
		t.Errorf("role = %q, want %q", got.Admin.Role, DefaultAdminRole)
	}
	if got.Admin.Password != "" {
		t.Errorf("password = %q, want no default password", got.Admin.Password)
	}

	kept := Config{Admin: Account{Username: "owner", Role: "manager"}}.WithDefaults()
	if kept.Admin.Username != "owner" || kept.Admin.Role != "manager" {
		t.Errorf("configured admin overwritten: %+v", kept.Admin)
	}
}
