package sqlite

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/shopkeep/pkg/types"
)

const testAdminPassword = "counter-secret"

// testConfig returns a lenient config rooted at dir with a known
// administrator password.
func testConfig(dir string) types.Config {
	return types.Config{
		DataDir: dir,
		Admin:   types.Account{Username: "admin", Password: testAdminPassword, Role: types.RoleAdmin},
	}
}

// attach opens a backend on cfg and detaches it when the test ends.
func attach(t *testing.T, cfg types.Config) *Backend {
	t.Helper()
	b := NewBackend()
	require.NoError(t, b.Attach(cfg))
	t.Cleanup(func() { b.Detach() })
	return b
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func readFile(t *testing.T, dir, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, name))
	require.NoError(t, err)
	return string(data)
}

func openDataset(t *testing.T, b *Backend, name string) types.Dataset {
	t.Helper()
	d, err := b.Dataset(name)
	require.NoError(t, err)
	return d
}
