package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/shopkeep/pkg/types"
)

const testAdminPassword = "counter-secret"

// shopDirs returns fresh config and data directories and sets the admin
// password through the environment.
func shopDirs(t *testing.T) (configDir, dataDir string) {
	t.Helper()
	root := t.TempDir()
	t.Setenv("SHOPKEEP_ADMIN_PASSWORD", testAdminPassword)
	for _, env := range []string{envUser, envPassword, envUnlock, "SHOPKEEP_MASTER_KEY", "SHOPKEEP_CONFIG_DIR", "SHOPKEEP_DATA_DIR"} {
		t.Setenv(env, "")
	}
	return filepath.Join(root, "config"), filepath.Join(root, "data")
}

// run executes the CLI with the given dirs and arguments and returns
// stdout.
func run(t *testing.T, configDir, dataDir string, args ...string) (string, error) {
	t.Helper()
	out, _, err := runCapture(t, configDir, dataDir, args...)
	return out, err
}

// runCapture is run that also returns stderr.
func runCapture(t *testing.T, configDir, dataDir string, args ...string) (string, string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--config-dir", configDir, "--data-dir", dataDir}, args...))
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

var generatedPasswordRE = regexp.MustCompile(`created with password (\S+)`)

// generatedPassword extracts the announced administrator password.
func generatedPassword(t *testing.T, text string) string {
	t.Helper()
	m := generatedPasswordRE.FindStringSubmatch(text)
	require.Len(t, m, 2, "no generated password in %q", text)
	return m[1]
}

func asAdmin(args ...string) []string {
	return append(args, "-u", "admin", "-p", testAdminPassword)
}

func TestVersion(t *testing.T) {
	c, d := shopDirs(t)
	out, err := run(t, c, d, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "shopkeep v"+Version)
	assert.Contains(t, out, modulePath)
}

func TestInit(t *testing.T) {
	c, d := shopDirs(t)
	out, err := run(t, c, d, "init")
	require.NoError(t, err)

	assert.Contains(t, out, "Shop initialized")
	assert.Contains(t, out, "stock: store created")
	assert.NotContains(t, out, "password", "configured password is never echoed")

	for _, name := range []string{"stock.csv", "sales.csv", "repairs.csv", "users.csv"} {
		_, err := os.Stat(filepath.Join(d, name))
		assert.NoError(t, err, name)
	}
	cfg, err := os.ReadFile(filepath.Join(c, configFileExt))
	require.NoError(t, err)
	assert.Contains(t, string(cfg), "username: ADMIN")
	assert.NotContains(t, string(cfg), testAdminPassword)

	out, err = run(t, c, d, "init")
	require.NoError(t, err)
	assert.NotContains(t, out, "store created", "second init changes nothing")
}

func TestInit_GeneratedPassword(t *testing.T) {
	c, d := shopDirs(t)
	t.Setenv("SHOPKEEP_ADMIN_PASSWORD", "")

	out, err := run(t, c, d, "--json", "init")
	require.NoError(t, err)

	var got initOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.NotEmpty(t, got.GeneratedPassword)
	require.Len(t, got.Datasets, 4)

	_, err = run(t, c, d, "login", "-u", "admin", "-p", got.GeneratedPassword)
	require.NoError(t, err)
}

func TestGeneratedPassword_ShownByFirstCommand(t *testing.T) {
	c, d := shopDirs(t)
	t.Setenv("SHOPKEEP_ADMIN_PASSWORD", "")

	out, errOut, err := runCapture(t, c, d, "catalog")
	require.NoError(t, err)
	assert.NotContains(t, out, "password")
	pw := generatedPassword(t, errOut)

	out, err = run(t, c, d, "--json", "init")
	require.NoError(t, err)
	var got initOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Empty(t, got.GeneratedPassword, "the administrator already exists")

	out, err = run(t, c, d, "login", "-u", "admin", "-p", pw)
	require.NoError(t, err)
	assert.Equal(t, "Logged in as ADMIN (ADMIN)\n", out)
}

func TestGeneratedPassword_SurvivesUserReset(t *testing.T) {
	c, d := shopDirs(t)
	t.Setenv("SHOPKEEP_ADMIN_PASSWORD", "")

	out, err := run(t, c, d, "init")
	require.NoError(t, err)
	pw := generatedPassword(t, out)

	_, errOut, err := runCapture(t, c, d, "reset", "users", "-u", "admin", "-p", pw)
	require.NoError(t, err)
	assert.NotContains(t, errOut, "created with password")

	_, err = run(t, c, d, "login", "-u", "admin", "-p", pw)
	require.NoError(t, err)
}

func TestGeneratedPassword_ShownWhenAdminReseeded(t *testing.T) {
	c, d := shopDirs(t)
	t.Setenv("SHOPKEEP_ADMIN_PASSWORD", "")

	_, err := run(t, c, d, "init")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(d, "users.csv"), []byte("username,password,role\n"), 0o644))

	_, errOut, err := runCapture(t, c, d, "ensure", "users")
	require.NoError(t, err)
	pw := generatedPassword(t, errOut)

	_, err = run(t, c, d, "login", "-u", "admin", "-p", pw)
	require.NoError(t, err)
}

func TestEnsure_HealsDrift(t *testing.T) {
	c, d := shopDirs(t)
	require.NoError(t, os.MkdirAll(d, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(d, "sales.csv"),
		[]byte("Invoice_ID,Timestamp,Item,Total,Staff\nINV0001,2024-03-01 09:15,Retail Sale,150,ADMIN\n"), 0o644))

	_, err := run(t, c, d, "init")
	require.NoError(t, err)

	out, err := run(t, c, d, "ensure", "sales")
	require.NoError(t, err)
	assert.Equal(t, "sales: ok (1 rows)\n", out)

	data, err := os.ReadFile(filepath.Join(d, "sales.csv"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "Invoice_ID,Timestamp,Item,Total,Staff,Payment\n"))

	_, err = run(t, c, d, "ensure", "ledger")
	assert.ErrorIs(t, err, types.ErrDatasetNotFound)
}

func TestStrictFlag(t *testing.T) {
	c, d := shopDirs(t)
	require.NoError(t, os.MkdirAll(d, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(d, "stock.csv"), []byte("Barcode,Stock\n1,2,3\n"), 0o644))

	_, err := run(t, c, d, "--strict", "ensure")
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrParseFailure)
	assert.Equal(t, exitSysError, exitCode(err))

	out, err := run(t, c, d, "ensure", "stock")
	require.NoError(t, err)
	assert.Contains(t, out, "ok (0 rows)")
}

func TestShopFlow(t *testing.T) {
	c, d := shopDirs(t)

	_, err := run(t, c, d, asAdmin("stock", "add", "--barcode", "6001", "--name", "USB-C Cable", "--price", "12.50", "--qty", "3")...)
	require.NoError(t, err)
	_, err = run(t, c, d, asAdmin("user", "add", "kofi", "--new-password", "pw")...)
	require.NoError(t, err)

	out, err := run(t, c, d, "sale", "6001", "6001", "-u", "Kofi", "-p", "pw")
	require.NoError(t, err)
	assert.Contains(t, out, "KOFI")
	assert.Contains(t, out, "25.00")

	out, err = run(t, c, d, "--json", "list", "stock", "Barcode=6001")
	require.NoError(t, err)
	var rows []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, 1.0, rows[0][types.ColStock])

	out, err = run(t, c, d, "--json", "repair", "log", "--phone", "0244", "--device", "Tablet", "--issue", "Battery", "-u", "kofi", "-p", "pw")
	require.NoError(t, err)
	var logged map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &logged))
	id := logged["repair_id"]
	require.True(t, strings.HasPrefix(id, "REP-"))

	_, err = run(t, c, d, "repair", "status", id, "Fixed", "--price", "80", "-u", "kofi", "-p", "pw")
	require.NoError(t, err)

	out, err = run(t, c, d, asAdmin("--json", "report")...)
	require.NoError(t, err)
	var dash struct {
		Sales struct {
			Count   int    `json:"count"`
			Revenue string `json:"revenue"`
		} `json:"sales"`
		LowStock []types.StockAlert `json:"low_stock"`
		Repairs  map[string]int     `json:"repairs"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &dash))
	assert.Equal(t, 1, dash.Sales.Count)
	assert.Equal(t, "25", dash.Sales.Revenue)
	require.Len(t, dash.LowStock, 1)
	assert.Equal(t, map[string]int{"Fixed": 1}, dash.Repairs)

	out, err = run(t, c, d, "catalog")
	require.NoError(t, err)
	assert.Contains(t, out, "USB-C Cable")
	assert.Contains(t, out, "In Stock")
}

func TestListMasksPasswords(t *testing.T) {
	c, d := shopDirs(t)
	out, err := run(t, c, d, "list", "users")
	require.NoError(t, err)
	assert.Contains(t, out, "ADMIN")
	assert.Contains(t, out, maskedPassword)
	assert.NotContains(t, out, "$2a$")

	_, err = run(t, c, d, "list", "users", "nokeyvalue")
	assert.Equal(t, exitUserError, exitCode(err))
}

func TestImportCommand(t *testing.T) {
	c, d := shopDirs(t)
	file := filepath.Join(t.TempDir(), "items.csv")
	require.NoError(t, os.WriteFile(file, []byte("Barcode,Product Name,Selling Price,Stock\n9001,Case,20,5\n9002,Strap,x,1\n"), 0o644))

	out, err := run(t, c, d, asAdmin("--json", "stock", "import", file)...)
	require.NoError(t, err)
	var res struct {
		Added     int `json:"added"`
		Defaulted int `json:"defaulted"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, 2, res.Added)
	assert.Equal(t, 1, res.Defaulted)
}

func TestAccessControl(t *testing.T) {
	c, d := shopDirs(t)
	_, err := run(t, c, d, asAdmin("user", "add", "ama", "--new-password", "pw")...)
	require.NoError(t, err)

	_, err = run(t, c, d, "reset", "stock", "-u", "ama", "-p", "pw")
	assert.ErrorIs(t, err, types.ErrForbidden)
	assert.Equal(t, exitUserError, exitCode(err))

	_, err = run(t, c, d, "reset", "stock", "-u", "ama", "-p", "wrong")
	assert.ErrorIs(t, err, types.ErrInvalidCredentials)

	_, err = run(t, c, d, "report")
	assert.ErrorIs(t, err, types.ErrUnauthenticated)

	out, err := run(t, c, d, asAdmin("reset", "stock")...)
	require.NoError(t, err)
	assert.Equal(t, "stock reset\n", out)
}

func TestMasterKey(t *testing.T) {
	c, d := shopDirs(t)
	t.Setenv("SHOPKEEP_MASTER_KEY", "open-sesame")

	_, err := run(t, c, d, asAdmin("login")...)
	assert.ErrorIs(t, err, types.ErrInvalidMasterKey)

	out, err := run(t, c, d, asAdmin("login", "--unlock", "open-sesame")...)
	require.NoError(t, err)
	assert.Equal(t, "Logged in as ADMIN (ADMIN)\n", out)
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, exitSuccess},
		{"usage", usageError{errors.New("bad flag")}, exitUserError},
		{"wrapped credentials", fmt.Errorf("login: %w", types.ErrInvalidCredentials), exitUserError},
		{"empty cart", types.ErrEmptyCart, exitUserError},
		{"parse failure", fmt.Errorf("ensure: %w", types.ErrParseFailure), exitSysError},
		{"io", os.ErrPermission, exitSysError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, exitCode(tt.err))
		})
	}
}
