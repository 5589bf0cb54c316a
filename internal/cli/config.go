package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/shopkeep/internal/logger"
	"github.com/mesh-intelligence/shopkeep/internal/paths"
	"github.com/mesh-intelligence/shopkeep/pkg/types"
)

const (
	configFileName = "config"
	configFileType = "yaml"
	configFileExt  = "config.yaml"

	cfgKeyDataDir       = "data_dir"
	cfgKeyStrict        = "strict"
	cfgKeyAdminUsername = "admin.username"
	cfgKeyAdminPassword = "admin.password"
	cfgKeyAdminRole     = "admin.role"
	cfgKeyMasterKey     = "master_key"
	cfgKeyLogLevel      = "log.level"
	cfgKeyLogFormat     = "log.format"

	// Keys under this prefix may be set from the environment, for example
	// SHOPKEEP_ADMIN_PASSWORD.
	envPrefix = "SHOPKEEP"
)

// Session credentials read from the environment when the flags are empty.
const (
	envUser     = "SHOPKEEP_USER"
	envPassword = "SHOPKEEP_PASSWORD"
	envUnlock   = "SHOPKEEP_UNLOCK"
)

// envKeys are the configuration keys the environment can override.
// data_dir is resolved by the paths package instead.
var envKeys = []string{
	cfgKeyStrict,
	cfgKeyAdminUsername,
	cfgKeyAdminPassword,
	cfgKeyAdminRole,
	cfgKeyMasterKey,
	cfgKeyLogLevel,
	cfgKeyLogFormat,
}

// configFile holds the structure written to a fresh config.yaml.
type configFile struct {
	DataDir   string       `yaml:"data_dir,omitempty"`
	Strict    bool         `yaml:"strict"`
	Admin     adminSection `yaml:"admin"`
	MasterKey string       `yaml:"master_key,omitempty"`
	Log       logSection   `yaml:"log"`
}

type adminSection struct {
	Username string `yaml:"username"`
	Role     string `yaml:"role"`
}

type logSection struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

const configHeader = `# Shopkeep configuration.
# The administrator password is not stored here: set admin.password or
# SHOPKEEP_ADMIN_PASSWORD before the first run, or note the generated one
# that init prints.
`

func defaultConfigFile() configFile {
	return configFile{
		Admin: adminSection{Username: types.DefaultAdminUsername, Role: types.DefaultAdminRole},
		Log:   logSection{Level: "info", Format: logger.FormatConsole},
	}
}

// loadConfig reads config.yaml from configDir using Viper. It creates the
// directory and a default config.yaml on first run.
func loadConfig(configDir string) (*viper.Viper, error) {
	if err := ensureConfigDir(configDir); err != nil {
		return nil, fmt.Errorf("ensure config dir: %w", err)
	}
	if _, err := ensureDefaultConfigFile(configDir); err != nil {
		return nil, fmt.Errorf("ensure default config: %w", err)
	}

	def := defaultConfigFile()
	v := viper.New()
	v.SetDefault(cfgKeyStrict, false)
	v.SetDefault(cfgKeyAdminUsername, def.Admin.Username)
	v.SetDefault(cfgKeyAdminRole, def.Admin.Role)
	v.SetDefault(cfgKeyLogLevel, def.Log.Level)
	v.SetDefault(cfgKeyLogFormat, def.Log.Format)
	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for _, key := range envKeys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return v, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	return v, nil
}

func ensureConfigDir(configDir string) error {
	return os.MkdirAll(configDir, 0o755)
}

// ensureDefaultConfigFile writes config.yaml with default values if it does
// not exist and reports whether it did.
func ensureDefaultConfigFile(configDir string) (bool, error) {
	path := filepath.Join(configDir, configFileExt)
	_, err := os.Stat(path)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return false, fmt.Errorf("stat config file: %w", err)
	}

	cfg := defaultConfigFile()
	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return false, fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, append([]byte(configHeader), data...), 0o644); err != nil {
		return false, err
	}
	return true, nil
}

// settings is the resolved configuration for one invocation.
type settings struct {
	configDir string
	store     types.Config
	masterKey string
	log       logger.Config
}

// loadSettings resolves directories and reads config.yaml, applying the
// global flags on top.
func loadSettings() (settings, error) {
	configDir, err := paths.ResolveConfigDir(flags.configDir)
	if err != nil {
		return settings{}, fmt.Errorf("resolve config dir: %w", err)
	}
	v, err := loadConfig(configDir)
	if err != nil {
		return settings{}, err
	}
	dataDir, err := paths.ResolveDataDir(flags.dataDir, v.GetString(cfgKeyDataDir))
	if err != nil {
		return settings{}, fmt.Errorf("resolve data dir: %w", err)
	}

	return settings{
		configDir: configDir,
		store: types.Config{
			DataDir: dataDir,
			Strict:  flags.strict || v.GetBool(cfgKeyStrict),
			Admin: types.Account{
				Username: v.GetString(cfgKeyAdminUsername),
				Password: v.GetString(cfgKeyAdminPassword),
				Role:     v.GetString(cfgKeyAdminRole),
			},
		},
		masterKey: v.GetString(cfgKeyMasterKey),
		log: logger.Config{
			Level:  v.GetString(cfgKeyLogLevel),
			Format: v.GetString(cfgKeyLogFormat),
		},
	}, nil
}
