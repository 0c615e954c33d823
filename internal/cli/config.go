package cli

import (
	"fmt"
	"os"

	"github.com/spf13/viper"

	"github.com/mesh-intelligence/satchel/internal/logger"
	"github.com/mesh-intelligence/satchel/internal/paths"
	"github.com/mesh-intelligence/satchel/pkg/types"
)

const (
	configFileName = "config"
	configFileType = "yaml"

	envPrefix = "SATCHEL"
)

// Config keys.
const (
	cfgKeyBackend       = "backend"
	cfgKeyDataDir       = "data_dir"
	cfgKeyDSN           = "dsn"
	cfgKeyCachePrefix   = "cache_key_prefix"
	cfgKeyCacheDriver   = "cache.driver"
	cfgKeyCacheSize     = "cache.size"
	cfgKeyCacheAddress  = "cache.address"
	cfgKeyCachePassword = "cache.password"
	cfgKeyCacheDB       = "cache.db"
	cfgKeyLogLevel      = "log.level"
	cfgKeyLogFormat     = "log.format"
)

// envKeys are the config keys overridable by SATCHEL_* variables. data_dir
// is resolved by the paths package instead.
var envKeys = map[string]string{
	cfgKeyBackend:       "SATCHEL_BACKEND",
	cfgKeyDSN:           "SATCHEL_DSN",
	cfgKeyCachePrefix:   "SATCHEL_CACHE_KEY_PREFIX",
	cfgKeyCacheDriver:   "SATCHEL_CACHE_DRIVER",
	cfgKeyCacheSize:     "SATCHEL_CACHE_SIZE",
	cfgKeyCacheAddress:  "SATCHEL_CACHE_ADDRESS",
	cfgKeyCachePassword: "SATCHEL_CACHE_PASSWORD",
	cfgKeyCacheDB:       "SATCHEL_CACHE_DB",
	cfgKeyLogLevel:      "SATCHEL_LOG_LEVEL",
	cfgKeyLogFormat:     "SATCHEL_LOG_FORMAT",
}

// settings is everything the CLI reads from config.yaml and the environment.
type settings struct {
	Config    types.Config
	LogLevel  string
	LogFormat string
}

// loadConfig reads config.yaml from configDir using Viper. A missing
// config.yaml is not an error; defaults apply.
func loadConfig(configDir string) (*viper.Viper, error) {
	v := viper.New()
	v.SetDefault(cfgKeyBackend, types.BackendSQLite)
	v.SetDefault(cfgKeyCachePrefix, types.DefaultCacheKeyPrefix)
	v.SetDefault(cfgKeyCacheDriver, types.CacheMemory)
	v.SetDefault(cfgKeyCacheSize, types.DefaultLRUSize)
	v.SetDefault(cfgKeyLogLevel, "info")
	v.SetDefault(cfgKeyLogFormat, logger.FormatConsole)

	v.SetEnvPrefix(envPrefix)
	for key, env := range envKeys {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("bind %s: %w", env, err)
		}
	}

	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return v, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	return v, nil
}

// readSettings builds validated settings from v. The data directory follows
// the --data-dir flag, then config.yaml, then SATCHEL_DATA_DIR.
func readSettings(v *viper.Viper) (settings, error) {
	var cfg types.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return settings{}, fmt.Errorf("decode config: %w", err)
	}

	if cfg.Backend == types.BackendSQLite {
		dataDir, err := paths.ResolveDataDir(flags.dataDir, v.GetString(cfgKeyDataDir))
		if err != nil {
			return settings{}, fmt.Errorf("resolve data dir: %w", err)
		}
		cfg.DataDir = dataDir
	}

	if err := cfg.Validate(); err != nil {
		return settings{}, fmt.Errorf("invalid config: %w", err)
	}

	return settings{
		Config:    cfg,
		LogLevel:  v.GetString(cfgKeyLogLevel),
		LogFormat: v.GetString(cfgKeyLogFormat),
	}, nil
}

// ensureDefaultConfigFile creates config.yaml in configDir unless it exists.
func ensureDefaultConfigFile(configDir string, cfg configFile) (bool, error) {
	path := paths.ConfigFile(configDir)

	_, err := os.Stat(path)
	if err == nil {
		return false, nil
	}
	if !os.IsNotExist(err) {
		return false, fmt.Errorf("stat config file: %w", err)
	}

	data, err := cfg.marshal()
	if err != nil {
		return false, err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return false, err
	}
	return true, nil
}
