package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/satchel/internal/logger"
	"github.com/mesh-intelligence/satchel/internal/paths"
	"github.com/mesh-intelligence/satchel/pkg/types"
)

// configFile holds the structure written to config.yaml.
type configFile struct {
	Backend        string       `yaml:"backend"`
	DataDir        string       `yaml:"data_dir,omitempty"`
	CacheKeyPrefix string       `yaml:"cache_key_prefix"`
	Cache          cacheSection `yaml:"cache"`
	Log            logSection   `yaml:"log"`
}

type cacheSection struct {
	Driver string `yaml:"driver"`
}

type logSection struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

const configHeader = "# satchel configuration\n" +
	"# backend: sqlite | postgres (postgres requires dsn)\n" +
	"# cache.driver: memory | lru | redis\n"

func (c configFile) marshal() ([]byte, error) {
	data, err := yaml.Marshal(&c)
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}
	return append([]byte(configHeader), data...), nil
}

func defaultConfigFile(dataDir string) configFile {
	return configFile{
		Backend:        types.BackendSQLite,
		DataDir:        dataDir,
		CacheKeyPrefix: types.DefaultCacheKeyPrefix,
		Cache:          cacheSection{Driver: types.CacheMemory},
		Log:            logSection{Level: "info", Format: logger.FormatConsole},
	}
}

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize satchel storage",
		Long:  "Create the configuration directory and config.yaml, then create the storage schema.",
		Args:  cobra.NoArgs,
		RunE:  runInit,
	}
}

func runInit(cmd *cobra.Command, args []string) error {
	configDir, err := paths.ResolveConfigDir(flags.configDir)
	if err != nil {
		return exitError(exitSysError, fmt.Errorf("resolve config dir: %w", err))
	}

	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return exitError(exitSysError, fmt.Errorf("create config directory: %w", err))
	}
	if _, err := ensureDefaultConfigFile(configDir, defaultConfigFile(flags.dataDir)); err != nil {
		return exitError(exitSysError, fmt.Errorf("write config: %w", err))
	}

	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	dataDir := a.settings.Config.DataDir
	if err := a.close(); err != nil {
		return exitError(exitSysError, fmt.Errorf("finalize storage: %w", err))
	}

	if flags.jsonMode {
		return writeJSON(cmd, map[string]string{
			"config_dir": configDir,
			"data_dir":   dataDir,
		})
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Satchel initialized successfully")
	return nil
}
