package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/satchel/internal/cache"
	"github.com/mesh-intelligence/satchel/internal/logger"
	"github.com/mesh-intelligence/satchel/internal/paths"
	"github.com/mesh-intelligence/satchel/internal/profiles"
	"github.com/mesh-intelligence/satchel/internal/sqlstore"
	"github.com/mesh-intelligence/satchel/pkg/properties"
	"github.com/mesh-intelligence/satchel/pkg/types"
)

// app is the process-wide wiring of one command run: the attached backend,
// the cache driver and the properties engine over them.
type app struct {
	configDir string
	settings  settings
	log       *zap.Logger

	backend  *sqlstore.Backend
	cache    cache.Driver
	catalog  types.Catalog
	engine   *properties.Engine
	profiles *profiles.Repository
}

// openApp loads configuration, initializes logging and attaches storage.
// The caller must call close. Returned errors carry their exit code.
func openApp(cmd *cobra.Command) (*app, error) {
	configDir, err := paths.ResolveConfigDir(flags.configDir)
	if err != nil {
		return nil, exitError(exitSysError, fmt.Errorf("resolve config dir: %w", err))
	}

	v, err := loadConfig(configDir)
	if err != nil {
		return nil, exitError(exitUserError, err)
	}
	s, err := readSettings(v)
	if err != nil {
		return nil, exitError(exitUserError, err)
	}

	if err := logger.Init(s.LogLevel, s.LogFormat); err != nil {
		return nil, exitError(exitUserError, err)
	}
	if flags.verbose {
		if err := logger.SetLevel("debug"); err != nil {
			return nil, exitError(exitSysError, err)
		}
	}
	log := logger.L().With(zap.String("command", cmd.CommandPath()))
	log.Debug("logger ready", zap.Stringer("level", logger.Level()))

	backend := sqlstore.NewBackend()
	if err := backend.Attach(s.Config); err != nil {
		return nil, exitError(exitSysError, fmt.Errorf("attach backend: %w", err))
	}

	driver, err := cache.New(s.Config.Cache)
	if err != nil {
		backend.Detach()
		return nil, exitError(exitUserError, fmt.Errorf("cache: %w", err))
	}

	catalog, err := backend.Catalog()
	if err != nil {
		backend.Detach()
		return nil, exitError(exitSysError, err)
	}
	values, err := backend.Values()
	if err != nil {
		backend.Detach()
		return nil, exitError(exitSysError, err)
	}
	table, err := backend.Profiles()
	if err != nil {
		backend.Detach()
		return nil, exitError(exitSysError, err)
	}

	engine := properties.NewEngine(catalog, values,
		properties.WithCache(driver),
		properties.WithKeyPrefix(s.Config.KeyPrefix()),
		properties.WithLogger(log),
	)

	log.Debug("storage attached",
		zap.String("backend", s.Config.Backend),
		zap.String("data_dir", s.Config.DataDir),
		zap.String("cache", s.Config.Cache.Driver))

	return &app{
		configDir: configDir,
		settings:  s,
		log:       log,
		backend:   backend,
		cache:     driver,
		catalog:   catalog,
		engine:    engine,
		profiles:  profiles.NewRepository(table, engine),
	}, nil
}

// close releases the cache driver and detaches the backend.
func (a *app) close() error {
	return errors.Join(a.cache.Close(), a.backend.Detach())
}
