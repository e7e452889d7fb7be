package main

import (
	"log/slog"
	"strings"
	"sync"

	"refcat/internal/catalog"
	"refcat/internal/config"
	"refcat/internal/fetch"
	"refcat/internal/history"
	"refcat/internal/logging"
	"refcat/internal/registry"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// runtime bundles the wired components a fetch-style command needs.
type runtime struct {
	cfg          *config.Config
	logger       *slog.Logger
	orchestrator *fetch.Orchestrator
	store        *history.Store
}

func (c *commandContext) buildRuntime() (*runtime, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return nil, err
	}

	client := catalog.NewClient(cfg)
	reg := registry.New(cfg.Output.RegistryPath, logger)
	resolver := catalog.NewResolver(client, reg, logger)

	var store *history.Store
	if cfg.History.Enabled {
		store, err = history.Open(cfg.History.Path)
		if err != nil {
			return nil, err
		}
	}

	return &runtime{
		cfg:          cfg,
		logger:       logger,
		orchestrator: fetch.New(client, resolver, store, cfg.Output.Dir, logger),
		store:        store,
	}, nil
}

func (r *runtime) close() {
	if r.store != nil {
		_ = r.store.Close()
	}
}
