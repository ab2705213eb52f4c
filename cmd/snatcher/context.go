package main

import (
	"context"
	"database/sql"
	"sync"

	"snatcher/internal/config"
	"snatcher/internal/core"
	"snatcher/internal/database"
	"snatcher/internal/utils"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	logger     *utils.Logger
	configErr  error

	db      *sql.DB
	manager *core.Manager
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, err := config.Load(*c.configFlag)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.logger = utils.NewLoggerWithFile(cfg.App.Debug, cfg.App.LogFile)
	})
	return c.config, c.configErr
}

// ensureManager opens the database, runs migrations and builds the manager.
func (c *commandContext) ensureManager(ctx context.Context) (*core.Manager, error) {
	if c.manager != nil {
		return c.manager, nil
	}
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}

	db, err := database.NewSQLite(cfg.Database.Path)
	if err != nil {
		return nil, err
	}
	if err := database.RunMigrations(db, c.logger); err != nil {
		db.Close()
		return nil, err
	}

	manager, err := core.NewManager(ctx, cfg, db, c.logger)
	if err != nil {
		db.Close()
		return nil, err
	}
	c.db = db
	c.manager = manager
	return manager, nil
}

func (c *commandContext) close() {
	if c.db != nil {
		c.db.Close()
		c.db = nil
	}
}
