package main

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/davrell/switchboard/internal/announce"
	"github.com/davrell/switchboard/internal/config"
	"github.com/davrell/switchboard/internal/db"
	"github.com/davrell/switchboard/internal/directory"
	"github.com/davrell/switchboard/internal/dispatch"
	"github.com/davrell/switchboard/internal/mux"
)

// connectFromConfig loads config and returns a GORM DB connection.
func connectFromConfig(configPath string) (*config.Config, *gorm.DB, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	gormDB, err := db.Connect(cfg.Storage)
	if err != nil {
		return nil, nil, fmt.Errorf("connect storage: %w", err)
	}

	return cfg, gormDB, nil
}

// newDirectory builds the session directory over the local tmux server.
func newDirectory(cfg *config.Config) *directory.Directory {
	return directory.New(mux.Tmux{}, cfg.Dispatch.AliasPrefixes)
}

// newDispatcher wires the full delivery stack: tmux, directory, announce hooks.
func newDispatcher(cfg *config.Config, gormDB *gorm.DB) *dispatch.Dispatcher {
	return dispatch.New(gormDB, mux.Tmux{}, newDirectory(cfg), cfg.Dispatch.DataKey, announce.New(cfg.Announce))
}
