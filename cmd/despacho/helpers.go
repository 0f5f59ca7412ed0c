package main

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	"github.com/comexar/despacho/internal/common"
	"github.com/comexar/despacho/internal/config"
	"github.com/comexar/despacho/internal/engine"
	"github.com/comexar/despacho/internal/nomenclature"
	"github.com/comexar/despacho/internal/oracle"
	"github.com/comexar/despacho/internal/storage"
)

// loadTable loads the NCM dataset named in configuration.
func loadTable() (*nomenclature.Table, error) {
	path := viper.GetString("dataset.path")
	if path == "" {
		return nil, common.NewUserError("no dataset configured: set dataset.path or pass --dataset", common.ErrMissingConfig)
	}
	return nomenclature.LoadCSV(config.ExpandPath(path))
}

// newOracle builds the LLM oracle from configuration.
func newOracle(logger *slog.Logger) (*oracle.Oracle, error) {
	cfg := oracle.Config{
		Provider:    viper.GetString("oracle.provider"),
		APIKey:      viper.GetString("oracle.api_key"),
		Model:       viper.GetString("oracle.model"),
		MaxRetries:  viper.GetInt("oracle.max_retries"),
		RetryDelay:  viper.GetDuration("oracle.retry_delay"),
		CacheTTL:    viper.GetDuration("oracle.cache_ttl"),
		RateLimit:   viper.GetInt("oracle.rate_limit"),
		Temperature: viper.GetFloat64("oracle.temperature"),
		MaxTokens:   viper.GetInt("oracle.max_tokens"),
	}
	if cfg.Provider == "" {
		cfg.Provider = "openai"
	}
	if cfg.RetryDelay == 0 {
		cfg.RetryDelay = time.Second
	}
	if cfg.APIKey == "" {
		return nil, common.NewUserError("no oracle API key configured: set oracle.api_key or DESPACHO_ORACLE_API_KEY", common.ErrMissingConfig)
	}
	return oracle.New(cfg, logger)
}

// buildEngine wires the classification engine from configuration. The
// returned cleanup closes the oracle.
func buildEngine(logger *slog.Logger) (*engine.Engine, func(), error) {
	table, err := loadTable()
	if err != nil {
		return nil, nil, err
	}

	orc, err := newOracle(logger)
	if err != nil {
		return nil, nil, err
	}

	cfg := engine.DefaultConfig()
	if workers := viper.GetInt("engine.workers"); workers > 0 {
		cfg.Workers = workers
	}
	if maxCandidates := viper.GetInt("engine.max_candidates"); maxCandidates > 0 {
		cfg.MaxCandidates = maxCandidates
	}

	e := engine.NewWithConfig(table, orc, orc, logger, cfg)
	cleanup := func() { _ = orc.Close() }
	return e, cleanup, nil
}

// initStorage opens the classification database, running migrations.
func initStorage(ctx context.Context) (*storage.SQLiteStorage, error) {
	dbPath := viper.GetString("database.path")
	if dbPath == "" {
		dir, err := config.DataDir()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve data directory: %w", err)
		}
		dbPath = filepath.Join(dir, "despacho.db")
	} else {
		dbPath = config.ExpandPath(dbPath)
	}

	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}
