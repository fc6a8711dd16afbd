package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"patient-trajectory/internal/config"
	"patient-trajectory/internal/evaluate"
	"patient-trajectory/internal/events"
	"patient-trajectory/internal/eventstore"
	"patient-trajectory/internal/profile"
	"patient-trajectory/internal/trajectory"
	"patient-trajectory/internal/vectorindex"
)

// app wires the configured store, index, engine, and harness for one
// command invocation.
type app struct {
	cfg     config.Config
	log     zerolog.Logger
	store   events.Store
	lin     *profile.Linearizer
	index   vectorindex.Index
	engine  *trajectory.Engine
	harness *evaluate.Harness

	closers []func() error
}

// newApp builds the full dependency graph from the config file named by
// the --config flag.
func newApp(cmd *cobra.Command) (*app, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, log: newLogger(cfg.LogLevel)}

	if err := a.openStore(); err != nil {
		return nil, err
	}

	idx, err := vectorindex.NewTieredIndex(vectorindex.TieredConfig{
		Threshold: cfg.Index.TierThreshold,
		HNSW:      vectorindex.HNSWConfig{Dir: cfg.Index.Dir},
	})
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("opening vector index: %w", err)
	}
	a.index = idx
	a.closers = append(a.closers, idx.Close)

	// The code registry is optional: a failed load degrades to generic
	// labels inside LoadDictionary.
	var dict *profile.Dictionary
	if src, ok := a.store.(profile.DictionarySource); ok {
		dict = profile.LoadDictionary(context.Background(), src, a.log)
	}

	a.lin = profile.NewLinearizer(profile.Config{
		MaxLength:      cfg.Profile.MaxLength,
		RecentEvents:   cfg.Profile.RecentEvents,
		TopDepartments: cfg.Profile.TopDepartments,
		TopCritical:    cfg.Profile.TopCritical,
		QueryWindow:    cfg.Profile.QueryWindow,
	}, dict)

	provider := newProvider(cfg.Embedding)

	a.engine = trajectory.NewEngine(a.store, provider, a.index, a.lin, dict, a.log)
	a.harness = evaluate.NewHarness(a.store, a.engine, a.index, a.log)
	return a, nil
}

// openStore opens the configured event store backend.
func (a *app) openStore() error {
	switch a.cfg.Store.Backend {
	case "postgres":
		db, err := eventstore.OpenPostgres(a.cfg.Store.DSN)
		if err != nil {
			return fmt.Errorf("opening postgres store: %w", err)
		}
		a.store = eventstore.NewPostgresStore(db)
		a.closers = append(a.closers, db.Close)
	default:
		st, err := eventstore.OpenSQLite(a.cfg.Store.DSN)
		if err != nil {
			return fmt.Errorf("opening sqlite store: %w", err)
		}
		a.store = st
		a.closers = append(a.closers, st.Close)
	}
	return nil
}

// Close releases resources in reverse acquisition order.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.log.Warn().Err(err).Msg("close failed")
		}
	}
}
