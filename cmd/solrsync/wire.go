package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/custodia-labs/solrsync/internal/adapters/driven/config/environ"
	"github.com/custodia-labs/solrsync/internal/adapters/driven/config/file"
	memrecords "github.com/custodia-labs/solrsync/internal/adapters/driven/records/memory"
	"github.com/custodia-labs/solrsync/internal/adapters/driven/records/mongo"
	"github.com/custodia-labs/solrsync/internal/adapters/driven/records/sqlite"
	"github.com/custodia-labs/solrsync/internal/adapters/driven/solr"
	"github.com/custodia-labs/solrsync/internal/adapters/driven/storage/memory"
	state "github.com/custodia-labs/solrsync/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/solrsync/internal/adapters/driving/cli"
	"github.com/custodia-labs/solrsync/internal/catalog"
	"github.com/custodia-labs/solrsync/internal/core/domain"
	"github.com/custodia-labs/solrsync/internal/core/ports/driven"
	"github.com/custodia-labs/solrsync/internal/core/ports/driving"
	"github.com/custodia-labs/solrsync/internal/core/services"
	"github.com/custodia-labs/solrsync/internal/logger"
	"github.com/custodia-labs/solrsync/internal/mapping"
)

// memoryScheme selects the in-process index instead of a Solr server.
const memoryScheme = "memory"

// build wires the services for one command. Connections to the record
// store are opened on first use so that commands which never read records
// work without one.
func build(ctx context.Context, opts cli.GlobalOptions) (*cli.Services, error) {
	configStore, err := file.NewConfigStore(opts.ConfigDir)
	if err != nil {
		return nil, fmt.Errorf("open configuration: %w", err)
	}
	overrides, err := environ.Load()
	if err != nil {
		return nil, err
	}
	settingsService := &overriddenSettings{
		SettingsService: services.NewSettingsService(configStore),
		overrides:       overrides,
	}

	settings, err := settingsService.Get()
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	logger.SetFormat(settings.Log.Format)
	logger.SetLevel(settings.Log.Level)

	registry := catalog.NewRegistry()
	mapper := mapping.NewMapper(registry)
	facades := facadeFactory(settings, opts.Endpoint, mapper)

	runs, err := state.NewStore(dataDir(opts.ConfigDir))
	if err != nil {
		return nil, fmt.Errorf("open state store: %w", err)
	}

	source := &lazySource{open: func() (driven.RecordSource, error) {
		return openSource(ctx, settings.Source, registry)
	}}

	orchestrator := services.NewSyncOrchestrator(registry, source, facades, cli.NewTerminalConfirmer(), runs.SyncRunStore())
	orchestrator.SetConfirmThreshold(settings.Sync.ConfirmThreshold)

	index, err := facades()
	if err != nil {
		logger.Debug("Index unavailable: %v", err)
		index = unavailableIndex{err: err}
	}

	return &cli.Services{
		Index:    index,
		Sync:     orchestrator,
		Schema:   services.NewSchemaService(registry),
		Settings: settingsService,
		Close: func() error {
			return errors.Join(index.Close(), source.Close(), runs.Close())
		},
	}, nil
}

// dataDir places the state database below the configuration directory.
func dataDir(configDir string) string {
	if configDir == "" {
		return ""
	}
	return filepath.Join(configDir, "data")
}

// facadeFactory returns a factory opening the selected endpoint. Every call
// creates its own Solr client; the in-process index is shared.
func facadeFactory(settings *domain.Settings, endpoint string, mapper *mapping.Mapper) services.FacadeFactory {
	ep, err := settings.ActiveEndpoint(endpoint)
	if err != nil {
		return func() (driving.IndexService, error) { return nil, err }
	}

	if strings.HasPrefix(ep.URL(), memoryScheme+":") {
		shared := sharedClient{memory.NewIndexClient()}
		return func() (driving.IndexService, error) {
			return services.NewIndexFacade(shared, mapper), nil
		}
	}

	cfg := solr.ConfigFromEndpoint(ep, settings.RequestsPerSecond)
	return func() (driving.IndexService, error) {
		client, err := solr.NewClient(cfg)
		if err != nil {
			return nil, err
		}
		logger.Debug("Using endpoint %s at %s", ep.Name, cfg.BaseURL)
		return services.NewIndexFacade(client, mapper), nil
	}
}

// openSource connects to the configured record store.
func openSource(ctx context.Context, cfg domain.SourceSettings, registry *mapping.Registry) (driven.RecordSource, error) {
	switch cfg.Driver {
	case domain.SourceDriverSQLite:
		return sqlite.NewSource(ctx, sqlite.Config{DSN: cfg.DSN}, registry)
	case domain.SourceDriverMongoDB:
		return mongo.NewSource(ctx, mongo.Config{URI: cfg.DSN, Database: cfg.Database}, registry)
	case domain.SourceDriverMemory:
		src := memrecords.NewSource()
		for name, records := range catalog.Samples() {
			src.Put(name, memrecords.NewRepository(records...))
		}
		return src, nil
	default:
		return nil, fmt.Errorf("%w: unknown source driver %q", domain.ErrConfiguration, cfg.Driver)
	}
}

// overriddenSettings applies the environment overrides on every read.
// Saving writes what it is given.
type overriddenSettings struct {
	driving.SettingsService
	overrides *environ.Overrides
}

func (s *overriddenSettings) Get() (*domain.Settings, error) {
	settings, err := s.SettingsService.Get()
	if err != nil {
		return nil, err
	}
	if err := s.overrides.Apply(settings); err != nil {
		return nil, err
	}
	return settings, nil
}

// lazySource opens the record store on the first repository lookup.
type lazySource struct {
	open func() (driven.RecordSource, error)

	once sync.Once
	src  driven.RecordSource
	err  error
}

func (s *lazySource) Repository(typeName string) (driven.RecordRepository, error) {
	s.once.Do(func() {
		s.src, s.err = s.open()
	})
	if s.err != nil {
		return nil, fmt.Errorf("open record source: %w", s.err)
	}
	return s.src.Repository(typeName)
}

func (s *lazySource) Close() error {
	if s.src == nil {
		return nil
	}
	return s.src.Close()
}

// sharedClient keeps the in-process index open when a facade closes.
type sharedClient struct {
	*memory.IndexClient
}

func (sharedClient) Close() error { return nil }

// unavailableIndex reports why the index cannot be reached.
type unavailableIndex struct {
	err error
}

func (u unavailableIndex) fail(op string) error {
	return &domain.IndexError{Op: op, Err: u.err}
}

func (u unavailableIndex) Index(context.Context, any) error               { return u.fail("index") }
func (u unavailableIndex) SynchronizeIndex(context.Context, ...any) error { return u.fail("index") }
func (u unavailableIndex) Remove(context.Context, any) error              { return u.fail("remove") }
func (u unavailableIndex) ClearIndex(context.Context) error               { return u.fail("clear") }
func (u unavailableIndex) Close() error                                   { return nil }

func (u unavailableIndex) Query(context.Context, domain.SearchQuery) []any {
	logger.Error("Query failed: %v", u.err)
	return []any{}
}
