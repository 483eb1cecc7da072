package services

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/custodia-labs/solrsync/internal/core/domain"
	"github.com/custodia-labs/solrsync/internal/core/ports/driven"
	"github.com/custodia-labs/solrsync/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
const (
	keyDefaultEndpoint   = "solr.default_endpoint"
	keyRequestsPerSecond = "solr.requests_per_second"
	keyEndpointsPrefix   = "solr.endpoints."
	keySourceDriver      = "source.driver"
	keySourceDSN         = "source.dsn"
	keySourceDatabase    = "source.database"
	keyBatchSize         = "sync.batch_size"
	keyConfirmThreshold  = "sync.confirm_threshold"
	keyWorkers           = "sync.workers"
	keyLogLevel          = "log.level"
	keyLogFormat         = "log.format"
)

// Per-endpoint keys below solr.endpoints.<name>.
const (
	endpointDSN     = "dsn"
	endpointScheme  = "scheme"
	endpointHost    = "host"
	endpointPort    = "port"
	endpointPath    = "path"
	endpointCore    = "core"
	endpointTimeout = "timeout"
	endpointActive  = "active"
)

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{
		configStore: configStore,
	}
}

// Get retrieves current application settings. Missing or invalid values
// fall back to defaults.
func (s *SettingsService) Get() (*domain.Settings, error) {
	defaults := domain.DefaultSettings()

	endpoints, err := s.getEndpoints()
	if err != nil {
		return nil, err
	}
	if len(endpoints) == 0 {
		endpoints = defaults.Endpoints
	}

	settings := &domain.Settings{
		Endpoints:         endpoints,
		DefaultEndpoint:   s.configStore.GetString(keyDefaultEndpoint),
		RequestsPerSecond: s.configStore.GetFloat(keyRequestsPerSecond),
		Source: domain.SourceSettings{
			Driver:   s.getDriver(defaults.Source.Driver),
			DSN:      s.configStore.GetString(keySourceDSN),
			Database: s.configStore.GetString(keySourceDatabase),
		},
		Sync: domain.SyncSettings{
			BatchSize:        s.getInt(keyBatchSize, defaults.Sync.BatchSize),
			ConfirmThreshold: s.getInt(keyConfirmThreshold, defaults.Sync.ConfirmThreshold),
			Workers:          s.getInt(keyWorkers, defaults.Sync.Workers),
		},
		Log: domain.LogSettings{
			Level:  s.configStore.GetString(keyLogLevel),
			Format: s.getString(keyLogFormat, defaults.Log.Format),
		},
	}

	return settings, nil
}

// Save persists application settings.
func (s *SettingsService) Save(settings *domain.Settings) error {
	values := []struct {
		key   string
		value any
	}{
		{keyDefaultEndpoint, settings.DefaultEndpoint},
		{keyRequestsPerSecond, settings.RequestsPerSecond},
		{keySourceDriver, settings.Source.Driver.String()},
		{keySourceDSN, settings.Source.DSN},
		{keySourceDatabase, settings.Source.Database},
		{keyBatchSize, settings.Sync.BatchSize},
		{keyConfirmThreshold, settings.Sync.ConfirmThreshold},
		{keyWorkers, settings.Sync.Workers},
		{keyLogLevel, settings.Log.Level},
		{keyLogFormat, settings.Log.Format},
	}

	names := make([]string, 0, len(settings.Endpoints))
	for name := range settings.Endpoints {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		ep := settings.Endpoints[name]
		prefix := keyEndpointsPrefix + name + "."
		values = append(values, []struct {
			key   string
			value any
		}{
			{prefix + endpointDSN, ep.DSN},
			{prefix + endpointScheme, ep.Scheme},
			{prefix + endpointHost, ep.Host},
			{prefix + endpointPort, ep.Port},
			{prefix + endpointPath, ep.Path},
			{prefix + endpointCore, ep.Core},
			{prefix + endpointTimeout, ep.Timeout.String()},
			{prefix + endpointActive, ep.Active},
		}...)
	}

	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}
	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.Settings {
	return domain.DefaultSettings()
}

// getEndpoints reads every table below solr.endpoints. Unset values take
// the defaults of a local endpoint.
func (s *SettingsService) getEndpoints() (map[string]domain.Endpoint, error) {
	endpoints := make(map[string]domain.Endpoint)
	for _, key := range s.configStore.Keys(keyEndpointsPrefix) {
		name, _, found := strings.Cut(strings.TrimPrefix(key, keyEndpointsPrefix), ".")
		if !found {
			continue
		}
		if _, done := endpoints[name]; done {
			continue
		}

		ep, err := s.getEndpoint(name)
		if err != nil {
			return nil, err
		}
		endpoints[name] = ep
	}
	return endpoints, nil
}

func (s *SettingsService) getEndpoint(name string) (domain.Endpoint, error) {
	defaults := domain.DefaultEndpointSettings()
	prefix := keyEndpointsPrefix + name + "."

	ep := domain.Endpoint{
		Name:    name,
		DSN:     s.configStore.GetString(prefix + endpointDSN),
		Scheme:  s.getString(prefix+endpointScheme, defaults.Scheme),
		Host:    s.getString(prefix+endpointHost, defaults.Host),
		Port:    s.getInt(prefix+endpointPort, defaults.Port),
		Path:    s.getString(prefix+endpointPath, defaults.Path),
		Core:    s.getString(prefix+endpointCore, defaults.Core),
		Timeout: defaults.Timeout,
		Active:  s.getBool(prefix+endpointActive, defaults.Active),
	}

	if raw, ok := s.configStore.Get(prefix + endpointTimeout); ok {
		timeout, err := parseTimeout(raw)
		if err != nil {
			return domain.Endpoint{}, fmt.Errorf("%w: endpoint %s: %w", domain.ErrInvalidInput, name, err)
		}
		ep.Timeout = timeout
	}
	return ep, nil
}

// parseTimeout accepts a duration string or a number of seconds.
func parseTimeout(raw any) (time.Duration, error) {
	switch v := raw.(type) {
	case string:
		d, err := time.ParseDuration(v)
		if err != nil {
			return 0, fmt.Errorf("timeout %q: %w", v, err)
		}
		return d, nil
	case int64:
		return time.Duration(v) * time.Second, nil
	case int:
		return time.Duration(v) * time.Second, nil
	case float64:
		return time.Duration(v * float64(time.Second)), nil
	default:
		return 0, fmt.Errorf("timeout: unsupported value %v", raw)
	}
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val == 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetBool(key)
}

func (s *SettingsService) getDriver(defaultVal domain.SourceDriver) domain.SourceDriver {
	val := s.configStore.GetString(keySourceDriver)
	if val == "" {
		return defaultVal
	}
	driver := domain.SourceDriver(val)
	if !driver.IsValid() {
		return defaultVal
	}
	return driver
}
