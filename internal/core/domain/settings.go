package domain

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"
)

const unknownDescription = "Unknown"

// SourceDriver identifies the kind of data store records are read from.
type SourceDriver string

// Available source drivers.
const (
	// SourceDriverSQLite reads records from a relational SQLite database.
	SourceDriverSQLite SourceDriver = "sqlite"

	// SourceDriverMongoDB reads records from a MongoDB database.
	SourceDriverMongoDB SourceDriver = "mongodb"

	// SourceDriverMemory serves records held in process memory.
	SourceDriverMemory SourceDriver = "memory"
)

// IsValid returns true if the driver is recognised.
func (d SourceDriver) IsValid() bool {
	switch d {
	case SourceDriverSQLite, SourceDriverMongoDB, SourceDriverMemory:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (d SourceDriver) String() string {
	return string(d)
}

// Description returns a human-readable description of the driver.
func (d SourceDriver) Description() string {
	switch d {
	case SourceDriverSQLite:
		return "SQLite (relational)"
	case SourceDriverMongoDB:
		return "MongoDB (document)"
	case SourceDriverMemory:
		return "In-memory"
	default:
		return unknownDescription
	}
}

// Endpoint is one configured index server endpoint.
type Endpoint struct {
	// Name is the endpoint key in the configuration.
	Name string

	// DSN is a full URL; when set it takes precedence over the parts below.
	DSN string

	Scheme string
	Host   string
	Port   int
	Path   string
	Core   string

	// Timeout bounds each request to the server.
	Timeout time.Duration

	// Active endpoints are eligible for selection.
	Active bool
}

// URL returns the base URL of the endpoint's core.
func (e Endpoint) URL() string {
	if e.DSN != "" {
		return strings.TrimRight(e.DSN, "/")
	}
	u := url.URL{
		Scheme: e.Scheme,
		Host:   fmt.Sprintf("%s:%d", e.Host, e.Port),
		Path:   "/" + strings.Trim(strings.Trim(e.Path, "/")+"/"+strings.Trim(e.Core, "/"), "/"),
	}
	return u.String()
}

// SourceSettings configures the record data store.
type SourceSettings struct {
	// Driver selects the repository implementation.
	Driver SourceDriver

	// DSN is the connection string (file path for SQLite, URI for MongoDB).
	DSN string

	// Database is the MongoDB database name.
	Database string
}

// SyncSettings holds pipeline defaults.
type SyncSettings struct {
	BatchSize        int
	ConfirmThreshold int
	Workers          int
}

// LogSettings configures logging.
type LogSettings struct {
	// Level is a logrus level name; empty keeps the --verbose behaviour.
	Level string

	// Format is "text" or "json".
	Format string
}

// Settings holds all application settings.
type Settings struct {
	// Endpoints holds the configured index server endpoints by name.
	Endpoints map[string]Endpoint

	// DefaultEndpoint names the endpoint used when none is requested.
	DefaultEndpoint string

	// RequestsPerSecond throttles requests to the index server; zero disables throttling.
	RequestsPerSecond float64

	Source SourceSettings
	Sync   SyncSettings
	Log    LogSettings
}

// DefaultEndpointName is the name of the endpoint present when none is configured.
const DefaultEndpointName = "default"

// DefaultEndpointSettings returns a local Solr endpoint.
func DefaultEndpointSettings() Endpoint {
	return Endpoint{
		Name:    DefaultEndpointName,
		Scheme:  "http",
		Host:    "localhost",
		Port:    8983,
		Path:    "/solr",
		Core:    "collection1",
		Timeout: 5 * time.Second,
		Active:  true,
	}
}

// DefaultSettings returns settings with sensible defaults.
func DefaultSettings() Settings {
	return Settings{
		Endpoints: map[string]Endpoint{
			DefaultEndpointName: DefaultEndpointSettings(),
		},
		Source: SourceSettings{
			Driver: SourceDriverSQLite,
		},
		Sync: SyncSettings{
			BatchSize:        DefaultBatchSize,
			ConfirmThreshold: DefaultConfirmThreshold,
			Workers:          1,
		},
		Log: LogSettings{
			Format: "text",
		},
	}
}

// ActiveEndpoint returns the endpoint to use. A non-empty name selects that
// endpoint; otherwise DefaultEndpoint, then the first active endpoint by name.
func (s Settings) ActiveEndpoint(name string) (Endpoint, error) {
	if name == "" {
		name = s.DefaultEndpoint
	}
	if name != "" {
		ep, ok := s.Endpoints[name]
		if !ok {
			return Endpoint{}, fmt.Errorf("endpoint %q: %w", name, ErrNotFound)
		}
		if !ep.Active {
			return Endpoint{}, fmt.Errorf("%w: endpoint %q is not active", ErrInvalidInput, name)
		}
		return ep, nil
	}

	names := make([]string, 0, len(s.Endpoints))
	for n := range s.Endpoints {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		if s.Endpoints[n].Active {
			return s.Endpoints[n], nil
		}
	}
	return Endpoint{}, fmt.Errorf("active endpoint: %w", ErrNotFound)
}
