// Package environ reads environment variable overrides for the settings.
package environ

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v6"

	"github.com/custodia-labs/solrsync/internal/core/domain"
)

// Prefix is prepended to every variable name.
const Prefix = "SOLRSYNC_"

// EndpointName is the endpoint created from SOLRSYNC_SOLR_URL.
const EndpointName = "env"

// Overrides holds the values read from the environment. Empty fields are unset.
type Overrides struct {
	SolrURL        string `env:"SOLR_URL"`
	SourceDriver   string `env:"SOURCE_DRIVER"`
	SourceDSN      string `env:"SOURCE_DSN"`
	SourceDatabase string `env:"SOURCE_DATABASE"`
	LogLevel       string `env:"LOG_LEVEL"`
}

// Load parses the overrides from the process environment.
func Load() (*Overrides, error) {
	return LoadFrom(nil)
}

// LoadFrom parses the overrides from vars, or from the process environment
// when vars is nil.
func LoadFrom(vars map[string]string) (*Overrides, error) {
	o := &Overrides{}
	opts := env.Options{Prefix: Prefix}
	if vars != nil {
		opts.Environment = vars
	}
	if err := env.Parse(o, opts); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	return o, nil
}

// Apply writes the set overrides onto settings. A Solr URL becomes the
// default endpoint.
func (o *Overrides) Apply(settings *domain.Settings) error {
	if o.SolrURL != "" {
		ep := domain.DefaultEndpointSettings()
		ep.Name = EndpointName
		ep.DSN = strings.TrimSpace(o.SolrURL)
		if settings.Endpoints == nil {
			settings.Endpoints = make(map[string]domain.Endpoint)
		}
		settings.Endpoints[EndpointName] = ep
		settings.DefaultEndpoint = EndpointName
	}

	if o.SourceDriver != "" {
		driver := domain.SourceDriver(strings.ToLower(o.SourceDriver))
		if !driver.IsValid() {
			return fmt.Errorf("%w: %sSOURCE_DRIVER %q", domain.ErrInvalidInput, Prefix, o.SourceDriver)
		}
		settings.Source.Driver = driver
	}
	if o.SourceDSN != "" {
		settings.Source.DSN = o.SourceDSN
	}
	if o.SourceDatabase != "" {
		settings.Source.Database = o.SourceDatabase
	}
	if o.LogLevel != "" {
		settings.Log.Level = o.LogLevel
	}
	return nil
}
