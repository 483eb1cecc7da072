// Package cli implements the solrsync command line.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/solrsync/internal/core/ports/driving"
	"github.com/custodia-labs/solrsync/internal/logger"
)

// GlobalOptions are the persistent flags every command accepts.
type GlobalOptions struct {
	// ConfigDir overrides the configuration directory.
	ConfigDir string

	// Endpoint selects a configured index endpoint by name.
	Endpoint string

	// Verbose enables debug logging.
	Verbose bool
}

// Services holds the application services the commands run against.
type Services struct {
	Index    driving.IndexService
	Sync     driving.SyncOrchestrator
	Schema   driving.SchemaService
	Settings driving.SettingsService

	// Close releases everything the services hold. Optional.
	Close func() error
}

// Builder wires the services for the given options.
type Builder func(ctx context.Context, opts GlobalOptions) (*Services, error)

var (
	version = "dev"
	globals GlobalOptions
	builder Builder

	indexService     driving.IndexService
	syncOrchestrator driving.SyncOrchestrator
	schemaService    driving.SchemaService
	settingsService  driving.SettingsService
	closeServices    func() error
)

var rootCmd = &cobra.Command{
	Use:   "solrsync",
	Short: "Keep a Solr index in sync with your records",
	Long: `solrsync maps records from a relational or document store onto Solr
documents and keeps the index populated.

Records declare their mapping with solr struct tags; see "schema show" for
what the registered types look like in the index.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
		return teardown()
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&globals.ConfigDir, "config", "", "configuration directory (default ~/.solrsync)")
	flags.StringVar(&globals.Endpoint, "endpoint", "", "index endpoint to use")
	flags.BoolVarP(&globals.Verbose, "verbose", "v", false, "enable debug logging")
}

// SetVersion sets the version printed by the version command.
func SetVersion(v string) {
	version = v
}

// SetBuilder sets the function wiring the services before a command runs.
func SetBuilder(b Builder) {
	builder = b
}

// SetServices installs already wired services.
func SetServices(s *Services) {
	if s == nil {
		indexService, syncOrchestrator, schemaService, settingsService, closeServices = nil, nil, nil, nil, nil
		return
	}
	indexService = s.Index
	syncOrchestrator = s.Sync
	schemaService = s.Schema
	settingsService = s.Settings
	closeServices = s.Close
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// needsServices reports whether cmd talks to the services.
func needsServices(cmd *cobra.Command) bool {
	return cmd.Annotations["services"] != "none"
}

func setup(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(globals.Verbose)

	if !needsServices(cmd) || builder == nil || indexService != nil {
		return nil
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	services, err := builder(ctx, globals)
	if err != nil {
		return err
	}
	SetServices(services)
	return nil
}

// teardown releases services wired by the builder. Installed services are
// left alone.
func teardown() error {
	if builder == nil {
		return nil
	}
	var err error
	if closeServices != nil {
		err = closeServices()
	}
	SetServices(nil)
	return err
}

// commandContext returns the command's context or a background one.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
