package cli

import (
	"errors"
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and initialise the configuration.

Values come from config.toml in the configuration directory and can be
overridden with SOLRSYNC_* environment variables.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the current settings to the configuration file",
	Long: `Writes the effective settings, defaults included, to config.toml so
they can be edited.`,
	RunE: runSettingsInit,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsInitCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[Solr]")
	active, err := settings.ActiveEndpoint(globals.Endpoint)
	if err != nil {
		cmd.Printf("  Active endpoint: %s\n", styles.Error.Render(err.Error()))
	} else {
		cmd.Printf("  Active endpoint: %s (%s)\n", active.Name, active.URL())
	}
	if settings.RequestsPerSecond > 0 {
		cmd.Printf("  Requests per second: %g\n", settings.RequestsPerSecond)
	}

	names := make([]string, 0, len(settings.Endpoints))
	for name := range settings.Endpoints {
		names = append(names, name)
	}
	sort.Strings(names)

	t := styles.Table("Endpoint", "URL", "Timeout", "Active")
	for _, name := range names {
		ep := settings.Endpoints[name]
		activeMark := "no"
		if ep.Active {
			activeMark = "yes"
		}
		t.Row(name, ep.URL(), ep.Timeout.String(), activeMark)
	}
	cmd.Println(t.Render())
	cmd.Println()

	cmd.Println("[Source]")
	cmd.Printf("  Driver: %s\n", settings.Source.Driver.Description())
	if settings.Source.DSN != "" {
		cmd.Printf("  DSN: %s\n", settings.Source.DSN)
	} else {
		cmd.Printf("  DSN: (not set)\n")
	}
	if settings.Source.Database != "" {
		cmd.Printf("  Database: %s\n", settings.Source.Database)
	}
	cmd.Println()

	cmd.Println("[Sync]")
	cmd.Printf("  Batch size: %d\n", settings.Sync.BatchSize)
	cmd.Printf("  Confirm threshold: %d\n", settings.Sync.ConfirmThreshold)
	cmd.Printf("  Workers: %d\n", settings.Sync.Workers)
	cmd.Println()

	cmd.Println("[Log]")
	level := settings.Log.Level
	if level == "" {
		level = "(from --verbose)"
	}
	cmd.Printf("  Level: %s\n", level)
	cmd.Printf("  Format: %s\n", settings.Log.Format)

	return nil
}

func runSettingsInit(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}
	if err := settingsService.Save(settings); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}

	cmd.Println(styles.Success.Render("Settings written."))
	return nil
}
