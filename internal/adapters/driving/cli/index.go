package cli

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/solrsync/internal/core/domain"
)

var (
	populateEntity      string
	populateFlushSize   int
	populateStartOffset int
	populateWorkers     int
	populateYes         bool
	populateSource      string

	statusLimit int
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Manage the search index",
	Long:  `Populate, clear and inspect the search index.`,
}

var indexClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every document from the index",
	Args:  cobra.NoArgs,
	RunE:  runIndexClear,
}

var indexPopulateCmd = &cobra.Command{
	Use:   "populate [entity]",
	Short: "Index records from the data store",
	Long: `Streams records from the data store into the index in batches.

Without an entity every indexable type is synchronised. Failed batches are
reported and skipped; the command still completes. Types with many records
ask for confirmation unless --yes is given.

--start-offset resumes a single type after an interruption and cannot be
combined with a run over all types.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runIndexPopulate,
}

var indexStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show recent synchronisation runs",
	Args:  cobra.NoArgs,
	RunE:  runIndexStatus,
}

func init() {
	f := indexPopulateCmd.Flags()
	f.StringVar(&populateEntity, "entity", "", "only synchronise this type")
	f.IntVar(&populateFlushSize, "flushsize", domain.DefaultBatchSize, "number of records per batch")
	f.IntVar(&populateStartOffset, "start-offset", 0, "skip the first records of the type")
	f.IntVar(&populateWorkers, "workers", 1, "number of types synchronised at once")
	f.BoolVarP(&populateYes, "yes", "y", false, "do not ask for confirmation")
	f.StringVar(&populateSource, "source", "", "record source")
	_ = f.MarkDeprecated("source", "the record source is taken from the configuration")

	indexStatusCmd.Flags().IntVarP(&statusLimit, "limit", "n", 20, "maximum number of runs")

	indexCmd.AddCommand(indexClearCmd)
	indexCmd.AddCommand(indexPopulateCmd)
	indexCmd.AddCommand(indexStatusCmd)
	rootCmd.AddCommand(indexCmd)
}

func runIndexClear(cmd *cobra.Command, _ []string) error {
	if indexService == nil {
		return errors.New("index service not configured")
	}

	if err := indexService.ClearIndex(commandContext(cmd)); err != nil {
		cmd.Println(styles.Error.Render(fmt.Sprintf("Failed to clear the index: %v", err)))
		return nil
	}
	cmd.Println(styles.Success.Render("Index cleared."))
	return nil
}

func runIndexPopulate(cmd *cobra.Command, args []string) error {
	if syncOrchestrator == nil {
		return errors.New("sync service not configured")
	}

	job := populateJob(cmd, args)
	report, err := syncOrchestrator.Populate(commandContext(cmd), job, cmd)
	if err != nil {
		return err
	}

	printPopulateSummary(cmd, report)
	return nil
}

// populateJob builds the job from the flags. A positional entity wins over --entity.
func populateJob(cmd *cobra.Command, args []string) domain.SyncJob {
	entity := populateEntity
	if len(args) > 0 {
		if entity != "" && entity != args[0] {
			cmd.Printf("Ignoring --entity=%s, synchronising %s\n", entity, args[0])
		}
		entity = args[0]
	}

	job := domain.SyncJob{
		Entity:      entity,
		BatchSize:   populateFlushSize,
		StartOffset: populateStartOffset,
		Workers:     populateWorkers,
		AssumeYes:   populateYes,
	}

	// Unset flags fall back to the configured defaults.
	if settingsService != nil {
		if settings, err := settingsService.Get(); err == nil {
			if !cmd.Flags().Changed("flushsize") {
				job.BatchSize = settings.Sync.BatchSize
			}
			if !cmd.Flags().Changed("workers") {
				job.Workers = settings.Sync.Workers
			}
		}
	}
	return job
}

func printPopulateSummary(cmd *cobra.Command, report *domain.SyncReport) {
	if report == nil {
		return
	}

	var indexed, skipped int
	for _, t := range report.Types {
		indexed += t.Indexed
		if t.Skipped {
			skipped++
		}
	}

	summary := fmt.Sprintf("Done: %d record(s) indexed, %d failed batch(es), %d type(s) skipped", indexed, report.Failed(), skipped)
	if report.Failed() > 0 {
		cmd.Println(styles.Warning.Render(summary))
		return
	}
	cmd.Println(styles.Success.Render(summary))
}

func runIndexStatus(cmd *cobra.Command, _ []string) error {
	if syncOrchestrator == nil {
		return errors.New("sync service not configured")
	}

	runs, err := syncOrchestrator.History(commandContext(cmd), statusLimit)
	if err != nil {
		return fmt.Errorf("failed to read sync history: %w", err)
	}
	if len(runs) == 0 {
		cmd.Println("No synchronisation runs recorded.")
		return nil
	}

	t := styles.Table("Entity", "Started", "Duration", "Indexed", "Failed batches", "Next offset")
	for _, run := range runs {
		t.Row(
			run.Entity,
			run.StartedAt.Local().Format("2006-01-02 15:04:05"),
			run.FinishedAt.Sub(run.StartedAt).Round(time.Millisecond).String(),
			fmt.Sprintf("%d/%d", run.Indexed, run.Total),
			strconv.Itoa(run.FailedBatches),
			strconv.Itoa(run.LastOffset),
		)
	}
	cmd.Println(styles.Title.Render("Synchronisation runs"))
	cmd.Println(t.Render())
	return nil
}
