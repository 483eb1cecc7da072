package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/solrsync/internal/core/domain"
)

var (
	searchEntity  string
	searchRows    int
	searchStart   int
	searchFilters []string
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Query the index",
	Long: `Runs a query against the index and prints the hits mapped back to
records of --entity, in ranking order. The query uses the server's syntax;
without one every document matches.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().StringVarP(&searchEntity, "entity", "e", "", "type the hits are mapped to (required)")
	searchCmd.Flags().IntVarP(&searchRows, "rows", "n", 10, "maximum number of hits")
	searchCmd.Flags().IntVar(&searchStart, "start", 0, "number of hits to skip")
	searchCmd.Flags().StringArrayVar(&searchFilters, "filter", nil, "filter query, may be repeated")
	_ = searchCmd.MarkFlagRequired("entity")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	if indexService == nil {
		return errors.New("index service not configured")
	}

	query := domain.SearchQuery{
		Entity:  searchEntity,
		Filters: searchFilters,
		Start:   searchStart,
		Rows:    searchRows,
	}
	if len(args) > 0 {
		query.Query = args[0]
	}

	hits := indexService.Query(commandContext(cmd), query)
	if len(hits) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	for i, hit := range hits {
		data, err := json.MarshalIndent(hit, "      ", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal result: %w", err)
		}
		cmd.Printf("  [%d] %s\n", searchStart+i+1, data)
	}
	return nil
}
