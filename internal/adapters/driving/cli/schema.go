package cli

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/solrsync/internal/core/domain"
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Inspect the index mapping",
}

var schemaShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show how every indexable type maps onto documents",
	Long: `Lists every indexable type with its document name, boost and field
mapping. Nested types are shown below the field embedding them.`,
	Args: cobra.NoArgs,
	RunE: runSchemaShow,
}

func init() {
	schemaCmd.AddCommand(schemaShowCmd)
	rootCmd.AddCommand(schemaCmd)
}

func runSchemaShow(cmd *cobra.Command, _ []string) error {
	if schemaService == nil {
		return errors.New("schema service not configured")
	}

	entries, err := schemaService.Describe(commandContext(cmd))
	if len(entries) == 0 && err == nil {
		cmd.Println("No indexable types registered.")
		return nil
	}

	for _, entry := range entries {
		cmd.Println(styles.Title.Render(entityHeading(entry.Metadata)))
		cmd.Println(fieldTable(entry.Metadata))
		for _, nested := range entry.Nested {
			cmd.Println(styles.Subtitle.Render(fmt.Sprintf("  %s → %s", nested.Field.MappingKey(), entityHeading(nested.Metadata))))
			cmd.Println(fieldTable(nested.Metadata))
		}
		cmd.Println()
	}

	// Invalid types do not stop the report.
	if err != nil {
		cmd.Println(styles.Error.Render(fmt.Sprintf("Some types could not be loaded:\n%v", err)))
	}
	return nil
}

func entityHeading(meta *domain.EntityMetadata) string {
	heading := fmt.Sprintf("%s (document: %s", meta.TypeName, meta.DocumentName)
	if meta.HasBoost {
		heading += ", boost: " + formatBoost(meta.Boost)
	}
	if meta.Nested {
		heading += ", nested only"
	}
	return heading + ")"
}

func fieldTable(meta *domain.EntityMetadata) string {
	t := styles.Table("Field", "Property", "Boost", "Identifier", "Nested")
	for _, f := range meta.Fields {
		identifier := ""
		if f.Identifier {
			identifier = "yes"
		}
		nested := f.NestedType
		if f.Multi {
			nested += "[]"
		}
		boost := ""
		if f.Boost != 0 {
			boost = formatBoost(f.Boost)
		}
		t.Row(f.MappingKey(), f.Property, boost, identifier, nested)
	}
	return t.Render()
}

func formatBoost(b float64) string {
	return strconv.FormatFloat(b, 'g', -1, 64)
}
