package bqrssummary

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/qltriage/qltriage/internal/bqrs"
	"github.com/qltriage/qltriage/pkg/shared/config"
	"github.com/qltriage/qltriage/pkg/shared/files"
	"github.com/qltriage/qltriage/pkg/shared/logger"
)

var AppConfig *config.Config

// BqrsSummaryCmd represents the bqrs-summary command.
var BqrsSummaryCmd = &cobra.Command{
	Use:                   "bqrs-summary PATH",
	SilenceUsage:          true,
	DisableFlagsInUseLine: true,
	Example:               "  qltriage bqrs-summary results.bqrs.json",
	Short:                 "List tables in a decoded BQRS JSON document",
	RunE:                  runBqrsSummaryCommand,
}

// Init initializes the global configuration variable.
func Init(cfg *config.Config) {
	AppConfig = cfg
}

func runBqrsSummaryCommand(cmd *cobra.Command, args []string) error {
	log := logger.NewLogger(AppConfig, "bqrs-summary")

	if err := validateBqrsSummaryArgs(args); err != nil {
		log.Error("invalid bqrs-summary arguments", "error", err)
		return err
	}

	document, err := bqrs.Load(args[0])
	if err != nil {
		return err
	}

	names := document.TableNames()
	if len(names) == 0 {
		fmt.Println("No tables found in decoded BQRS JSON.")
		return nil
	}

	fmt.Printf("Tables: %d\n", len(names))
	for _, name := range names {
		table, err := document.Table(name)
		if err != nil {
			return err
		}

		labels := make([]string, 0, len(table.Columns))
		for _, column := range table.Columns {
			labels = append(labels, column.Label())
		}
		fmt.Printf("- %s: %d rows | columns: %s\n", name, len(table.Tuples), strings.Join(labels, ", "))
	}
	return nil
}

// validateBqrsSummaryArgs validates the arguments provided to the bqrs-summary command.
func validateBqrsSummaryArgs(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("exactly one positional argument is required: the decoded BQRS JSON path")
	}

	if err := files.ValidatePath(args[0]); err != nil {
		return fmt.Errorf("BQRS JSON file is not readable: %w", err)
	}

	return nil
}
