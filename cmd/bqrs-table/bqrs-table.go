package bqrstable

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/qltriage/qltriage/internal/bqrs"
	"github.com/qltriage/qltriage/pkg/shared/config"
	"github.com/qltriage/qltriage/pkg/shared/files"
	"github.com/qltriage/qltriage/pkg/shared/logger"
)

// RunOptionsBqrsTable holds the arguments for the bqrs-table command.
type RunOptionsBqrsTable struct {
	Table string
	Limit int
}

var (
	AppConfig        *config.Config
	bqrsTableOptions RunOptionsBqrsTable
)

// BqrsTableCmd represents the bqrs-table command.
var BqrsTableCmd = &cobra.Command{
	Use:                   "bqrs-table PATH [--table NAME] [--limit N]",
	SilenceUsage:          true,
	DisableFlagsInUseLine: true,
	Example: `  # Dump the default #select table
  qltriage bqrs-table results.bqrs.json

  # Dump 10 rows of a named table
  qltriage bqrs-table results.bqrs.json --table edges --limit 10`,
	Short: "Display rows from a decoded BQRS table",
	RunE:  runBqrsTableCommand,
}

// Init initializes the global configuration variable.
func Init(cfg *config.Config) {
	AppConfig = cfg
}

func runBqrsTableCommand(cmd *cobra.Command, args []string) error {
	log := logger.NewLogger(AppConfig, "bqrs-table")

	if err := validateBqrsTableArgs(&bqrsTableOptions, args); err != nil {
		log.Error("invalid bqrs-table arguments", "error", err)
		return err
	}

	document, err := bqrs.Load(args[0])
	if err != nil {
		return err
	}

	table, err := document.Table(bqrsTableOptions.Table)
	if err != nil {
		return err
	}

	fmt.Printf("%s: %d rows\n", bqrsTableOptions.Table, len(table.Tuples))
	for idx, row := range table.Tuples {
		if idx >= bqrsTableOptions.Limit {
			break
		}
		fmt.Println(string(row))
	}
	return nil
}

// validateBqrsTableArgs validates the arguments provided to the bqrs-table command.
func validateBqrsTableArgs(options *RunOptionsBqrsTable, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("exactly one positional argument is required: the decoded BQRS JSON path")
	}

	if err := files.ValidatePath(args[0]); err != nil {
		return fmt.Errorf("BQRS JSON file is not readable: %w", err)
	}

	if options.Table == "" {
		return fmt.Errorf("the 'table' flag cannot be empty")
	}

	if options.Limit < 0 {
		return fmt.Errorf("the 'limit' flag cannot be negative")
	}

	return nil
}

func init() {
	BqrsTableCmd.Flags().StringVar(&bqrsTableOptions.Table, "table", "#select", "Name of the table to display.")
	BqrsTableCmd.Flags().IntVar(&bqrsTableOptions.Limit, "limit", 5, "Number of rows to display.")
}
