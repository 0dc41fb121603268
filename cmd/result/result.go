package result

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/qltriage/qltriage/internal/findings"
	"github.com/qltriage/qltriage/pkg/shared/config"
	"github.com/qltriage/qltriage/pkg/shared/files"
	"github.com/qltriage/qltriage/pkg/shared/logger"
)

// RunOptionsResult holds the arguments for the result command.
type RunOptionsResult struct {
	Index int
}

var (
	AppConfig     *config.Config
	resultOptions RunOptionsResult
)

// ResultCmd represents the result command.
var ResultCmd = &cobra.Command{
	Use:                   "result PATH [--index I]",
	SilenceUsage:          true,
	DisableFlagsInUseLine: true,
	Example:               "  qltriage result results.sarif --index 3",
	Short:                 "Show a single SARIF result by index",
	RunE:                  runResultCommand,
}

// Init initializes the global configuration variable.
func Init(cfg *config.Config) {
	AppConfig = cfg
}

func runResultCommand(cmd *cobra.Command, args []string) error {
	log := logger.NewLogger(AppConfig, "result")

	if err := validateResultArgs(&resultOptions, args); err != nil {
		log.Error("invalid result arguments", "error", err)
		return err
	}

	report, err := findings.LoadReport(args[0])
	if err != nil {
		return err
	}

	res, err := findings.ResultAt(report, resultOptions.Index)
	if err != nil {
		return err
	}

	encoded, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode result %d: %w", resultOptions.Index, err)
	}
	fmt.Println(string(encoded))
	return nil
}

// validateResultArgs validates the arguments provided to the result command.
func validateResultArgs(options *RunOptionsResult, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("exactly one positional argument is required: the SARIF file path")
	}

	if err := files.ValidatePath(args[0]); err != nil {
		return fmt.Errorf("SARIF file is not readable: %w", err)
	}

	if options.Index < 0 {
		return fmt.Errorf("the 'index' flag cannot be negative")
	}

	return nil
}

func init() {
	ResultCmd.Flags().IntVar(&resultOptions.Index, "index", 0, "Zero-based index of the result to display.")
}
