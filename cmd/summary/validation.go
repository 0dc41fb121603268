package summary

import (
	"fmt"

	"github.com/qltriage/qltriage/pkg/shared/files"
)

// validateSummaryArgs validates the arguments provided to the summary command.
func validateSummaryArgs(options *RunOptionsSummary, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("exactly one positional argument is required: the SARIF file path")
	}

	if err := files.ValidatePath(args[0]); err != nil {
		return fmt.Errorf("SARIF file is not readable: %w", err)
	}

	if options.Limit < 0 {
		return fmt.Errorf("the 'limit' flag cannot be negative")
	}

	return nil
}
