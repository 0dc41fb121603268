package prompts

import (
	"fmt"

	"github.com/qltriage/qltriage/pkg/shared/files"
)

// validatePromptsArgs validates the arguments provided to the prompts command.
func validatePromptsArgs(options *RunOptionsPrompts, args []string) error {
	if len(args) != 0 {
		return fmt.Errorf("positional arguments are not supported, use flags")
	}

	if options.SarifPath == "" {
		return fmt.Errorf("the 'sarif' flag must be specified")
	}
	if err := files.ValidatePath(options.SarifPath); err != nil {
		return fmt.Errorf("SARIF file is not readable: %w", err)
	}

	if options.SrcZipPath == "" {
		return fmt.Errorf("the 'src-zip' flag must be specified")
	}

	if options.OutputPath == "" {
		return fmt.Errorf("the 'output' flag must be specified")
	}

	if options.Context < 0 {
		return fmt.Errorf("the 'context' flag cannot be negative")
	}

	if options.Limit < 0 {
		return fmt.Errorf("the 'limit' flag cannot be negative")
	}

	return nil
}
