package prompts

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/qltriage/qltriage/internal/findings"
	"github.com/qltriage/qltriage/internal/prompt"
	"github.com/qltriage/qltriage/internal/sourcearchive"
	"github.com/qltriage/qltriage/pkg/shared"
	"github.com/qltriage/qltriage/pkg/shared/config"
	"github.com/qltriage/qltriage/pkg/shared/files"
	"github.com/qltriage/qltriage/pkg/shared/logger"
)

// RunOptionsPrompts holds the arguments for the prompts command.
type RunOptionsPrompts struct {
	SarifPath  string
	SrcZipPath string
	OutputPath string
	Context    int
	Limit      int
}

var (
	AppConfig      *config.Config
	promptsOptions RunOptionsPrompts
)

// PromptsCmd represents the prompts command.
var PromptsCmd = &cobra.Command{
	Use:                   "prompts --sarif PATH --src-zip PATH --output PATH [--context N] [--limit N]",
	SilenceUsage:          true,
	DisableFlagsInUseLine: true,
	Example:               "  qltriage prompts --sarif results.sarif --src-zip src.zip --output prompts.txt",
	Short:                 "Generate LLM prompts for triaging findings",
	RunE:                  runPromptsCommand,
}

// Init initializes the global configuration variable.
func Init(cfg *config.Config) {
	AppConfig = cfg
}

func runPromptsCommand(cmd *cobra.Command, args []string) error {
	if !shared.HasFlags(cmd.Flags()) {
		return cmd.Help()
	}

	log := logger.NewLogger(AppConfig, "prompts")

	if err := validatePromptsArgs(&promptsOptions, args); err != nil {
		log.Error("invalid prompts arguments", "error", err)
		return err
	}

	report, err := findings.LoadReport(promptsOptions.SarifPath)
	if err != nil {
		return err
	}
	if len(report.Runs) > 1 {
		log.Warn("SARIF file has multiple runs, only the first run is processed", "runs", len(report.Runs))
	}

	archive, err := sourcearchive.New(promptsOptions.SrcZipPath)
	if err != nil {
		return err
	}
	defer archive.Close()

	records, err := findings.ExtractRecords(report, archive, promptsOptions.Context, promptsOptions.Limit)
	if err != nil {
		return err
	}

	rendered := make([]string, 0, len(records))
	for _, record := range records {
		rendered = append(rendered, prompt.Format(record))
	}

	if parent := filepath.Dir(promptsOptions.OutputPath); parent != "." {
		if err := files.CreateFolderIfNotExists(parent); err != nil {
			return err
		}
	}
	if err := os.WriteFile(promptsOptions.OutputPath, []byte(strings.Join(rendered, prompt.Separator)), 0o644); err != nil {
		return fmt.Errorf("failed to write prompts file %q: %w", promptsOptions.OutputPath, err)
	}

	fmt.Printf("Wrote %d prompts to %s\n", len(rendered), promptsOptions.OutputPath)
	return nil
}

func init() {
	PromptsCmd.Flags().StringVar(&promptsOptions.SarifPath, "sarif", "", "Path to the SARIF results file.")
	PromptsCmd.Flags().StringVar(&promptsOptions.SrcZipPath, "src-zip", "", "Path to the database src.zip.")
	PromptsCmd.Flags().StringVarP(&promptsOptions.OutputPath, "output", "o", "", "Destination file for prompts.")
	PromptsCmd.Flags().IntVar(&promptsOptions.Context, "context", 5, "Lines of context around each location.")
	PromptsCmd.Flags().IntVar(&promptsOptions.Limit, "limit", 0, "Limit the number of findings processed (0 means no limit).")
}
