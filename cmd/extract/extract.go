package extract

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/qltriage/qltriage/internal/findings"
	"github.com/qltriage/qltriage/internal/sourcearchive"
	"github.com/qltriage/qltriage/pkg/shared"
	"github.com/qltriage/qltriage/pkg/shared/config"
	"github.com/qltriage/qltriage/pkg/shared/files"
	"github.com/qltriage/qltriage/pkg/shared/logger"
)

// RunOptionsExtract holds the arguments for the extract command.
type RunOptionsExtract struct {
	SarifPath  string
	SrcZipPath string
	OutputPath string
	Context    int
	Limit      int
}

var (
	AppConfig           *config.Config
	extractOptions      RunOptionsExtract
	exampleExtractUsage = `  # Write one JSON record per finding
  qltriage extract --sarif results.sarif --src-zip src.zip --output records.jsonl

  # Use a wider snippet window and stop after 10 findings
  qltriage extract --sarif results.sarif --src-zip src.zip --output records.jsonl --context 10 --limit 10`
)

// ExtractCmd represents the extract command.
var ExtractCmd = &cobra.Command{
	Use:                   "extract --sarif PATH --src-zip PATH --output PATH [--context N] [--limit N]",
	SilenceUsage:          true,
	DisableFlagsInUseLine: true,
	Example:               exampleExtractUsage,
	Short:                 "Create JSONL records combining SARIF findings with source snippets",
	RunE:                  runExtractCommand,
}

// Init initializes the global configuration variable.
func Init(cfg *config.Config) {
	AppConfig = cfg
}

func runExtractCommand(cmd *cobra.Command, args []string) error {
	if !shared.HasFlags(cmd.Flags()) {
		return cmd.Help()
	}

	log := logger.NewLogger(AppConfig, "extract")

	if err := validateExtractArgs(&extractOptions, args); err != nil {
		log.Error("invalid extract arguments", "error", err)
		return err
	}

	report, err := findings.LoadReport(extractOptions.SarifPath)
	if err != nil {
		return err
	}
	if len(report.Runs) > 1 {
		log.Warn("SARIF file has multiple runs, only the first run is processed", "runs", len(report.Runs))
	}

	archive, err := sourcearchive.New(extractOptions.SrcZipPath)
	if err != nil {
		return err
	}
	defer archive.Close()

	records, err := findings.ExtractRecords(report, archive, extractOptions.Context, extractOptions.Limit)
	if err != nil {
		return err
	}

	if err := writeRecords(records, extractOptions.OutputPath); err != nil {
		return err
	}

	fmt.Printf("Wrote %d records to %s\n", len(records), extractOptions.OutputPath)
	return nil
}

// writeRecords writes one compact JSON object per line.
func writeRecords(records []findings.Record, outputPath string) error {
	if parent := filepath.Dir(outputPath); parent != "." {
		if err := files.CreateFolderIfNotExists(parent); err != nil {
			return err
		}
	}

	handle, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file %q: %w", outputPath, err)
	}
	defer handle.Close()

	encoder := json.NewEncoder(handle)
	encoder.SetEscapeHTML(false)
	for _, record := range records {
		if err := encoder.Encode(record); err != nil {
			return fmt.Errorf("failed to encode record %d: %w", record.ResultIndex, err)
		}
	}
	return nil
}

func init() {
	ExtractCmd.Flags().StringVar(&extractOptions.SarifPath, "sarif", "", "Path to the SARIF results file.")
	ExtractCmd.Flags().StringVar(&extractOptions.SrcZipPath, "src-zip", "", "Path to the database src.zip.")
	ExtractCmd.Flags().StringVarP(&extractOptions.OutputPath, "output", "o", "", "Destination JSONL file.")
	ExtractCmd.Flags().IntVar(&extractOptions.Context, "context", 5, "Lines of context around each location.")
	ExtractCmd.Flags().IntVar(&extractOptions.Limit, "limit", 0, "Limit the number of findings processed (0 means no limit).")
}
