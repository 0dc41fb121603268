package triage

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/qltriage/qltriage/internal/findings"
	"github.com/qltriage/qltriage/internal/gemini"
	"github.com/qltriage/qltriage/internal/sourcearchive"
	triagesession "github.com/qltriage/qltriage/internal/triage"
	"github.com/qltriage/qltriage/pkg/shared"
	"github.com/qltriage/qltriage/pkg/shared/config"
	"github.com/qltriage/qltriage/pkg/shared/httpclient"
	"github.com/qltriage/qltriage/pkg/shared/logger"
)

// RunOptionsTriage holds the arguments for the triage command.
type RunOptionsTriage struct {
	SarifPath  string
	SrcZipPath string
	Context    int
	Limit      int
	ApiKey     string
	Model      string
}

var (
	AppConfig          *config.Config
	triageOptions      RunOptionsTriage
	exampleTriageUsage = `  # Triage every finding interactively
  qltriage triage --sarif results.sarif --src-zip src.zip

  # Triage the first 3 findings with a specific model
  qltriage triage --sarif results.sarif --src-zip src.zip --limit 3 --model gemini-2.5-flash`
)

// TriageCmd represents the triage command.
var TriageCmd = &cobra.Command{
	Use:                   "triage --sarif PATH --src-zip PATH [--context N] [--limit N] [--api-key KEY] [--model NAME]",
	SilenceUsage:          true,
	DisableFlagsInUseLine: true,
	Example:               exampleTriageUsage,
	Short:                 "Review findings interactively with Gemini, one chat session per finding",
	RunE:                  runTriageCommand,
}

// Init initializes the global configuration variable.
func Init(cfg *config.Config) {
	AppConfig = cfg
}

func runTriageCommand(cmd *cobra.Command, args []string) error {
	if !shared.HasFlags(cmd.Flags()) {
		return cmd.Help()
	}

	log := logger.NewLogger(AppConfig, "triage")

	if err := validateTriageArgs(&triageOptions, args); err != nil {
		log.Error("invalid triage arguments", "error", err)
		return err
	}

	apiKey := resolveApiKey(&triageOptions, AppConfig)
	if apiKey == "" {
		return fmt.Errorf("Gemini API key not provided, use --api-key or set GEMINI_API_KEY")
	}

	report, err := findings.LoadReport(triageOptions.SarifPath)
	if err != nil {
		return err
	}
	if len(report.Runs) > 1 {
		log.Warn("SARIF file has multiple runs, only the first run is processed", "runs", len(report.Runs))
	}

	archive, err := sourcearchive.New(triageOptions.SrcZipPath)
	if err != nil {
		return err
	}
	defer archive.Close()

	records, err := findings.ExtractRecords(report, archive, triageOptions.Context, triageOptions.Limit)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Println("No findings were extracted. Exiting.")
		return nil
	}

	client := gemini.NewClient(
		httpclient.InitializeRestyClient(log, AppConfig),
		resolveModel(&triageOptions, AppConfig),
		apiKey,
	)
	log.Debug("triage session starting", "model", client.Model(), "findings", len(records))

	runner := triagesession.NewRunner(client, log, os.Stdin, os.Stdout)
	if err := runner.Run(context.Background(), records); err != nil {
		if errors.Is(err, triagesession.ErrQuit) {
			fmt.Println("Exiting.")
			return nil
		}
		return err
	}
	return nil
}

// resolveApiKey picks the credential: flag first, then environment, then config.
func resolveApiKey(options *RunOptionsTriage, cfg *config.Config) string {
	if options.ApiKey != "" {
		return options.ApiKey
	}
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		return key
	}
	if cfg != nil {
		return cfg.Gemini.ApiKey
	}
	return ""
}

// resolveModel picks the model identifier: flag, environment, config, default.
func resolveModel(options *RunOptionsTriage, cfg *config.Config) string {
	if options.Model != "" {
		return options.Model
	}
	if model := os.Getenv("GEMINI_MODEL"); model != "" {
		return model
	}
	if cfg != nil && cfg.Gemini.Model != "" {
		return cfg.Gemini.Model
	}
	return gemini.DefaultModel
}

func init() {
	TriageCmd.Flags().StringVar(&triageOptions.SarifPath, "sarif", "", "Path to the SARIF results file.")
	TriageCmd.Flags().StringVar(&triageOptions.SrcZipPath, "src-zip", "", "Path to the database src.zip.")
	TriageCmd.Flags().IntVar(&triageOptions.Context, "context", 5, "Lines of context around each location.")
	TriageCmd.Flags().IntVar(&triageOptions.Limit, "limit", 0, "Limit the number of findings processed (0 means no limit).")
	TriageCmd.Flags().StringVar(&triageOptions.ApiKey, "api-key", "", "Gemini API key. Defaults to the GEMINI_API_KEY environment variable.")
	TriageCmd.Flags().StringVar(&triageOptions.Model, "model", "", "Gemini model name. Defaults to the GEMINI_MODEL environment variable.")
}
