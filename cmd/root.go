package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	bqrssummary "github.com/qltriage/qltriage/cmd/bqrs-summary"
	bqrstable "github.com/qltriage/qltriage/cmd/bqrs-table"
	"github.com/qltriage/qltriage/cmd/extract"
	"github.com/qltriage/qltriage/cmd/prompts"
	"github.com/qltriage/qltriage/cmd/result"
	"github.com/qltriage/qltriage/cmd/summary"
	"github.com/qltriage/qltriage/cmd/triage"
	"github.com/qltriage/qltriage/cmd/version"
	"github.com/qltriage/qltriage/pkg/shared/config"
	"github.com/qltriage/qltriage/pkg/shared/files"
)

var (
	cfgFile   string
	AppConfig *config.Config
	rootCmd   = &cobra.Command{
		Use:                   "qltriage [command]",
		SilenceUsage:          true,
		DisableFlagsInUseLine: true,
		Short:                 "Qltriage inspects CodeQL results and triages findings with Gemini.",
		Long: `Qltriage correlates SARIF findings with source snippets from a CodeQL
database source archive, inspects decoded BQRS tables, and drives an
interactive LLM-assisted review of each finding.`,
	}
)

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is config.yml)")
	rootCmd.AddCommand(
		summary.SummaryCmd,
		result.ResultCmd,
		bqrssummary.BqrsSummaryCmd,
		bqrstable.BqrsTableCmd,
		extract.ExtractCmd,
		prompts.PromptsCmd,
		triage.TriageCmd,
		version.NewVersionCmd(),
	)
}

// Execute runs the root command and maps failure to a process exit code.
func Execute() int {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func initConfig() {
	var err error

	if cfgFile == "" {
		cfgFile = "config.yml"
	}
	cfgFile, err = files.ExpandPath(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error resolving config file path %q: %v\n", cfgFile, err)
		os.Exit(1)
	}
	AppConfig, err = config.LoadConfig(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config file %q: %v\n", cfgFile, err)
		os.Exit(1)
	}
	if err := config.ValidateConfig(AppConfig); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	summary.Init(AppConfig)
	result.Init(AppConfig)
	bqrssummary.Init(AppConfig)
	bqrstable.Init(AppConfig)
	extract.Init(AppConfig)
	prompts.Init(AppConfig)
	triage.Init(AppConfig)
}
