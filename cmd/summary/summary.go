package summary

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/qltriage/qltriage/internal/findings"
	"github.com/qltriage/qltriage/pkg/shared/config"
	"github.com/qltriage/qltriage/pkg/shared/logger"
)

// RunOptionsSummary holds the arguments for the summary command.
type RunOptionsSummary struct {
	Limit int
}

var (
	AppConfig           *config.Config
	summaryOptions      RunOptionsSummary
	exampleSummaryUsage = `  # Print counts, a rule histogram and the first 5 results
  qltriage summary results.sarif

  # Show 20 sample results
  qltriage summary results.sarif --limit 20`
)

// SummaryCmd represents the summary command.
var SummaryCmd = &cobra.Command{
	Use:                   "summary PATH [--limit N]",
	SilenceUsage:          true,
	DisableFlagsInUseLine: true,
	Example:               exampleSummaryUsage,
	Short:                 "Print counts, a rule histogram and sample results from a SARIF file",
	RunE:                  runSummaryCommand,
}

// Init initializes the global configuration variable.
func Init(cfg *config.Config) {
	AppConfig = cfg
}

func runSummaryCommand(cmd *cobra.Command, args []string) error {
	log := logger.NewLogger(AppConfig, "summary")

	if err := validateSummaryArgs(&summaryOptions, args); err != nil {
		log.Error("invalid summary arguments", "error", err)
		return err
	}

	report, err := findings.LoadReport(args[0])
	if err != nil {
		return err
	}

	summary, err := findings.Summarize(report)
	if err != nil {
		return err
	}

	fmt.Printf("Runs: %d | Results: %d\n", summary.Runs, summary.Results)
	fmt.Println("Rule counts:")
	for _, ruleCount := range summary.RuleCounts {
		fmt.Printf("  %s: %d\n", ruleCount.RuleID, ruleCount.Count)
	}

	sampleCount := summaryOptions.Limit
	if sampleCount > summary.Results {
		sampleCount = summary.Results
	}
	fmt.Printf("\nFirst %d results:\n", sampleCount)
	for idx := 0; idx < sampleCount; idx++ {
		res, err := findings.ResultAt(report, idx)
		if err != nil {
			return err
		}

		ruleID := "<unknown>"
		if res.RuleID != nil && *res.RuleID != "" {
			ruleID = *res.RuleID
		}
		fmt.Printf("[%d] %s @ %s\n", idx, ruleID, findings.DescribeResultLocation(res))
		if message := findings.DescribeResultMessage(res); message != "" {
			fmt.Printf("    %s\n", message)
		}
	}
	return nil
}

func init() {
	SummaryCmd.Flags().IntVar(&summaryOptions.Limit, "limit", 5, "Number of sample results to display.")
}
