package findings

import (
	"fmt"
	"sort"
	"strings"

	"github.com/owenrumney/go-sarif/v2/sarif"
)

// RuleCount is one entry in a summary's rule histogram.
type RuleCount struct {
	RuleID string
	Count  int
}

// Summary is an ad hoc report over a SARIF file, independent of the
// extraction pipeline.
type Summary struct {
	Runs       int
	Results    int
	RuleCounts []RuleCount
}

const unknownRuleID = "<unknown>"

// Summarize counts results and rules of the report's first run. The run
// count covers the whole file so multi-run inputs are visible to the user.
func Summarize(report *sarif.Report) (*Summary, error) {
	if report == nil || len(report.Runs) == 0 {
		return nil, fmt.Errorf("SARIF report has no runs")
	}

	results := report.Runs[0].Results
	counts := map[string]int{}
	for _, result := range results {
		ruleID := unknownRuleID
		if result.RuleID != nil && *result.RuleID != "" {
			ruleID = *result.RuleID
		}
		counts[ruleID]++
	}

	ruleCounts := make([]RuleCount, 0, len(counts))
	for ruleID, count := range counts {
		ruleCounts = append(ruleCounts, RuleCount{RuleID: ruleID, Count: count})
	}
	sort.Slice(ruleCounts, func(i, j int) bool {
		if ruleCounts[i].Count != ruleCounts[j].Count {
			return ruleCounts[i].Count > ruleCounts[j].Count
		}
		return ruleCounts[i].RuleID < ruleCounts[j].RuleID
	})

	return &Summary{
		Runs:       len(report.Runs),
		Results:    len(results),
		RuleCounts: ruleCounts,
	}, nil
}

// ResultAt returns the result at the given index of the first run.
func ResultAt(report *sarif.Report, index int) (*sarif.Result, error) {
	if report == nil || len(report.Runs) == 0 {
		return nil, fmt.Errorf("SARIF report has no runs")
	}

	results := report.Runs[0].Results
	if index < 0 || index >= len(results) {
		return nil, fmt.Errorf("result index %d out of range (0..%d)", index, len(results)-1)
	}
	return results[index], nil
}

// DescribeResultLocation renders a result's first location as "uri:line",
// degrading to just the URI or a placeholder when pieces are missing.
func DescribeResultLocation(result *sarif.Result) string {
	physical := firstPhysicalLocation(result.Locations)
	if physical == nil || physical.ArtifactLocation == nil || physical.ArtifactLocation.URI == nil {
		return "<no location>"
	}

	uri := *physical.ArtifactLocation.URI
	if physical.Region == nil || physical.Region.StartLine == nil {
		return uri
	}
	return fmt.Sprintf("%s:%d", uri, *physical.Region.StartLine)
}

// DescribeResultMessage returns the trimmed result message text, if any.
func DescribeResultMessage(result *sarif.Result) string {
	if result.Message.Text == nil {
		return ""
	}
	return strings.TrimSpace(*result.Message.Text)
}
