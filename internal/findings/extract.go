package findings

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/owenrumney/go-sarif/v2/sarif"

	"github.com/qltriage/qltriage/internal/sourcearchive"
)

// LoadReport reads and decodes a SARIF file.
func LoadReport(inputPath string) (*sarif.Report, error) {
	data, err := os.ReadFile(inputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read SARIF file %q: %w", inputPath, err)
	}

	report, err := DecodeReport(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode SARIF file %q: %w", inputPath, err)
	}
	return report, nil
}

// DecodeReport decodes a SARIF document. Some producers wrap location
// entries one level deeper, as {"location": {...}}; the typed model has no
// field for that shape, so it is flattened before decoding.
func DecodeReport(data []byte) (*sarif.Report, error) {
	normalized, err := unwrapNestedLocations(data)
	if err != nil {
		return nil, err
	}

	var report sarif.Report
	if err := json.Unmarshal(normalized, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

// unwrapNestedLocations replaces every locations/relatedLocations entry that
// carries no physicalLocation but wraps a nested "location" object with that
// object, one level only. The input is returned untouched when no entry
// needs rewriting.
func unwrapNestedLocations(data []byte) ([]byte, error) {
	var doc map[string]interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}

	changed := false
	runs, _ := doc["runs"].([]interface{})
	for _, runValue := range runs {
		run, _ := runValue.(map[string]interface{})
		results, _ := run["results"].([]interface{})
		for _, resultValue := range results {
			result, _ := resultValue.(map[string]interface{})
			for _, key := range []string{"locations", "relatedLocations"} {
				locations, _ := result[key].([]interface{})
				for i, locationValue := range locations {
					location, _ := locationValue.(map[string]interface{})
					if location == nil {
						continue
					}
					if _, ok := location["physicalLocation"]; ok {
						continue
					}
					if nested, ok := location["location"].(map[string]interface{}); ok {
						locations[i] = nested
						changed = true
					}
				}
			}
		}
	}

	if !changed {
		return data, nil
	}
	return json.Marshal(doc)
}

// ExtractRecords builds one Record per result of the report's first run,
// in file order. A limit > 0 stops after exactly that many records; results
// past the limit are never read. A report with zero runs is an error.
// Subsequent runs of a multi-run report are ignored.
func ExtractRecords(report *sarif.Report, archive *sourcearchive.Archive, contextRadius, limit int) ([]Record, error) {
	if report == nil || len(report.Runs) == 0 {
		return nil, fmt.Errorf("SARIF report has no runs")
	}

	results := report.Runs[0].Results
	records := make([]Record, 0, len(results))
	for idx, result := range results {
		if limit > 0 && idx >= limit {
			break
		}

		records = append(records, Record{
			ResultIndex: idx,
			RuleID:      result.RuleID,
			Message:     result.Message.Text,
			Score:       scoreProperty(result),
			Sink:        buildLocationPayload(firstPhysicalLocation(result.Locations), archive, contextRadius),
			Source:      buildLocationPayload(firstPhysicalLocation(result.RelatedLocations), archive, contextRadius),
			Path:        flattenCodeFlows(result.CodeFlows, archive, contextRadius),
		})
	}
	return records, nil
}

// scoreProperty pulls the custom numeric "score" result property, if present.
func scoreProperty(result *sarif.Result) *float64 {
	if result.Properties == nil {
		return nil
	}
	switch value := result.Properties["score"].(type) {
	case float64:
		return &value
	case int:
		score := float64(value)
		return &score
	default:
		return nil
	}
}

// firstPhysicalLocation returns the first entry that carries a physical
// location, or nil when the collection is empty or none qualifies.
func firstPhysicalLocation(locations []*sarif.Location) *sarif.PhysicalLocation {
	for _, location := range locations {
		if location == nil {
			continue
		}
		if location.PhysicalLocation != nil {
			return location.PhysicalLocation
		}
	}
	return nil
}

// buildLocationPayload extracts URI and region bounds from a physical
// location and asks the archive for a snippet. Bounds stay nil individually
// when unavailable; a nil URI or start line always yields a nil snippet.
func buildLocationPayload(physical *sarif.PhysicalLocation, archive *sourcearchive.Archive, contextRadius int) *LocationPayload {
	if physical == nil {
		return nil
	}

	payload := &LocationPayload{}
	if physical.ArtifactLocation != nil {
		payload.URI = physical.ArtifactLocation.URI
	}
	if physical.Region != nil {
		payload.StartLine = physical.Region.StartLine
		payload.StartColumn = physical.Region.StartColumn
		payload.EndLine = physical.Region.EndLine
		payload.EndColumn = physical.Region.EndColumn
	}

	if archive != nil && payload.URI != nil && payload.StartLine != nil {
		if snippet, ok := archive.ReadContext(*payload.URI, *payload.StartLine, contextRadius); ok {
			payload.Snippet = &snippet
		}
	}
	return payload
}

// flattenCodeFlows walks every flow, every thread within a flow and every
// node within a thread, in file order, emitting one FlowStep per node.
// Repeated locations are kept; ordering is never changed.
func flattenCodeFlows(codeFlows []*sarif.CodeFlow, archive *sourcearchive.Archive, contextRadius int) []FlowStep {
	steps := make([]FlowStep, 0)
	for _, flow := range codeFlows {
		if flow == nil {
			continue
		}
		for _, thread := range flow.ThreadFlows {
			if thread == nil {
				continue
			}
			for _, node := range thread.Locations {
				if node == nil || node.Location == nil {
					steps = append(steps, FlowStep{})
					continue
				}

				step := FlowStep{
					Location: buildLocationPayload(node.Location.PhysicalLocation, archive, contextRadius),
				}
				if node.Location.Message != nil {
					step.Message = node.Location.Message.Text
				}
				steps = append(steps, step)
			}
		}
	}
	return steps
}
