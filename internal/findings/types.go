// Package findings turns SARIF results into normalized triage records,
// correlating each reported location with source snippets from the
// database source archive.
package findings

// Record is one normalized finding. Optional fields stay nil when the
// results file does not populate them; they are never backfilled.
type Record struct {
	ResultIndex int              `json:"result_index"`
	RuleID      *string          `json:"rule_id"`
	Message     *string          `json:"message"`
	Score       *float64         `json:"score"`
	Sink        *LocationPayload `json:"sink"`
	Source      *LocationPayload `json:"source"`
	Path        []FlowStep       `json:"path"`
}

// LocationPayload describes one physical location with an optional rendered
// snippet. Region bounds are 1-based and independent of snippet resolution.
type LocationPayload struct {
	URI         *string `json:"uri"`
	StartLine   *int    `json:"start_line"`
	StartColumn *int    `json:"start_column"`
	EndLine     *int    `json:"end_line"`
	EndColumn   *int    `json:"end_column"`
	Snippet     *string `json:"snippet"`
}

// FlowStep is one node in a finding's data-flow path from source to sink.
type FlowStep struct {
	Message  *string          `json:"message"`
	Location *LocationPayload `json:"location"`
}
