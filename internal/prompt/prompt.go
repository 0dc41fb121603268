// Package prompt renders normalized finding records into the fixed
// natural-language scaffold sent to the triage model.
package prompt

import (
	"bytes"
	_ "embed"
	"fmt"
	"strconv"
	"text/template"

	"github.com/qltriage/qltriage/internal/findings"
)

// Separator delimits prompts in flat prompt-file output.
const Separator = "\n\n---\n\n"

const (
	missingValue   = "N/A"
	missingSnippet = "No snippet available."
	defaultStep    = "Step"
)

//go:embed triage.tmpl
var triageTemplate string

var tmpl = template.Must(template.New("triage").Parse(triageTemplate))

// view is the pre-rendered template input. Missing fields are substituted
// with fixed placeholders so the scaffold stays stable across findings.
type view struct {
	Rule          string
	Score         string
	File          string
	Line          string
	SinkSnippet   string
	SourceSnippet string
	Steps         []string
}

// Format renders one finding record into a single prompt string. It is a
// pure function: no state, no I/O.
func Format(record findings.Record) string {
	v := view{
		Rule:          orMissing(record.RuleID),
		Score:         formatScore(record.Score),
		File:          missingValue,
		Line:          missingValue,
		SinkSnippet:   missingSnippet,
		SourceSnippet: missingSnippet,
	}

	if record.Sink != nil {
		v.File = orMissing(record.Sink.URI)
		v.Line = formatLine(record.Sink.StartLine)
		if record.Sink.Snippet != nil {
			v.SinkSnippet = *record.Sink.Snippet
		}
	}
	if record.Source != nil && record.Source.Snippet != nil {
		v.SourceSnippet = *record.Source.Snippet
	}

	for i, step := range record.Path {
		v.Steps = append(v.Steps, formatStep(i+1, step))
	}

	var out bytes.Buffer
	if err := tmpl.Execute(&out, v); err != nil {
		// The template is static and the view is plain strings; execution
		// cannot fail at runtime.
		panic(err)
	}
	return out.String()
}

// formatStep renders one taint-path step as "{n}. {message} at {uri}:{line}".
func formatStep(n int, step findings.FlowStep) string {
	message := defaultStep
	if step.Message != nil && *step.Message != "" {
		message = *step.Message
	}

	uri := missingValue
	line := missingValue
	if step.Location != nil {
		uri = orMissing(step.Location.URI)
		line = formatLine(step.Location.StartLine)
	}
	return fmt.Sprintf("%d. %s at %s:%s", n, message, uri, line)
}

func orMissing(value *string) string {
	if value == nil || *value == "" {
		return missingValue
	}
	return *value
}

func formatLine(line *int) string {
	if line == nil {
		return missingValue
	}
	return strconv.Itoa(*line)
}

func formatScore(score *float64) string {
	if score == nil {
		return missingValue
	}
	return strconv.FormatFloat(*score, 'g', -1, 64)
}
