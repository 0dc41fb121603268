package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qltriage/qltriage/internal/findings"
)

func strPtr(s string) *string { return &s }

func intPtr(n int) *int { return &n }

func floatPtr(f float64) *float64 { return &f }

func TestFormatPopulatedRecord(t *testing.T) {
	record := findings.Record{
		RuleID: strPtr("py/shell-injection"),
		Score:  floatPtr(8.8),
		Sink: &findings.LocationPayload{
			URI:       strPtr("app/cmd.py"),
			StartLine: intPtr(10),
			Snippet:   strPtr("    9: cmd = build()\n   10: os.system(cmd)"),
		},
		Source: &findings.LocationPayload{
			URI:     strPtr("app/http.py"),
			Snippet: strPtr("    3: cmd = request.args['c']"),
		},
		Path: []findings.FlowStep{
			{Message: strPtr("source"), Location: &findings.LocationPayload{URI: strPtr("app/http.py"), StartLine: intPtr(3)}},
			{Location: &findings.LocationPayload{URI: strPtr("app/cmd.py"), StartLine: intPtr(10)}},
		},
	}

	out := Format(record)

	assert.True(t, strings.HasPrefix(out, "You’re triaging shell-command injection alerts.\n"))
	assert.Contains(t, out, "Rule: py/shell-injection\n")
	assert.Contains(t, out, "Score: 8.8\n")
	assert.Contains(t, out, "File: app/cmd.py\n")
	assert.Contains(t, out, "Line: 10\n")
	assert.Contains(t, out, "Sink (where the command is executed):\n```\n    9: cmd = build()\n   10: os.system(cmd)\n```\n")
	assert.Contains(t, out, "Source (where the input originates):\n```\n    3: cmd = request.args['c']\n```\n")
	assert.Contains(t, out, "Taint Path (data flow from source to sink):\n1. source at app/http.py:3\n2. Step at app/cmd.py:10\n\nPlease answer these questions:")
	assert.NotContains(t, out, "No data flow path available.")
	assert.Contains(t, out, `"verdict": "malicious|benign|unsure"`)
}

func TestFormatEmptyRecord(t *testing.T) {
	out := Format(findings.Record{})

	assert.Contains(t, out, "Rule: N/A\n")
	assert.Contains(t, out, "Score: N/A\n")
	assert.Contains(t, out, "File: N/A\n")
	assert.Contains(t, out, "Line: N/A\n")
	assert.Contains(t, out, "Sink (where the command is executed):\n```\nNo snippet available.\n```\n")
	assert.Contains(t, out, "Source (where the input originates):\n```\nNo snippet available.\n```\n")
	assert.Contains(t, out, "Taint Path (data flow from source to sink):\nNo data flow path available.\n\nPlease answer these questions:")
}

func TestFormatStepFallbacks(t *testing.T) {
	record := findings.Record{
		Path: []findings.FlowStep{
			{},
			{Message: strPtr("")},
			{Message: strPtr("sink call"), Location: &findings.LocationPayload{URI: strPtr("a.py")}},
		},
	}

	out := Format(record)

	assert.Contains(t, out, "1. Step at N/A:N/A\n")
	assert.Contains(t, out, "2. Step at N/A:N/A\n")
	assert.Contains(t, out, "3. sink call at a.py:N/A\n")
}

func TestFormatIsDeterministic(t *testing.T) {
	record := findings.Record{RuleID: strPtr("r")}
	first := Format(record)
	second := Format(record)
	require.Equal(t, first, second)
}

func TestFormatScoreRendering(t *testing.T) {
	out := Format(findings.Record{Score: floatPtr(7)})
	assert.Contains(t, out, "Score: 7\n")

	out = Format(findings.Record{Score: floatPtr(8.25)})
	assert.Contains(t, out, "Score: 8.25\n")
}
