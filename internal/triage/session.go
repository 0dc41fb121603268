// Package triage drives one interactive model conversation per finding,
// keeping a human in the loop for the final verdict.
package triage

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/qltriage/qltriage/internal/findings"
	"github.com/qltriage/qltriage/internal/gemini"
	"github.com/qltriage/qltriage/internal/prompt"
)

// ErrQuit signals that the user ended the whole run, not just one session.
var ErrQuit = errors.New("triage run ended by user")

// Control tokens recognised in the interactive loop, matched
// case-insensitively after trimming surrounding whitespace.
const (
	tokenQuit = "quit"
	tokenNext = "next"
)

// session states
type state int

const (
	stateAwaitingInitialResponse state = iota
	stateInteractive
	stateDone
)

// Runner executes triage sessions over a batch of finding records. Input
// lines come from a single shared reader so scripted input feeds sessions
// deterministically in tests.
type Runner struct {
	generator gemini.Generator
	logger    hclog.Logger
	input     *bufio.Reader
	out       io.Writer
}

// NewRunner wires a runner to its model capability and console streams.
func NewRunner(generator gemini.Generator, logger hclog.Logger, in io.Reader, out io.Writer) *Runner {
	return &Runner{
		generator: generator,
		logger:    logger,
		input:     bufio.NewReader(in),
		out:       out,
	}
}

// Run triages every record in order, one session each. It stops early only
// on ErrQuit; a failed session just moves the batch to the next finding.
func (r *Runner) Run(ctx context.Context, records []findings.Record) error {
	fmt.Fprintf(r.out, "Found %d findings to analyze.\n", len(records))

	for i, record := range records {
		fmt.Fprintf(r.out, "\n--- Analyzing Finding %d/%d ---\n", i+1, len(records))
		if err := r.runSession(ctx, record); err != nil {
			return err
		}
	}

	fmt.Fprintln(r.out, "\n--- All findings analyzed. ---")
	return nil
}

// runSession walks one finding through the session state machine:
// AwaitingInitialResponse -> Interactive -> Done. A transport error in any
// state reports and finishes the session without retrying. Only ErrQuit is
// returned as an error.
func (r *Runner) runSession(ctx context.Context, record findings.Record) error {
	var history []gemini.Content
	current := stateAwaitingInitialResponse

	for current != stateDone {
		switch current {
		case stateAwaitingInitialResponse:
			initialPrompt := prompt.Format(record)
			fmt.Fprintln(r.out, "--- Sending Initial Prompt to Gemini ---")
			fmt.Fprintln(r.out, initialPrompt)
			fmt.Fprintln(r.out, "----------------------------------------")

			reply, err := r.sendAndRecord(ctx, &history, initialPrompt)
			if err != nil {
				fmt.Fprintf(r.out, "An error occurred while communicating with the Gemini API: %v\n", err)
				current = stateDone
				continue
			}

			fmt.Fprintf(r.out, "\n--- Gemini's Analysis ---\n%s\n-------------------------\n\n", reply)
			fmt.Fprintln(r.out, "Entering interactive chat. Type 'next' to move to the next finding, or 'quit' to exit.")
			current = stateInteractive

		case stateInteractive:
			fmt.Fprint(r.out, "You: ")
			line, ok := r.readLine()
			if !ok {
				// input exhausted, same as an explicit quit
				return ErrQuit
			}

			switch strings.ToLower(strings.TrimSpace(line)) {
			case tokenQuit:
				return ErrQuit
			case tokenNext:
				fmt.Fprintln(r.out, "\nMoving to the next finding...")
				current = stateDone
			case "":
				// reprompt
			default:
				fmt.Fprintln(r.out, "...sending to Gemini...")
				reply, err := r.sendAndRecord(ctx, &history, line)
				if err != nil {
					fmt.Fprintf(r.out, "An error occurred: %v\n", err)
					current = stateDone
					continue
				}
				fmt.Fprintf(r.out, "\nGemini: %s\n\n", reply)
			}
		}
	}
	return nil
}

// sendAndRecord appends the user turn, calls the model with the full prior
// history and appends the model turn. The model turn is recorded even when
// its text is empty, preserving the turn-pair structure for later calls.
func (r *Runner) sendAndRecord(ctx context.Context, history *[]gemini.Content, text string) (string, error) {
	*history = append(*history, gemini.Content{Role: gemini.RoleUser, Text: text})

	reply, err := r.generator.Generate(ctx, *history)
	if err != nil {
		r.logger.Debug("model call failed", "turns", len(*history), "error", err)
		return "", err
	}

	*history = append(*history, gemini.Content{Role: gemini.RoleModel, Text: reply})
	return reply, nil
}

// readLine reads one input line of any length, reporting false on EOF or
// read error. A final line without a trailing newline is still delivered.
func (r *Runner) readLine() (string, bool) {
	line, err := r.input.ReadString('\n')
	if err != nil {
		if err == io.EOF && line != "" {
			return strings.TrimSuffix(line, "\r"), true
		}
		return "", false
	}
	line = strings.TrimSuffix(line, "\n")
	return strings.TrimSuffix(line, "\r"), true
}
