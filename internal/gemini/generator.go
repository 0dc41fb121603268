// Package gemini provides the narrow LLM capability used by triage sessions
// and its Google Gemini implementation.
package gemini

import "context"

// Role values recognised by the chat contract.
const (
	RoleUser  = "user"
	RoleModel = "model"
)

// Content is one conversation turn.
type Content struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

// Generator is the synchronous completion capability. Implementations send
// the full ordered history with every call; tests substitute a deterministic
// fake.
type Generator interface {
	Generate(ctx context.Context, history []Content) (string, error)
}
