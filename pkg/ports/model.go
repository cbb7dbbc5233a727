package ports

import (
	"context"

	"github.com/aretw0/setter/pkg/domain"
)

// Extractor classifies a message into one label of a category.
// Ambiguity is not an error: it returns domain.Unresolved(category).
// Callers treat errors as unresolved as well.
type Extractor interface {
	Extract(ctx context.Context, text string, category domain.Category) (domain.Label, error)
}

// Prompt is everything a generator needs to write the next reply.
type Prompt struct {
	// State is the funnel state the reply is written for.
	State domain.State
	// System is the persona prompt.
	System string
	// Instruction tells the model what this stage of the funnel must achieve.
	Instruction string
	// Fallback is a canned reply for when generation is unavailable.
	Fallback string
	// History holds the most recent messages, oldest first.
	History []domain.Message
	// Message is the lead's latest message.
	Message string
}

// Generator produces the assistant reply.
type Generator interface {
	Generate(ctx context.Context, prompt Prompt) (string, error)
}
