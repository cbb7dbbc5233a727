package openai

import (
	"context"
	"fmt"

	"github.com/aretw0/setter/pkg/domain"
	"github.com/aretw0/setter/pkg/ports"
	backend "github.com/openai/openai-go"
)

const (
	// DefaultBrainModel drafts replies with the funnel instructions in context.
	DefaultBrainModel = string(backend.ChatModelGPT4o)

	// historyWindow is how many past messages the draft sees.
	historyWindow = 10

	brainTemperature = 0.2
	voiceTemperature = 0.5
	maxOutputTokens  = 150

	emptyDraftReply = "Hmm, tell me more."
)

const voicePrompt = `Rewrite the following message as Jamie.
Persona: Supportive older sister. Casual American vibe.
STRICT FORMATTING RULES:
1. NO DASHES (—) or hyphens (-). Use '...' or commas instead.
2. Make it sound like a real text message.
3. Do not answer questions not present in the draft.
4. Do not add philosophical thoughts.
5. End with the exact same question found in the draft (if any).

Draft to rewrite: %q`

// Generator implements ports.Generator in two passes: a draft from the
// brain model, then an optional rewrite by a tone-tuned voice model.
type Generator struct {
	client     *Client
	brainModel string
	voiceModel string
}

// GeneratorOption configures Generator.
type GeneratorOption func(*Generator)

// WithBrainModel overrides DefaultBrainModel.
func WithBrainModel(model string) GeneratorOption {
	return func(g *Generator) {
		if model != "" {
			g.brainModel = model
		}
	}
}

// WithVoiceModel enables the rewrite pass with the given model.
func WithVoiceModel(model string) GeneratorOption {
	return func(g *Generator) {
		g.voiceModel = model
	}
}

// NewGenerator creates a generator. Without WithVoiceModel the draft is
// only cleaned, not rewritten.
func NewGenerator(client *Client, opts ...GeneratorOption) *Generator {
	g := &Generator{client: client, brainModel: DefaultBrainModel}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate drafts, optionally rewrites, and cleans the reply.
func (g *Generator) Generate(ctx context.Context, prompt ports.Prompt) (string, error) {
	draft, err := g.client.complete(ctx, backend.ChatCompletionNewParams{
		Model:               backend.ChatModel(g.brainModel),
		Temperature:         backend.Float(brainTemperature),
		MaxCompletionTokens: backend.Int(maxOutputTokens),
		Messages:            draftMessages(prompt),
	})
	if err != nil {
		return "", fmt.Errorf("draft reply: %w", err)
	}
	if draft == "" {
		return CleanFormatting(emptyDraftReply), nil
	}

	if g.voiceModel != "" {
		voiced, err := g.client.complete(ctx, backend.ChatCompletionNewParams{
			Model:               backend.ChatModel(g.voiceModel),
			Temperature:         backend.Float(voiceTemperature),
			MaxCompletionTokens: backend.Int(maxOutputTokens),
			Messages: []backend.ChatCompletionMessageParamUnion{
				backend.UserMessage(fmt.Sprintf(voicePrompt, draft)),
			},
		})
		switch {
		case err != nil:
			g.client.logger.Warn("voice rewrite failed, using draft", "state", prompt.State, "err", err)
		case voiced != "":
			draft = voiced
		}
	}

	return CleanFormatting(draft), nil
}

func draftMessages(p ports.Prompt) []backend.ChatCompletionMessageParamUnion {
	history := p.History
	if len(history) > historyWindow {
		history = history[len(history)-historyWindow:]
	}

	msgs := make([]backend.ChatCompletionMessageParamUnion, 0, len(history)+2)
	msgs = append(msgs, backend.SystemMessage(p.System))
	for _, m := range history {
		switch m.Role {
		case domain.RoleAssistant:
			msgs = append(msgs, backend.AssistantMessage(m.Content))
		case domain.RoleSystem:
			msgs = append(msgs, backend.SystemMessage(m.Content))
		default:
			msgs = append(msgs, backend.UserMessage(m.Content))
		}
	}
	msgs = append(msgs, backend.UserMessage(p.Instruction+"\n\n[CURRENT USER MESSAGE]:\n"+p.Message))
	return msgs
}
