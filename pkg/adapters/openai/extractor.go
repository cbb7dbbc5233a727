package openai

import (
	"context"
	"fmt"
	"strings"

	"github.com/aretw0/setter/pkg/domain"
	backend "github.com/openai/openai-go"
)

// DefaultExtractorModel is small and cheap; the task is a one-word label.
const DefaultExtractorModel = string(backend.ChatModelGPT4oMini)

var categoryPrompts = map[domain.Category]string{
	domain.CategoryLocation:         "Extract location: 'US', 'CANADA', 'EU', 'OTHER'.",
	domain.CategoryRelationshipGoal: "Classify goal: 'SERIOUS', 'CASUAL'.",
	domain.CategoryFitness:          "Classify fitness: 'FIT', 'AVERAGE', 'UNFIT'.",
	domain.CategoryFinance:          "Classify finance: 'LOW', 'MID', 'HIGH'.",
}

// Extractor implements ports.Extractor with a zero-temperature classifier.
type Extractor struct {
	client *Client
	model  string
}

// NewExtractor creates an extractor. An empty model selects DefaultExtractorModel.
func NewExtractor(client *Client, model string) *Extractor {
	if model == "" {
		model = DefaultExtractorModel
	}
	return &Extractor{client: client, model: model}
}

// Extract asks the model for one label. Answers containing UNKNOWN, or
// anything outside the category's closed set, are unresolved.
func (e *Extractor) Extract(ctx context.Context, text string, category domain.Category) (domain.Label, error) {
	prompt, ok := categoryPrompts[category]
	if !ok {
		return domain.Unresolved(category), fmt.Errorf("unknown category %q", category)
	}

	answer, err := e.client.complete(ctx, backend.ChatCompletionNewParams{
		Model:       backend.ChatModel(e.model),
		Temperature: backend.Float(0),
		Messages: []backend.ChatCompletionMessageParamUnion{
			backend.SystemMessage("Extractor. " + prompt + " Answer with the label only, or UNKNOWN."),
			backend.UserMessage(text),
		},
	})
	if err != nil {
		return domain.Unresolved(category), fmt.Errorf("extract %s: %w", category, err)
	}

	answer = strings.ToUpper(answer)
	if strings.Contains(answer, "UNKNOWN") {
		return domain.Unresolved(category), nil
	}
	label := domain.ParseLabel(category, strings.Trim(answer, " .'\"`"))

	e.client.logger.Debug("extracted attribute",
		"category", category,
		"value", label.Value,
		"resolved", label.Resolved,
	)
	return label, nil
}
