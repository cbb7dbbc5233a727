// Package rules provides model-free implementations of the extractor and
// generator ports. They back the CLI when no API key is configured and serve
// as the fallback when a model call fails.
package rules

import (
	"context"
	"fmt"

	"github.com/aretw0/setter/pkg/domain"
	"github.com/aretw0/setter/pkg/ports"
	"github.com/aretw0/setter/pkg/signals"
)

// Extractor classifies with the phrasebook extractors.
type Extractor struct {
	detector *signals.Detector
}

// NewExtractor returns an extractor over d. A nil detector uses the default phrasebook.
func NewExtractor(d *signals.Detector) *Extractor {
	if d == nil {
		d = signals.Default()
	}
	return &Extractor{detector: d}
}

// Extract resolves a label from phrase matches. For location, an answer that
// names no known place but is neither empty nor a stall phrase is OTHER.
func (e *Extractor) Extract(_ context.Context, text string, category domain.Category) (domain.Label, error) {
	var value string
	switch category {
	case domain.CategoryLocation:
		if loc, ok := e.detector.ExtractLocationDetail(text); ok {
			value = string(loc.Region)
		} else if n := signals.Normalize(text); n != "" && !e.detector.IsStallPhrase(n) {
			value = string(domain.RegionOther)
		}
	case domain.CategoryRelationshipGoal:
		value = string(e.detector.ClassifyRelationshipGoal(text))
	case domain.CategoryFitness:
		value = string(e.detector.ClassifyFitness(text))
	case domain.CategoryFinance:
		value = string(e.detector.GetFinancialBucket(text))
	default:
		return domain.Unresolved(category), fmt.Errorf("unknown category %q", category)
	}
	return domain.ParseLabel(category, value), nil
}

// Generator answers with the catalog's canned line for the state.
type Generator struct{}

// NewGenerator returns a template generator.
func NewGenerator() *Generator { return &Generator{} }

// Generate returns prompt.Fallback. It fails only when the prompt has none.
func (Generator) Generate(_ context.Context, prompt ports.Prompt) (string, error) {
	if prompt.Fallback == "" {
		return "", fmt.Errorf("no fallback line for state %s", prompt.State)
	}
	return prompt.Fallback, nil
}

var (
	_ ports.Extractor = (*Extractor)(nil)
	_ ports.Generator = Generator{}
)
