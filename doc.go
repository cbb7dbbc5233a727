/*
Package setter is a deterministic sales-funnel conversation engine.

It decides, for each inbound message, which stage of a coaching sales funnel
the conversation moves to. Messages are normalized once and run through
phrase-based signal detectors; a fixed guard table then picks the next stage
and updates the per-session attribute bag. Language models are optional
collaborators: they may resolve qualification attributes and write the reply,
but never choose the stage.

# Layout

  - pkg/domain: states, labels, attributes, sessions and events.
  - pkg/signals: normalization, phrasebook and detectors.
  - pkg/funnel: the transition engine and its edge table.
  - pkg/dialogue: one conversational turn end to end.
  - pkg/adapters: memory and Redis storage, OpenAI and rule-based models,
    HTTP and MCP transports.

# Usage

	eng := funnel.New()
	attrs := &domain.Attributes{}
	next, err := eng.Process(domain.StateQualLocation, attrs, "I live in Texas")
	// next == domain.StateQualAge, attrs.LocationRegion == domain.RegionUS

The setter binary wraps the same pieces: `setter serve` for HTTP,
`setter chat` for a terminal conversation and `setter mcp` for agents.
*/
package setter
