package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/setter/pkg/domain"
	"github.com/aretw0/setter/pkg/funnel"
)

// Overlay marks session progress on the graph.
type Overlay struct {
	Visited []domain.State
	Current domain.State
}

// GenerateMermaid renders the funnel edge table as a Mermaid flowchart.
// Shapes follow the stage kind:
// - ENTRY and END: ((Circle))
// - Qualification: [/Parallelogram/]
// - Routes: [[Subroutine]]
// - Everything else: [Rectangle]
// Self-loops are omitted; the edge label carries the guard.
func GenerateMermaid(edges []funnel.Edge, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	declared := make(map[domain.State]bool)
	declare := func(s domain.State) {
		if declared[s] {
			return
		}
		declared[s] = true
		opener, closer := shape(s)
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", nodeID(s), opener, s, closer)
	}

	for _, e := range edges {
		declare(e.From)
		declare(e.To)
		if e.From == e.To {
			continue
		}

		arrow := "-->"
		if e.To == domain.StateEnd && !e.From.IsRoute() {
			arrow = "-.->"
		}
		if e.Condition != "" {
			cond := strings.ReplaceAll(e.Condition, "\"", "'")
			arrow = fmt.Sprintf("-- \"%s\" -->", cond)
			if e.To == domain.StateEnd && !e.From.IsRoute() {
				arrow = fmt.Sprintf("-. \"%s\" .->", cond)
			}
		}
		fmt.Fprintf(&sb, "    %s %s %s\n", nodeID(e.From), arrow, nodeID(e.To))
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		seen := make(map[domain.State]bool)
		for _, s := range overlay.Visited {
			if s == "" || seen[s] || !declared[s] {
				continue
			}
			seen[s] = true
			fmt.Fprintf(&sb, "    class %s visited;\n", nodeID(s))
		}
		if overlay.Current != "" && declared[overlay.Current] {
			fmt.Fprintf(&sb, "    class %s current;\n", nodeID(overlay.Current))
		}
	}

	return sb.String()
}

func shape(s domain.State) (string, string) {
	switch {
	case s == domain.StateEntry || s == domain.StateEnd:
		return "((", "))"
	case s.IsRoute():
		return "[[", "]]"
	case s.IsQualification():
		return "[/", "/]"
	}
	return "[", "]"
}

// nodeID keeps Mermaid from reading END as a keyword.
func nodeID(s domain.State) string {
	return "s_" + strings.ToLower(string(s))
}
