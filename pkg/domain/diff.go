package domain

import (
	"reflect"
)

// AttributeDiff returns the keys whose values changed between two bags.
// Keys removed in newer are reported with a nil value. A nil result means
// nothing changed.
func AttributeDiff(older, newer *Attributes) map[string]any {
	if newer == nil {
		return nil
	}
	next := newer.ToMap()

	delta := make(map[string]any)
	if older == nil {
		for k, v := range next {
			delta[k] = v
		}
		return delta
	}
	prev := older.ToMap()

	for k, newVal := range next {
		oldVal, exists := prev[k]
		if !exists || !reflect.DeepEqual(oldVal, newVal) {
			delta[k] = newVal
		}
	}
	for k := range prev {
		if _, exists := next[k]; !exists {
			delta[k] = nil
		}
	}

	if len(delta) == 0 {
		return nil
	}
	return delta
}
