// Package merge combines keyed option sets without mutating its inputs.
package merge

// Strategy decides which side wins when both maps carry a key.
type Strategy int

const (
	// OverrideWins lets the later map replace values already present.
	OverrideWins Strategy = iota
	// FirstWins keeps values already present and only fills missing keys.
	FirstWins
)

func (s Strategy) String() string {
	switch s {
	case OverrideWins:
		return "override-wins"
	case FirstWins:
		return "first-wins"
	}
	return "unknown"
}

// Maps returns a fresh map holding base merged with extra under strategy s.
// Neither input is modified.
func Maps[K comparable, V any](s Strategy, base, extra map[K]V) map[K]V {
	out := make(map[K]V, len(base)+len(extra))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range extra {
		if _, exists := out[k]; exists && s == FirstWins {
			continue
		}
		out[k] = v
	}
	return out
}

// Value picks between a current and a candidate scalar. A zero current value
// counts as unset, so the candidate fills it under either strategy.
func Value[V comparable](s Strategy, current, candidate V) V {
	var zero V
	if candidate == zero {
		return current
	}
	if current == zero || s == OverrideWins {
		return candidate
	}
	return current
}
