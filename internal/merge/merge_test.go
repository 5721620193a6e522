package merge

import "testing"

func TestMapsOverrideWins(t *testing.T) {
	base := map[string]int{"a": 1, "b": 2}
	extra := map[string]int{"b": 20, "c": 30}

	got := Maps(OverrideWins, base, extra)

	want := map[string]int{"a": 1, "b": 20, "c": 30}
	if len(got) != len(want) {
		t.Fatalf("expected %d keys, got %d", len(want), len(got))
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("key %s: expected %d, got %d", k, v, got[k])
		}
	}
}

func TestMapsFirstWins(t *testing.T) {
	base := map[string]int{"a": 1, "b": 2}
	extra := map[string]int{"b": 20, "c": 30}

	got := Maps(FirstWins, base, extra)

	if got["b"] != 2 {
		t.Errorf("expected base value to survive, got %d", got["b"])
	}
	if got["c"] != 30 {
		t.Errorf("expected missing key to be filled, got %d", got["c"])
	}
}

func TestMapsDoesNotMutateInputs(t *testing.T) {
	base := map[string]int{"a": 1}
	extra := map[string]int{"a": 2, "b": 3}

	out := Maps(OverrideWins, base, extra)
	out["z"] = 99

	if len(base) != 1 || base["a"] != 1 {
		t.Errorf("base mutated: %v", base)
	}
	if len(extra) != 2 {
		t.Errorf("extra mutated: %v", extra)
	}
}

func TestMapsNilInputs(t *testing.T) {
	got := Maps[string, int](OverrideWins, nil, nil)
	if got == nil {
		t.Fatal("expected a non-nil map")
	}
	got["x"] = 1
}

func TestValue(t *testing.T) {
	tests := []struct {
		name      string
		strategy  Strategy
		current   int
		candidate int
		want      int
	}{
		{"override replaces", OverrideWins, 3, 5, 5},
		{"override ignores zero candidate", OverrideWins, 3, 0, 3},
		{"first keeps current", FirstWins, 3, 5, 3},
		{"first fills zero", FirstWins, 0, 5, 5},
		{"both zero", FirstWins, 0, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Value(tt.strategy, tt.current, tt.candidate); got != tt.want {
				t.Errorf("Value(%v, %d, %d) = %d, want %d", tt.strategy, tt.current, tt.candidate, got, tt.want)
			}
		})
	}
}
