package vdom

import "testing"

func TestIsEventProp(t *testing.T) {
	tests := []struct {
		key  string
		want bool
	}{
		{"onclick", true},
		{"onClick", true},
		{"ONCLICK", true},
		{"on", false},
		{"className", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsEventProp(tt.key); got != tt.want {
			t.Errorf("IsEventProp(%q) = %v, want %v", tt.key, got, tt.want)
		}
	}
}

func TestEventName(t *testing.T) {
	if got := EventName("onClick"); got != "click" {
		t.Errorf("EventName(onClick) = %q", got)
	}
	if got := EventName("value"); got != "" {
		t.Errorf("EventName(value) = %q", got)
	}
}

type point struct{ X, Y int }

func TestSameValue(t *testing.T) {
	m := map[string]int{"a": 1}
	s := []int{1, 2}
	l := &Listener{}
	fn := func() {}

	tests := []struct {
		name string
		a, b any
		want bool
	}{
		{"equal strings", "a", "a", true},
		{"different strings", "a", "b", false},
		{"equal ints", 1, 1, true},
		{"int vs int64", 1, int64(1), false},
		{"bools", true, false, false},
		{"nil nil", nil, nil, true},
		{"nil vs value", nil, 0, false},
		{"value vs nil", 0, nil, false},
		{"same listener", l, l, true},
		{"different listeners", l, &Listener{}, false},
		{"same map", m, m, true},
		{"equal but distinct maps", m, map[string]int{"a": 1}, false},
		{"same slice", s, s, true},
		{"equal but distinct slices", s, []int{1, 2}, false},
		{"funcs never equal", fn, fn, false},
		{"comparable structs", point{1, 2}, point{1, 2}, true},
		{"different structs", point{1, 2}, point{2, 1}, false},
		{"uint8", uint8(3), uint8(3), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SameValue(tt.a, tt.b); got != tt.want {
				t.Errorf("SameValue(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestSameDeps(t *testing.T) {
	if !SameDeps([]any{1, "a"}, []any{1, "a"}) {
		t.Error("identical deps should match")
	}
	if SameDeps([]any{1}, []any{2}) {
		t.Error("changed deps should not match")
	}
	if SameDeps([]any{1}, []any{1, 2}) {
		t.Error("length change should not match")
	}
	if !SameDeps([]any{}, nil) {
		t.Error("two empty lists match")
	}
}
