package jsval

import (
	"math"
	"testing"
)

func TestTruthy(t *testing.T) {
	tt := []struct {
		name string
		v    any
		want bool
	}{
		{"nil", nil, false},
		{"false", false, false},
		{"true", true, true},
		{"empty string", "", false},
		{"string", "x", true},
		{"zero", int64(0), false},
		{"NaN", math.NaN(), false},
		{"number", 1.5, true},
		{"empty object", map[string]any{}, true},
		{"empty array", []any{}, true},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			if got := Truthy(tc.v); got != tc.want {
				t.Fatalf("Truthy(%v) = %v, want %v", tc.v, got, tc.want)
			}
		})
	}
}

func TestString(t *testing.T) {
	tt := []struct {
		v    any
		want string
	}{
		{nil, "undefined"},
		{"abc", "abc"},
		{int64(42), "42"},
		{float64(8), "8"},
		{1.25, "1.25"},
		{true, "true"},
		{[]any{int64(0), "Invalid JSON", "123"}, "0,Invalid JSON,123"},
		{map[string]any{"a": 1}, "[object Object]"},
	}

	for _, tc := range tt {
		if got := String(tc.v); got != tc.want {
			t.Errorf("String(%v) = %q, want %q", tc.v, got, tc.want)
		}
	}
}

func TestNumber(t *testing.T) {
	if n, ok := Number(int64(3)); !ok || n != 3 {
		t.Fatalf("expected 3, got %v %v", n, ok)
	}
	if _, ok := Number("3"); ok {
		t.Fatalf("strings are not numbers")
	}
}
