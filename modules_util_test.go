package fnmock

import (
	"math"
	"testing"
)

func TestRandomInt(t *testing.T) {
	t.Parallel()

	tt := []struct {
		name   string
		lo, hi int64
	}{
		{name: "single value", lo: 5, hi: 5},
		{name: "reversed bounds", lo: 10, hi: -10},
		{name: "wide range", lo: -(1 << 62), hi: 1 << 62},
		{name: "full range", lo: math.MinInt64, hi: math.MaxInt64},
		{name: "near max", lo: math.MaxInt64 - 1, hi: math.MaxInt64},
		{name: "near min", lo: math.MinInt64, hi: math.MinInt64 + 1},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			lo, hi := tc.lo, tc.hi
			if hi < lo {
				lo, hi = hi, lo
			}
			for i := 0; i < 100; i++ {
				n := randomInt(tc.lo, tc.hi)
				if n < lo || n > hi {
					t.Fatalf("randomInt(%d, %d) = %d, out of range", tc.lo, tc.hi, n)
				}
			}
		})
	}
}
