package util

import (
	"math"
	"testing"
)

func TestRound2(t *testing.T) {
	cases := []struct {
		in, want float64
	}{
		{1.005, 1.01},
		{-1.005, -1.01},
		{2.344, 2.34},
		{0, 0},
		{math.NaN(), 0},
		{math.Inf(1), 0},
	}
	for _, c := range cases {
		if got := Round2(c.in); got != c.want {
			t.Errorf("Round2(%v) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestParseIntDefault(t *testing.T) {
	if got := ParseIntDefault("", 10); got != 10 {
		t.Fatalf("empty: got %d", got)
	}
	if got := ParseIntDefault("abc", 10); got != 10 {
		t.Fatalf("invalid: got %d", got)
	}
	if got := ParseIntDefault("25", 10); got != 25 {
		t.Fatalf("valid: got %d", got)
	}
}
