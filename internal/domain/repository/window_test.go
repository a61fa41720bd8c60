package repository

import "testing"

func TestNormalizeWindow(t *testing.T) {
	if got := NormalizeWindow("6mo", Window5d); got != Window6mo {
		t.Fatalf("got %s", got)
	}
	if got := NormalizeWindow("", Window5d); got != Window5d {
		t.Fatalf("empty: got %s", got)
	}
	if got := NormalizeWindow("7w", Window6mo); got != Window6mo {
		t.Fatalf("invalid: got %s", got)
	}
}
