package models

import (
	"errors"
	"testing"
	"time"
)

func TestLevelForScoreThresholds(t *testing.T) {
	cases := map[int]RiskLevel{
		0: RiskLow,
		2: RiskLow,
		3: RiskModerate,
		4: RiskModerate,
		5: RiskHigh,
		6: RiskHigh,
	}
	for score, want := range cases {
		if got := LevelForScore(score); got != want {
			t.Errorf("LevelForScore(%d) = %s, want %s", score, got, want)
		}
	}
}

func TestLastTwo(t *testing.T) {
	day := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	s := PriceSeries{Symbol: "X"}
	if _, _, ok := s.LastTwo(); ok {
		t.Fatalf("empty series must not be ok")
	}

	s.Bars = []Bar{{Date: day, Close: 10}}
	latest, prev, ok := s.LastTwo()
	if !ok || latest.Close != 10 || prev.Close != 10 {
		t.Fatalf("single bar: %+v %+v %v", latest, prev, ok)
	}

	s.Bars = append(s.Bars, Bar{Date: day.AddDate(0, 0, 1), Close: 11})
	latest, prev, _ = s.LastTwo()
	if latest.Close != 11 || prev.Close != 10 {
		t.Fatalf("two bars: %+v %+v", latest, prev)
	}
}

func TestClosesIsACopy(t *testing.T) {
	s := PriceSeries{Bars: []Bar{{Close: 1}, {Close: 2}}}
	c := s.Closes()
	c[0] = 99
	if s.Bars[0].Close != 1 {
		t.Fatalf("Closes must not alias bars")
	}
}

func TestUpstreamErrorUnwraps(t *testing.T) {
	cause := errors.New("timeout")
	var err error = &UpstreamError{Ticker: "AAPL", Err: cause}
	if !errors.Is(err, cause) {
		t.Fatalf("expected errors.Is to find cause")
	}
	var nf *NotFoundError
	if errors.As(err, &nf) {
		t.Fatalf("upstream error must not look like not found")
	}
}

func TestParseRegion(t *testing.T) {
	for in, want := range map[string]NewsRegion{"": RegionGlobal, "us": RegionUS, " India ": RegionIndia, "GLOBAL": RegionGlobal} {
		got, err := ParseRegion(in)
		if err != nil || got != want {
			t.Errorf("ParseRegion(%q) = %s, %v", in, got, err)
		}
	}
	if _, err := ParseRegion("EU"); err == nil {
		t.Fatalf("expected error for EU")
	}
}
