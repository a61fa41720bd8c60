package models

import (
	"fmt"
	"strings"
	"time"
)

type NewsRegion string

const (
	RegionUS     NewsRegion = "US"
	RegionIndia  NewsRegion = "INDIA"
	RegionGlobal NewsRegion = "GLOBAL"
)

// ParseRegion accepts a region name in any case. Empty means GLOBAL.
func ParseRegion(s string) (NewsRegion, error) {
	switch r := NewsRegion(strings.ToUpper(strings.TrimSpace(s))); r {
	case "":
		return RegionGlobal, nil
	case RegionUS, RegionIndia, RegionGlobal:
		return r, nil
	default:
		return "", fmt.Errorf("unknown news region %q", s)
	}
}

type NewsItem struct {
	Title         string
	Description   string
	URL           string
	Source        string
	PublishedDate time.Time
	Tickers       []string
	Sentiment     *float64
}

// NewsQuery selects news for a region and optionally one ticker.
type NewsQuery struct {
	Region NewsRegion
	Ticker string
	Limit  int
}

type NewsResult struct {
	Region NewsRegion
	Items  []NewsItem
}
