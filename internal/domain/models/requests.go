package models

// Request payloads for the HTTP endpoints. Bound and validated by pkg/http.

type DashboardRequest struct {
	Ticker string `query:"ticker" json:"ticker" validate:"omitempty,max=20"`
}

type NewsRequest struct {
	Region string `query:"region" json:"region" default:"GLOBAL" validate:"oneof=US INDIA GLOBAL us india global"`
	Ticker string `query:"ticker" json:"ticker" validate:"omitempty,max=20"`
	Limit  int    `query:"limit" json:"limit" default:"10" validate:"gte=1,lte=50"`
}

type AnalyzeRequest struct {
	Query string `json:"query" validate:"required,min=1,max=1000"`
}

type StreamRequest struct {
	Ticker   string `query:"ticker" json:"ticker" validate:"omitempty,max=20"`
	Interval int    `query:"interval" json:"interval" validate:"omitempty,gte=1,lte=3600"`
}
