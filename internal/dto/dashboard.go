package dto

import "github.com/shopspring/decimal"

type CategoryTotal struct {
	Category string          `json:"category"`
	Total    decimal.Decimal `json:"total"`
	Count    int             `json:"count"`
}

type MonthPoint struct {
	Month string          `json:"month"`
	Total decimal.Decimal `json:"total"`
	Count int             `json:"count"`
}

type DashboardSummary struct {
	TransactionCount int             `json:"transaction_count"`
	TotalAmount      decimal.Decimal `json:"total_amount"`
	FirstDate        string          `json:"first_date,omitempty"`
	LastDate         string          `json:"last_date,omitempty"`
	Categories       []CategoryTotal `json:"categories"`
	Message          string          `json:"message,omitempty"`
	Warning          string          `json:"warning,omitempty"`
}

type TimeseriesResponse struct {
	Months  []MonthPoint `json:"months"`
	Message string       `json:"message,omitempty"`
	Warning string       `json:"warning,omitempty"`
}

// MonthComparison reports spending change between the two most recent
// calendar months present in the data. Available is false when fewer than
// two months exist; Message then says why.
type MonthComparison struct {
	Available    bool            `json:"available"`
	PriorMonth   string          `json:"prior_month,omitempty"`
	CurrentMonth string          `json:"current_month,omitempty"`
	PriorTotal   decimal.Decimal `json:"prior_total"`
	CurrentTotal decimal.Decimal `json:"current_total"`
	PctChange    float64         `json:"pct_change"`
	Message      string          `json:"message,omitempty"`
	Warning      string          `json:"warning,omitempty"`
}
