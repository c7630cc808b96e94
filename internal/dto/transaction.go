package dto

import "github.com/shopspring/decimal"

type TransactionResponse struct {
	Date     string          `json:"date"`
	Amount   decimal.Decimal `json:"amount"`
	Category string          `json:"category"`
	Merchant string          `json:"merchant,omitempty"`
}

type TransactionListResponse struct {
	Transactions []TransactionResponse `json:"transactions"`
	Count        int                   `json:"count"`
	Warning      string                `json:"warning,omitempty"`
}
