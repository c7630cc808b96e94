package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is one financial record from the transaction store. Records are
// produced by the external extraction workflow; this service only reads them.
type Transaction struct {
	Date     time.Time       `db:"date"`
	Amount   decimal.Decimal `db:"amount"`
	Category string          `db:"category"`
	Merchant string          `db:"merchant"`
}

// MonthKey returns the calendar month of the transaction as "2006-01".
func (t Transaction) MonthKey() string {
	return t.Date.Format("2006-01")
}
