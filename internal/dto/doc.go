// Package dto defines the request and response shapes of the HTTP API.
package dto

import "github.com/shopspring/decimal"

// Amounts go over the wire as plain JSON numbers, not quoted strings.
func init() {
	decimal.MarshalJSONWithoutQuotes = true
}
