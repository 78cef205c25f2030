package models

import "github.com/shopspring/decimal"

// Prices and totals go over the wire as JSON numbers, the shape the
// dashboard client sums and formats. Decoding accepts numbers and strings.
func init() {
	decimal.MarshalJSONWithoutQuotes = true
}
