package utils

import "github.com/shopspring/decimal"

// RoundFloat rounds half away from zero to the given number of decimal
// places. It is meant for display values only.
func RoundFloat(val float64, places int32) float64 {
	return decimal.NewFromFloat(val).Round(places).InexactFloat64()
}
