package utils

import (
	"fmt"
	"math"
)

// Round rounds a monetary value to two decimal places.
func Round(value float64) float64 {
	return math.Round(value*100) / 100
}

// FormatAmount renders an amount the way the gateway expects xAmount:
// exactly two decimal digits with a '.' separator (10 -> "10.00").
func FormatAmount(amount float64) string {
	return fmt.Sprintf("%.2f", Round(amount))
}
