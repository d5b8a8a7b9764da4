package quotes

import (
	"fmt"
	"strconv"
)

// FormatPrice renders price with a fixed number of decimals. A
// non-positive decimals falls back to 4, the convention for fx quotes.
func FormatPrice(price float64, decimals int) string {
	if decimals <= 0 {
		decimals = 4
	}
	return strconv.FormatFloat(price, 'f', decimals, 64)
}

// FormatChange renders a price delta with an explicit sign, four decimals.
func FormatChange(change float64) string {
	return fmt.Sprintf("%+.4f", change)
}

// FormatChangePercent renders a percentage delta with an explicit sign,
// two decimals.
func FormatChangePercent(pct float64) string {
	return fmt.Sprintf("%+.2f%%", pct)
}
