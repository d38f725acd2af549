// Package units provides shared formatting for match telemetry values.
package units

import (
	"fmt"
	"math"
)

// FormatPercent renders a damage percent the way the HUD shows it.
func FormatPercent(p float64) string {
	return fmt.Sprintf("%.0f%%", p)
}

// FormatPercentPtr renders a nullable percent, using a dash for unreadable values.
func FormatPercentPtr(p *float64) string {
	if p == nil {
		return "-"
	}
	return FormatPercent(*p)
}

// FormatStocks renders a stock count with its unit.
func FormatStocks(n int) string {
	if n == 1 {
		return "1 stock"
	}
	return fmt.Sprintf("%d stocks", n)
}

// FormatStocksPtr renders a nullable stock count, using a dash for unreadable values.
func FormatStocksPtr(n *int) string {
	if n == nil {
		return "-"
	}
	return FormatStocks(*n)
}

// FormatClock renders seconds since match start as a m:ss match clock.
// Fractional seconds round down.
func FormatClock(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	total := int(math.Floor(seconds))
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}

// FormatSeconds renders a duration in seconds with one decimal, for event
// tables where sub-second placement matters.
func FormatSeconds(seconds float64) string {
	return fmt.Sprintf("%.1fs", seconds)
}
