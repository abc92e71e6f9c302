// Package pricing holds the rental business arithmetic: party totals, the
// conventional 30% entry deposit, assembly/disassembly time derivation and
// the ROI / break-even projections shown on the dashboard. All money is in
// integer centavos; ratios go through shopspring/decimal to keep rounding
// explicit.
package pricing

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// EntryPercent is the conventional deposit share of the party total.
var EntryPercent = decimal.NewFromFloat(0.30)

// Line is one booked toy: its captured daily rate times quantity.
type Line struct {
	DailyRateCents int64
	Quantity       int
}

// PartyTotal is the sum of booked toy rates plus additions minus discounts.
// The result can go negative when discounts exceed the booked value; callers
// validate that before persisting.
func PartyTotal(lines []Line, additionsCents, discountsCents int64) int64 {
	var total int64
	for _, line := range lines {
		total += line.DailyRateCents * int64(line.Quantity)
	}
	return total + additionsCents - discountsCents
}

// DefaultEntry computes the 30% deposit, rounded half-up to the centavo.
func DefaultEntry(totalCents int64) int64 {
	entry := decimal.NewFromInt(totalCents).Mul(EntryPercent).Round(0)
	return entry.IntPart()
}

// AssemblyTime is one hour before the party starts; the hour wraps across
// midnight ("00:30" becomes "23:30").
func AssemblyTime(startTime string) (string, error) {
	hour, minute, err := parseClock(startTime)
	if err != nil {
		return "", err
	}

	hour = (hour + 23) % 24
	return formatClock(hour, minute), nil
}

// DisassemblyTime is the party start plus its duration plus a 30 minute
// buffer, with minute carry and 24-hour wraparound.
func DisassemblyTime(startTime string, durationHours int) (string, error) {
	hour, minute, err := parseClock(startTime)
	if err != nil {
		return "", err
	}

	minute += 30
	hour += durationHours + minute/60
	minute = minute % 60
	hour = hour % 24

	return formatClock(hour, minute), nil
}

func parseClock(value string) (int, int, error) {
	parts := strings.Split(value, ":")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid time %q, expected HH:MM", value)
	}

	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("invalid hour in %q", value)
	}

	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("invalid minute in %q", value)
	}

	return hour, minute, nil
}

func formatClock(hour, minute int) string {
	return fmt.Sprintf("%02d:%02d", hour, minute)
}

// ROIPercent is accumulated rental revenue over investment (purchase price
// plus maintenance), as a percentage rounded to two decimal places. Zero
// investment yields 0 rather than a division error.
func ROIPercent(revenueCents, investmentCents int64) float64 {
	if investmentCents <= 0 {
		return 0
	}

	roi := decimal.NewFromInt(revenueCents).
		Div(decimal.NewFromInt(investmentCents)).
		Mul(decimal.NewFromInt(100)).
		Round(2)

	result, _ := roi.Float64()
	return result
}

// Break-even labels returned by BreakEvenLabel.
const (
	BreakEvenPaidBack     = "already paid back"
	BreakEvenUndetermined = "undetermined"
)

// MonthsToBreakEven projects how many whole months of average revenue are
// still needed to recover the investment. Returns (0, false) when the
// projection is undetermined (no monthly revenue to extrapolate from).
func MonthsToBreakEven(investmentCents, revenueCents, avgMonthlyRevenueCents int64) (int, bool) {
	if revenueCents >= investmentCents {
		return 0, true
	}
	if avgMonthlyRevenueCents <= 0 {
		return 0, false
	}

	months := decimal.NewFromInt(investmentCents - revenueCents).
		Div(decimal.NewFromInt(avgMonthlyRevenueCents)).
		Ceil()

	return int(months.IntPart()), true
}

// BreakEvenLabel renders the dashboard break-even cell.
func BreakEvenLabel(investmentCents, revenueCents, avgMonthlyRevenueCents int64) string {
	if revenueCents >= investmentCents && investmentCents > 0 {
		return BreakEvenPaidBack
	}

	months, ok := MonthsToBreakEven(investmentCents, revenueCents, avgMonthlyRevenueCents)
	if !ok {
		return BreakEvenUndetermined
	}
	if months == 0 {
		return BreakEvenPaidBack
	}
	if months == 1 {
		return "1 month"
	}
	return fmt.Sprintf("%d months", months)
}
