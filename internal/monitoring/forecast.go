package monitoring

import (
	"math"

	"github.com/andresuchdata/mpstock/internal/domain"
)

// Status thresholds in days of remaining stock.
const (
	CriticalDays = 14
	WarningDays  = 21
)

// Forecast converts stock and the unrounded 7-day average into a runway and
// a status. No consumption means an unbounded runway.
func Forecast(stock int, avg7dRaw float64) (domain.DaysLeft, domain.StatusKey) {
	var days domain.DaysLeft
	if avg7dRaw > 0 {
		days = domain.Days(int(math.Round(float64(stock) / avg7dRaw)))
	} else {
		days = domain.Unbounded()
	}
	return days, Classify(days)
}

// Classify maps a runway onto the fixed status thresholds.
func Classify(days domain.DaysLeft) domain.StatusKey {
	switch {
	case days.Below(CriticalDays):
		return domain.StatusCritical
	case days.Below(WarningDays):
		return domain.StatusWarning
	default:
		return domain.StatusNormal
	}
}
