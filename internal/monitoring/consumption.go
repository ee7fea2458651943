package monitoring

import "math"

// Full days contained in each trailing window once today is excluded.
const (
	fullDays3d  = 2
	fullDays7d  = 6
	fullDays30d = 29
)

// OrderCounts are the raw cumulative order counts of one product at one
// warehouse. Every window includes today.
type OrderCounts struct {
	Today     int
	Yesterday int
	Days3     int
	Days7     int
	Days30    int
}

// Consumption holds average full-day order rates and their deviation from
// the 7-day rate. Deviations are nil when undefined.
type Consumption struct {
	Avg3dRaw  float64
	Avg7dRaw  float64
	Avg30dRaw float64

	Deviation3d  *int
	Deviation30d *int
}

// Avg3d, Avg7d and Avg30d are the display values, rounded to one decimal.
func (c Consumption) Avg3d() float64  { return roundFloat(c.Avg3dRaw, 1) }
func (c Consumption) Avg7d() float64  { return roundFloat(c.Avg7dRaw, 1) }
func (c Consumption) Avg30d() float64 { return roundFloat(c.Avg30dRaw, 1) }

// EstimateConsumption derives daily consumption rates from raw order counts.
func EstimateConsumption(counts OrderCounts) Consumption {
	c := Consumption{}

	// 1. Drop today's partial day from every window
	noToday3d := fullDayCount(counts.Days3, counts.Today)
	noToday7d := fullDayCount(counts.Days7, counts.Today)
	noToday30d := fullDayCount(counts.Days30, counts.Today)

	// 2. Average over completed days only
	c.Avg3dRaw = float64(noToday3d) / fullDays3d
	c.Avg7dRaw = float64(noToday7d) / fullDays7d
	c.Avg30dRaw = float64(noToday30d) / fullDays30d

	// 3. Short and long windows relative to the 7-day rate
	c.Deviation3d = deviation(c.Avg3dRaw, c.Avg7dRaw)
	c.Deviation30d = deviation(c.Avg30dRaw, c.Avg7dRaw)

	return c
}

func fullDayCount(window, today int) int {
	if n := window - today; n > 0 {
		return n
	}
	return 0
}

func deviation(avg, base float64) *int {
	if avg <= 0 || base <= 0 {
		return nil
	}
	pct := int(math.Round(100 * avg / base))
	return &pct
}
