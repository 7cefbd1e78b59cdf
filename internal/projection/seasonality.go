package projection

import "time"

// seasonalityByMonth is a fixed month-indexed demand multiplier, peaking in
// the Oct-Dec festive quarter. It adjusts the forward-looking projection by
// the current calendar month, not the historical one.
var seasonalityByMonth = [12]float64{
	0.90, // January
	0.85, // February
	0.95, // March
	1.00, // April
	1.00, // May
	0.90, // June
	0.85, // July
	0.90, // August
	1.05, // September
	1.30, // October
	1.60, // November
	1.50, // December
}

// SeasonalityFactor returns the multiplier for the month containing t.
func SeasonalityFactor(t time.Time) float64 {
	return seasonalityByMonth[int(t.Month())-1]
}
