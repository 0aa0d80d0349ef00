package widget

import (
	"math"
	"strings"

	"github.com/Zeyadhatem391/Weather/models"
)

// DailyForecast collapses 3-hour samples to one entry per day: the samples
// whose timestamp contains marker, at most limit of them, in input order.
func DailyForecast(samples []models.ForecastSample, marker string, limit int) []models.ForecastEntry {
	days := make([]models.ForecastEntry, 0, 6)
	for _, sample := range samples {
		if len(days) >= limit {
			break
		}
		if !strings.Contains(sample.TimestampText, marker) {
			continue
		}
		date, _, _ := strings.Cut(sample.TimestampText, " ")
		days = append(days, models.ForecastEntry{
			Date:         date,
			TemperatureC: RoundHalfUp(sample.TemperatureC),
			IconID:       sample.IconID,
		})
	}
	return days
}

// RoundHalfUp rounds .5 towards positive infinity, so -2.5 becomes -2
func RoundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}
