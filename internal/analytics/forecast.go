package analytics

import (
	"fmt"
	"math"
	"strings"

	"github.com/lvonguyen/incidentscope/internal/dataset"
)

// DayForecast is one projected day in the next-week forecast.
type DayForecast struct {
	Date               string `json:"date"`
	Day                string `json:"day"`
	PredictedIncidents int    `json:"predicted_incidents"`
	HighRisk           bool   `json:"high_risk"`
}

// ForecastReport is the 7-day-ahead projection plus the stricter high-risk
// sets it is derived from.
type ForecastReport struct {
	PredictedHighRiskHours []int         `json:"predicted_high_risk_hours"`
	PredictedHighRiskDays  []string      `json:"predicted_high_risk_days"`
	NextWeekPredictions    []DayForecast `json:"next_week_predictions"`
	Recommendations        []string      `json:"recommendations"`
}

// Forecast projects incident counts for the 7 calendar days after the
// dataset's last timestamp. Each day's prediction is the historical average
// of per-date totals for that weekday, floored; weekdays with no history
// predict 0. High-risk hours use the stricter mean + 0.5*stddev threshold;
// high-risk days reuse the top-3 rule, computed independently of Temporal.
func Forecast(ds *dataset.Dataset) *ForecastReport {
	highHours := highRiskHours(hourlyCounts(ds), 0.5)
	highDays := topDays(ds, 3)

	risky := make(map[string]bool, len(highDays))
	for _, d := range highDays {
		risky[d] = true
	}

	// Per-date totals grouped by weekday name.
	dateTotals := make(map[string]int)
	dateDay := make(map[string]string)
	for _, r := range ds.Records {
		dateTotals[r.Date]++
		dateDay[r.Date] = r.DayName
	}
	daySum := make(map[string]int)
	dayDates := make(map[string]int)
	for date, total := range dateTotals {
		day := dateDay[date]
		daySum[day] += total
		dayDates[day]++
	}

	predictions := make([]DayForecast, 0, 7)
	for i := 1; i <= 7; i++ {
		next := ds.End.AddDate(0, 0, i)
		day := next.Weekday().String()

		predicted := 0
		if n := dayDates[day]; n > 0 {
			predicted = int(math.Floor(float64(daySum[day]) / float64(n)))
		}

		predictions = append(predictions, DayForecast{
			Date:               next.Format("2006-01-02"),
			Day:                day,
			PredictedIncidents: predicted,
			HighRisk:           risky[day],
		})
	}

	return &ForecastReport{
		PredictedHighRiskHours: highHours,
		PredictedHighRiskDays:  highDays,
		NextWeekPredictions:    predictions,
		Recommendations:        recommendations(highHours, highDays),
	}
}

// recommendations renders the fixed advisory templates with the computed
// high-risk hours and days.
func recommendations(hours []int, days []string) []string {
	hourParts := make([]string, 0, len(hours))
	for _, h := range hours {
		hourParts = append(hourParts, fmt.Sprintf("%d", h))
	}
	return []string{
		fmt.Sprintf("Increase monitoring during hours: %s", strings.Join(hourParts, ", ")),
		fmt.Sprintf("High-risk days: %s", strings.Join(days, ", ")),
		"Deploy extra WAF rules during peaks",
		"Schedule audits during low-activity hours",
	}
}
