// Package analytics computes descriptive temporal-risk reports and the
// naive next-week forecast over a working dataset.
package analytics

import (
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/lvonguyen/incidentscope/internal/dataset"
)

// HeatmapCell is one (weekday, hour) bucket of the weekly heatmap.
type HeatmapCell struct {
	DayOfWeek int `json:"day_of_week"`
	Hour      int `json:"hour"`
	Count     int `json:"count"`
}

// AttackTypeCell is one (attack type, hour) bucket.
type AttackTypeCell struct {
	AttackType string `json:"attack_type"`
	Hour       int    `json:"hour"`
	Count      int    `json:"count"`
}

// SeverityCell is one (severity label, hour) bucket.
type SeverityCell struct {
	Severity string `json:"severity"`
	Hour     int    `json:"hour"`
	Count    int    `json:"count"`
}

// TemporalReport is the full descriptive analysis of the current dataset.
type TemporalReport struct {
	HourlyDistribution map[int]int      `json:"hourly_distribution"`
	WeeklyHeatmap      []HeatmapCell    `json:"weekly_heatmap"`
	AttackTypePatterns []AttackTypeCell `json:"attack_type_patterns"`
	SeverityPatterns   []SeverityCell   `json:"severity_patterns"`
	HighRiskHours      []int            `json:"high_risk_hours"`
	HighRiskDays       []string         `json:"high_risk_days"`
	TotalIncidents     int              `json:"total_incidents"`
}

// Temporal computes the hourly distribution, the weekly heatmap, per-category
// hour breakdowns, and the high-risk hour/day sets for ds.
func Temporal(ds *dataset.Dataset) *TemporalReport {
	report := &TemporalReport{
		HourlyDistribution: hourlyCounts(ds),
		WeeklyHeatmap:      weeklyHeatmap(ds),
		AttackTypePatterns: attackTypePatterns(ds),
		SeverityPatterns:   severityPatterns(ds),
		TotalIncidents:     ds.Len(),
	}
	report.HighRiskHours = highRiskHours(report.HourlyDistribution, 0)
	report.HighRiskDays = topDays(ds, 3)
	return report
}

// hourlyCounts is the sparse incident count per hour of day; hours with no
// incidents are absent.
func hourlyCounts(ds *dataset.Dataset) map[int]int {
	counts := make(map[int]int)
	for _, r := range ds.Records {
		counts[r.Hour]++
	}
	return counts
}

// highRiskHours returns, in ascending order, the hours whose count strictly
// exceeds mean + stdFactor*population-stddev over the observed hourly counts.
// A stdFactor of 0 reduces to the plain above-mean rule.
func highRiskHours(hourly map[int]int, stdFactor float64) []int {
	if len(hourly) == 0 {
		return []int{}
	}
	values := make([]float64, 0, len(hourly))
	for _, c := range hourly {
		values = append(values, float64(c))
	}
	threshold := stat.Mean(values, nil)
	if stdFactor != 0 {
		threshold += stdFactor * stat.PopStdDev(values, nil)
	}

	hours := make([]int, 0, len(hourly))
	for h, c := range hourly {
		if float64(c) > threshold {
			hours = append(hours, h)
		}
	}
	sort.Ints(hours)
	return hours
}

// weekdayNames in the same Monday-first order as the day_of_week index.
var weekdayNames = []string{
	"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday",
}

// topDays returns the n weekday names with the highest incident totals.
// Ties break by weekday order starting Monday, so results are reproducible.
func topDays(ds *dataset.Dataset, n int) []string {
	var totals [7]int
	for _, r := range ds.Records {
		totals[r.DayOfWeek]++
	}

	order := make([]int, 0, 7)
	for i, c := range totals {
		if c > 0 {
			order = append(order, i)
		}
	}
	sort.SliceStable(order, func(a, b int) bool {
		if totals[order[a]] != totals[order[b]] {
			return totals[order[a]] > totals[order[b]]
		}
		return order[a] < order[b]
	})

	if len(order) > n {
		order = order[:n]
	}
	days := make([]string, 0, len(order))
	for _, i := range order {
		days = append(days, weekdayNames[i])
	}
	return days
}

func weeklyHeatmap(ds *dataset.Dataset) []HeatmapCell {
	type key struct{ dow, hour int }
	counts := make(map[key]int)
	for _, r := range ds.Records {
		counts[key{r.DayOfWeek, r.Hour}]++
	}

	cells := make([]HeatmapCell, 0, len(counts))
	for k, c := range counts {
		cells = append(cells, HeatmapCell{DayOfWeek: k.dow, Hour: k.hour, Count: c})
	}
	sort.Slice(cells, func(a, b int) bool {
		if cells[a].DayOfWeek != cells[b].DayOfWeek {
			return cells[a].DayOfWeek < cells[b].DayOfWeek
		}
		return cells[a].Hour < cells[b].Hour
	})
	return cells
}

func attackTypePatterns(ds *dataset.Dataset) []AttackTypeCell {
	cells := make([]AttackTypeCell, 0)
	if !ds.HasAttackType {
		return cells
	}
	type key struct {
		cat  string
		hour int
	}
	counts := make(map[key]int)
	for _, r := range ds.Records {
		counts[key{r.AttackType, r.Hour}]++
	}
	for k, c := range counts {
		cells = append(cells, AttackTypeCell{AttackType: k.cat, Hour: k.hour, Count: c})
	}
	sort.Slice(cells, func(a, b int) bool {
		if cells[a].AttackType != cells[b].AttackType {
			return cells[a].AttackType < cells[b].AttackType
		}
		return cells[a].Hour < cells[b].Hour
	})
	return cells
}

func severityPatterns(ds *dataset.Dataset) []SeverityCell {
	cells := make([]SeverityCell, 0)
	if !ds.HasSeverity {
		return cells
	}
	type key struct {
		cat  string
		hour int
	}
	counts := make(map[key]int)
	for _, r := range ds.Records {
		counts[key{r.Severity, r.Hour}]++
	}
	for k, c := range counts {
		cells = append(cells, SeverityCell{Severity: k.cat, Hour: k.hour, Count: c})
	}
	sort.Slice(cells, func(a, b int) bool {
		if cells[a].Severity != cells[b].Severity {
			return cells[a].Severity < cells[b].Severity
		}
		return cells[a].Hour < cells[b].Hour
	})
	return cells
}
