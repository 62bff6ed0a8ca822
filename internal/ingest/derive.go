package ingest

import (
	"strconv"
	"strings"
	"time"

	"github.com/lvonguyen/incidentscope/internal/dataset"
)

// timestampLayouts are tried in order when parsing the timestamp column.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"01/02/2006 15:04:05",
	"01/02/2006 15:04",
	"01/02/2006",
}

// ParseTimestamp parses a timestamp cell against the supported layouts.
func ParseTimestamp(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, value); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

// dayOfWeek converts Go's Sunday=0 weekday to the Monday=0 index used by the
// derived features.
func dayOfWeek(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

// derivedColumns are appended to the reported column list after the input
// columns, in derivation order.
var derivedColumns = []string{"hour", "day_of_week", "day_name", "month", "date"}

// Build normalizes a raw table and derives temporal features, producing the
// working dataset. Rows whose timestamp fails to parse are dropped and
// counted, not treated as an error; Build fails with ErrMissingTimestamp when
// no timestamp column resolves and ErrEmptyDataset when no row survives.
func Build(t *Table) (*dataset.Dataset, error) {
	header := NormalizeHeader(t.Header)

	index := make(map[string]int, len(header))
	for i, h := range header {
		if _, ok := index[h]; !ok {
			index[h] = i
		}
	}
	tsIdx, ok := index[string(ColTimestamp)]
	if !ok {
		return nil, ErrMissingTimestamp
	}

	canonical := make(map[int]bool)
	for name := range index {
		if _, aliased := columnAliases[Column(name)]; aliased {
			canonical[index[name]] = true
		}
	}

	ds := &dataset.Dataset{
		Records: make([]dataset.Record, 0, len(t.Rows)),
	}
	_, ds.HasAttackType = index[string(ColAttackType)]
	_, ds.HasSeverity = index[string(ColSeverity)]

	cell := func(row []string, col Column) string {
		if i, ok := index[string(col)]; ok && i < len(row) {
			return row[i]
		}
		return ""
	}

	for _, row := range t.Rows {
		if tsIdx >= len(row) {
			ds.Dropped++
			continue
		}
		ts, ok := ParseTimestamp(row[tsIdx])
		if !ok {
			ds.Dropped++
			continue
		}

		rec := dataset.Record{
			Timestamp:    ts,
			AttackType:   cell(row, ColAttackType),
			Severity:     cell(row, ColSeverity),
			SeverityNum:  NormalizeSeverity(cell(row, ColSeverity)),
			SourceIP:     cell(row, ColSourceIP),
			TargetSystem: cell(row, ColTargetSystem),
			Blocked:      NormalizeBlocked(cell(row, ColBlocked)),
			Hour:         ts.Hour(),
			DayOfWeek:    dayOfWeek(ts),
			DayName:      ts.Weekday().String(),
			Month:        int(ts.Month()),
			Date:         ts.Format("2006-01-02"),
		}
		if d, err := strconv.ParseFloat(strings.TrimSpace(cell(row, ColDuration)), 64); err == nil {
			rec.Duration = d
		}

		for i, h := range header {
			if canonical[i] || i >= len(row) {
				continue
			}
			if rec.Extra == nil {
				rec.Extra = make(map[string]string)
			}
			rec.Extra[h] = row[i]
		}

		if ds.Len() == 0 || ts.Before(ds.Start) {
			ds.Start = ts
		}
		if ds.Len() == 0 || ts.After(ds.End) {
			ds.End = ts
		}
		ds.Records = append(ds.Records, rec)
	}

	if ds.Len() == 0 {
		return nil, ErrEmptyDataset
	}

	ds.Columns = append(ds.Columns, header...)
	ds.Columns = append(ds.Columns, derivedColumns...)
	if ds.HasSeverity {
		ds.Columns = append(ds.Columns, "severity_num")
	}
	return ds, nil
}
