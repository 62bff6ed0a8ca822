// Package dataset defines the in-memory incident dataset and the single-slot
// store that holds the currently loaded one.
package dataset

import "time"

// Record is a single security incident after normalization and temporal
// feature derivation.
type Record struct {
	Timestamp    time.Time `json:"timestamp"`
	AttackType   string    `json:"attack_type,omitempty"`
	Severity     string    `json:"severity,omitempty"`
	SeverityNum  int       `json:"severity_num"`
	SourceIP     string    `json:"source_ip,omitempty"`
	TargetSystem string    `json:"target_system,omitempty"`
	Duration     float64   `json:"duration,omitempty"`
	Blocked      int       `json:"blocked"`

	// Derived temporal features, always populated.
	Hour      int    `json:"hour"`        // 0-23
	DayOfWeek int    `json:"day_of_week"` // Monday=0 .. Sunday=6
	DayName   string `json:"day_name"`    // English weekday name
	Month     int    `json:"month"`       // 1-12
	Date      string `json:"date"`        // YYYY-MM-DD, time truncated

	// Extra holds input columns that did not map to a canonical name.
	// They are preserved but ignored by the analytics engines.
	Extra map[string]string `json:"-"`
}

// Dataset is one ingested collection of incident records plus ingestion
// metadata. A Dataset is immutable once built; analyses never modify it.
type Dataset struct {
	Records []Record
	Columns []string

	// Dropped counts input rows discarded because their timestamp failed
	// to parse.
	Dropped int

	// HasAttackType / HasSeverity record whether the optional columns were
	// present in the input; category breakdowns are empty when they are not.
	HasAttackType bool
	HasSeverity   bool

	Start time.Time
	End   time.Time
}

// Len returns the number of surviving records.
func (d *Dataset) Len() int {
	return len(d.Records)
}
