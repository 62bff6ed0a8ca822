// Package ingest handles schema normalization, file parsing, temporal
// feature derivation and synthetic generation for incident datasets.
package ingest

import (
	"errors"
	"strings"
)

// Errors surfaced by ingestion.
var (
	// ErrMissingTimestamp means no input column resolved to the mandatory
	// timestamp column.
	ErrMissingTimestamp = errors.New("timestamp column missing")

	// ErrEmptyDataset means every input row was dropped because its
	// timestamp failed to parse.
	ErrEmptyDataset = errors.New("no rows with a parseable timestamp")

	// ErrUnsupportedFormat means the uploaded file is neither CSV nor JSON.
	ErrUnsupportedFormat = errors.New("unsupported file format")
)

// Column is a canonical column name in the normalized incident schema.
type Column string

// Canonical columns. Timestamp is mandatory, everything else optional.
const (
	ColTimestamp    Column = "timestamp"
	ColAttackType   Column = "attack_type"
	ColSeverity     Column = "severity"
	ColSourceIP     Column = "source_ip"
	ColTargetSystem Column = "target_system"
	ColDuration     Column = "duration"
	ColBlocked      Column = "blocked"
)

// columnAliases maps each canonical column to the exact header spellings it
// is recognized under. Matching is case-sensitive per alias entry; headers
// that match nothing pass through unchanged.
var columnAliases = map[Column][]string{
	ColTimestamp:    {"timestamp", "Timestamp", "time", "Time", "event_time"},
	ColAttackType:   {"attack_type", "Attack Type", "type", "Type", "attack"},
	ColSeverity:     {"severity", "Severity", "Attack Severity", "level"},
	ColSourceIP:     {"source_ip", "Source IP", "src_ip", "srcIP"},
	ColTargetSystem: {"target_system", "Destination IP", "dest_ip", "target"},
	ColDuration:     {"duration", "Duration", "time_duration"},
	ColBlocked:      {"blocked", "Blocked", "is_blocked", "status"},
}

// aliasIndex is the inverted alias table, built once.
var aliasIndex = func() map[string]Column {
	idx := make(map[string]Column)
	for canonical, aliases := range columnAliases {
		for _, a := range aliases {
			idx[a] = canonical
		}
	}
	return idx
}()

// CanonicalName maps a raw header name to its canonical column name, or
// returns it unchanged when it matches no alias.
func CanonicalName(raw string) string {
	if canonical, ok := aliasIndex[raw]; ok {
		return string(canonical)
	}
	return raw
}

// NormalizeHeader renames every aliased column in header to its canonical
// form, preserving order and passing unknown columns through.
func NormalizeHeader(header []string) []string {
	out := make([]string, len(header))
	for i, h := range header {
		out[i] = CanonicalName(h)
	}
	return out
}

// DefaultSeverity is the ordinal assigned when severity is missing or
// unrecognized.
const DefaultSeverity = 2

// NormalizeSeverity maps a severity label to its ordinal 1-4. Any casing of
// low/medium/high/critical is recognized; everything else gets the default.
func NormalizeSeverity(value string) int {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "low":
		return 1
	case "medium":
		return 2
	case "high":
		return 3
	case "critical":
		return 4
	default:
		return DefaultSeverity
	}
}

// NormalizeBlocked maps a boolean-like value to 1 or 0. Recognized truthy
// forms are true/yes/1 in any casing; everything else, including missing,
// is 0.
func NormalizeBlocked(value string) int {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "true", "yes", "1":
		return 1
	default:
		return 0
	}
}
