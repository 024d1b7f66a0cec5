package models

import "strings"

// ShiftRecord is one employee's raw day as supplied by the caller. All time
// fields are free-form clock strings ("7:30 AM"); empty or "N/A" means the
// field is not set. A record is immutable once handed to a solve run.
type ShiftRecord struct {
	Name          string `json:"name"`
	ShiftStart    string `json:"shift_start"`
	ShiftEnd      string `json:"shift_end"`
	BreakStart    string `json:"break_start"`
	TrainingStart string `json:"training_start"`
	TrainingEnd   string `json:"training_end"`
}

// DisplayName normalizes the raw name to "First L." for matching against
// overrides and for schedule output. A name with no separable surname is
// used as-is.
func (r ShiftRecord) DisplayName() string {
	return NormalizeName(r.Name)
}

// NormalizeName converts a full name to the "First L." display form.
func NormalizeName(full string) string {
	trimmed := strings.TrimSpace(full)
	first, rest, found := strings.Cut(trimmed, " ")
	if !found || strings.TrimSpace(rest) == "" {
		return trimmed
	}
	initial := []rune(strings.TrimSpace(rest))[0]
	return first + " " + string(initial) + "."
}
