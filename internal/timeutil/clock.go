package timeutil

import (
	"fmt"
	"strconv"
	"strings"
)

// Minutes is a clock time expressed as minutes since midnight. It is the
// internal time representation everywhere; "7:30 AM" style strings exist
// only at the input/output boundary.
type Minutes int

const (
	// SlotInterval is the width of one scheduling slot.
	SlotInterval Minutes = 30

	// NoValue marks an absent clock time ("" or "N/A" input).
	NoValue Minutes = -1
)

// ParseError reports a non-empty clock string that could not be parsed.
type ParseError struct {
	Input string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("unparsable clock time %q", e.Input)
}

// ParseClock parses a free-form clock time such as "7:30 AM", "12:00 pm" or
// "19:30". Empty strings and "N/A" mean "no value" and parse to NoValue
// without an error. Anything else that does not look like a clock time
// returns a *ParseError.
func ParseClock(s string) (Minutes, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" || strings.EqualFold(trimmed, "N/A") {
		return NoValue, nil
	}

	upper := strings.ToUpper(trimmed)
	meridiem := ""
	for _, suffix := range []string{"AM", "PM"} {
		if strings.HasSuffix(upper, suffix) {
			meridiem = suffix
			upper = strings.TrimSpace(strings.TrimSuffix(upper, suffix))
			break
		}
	}

	hourPart, minutePart := upper, "0"
	if i := strings.IndexByte(upper, ':'); i >= 0 {
		hourPart, minutePart = upper[:i], upper[i+1:]
	}

	hour, err := strconv.Atoi(strings.TrimSpace(hourPart))
	if err != nil {
		return NoValue, &ParseError{Input: s}
	}
	minute, err := strconv.Atoi(strings.TrimSpace(minutePart))
	if err != nil {
		return NoValue, &ParseError{Input: s}
	}
	if minute < 0 || minute > 59 {
		return NoValue, &ParseError{Input: s}
	}

	switch meridiem {
	case "AM":
		if hour < 1 || hour > 12 {
			return NoValue, &ParseError{Input: s}
		}
		if hour == 12 {
			hour = 0
		}
	case "PM":
		if hour < 1 || hour > 12 {
			return NoValue, &ParseError{Input: s}
		}
		if hour != 12 {
			hour += 12
		}
	default:
		if hour < 0 || hour > 23 {
			return NoValue, &ParseError{Input: s}
		}
	}

	return Minutes(hour*60 + minute), nil
}

// Valid reports whether m holds an actual clock time.
func (m Minutes) Valid() bool {
	return m >= 0
}

// FloorSlot rounds m down to the slot boundary it falls in. NoValue passes
// through unchanged.
func (m Minutes) FloorSlot() Minutes {
	if !m.Valid() {
		return m
	}
	return m - m%SlotInterval
}

// CeilSlot rounds m up to the next slot boundary, leaving values already on
// a boundary alone. NoValue passes through unchanged.
func (m Minutes) CeilSlot() Minutes {
	if !m.Valid() {
		return m
	}
	if rem := m % SlotInterval; rem != 0 {
		return m + SlotInterval - rem
	}
	return m
}

// Format renders m as "3:00 PM" with no leading zero on the hour.
func (m Minutes) Format() string {
	if !m.Valid() {
		return ""
	}
	hour, minute := int(m)/60, int(m)%60
	meridiem := "AM"
	display := hour
	switch {
	case hour == 0:
		display = 12
	case hour == 12:
		meridiem = "PM"
	case hour > 12:
		display = hour - 12
		meridiem = "PM"
	}
	return fmt.Sprintf("%d:%02d %s", display, minute, meridiem)
}
