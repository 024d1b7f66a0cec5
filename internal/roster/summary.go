package roster

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/Amoeba115/newschedule/internal/models"
)

// ParseSummary reads the plain-text employee summary format:
//
//	--- Employee 1 ---
//	Name: Alice Smith
//	Shift Start: 9:00 AM
//	Shift End: 5:00 PM
//	Break: 12:00 PM
//	Has Training: Yes
//	Training Start: 2:00 PM
//
// Unknown keys are ignored so older files keep loading.
func ParseSummary(r io.Reader) ([]models.ShiftRecord, error) {
	var (
		records []models.ShiftRecord
		current models.ShiftRecord
		open    bool
	)

	flush := func() {
		if open && current != (models.ShiftRecord{}) {
			records = append(records, current)
		}
		current = models.ShiftRecord{}
	}

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "--- Employee") {
			flush()
			open = true
			continue
		}
		key, value, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		value = strings.TrimSpace(value)
		switch strings.TrimSpace(key) {
		case "Name":
			current.Name = value
		case "Shift Start":
			current.ShiftStart = value
		case "Shift End":
			current.ShiftEnd = value
		case "Break":
			current.BreakStart = value
		case "Training Start":
			current.TrainingStart = value
		case "Training End":
			current.TrainingEnd = value
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading employee summary: %w", err)
	}
	flush()
	return records, nil
}

// FormatSummary renders records back into the summary text format so a
// roster edited in the UI can be downloaded and re-imported.
func FormatSummary(records []models.ShiftRecord) string {
	var sb strings.Builder
	for i, rec := range records {
		if i > 0 {
			sb.WriteString("\n")
		}
		fmt.Fprintf(&sb, "--- Employee %d ---\n", i+1)
		fmt.Fprintf(&sb, "Name: %s\n", rec.Name)
		fmt.Fprintf(&sb, "Shift Start: %s\n", rec.ShiftStart)
		fmt.Fprintf(&sb, "Shift End: %s\n", rec.ShiftEnd)
		fmt.Fprintf(&sb, "Break: %s\n", rec.BreakStart)
		hasTraining := rec.TrainingStart != ""
		fmt.Fprintf(&sb, "Has Training: %s\n", yesNo(hasTraining))
		if hasTraining {
			fmt.Fprintf(&sb, "Training Start: %s\n", rec.TrainingStart)
			if rec.TrainingEnd != "" {
				fmt.Fprintf(&sb, "Training End: %s\n", rec.TrainingEnd)
			}
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
