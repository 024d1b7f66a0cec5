package scheduling

import (
	"strings"
	"testing"

	"github.com/Amoeba115/newschedule/internal/models"
)

func breakTable(t *testing.T) *Table {
	t.Helper()
	engine := NewEngine(catalogOf("Handout", "Expo"), nil)
	return solveOrFail(t, engine, Request{
		StoreOpen:  "9:00 AM",
		StoreClose: "12:00 PM",
		Employees: []models.ShiftRecord{
			{Name: "Alice Smith", ShiftStart: "9:00 AM", ShiftEnd: "12:00 PM", BreakStart: "10:00 AM"},
			{Name: "Bob Jones", ShiftStart: "9:00 AM", ShiftEnd: "12:00 PM", BreakStart: "10:00 AM"},
			{Name: "Cara Lee", ShiftStart: "9:00 AM", ShiftEnd: "12:00 PM", TrainingStart: "9:00 AM", TrainingEnd: "10:00 AM"},
		},
	})
}

func TestGridShapeAndRowOrder(t *testing.T) {
	table := breakTable(t)
	grid := table.Grid()

	// Header plus one row per work position plus Break and Training.
	if len(grid) != 1+2+2 {
		t.Fatalf("grid has %d rows, want 5", len(grid))
	}
	if grid[0][0] != "Position" {
		t.Errorf("header starts with %q, want Position", grid[0][0])
	}
	if len(grid[0]) != len(table.Slots)+1 {
		t.Errorf("header has %d columns, want %d", len(grid[0]), len(table.Slots)+1)
	}

	gotOrder := []string{grid[1][0], grid[2][0], grid[3][0], grid[4][0]}
	wantOrder := []string{"Handout", "Expo", models.RowBreak, models.RowTraining}
	for i := range wantOrder {
		if gotOrder[i] != wantOrder[i] {
			t.Errorf("row %d = %q, want %q", i+1, gotOrder[i], wantOrder[i])
		}
	}
}

func TestBreakAndTrainingCellsAreSortedJoins(t *testing.T) {
	table := breakTable(t)

	ten := table.Slots[2] // 10:00 AM
	if got := table.Cell(models.RowBreak, ten); got != "Alice S., Bob J." {
		t.Errorf("Break cell = %q, want sorted comma join", got)
	}

	nine := table.Slots[0]
	if got := table.Cell(models.RowTraining, nine); got != "Cara L." {
		t.Errorf("Training cell = %q, want Cara L.", got)
	}

	// While both others are on break only Cara is assignable.
	if got := table.Cell("Handout", ten); got != "Cara L." {
		t.Errorf("Handout at 10:00 AM = %q, want Cara L.", got)
	}
	if got := table.Cell("Expo", ten); got != "" {
		t.Errorf("Expo at 10:00 AM = %q, want blank", got)
	}
}

func TestRowsLongForm(t *testing.T) {
	table := breakTable(t)
	rows := table.Rows()

	if len(rows) != len(table.Slots) {
		t.Fatalf("Rows() returned %d rows, want %d", len(rows), len(table.Slots))
	}
	if rows[0].Time != "9:00 AM" {
		t.Errorf("first row time = %q, want 9:00 AM", rows[0].Time)
	}
	for _, row := range rows {
		if _, ok := row.Cells[models.RowBreak]; !ok {
			t.Errorf("row %s missing Break cell", row.Time)
		}
	}
}

func TestWriteCSV(t *testing.T) {
	table := breakTable(t)

	out, err := table.CSV()
	if err != nil {
		t.Fatalf("CSV: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 5 {
		t.Fatalf("csv has %d lines, want 5", len(lines))
	}
	if !strings.HasPrefix(lines[0], "Position,9:00 AM,") {
		t.Errorf("unexpected csv header: %q", lines[0])
	}
	if !strings.HasPrefix(lines[3], "Break,") {
		t.Errorf("Break row out of place: %q", lines[3])
	}
}
