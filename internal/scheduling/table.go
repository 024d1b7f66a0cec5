package scheduling

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/Amoeba115/newschedule/internal/models"
	"github.com/Amoeba115/newschedule/internal/roster"
	"github.com/Amoeba115/newschedule/internal/timeutil"
)

// Table is a solved schedule plus the break/training reporting rows. The
// long form is one row per slot; Grid transposes it so positions become
// rows and slots become columns.
type Table struct {
	catalog models.Catalog

	Slots    []timeutil.Minutes
	Assigned map[timeutil.Minutes]map[string]string
	Breaks   map[timeutil.Minutes][]string
	Training map[timeutil.Minutes][]string
}

func newTable(catalog models.Catalog, av *roster.Availability, schedule map[timeutil.Minutes]map[string]string) *Table {
	t := &Table{
		catalog:  catalog,
		Slots:    av.Slots,
		Assigned: schedule,
		Breaks:   make(map[timeutil.Minutes][]string, len(av.Slots)),
		Training: make(map[timeutil.Minutes][]string, len(av.Slots)),
	}
	for _, slot := range av.Slots {
		t.Breaks[slot] = av.OnBreak(slot)
		t.Training[slot] = av.InTraining(slot)
	}
	return t
}

// Cell returns the table entry for one row (a position, Break, or
// Training) at one slot. Unfilled positions are blank.
func (t *Table) Cell(row string, slot timeutil.Minutes) string {
	switch row {
	case models.RowBreak:
		return strings.Join(t.Breaks[slot], ", ")
	case models.RowTraining:
		return strings.Join(t.Training[slot], ", ")
	default:
		return t.Assigned[slot][row]
	}
}

// Row is one slot of the long-form schedule.
type Row struct {
	Time  string
	Cells map[string]string
}

// Rows returns the long form: one row per slot with every catalog row
// (positions plus Break and Training) filled in.
func (t *Table) Rows() []Row {
	rows := make([]Row, 0, len(t.Slots))
	for _, slot := range t.Slots {
		cells := make(map[string]string, len(t.catalog.Work)+2)
		for _, name := range t.catalog.RowOrder() {
			cells[name] = t.Cell(name, slot)
		}
		rows = append(rows, Row{Time: slot.Format(), Cells: cells})
	}
	return rows
}

// Grid returns the transposed Position x Time presentation: a header of
// slot times, then one row per catalog entry with Break and Training
// pinned as the last two rows.
func (t *Table) Grid() [][]string {
	header := make([]string, 0, len(t.Slots)+1)
	header = append(header, "Position")
	for _, slot := range t.Slots {
		header = append(header, slot.Format())
	}

	grid := [][]string{header}
	for _, name := range t.catalog.RowOrder() {
		row := make([]string, 0, len(t.Slots)+1)
		row = append(row, name)
		for _, slot := range t.Slots {
			row = append(row, t.Cell(name, slot))
		}
		grid = append(grid, row)
	}
	return grid
}

// WriteCSV encodes the transposed grid as CSV.
func (t *Table) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	for _, row := range t.Grid() {
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing schedule csv: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// CSV renders the grid to a string.
func (t *Table) CSV() (string, error) {
	var sb strings.Builder
	if err := t.WriteCSV(&sb); err != nil {
		return "", err
	}
	return sb.String(), nil
}
