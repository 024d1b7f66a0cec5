package scheduling

import (
	"github.com/Amoeba115/newschedule/internal/models"
	"github.com/Amoeba115/newschedule/internal/roster"
	"github.com/Amoeba115/newschedule/internal/timeutil"
)

// applyOverrides expands every override's [start, end) range into fixed
// per-slot pins and removes the pinned employee from that slot's working
// pool so the solver cannot double-book them. Overrides with a missing
// employee, position, or unparsable time bound are skipped without failing
// the run. When overrides collide, the last one in input order wins, both
// per position and per employee, so a slot never ends up pinning one
// employee into two positions.
func applyOverrides(av *roster.Availability, overrides []models.Override) map[timeutil.Minutes]map[string]string {
	schedule := make(map[timeutil.Minutes]map[string]string, len(av.Slots))
	for _, slot := range av.Slots {
		schedule[slot] = make(map[string]string)
	}

	for _, ov := range overrides {
		if ov.Employee == "" || ov.Position == "" {
			continue
		}
		start, err := timeutil.ParseClock(ov.Start)
		if err != nil || !start.Valid() {
			continue
		}
		end, err := timeutil.ParseClock(ov.End)
		if err != nil || !end.Valid() {
			continue
		}

		for t := start; t < end; t += timeutil.SlotInterval {
			pins, onGrid := schedule[t]
			if !onGrid {
				continue
			}
			for pos, emp := range pins {
				if emp == ov.Employee && pos != ov.Position {
					delete(pins, pos)
				}
			}
			pins[ov.Position] = ov.Employee
			av.RemoveWorking(t, ov.Employee)
		}
	}
	return schedule
}
