package roster

import (
	"sort"

	"github.com/Amoeba115/newschedule/internal/models"
	"github.com/Amoeba115/newschedule/internal/timeutil"
)

// Default durations applied when an interval's end is not given explicitly.
const (
	breakDuration           = timeutil.Minutes(30)
	defaultTrainingDuration = timeutil.Minutes(60)
)

// Availability is the per-slot classification of every employee on the
// grid: working, on break, or in training. It is derived once from the
// shift records and never mutated afterwards, except that the solver's
// override pass removes pinned employees from the working sets.
type Availability struct {
	// Slots is the ordered grid, strictly increasing and evenly spaced by
	// SlotInterval, spanning earliest to latest employee activity.
	Slots []timeutil.Minutes

	working  map[timeutil.Minutes]map[string]bool
	onBreak  map[timeutil.Minutes]map[string]bool
	training map[timeutil.Minutes]map[string]bool
}

// Compile converts raw shift records into per-slot availability sets.
// Every interval bound is snapped onto the slot grid, starts rounded down
// and ends rounded up, so a shift covering any part of a slot claims the
// whole slot and every key lands on the grid. Shifts are then clipped to
// [open, close). Records with missing or unparsable shift bounds contribute
// no slots and are silently dropped; malformed break/training times are
// treated as absent.
func Compile(records []models.ShiftRecord, open, close timeutil.Minutes) *Availability {
	av := &Availability{
		working:  make(map[timeutil.Minutes]map[string]bool),
		onBreak:  make(map[timeutil.Minutes]map[string]bool),
		training: make(map[timeutil.Minutes]map[string]bool),
	}

	earliest, latest := timeutil.NoValue, timeutil.NoValue
	gridOpen, gridClose := open.FloorSlot(), close.CeilSlot()

	for _, rec := range records {
		start, err := timeutil.ParseClock(rec.ShiftStart)
		if err != nil || !start.Valid() {
			continue
		}
		end, err := timeutil.ParseClock(rec.ShiftEnd)
		if err != nil || !end.Valid() {
			continue
		}
		start, end = start.FloorSlot(), end.CeilSlot()

		if gridOpen.Valid() && start < gridOpen {
			start = gridOpen
		}
		if gridClose.Valid() && end > gridClose {
			end = gridClose
		}
		if start >= end {
			continue
		}

		breakStart, breakEnd := intervalOrAbsent(rec.BreakStart, "", breakDuration)
		trainStart, trainEnd := intervalOrAbsent(rec.TrainingStart, rec.TrainingEnd, defaultTrainingDuration)

		name := rec.DisplayName()
		for slot := start; slot < end; slot += timeutil.SlotInterval {
			switch {
			case breakStart.Valid() && slot >= breakStart && slot < breakEnd:
				addMember(av.onBreak, slot, name)
			case trainStart.Valid() && slot >= trainStart && slot < trainEnd:
				addMember(av.training, slot, name)
			default:
				addMember(av.working, slot, name)
			}
		}

		if !earliest.Valid() || start < earliest {
			earliest = start
		}
		if !latest.Valid() || end > latest {
			latest = end
		}
	}

	if earliest.Valid() {
		for slot := earliest; slot < latest; slot += timeutil.SlotInterval {
			av.Slots = append(av.Slots, slot)
		}
	}
	return av
}

func intervalOrAbsent(startStr, endStr string, fallback timeutil.Minutes) (timeutil.Minutes, timeutil.Minutes) {
	start, err := timeutil.ParseClock(startStr)
	if err != nil || !start.Valid() {
		return timeutil.NoValue, timeutil.NoValue
	}
	end, err := timeutil.ParseClock(endStr)
	if err != nil || !end.Valid() {
		end = start + fallback
	}
	return start.FloorSlot(), end.CeilSlot()
}

func addMember(sets map[timeutil.Minutes]map[string]bool, slot timeutil.Minutes, name string) {
	set, ok := sets[slot]
	if !ok {
		set = make(map[string]bool)
		sets[slot] = set
	}
	set[name] = true
}

// Working returns the employees working (assignable) at slot, sorted by
// name for deterministic candidate enumeration.
func (a *Availability) Working(slot timeutil.Minutes) []string {
	return sortedMembers(a.working[slot])
}

// IsWorking reports whether name is in the working pool at slot.
func (a *Availability) IsWorking(slot timeutil.Minutes, name string) bool {
	return a.working[slot][name]
}

// RemoveWorking takes name out of the working pool at slot. Used by the
// override pass so a pinned employee cannot be double-booked.
func (a *Availability) RemoveWorking(slot timeutil.Minutes, name string) {
	delete(a.working[slot], name)
}

// OnBreak returns the employees on break at slot, sorted.
func (a *Availability) OnBreak(slot timeutil.Minutes) []string {
	return sortedMembers(a.onBreak[slot])
}

// InTraining returns the employees in training at slot, sorted.
func (a *Availability) InTraining(slot timeutil.Minutes) []string {
	return sortedMembers(a.training[slot])
}

func sortedMembers(set map[string]bool) []string {
	if len(set) == 0 {
		return nil
	}
	members := make([]string, 0, len(set))
	for name := range set {
		members = append(members, name)
	}
	sort.Strings(members)
	return members
}
