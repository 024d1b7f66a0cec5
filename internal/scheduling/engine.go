package scheduling

import (
	"context"
	"fmt"
	"sort"

	"github.com/Amoeba115/newschedule/internal/models"
	"github.com/Amoeba115/newschedule/internal/roster"
	"github.com/Amoeba115/newschedule/internal/timeutil"
)

// Engine runs the constraint-based slot-filling search: depth-first
// backtracking over time slots, enumerating candidate pairings of working
// employees to open positions, filtering them against the rule set and
// ranking them when a scoring policy is configured.
type Engine struct {
	catalog models.Catalog
	rules   *models.RuleSet

	// maxPermutations bounds how many candidate pairings are enumerated
	// per slot before the remainder is pruned. 0 means unbounded. The
	// enumeration order is deterministic, so pruning is deterministic too.
	maxPermutations int
}

// NewEngine builds an engine for one catalog and rule set. A nil rule set
// is treated as empty (no constraints, no scoring).
func NewEngine(catalog models.Catalog, ruleSet *models.RuleSet) *Engine {
	if ruleSet == nil {
		ruleSet = &models.RuleSet{}
	}
	return &Engine{catalog: catalog, rules: ruleSet}
}

// SetPermutationCap bounds the per-slot candidate enumeration. Factorial
// blowup on large working pools is the main denial-of-service risk of the
// search, so production callers should set a cap or a context deadline.
func (e *Engine) SetPermutationCap(n int) {
	e.maxPermutations = n
}

// Request carries the external inputs of one solve invocation. Clock
// fields are free-form time strings ("7:30 AM").
type Request struct {
	StoreOpen  string
	StoreClose string
	Employees  []models.ShiftRecord
	Overrides  []models.Override
}

// Solve produces a completed schedule table or a typed failure:
// ErrEmptyInput when no employee yields slots, ErrInfeasible when the
// search exhausts all pairings, or the context error when the caller's
// deadline expires mid-search.
func (e *Engine) Solve(ctx context.Context, req Request) (*Table, error) {
	open, err := parseRequired(req.StoreOpen)
	if err != nil {
		return nil, fmt.Errorf("store open time: %w", err)
	}
	close, err := parseRequired(req.StoreClose)
	if err != nil {
		return nil, fmt.Errorf("store close time: %w", err)
	}

	// Step 1: Compile availability on the slot grid.
	av := roster.Compile(req.Employees, open, close)
	if len(av.Slots) == 0 {
		return nil, ErrEmptyInput
	}

	// Step 2: Pin overrides and shrink the working pools.
	schedule := applyOverrides(av, req.Overrides)

	// Step 3: Backtracking search over slots in chronological order.
	solved, err := e.solveFrom(ctx, 0, av, schedule, stateMap{})
	if err != nil {
		return nil, err
	}
	if !solved {
		return nil, ErrInfeasible
	}

	return newTable(e.catalog, av, schedule), nil
}

func parseRequired(s string) (timeutil.Minutes, error) {
	m, err := timeutil.ParseClock(s)
	if err != nil {
		return timeutil.NoValue, err
	}
	if !m.Valid() {
		return timeutil.NoValue, &timeutil.ParseError{Input: s}
	}
	return m, nil
}

// pairing is one candidate completion of a slot's unfilled positions.
type pairing struct {
	assignments map[string]string // position -> employee
	score       int
}

func (e *Engine) solveFrom(ctx context.Context, idx int, av *roster.Availability, schedule map[timeutil.Minutes]map[string]string, states stateMap) (bool, error) {
	if idx == len(av.Slots) {
		return true, nil
	}
	slot := av.Slots[idx]

	if err := ctx.Err(); err != nil {
		return false, fmt.Errorf("search aborted at %s: %w", slot.Format(), err)
	}

	pinned := schedule[slot]

	// Positions not already fixed by an override, in catalog order.
	var open []string
	for _, pos := range e.catalog.Work {
		if _, taken := pinned[pos]; !taken {
			open = append(open, pos)
		}
	}

	// Working employees, sorted by name; pinned ones were removed by the
	// override pass. Never attempt more positions than there are people —
	// unstaffed positions simply stay blank.
	available := av.Working(slot)
	if len(open) > len(available) {
		open = open[:len(available)]
	}

	for _, cand := range e.enumerate(slot, open, available, states) {
		merged := make(map[string]string, len(pinned)+len(cand.assignments))
		for pos, emp := range pinned {
			merged[pos] = emp
		}
		for pos, emp := range cand.assignments {
			merged[pos] = emp
		}

		// Pinned employees accrue continuity state too.
		next := states.advance(merged, e.rules)
		schedule[slot] = merged

		solved, err := e.solveFrom(ctx, idx+1, av, schedule, next)
		if err != nil {
			schedule[slot] = pinned
			return false, err
		}
		if solved {
			return true, nil
		}
		schedule[slot] = pinned
	}
	return false, nil
}

// enumerate generates every candidate pairing for one slot in a
// deterministic order, keeps the ones where every (employee, position)
// pair passes the rule check, and sorts them best-first when a scoring
// policy is active. Ties keep enumeration order, so re-solving identical
// inputs yields an identical schedule.
func (e *Engine) enumerate(slot timeutil.Minutes, open, available []string, states stateMap) []pairing {
	if len(open) == 0 {
		// Nothing to fill; the slot still commits its pinned assignments.
		return []pairing{{assignments: map[string]string{}}}
	}

	var candidates []pairing
	enumerated := 0
	forEachArrangement(available, len(open), func(emps []string) bool {
		enumerated++

		valid := true
		for i, pos := range open {
			if !e.assignmentValid(emps[i], pos, slot, states) {
				valid = false
				break
			}
		}
		if valid {
			assignments := make(map[string]string, len(open))
			for i, pos := range open {
				assignments[pos] = emps[i]
			}
			candidates = append(candidates, pairing{
				assignments: assignments,
				score:       e.scorePairing(assignments, states),
			})
		}

		return e.maxPermutations == 0 || enumerated < e.maxPermutations
	})

	if e.rules.Scoring.Mode != models.ScoringNone {
		sort.SliceStable(candidates, func(i, j int) bool {
			return candidates[i].score > candidates[j].score
		})
	}
	return candidates
}

// assignmentValid applies every rule whose window contains the slot time
// and whose governed set contains the position. The assignment fails when
// the employee is continuing in the position (or its group) and their
// consecutive counter has already reached the rule's cap.
func (e *Engine) assignmentValid(emp, pos string, at timeutil.Minutes, states stateMap) bool {
	st, tracked := states[emp]
	if !tracked {
		return true
	}
	for _, rule := range e.rules.Rules {
		if !rule.AppliesAt(at) || !rule.Governs(pos) {
			continue
		}
		continuing := st.LastPosition == pos ||
			(rule.Group != "" && rule.Governs(st.LastPosition))
		if continuing && st.Consecutive >= rule.MaxConsecutive {
			return false
		}
	}
	return true
}
