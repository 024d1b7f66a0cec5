package scheduling

import "github.com/Amoeba115/newschedule/internal/models"

// historyLimit bounds the rolling history of recent positions kept per
// employee for variety scoring.
const historyLimit = 3

// employeeState is the solver's per-employee continuity bookkeeping. It is
// created empty at solve start and discarded at solve end.
type employeeState struct {
	LastPosition string
	Consecutive  int
	History      []string // most recent last
}

type stateMap map[string]employeeState

// advance returns a new state map with every employee in assignments
// updated for one committed slot. The receiver is never mutated, so
// sibling branches of the search stay independent.
func (s stateMap) advance(assignments map[string]string, rs *models.RuleSet) stateMap {
	next := make(stateMap, len(s)+len(assignments))
	for name, st := range s {
		next[name] = st
	}
	for pos, emp := range assignments {
		prior := s[emp]
		continuing := prior.LastPosition == pos || rs.GroupedTogether(prior.LastPosition, pos)

		st := employeeState{LastPosition: pos, Consecutive: 1}
		if continuing {
			st.Consecutive = prior.Consecutive + 1
		}

		history := make([]string, 0, len(prior.History)+1)
		history = append(history, prior.History...)
		history = append(history, pos)
		if len(history) > historyLimit {
			history = history[len(history)-historyLimit:]
		}
		st.History = history

		next[emp] = st
	}
	return next
}
