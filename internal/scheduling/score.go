package scheduling

import "github.com/Amoeba115/newschedule/internal/models"

// scorePairing rates a candidate pairing against the configured scoring
// policy. Scores are summed per assigned (position, employee) pair; higher
// is better. With no policy configured every pairing scores zero and the
// first valid one wins.
func (e *Engine) scorePairing(assignments map[string]string, states stateMap) int {
	policy := e.rules.Scoring
	switch policy.Mode {
	case models.ScoringUniform:
		total := 0
		for pos, emp := range assignments {
			if states[emp].LastPosition != pos {
				continue
			}
			if policy.PreferVariety {
				total--
			} else {
				total++
			}
		}
		return total

	case models.ScoringWeighted:
		w := policy.Weights
		total := 0
		for pos, emp := range assignments {
			st := states[emp]

			if policy.IsConsistencyRole(pos) {
				if st.LastPosition == pos {
					total += w.Consistency
				}
				continue
			}

			history := st.History
			switch {
			case len(history) > 0 && history[len(history)-1] == pos:
				total += w.RepeatPenalty
			case len(history) > 1 && history[len(history)-2] == pos:
				total += w.PriorPenalty
			case !containsString(history, pos):
				total += w.Novelty
			}
		}
		return total

	default:
		return 0
	}
}

func containsString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
