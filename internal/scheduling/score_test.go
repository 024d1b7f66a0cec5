package scheduling

import (
	"context"
	"testing"

	"github.com/Amoeba115/newschedule/internal/models"
)

func weightedEngine(consistencyRoles ...string) *Engine {
	return NewEngine(catalogOf("Conductor", "Expo", "Handout"), &models.RuleSet{
		Scoring: models.ScoringPolicy{
			Mode:             models.ScoringWeighted,
			ConsistencyRoles: consistencyRoles,
			Weights:          models.DefaultScoreWeights,
		},
	})
}

func TestScorePairing_WeightedTable(t *testing.T) {
	engine := weightedEngine("Conductor")

	states := stateMap{
		"Alice S.": {LastPosition: "Conductor", Consecutive: 2, History: []string{"Conductor", "Conductor"}},
		"Bob J.":   {LastPosition: "Expo", Consecutive: 1, History: []string{"Handout", "Expo"}},
	}

	cases := []struct {
		name        string
		assignments map[string]string
		want        int
	}{
		{"consistency continuation", map[string]string{"Conductor": "Alice S."}, 10},
		{"consistency role without continuation", map[string]string{"Conductor": "Bob J."}, 0},
		{"novel position", map[string]string{"Expo": "Alice S."}, 1},
		{"repeat of most recent", map[string]string{"Expo": "Bob J."}, -10},
		{"repeat of second most recent", map[string]string{"Handout": "Bob J."}, -5},
		{"pairs sum", map[string]string{"Conductor": "Alice S.", "Expo": "Bob J."}, 0},
	}

	for _, tc := range cases {
		if got := engine.scorePairing(tc.assignments, states); got != tc.want {
			t.Errorf("%s: score = %d, want %d", tc.name, got, tc.want)
		}
	}
}

func TestScorePairing_OlderHistoryEntryScoresZero(t *testing.T) {
	engine := weightedEngine()

	states := stateMap{
		"Alice S.": {LastPosition: "Handout", Consecutive: 1, History: []string{"Expo", "Conductor", "Handout"}},
	}

	// Expo is in the rolling history but older than the two penalized
	// entries: neither novel nor penalized.
	if got := engine.scorePairing(map[string]string{"Expo": "Alice S."}, states); got != 0 {
		t.Errorf("score = %d, want 0", got)
	}
}

func TestScorePairing_UniformModes(t *testing.T) {
	states := stateMap{
		"Alice S.": {LastPosition: "Conductor", Consecutive: 1, History: []string{"Conductor"}},
	}
	continuation := map[string]string{"Conductor": "Alice S."}

	consistency := NewEngine(catalogOf("Conductor"), &models.RuleSet{
		Scoring: models.ScoringPolicy{Mode: models.ScoringUniform},
	})
	if got := consistency.scorePairing(continuation, states); got != 1 {
		t.Errorf("uniform continuation score = %d, want 1", got)
	}

	variety := NewEngine(catalogOf("Conductor"), &models.RuleSet{
		Scoring: models.ScoringPolicy{Mode: models.ScoringUniform, PreferVariety: true},
	})
	if got := variety.scorePairing(continuation, states); got != -1 {
		t.Errorf("variety continuation score = %d, want -1", got)
	}
}

func TestScorePairing_ConfigurableWeights(t *testing.T) {
	engine := NewEngine(catalogOf("Conductor", "Expo"), &models.RuleSet{
		Scoring: models.ScoringPolicy{
			Mode:             models.ScoringWeighted,
			ConsistencyRoles: []string{"Conductor"},
			Weights:          models.ScoreWeights{Consistency: 3, Novelty: 2, RepeatPenalty: -7, PriorPenalty: -4},
		},
	})

	states := stateMap{
		"Alice S.": {LastPosition: "Conductor", Consecutive: 1, History: []string{"Conductor"}},
	}
	if got := engine.scorePairing(map[string]string{"Conductor": "Alice S."}, states); got != 3 {
		t.Errorf("custom consistency weight: score = %d, want 3", got)
	}
	if got := engine.scorePairing(map[string]string{"Expo": "Alice S."}, states); got != 2 {
		t.Errorf("custom novelty weight: score = %d, want 2", got)
	}
}

func TestSolve_WeightedScoringKeepsConsistencyRoleStaffed(t *testing.T) {
	engine := weightedEngine("Conductor")

	table := solveOrFail(t, engine, Request{
		StoreOpen:  "9:00 AM",
		StoreClose: "5:00 PM",
		Employees: []models.ShiftRecord{
			allDay("Alice Smith"), allDay("Bob Jones"), allDay("Cara Lee"),
		},
	})

	first := table.Assigned[table.Slots[0]]["Conductor"]
	if first == "" {
		t.Fatal("Conductor unstaffed in first slot")
	}
	for _, slot := range table.Slots {
		if got := table.Assigned[slot]["Conductor"]; got != first {
			t.Errorf("slot %s: Conductor = %q, consistency scoring should keep %q", slot.Format(), got, first)
		}
	}
}

func TestSolve_VarietyScoringRotates(t *testing.T) {
	engine := NewEngine(catalogOf("Conductor", "Expo"), &models.RuleSet{
		Scoring: models.ScoringPolicy{Mode: models.ScoringUniform, PreferVariety: true},
	})

	table := solveOrFail(t, engine, Request{
		StoreOpen:  "9:00 AM",
		StoreClose: "11:00 AM",
		Employees:  []models.ShiftRecord{allDay("Alice Smith"), allDay("Bob Jones")},
	})

	var prev string
	for i, slot := range table.Slots {
		got := table.Assigned[slot]["Conductor"]
		if i > 0 && got == prev {
			t.Errorf("slot %s: Conductor = %q twice in a row despite variety preference", slot.Format(), got)
		}
		prev = got
	}
}

func BenchmarkSolve(b *testing.B) {
	ruleSet := &models.RuleSet{
		Rules: []models.Rule{{
			Kind:           models.RuleConsecutiveCap,
			Positions:      []string{"Conductor"},
			MaxConsecutive: 2,
			WindowStart:    -1,
			WindowEnd:      -1,
		}},
		Scoring: models.ScoringPolicy{
			Mode:             models.ScoringWeighted,
			ConsistencyRoles: []string{"Conductor"},
			Weights:          models.DefaultScoreWeights,
		},
	}
	engine := NewEngine(models.NewCatalog(false), ruleSet)

	req := Request{
		StoreOpen:  "9:00 AM",
		StoreClose: "5:00 PM",
		Employees: []models.ShiftRecord{
			{Name: "Alice Smith", ShiftStart: "9:00 AM", ShiftEnd: "5:00 PM", BreakStart: "12:00 PM"},
			{Name: "Bob Jones", ShiftStart: "9:00 AM", ShiftEnd: "5:00 PM", BreakStart: "12:30 PM"},
			{Name: "Cara Lee", ShiftStart: "10:00 AM", ShiftEnd: "4:00 PM"},
			{Name: "Dan Wu", ShiftStart: "11:00 AM", ShiftEnd: "5:00 PM", TrainingStart: "1:00 PM"},
		},
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := engine.Solve(context.Background(), req); err != nil {
			b.Fatal(err)
		}
	}
}
