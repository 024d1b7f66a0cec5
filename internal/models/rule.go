package models

import "github.com/Amoeba115/newschedule/internal/timeutil"

// RuleKind enumerates the validated rule types.
type RuleKind string

const (
	// RuleConsecutiveCap limits how many contiguous slots an employee may
	// hold one of the governed positions.
	RuleConsecutiveCap RuleKind = "consecutive_cap"

	// RuleGroupedConsecutiveCap is a consecutive cap where rotating among
	// the governed positions still counts as staying put.
	RuleGroupedConsecutiveCap RuleKind = "grouped_consecutive_cap"
)

// Rule is one position constraint. Rules are read-only configuration for a
// solve run. A rule with no window covers the whole day.
type Rule struct {
	Name           string           `json:"name"`
	Kind           RuleKind         `json:"kind"`
	Positions      []string         `json:"positions"`
	MaxConsecutive int              `json:"max_consecutive_slots"`
	Group          string           `json:"group,omitempty"`
	WindowStart    timeutil.Minutes `json:"-"`
	WindowEnd      timeutil.Minutes `json:"-"`
}

// AppliesAt reports whether the rule's window contains the slot time.
func (r Rule) AppliesAt(at timeutil.Minutes) bool {
	if !r.WindowStart.Valid() && !r.WindowEnd.Valid() {
		return true
	}
	if r.WindowStart.Valid() && at < r.WindowStart {
		return false
	}
	if r.WindowEnd.Valid() && at >= r.WindowEnd {
		return false
	}
	return true
}

// Governs reports whether pos is one of the rule's governed positions.
func (r Rule) Governs(pos string) bool {
	for _, p := range r.Positions {
		if p == pos {
			return true
		}
	}
	return false
}

// ScoringMode selects which scoring policy, if any, ranks valid pairings.
type ScoringMode string

const (
	ScoringNone     ScoringMode = ""
	ScoringWeighted ScoringMode = "weighted"
	ScoringUniform  ScoringMode = "uniform"
)

// ScoreWeights is the weight table for the weighted scoring mode.
type ScoreWeights struct {
	Consistency   int `json:"consistency" yaml:"consistency"`
	Novelty       int `json:"novelty" yaml:"novelty"`
	RepeatPenalty int `json:"repeat_penalty" yaml:"repeat_penalty"`
	PriorPenalty  int `json:"prior_penalty" yaml:"prior_penalty"`
}

// DefaultScoreWeights is the canonical weight table.
var DefaultScoreWeights = ScoreWeights{
	Consistency:   10,
	Novelty:       1,
	RepeatPenalty: -10,
	PriorPenalty:  -5,
}

// ScoringPolicy configures candidate ranking. The zero value disables
// scoring entirely (first valid pairing wins).
type ScoringPolicy struct {
	Mode ScoringMode `json:"mode"`

	// ConsistencyRoles are positions rewarded for keeping the same
	// employee slot over slot (weighted mode only).
	ConsistencyRoles []string `json:"consistency_roles,omitempty"`

	// PreferVariety flips the uniform mode from rewarding continuation
	// (+1) to penalizing it (-1).
	PreferVariety bool `json:"prefer_variety,omitempty"`

	Weights ScoreWeights `json:"weights"`
}

// IsConsistencyRole reports whether pos is in the policy's consistency set.
func (p ScoringPolicy) IsConsistencyRole(pos string) bool {
	for _, r := range p.ConsistencyRoles {
		if r == pos {
			return true
		}
	}
	return false
}

// RuleSet is the full rule configuration consumed by a solve run.
type RuleSet struct {
	Rules   []Rule        `json:"rules"`
	Scoring ScoringPolicy `json:"scoring"`
}

// GroupedTogether reports whether any grouped rule treats positions a and b
// as equivalent for continuity bookkeeping.
func (rs *RuleSet) GroupedTogether(a, b string) bool {
	if rs == nil || a == "" || b == "" || a == b {
		return false
	}
	for _, rule := range rs.Rules {
		if rule.Group == "" {
			continue
		}
		if rule.Governs(a) && rule.Governs(b) {
			return true
		}
	}
	return false
}
