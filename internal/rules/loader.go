package rules

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/Amoeba115/newschedule/internal/models"
	"github.com/Amoeba115/newschedule/internal/timeutil"
)

// ConfigError reports a structurally malformed rule document. It is always
// produced before solving begins so a bad file can never crash the search.
type ConfigError struct {
	Reason string
	Err    error
}

func (e *ConfigError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid rule configuration: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("invalid rule configuration: %s", e.Reason)
}

func (e *ConfigError) Unwrap() error { return e.Err }

var validate = validator.New()

// positionList accepts either a scalar or a sequence in YAML, since older
// rule files wrote `position: Conductor` for single-position rules.
type positionList []string

func (p *positionList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		var single string
		if err := value.Decode(&single); err != nil {
			return err
		}
		*p = positionList{single}
		return nil
	case yaml.SequenceNode:
		var many []string
		if err := value.Decode(&many); err != nil {
			return err
		}
		*p = positionList(many)
		return nil
	default:
		return fmt.Errorf("position must be a string or a list of strings")
	}
}

type ruleDoc struct {
	Name           string       `yaml:"name"`
	Position       positionList `yaml:"position" validate:"required,min=1,dive,required"`
	MaxConsecutive int          `yaml:"max_consecutive_slots" validate:"required,min=1"`
	Group          string       `yaml:"group"`
	WindowStart    string       `yaml:"window_start"`
	WindowEnd      string       `yaml:"window_end"`
}

type scoringDoc struct {
	Mode             string               `yaml:"mode" validate:"omitempty,oneof=weighted uniform"`
	ConsistencyRoles []string             `yaml:"consistency_roles"`
	PreferVariety    bool                 `yaml:"prefer_variety"`
	Weights          *models.ScoreWeights `yaml:"weights"`
}

type document struct {
	PositionRules []ruleDoc   `yaml:"position_rules" validate:"dive"`
	Scoring       *scoringDoc `yaml:"scoring"`
}

// Parse decodes and validates a YAML rule document into a typed RuleSet.
func Parse(data []byte) (*models.RuleSet, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &ConfigError{Reason: "not valid YAML", Err: err}
	}
	if err := validate.Struct(&doc); err != nil {
		return nil, &ConfigError{Reason: "failed structural validation", Err: err}
	}

	rs := &models.RuleSet{}
	for i, rd := range doc.PositionRules {
		windowStart, err := timeutil.ParseClock(rd.WindowStart)
		if err != nil {
			return nil, &ConfigError{Reason: fmt.Sprintf("rule %d window_start", i+1), Err: err}
		}
		windowEnd, err := timeutil.ParseClock(rd.WindowEnd)
		if err != nil {
			return nil, &ConfigError{Reason: fmt.Sprintf("rule %d window_end", i+1), Err: err}
		}
		if windowStart.Valid() && windowEnd.Valid() && windowStart >= windowEnd {
			return nil, &ConfigError{Reason: fmt.Sprintf("rule %d window is empty", i+1)}
		}

		kind := models.RuleConsecutiveCap
		if rd.Group != "" {
			kind = models.RuleGroupedConsecutiveCap
		}
		rs.Rules = append(rs.Rules, models.Rule{
			Name:           rd.Name,
			Kind:           kind,
			Positions:      []string(rd.Position),
			MaxConsecutive: rd.MaxConsecutive,
			Group:          rd.Group,
			WindowStart:    windowStart,
			WindowEnd:      windowEnd,
		})
	}

	if doc.Scoring != nil {
		rs.Scoring = models.ScoringPolicy{
			Mode:             models.ScoringMode(doc.Scoring.Mode),
			ConsistencyRoles: doc.Scoring.ConsistencyRoles,
			PreferVariety:    doc.Scoring.PreferVariety,
			Weights:          models.DefaultScoreWeights,
		}
		if doc.Scoring.Weights != nil {
			rs.Scoring.Weights = *doc.Scoring.Weights
		}
	}
	return rs, nil
}

// Load reads a rule file from disk. A missing file yields an empty rule
// set, matching the best-effort handling of optional configuration.
func Load(path string) (*models.RuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &models.RuleSet{}, nil
		}
		return nil, fmt.Errorf("reading rule file: %w", err)
	}
	return Parse(data)
}
