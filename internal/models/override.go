package models

// Override pins one employee into one position for a clock-time range. It
// is supplied externally, expanded into per-slot pins before solving, and
// never mutated by the solver. The employee name must already be in
// "First L." display form.
type Override struct {
	Employee string `json:"employee" yaml:"employee"`
	Position string `json:"position" yaml:"position"`
	Start    string `json:"start_time" yaml:"start_time"`
	End      string `json:"end_time" yaml:"end_time"`
}
