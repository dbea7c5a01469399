package logic

import "strconv"

// TraceStep records the candidate ads remaining after a decision stage.
type TraceStep struct {
	Stage   string            `json:"stage"`
	AdIDs   []string          `json:"ad_ids"`
	Details map[string]string `json:"details,omitempty"`
}

// DecisionTrace captures the ordered stages of one decision. A nil trace
// records nothing.
type DecisionTrace struct {
	Steps []TraceStep `json:"steps"`
}

// AddStep appends a stage with the scored candidates that survived it.
func (t *DecisionTrace) AddStep(stage string, scored []Scored) {
	t.AddStepWithDetails(stage, scored, nil)
}

// AddStepWithDetails appends a stage with extra key/value context.
func (t *DecisionTrace) AddStepWithDetails(stage string, scored []Scored, details map[string]string) {
	if t == nil {
		return
	}
	step := TraceStep{Stage: stage, Details: details}
	for _, s := range scored {
		step.AdIDs = append(step.AdIDs, s.Ad.ID)
	}
	t.Steps = append(t.Steps, step)
}

// ScoreDetails renders per-ad scores for a trace step.
func ScoreDetails(scored []Scored) map[string]string {
	d := make(map[string]string, len(scored))
	for _, s := range scored {
		d[s.Ad.ID] = strconv.Itoa(s.Score)
	}
	return d
}
