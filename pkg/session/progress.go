package session

// Status summarizes how far a form is from submission.
type Status string

const (
	StatusReady      Status = "ready"      // every step valid
	StatusIncomplete Status = "incomplete" // steps not visited or not validated yet
	StatusInvalid    Status = "invalid"    // at least one field reported invalid
)

// StepProgress is the state of one step.
type StepProgress struct {
	Name      string   `json:"name"`
	Title     string   `json:"title"`
	Fields    int      `json:"fields"`
	Evaluated int      `json:"evaluated"`
	Valid     bool     `json:"valid"`
	Invalid   []string `json:"invalid,omitempty"`
}

// Progress is a read-only view of the session.
type Progress struct {
	Current string         `json:"current"`
	Steps   []StepProgress `json:"steps"`
	Status  Status         `json:"status"`
}

// Progress reports per step validity and the overall status. A step only
// counts as valid once it has been validated as a whole.
func (s *Session) Progress() Progress {
	p := Progress{Current: s.CurrentStep().Name, Status: StatusReady}
	for _, step := range s.def.Steps {
		sp := StepProgress{
			Name:      step.Name,
			Title:     step.Title,
			Fields:    len(step.Fields),
			Evaluated: len(s.store.Validity(step.Name)),
			Valid:     s.isChecked(step.Name) && s.store.IsStepValid(step.Name),
			Invalid:   s.invalidFields(step.Name),
		}
		switch {
		case len(sp.Invalid) > 0:
			p.Status = StatusInvalid
		case !sp.Valid && p.Status == StatusReady:
			p.Status = StatusIncomplete
		}
		p.Steps = append(p.Steps, sp)
	}
	return p
}
