package domain

import "time"

type ProgramStatus string

const (
	ProgramStatusPending  ProgramStatus = "PENDING"
	ProgramStatusLive     ProgramStatus = "LIVE"
	ProgramStatusStopped  ProgramStatus = "STOPPED"
	ProgramStatusArchived ProgramStatus = "ARCHIVED"
)

// Program is an early-adopter program owned by a product person. Enrollment
// requests and enrolled clients reference it by foreign key.
type Program struct {
	ID           string        `json:"id"`
	Title        string        `json:"title"`
	Description  string        `json:"description"`
	CreatedBy    string        `json:"created_by"`
	Stakeholders []string      `json:"stakeholders"`
	StartDate    string        `json:"start_date"`
	EndDate      string        `json:"end_date"`
	Status       ProgramStatus `json:"status"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

func NewProgram(title, description, createdBy string, stakeholders []string, startDate, endDate string) (*Program, error) {
	now := time.Now().UTC()
	p := &Program{
		ID:           newID(),
		Title:        title,
		Description:  description,
		CreatedBy:    createdBy,
		Stakeholders: stakeholders,
		StartDate:    startDate,
		EndDate:      endDate,
		Status:       ProgramStatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Program) Validate() error {
	if err := requireUUID("program.id", p.ID); err != nil {
		return err
	}
	if err := requireString("program.title", p.Title, 200); err != nil {
		return err
	}
	if err := requireString("program.description", p.Description, 2000); err != nil {
		return err
	}
	if err := requireUUID("program.created_by", p.CreatedBy); err != nil {
		return err
	}
	for _, stakeholder := range p.Stakeholders {
		if err := requireUUID("program.stakeholders", stakeholder); err != nil {
			return err
		}
	}
	if err := requireDate("program.start_date", p.StartDate); err != nil {
		return err
	}
	if err := requireDate("program.end_date", p.EndDate); err != nil {
		return err
	}
	if p.EndDate < p.StartDate {
		return &ValidationError{Field: "program.end_date", Rule: "must not be before start_date"}
	}
	if err := requireEnum("program.status", string(p.Status),
		string(ProgramStatusPending), string(ProgramStatusLive),
		string(ProgramStatusStopped), string(ProgramStatusArchived)); err != nil {
		return err
	}
	return nil
}

func (p *Program) transition(from, to ProgramStatus) error {
	if p.Status != from {
		return &ValidationError{Field: "program.status", Rule: "cannot move from " + string(p.Status) + " to " + string(to)}
	}
	p.Status = to
	p.UpdatedAt = time.Now().UTC()
	return p.Validate()
}

// Launch moves a PENDING program to LIVE.
func (p *Program) Launch() error {
	return p.transition(ProgramStatusPending, ProgramStatusLive)
}

// Stop moves a LIVE program to STOPPED.
func (p *Program) Stop() error {
	return p.transition(ProgramStatusLive, ProgramStatusStopped)
}

// Archive moves a STOPPED program to ARCHIVED.
func (p *Program) Archive() error {
	return p.transition(ProgramStatusStopped, ProgramStatusArchived)
}

// HasEnded reports whether the program's end date is strictly before the
// given day (YYYY-MM-DD).
func (p *Program) HasEnded(today string) bool {
	return p.EndDate < today
}
