package domain

import "time"

type EnrollmentStatus string

const (
	EnrollmentStatusPending  EnrollmentStatus = "PENDING"
	EnrollmentStatusApproved EnrollmentStatus = "APPROVED"
	EnrollmentStatusRejected EnrollmentStatus = "REJECTED"
)

// EnrollmentRequest governs a client's admission into a program. Contacts
// are shared, de-duplicated ContactUser records linked many-to-many.
type EnrollmentRequest struct {
	ID          string           `json:"id"`
	ProgramID   string           `json:"program_id"`
	ClientName  string           `json:"client_name"`
	AccountIDs  []string         `json:"account_ids"`
	Motivation  string           `json:"motivation"`
	Status      EnrollmentStatus `json:"status"`
	RequestedBy string           `json:"requested_by"`
	Contacts    []ContactUser    `json:"contacts,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

func NewEnrollmentRequest(programID, clientName string, accountIDs []string, motivation, requestedBy string) (*EnrollmentRequest, error) {
	now := time.Now().UTC()
	e := &EnrollmentRequest{
		ID:          newID(),
		ProgramID:   programID,
		ClientName:  clientName,
		AccountIDs:  accountIDs,
		Motivation:  motivation,
		Status:      EnrollmentStatusPending,
		RequestedBy: requestedBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := e.Validate(); err != nil {
		return nil, err
	}
	return e, nil
}

func (e *EnrollmentRequest) Validate() error {
	if err := requireUUID("enrollment_request.id", e.ID); err != nil {
		return err
	}
	if err := requireUUID("enrollment_request.program_id", e.ProgramID); err != nil {
		return err
	}
	if err := requireString("enrollment_request.client_name", e.ClientName, 200); err != nil {
		return err
	}
	if err := requireString("enrollment_request.motivation", e.Motivation, 2000); err != nil {
		return err
	}
	if err := requireEnum("enrollment_request.status", string(e.Status),
		string(EnrollmentStatusPending), string(EnrollmentStatusApproved), string(EnrollmentStatusRejected)); err != nil {
		return err
	}
	if err := requireUUID("enrollment_request.requested_by", e.RequestedBy); err != nil {
		return err
	}
	return nil
}

// Process moves the request to a terminal state.
func (e *EnrollmentRequest) Process(approved bool) error {
	if approved {
		e.Status = EnrollmentStatusApproved
	} else {
		e.Status = EnrollmentStatusRejected
	}
	e.UpdatedAt = time.Now().UTC()
	return e.Validate()
}

func (e *EnrollmentRequest) IsPending() bool {
	return e.Status == EnrollmentStatusPending
}
