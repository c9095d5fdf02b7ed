package domain

import "time"

type RegistrationStatus string

const (
	RegistrationStatusPending  RegistrationStatus = "PENDING"
	RegistrationStatusApproved RegistrationStatus = "APPROVED"
	RegistrationStatusRejected RegistrationStatus = "REJECTED"
)

// RegistrationRequest governs account-creation approval. It is created on
// self-service sign-up and transitions exactly once from PENDING to a
// terminal state via Process.
type RegistrationRequest struct {
	ID              string             `json:"id"`
	Email           string             `json:"email"`
	FirstName       string             `json:"first_name"`
	LastName        string             `json:"last_name"`
	Role            UserRole           `json:"role"`
	Status          RegistrationStatus `json:"status"`
	ApprovedBy      *string            `json:"approved_by,omitempty"`
	ApprovedAt      *time.Time         `json:"approved_at,omitempty"`
	RejectionReason *string            `json:"rejection_reason,omitempty"`
	CreatedAt       time.Time          `json:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at"`
}

func NewRegistrationRequest(email, firstName, lastName string, role UserRole) (*RegistrationRequest, error) {
	now := time.Now().UTC()
	r := &RegistrationRequest{
		ID:        newID(),
		Email:     email,
		FirstName: firstName,
		LastName:  lastName,
		Role:      role,
		Status:    RegistrationStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *RegistrationRequest) Validate() error {
	if err := requireUUID("registration_request.id", r.ID); err != nil {
		return err
	}
	if err := requireEmail("registration_request.email", r.Email); err != nil {
		return err
	}
	if err := requireString("registration_request.first_name", r.FirstName, 100); err != nil {
		return err
	}
	if err := requireString("registration_request.last_name", r.LastName, 100); err != nil {
		return err
	}
	if err := requireEnum("registration_request.role", string(r.Role),
		string(UserRoleProductPeople), string(UserRoleClientManager)); err != nil {
		return err
	}
	if err := requireEnum("registration_request.status", string(r.Status),
		string(RegistrationStatusPending), string(RegistrationStatusApproved), string(RegistrationStatusRejected)); err != nil {
		return err
	}

	// Terminal states carry the approver; rejections carry a reason.
	if r.Status == RegistrationStatusApproved || r.Status == RegistrationStatusRejected {
		if r.ApprovedBy == nil || *r.ApprovedBy == "" {
			return &ValidationError{Field: "registration_request.approved_by", Rule: "is required once the request is processed"}
		}
	}
	if r.Status == RegistrationStatusRejected {
		if r.RejectionReason == nil || *r.RejectionReason == "" {
			return &ValidationError{Field: "registration_request.rejection_reason", Rule: "is required when the request is rejected"}
		}
	}
	return nil
}

// Process moves the request to a terminal state. The approver is recorded
// either way; a rejection additionally records the reason.
func (r *RegistrationRequest) Process(approved bool, rejectionReason, approverID string) error {
	now := time.Now().UTC()
	r.ApprovedBy = &approverID
	r.ApprovedAt = &now
	r.UpdatedAt = now
	if approved {
		r.Status = RegistrationStatusApproved
		r.RejectionReason = nil
	} else {
		r.Status = RegistrationStatusRejected
		r.RejectionReason = &rejectionReason
	}
	return r.Validate()
}

func (r *RegistrationRequest) IsPending() bool {
	return r.Status == RegistrationStatusPending
}
