package domain

import "time"

// Client is a client enrolled into a program, created by approving an
// enrollment request. IsActive records whether the client meaningfully
// participates in the program.
type Client struct {
	ID                  string        `json:"id"`
	ProgramID           string        `json:"program_id"`
	EnrollmentRequestID string        `json:"enrollment_request_id"`
	AccountIDs          []string      `json:"account_ids"`
	IsActive            bool          `json:"is_active"`
	Contacts            []ContactUser `json:"contacts,omitempty"`
	EnrolledAt          time.Time     `json:"enrolled_at"`
	UpdatedAt           time.Time     `json:"updated_at"`
}

// NewClientFromRequest enrolls the client described by an approved
// enrollment request. New clients start active.
func NewClientFromRequest(req *EnrollmentRequest) (*Client, error) {
	now := time.Now().UTC()
	c := &Client{
		ID:                  newID(),
		ProgramID:           req.ProgramID,
		EnrollmentRequestID: req.ID,
		AccountIDs:          req.AccountIDs,
		IsActive:            true,
		Contacts:            req.Contacts,
		EnrolledAt:          now,
		UpdatedAt:           now,
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Client) Validate() error {
	if err := requireUUID("client.id", c.ID); err != nil {
		return err
	}
	if err := requireUUID("client.program_id", c.ProgramID); err != nil {
		return err
	}
	if err := requireUUID("client.enrollment_request_id", c.EnrollmentRequestID); err != nil {
		return err
	}
	return nil
}

// SetActive toggles the engagement flag.
func (c *Client) SetActive(active bool) {
	c.IsActive = active
	c.UpdatedAt = time.Now().UTC()
}
