package domain

import "time"

// ContactUser is a lightweight contact record shared across enrollment
// requests and clients, de-duplicated by email.
type ContactUser struct {
	ID        string    `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewContactUser(firstName, lastName, email string) (*ContactUser, error) {
	now := time.Now().UTC()
	c := &ContactUser{
		ID:        newID(),
		FirstName: firstName,
		LastName:  lastName,
		Email:     email,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *ContactUser) Validate() error {
	if err := requireUUID("contact_user.id", c.ID); err != nil {
		return err
	}
	if err := requireString("contact_user.first_name", c.FirstName, 100); err != nil {
		return err
	}
	if err := requireString("contact_user.last_name", c.LastName, 100); err != nil {
		return err
	}
	return requireEmail("contact_user.email", c.Email)
}
