package domain

import "time"

type UserRole string

const (
	UserRoleProductPeople UserRole = "PRODUCT_PEOPLE"
	UserRoleClientManager UserRole = "CLIENT_MANAGER"
)

type UserStatus string

const (
	UserStatusPending  UserStatus = "PENDING"
	UserStatusActive   UserStatus = "ACTIVE"
	UserStatusInactive UserStatus = "INACTIVE"
)

type User struct {
	ID        string     `json:"id"`
	Email     string     `json:"email"`
	FirstName string     `json:"first_name"`
	LastName  string     `json:"last_name"`
	Role      UserRole   `json:"role"`
	Status    UserStatus `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// NewUser creates a user in PENDING status with a fresh identity.
func NewUser(email, firstName, lastName string, role UserRole) (*User, error) {
	now := time.Now().UTC()
	u := &User{
		ID:        newID(),
		Email:     email,
		FirstName: firstName,
		LastName:  lastName,
		Role:      role,
		Status:    UserStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := u.Validate(); err != nil {
		return nil, err
	}
	return u, nil
}

func (u *User) Validate() error {
	if err := requireUUID("user.id", u.ID); err != nil {
		return err
	}
	if err := requireEmail("user.email", u.Email); err != nil {
		return err
	}
	if err := requireString("user.first_name", u.FirstName, 100); err != nil {
		return err
	}
	if err := requireString("user.last_name", u.LastName, 100); err != nil {
		return err
	}
	if err := requireEnum("user.role", string(u.Role),
		string(UserRoleProductPeople), string(UserRoleClientManager)); err != nil {
		return err
	}
	if err := requireEnum("user.status", string(u.Status),
		string(UserStatusPending), string(UserStatusActive), string(UserStatusInactive)); err != nil {
		return err
	}
	return nil
}

// SetStatus transitions the user to the given status.
func (u *User) SetStatus(status UserStatus) error {
	u.Status = status
	u.UpdatedAt = time.Now().UTC()
	return u.Validate()
}

// SetRole changes the user's role.
func (u *User) SetRole(role UserRole) error {
	u.Role = role
	u.UpdatedAt = time.Now().UTC()
	return u.Validate()
}

func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}
