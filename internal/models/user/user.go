package user

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	UUID            uuid.UUID  `json:"id"`
	Name            string     `json:"name"`
	Email           string     `json:"email"`
	PasswordHash    string     `json:"-"`
	ProfileImageURL string     `json:"profileImageUrl"`
	Role            Role       `json:"role"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       *time.Time `json:"updatedAt,omitempty"`
}

// Summary is the projection used when tasks resolve their assignees.
type Summary struct {
	UUID            uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	Email           string    `json:"email"`
	ProfileImageURL string    `json:"profileImageUrl"`
}

type Role string

const RoleAdmin Role = "admin"
const RoleMember Role = "member"

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleMember
}

func (u *User) Summary() Summary {
	return Summary{
		UUID:            u.UUID,
		Name:            u.Name,
		Email:           u.Email,
		ProfileImageURL: u.ProfileImageURL,
	}
}

// Caller is the authenticated identity attached to a request.
type Caller struct {
	ID   uuid.UUID
	Role Role
}

func (c Caller) IsAdmin() bool {
	return c.Role == RoleAdmin
}
