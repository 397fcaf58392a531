package models

import (
	"time"
)

type Role string

const (
	RoleGuest Role = "guest"
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// rank orders roles for requirement checks: a higher rank satisfies any lower one.
var rank = map[Role]int{
	RoleGuest: 0,
	RoleUser:  1,
	RoleAdmin: 2,
}

// Valid reports whether r is one of the enumerated roles.
func (r Role) Valid() bool {
	_, ok := rank[r]
	return ok
}

// Satisfies reports whether a holder of r may perform an action requiring required.
func (r Role) Satisfies(required Role) bool {
	have, ok := rank[r]
	if !ok {
		return false
	}
	need, ok := rank[required]
	if !ok {
		return false
	}
	return have >= need
}

type User struct {
	ID           uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	Username     string    `gorm:"type:varchar(50);uniqueIndex;not null" json:"username"`
	Email        string    `gorm:"type:varchar(100);uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"type:varchar(255);not null" json:"-"` // Never expose password hash in JSON
	Role         Role      `gorm:"type:varchar(20);not null;default:'user'" json:"role"`
	FirstName    string    `gorm:"type:varchar(50)" json:"first_name,omitempty"`
	LastName     string    `gorm:"type:varchar(50)" json:"last_name,omitempty"`
	PhoneNumber  string    `gorm:"type:varchar(30)" json:"phone_number,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// PublicUser is the credential-free view returned to clients and stored in sessions.
type PublicUser struct {
	ID       uint64 `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     Role   `json:"role"`
}

func (u *User) Public() PublicUser {
	return PublicUser{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		Role:     u.Role,
	}
}
