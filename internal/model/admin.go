package model

import "time"

// DefaultRole is assigned to admin records created without an explicit role.
const DefaultRole = "admin"

// Admin represents an administrative user of the portal. Passwords are stored
// as bcrypt hashes.
type Admin struct {
	ID           string    `json:"id" db:"id"`
	Username     string    `json:"username" db:"username"`
	PasswordHash string    `json:"-" db:"password_hash"` // bcrypt hash, never expose
	Name         string    `json:"name" db:"name"`
	Role         string    `json:"role" db:"role"`
	IsActive     bool      `json:"is_active" db:"is_active"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// Profile returns the public part of the record that is safe to hand to a
// client.
func (a *Admin) Profile() AdminProfile {
	return AdminProfile{
		ID:       a.ID,
		Username: a.Username,
		Name:     a.Name,
		Role:     a.Role,
	}
}

// AdminProfile is the client-facing view of an admin. It never carries the
// password hash.
type AdminProfile struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
	Role     string `json:"role"`
}
