package models

import "time"

// User represents a teacher account. Every domain row in the system is
// scoped to exactly one user via its teacher_id column.
type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	CreatedAt    time.Time `json:"createdAt"`
}

// FullName returns the display name of the teacher.
func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}
