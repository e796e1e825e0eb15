package models

import "time"

// Pupil represents a pupil managed by a teacher. Pupils are created once
// via the dashboard form and never mutated afterwards.
type Pupil struct {
	ID        int64     `json:"id"`
	TeacherID int64     `json:"teacherId"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

// EntityID implements syncstore.Entity.
func (p Pupil) EntityID() int64 { return p.ID }
