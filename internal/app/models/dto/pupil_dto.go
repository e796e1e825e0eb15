package dto

import "time"

// CreatePupilRequest is the payload of the "add pupil" form
type CreatePupilRequest struct {
	Name string `json:"name" binding:"required,min=2,max=100" example:"Jonas M."`
}

// PupilResponse is the API view of a pupil
type PupilResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}
