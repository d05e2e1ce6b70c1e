package handlers

import (
	"time"

	"github.com/geocoder89/userhub/internal/domain/user"
)

type UserRequest struct {
	FirstName string `json:"firstName" binding:"required,notblank,max=50"`
	LastName  string `json:"lastName" binding:"required,notblank,max=50"`
	Email     string `json:"email" binding:"required,email,max=100"`
	Password  string `json:"password" binding:"required,notblank,min=6,max=72,maxbytes=72"`
}

// UpdateUserRequest is a full replacement except for the password, which may be
// omitted or blank to keep the stored one.
type UpdateUserRequest struct {
	FirstName string `json:"firstName" binding:"required,notblank,max=50"`
	LastName  string `json:"lastName" binding:"required,notblank,max=50"`
	Email     string `json:"email" binding:"required,email,max=100"`
	Password  string `json:"password" binding:"omitempty,blankormin=6,max=72,maxbytes=72"`
}

type UserResponse struct {
	ID        int64     `json:"id"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (r UserRequest) toCandidate() user.Candidate {
	return user.Candidate{
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Email:     r.Email,
		Password:  r.Password,
	}
}

func (r UpdateUserRequest) toCandidate() user.Candidate {
	return user.Candidate{
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Email:     r.Email,
		Password:  r.Password,
	}
}

func toUserResponse(u user.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func toUserResponses(users []user.User) []UserResponse {
	out := make([]UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toUserResponse(u))
	}
	return out
}
