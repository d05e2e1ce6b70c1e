package user

import "time"

type User struct {
	ID        int64     `json:"id"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Email     string    `json:"email"`
	Password  string    `json:"-"` // never expose in JSON
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Candidate is the caller-supplied part of a user: no id, no timestamps.
type Candidate struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
}

// Apply copies the candidate onto an existing record. Names and email are always
// replaced; the password only when the candidate carries a non-blank one.
func (u User) Apply(c Candidate) User {
	u.FirstName = c.FirstName
	u.LastName = c.LastName
	u.Email = c.Email

	if !IsBlank(c.Password) {
		u.Password = c.Password
	}

	return u
}
