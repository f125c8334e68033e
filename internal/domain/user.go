package domain

import "time"

// User is the domain model for account holders who publish slots.
// The swap core only ever reads ID; the remaining fields serve the
// auth plumbing at the edge.
type User struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"passwordHash"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    *time.Time `json:"updatedAt,omitempty"`
}

func (u *User) GetID() string   { return u.ID }
func (u *User) SetID(id string) { u.ID = id }

// Clone returns a deep copy safe to mutate independently.
func (u *User) Clone() *User {
	cp := *u
	if u.UpdatedAt != nil {
		t := *u.UpdatedAt
		cp.UpdatedAt = &t
	}
	return &cp
}
