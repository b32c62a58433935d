package user

import "time"

// User is the local profile of a Clerk user. ID is the Clerk user id.
type User struct {
	ID        string    `json:"id" db:"id"`
	Nickname  string    `json:"nickname" db:"nickname"`
	Avatar    string    `json:"avatar" db:"avatar"`
	Email     *string   `json:"email,omitempty" db:"email"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Profile is what Ensure needs to create a user row.
type Profile struct {
	ID       string
	Nickname string
	Avatar   string
	Email    *string
}
