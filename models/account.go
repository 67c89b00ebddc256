package models

import "time"

// Account is the server-side record behind a User. Passwords are stored as bcrypt hashes only
// and the returned User never carries the password.
type Account struct {
	User         User      `json:"user"`
	PasswordHash string    `json:"password_hash"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Public returns the account's user without credentials.
func (a Account) Public() User {
	u := a.User.Clone()
	u.Password = ""
	u.Normalize()
	return u
}
