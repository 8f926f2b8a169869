package domain

import "time"

// Account is a staff login. The password is stored as a salted one-way
// digest, never in the clear.
type Account struct {
	ID           string
	Username     string
	PasswordHash string // argon2id PHC encoded
	Role         Role
	CreatedDate  time.Time
	LastLogin    *time.Time // updated on each successful authentication
}
