// Package model defines the data structures persisted by the store and
// exchanged over the API. JSON field names follow the storefront's wire
// format (snake_case), which is also the format of the seed dataset.
package model

// User is a registered shop account.
//
// PasswordHash holds the bcrypt hash of the user's password — never the
// plaintext. The `json:"-"` tag keeps it out of every API response; the only
// way a password enters the system is through the dedicated signup/login/
// update request bodies.
type User struct {
	ID           string `json:"id"`
	Username     string `json:"username"` // unique across all users
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
}
