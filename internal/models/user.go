package models

// User is owned by the identity component; the ledger only reads it.
type User struct {
	ID           int64  `json:"id" db:"id" example:"1"`
	Username     string `json:"username" db:"username" example:"alice"`
	PasswordHash string `json:"-" db:"password_hash"`
	FirstName    string `json:"firstName" db:"first_name" example:"Alice"`
	LastName     string `json:"lastName" db:"last_name" example:"Johnson"`
	Email        string `json:"email" db:"email" example:"alice@example.com"`
}

// Identity is the authenticated caller, passed explicitly into every core operation.
type Identity struct {
	UserID   int64
	Username string
}
