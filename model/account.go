package model

// Account an identity row from the accounts table. The server never
// authenticates; the gateway hands it an already-validated actor.
type Account struct {
	ID       int    `db:"id" json:"id"`
	Name     string `db:"name" json:"name"`
	Email    string `db:"email" json:"email"`
	Phone    string `db:"phone" json:"phone"`
	Role     string `db:"role" json:"role"`
	IsActive bool   `db:"is_active" json:"isActive"`
}

// Actor the acting user attached to a request context
type Actor struct {
	ID   int    `json:"id"`
	Role string `json:"role"`
}
