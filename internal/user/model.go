package user

import "time"

type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Profile holds the delivery details of a user. Every user has exactly one,
// created empty at signup.
type Profile struct {
	UserID    string    `json:"user_id"`
	FullName  string    `json:"full_name"`
	Address   string    `json:"address"`
	City      string    `json:"city"`
	Zipcode   string    `json:"zipcode"`
	Country   string    `json:"country"`
	Phone     string    `json:"phone"`
	UpdatedAt time.Time `json:"updated_at"`
}
