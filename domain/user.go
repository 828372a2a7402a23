package domain

import "time"

// User is the service-level representation of a user.
type User struct {
	ID        int64     `json:"id" msgpack:"id"`
	Username  string    `json:"username" msgpack:"username"`
	Email     string    `json:"email" msgpack:"email"`
	CreatedAt time.Time `json:"created_at" msgpack:"created_at"`
}

// NewUser carries the fields of a user to create.
type NewUser struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}
