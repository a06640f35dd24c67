package entity

import "time"

// User is an artisan account on the marketplace. The voice engine only
// reads the id and language fields; the rest belongs to the profile the
// marketplace frontend shows.
type User struct {
	ID                string    `db:"id"`
	Email             string    `db:"email"`
	Name              string    `db:"name"`
	PhoneNumber       string    `db:"phone_number"`
	Craft             string    `db:"craft"`
	Region            string    `db:"region"`
	PreferredLanguage string    `db:"preferred_language"`
	Password          string    `db:"password"`
	ProfilePhotoURL   string    `db:"profile_photo_url"`
	IsVerified        bool      `db:"is_verified"`
	CreatedAt         time.Time `db:"created_at"`
	UpdatedAt         time.Time `db:"updated_at"`
}

type UserLoginData struct {
	ID       string
	Username string
	Email    string
}
