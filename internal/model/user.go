// Package model defines the data structures used throughout the application.
package model

import "time"

// User represents a registered user account.
//
// Identity comes from Yandex OAuth, so the stable external identifier is
// the Yandex user ID (a string). Our own primary key is an integer assigned
// by the database. The UNIQUE constraint on yandex_id in the DB ensures one
// Yandex account maps to exactly one app account.
//
// YandexID is tagged `json:"-"`: API responses surface id, email, username
// and the two flags, never the external identity id.
type User struct {
	ID          int64     `json:"id"          db:"id"`
	YandexID    string    `json:"-"           db:"yandex_id"`
	Email       string    `json:"email"       db:"email"`
	Username    string    `json:"username"    db:"username"`
	IsActive    bool      `json:"isActive"    db:"is_active"`
	IsSuperuser bool      `json:"isSuperuser" db:"is_superuser"`
	CreatedAt   time.Time `json:"createdAt"   db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt"   db:"updated_at"`
}
