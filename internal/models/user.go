// Package models contains data structures for the application's domain models.
package models

import (
	"time"
)

// User represents an account on the platform.
type User struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Username   string    `gorm:"uniqueIndex;not null" json:"username"`
	Email      string    `gorm:"uniqueIndex;not null" json:"-"`
	Password   string    `gorm:"not null" json:"-"`
	Provider   string    `json:"provider,omitempty"`
	ProviderID string    `json:"-"`
	Enabled    bool      `gorm:"not null;default:true" json:"enabled"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
