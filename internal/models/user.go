package models

import (
	"time"
)

type User struct {
	ID           uint   `json:"id" gorm:"primaryKey;autoIncrement"`
	Username     string `json:"username" gorm:"uniqueIndex;not null"`
	Email        string `json:"email" gorm:"uniqueIndex;not null"`
	PasswordHash string `json:"-" gorm:"not null"`

	FullName    string     `json:"full_name"`
	DateOfBirth *time.Time `json:"date_of_birth"`
	PhoneNumber string     `json:"phone_number"`

	// Human-facing sequential identifier, distinct from the primary key.
	// Assigned as max existing + 1, starting at 10000.
	EmployeeID int `json:"employee_id" gorm:"uniqueIndex;not null"`

	UserRole int  `json:"user_role" gorm:"default:3"`
	IsActive bool `json:"is_active" gorm:"default:true"`

	CreatedAt  time.Time `json:"created_at"`
	ModifiedAt time.Time `json:"modified_at" gorm:"autoUpdateTime"`
}

// FirstEmployeeID is issued when no users exist yet.
const FirstEmployeeID = 10000
