package models

import (
	"time"
)

type Task struct {
	ID          uint       `json:"id" gorm:"primaryKey;autoIncrement"`
	Title       string     `json:"title" gorm:"not null"`
	Description string     `json:"description"`
	Status      string     `json:"status" gorm:"not null;default:'pending'"`
	Priority    string     `json:"priority" gorm:"not null;default:'normal'"`
	AssignedTo  *uint      `json:"assigned_to"`
	AssignedBy  *uint      `json:"assigned_by"`
	DueDate     *time.Time `json:"due_date"`

	// Deleted tasks stay in the table; only the flag flips.
	IsDeleted  bool      `json:"is_deleted" gorm:"default:false"`
	ModifiedBy *uint     `json:"modified_by"`
	CreatedAt  time.Time `json:"created_at"`
	ModifiedAt time.Time `json:"modified_at" gorm:"autoUpdateTime"`
}
