package models

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	ID           uint           `json:"id" gorm:"primaryKey"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `json:"deleted_at" gorm:"index"`
	Username     string         `json:"username" gorm:"not null"`
	Email        string         `json:"email" gorm:"uniqueIndex;not null"`
	RollNumber   string         `json:"roll_number" gorm:"uniqueIndex;not null"`
	Password     string         `json:"-" gorm:"not null"`
	IsAdmin      bool           `json:"is_admin" gorm:"default:false"`
	IsVerified   bool           `json:"is_verified" gorm:"default:false"`
	LastActivity *time.Time     `json:"last_activity"`
}
