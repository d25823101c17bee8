package models

import (
	"time"

	"gorm.io/gorm"
)

// User représente un agent du réseau (guichetier, agent de crédit, gestionnaire...).
type User struct {
	gorm.Model
	Login        string     `json:"login" gorm:"unique;not null"`
	PasswordHash string     `json:"-" gorm:"not null"`
	FullName     string     `json:"fullName"`
	Email        string     `json:"email" gorm:"unique"`
	Phone        string     `json:"phone"`
	Status       string     `json:"status" gorm:"default:actif"` // actif / suspendu
	BranchID     *uint      `json:"branchId" gorm:"index"`
	Branch       *Branch    `json:"branch,omitempty"`
	LastLoginAt  *time.Time `json:"lastLoginAt,omitempty"`
	Roles        []Role     `json:"roles" gorm:"many2many:user_roles;"`
}
