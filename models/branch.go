package models

import "gorm.io/gorm"

// Branch représente une agence du réseau.
type Branch struct {
	gorm.Model
	Code    string `json:"code" gorm:"uniqueIndex;not null"`
	Name    string `json:"name" gorm:"not null"`
	City    string `json:"city"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
	Status  string `json:"status" gorm:"default:active"` // active / fermee
}
