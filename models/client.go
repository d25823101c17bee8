package models

import (
	"time"

	"gorm.io/gorm"
)

// Client représente un membre de la coopérative.
type Client struct {
	gorm.Model
	Code        string     `json:"code" gorm:"uniqueIndex;not null"`
	LastName    string     `json:"lastName" gorm:"not null"`
	FirstName   string     `json:"firstName" gorm:"not null"`
	BirthDate   *time.Time `json:"birthDate,omitempty"`
	Gender      string     `json:"gender"`
	IDNumber    string     `json:"idNumber"` // numéro de pièce d'identité
	Phone       string     `json:"phone"`
	Address     string     `json:"address"`
	Activity    string     `json:"activity"` // activité génératrice de revenus
	Status      string     `json:"status" gorm:"default:actif"` // actif / inactif
	BranchID    uint       `json:"branchId" gorm:"index;not null"`
	Branch      *Branch    `json:"branch,omitempty"`
	MemberSince *time.Time `json:"memberSince,omitempty"`
}

// FullName retourne le nom complet du membre pour les listes et les reçus.
func (c *Client) FullName() string {
	return c.LastName + " " + c.FirstName
}
