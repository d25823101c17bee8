package models

import (
	"time"

	"gorm.io/gorm"
)

// Statuts d'une caisse (tiroir-caisse d'un guichetier).
const (
	CaisseOpen   = "ouverte"
	CaisseClosed = "fermee"
)

// Types de mouvements entre le coffre principal et une caisse.
const (
	CaisseMovementFunding = "approvisionnement" // coffre -> caisse
	CaisseMovementReturn  = "reversement"       // caisse -> coffre
)

// Caisse représente le tiroir-caisse physique d'un guichetier,
// approvisionné depuis le coffre de l'agence et reversé en fin de journée.
type Caisse struct {
	gorm.Model
	Code     string     `json:"code" gorm:"uniqueIndex;not null"`
	BranchID uint       `json:"branchId" gorm:"index;not null"`
	Branch   *Branch    `json:"branch,omitempty"`
	UserID   *uint      `json:"userId" gorm:"index"` // guichetier titulaire
	User     *User      `json:"user,omitempty"`
	Balance  float64    `json:"balance" gorm:"type:numeric(14,2);default:0"`
	Currency string     `json:"currency" gorm:"default:XOF"`
	Status   string     `json:"status" gorm:"default:fermee"`
	OpenedAt *time.Time `json:"openedAt,omitempty"`
	ClosedAt *time.Time `json:"closedAt,omitempty"`
}

// CaisseMovement trace un approvisionnement ou un reversement de caisse.
type CaisseMovement struct {
	gorm.Model
	CaisseID  uint      `json:"caisseId" gorm:"index;not null"`
	Caisse    *Caisse   `json:"caisse,omitempty"`
	Type      string    `json:"type" gorm:"not null"`
	Amount    float64   `json:"amount" gorm:"type:numeric(14,2);not null"`
	Date      time.Time `json:"date" gorm:"not null"`
	UserID    uint      `json:"userId"` // agent ayant saisi le mouvement
	Reference string    `json:"reference"`
	Comment   string    `json:"comment"`
}
