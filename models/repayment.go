package models

import (
	"time"

	"gorm.io/gorm"
)

// Repayment représente un remboursement réellement encaissé sur un crédit.
// L'ensemble des remboursements non annulés fait foi pour le calcul du
// "payé" — indépendamment de l'existence d'échéances persistées.
type Repayment struct {
	gorm.Model
	LoanID    uint      `json:"loanId" gorm:"index;not null"`
	Date      time.Time `json:"date" gorm:"not null"`
	Principal float64   `json:"principal" gorm:"type:numeric(14,2);default:0"`
	Interest  float64   `json:"interest" gorm:"type:numeric(14,2);default:0"`
	Penalty   float64   `json:"penalty" gorm:"type:numeric(14,2);default:0"`
	Reversed  bool      `json:"reversed" gorm:"default:false"` // extourne
	CaisseID  *uint     `json:"caisseId"`
	UserID    uint      `json:"userId"` // agent ayant encaissé
	Reference string    `json:"reference"`
	Comment   string    `json:"comment"`
}

// Total retourne le montant total encaissé (capital + intérêts + pénalités).
func (r *Repayment) Total() float64 {
	return r.Principal + r.Interest + r.Penalty
}
