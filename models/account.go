package models

import (
	"gorm.io/gorm"
)

// Statuts possibles d'un compte d'épargne.
const (
	AccountActive   = "actif"
	AccountInactive = "inactif"
	AccountClosed   = "cloture"
)

// Account représente un compte d'épargne à vue d'un membre.
// Les montants sont en unités entières de monnaie (pas de centimes dans ce domaine).
type Account struct {
	gorm.Model
	Number    string  `json:"number" gorm:"uniqueIndex;not null"`
	ClientID  uint    `json:"clientId" gorm:"index;not null"`
	Client    *Client `json:"client,omitempty"`
	BranchID  uint    `json:"branchId" gorm:"index;not null"`
	Branch    *Branch `json:"branch,omitempty"`
	Balance   float64 `json:"balance" gorm:"type:numeric(14,2);default:0"`
	Blocked   float64 `json:"blocked" gorm:"type:numeric(14,2);default:0"`   // épargne nantie (garantie de crédit)
	Minimum   float64 `json:"minimum" gorm:"type:numeric(14,2);default:0"`   // solde minimum obligatoire
	Overdraft float64 `json:"overdraft" gorm:"type:numeric(14,2);default:0"` // découvert autorisé
	Currency  string  `json:"currency" gorm:"default:XOF"`
	Status    string  `json:"status" gorm:"default:actif"`
}

// Available retourne le disponible : solde - bloqué - minimum + découvert autorisé.
func (a *Account) Available() float64 {
	return a.Balance - a.Blocked - a.Minimum + a.Overdraft
}
