package models

import (
	"time"

	"gorm.io/gorm"
)

// Statuts d'une échéance.
const (
	InstallmentPending   = "en_attente"
	InstallmentPaid      = "payee"
	InstallmentCancelled = "annulee"
)

// Installment représente une échéance de l'échéancier d'un crédit.
// Les champs "remaining" sont initialisés au montant dû à la génération
// puis décrémentés au fil des remboursements réels.
type Installment struct {
	gorm.Model
	LoanID             uint       `json:"loanId" gorm:"index;not null"`
	Number             int        `json:"number" gorm:"not null"`
	DueDate            time.Time  `json:"dueDate" gorm:"not null"`
	PrincipalDue       float64    `json:"principalDue" gorm:"type:numeric(14,2)"`
	InterestDue        float64    `json:"interestDue" gorm:"type:numeric(14,2)"`
	PrincipalRemaining float64    `json:"principalRemaining" gorm:"type:numeric(14,2)"`
	InterestRemaining  float64    `json:"interestRemaining" gorm:"type:numeric(14,2)"`
	AmountPaid         float64    `json:"amountPaid" gorm:"type:numeric(14,2);default:0"`
	PaidDate           *time.Time `json:"paidDate,omitempty"`
	Status             string     `json:"status" gorm:"default:en_attente"`
}
