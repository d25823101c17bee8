package models

import (
	"time"

	"gorm.io/gorm"
)

// Cycle de vie d'un crédit. Les transitions sont uniquement logicielles :
// un crédit n'est jamais supprimé physiquement.
const (
	LoanRequested   = "demande"
	LoanUnderReview = "en_examen"
	LoanApproved    = "approuve"
	LoanActive      = "actif" // déboursé, en cours de remboursement
	LoanDelinquent  = "en_retard"
	LoanSettled     = "solde"
	LoanRejected    = "rejete"
	LoanCancelled   = "annule"
)

// Loan représente un crédit accordé à un membre.
type Loan struct {
	gorm.Model
	Number           string       `json:"number" gorm:"uniqueIndex;not null"`
	ClientID         uint         `json:"clientId" gorm:"index;not null"`
	Client           *Client      `json:"client,omitempty"`
	BranchID         uint         `json:"branchId" gorm:"index;not null"`
	Branch           *Branch      `json:"branch,omitempty"`
	ProductID        *uint        `json:"productId"`
	Product          *LoanProduct `json:"product,omitempty"`
	AccountID        *uint        `json:"accountId"` // compte de déboursement
	Account          *Account     `json:"account,omitempty"`
	Principal        float64      `json:"principal" gorm:"type:numeric(14,2);not null"`
	AnnualRate       float64      `json:"annualRate"` // taux nominal annuel en %
	TermMonths       int          `json:"termMonths"`
	Purpose          string       `json:"purpose"`
	Status           string       `json:"status" gorm:"default:demande;index"`
	RequestDate      time.Time    `json:"requestDate"`
	ApprovalDate     *time.Time   `json:"approvalDate,omitempty"`
	DisbursementDate *time.Time   `json:"disbursementDate,omitempty"` // nul tant que les fonds ne sont pas débloqués
	SettledDate      *time.Time   `json:"settledDate,omitempty"`
	Fees             float64      `json:"fees" gorm:"type:numeric(14,2);default:0"`
	Insurance        float64      `json:"insurance" gorm:"type:numeric(14,2);default:0"`
	Comment          string       `json:"comment"`

	Installments []Installment `json:"installments,omitempty"`
	Repayments   []Repayment   `json:"repayments,omitempty"`
}
