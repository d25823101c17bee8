package models

import (
	"time"

	"gorm.io/gorm"
)

// Sens d'une ligne d'écriture.
const (
	Debit  = "debit"
	Credit = "credit"
)

// Plan comptable minimal (inspiré du référentiel SYSCOA des SFD).
const (
	ChartVault            = "570" // coffre principal de l'agence
	ChartTill             = "571" // caisses guichet
	ChartMemberDeposits   = "251" // dépôts à vue des membres
	ChartLoansOutstanding = "231" // crédits sains en cours
	ChartInterestIncome   = "712" // produits d'intérêts sur crédits
	ChartFeeIncome        = "718" // commissions et frais de dossier
	ChartInsurancePayable = "432" // primes d'assurance à reverser
)

// ChartAccountName donne le libellé d'un compte du plan comptable.
var ChartAccountName = map[string]string{
	ChartVault:            "Coffre",
	ChartTill:             "Caisse guichet",
	ChartMemberDeposits:   "Dépôts à vue des membres",
	ChartLoansOutstanding: "Crédits en cours",
	ChartInterestIncome:   "Produits d'intérêts",
	ChartFeeIncome:        "Commissions et frais",
	ChartInsurancePayable: "Assurance à reverser",
}

// AccountingEntry représente une écriture comptable : un groupe de lignes
// équilibrées (total débit == total crédit, garanti à l'enregistrement).
type AccountingEntry struct {
	gorm.Model
	Reference string           `json:"reference" gorm:"uniqueIndex;not null"`
	Label     string           `json:"label" gorm:"not null"`
	Date      time.Time        `json:"date" gorm:"not null;index"`
	Currency  string           `json:"currency" gorm:"default:XOF"`
	Operation string           `json:"operation"` // depot, retrait, virement, deboursement, ...
	BranchID  *uint            `json:"branchId" gorm:"index"`
	AccountID *uint            `json:"accountId" gorm:"index"` // compte membre concerné, si l'opération en vise un
	UserID    uint             `json:"userId"`
	Lines     []AccountingLine `json:"lines"`
}

// AccountingLine représente une ligne (patte) débit ou crédit d'une écriture.
type AccountingLine struct {
	gorm.Model
	AccountingEntryID uint    `json:"entryId" gorm:"index;not null"`
	Direction         string  `json:"direction" gorm:"not null"` // debit / credit
	AccountCode       string  `json:"accountCode" gorm:"not null;index"`
	Label             string  `json:"label"`
	Amount            float64 `json:"amount" gorm:"type:numeric(14,2);not null"`
	Currency          string  `json:"currency" gorm:"default:XOF"`
}
