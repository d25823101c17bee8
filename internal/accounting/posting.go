// hopefund/internal/accounting/posting.go
//
// Aide à la passation d'écritures en partie double : pour chaque type
// d'opération bancaire, construit un jeu de lignes équilibrées (total débit ==
// total crédit) imputées aux bons comptes du plan comptable, puis les
// enregistre dans la transaction GORM de l'appelant, aux côtés de la mutation
// de solde.
package accounting

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kouadiojose/hopefund-sub000/models"
)

// ErrUnbalanced est retournée quand un jeu de lignes n'est pas équilibré.
// L'équilibre est vérifié AVANT l'enregistrement, jamais constaté après coup.
var ErrUnbalanced = errors.New("écriture déséquilibrée")

// Leg est une ligne débit ou crédit en cours de construction.
type Leg struct {
	Direction   string
	AccountCode string
	Label       string
	Amount      float64
}

func debit(code string, amount float64) Leg {
	return Leg{Direction: models.Debit, AccountCode: code, Label: models.ChartAccountName[code], Amount: amount}
}

func credit(code string, amount float64) Leg {
	return Leg{Direction: models.Credit, AccountCode: code, Label: models.ChartAccountName[code], Amount: amount}
}

// DepositLegs : entrée d'espèces au guichet contre un dépôt membre.
func DepositLegs(amount float64) []Leg {
	return []Leg{
		debit(models.ChartTill, amount),
		credit(models.ChartMemberDeposits, amount),
	}
}

// WithdrawalLegs : sortie d'espèces, symétrique du dépôt.
func WithdrawalLegs(amount float64) []Leg {
	return []Leg{
		debit(models.ChartMemberDeposits, amount),
		credit(models.ChartTill, amount),
	}
}

// TransferLegs : virement interne entre deux comptes de dépôt membres.
// Le compte de dépôts est débité côté origine et crédité côté destination ;
// l'écriture matérialise le mouvement même si le compte collectif est le même.
func TransferLegs(amount float64) []Leg {
	return []Leg{
		debit(models.ChartMemberDeposits, amount),
		credit(models.ChartMemberDeposits, amount),
	}
}

// DisbursementLegs : déblocage d'un crédit sur le compte de l'emprunteur,
// avec retenue éventuelle des frais de dossier et de la prime d'assurance.
// Le membre reçoit amount - fees - insurance sur son compte.
func DisbursementLegs(amount, fees, insurance float64) []Leg {
	legs := []Leg{
		debit(models.ChartLoansOutstanding, amount),
		credit(models.ChartMemberDeposits, amount-fees-insurance),
	}
	if fees > 0 {
		legs = append(legs, credit(models.ChartFeeIncome, fees))
	}
	if insurance > 0 {
		legs = append(legs, credit(models.ChartInsurancePayable, insurance))
	}
	return legs
}

// RepaymentLegs : encaissement d'un remboursement au guichet, ventilé entre
// capital récupéré, intérêts et pénalités.
func RepaymentLegs(principal, interest, penalty float64) []Leg {
	legs := []Leg{
		debit(models.ChartTill, principal+interest+penalty),
		credit(models.ChartLoansOutstanding, principal),
	}
	if interest > 0 {
		legs = append(legs, credit(models.ChartInterestIncome, interest))
	}
	if penalty > 0 {
		legs = append(legs, credit(models.ChartFeeIncome, penalty))
	}
	return legs
}

// CaisseFundingLegs : approvisionnement d'une caisse guichet depuis le coffre.
func CaisseFundingLegs(amount float64) []Leg {
	return []Leg{
		debit(models.ChartTill, amount),
		credit(models.ChartVault, amount),
	}
}

// CaisseReturnLegs : reversement d'une caisse guichet vers le coffre.
func CaisseReturnLegs(amount float64) []Leg {
	return []Leg{
		debit(models.ChartVault, amount),
		credit(models.ChartTill, amount),
	}
}

// CheckBalanced vérifie l'invariant de la partie double sur un jeu de lignes.
func CheckBalanced(legs []Leg) error {
	if len(legs) < 2 {
		return fmt.Errorf("%w : au moins deux lignes requises", ErrUnbalanced)
	}
	var totalDebit, totalCredit float64
	for _, leg := range legs {
		if leg.Amount < 0 {
			return fmt.Errorf("%w : montant négatif sur %s", ErrUnbalanced, leg.AccountCode)
		}
		switch leg.Direction {
		case models.Debit:
			totalDebit += leg.Amount
		case models.Credit:
			totalCredit += leg.Amount
		default:
			return fmt.Errorf("%w : sens inconnu %q", ErrUnbalanced, leg.Direction)
		}
	}
	if totalDebit != totalCredit {
		return fmt.Errorf("%w : débit %.2f / crédit %.2f", ErrUnbalanced, totalDebit, totalCredit)
	}
	return nil
}

// Post enregistre une écriture et ses lignes dans la transaction de
// l'appelant. L'équilibre est contrôlé avant toute insertion ; en cas d'échec
// d'insertion, c'est le Rollback de la transaction englobante qui annule
// aussi la mutation de solde (aucune logique de compensation ici).
func Post(tx *gorm.DB, operation, label string, date time.Time, userID uint, branchID, accountID *uint, legs []Leg) (*models.AccountingEntry, error) {
	if err := CheckBalanced(legs); err != nil {
		return nil, err
	}

	entry := models.AccountingEntry{
		Reference: uuid.New().String(),
		Label:     label,
		Date:      date,
		Currency:  "XOF",
		Operation: operation,
		BranchID:  branchID,
		AccountID: accountID,
		UserID:    userID,
	}
	for _, leg := range legs {
		entry.Lines = append(entry.Lines, models.AccountingLine{
			Direction:   leg.Direction,
			AccountCode: leg.AccountCode,
			Label:       leg.Label,
			Amount:      leg.Amount,
			Currency:    entry.Currency,
		})
	}

	if err := tx.Create(&entry).Error; err != nil {
		return nil, fmt.Errorf("enregistrement de l'écriture : %w", err)
	}
	return &entry, nil
}
