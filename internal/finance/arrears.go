// hopefund/internal/finance/arrears.go
//
// Analyse des retards : rapprochement de l'échéancier théorique avec les
// remboursements réellement encaissés.
package finance

import "time"

// PaymentRecord est la vue minimale d'un remboursement dont l'analyseur a
// besoin. Les remboursements annulés (extournes) sont exclus des cumuls.
type PaymentRecord struct {
	Date      time.Time
	Principal float64
	Interest  float64
	Penalty   float64
	Reversed  bool
}

// ArrearsSummary est la situation d'un crédit à une date donnée.
type ArrearsSummary struct {
	IsOverdue        bool       `json:"isOverdue"`
	DaysOverdue      int        `json:"daysOverdue"`
	ExpectedPayments int        `json:"expectedPayments"` // échéances arrivées à terme
	ActualPayments   int        `json:"actualPayments"`   // remboursements non annulés
	ExpectedCapital  float64    `json:"expectedCapital"`
	ExpectedInterest float64    `json:"expectedInterest"`
	PaidCapital      float64    `json:"paidCapital"`
	PaidInterest     float64    `json:"paidInterest"`
	OverdueCapital   float64    `json:"overdueCapital"`
	OverdueInterest  float64    `json:"overdueInterest"`
	OverdueTotal     float64    `json:"overdueTotal"`
	NextDueDate      *time.Time `json:"nextDueDate,omitempty"`
	NextDueAmount    float64    `json:"nextDueAmount"`
}

// AnalyzeLoanStatus rapproche l'échéancier théorique (recalculé, jamais lu en
// base) des remboursements enregistrés et retourne la situation du crédit.
//
// Un crédit non déboursé ou sans paramètres financiers valides est traité
// comme "pas encore actif" : situation à zéro, pas d'erreur.
func AnalyzeLoanStatus(principal, annualRatePercent float64, termMonths int, disbursementDate *time.Time, payments []PaymentRecord, now time.Time) ArrearsSummary {
	var summary ArrearsSummary
	if disbursementDate == nil || principal <= 0 || termMonths <= 0 {
		return summary
	}

	schedule := GenerateSchedule(principal, annualRatePercent, termMonths, *disbursementDate)

	var pastDue []Installment
	for _, line := range schedule {
		if !line.DueDate.After(now) {
			pastDue = append(pastDue, line)
			summary.ExpectedCapital += line.Principal
			summary.ExpectedInterest += line.Interest
		} else if summary.NextDueDate == nil {
			due := line.DueDate
			summary.NextDueDate = &due
			summary.NextDueAmount = line.Total()
		}
	}
	summary.ExpectedPayments = len(pastDue)

	for _, p := range payments {
		if p.Reversed {
			continue
		}
		summary.ActualPayments++
		summary.PaidCapital += p.Principal
		summary.PaidInterest += p.Interest
	}

	summary.OverdueCapital = max(0, summary.ExpectedCapital-summary.PaidCapital)
	summary.OverdueInterest = max(0, summary.ExpectedInterest-summary.PaidInterest)
	summary.OverdueTotal = summary.OverdueCapital + summary.OverdueInterest
	summary.IsOverdue = summary.OverdueTotal > 0

	if summary.OverdueCapital > 0 {
		summary.DaysOverdue = daysOverdue(pastDue, summary.PaidCapital, now)
	}

	return summary
}

// daysOverdue retourne l'âge du retard, mesuré depuis la PLUS ANCIENNE
// échéance dont le capital n'est pas couvert par les paiements : on parcourt
// les échéances échues dans l'ordre chronologique en épuisant le capital payé
// échéance par échéance.
func daysOverdue(pastDue []Installment, paidCapital float64, now time.Time) int {
	remaining := paidCapital
	for _, line := range pastDue {
		if remaining < line.Principal {
			return int(now.Sub(line.DueDate).Hours() / 24)
		}
		remaining -= line.Principal
	}
	return 0
}
