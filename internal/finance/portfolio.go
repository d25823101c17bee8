// hopefund/internal/finance/portfolio.go
//
// Agrégation portefeuille : la même analyse de retard, répétée crédit par
// crédit puis cumulée dans des tranches d'ancienneté.
package finance

import "time"

// LoanSnapshot est la vue minimale d'un crédit actif pour l'agrégation.
type LoanSnapshot struct {
	LoanID           uint
	Principal        float64
	AnnualRate       float64
	TermMonths       int
	DisbursementDate *time.Time
	Payments         []PaymentRecord
}

// AgingBucket cumule les crédits en retard d'une tranche d'ancienneté.
type AgingBucket struct {
	Label         string  `json:"label"`
	Count         int     `json:"count"`
	OverdueAmount float64 `json:"overdueAmount"`
}

// PortfolioSummary est la photographie du portefeuille pour le tableau de bord.
type PortfolioSummary struct {
	ActiveLoans      int           `json:"activeLoans"`
	OverdueLoans     int           `json:"overdueLoans"`
	TotalOutstanding float64       `json:"totalOutstanding"` // capital restant attendu
	OverdueCapital   float64       `json:"overdueCapital"`
	OverdueTotal     float64       `json:"overdueTotal"`
	PAR              float64       `json:"par"` // Portfolio at Risk : capital en retard / encours
	Buckets          []AgingBucket `json:"buckets"`
}

// AggregatePortfolio rapproche chaque crédit actif de son échéancier théorique
// et cumule les retards dans les tranches 1-30 / 31-60 / 61-90 / 90+ jours.
func AggregatePortfolio(loans []LoanSnapshot, now time.Time) PortfolioSummary {
	summary := PortfolioSummary{
		Buckets: []AgingBucket{
			{Label: "1-30"},
			{Label: "31-60"},
			{Label: "61-90"},
			{Label: "90+"},
		},
	}

	for _, loan := range loans {
		if loan.DisbursementDate == nil {
			continue
		}
		s := AnalyzeLoanStatus(loan.Principal, loan.AnnualRate, loan.TermMonths, loan.DisbursementDate, loan.Payments, now)
		summary.ActiveLoans++
		summary.TotalOutstanding += max(0, loan.Principal-s.PaidCapital)

		if !s.IsOverdue {
			continue
		}
		summary.OverdueLoans++
		summary.OverdueCapital += s.OverdueCapital
		summary.OverdueTotal += s.OverdueTotal

		b := bucketIndex(s.DaysOverdue)
		summary.Buckets[b].Count++
		summary.Buckets[b].OverdueAmount += s.OverdueTotal
	}

	if summary.TotalOutstanding > 0 {
		summary.PAR = summary.OverdueCapital / summary.TotalOutstanding
	}

	return summary
}

func bucketIndex(daysOverdue int) int {
	switch {
	case daysOverdue > 90:
		return 3
	case daysOverdue > 60:
		return 2
	case daysOverdue > 30:
		return 1
	default:
		return 0
	}
}
