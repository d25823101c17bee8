package finance

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Crédit de référence : 1 200 000 à 18 % sur 12 mois, déboursé le 15/01/2024.
func refLoan() (float64, float64, int, *time.Time) {
	d := date(2024, time.January, 15)
	return 1200000, 18, 12, &d
}

func TestAnalyzeLoanStatus_CreditNonActif(t *testing.T) {
	now := date(2024, time.June, 20)

	t.Run("sans date de déboursement", func(t *testing.T) {
		s := AnalyzeLoanStatus(1200000, 18, 12, nil, nil, now)
		assert.False(t, s.IsOverdue)
		assert.Zero(t, s.DaysOverdue)
		assert.Zero(t, s.OverdueTotal)
		assert.Nil(t, s.NextDueDate)
	})

	t.Run("principal invalide", func(t *testing.T) {
		d := date(2024, time.January, 15)
		s := AnalyzeLoanStatus(0, 18, 12, &d, nil, now)
		assert.Equal(t, ArrearsSummary{}, s)
	})

	t.Run("durée invalide", func(t *testing.T) {
		d := date(2024, time.January, 15)
		s := AnalyzeLoanStatus(1200000, 18, 0, &d, nil, now)
		assert.Equal(t, ArrearsSummary{}, s)
	})
}

func TestAnalyzeLoanStatus_AucunPaiement(t *testing.T) {
	principal, rate, term, disb := refLoan()
	now := date(2024, time.June, 20)

	s := AnalyzeLoanStatus(principal, rate, term, disb, nil, now)

	// Au 20 juin, cinq échéances sont arrivées à terme (15/02 au 15/06 inclus).
	assert.Equal(t, 5, s.ExpectedPayments)
	assert.Equal(t, 0, s.ActualPayments)
	assert.Equal(t, 500000.0, s.ExpectedCapital)
	assert.Equal(t, 75000.0, s.ExpectedInterest) // 18000+16500+15000+13500+12000
	assert.Equal(t, 500000.0, s.OverdueCapital)
	assert.Equal(t, 75000.0, s.OverdueInterest)
	assert.Equal(t, s.ExpectedCapital+s.ExpectedInterest, s.OverdueTotal)
	assert.True(t, s.IsOverdue)

	// L'âge du retard est ancré sur la plus ancienne échéance impayée (15/02).
	assert.Equal(t, 126, s.DaysOverdue)

	// Prochaine échéance : la première ligne future.
	require.NotNil(t, s.NextDueDate)
	assert.Equal(t, date(2024, time.July, 15), *s.NextDueDate)
	assert.Equal(t, 110500.0, s.NextDueAmount) // 100 000 + round(700 000 × 0,015)
}

func TestAnalyzeLoanStatus_PaiementsComplets(t *testing.T) {
	principal, rate, term, disb := refLoan()
	now := date(2024, time.June, 20)

	// Un paiement couvrant exactement chaque échéance échue.
	schedule := GenerateSchedule(principal, rate, term, *disb)
	var payments []PaymentRecord
	for _, line := range schedule[:5] {
		payments = append(payments, PaymentRecord{
			Date:      line.DueDate,
			Principal: line.Principal,
			Interest:  line.Interest,
		})
	}

	s := AnalyzeLoanStatus(principal, rate, term, disb, payments, now)
	assert.False(t, s.IsOverdue)
	assert.Zero(t, s.OverdueTotal)
	assert.Zero(t, s.DaysOverdue)
	assert.Equal(t, 5, s.ActualPayments)
	assert.Equal(t, s.ExpectedCapital, s.PaidCapital)
}

func TestAnalyzeLoanStatus_PaiementPartiel(t *testing.T) {
	principal, rate, term, disb := refLoan()
	now := date(2024, time.June, 20)

	// Deux échéances couvertes en capital : le retard est ancré sur la
	// troisième (15/04), pas sur la plus récente.
	payments := []PaymentRecord{
		{Date: date(2024, time.February, 15), Principal: 100000, Interest: 18000},
		{Date: date(2024, time.March, 15), Principal: 100000, Interest: 16500},
	}

	s := AnalyzeLoanStatus(principal, rate, term, disb, payments, now)
	assert.True(t, s.IsOverdue)
	assert.Equal(t, 300000.0, s.OverdueCapital)
	assert.Equal(t, int(now.Sub(date(2024, time.April, 15)).Hours()/24), s.DaysOverdue)
}

func TestAnalyzeLoanStatus_ExtournesExclues(t *testing.T) {
	principal, rate, term, disb := refLoan()
	now := date(2024, time.March, 20)

	payments := []PaymentRecord{
		{Date: date(2024, time.February, 15), Principal: 100000, Interest: 18000},
		{Date: date(2024, time.February, 16), Principal: 100000, Interest: 16500, Reversed: true},
	}

	s := AnalyzeLoanStatus(principal, rate, term, disb, payments, now)
	assert.Equal(t, 1, s.ActualPayments)
	assert.Equal(t, 100000.0, s.PaidCapital)
	assert.Equal(t, 100000.0, s.OverdueCapital) // l'échéance du 15/03 reste due
}

func TestAnalyzeLoanStatus_TropPercuSansRetard(t *testing.T) {
	principal, rate, term, disb := refLoan()
	now := date(2024, time.February, 20)

	// Un remboursement anticipé supérieur au dû ne produit pas de retard négatif.
	payments := []PaymentRecord{
		{Date: date(2024, time.February, 10), Principal: 400000, Interest: 40000},
	}

	s := AnalyzeLoanStatus(principal, rate, term, disb, payments, now)
	assert.False(t, s.IsOverdue)
	assert.Zero(t, s.OverdueCapital)
	assert.Zero(t, s.OverdueInterest)
}

func TestRiskLevel(t *testing.T) {
	tests := []struct {
		days int
		want string
	}{
		{0, RiskNone},
		{1, RiskLow},
		{30, RiskLow},
		{31, RiskMedium},
		{60, RiskMedium},
		{61, RiskHigh},
		{90, RiskHigh},
		{91, RiskCritical},
		{365, RiskCritical},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, RiskLevel(tt.days), "jours=%d", tt.days)
	}
}

func TestAggregatePortfolio(t *testing.T) {
	now := date(2024, time.June, 20)
	disb1 := date(2024, time.January, 15)
	disb2 := date(2024, time.May, 10)
	disb3 := date(2023, time.January, 1)

	loans := []LoanSnapshot{
		// Cinq échéances impayées : retard de 126 jours -> tranche 90+.
		{LoanID: 1, Principal: 1200000, AnnualRate: 18, TermMonths: 12, DisbursementDate: &disb1},
		// Première échéance du 10/06 impayée : 10 jours -> tranche 1-30.
		{LoanID: 2, Principal: 600000, AnnualRate: 12, TermMonths: 6, DisbursementDate: &disb2},
		// Crédit intégralement à jour.
		{LoanID: 3, Principal: 240000, AnnualRate: 12, TermMonths: 12, DisbursementDate: &disb3,
			Payments: fullRepayments(240000, 12, 12, disb3)},
		// Crédit non déboursé : ignoré.
		{LoanID: 4, Principal: 500000, AnnualRate: 18, TermMonths: 12},
	}

	summary := AggregatePortfolio(loans, now)

	assert.Equal(t, 3, summary.ActiveLoans)
	assert.Equal(t, 2, summary.OverdueLoans)
	assert.Equal(t, 1, summary.Buckets[0].Count, "tranche 1-30")
	assert.Zero(t, summary.Buckets[1].Count, "tranche 31-60")
	assert.Zero(t, summary.Buckets[2].Count, "tranche 61-90")
	assert.Equal(t, 1, summary.Buckets[3].Count, "tranche 90+")

	// PAR = capital en retard / encours attendu.
	require.Positive(t, summary.TotalOutstanding)
	assert.InDelta(t, summary.OverdueCapital/summary.TotalOutstanding, summary.PAR, 1e-9)
}

// fullRepayments fabrique des remboursements couvrant chaque échéance.
func fullRepayments(principal float64, rate float64, term int, disb time.Time) []PaymentRecord {
	var payments []PaymentRecord
	for _, line := range GenerateSchedule(principal, rate, term, disb) {
		payments = append(payments, PaymentRecord{
			Date:      line.DueDate,
			Principal: line.Principal,
			Interest:  line.Interest,
		})
	}
	return payments
}
