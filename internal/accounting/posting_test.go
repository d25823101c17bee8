package accounting

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kouadiojose/hopefund-sub000/models"
)

func totals(legs []Leg) (debit, credit float64) {
	for _, leg := range legs {
		if leg.Direction == models.Debit {
			debit += leg.Amount
		} else {
			credit += leg.Amount
		}
	}
	return
}

func TestLegs_ToutesOperationsEquilibrees(t *testing.T) {
	tests := []struct {
		name string
		legs []Leg
	}{
		{"depot", DepositLegs(50000)},
		{"retrait", WithdrawalLegs(25000)},
		{"virement", TransferLegs(80000)},
		{"deboursement sans retenue", DisbursementLegs(1200000, 0, 0)},
		{"deboursement avec frais et assurance", DisbursementLegs(1200000, 24000, 12000)},
		{"remboursement capital seul", RepaymentLegs(100000, 0, 0)},
		{"remboursement complet", RepaymentLegs(100000, 18000, 2500)},
		{"approvisionnement caisse", CaisseFundingLegs(500000)},
		{"reversement caisse", CaisseReturnLegs(350000)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, CheckBalanced(tt.legs))
			d, c := totals(tt.legs)
			assert.Equal(t, d, c)
		})
	}
}

func TestDepositLegs_ImputationComptes(t *testing.T) {
	// Un dépôt de 50 000 : une seule écriture, débit caisse et crédit dépôts
	// membres, tous deux de 50 000.
	legs := DepositLegs(50000)
	require.Len(t, legs, 2)

	assert.Equal(t, models.Debit, legs[0].Direction)
	assert.Equal(t, models.ChartTill, legs[0].AccountCode)
	assert.Equal(t, 50000.0, legs[0].Amount)

	assert.Equal(t, models.Credit, legs[1].Direction)
	assert.Equal(t, models.ChartMemberDeposits, legs[1].AccountCode)
	assert.Equal(t, 50000.0, legs[1].Amount)
}

func TestWithdrawalLegs_InverseDuDepot(t *testing.T) {
	dep := DepositLegs(25000)
	ret := WithdrawalLegs(25000)
	require.Len(t, ret, 2)

	assert.Equal(t, dep[0].AccountCode, ret[1].AccountCode)
	assert.Equal(t, dep[1].AccountCode, ret[0].AccountCode)
	assert.Equal(t, models.Debit, ret[0].Direction)
	assert.Equal(t, models.Credit, ret[1].Direction)
}

func TestDisbursementLegs_RetenueFraisEtAssurance(t *testing.T) {
	legs := DisbursementLegs(1200000, 24000, 12000)
	require.Len(t, legs, 4)

	// L'encours est débité du montant accordé ; le membre ne reçoit que le net.
	assert.Equal(t, models.ChartLoansOutstanding, legs[0].AccountCode)
	assert.Equal(t, 1200000.0, legs[0].Amount)
	assert.Equal(t, models.ChartMemberDeposits, legs[1].AccountCode)
	assert.Equal(t, 1164000.0, legs[1].Amount)
	assert.Equal(t, models.ChartFeeIncome, legs[2].AccountCode)
	assert.Equal(t, 24000.0, legs[2].Amount)
	assert.Equal(t, models.ChartInsurancePayable, legs[3].AccountCode)
	assert.Equal(t, 12000.0, legs[3].Amount)
}

func TestRepaymentLegs_Ventilation(t *testing.T) {
	legs := RepaymentLegs(100000, 18000, 0)
	require.Len(t, legs, 3)

	assert.Equal(t, models.ChartTill, legs[0].AccountCode)
	assert.Equal(t, 118000.0, legs[0].Amount)
	assert.Equal(t, models.ChartLoansOutstanding, legs[1].AccountCode)
	assert.Equal(t, 100000.0, legs[1].Amount)
	assert.Equal(t, models.ChartInterestIncome, legs[2].AccountCode)
	assert.Equal(t, 18000.0, legs[2].Amount)
}

func TestCheckBalanced_Rejets(t *testing.T) {
	tests := []struct {
		name string
		legs []Leg
	}{
		{"aucune ligne", nil},
		{"ligne unique", []Leg{{Direction: models.Debit, AccountCode: models.ChartTill, Amount: 100}}},
		{"totaux inegaux", []Leg{
			{Direction: models.Debit, AccountCode: models.ChartTill, Amount: 100},
			{Direction: models.Credit, AccountCode: models.ChartMemberDeposits, Amount: 90},
		}},
		{"montant negatif", []Leg{
			{Direction: models.Debit, AccountCode: models.ChartTill, Amount: -100},
			{Direction: models.Credit, AccountCode: models.ChartMemberDeposits, Amount: -100},
		}},
		{"sens inconnu", []Leg{
			{Direction: "solde", AccountCode: models.ChartTill, Amount: 100},
			{Direction: models.Credit, AccountCode: models.ChartMemberDeposits, Amount: 100},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckBalanced(tt.legs)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrUnbalanced)
		})
	}
}
