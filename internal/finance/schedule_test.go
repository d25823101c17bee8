package finance

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestGenerateSchedule_ParametresInvalides(t *testing.T) {
	start := date(2024, time.January, 15)

	tests := []struct {
		name       string
		principal  float64
		rate       float64
		termMonths int
	}{
		{"principal nul", 0, 18, 12},
		{"principal negatif", -500000, 18, 12},
		{"duree nulle", 1200000, 18, 0},
		{"duree negative", 1200000, 18, -3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			schedule := GenerateSchedule(tt.principal, tt.rate, tt.termMonths, start)
			assert.Empty(t, schedule)
			assert.NotNil(t, schedule, "un échéancier vide reste un état affichable")
		})
	}
}

func TestGenerateSchedule_CapitalConstantInteretsDegressifs(t *testing.T) {
	// Exemple de référence : 1 200 000 à 18 % sur 12 mois à partir du 15/01/2024.
	schedule := GenerateSchedule(1200000, 18, 12, date(2024, time.January, 15))
	require.Len(t, schedule, 12)

	first := schedule[0]
	assert.Equal(t, 1, first.Number)
	assert.Equal(t, date(2024, time.February, 15), first.DueDate)
	assert.Equal(t, 100000.0, first.Principal)
	assert.Equal(t, 18000.0, first.Interest) // round(1 200 000 × 0,015)

	last := schedule[11]
	assert.Equal(t, 12, last.Number)
	assert.Equal(t, date(2025, time.January, 15), last.DueDate)
	assert.Equal(t, 100000.0, last.Principal)
	assert.Equal(t, 1500.0, last.Interest) // round(100 000 × 0,015)
}

func TestGenerateSchedule_DatesEcheances(t *testing.T) {
	start := date(2024, time.March, 10)
	schedule := GenerateSchedule(600000, 12, 6, start)
	require.Len(t, schedule, 6)

	for i, line := range schedule {
		assert.Equal(t, i+1, line.Number)
		assert.Equal(t, start.AddDate(0, i+1, 0), line.DueDate,
			"échéance %d : exactement %d mois après le départ", i+1, i+1)
	}
}

func TestGenerateSchedule_FinDeMois(t *testing.T) {
	// Un départ au 31 janvier doit retomber au dernier jour de février,
	// pas déborder sur mars.
	schedule := GenerateSchedule(300000, 12, 3, date(2024, time.January, 31))
	require.Len(t, schedule, 3)

	assert.Equal(t, date(2024, time.February, 29), schedule[0].DueDate) // 2024 bissextile
	assert.Equal(t, date(2024, time.March, 31), schedule[1].DueDate)
	assert.Equal(t, date(2024, time.April, 30), schedule[2].DueDate)
}

func TestGenerateSchedule_DeriveArrondiBornee(t *testing.T) {
	// La somme des parts de capital arrondies reste à moins de termMonths
	// unités du principal (pas d'ajustement de reliquat sur la dernière ligne).
	tests := []struct {
		principal  float64
		termMonths int
	}{
		{1000000, 7},
		{999999, 13},
		{250001, 36},
		{100000, 3},
	}

	for _, tt := range tests {
		schedule := GenerateSchedule(tt.principal, 15, tt.termMonths, date(2023, time.June, 1))
		require.Len(t, schedule, tt.termMonths)

		var totalPrincipal float64
		for _, line := range schedule {
			totalPrincipal += line.Principal
		}
		assert.LessOrEqual(t, math.Abs(totalPrincipal-tt.principal), float64(tt.termMonths),
			"principal=%v duree=%d", tt.principal, tt.termMonths)
	}
}

func TestGenerateSchedule_InteretsSurCapitalRestantNonArrondi(t *testing.T) {
	// Le capital restant est décrémenté de la part NON arrondie : sur un
	// principal non divisible, les intérêts de la période i se calculent sur
	// principal - (i-1)×(principal/duree), pas sur la somme des parts arrondies.
	principal := 1000000.0
	term := 7
	rate := 24.0
	monthlyRate := rate / 100 / 12

	schedule := GenerateSchedule(principal, rate, term, date(2024, time.May, 5))
	require.Len(t, schedule, term)

	for i, line := range schedule {
		remaining := principal - float64(i)*(principal/float64(term))
		assert.Equal(t, math.Round(remaining*monthlyRate), line.Interest, "échéance %d", i+1)
	}
}

func TestGenerateSchedule_Idempotence(t *testing.T) {
	start := date(2024, time.January, 15)
	a := GenerateSchedule(1200000, 18, 12, start)
	b := GenerateSchedule(1200000, 18, 12, start)
	assert.Equal(t, a, b)
}
