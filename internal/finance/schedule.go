// hopefund/internal/finance/schedule.go
//
// Générateur d'échéancier à capital constant et intérêts dégressifs.
// Fonctions pures : aucune dépendance au stockage, résultat déterministe
// pour des paramètres identiques.
package finance

import (
	"math"
	"time"
)

// Installment représente une ligne théorique de l'échéancier.
type Installment struct {
	Number    int       `json:"number"`
	DueDate   time.Time `json:"dueDate"`
	Principal float64   `json:"principal"`
	Interest  float64   `json:"interest"`
}

// Total retourne la mensualité (capital + intérêts).
func (i Installment) Total() float64 {
	return i.Principal + i.Interest
}

// GenerateSchedule produit l'échéancier théorique d'un crédit :
// capital constant, intérêts dégressifs sur le capital restant dû.
//
// Les montants sont arrondis à l'unité monétaire entière ligne par ligne,
// mais le capital restant est décrémenté de la part NON arrondie pour ne pas
// cumuler l'erreur d'arrondi d'une période à l'autre. La dernière échéance ne
// reçoit pas d'ajustement du reliquat d'arrondi : la dérive résiduelle est
// bornée par le nombre d'échéances.
//
// Paramètres invalides (principal <= 0 ou termMonths <= 0) : retourne une
// liste vide, un crédit sans paramètres financiers est un état affichable.
func GenerateSchedule(principal, annualRatePercent float64, termMonths int, startDate time.Time) []Installment {
	if principal <= 0 || termMonths <= 0 {
		return []Installment{}
	}

	monthlyRate := annualRatePercent / 100 / 12
	principalShare := principal / float64(termMonths)

	schedule := make([]Installment, 0, termMonths)
	remaining := principal

	for i := 1; i <= termMonths; i++ {
		schedule = append(schedule, Installment{
			Number:    i,
			DueDate:   addMonths(startDate, i),
			Principal: math.Round(principalShare),
			Interest:  math.Round(remaining * monthlyRate),
		})
		remaining -= principalShare
	}

	return schedule
}

// addMonths avance une date de n mois calendaires en conservant le jour du
// mois quand il existe, sinon en le ramenant au dernier jour du mois cible
// (le 31 janvier + 1 mois donne le 28 ou 29 février, pas le 2 mars).
func addMonths(t time.Time, n int) time.Time {
	year, month, day := t.Date()
	first := time.Date(year, month+time.Month(n), 1, 0, 0, 0, 0, t.Location())
	if last := lastDayOfMonth(first); day > last {
		day = last
	}
	return time.Date(first.Year(), first.Month(), day, 0, 0, 0, 0, t.Location())
}

func lastDayOfMonth(t time.Time) int {
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, t.Location()).Day()
}
