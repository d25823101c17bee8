package finance

// Niveaux de risque affichés sur les fiches crédit et les tableaux de bord.
// La classification est la même partout où un "niveau de risque" apparaît.
const (
	RiskNone     = "aucun"
	RiskLow      = "faible"
	RiskMedium   = "moyen"
	RiskHigh     = "eleve"
	RiskCritical = "critique"
)

// RiskLevel classe un retard selon son ancienneté en jours.
func RiskLevel(daysOverdue int) string {
	switch {
	case daysOverdue > 90:
		return RiskCritical
	case daysOverdue > 60:
		return RiskHigh
	case daysOverdue > 30:
		return RiskMedium
	case daysOverdue > 0:
		return RiskLow
	default:
		return RiskNone
	}
}
