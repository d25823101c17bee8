package models

import "gorm.io/gorm"

// LoanProduct décrit un produit de crédit et ses paramètres tarifaires.
// FeeFormula et InsuranceFormula sont des expressions évaluées au déboursement
// avec les variables "Montant" et "Duree" (ex : "Montant * 0.02").
type LoanProduct struct {
	gorm.Model
	Name             string  `json:"name" gorm:"unique;not null"`
	Description      string  `json:"description"`
	DefaultRate      float64 `json:"defaultRate"` // taux nominal annuel en %
	MinRate          float64 `json:"minRate"`
	MaxRate          float64 `json:"maxRate"`
	MinTermMonths    int     `json:"minTermMonths" gorm:"default:1"`
	MaxTermMonths    int     `json:"maxTermMonths" gorm:"default:36"`
	MinAmount        float64 `json:"minAmount"`
	MaxAmount        float64 `json:"maxAmount"`
	FeeFormula       string  `json:"feeFormula"`       // frais de dossier
	InsuranceFormula string  `json:"insuranceFormula"` // prime d'assurance
	Active           bool    `json:"active" gorm:"default:true"`
}
