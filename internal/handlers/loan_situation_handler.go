// internal/handlers/loan_situation_handler.go
//
// Échéancier effectif et analyse de situation d'un crédit. L'échéancier
// persisté fait foi dès qu'il existe ; sinon on sert l'échéancier théorique
// recalculé depuis les paramètres du dossier.
package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/kouadiojose/hopefund-sub000/config"
	"github.com/kouadiojose/hopefund-sub000/internal/finance"
	"github.com/kouadiojose/hopefund-sub000/models"
)

// GetScheduleHandler retourne l'échéancier effectif d'un crédit.
func GetScheduleHandler(c *gin.Context) {
	var loan models.Loan
	if err := config.DB.First(&loan, c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Crédit introuvable"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors du chargement du crédit"})
		return
	}

	var installments []models.Installment
	if err := config.DB.Where("loan_id = ?", loan.ID).
		Order("number asc").Find(&installments).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Impossible de charger l'échéancier"})
		return
	}

	if len(installments) > 0 {
		c.JSON(http.StatusOK, gin.H{
			"theoretical": false,
			"data":        installments,
		})
		return
	}

	// Pas encore d'échéancier persisté : projection théorique à partir de la
	// date de déboursement, ou de la date de demande pour une simulation.
	startDate := loan.RequestDate
	if loan.DisbursementDate != nil {
		startDate = *loan.DisbursementDate
	}
	schedule := finance.GenerateSchedule(loan.Principal, loan.AnnualRate, loan.TermMonths, startDate)

	c.JSON(http.StatusOK, gin.H{
		"theoretical": true,
		"data":        schedule,
	})
}

// SimulateScheduleRequest porte les paramètres d'une simulation d'échéancier.
type SimulateScheduleRequest struct {
	Principal  float64 `json:"principal" binding:"required,gt=0"`
	AnnualRate float64 `json:"annualRate" binding:"min=0"`
	TermMonths int     `json:"termMonths" binding:"required,gt=0"`
	StartDate  string  `json:"startDate"`
}

// SimulateScheduleHandler calcule un échéancier sans dossier, pour le conseil
// au guichet avant une demande.
func SimulateScheduleHandler(c *gin.Context) {
	var req SimulateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides : " + err.Error()})
		return
	}

	startDate := time.Now()
	if req.StartDate != "" {
		parsed, err := time.Parse("2006-01-02", req.StartDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Format de date invalide. Utilisez YYYY-MM-DD."})
			return
		}
		startDate = parsed
	}

	schedule := finance.GenerateSchedule(req.Principal, req.AnnualRate, req.TermMonths, startDate)
	c.JSON(http.StatusOK, gin.H{"data": schedule})
}

// GetLoanStatusHandler retourne la situation d'un crédit : attendu, payé,
// impayés, jours de retard et niveau de risque à la date du jour (ou à la
// date passée en paramètre "at").
func GetLoanStatusHandler(c *gin.Context) {
	var loan models.Loan
	if err := config.DB.Preload("Repayments").First(&loan, c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Crédit introuvable"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors du chargement du crédit"})
		return
	}

	now := time.Now()
	if at := c.Query("at"); at != "" {
		parsed, err := time.Parse("2006-01-02", at)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Format de date invalide. Utilisez YYYY-MM-DD."})
			return
		}
		now = parsed
	}

	summary := finance.AnalyzeLoanStatus(loan.Principal, loan.AnnualRate, loan.TermMonths,
		loan.DisbursementDate, paymentRecords(loan.Repayments), now)

	c.JSON(http.StatusOK, gin.H{
		"loanId":    loan.ID,
		"number":    loan.Number,
		"status":    loan.Status,
		"situation": summary,
		"riskLevel": finance.RiskLevel(summary.DaysOverdue),
	})
}

// paymentRecords convertit les remboursements persistés vers le format de
// l'analyse de situation.
func paymentRecords(repayments []models.Repayment) []finance.PaymentRecord {
	records := make([]finance.PaymentRecord, 0, len(repayments))
	for _, r := range repayments {
		records = append(records, finance.PaymentRecord{
			Date:      r.Date,
			Principal: r.Principal,
			Interest:  r.Interest,
			Penalty:   r.Penalty,
			Reversed:  r.Reversed,
		})
	}
	return records
}
