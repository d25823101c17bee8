// internal/handlers/rapport_handler.go
//
// Rapports de portefeuille : synthèse PAR, liste des retards et export Excel
// pour le comité de crédit.
package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"

	"github.com/kouadiojose/hopefund-sub000/config"
	"github.com/kouadiojose/hopefund-sub000/internal/finance"
	"github.com/kouadiojose/hopefund-sub000/models"
)

// DelinquentLoanItem est une ligne du rapport des retards.
type DelinquentLoanItem struct {
	LoanID     uint                   `json:"loanId"`
	Number     string                 `json:"number"`
	ClientName string                 `json:"clientName"`
	BranchID   uint                   `json:"branchId"`
	Principal  float64                `json:"principal"`
	RiskLevel  string                 `json:"riskLevel"`
	Situation  finance.ArrearsSummary `json:"situation"`
}

// reportDate lit la date d'arrêté du rapport (paramètre "at", défaut : jour).
func reportDate(c *gin.Context) (time.Time, bool) {
	if at := c.Query("at"); at != "" {
		parsed, err := time.Parse("2006-01-02", at)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Format de date invalide. Utilisez YYYY-MM-DD."})
			return time.Time{}, false
		}
		return parsed, true
	}
	return time.Now(), true
}

// activeLoans charge les crédits en cours de remboursement, remboursements
// inclus, pour l'agence demandée ou tout le réseau.
func activeLoans(c *gin.Context) ([]models.Loan, error) {
	query := config.DB.Preload("Repayments").Preload("Client").
		Where("status IN ?", []string{models.LoanActive, models.LoanDelinquent})
	if branchID := c.Query("branch_id"); branchID != "" {
		query = query.Where("branch_id = ?", branchID)
	}

	var loans []models.Loan
	err := query.Find(&loans).Error
	return loans, err
}

// PortfolioReportHandler retourne la synthèse du portefeuille : encours,
// impayés, PAR et répartition par tranches d'ancienneté de retard.
func PortfolioReportHandler(c *gin.Context) {
	now, ok := reportDate(c)
	if !ok {
		return
	}

	loans, err := activeLoans(c)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Impossible de charger le portefeuille"})
		return
	}

	snapshots := make([]finance.LoanSnapshot, 0, len(loans))
	for _, loan := range loans {
		snapshots = append(snapshots, finance.LoanSnapshot{
			LoanID:           loan.ID,
			Principal:        loan.Principal,
			AnnualRate:       loan.AnnualRate,
			TermMonths:       loan.TermMonths,
			DisbursementDate: loan.DisbursementDate,
			Payments:         paymentRecords(loan.Repayments),
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"asOf":    now.Format("2006-01-02"),
		"summary": finance.AggregatePortfolio(snapshots, now),
	})
}

// delinquentItems analyse les crédits actifs et retient ceux en retard.
func delinquentItems(loans []models.Loan, now time.Time) []DelinquentLoanItem {
	items := make([]DelinquentLoanItem, 0)
	for _, loan := range loans {
		summary := finance.AnalyzeLoanStatus(loan.Principal, loan.AnnualRate, loan.TermMonths,
			loan.DisbursementDate, paymentRecords(loan.Repayments), now)
		if !summary.IsOverdue {
			continue
		}

		clientName := ""
		if loan.Client != nil {
			clientName = loan.Client.FullName()
		}
		items = append(items, DelinquentLoanItem{
			LoanID:     loan.ID,
			Number:     loan.Number,
			ClientName: clientName,
			BranchID:   loan.BranchID,
			Principal:  loan.Principal,
			RiskLevel:  finance.RiskLevel(summary.DaysOverdue),
			Situation:  summary,
		})
	}
	return items
}

// DelinquencyReportHandler retourne la liste des crédits en retard avec leur
// situation détaillée et leur niveau de risque.
func DelinquencyReportHandler(c *gin.Context) {
	now, ok := reportDate(c)
	if !ok {
		return
	}

	loans, err := activeLoans(c)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Impossible de charger le portefeuille"})
		return
	}

	items := delinquentItems(loans, now)
	c.JSON(http.StatusOK, gin.H{
		"asOf":  now.Format("2006-01-02"),
		"count": len(items),
		"data":  items,
	})
}

// ExportDelinquencyHandler exporte le rapport des retards en Excel pour le
// comité de crédit.
func ExportDelinquencyHandler(c *gin.Context) {
	now, ok := reportDate(c)
	if !ok {
		return
	}

	loans, err := activeLoans(c)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Impossible de charger le portefeuille"})
		return
	}
	items := delinquentItems(loans, now)

	f := excelize.NewFile()
	sheetName := "Retards"
	index, _ := f.NewSheet(sheetName)
	f.SetActiveSheet(index)

	headers := []string{"Numéro", "Membre", "Agence", "Capital", "Jours de retard", "Capital impayé", "Intérêts impayés", "Total impayé", "Prochaine échéance", "Niveau de risque"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, header)
	}

	for i, item := range items {
		row := i + 2
		f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), item.Number)
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), item.ClientName)
		f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), item.BranchID)
		f.SetCellValue(sheetName, fmt.Sprintf("D%d", row), item.Principal)
		f.SetCellValue(sheetName, fmt.Sprintf("E%d", row), item.Situation.DaysOverdue)
		f.SetCellValue(sheetName, fmt.Sprintf("F%d", row), item.Situation.OverdueCapital)
		f.SetCellValue(sheetName, fmt.Sprintf("G%d", row), item.Situation.OverdueInterest)
		f.SetCellValue(sheetName, fmt.Sprintf("H%d", row), item.Situation.OverdueTotal)
		if item.Situation.NextDueDate != nil {
			f.SetCellValue(sheetName, fmt.Sprintf("I%d", row), item.Situation.NextDueDate.Format("02.01.2006"))
		}
		f.SetCellValue(sheetName, fmt.Sprintf("J%d", row), item.RiskLevel)
	}

	fileName := fmt.Sprintf("retards_%s.xlsx", now.Format("20060102"))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", "attachment; filename="+fileName)
	if err := f.Write(c.Writer); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Impossible d'écrire le fichier Excel"})
	}
}
