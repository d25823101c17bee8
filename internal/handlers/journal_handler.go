// internal/handlers/journal_handler.go
//
// Consultation du journal comptable. Les écritures sont immuables : aucune
// route de modification ni de suppression n'existe, une erreur se corrige par
// une écriture d'extourne.
package handlers

import (
	"errors"
	"fmt"
	"math"
	"net/http"

	"github.com/divan/num2words"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/kouadiojose/hopefund-sub000/config"
	"github.com/kouadiojose/hopefund-sub000/models"
)

// ListJournalHandler retourne le journal paginé, écritures récentes d'abord.
func ListJournalHandler(c *gin.Context) {
	var entries []models.AccountingEntry
	var totalRows int64

	query := config.DB.Model(&models.AccountingEntry{}).Preload("Lines").Order("date desc, id desc")
	if operation := c.Query("operation"); operation != "" {
		query = query.Where("operation = ?", operation)
	}
	if branchID := c.Query("branch_id"); branchID != "" {
		query = query.Where("branch_id = ?", branchID)
	}
	if from := c.Query("from"); from != "" {
		query = query.Where("date >= ?", from)
	}
	if to := c.Query("to"); to != "" {
		query = query.Where("date <= ?", to)
	}

	if err := query.Count(&totalRows).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Impossible de compter les écritures"})
		return
	}
	if err := query.Scopes(Paginate(c)).Find(&entries).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Impossible de charger le journal"})
		return
	}

	c.JSON(http.StatusOK, CreatePaginatedResponse(c, entries, totalRows))
}

// GetJournalEntryHandler retourne une écriture et ses lignes par référence.
func GetJournalEntryHandler(c *gin.Context) {
	var entry models.AccountingEntry
	if err := config.DB.Preload("Lines").
		Where("reference = ?", c.Param("reference")).First(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Écriture introuvable"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors du chargement de l'écriture"})
		return
	}
	c.JSON(http.StatusOK, entry)
}

// GetReceiptHandler produit le reçu d'une écriture : référence, ventilation
// et montant en toutes lettres pour impression au guichet.
func GetReceiptHandler(c *gin.Context) {
	var entry models.AccountingEntry
	if err := config.DB.Preload("Lines").
		Where("reference = ?", c.Param("reference")).First(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Écriture introuvable"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors du chargement de l'écriture"})
		return
	}

	var total float64
	for _, line := range entry.Lines {
		if line.Direction == models.Debit {
			total += line.Amount
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"reference":    entry.Reference,
		"label":        entry.Label,
		"operation":    entry.Operation,
		"date":         entry.Date,
		"currency":     entry.Currency,
		"total":        total,
		"totalInWords": amountToWords(total, entry.Currency),
		"lines":        entry.Lines,
	})
}

// amountToWords écrit un montant en toutes lettres pour le reçu.
func amountToWords(amount float64, currency string) string {
	units := int(amount)
	cents := int(math.Round((amount - float64(units)) * 100))
	unitWords := num2words.Convert(units)
	if cents == 0 {
		return fmt.Sprintf("%s %s", unitWords, currency)
	}
	return fmt.Sprintf("%s %s %02d", unitWords, currency, cents)
}
