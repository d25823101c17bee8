// internal/handlers/caisse_handler.go
//
// Gestion des caisses guichet : ouverture et fermeture de journée,
// approvisionnement depuis le coffre et reversement en fin de journée.
package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/kouadiojose/hopefund-sub000/config"
	"github.com/kouadiojose/hopefund-sub000/internal/accounting"
	"github.com/kouadiojose/hopefund-sub000/models"
)

// ListCaissesHandler retourne les caisses d'une agence.
func ListCaissesHandler(c *gin.Context) {
	var caisses []models.Caisse

	query := config.DB.Preload("User").Preload("Branch").Order("code asc")
	if branchID := c.Query("branch_id"); branchID != "" {
		query = query.Where("branch_id = ?", branchID)
	}
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	if err := query.Find(&caisses).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Impossible de charger les caisses"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": caisses})
}

// CreateCaisseInput porte la création d'une caisse guichet.
type CreateCaisseInput struct {
	Code     string `json:"code" binding:"required"`
	BranchID uint   `json:"branchId" binding:"required"`
	UserID   *uint  `json:"userId"`
}

// CreateCaisseHandler crée une caisse guichet, fermée et vide.
func CreateCaisseHandler(c *gin.Context) {
	var input CreateCaisseInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides : " + err.Error()})
		return
	}

	caisse := models.Caisse{
		Code:     input.Code,
		BranchID: input.BranchID,
		UserID:   input.UserID,
		Status:   models.CaisseClosed,
		Currency: "XOF",
	}
	if err := config.DB.Create(&caisse).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Impossible de créer la caisse"})
		return
	}
	c.JSON(http.StatusCreated, caisse)
}

// OpenCaisseHandler ouvre la journée d'une caisse.
func OpenCaisseHandler(c *gin.Context) {
	var caisse models.Caisse
	if err := config.DB.First(&caisse, c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Caisse introuvable"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur base de données"})
		return
	}

	if caisse.Status == models.CaisseOpen {
		c.JSON(http.StatusBadRequest, gin.H{"error": "La caisse est déjà ouverte"})
		return
	}

	now := time.Now()
	updates := map[string]interface{}{
		"status":    models.CaisseOpen,
		"opened_at": now,
		"closed_at": nil,
	}
	if err := config.DB.Model(&caisse).Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Impossible d'ouvrir la caisse"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Caisse ouverte"})
}

// CloseCaisseHandler ferme la journée d'une caisse. L'encaisse doit avoir été
// reversée au coffre avant la fermeture.
func CloseCaisseHandler(c *gin.Context) {
	var caisse models.Caisse
	if err := config.DB.First(&caisse, c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Caisse introuvable"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur base de données"})
		return
	}

	if caisse.Status != models.CaisseOpen {
		c.JSON(http.StatusBadRequest, gin.H{"error": "La caisse n'est pas ouverte"})
		return
	}
	if caisse.Balance != 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "L'encaisse doit être reversée au coffre avant la fermeture",
			"balance": caisse.Balance,
		})
		return
	}

	now := time.Now()
	if err := config.DB.Model(&caisse).Updates(map[string]interface{}{
		"status":    models.CaisseClosed,
		"closed_at": now,
	}).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Impossible de fermer la caisse"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Caisse fermée"})
}

// CaisseMovementRequest porte un approvisionnement ou un reversement.
type CaisseMovementRequest struct {
	Amount  float64 `json:"amount" binding:"required,gt=0"`
	Comment string  `json:"comment"`
}

// FundCaisseHandler approvisionne une caisse depuis le coffre de l'agence.
func FundCaisseHandler(c *gin.Context) {
	caisseMovement(c, models.CaisseMovementFunding)
}

// ReturnCaisseHandler reverse l'encaisse d'une caisse vers le coffre.
func ReturnCaisseHandler(c *gin.Context) {
	caisseMovement(c, models.CaisseMovementReturn)
}

// caisseMovement exécute le mouvement coffre/caisse dans une transaction,
// trace le mouvement puis passe l'écriture équilibrée correspondante.
func caisseMovement(c *gin.Context, movementType string) {
	var req CaisseMovementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides : " + err.Error()})
		return
	}

	var caisse models.Caisse
	tx := config.DB.Begin()
	if tx.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Impossible d'ouvrir la transaction"})
		return
	}

	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&caisse, c.Param("id")).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Caisse introuvable"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors de la recherche de la caisse"})
		return
	}

	if caisse.Status != models.CaisseOpen {
		tx.Rollback()
		c.JSON(http.StatusBadRequest, gin.H{"error": "La caisse n'est pas ouverte"})
		return
	}

	var expr clause.Expr
	switch movementType {
	case models.CaisseMovementFunding:
		expr = gorm.Expr("balance + ?", req.Amount)
	case models.CaisseMovementReturn:
		if caisse.Balance < req.Amount {
			tx.Rollback()
			c.JSON(http.StatusBadRequest, gin.H{"error": "Encaisse insuffisante pour ce reversement"})
			return
		}
		expr = gorm.Expr("balance - ?", req.Amount)
	}

	if err := tx.Model(&caisse).Update("balance", expr).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Impossible de mettre à jour la caisse"})
		return
	}

	movement := models.CaisseMovement{
		CaisseID:  caisse.ID,
		Type:      movementType,
		Amount:    req.Amount,
		Date:      time.Now(),
		UserID:    currentUserID(c),
		Reference: uuid.New().String(),
		Comment:   req.Comment,
	}
	if err := tx.Create(&movement).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Impossible d'enregistrer le mouvement"})
		return
	}

	if err := tx.Commit().Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Impossible de valider la transaction"})
		return
	}

	var legs []accounting.Leg
	var label string
	if movementType == models.CaisseMovementFunding {
		legs = accounting.CaisseFundingLegs(req.Amount)
		label = fmt.Sprintf("Approvisionnement caisse %s", caisse.Code)
	} else {
		legs = accounting.CaisseReturnLegs(req.Amount)
		label = fmt.Sprintf("Reversement caisse %s", caisse.Code)
	}
	entry := postEntry(c, movementType, label, &caisse.BranchID, legs)

	c.JSON(http.StatusOK, gin.H{
		"message":   "Mouvement de caisse enregistré",
		"movement":  movement,
		"reference": entryReference(entry),
	})
}

// ListCaisseMovementsHandler retourne l'historique des mouvements d'une caisse.
func ListCaisseMovementsHandler(c *gin.Context) {
	var movements []models.CaisseMovement
	var totalRows int64

	query := config.DB.Model(&models.CaisseMovement{}).
		Where("caisse_id = ?", c.Param("id")).
		Order("date DESC")

	if err := query.Count(&totalRows).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Impossible de compter les mouvements"})
		return
	}
	if err := query.Scopes(Paginate(c)).Find(&movements).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Impossible de charger les mouvements"})
		return
	}

	c.JSON(http.StatusOK, CreatePaginatedResponse(c, movements, totalRows))
}
