// internal/handlers/client_handler.go
package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/kouadiojose/hopefund-sub000/config"
	"github.com/kouadiojose/hopefund-sub000/models"
)

// ListClientsHandler retourne la liste paginée des membres, avec recherche.
func ListClientsHandler(c *gin.Context) {
	var clients []models.Client
	var totalRows int64

	query := config.DB.Model(&models.Client{}).Preload("Branch").Order("id asc")

	if search := c.Query("search"); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where(`LOWER(last_name) LIKE ? OR LOWER(first_name) LIKE ? OR LOWER(code) LIKE ? OR phone LIKE ?`,
			pattern, pattern, pattern, pattern)
	}
	if branchID := c.Query("branch_id"); branchID != "" {
		query = query.Where("branch_id = ?", branchID)
	}
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	if err := query.Count(&totalRows).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Impossible de compter les membres"})
		return
	}
	if err := query.Scopes(Paginate(c)).Find(&clients).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Impossible de charger les membres"})
		return
	}

	c.JSON(http.StatusOK, CreatePaginatedResponse(c, clients, totalRows))
}

// CreateClientInput porte les données d'adhésion d'un nouveau membre.
type CreateClientInput struct {
	Code      string `json:"code" binding:"required"`
	LastName  string `json:"lastName" binding:"required"`
	FirstName string `json:"firstName" binding:"required"`
	BirthDate string `json:"birthDate"`
	Gender    string `json:"gender"`
	IDNumber  string `json:"idNumber"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
	Activity  string `json:"activity"`
	BranchID  uint   `json:"branchId" binding:"required"`
}

// CreateClientHandler enregistre l'adhésion d'un membre.
func CreateClientHandler(c *gin.Context) {
	var input CreateClientInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides : " + err.Error()})
		return
	}

	client := models.Client{
		Code:      input.Code,
		LastName:  input.LastName,
		FirstName: input.FirstName,
		Gender:    input.Gender,
		IDNumber:  input.IDNumber,
		Phone:     input.Phone,
		Address:   input.Address,
		Activity:  input.Activity,
		Status:    "actif",
		BranchID:  input.BranchID,
	}

	if input.BirthDate != "" {
		birth, err := time.Parse("2006-01-02", input.BirthDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Format de date invalide. Utilisez YYYY-MM-DD."})
			return
		}
		client.BirthDate = &birth
	}
	now := time.Now()
	client.MemberSince = &now

	if err := config.DB.Create(&client).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Impossible d'enregistrer le membre"})
		return
	}

	c.JSON(http.StatusCreated, client)
}

// GetClientHandler retourne la fiche d'un membre.
func GetClientHandler(c *gin.Context) {
	id := c.Param("id")
	var client models.Client
	if err := config.DB.Preload("Branch").First(&client, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Membre introuvable"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors du chargement du membre"})
		return
	}
	c.JSON(http.StatusOK, client)
}

// UpdateClientHandler met à jour la fiche d'un membre.
func UpdateClientHandler(c *gin.Context) {
	id := c.Param("id")
	var client models.Client
	if err := config.DB.First(&client, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Membre introuvable"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur base de données"})
		return
	}

	var input models.Client
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := config.DB.Model(&client).Updates(input).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Impossible de mettre à jour le membre"})
		return
	}

	c.JSON(http.StatusOK, client)
}

// DeleteClientHandler radie un membre (suppression logique).
func DeleteClientHandler(c *gin.Context) {
	id := c.Param("id")

	// Un membre portant des comptes ou des crédits actifs ne peut pas être radié.
	var accounts int64
	config.DB.Model(&models.Account{}).Where("client_id = ? AND status <> ?", id, models.AccountClosed).Count(&accounts)
	if accounts > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Le membre possède des comptes non clôturés"})
		return
	}
	var loans int64
	config.DB.Model(&models.Loan{}).
		Where("client_id = ? AND status IN ?", id, []string{models.LoanActive, models.LoanDelinquent, models.LoanApproved}).
		Count(&loans)
	if loans > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Le membre possède des crédits en cours"})
		return
	}

	if err := config.DB.Delete(&models.Client{}, id).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Impossible de radier le membre"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Membre radié"})
}
