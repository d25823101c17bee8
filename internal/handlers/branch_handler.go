// internal/handlers/branch_handler.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/kouadiojose/hopefund-sub000/config"
	"github.com/kouadiojose/hopefund-sub000/models"
)

// ListBranchesHandler retourne toutes les agences du réseau.
func ListBranchesHandler(c *gin.Context) {
	var branches []models.Branch
	if err := config.DB.Order("code asc").Find(&branches).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Impossible de charger les agences"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": branches})
}

// BranchInput porte la création ou la mise à jour d'une agence.
type BranchInput struct {
	Code    string `json:"code" binding:"required"`
	Name    string `json:"name" binding:"required"`
	City    string `json:"city"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
	Status  string `json:"status"`
}

// CreateBranchHandler crée une agence.
func CreateBranchHandler(c *gin.Context) {
	var input BranchInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides : " + err.Error()})
		return
	}

	branch := models.Branch{
		Code:    input.Code,
		Name:    input.Name,
		City:    input.City,
		Address: input.Address,
		Phone:   input.Phone,
	}
	if input.Status != "" {
		branch.Status = input.Status
	}

	if err := config.DB.Create(&branch).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Impossible de créer l'agence : " + err.Error()})
		return
	}
	c.JSON(http.StatusCreated, branch)
}

// GetBranchHandler retourne une agence par identifiant.
func GetBranchHandler(c *gin.Context) {
	var branch models.Branch
	if err := config.DB.First(&branch, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Agence introuvable"})
		return
	}
	c.JSON(http.StatusOK, branch)
}

// UpdateBranchHandler met à jour une agence.
func UpdateBranchHandler(c *gin.Context) {
	var branch models.Branch
	if err := config.DB.First(&branch, c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Agence introuvable"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur base de données"})
		return
	}

	var input BranchInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides : " + err.Error()})
		return
	}

	branch.Code = input.Code
	branch.Name = input.Name
	branch.City = input.City
	branch.Address = input.Address
	branch.Phone = input.Phone
	if input.Status != "" {
		branch.Status = input.Status
	}

	if err := config.DB.Save(&branch).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Impossible de mettre à jour l'agence"})
		return
	}
	c.JSON(http.StatusOK, branch)
}
