// internal/handlers/loan_product_handler.go
//
// Catalogue des produits de crédit. Les formules tarifaires sont validées à
// l'enregistrement : une formule qui ne compile pas ou qui ne s'évalue pas sur
// un dossier témoin est refusée.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/kouadiojose/hopefund-sub000/config"
	"github.com/kouadiojose/hopefund-sub000/models"
)

// ListLoanProductsHandler retourne le catalogue des produits de crédit.
func ListLoanProductsHandler(c *gin.Context) {
	var products []models.LoanProduct
	query := config.DB.Order("name asc")
	if c.Query("active") == "true" {
		query = query.Where("active = true")
	}
	if err := query.Find(&products).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Impossible de charger les produits"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": products})
}

// LoanProductInput porte la création ou la mise à jour d'un produit.
type LoanProductInput struct {
	Name             string  `json:"name" binding:"required"`
	Description      string  `json:"description"`
	DefaultRate      float64 `json:"defaultRate" binding:"min=0"`
	MinRate          float64 `json:"minRate" binding:"min=0"`
	MaxRate          float64 `json:"maxRate" binding:"min=0"`
	MinTermMonths    int     `json:"minTermMonths" binding:"min=0"`
	MaxTermMonths    int     `json:"maxTermMonths" binding:"min=0"`
	MinAmount        float64 `json:"minAmount" binding:"min=0"`
	MaxAmount        float64 `json:"maxAmount" binding:"min=0"`
	FeeFormula       string  `json:"feeFormula"`
	InsuranceFormula string  `json:"insuranceFormula"`
	Active           *bool   `json:"active"`
}

// validateFormulas évalue les formules sur un dossier témoin pour rejeter les
// expressions invalides avant qu'un déboursement ne les rencontre.
func validateFormulas(input *LoanProductInput) error {
	if _, err := evaluateFormula(input.FeeFormula, 100000, 12); err != nil {
		return errors.New("formule de frais invalide : " + err.Error())
	}
	if _, err := evaluateFormula(input.InsuranceFormula, 100000, 12); err != nil {
		return errors.New("formule d'assurance invalide : " + err.Error())
	}
	return nil
}

func applyProductInput(product *models.LoanProduct, input *LoanProductInput) {
	product.Name = input.Name
	product.Description = input.Description
	product.DefaultRate = input.DefaultRate
	product.MinRate = input.MinRate
	product.MaxRate = input.MaxRate
	product.MinTermMonths = input.MinTermMonths
	product.MaxTermMonths = input.MaxTermMonths
	product.MinAmount = input.MinAmount
	product.MaxAmount = input.MaxAmount
	product.FeeFormula = input.FeeFormula
	product.InsuranceFormula = input.InsuranceFormula
	if input.Active != nil {
		product.Active = *input.Active
	}
}

// CreateLoanProductHandler ajoute un produit au catalogue.
func CreateLoanProductHandler(c *gin.Context) {
	var input LoanProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides : " + err.Error()})
		return
	}
	if err := validateFormulas(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	product := models.LoanProduct{Active: true}
	applyProductInput(&product, &input)

	if err := config.DB.Create(&product).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Impossible de créer le produit : " + err.Error()})
		return
	}
	c.JSON(http.StatusCreated, product)
}

// GetLoanProductHandler retourne un produit par identifiant.
func GetLoanProductHandler(c *gin.Context) {
	var product models.LoanProduct
	if err := config.DB.First(&product, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Produit introuvable"})
		return
	}
	c.JSON(http.StatusOK, product)
}

// UpdateLoanProductHandler met à jour un produit. Les dossiers déjà déboursés
// conservent les conditions figées au déboursement.
func UpdateLoanProductHandler(c *gin.Context) {
	var product models.LoanProduct
	if err := config.DB.First(&product, c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Produit introuvable"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur base de données"})
		return
	}

	var input LoanProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides : " + err.Error()})
		return
	}
	if err := validateFormulas(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	applyProductInput(&product, &input)

	if err := config.DB.Save(&product).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Impossible de mettre à jour le produit"})
		return
	}
	c.JSON(http.StatusOK, product)
}
