// internal/handlers/user_handler.go
//
// Administration des agents du réseau. Tout changement de rôle ou de statut
// invalide le cache de permissions de l'agent concerné.
package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/kouadiojose/hopefund-sub000/config"
	"github.com/kouadiojose/hopefund-sub000/internal/middleware"
	"github.com/kouadiojose/hopefund-sub000/models"
)

// UserResponse définit la structure des agents exposée par l'API : le hash du
// mot de passe ne doit jamais sortir.
type UserResponse struct {
	ID        uint      `json:"id"`
	Login     string    `json:"login"`
	Email     string    `json:"email"`
	FullName  string    `json:"fullName"`
	Phone     string    `json:"phone"`
	Status    string    `json:"status"`
	BranchID  *uint     `json:"branchId"`
	Roles     []string  `json:"roles"`
	CreatedAt time.Time `json:"createdAt"`
}

func toUserResponse(user *models.User) UserResponse {
	var roleNames []string
	for _, role := range user.Roles {
		roleNames = append(roleNames, role.Name)
	}
	return UserResponse{
		ID:        user.ID,
		Login:     user.Login,
		Email:     user.Email,
		FullName:  user.FullName,
		Phone:     user.Phone,
		Status:    user.Status,
		BranchID:  user.BranchID,
		Roles:     roleNames,
		CreatedAt: user.CreatedAt,
	}
}

// ListUsersHandler retourne la liste paginée des agents avec leurs rôles.
func ListUsersHandler(c *gin.Context) {
	var users []models.User

	query := config.DB.Preload("Roles").Order("id asc")
	if branchID := c.Query("branch_id"); branchID != "" {
		query = query.Where("branch_id = ?", branchID)
	}

	// Liste complète sans pagination pour les listes déroulantes.
	if c.Query("all") == "true" {
		if err := query.Find(&users).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Impossible de charger les agents"})
			return
		}
		responseData := make([]UserResponse, 0, len(users))
		for i := range users {
			responseData = append(responseData, toUserResponse(&users[i]))
		}
		c.JSON(http.StatusOK, gin.H{"data": responseData})
		return
	}

	var totalRows int64
	config.DB.Model(&models.User{}).Count(&totalRows)
	if err := query.Scopes(Paginate(c)).Find(&users).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Impossible de charger les agents"})
		return
	}

	responseData := make([]UserResponse, 0, len(users))
	for i := range users {
		responseData = append(responseData, toUserResponse(&users[i]))
	}
	c.JSON(http.StatusOK, CreatePaginatedResponse(c, responseData, totalRows))
}

// GetUserHandler retourne un agent par identifiant.
func GetUserHandler(c *gin.Context) {
	var user models.User
	if err := config.DB.Preload("Roles").First(&user, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Agent introuvable"})
		return
	}
	c.JSON(http.StatusOK, toUserResponse(&user))
}

// CreateUserInput porte la création d'un agent depuis l'administration.
type CreateUserInput struct {
	Login    string `json:"login" binding:"required"`
	FullName string `json:"fullName" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Phone    string `json:"phone"`
	BranchID *uint  `json:"branchId"`
	RoleIDs  []uint `json:"roleIds"`
}

// CreateUserHandler crée un agent et lui rattache ses rôles.
func CreateUserHandler(c *gin.Context) {
	var input CreateUserInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides : " + err.Error()})
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Impossible de hacher le mot de passe"})
		return
	}

	user := models.User{
		Login:        input.Login,
		FullName:     input.FullName,
		Email:        input.Email,
		Phone:        input.Phone,
		BranchID:     input.BranchID,
		PasswordHash: string(hashedPassword),
		Status:       "actif",
	}

	err = config.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		if len(input.RoleIDs) > 0 {
			var roles []models.Role
			if err := tx.Where("id IN ?", input.RoleIDs).Find(&roles).Error; err != nil {
				return err
			}
			if err := tx.Model(&user).Association("Roles").Replace(roles); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Impossible de créer l'agent : " + err.Error()})
		return
	}

	config.DB.Preload("Roles").First(&user, user.ID)
	c.JSON(http.StatusCreated, toUserResponse(&user))
}

// UpdateUserInput porte la mise à jour d'un agent.
type UpdateUserInput struct {
	FullName string `json:"fullName" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Phone    string `json:"phone"`
	Status   string `json:"status" binding:"required"`
	BranchID *uint  `json:"branchId"`
	RoleIDs  []uint `json:"roleIds"`
	Password string `json:"password"` // optionnel : changement de mot de passe
}

// UpdateUserHandler met à jour un agent et remplace ses rôles.
func UpdateUserHandler(c *gin.Context) {
	var user models.User
	if err := config.DB.First(&user, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Agent introuvable"})
		return
	}

	var input UpdateUserInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides : " + err.Error()})
		return
	}

	user.FullName = input.FullName
	user.Email = input.Email
	user.Phone = input.Phone
	user.Status = input.Status
	user.BranchID = input.BranchID

	if input.Password != "" {
		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Impossible de hacher le mot de passe"})
			return
		}
		user.PasswordHash = string(hashedPassword)
	}

	err := config.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&user).Error; err != nil {
			return err
		}
		var roles []models.Role
		if len(input.RoleIDs) > 0 {
			if err := tx.Where("id IN ?", input.RoleIDs).Find(&roles).Error; err != nil {
				return err
			}
		}
		return tx.Model(&user).Association("Roles").Replace(roles)
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Impossible de mettre à jour l'agent : " + err.Error()})
		return
	}

	// Les droits ont pu changer : le prochain appel repart de la base.
	middleware.InvalidateUserCache(user.ID)

	config.DB.Preload("Roles").First(&user, user.ID)
	c.JSON(http.StatusOK, toUserResponse(&user))
}

// DeleteUserHandler suspend un agent (suppression logique).
func DeleteUserHandler(c *gin.Context) {
	var user models.User
	if err := config.DB.First(&user, c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Agent introuvable"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur base de données"})
		return
	}

	if err := config.DB.Delete(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Impossible de supprimer l'agent"})
		return
	}

	middleware.InvalidateUserCache(user.ID)
	c.JSON(http.StatusOK, gin.H{"message": "Agent supprimé"})
}
