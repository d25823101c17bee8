// internal/handlers/role_handler.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/kouadiojose/hopefund-sub000/config"
	"github.com/kouadiojose/hopefund-sub000/internal/middleware"
	"github.com/kouadiojose/hopefund-sub000/models"
)

// ListRolesHandler retourne tous les rôles avec leurs droits.
func ListRolesHandler(c *gin.Context) {
	var roles []models.Role
	if err := config.DB.Preload("Permissions").Order("id asc").Find(&roles).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Impossible de charger les rôles"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": roles})
}

// GetRoleHandler retourne un rôle par identifiant.
func GetRoleHandler(c *gin.Context) {
	var role models.Role
	if err := config.DB.Preload("Permissions").First(&role, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Rôle introuvable"})
		return
	}
	c.JSON(http.StatusOK, role)
}

// RoleInput porte la création ou la mise à jour d'un rôle.
type RoleInput struct {
	Name          string `json:"name" binding:"required"`
	Description   string `json:"description"`
	PermissionIDs []uint `json:"permissionIds"`
}

// CreateRoleHandler crée un rôle et lui rattache ses droits.
func CreateRoleHandler(c *gin.Context) {
	var input RoleInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides : " + err.Error()})
		return
	}

	role := models.Role{Name: input.Name, Description: input.Description}
	err := config.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&role).Error; err != nil {
			return err
		}
		return replaceRolePermissions(tx, &role, input.PermissionIDs)
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Impossible de créer le rôle : " + err.Error()})
		return
	}

	config.DB.Preload("Permissions").First(&role, role.ID)
	c.JSON(http.StatusCreated, role)
}

// UpdateRoleHandler met à jour un rôle et remplace ses droits, puis invalide
// le cache de permissions de tous les agents qui portent ce rôle.
func UpdateRoleHandler(c *gin.Context) {
	var role models.Role
	if err := config.DB.First(&role, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Rôle introuvable"})
		return
	}

	var input RoleInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides : " + err.Error()})
		return
	}

	role.Name = input.Name
	role.Description = input.Description

	err := config.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&role).Error; err != nil {
			return err
		}
		return replaceRolePermissions(tx, &role, input.PermissionIDs)
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Impossible de mettre à jour le rôle : " + err.Error()})
		return
	}

	invalidateRoleHolders(role.ID)

	config.DB.Preload("Permissions").First(&role, role.ID)
	c.JSON(http.StatusOK, role)
}

// DeleteRoleHandler supprime un rôle s'il n'est plus porté par aucun agent.
func DeleteRoleHandler(c *gin.Context) {
	var role models.Role
	if err := config.DB.First(&role, c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Rôle introuvable"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur base de données"})
		return
	}

	var holders int64
	config.DB.Table("user_roles").Where("role_id = ?", role.ID).Count(&holders)
	if holders > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Le rôle est encore porté par des agents"})
		return
	}

	if err := config.DB.Select("Permissions").Delete(&role).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Impossible de supprimer le rôle"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Rôle supprimé"})
}

func replaceRolePermissions(tx *gorm.DB, role *models.Role, permissionIDs []uint) error {
	var permissions []models.Permission
	if len(permissionIDs) > 0 {
		if err := tx.Where("id IN ?", permissionIDs).Find(&permissions).Error; err != nil {
			return err
		}
	}
	return tx.Model(role).Association("Permissions").Replace(permissions)
}

// invalidateRoleHolders purge le cache de permissions des agents d'un rôle.
func invalidateRoleHolders(roleID uint) {
	var userIDs []uint
	config.DB.Table("user_roles").Where("role_id = ?", roleID).Pluck("user_id", &userIDs)
	for _, userID := range userIDs {
		middleware.InvalidateUserCache(userID)
	}
}
