// internal/handlers/permission_handler.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kouadiojose/hopefund-sub000/config"
	"github.com/kouadiojose/hopefund-sub000/models"
)

// ListPermissionsHandler retourne le catalogue des droits, groupé par
// catégorie pour l'écran d'édition des rôles.
func ListPermissionsHandler(c *gin.Context) {
	var permissions []models.Permission
	if err := config.DB.Order("category asc, name asc").Find(&permissions).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Impossible de charger les droits"})
		return
	}

	grouped := make(map[string][]models.Permission)
	for _, permission := range permissions {
		grouped[permission.Category] = append(grouped[permission.Category], permission)
	}

	c.JSON(http.StatusOK, gin.H{"data": grouped})
}

// MyPermissionsHandler retourne les droits détaillés de l'agent connecté,
// rechargés depuis la base (et non depuis le cache) pour que l'écran de
// profil reflète immédiatement un changement de rôle.
func MyPermissionsHandler(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Non authentifié"})
		return
	}

	permissions, err := models.GetUserPermissions(userID.(uint))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Impossible de charger les droits"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": permissions})
}
