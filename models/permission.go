// File: models/permission.go
package models

import "github.com/kouadiojose/hopefund-sub000/config"

// Permission représente un droit d'accès en base de données.
type Permission struct {
	ID          uint   `json:"id" gorm:"primaryKey"`
	Name        string `json:"name" gorm:"unique;not null"`
	Description string `json:"description"`
	Category    string `json:"category" gorm:"not null"` // Catégorie de regroupement (ex : "Crédits", "Caisse")
}

// GetUserPermissions récupère l'ensemble des droits d'un utilisateur via ses rôles.
func GetUserPermissions(userID uint) ([]Permission, error) {
	var user User
	db := config.DB

	if err := db.Preload("Roles.Permissions").First(&user, userID).Error; err != nil {
		return nil, err
	}

	// Une carte pour dédoublonner les droits hérités de plusieurs rôles.
	permissionMap := make(map[uint]Permission)
	for _, role := range user.Roles {
		for _, permission := range role.Permissions {
			permissionMap[permission.ID] = permission
		}
	}

	permissions := make([]Permission, 0, len(permissionMap))
	for _, permission := range permissionMap {
		permissions = append(permissions, permission)
	}

	return permissions, nil
}
