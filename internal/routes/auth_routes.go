package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/kouadiojose/hopefund-sub000/internal/handlers"
)

// RegisterAuthRoutes enregistre les itinéraires publics d'authentification.
// Aucun middleware de jeton n'est appliqué ici.
func RegisterAuthRoutes(r *gin.Engine) {
	// Connexion d'un agent.
	r.POST("/login", handlers.LoginHandler)

	// Déconnexion : le cookie de session est expiré.
	r.GET("/logout", handlers.LogoutHandler)
}
