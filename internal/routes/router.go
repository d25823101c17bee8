package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/kouadiojose/hopefund-sub000/internal/middleware"
)

// SetupRoutes initialise tous les itinéraires de l'application.
func SetupRoutes(r *gin.Engine) {
	// --- Itinéraires publics ---
	// L'authentification est le seul point d'entrée sans jeton.
	RegisterAuthRoutes(r)

	// --- Groupe protégé ---
	// Tout le reste exige un jeton valide, vérifié par AuthMiddleware.
	authRequired := r.Group("/")
	authRequired.Use(middleware.AuthMiddleware())
	{
		RegisterAPIRoutes(authRequired)
	}
}
