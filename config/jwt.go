// hopefund/config/jwt.go
package config

import (
	"log/slog"
	"os"
)

// JwtKey est la clé de signature des jetons de session.
var JwtKey []byte

func InitJWT() {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		slog.Error("Erreur critique : la variable d'environnement JWT_SECRET n'est pas définie.")
		os.Exit(1)
	}
	JwtKey = []byte(secret)
}
