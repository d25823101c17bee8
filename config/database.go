// hopefund/config/database.go

package config

import (
	"log/slog"
	"os"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func ConnectDB() {
	dsn := os.Getenv("DB_URL")
	if dsn == "" {
		// Erreur fatale : sans base de données le back office ne peut pas démarrer.
		slog.Error("Erreur critique : la variable d'environnement DB_URL n'est pas définie.")
		os.Exit(1)
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		slog.Error("Échec de la connexion à la base de données", "error", err)
		os.Exit(1)
	}

	DB = db
	slog.Info("Connexion à la base de données établie !")
}
