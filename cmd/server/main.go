package main

import (
	"log/slog"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/kouadiojose/hopefund-sub000/config"
	"github.com/kouadiojose/hopefund-sub000/internal/handlers"
	"github.com/kouadiojose/hopefund-sub000/internal/routes"
	"github.com/kouadiojose/hopefund-sub000/models"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	config.InitJWT()
	config.ConnectDB()
	config.ConnectRedis()

	if err := config.DB.AutoMigrate(
		&models.Branch{},
		&models.User{},
		&models.Role{},
		&models.Permission{},
		&models.Client{},
		&models.Account{},
		&models.Caisse{},
		&models.CaisseMovement{},
		&models.LoanProduct{},
		&models.Loan{},
		&models.Installment{},
		&models.Repayment{},
		&models.AccountingEntry{},
		&models.AccountingLine{},
	); err != nil {
		slog.Error("Échec de la migration du schéma", "error", err)
		os.Exit(1)
	}

	// Diffusion temps réel du journal comptable.
	go handlers.JournalHub.Run()

	r := gin.Default()
	routes.SetupRoutes(r)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	slog.Info("Démarrage du serveur", "port", port)
	if err := r.Run(":" + port); err != nil {
		slog.Error("Arrêt du serveur sur erreur", "error", err)
		os.Exit(1)
	}
}
