package handlers

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/kouadiojose/hopefund-sub000/config"
	"github.com/kouadiojose/hopefund-sub000/internal/accounting"
	"github.com/kouadiojose/hopefund-sub000/models"
)

// currentUserID récupère l'identifiant de l'agent depuis le contexte posé par
// le middleware d'authentification.
func currentUserID(c *gin.Context) uint {
	if v, exists := c.Get("user_id"); exists {
		if id, ok := v.(uint); ok {
			return id
		}
	}
	return 0
}

// postEntry passe l'écriture comptable d'une opération DÉJÀ validée, dans sa
// propre transaction. Un échec est journalisé en avertissement sans remettre
// en cause l'opération principale : les livres sont momentanément
// déséquilibrés jusqu'au prochain traitement de contrôle comptable.
func postEntry(c *gin.Context, operation, label string, branchID *uint, legs []accounting.Leg) *models.AccountingEntry {
	return postAccountEntry(c, operation, label, branchID, nil, legs)
}

// postAccountEntry : variante rattachant l'écriture à un compte membre, pour
// l'historique des opérations du compte.
func postAccountEntry(c *gin.Context, operation, label string, branchID, accountID *uint, legs []accounting.Leg) *models.AccountingEntry {
	var entry *models.AccountingEntry
	err := config.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		entry, err = accounting.Post(tx, operation, label, time.Now(), currentUserID(c), branchID, accountID, legs)
		return err
	})
	if err != nil {
		slog.Warn("Échec de la passation de l'écriture comptable",
			"operation", operation, "error", err)
		return nil
	}

	JournalHub.BroadcastEntry(entry)
	return entry
}
