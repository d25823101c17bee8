// hopefund/config/redis.go
package config

import (
	"context"
	"log/slog"
	"os"

	"github.com/redis/go-redis/v9"
)

var RDB *redis.Client
var Ctx = context.Background()

func ConnectRedis() {
	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		slog.Warn("La variable d'environnement REDIS_ADDR n'est pas définie, le cache des permissions sera désactivé.")
		return
	}

	RDB = redis.NewClient(&redis.Options{
		Addr: redisAddr,
	})

	// On vérifie la connexion avant de s'en servir.
	if _, err := RDB.Ping(Ctx).Result(); err != nil {
		slog.Error("Impossible de se connecter à Redis", "error", err)
		RDB = nil // Client mis à nil pour que l'application n'essaie plus de l'utiliser
		return
	}

	slog.Info("Connexion à Redis établie !")
}
