package app

import (
	"log"
	"time"

	"github.com/edemy/lms-server/api"
	"github.com/edemy/lms-server/config"
	"github.com/edemy/lms-server/database"
	"github.com/edemy/lms-server/router"
	"github.com/edemy/lms-server/services/cron"
	"github.com/edemy/lms-server/utils/cache"
	"gorm.io/gorm"
)

// SetupAndRun boots the whole service: config, database, redis, cron and
// the HTTP server. Blocks until the server exits.
func SetupAndRun() error {
	config.LoadENV()
	cfg := config.Get()

	store, err := database.StartGORM(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Init(); err != nil {
		return err
	}

	redis := cache.NewRedisCache(cfg.REDIS_URL)
	defer redis.Close()

	if cfg.CRON_ENABLED {
		pendingTTL := time.Duration(cfg.PENDING_PURCHASE_TTL_HOURS) * time.Hour
		cronManager := cron.NewCronManager(store.GetDB().(*gorm.DB), pendingTTL)
		if err := cronManager.Start(); err != nil {
			log.Printf("failed to start cron jobs: %v", err)
		} else {
			defer cronManager.Stop()
		}
	}

	server := api.NewAPIServer(":" + cfg.PORT)
	router.Setup(server.App, store, redis, cfg)

	return server.Run()
}
