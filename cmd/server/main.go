package main // Entry point package

import (
	"log"  // Logging library
	"time" // Ticker for the idle-room sweeper

	"github.com/joho/godotenv"    // .env loading for local development
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/jamsesh/jamsesh/internal/config"
	"github.com/jamsesh/jamsesh/internal/database"
	"github.com/jamsesh/jamsesh/internal/handler"
	"github.com/jamsesh/jamsesh/internal/middleware"
	"github.com/jamsesh/jamsesh/internal/player"
	"github.com/jamsesh/jamsesh/internal/presence"
	"github.com/jamsesh/jamsesh/internal/queue"
	"github.com/jamsesh/jamsesh/internal/registry"
	"github.com/jamsesh/jamsesh/internal/repository"
	"github.com/jamsesh/jamsesh/internal/router"
	"github.com/jamsesh/jamsesh/internal/scorer"
	queue_publisher "github.com/jamsesh/jamsesh/internal/service"
)

func main() {
	// Load .env if present; real deployments set env vars directly.
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatalf("database connect failed: %v", err)
	}
	defer db.Close()

	// Repositories over the catalog/session store.
	songRepo := repository.NewSongRepo(db)
	sessionRepo := repository.NewSessionRepo(db)
	activityRepo := repository.NewActivityRepo(db)

	// In-memory room state: presence, activity feeds, playback.
	tracker := presence.NewTracker(sessionRepo, cfg.ActiveWindow)
	rooms := registry.New(tracker, sessionRepo, queue_publisher.PublishRoomActivity)
	picker := scorer.New(songRepo, sessionRepo, activityRepo, cfg.ScorerTimeout)
	players := player.NewManager(picker, tracker, rooms)

	// Background consumer that mirrors activity events to logs/activity.log.
	go func() {
		if err := queue.StartActivityConsumer(); err != nil {
			log.Printf("activity consumer stopped: %v", err)
		}
	}()

	// Idle-room sweeper: rooms nobody has polled for RoomIdleTTL are
	// torn down together with their player and presence state.
	go func() {
		ticker := time.NewTicker(cfg.ReapInterval)
		defer ticker.Stop()
		for range ticker.C {
			for _, id := range players.ReapIdle(cfg.RoomIdleTTL) {
				rooms.Remove(id)
				tracker.Forget(id)
				log.Printf("reaped idle room %d", id)
			}
		}
	}()

	// Redis is optional: when unreachable both middlewares disable themselves.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable; response cache and rate limiting disabled")
	}

	e := echo.New()
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
	cacheMW := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)

	party := handler.NewPartyHandler(sessionRepo, songRepo, activityRepo, players, tracker, rooms, cfg.QueueLength)
	catalog := handler.NewCatalogHandler(songRepo)
	router.Register(e, party, catalog, cacheMW)

	addr := ":" + cfg.Port                                // Address string with port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env) // Print startup info

	if err := e.Start(addr); err != nil { // Start HTTP server
		log.Fatal(err) // Log and exit if server fails
	}
}
