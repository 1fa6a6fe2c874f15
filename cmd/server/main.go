package main // Entry point package

import (
	"log"  // Logging library
	"time" // lock wait duration

	"github.com/joho/godotenv"    // loads .env files in development
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/iliyamo/room-reservation/internal/booking"    // conflict-safe reservation engine
	"github.com/iliyamo/room-reservation/internal/config"     // Internal config loader
	"github.com/iliyamo/room-reservation/internal/database"   // MySQL connector
	"github.com/iliyamo/room-reservation/internal/handler"    // HTTP handlers
	"github.com/iliyamo/room-reservation/internal/middleware" // rate limit and cache middleware
	"github.com/iliyamo/room-reservation/internal/queue"      // background decision consumer
	"github.com/iliyamo/room-reservation/internal/repository" // DB repositories
	"github.com/iliyamo/room-reservation/internal/router"     // Internal router setup
)

func main() {
	// Load .env when present; real deployments set env vars directly.
	_ = godotenv.Load()

	cfg := config.Load() // Load environment config

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Redis backs the rate limiter and the response cache.  A nil client
	// disables both; the service still works without Redis.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable; rate limiting and response cache disabled")
	}

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	rooms := repository.NewRoomRepo(db)
	reservations := repository.NewReservationRepo(db, rooms)

	engine := booking.NewEngine(reservations, time.Duration(cfg.LockWaitSec)*time.Second, nil)

	authHandler := handler.NewAuthHandler(cfg, users, tokens)
	roomHandler := handler.NewRoomHandler(rooms, engine)
	bookingHandler := handler.NewBookingHandler(engine, reservations)
	adminRoomHandler := handler.NewAdminRoomHandler(rooms)
	adminBookingHandler := handler.NewAdminBookingHandler(engine, reservations, users)

	e := echo.New() // Create Echo instance

	rateLimit := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
	respCache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)

	router.RegisterRoutes(e)
	router.RegisterAuth(e, authHandler, cfg.JWTSecret)
	router.RegisterBooking(e, roomHandler, bookingHandler, cfg.JWTSecret, rateLimit, respCache)
	router.RegisterAdmin(e, adminRoomHandler, adminBookingHandler, cfg.JWTSecret, rateLimit)

	// The decision consumer tails reservation.decided and appends to
	// logs/decisions.log.  It reconnects forever; run it in the background.
	go func() {
		if err := queue.StartDecisionConsumer(); err != nil {
			log.Printf("decision consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port                                // Address string with port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env) // Print startup info

	if err := e.Start(addr); err != nil { // Start HTTP server
		log.Fatal(err) // Log and exit if server fails
	}
}
