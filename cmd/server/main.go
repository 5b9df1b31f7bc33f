package main // Entry point package

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/craftlink/appointments/internal/config"
	"github.com/craftlink/appointments/internal/database"
	"github.com/craftlink/appointments/internal/handler"
	"github.com/craftlink/appointments/internal/middleware"
	"github.com/craftlink/appointments/internal/queue"
	"github.com/craftlink/appointments/internal/repository"
	"github.com/craftlink/appointments/internal/router"
	"github.com/craftlink/appointments/internal/schedule"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database connect failed: %v", err)
	}
	defer db.Close()

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable; rate limiting and response cache disabled")
	}

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	craftsmen := repository.NewCraftsmanRepo(db)
	ratings := repository.NewRatingRepo(db)

	engine := schedule.NewCoordinator(nil)

	authH := handler.NewAuthHandler(cfg, users, tokens)
	craftsmanH := handler.NewCraftsmanHandler(craftsmen)
	slotH := handler.NewSlotHandler(engine, craftsmen)
	bookingH := handler.NewBookingHandler(engine, craftsmen)
	ratingH := handler.NewRatingHandler(ratings, craftsmen)

	e := echo.New()
	e.Use(middleware.RateLimit(config.LoadRateLimitConfig(), rdb))

	router.RegisterRoutes(e)
	router.RegisterAuth(e, authH, cfg.JWTSecret)
	router.RegisterPublic(e, craftsmanH, slotH, ratingH,
		middleware.CacheResponses(config.LoadCacheConfig(), rdb))
	router.RegisterCraftsman(e, craftsmanH, slotH, bookingH, cfg.JWTSecret)
	router.RegisterClient(e, bookingH, ratingH, cfg.JWTSecret)
	router.RegisterBookingShared(e, bookingH, cfg.JWTSecret)

	// Background consumer writing booking events to logs/booking.log. It
	// reconnects forever on its own; a missing broker must not block HTTP.
	go func() {
		if err := queue.StartBookingConsumer(); err != nil {
			log.Printf("booking consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
