package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-ticket-booking/internal/catalog"
	"github.com/iliyamo/movie-ticket-booking/internal/config"
	"github.com/iliyamo/movie-ticket-booking/internal/database"
	"github.com/iliyamo/movie-ticket-booking/internal/handler"
	"github.com/iliyamo/movie-ticket-booking/internal/ledger"
	"github.com/iliyamo/movie-ticket-booking/internal/middleware"
	"github.com/iliyamo/movie-ticket-booking/internal/payment"
	"github.com/iliyamo/movie-ticket-booking/internal/queue"
	"github.com/iliyamo/movie-ticket-booking/internal/repository"
	"github.com/iliyamo/movie-ticket-booking/internal/reservation"
	"github.com/iliyamo/movie-ticket-booking/internal/router"
	"github.com/iliyamo/movie-ticket-booking/internal/store"
	"github.com/iliyamo/movie-ticket-booking/internal/sweeper"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// STORE_DRIVER swaps the seat store, ledger and catalog backend.
	// The memory driver keeps seat state in process; useful for demos,
	// never for multi-instance deployments.
	var (
		seatStore     store.SeatStore
		bookingLedger ledger.BookingLedger
		cat           catalog.Catalog
	)
	switch cfg.StoreDriver {
	case "memory":
		seatStore = store.NewMemoryStore()
		bookingLedger = ledger.NewMemoryLedger()
		cat = catalog.NewMemoryCatalog()
	default:
		seatStore = store.NewMySQLStore(db)
		bookingLedger = ledger.NewMySQLLedger(db)
		cat = catalog.NewMySQLCatalog(db)
	}

	manager := reservation.NewManager(seatStore, bookingLedger, cfg.HoldTTL)

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)

	authH := handler.NewAuthHandler(cfg, users, tokens)
	publicH := handler.NewPublicHandler(cat, seatStore)
	bookingH := handler.NewBookingHandler(manager, seatStore, bookingLedger, cat, payment.NewMockGateway())
	adminH := handler.NewAdminHandler(cat, seatStore)

	e := echo.New()
	e.HideBanner = true

	// Redis backs rate limiting and the browse cache.  A nil client
	// disables both instead of failing startup.
	rdb := config.NewRedisClient()
	var cacheMW echo.MiddlewareFunc
	if rdb != nil {
		rlCfg := config.LoadRateLimitConfig()
		if rlCfg.Enabled {
			e.Use(middleware.NewTokenBucket(rlCfg, rdb))
		}
		cCfg := config.LoadCacheConfig()
		if cCfg.Enabled {
			cacheMW = middleware.NewRedisCache(cCfg, rdb)
		}
	} else {
		log.Println("redis unavailable, rate limiting and caching disabled")
	}

	router.RegisterRoutes(e)
	router.RegisterAuth(e, authH, cfg.JWTSecret)
	router.RegisterPublic(e, publicH, cacheMW)
	router.RegisterBooking(e, bookingH, cfg.JWTSecret)
	router.RegisterAdmin(e, adminH, cfg.JWTSecret)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// The sweeper reclaims lapsed holds in the background; the hold
	// path also reclaims lazily, so the interval is a freshness knob,
	// not a correctness one.
	sw := sweeper.New(seatStore, cfg.SweepInterval)
	go sw.Run(ctx)

	// Consume booking.confirmed events into logs/booking.log.
	go func() {
		if err := queue.StartBookingConsumer(); err != nil {
			log.Printf("booking consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s, store=%s)", addr, cfg.Env, cfg.StoreDriver)
	go func() {
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server: %v", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}
