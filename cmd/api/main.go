package main

import (
	"context"
	"log"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"

	"github.com/Windi-Fikriyansyah/anywork_escrow/internal/clock"
	"github.com/Windi-Fikriyansyah/anywork_escrow/internal/config"
	"github.com/Windi-Fikriyansyah/anywork_escrow/internal/escrow"
	"github.com/Windi-Fikriyansyah/anywork_escrow/internal/handlers"
	"github.com/Windi-Fikriyansyah/anywork_escrow/internal/metrics"
	"github.com/Windi-Fikriyansyah/anywork_escrow/internal/middleware"
	"github.com/Windi-Fikriyansyah/anywork_escrow/internal/realtime"
	"github.com/Windi-Fikriyansyah/anywork_escrow/internal/store/postgres"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	gdb, err := postgres.Connect(cfg.DBDSN)
	if err != nil {
		log.Fatal(err)
	}
	store := postgres.New(gdb)
	if err := store.Migrate(); err != nil {
		log.Fatal(err)
	}

	rdb := realtime.NewRedis(cfg.RedisAddr, cfg.RedisPassword)
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatal("Redis not reachable: ", err)
	}

	hub := realtime.NewHub()
	go hub.Run(ctx)
	go func() {
		if err := realtime.Forward(ctx, rdb, hub, nil); err != nil {
			log.Printf("Event forwarding stopped: %v", err)
		}
	}()

	m := metrics.New()
	ledger := escrow.New(store, clock.NewSystem(),
		escrow.WithPublisher(realtime.NewRedisPublisher(rdb)),
		escrow.WithRecorder(m),
	)

	initial, err := cfg.InitialPlatform()
	if err != nil {
		log.Fatal(err)
	}
	platform, err := ledger.Bootstrap(ctx, initial)
	if err != nil {
		log.Fatal("bootstrap platform config: ", err)
	}
	if platform.Owner != initial.Owner {
		log.Printf("Stored owner %s differs from OWNER_ADDRESS, keeping the stored one", platform.Owner)
	}
	log.Printf("Platform ready (owner %s, fee %d%%, timeout %dd, dispute window %dd)",
		platform.Owner, platform.PlatformFeePercent, platform.JobTimeoutDays, platform.DisputeWindowDays)

	app := fiber.New(fiber.Config{ErrorHandler: handlers.ErrorHandler})

	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.FrontendBaseURL,
		AllowMethods:     "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		ExposeHeaders:    "Content-Length",
		AllowCredentials: true,
	}))

	app.Options("/*", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})

	handlers.Mount(app, handlers.Deps{
		Ledger:       ledger,
		Nonces:       realtime.NewNonceStore(rdb, 5*time.Minute),
		Hub:          hub,
		Metrics:      m.Handler(),
		Limiter:      middleware.NewLimiter(cfg.RateLimitPerSec, cfg.RateLimitBurst, 10*time.Minute),
		JWTSecret:    cfg.JWTSecret,
		JWTExpires:   cfg.JWTTTL(),
		SecureCookie: strings.HasPrefix(cfg.FrontendBaseURL, "https://"),
	})

	go func() {
		<-ctx.Done()
		log.Println("Shutting down")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Printf("Shutdown: %v", err)
		}
	}()

	if err := app.Listen(":" + cfg.AppPort); err != nil {
		log.Fatal(err)
	}
}
