package main

import (
	"context"
	"log"
	"time"

	"unihub/internal/api"
	"unihub/internal/audit"
	"unihub/internal/config"
	"unihub/internal/database"
	"unihub/internal/database/migrations"
	"unihub/internal/fanout"
	"unihub/internal/identity"
	"unihub/internal/logger"
	"unihub/internal/mail"
	"unihub/internal/meeting"
	"unihub/internal/middleware"
	"unihub/internal/notifications"
	"unihub/internal/ratelimit"
	"unihub/internal/storage"
	"unihub/internal/telemetry"
	"unihub/internal/tenant"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/gofiber/storage/postgres/v3"
	"github.com/redis/go-redis/v9"
)

func main() {
	ctx := context.Background()
	cfg := config.NewConfig()

	tel, err := telemetry.New(cfg.Telemetry)
	if err != nil {
		log.Fatalf("Failed to initialize telemetry: %v", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tel.Shutdown(shutdownCtx); err != nil {
			log.Printf("Failed to shut down telemetry: %v", err)
		}
	}()

	slogger := logger.New(*cfg)

	db := database.NewDatabase()
	if err := db.Connect(ctx, cfg.DatabaseDSN()); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.Ping(ctx); err != nil {
		log.Fatalf("Failed to ping database: %v", err)
	}

	if err := migrations.Up(cfg.MigrateURL()); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	sessionStorage := postgres.New(postgres.Config{
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		Database: cfg.Database.Name,
		Username: cfg.Database.User,
		Password: cfg.Database.Password,
		Table:    "tbl_session",
		Reset:    false,
	})
	sessionStore := session.New(session.Config{
		Storage:        sessionStorage,
		KeyLookup:      "cookie:session_id",
		CookiePath:     "/",
		CookieSecure:   cfg.Server.Environment == "production",
		CookieHTTPOnly: true,
		CookieSameSite: "Lax",
		Expiration:     24 * time.Hour,
	})

	storageBackend, err := storage.New(cfg.Storage)
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}

	resolver := identity.NewResolver(&db)
	directory := tenant.NewDirectory(&db, redisClient, slogger)
	mailer := mail.NewLogMailer(slogger)
	notificationManager := notifications.NewManager(slogger, &db)
	auditor := audit.NewAuditor(slogger, &db)
	dispatcher := fanout.NewDispatcher(mailer, &notificationManager, &directory, slogger, cfg.Mail)
	meetingManager := meeting.NewManager(&db, &dispatcher, &auditor, slogger)
	limiter := ratelimit.NewRateLimiter(redisClient)

	handler := api.NewHandler(sessionStore, &db, resolver, meetingManager, notificationManager, storageBackend, auditor, limiter, slogger)

	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	})
	app.Use(middleware.Logger(slogger))

	handler.RegisterRoutes(app)

	addr := cfg.Server.Host + ":" + cfg.Server.Port
	slogger.Info("Starting server", "addr", addr, "environment", cfg.Server.Environment)
	log.Panic(app.Listen(addr))
}
