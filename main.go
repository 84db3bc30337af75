package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Ropeth/songchart/internal/config"
	"github.com/Ropeth/songchart/internal/database"
	"github.com/Ropeth/songchart/internal/handlers"
	"github.com/Ropeth/songchart/internal/repository"
	"github.com/Ropeth/songchart/internal/routes"
	"github.com/Ropeth/songchart/internal/services"
)

func main() {

	// =========================
	// LOAD CONFIG
	// =========================
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Config load failed: %v", err)
	}

	// =========================
	// CONNECT DATABASE
	// =========================
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("❌ Database connection failed: %v", err)
	}

	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("❌ Migration failed: %v", err)
	}
	log.Println("✅ Database migration completed")

	go func() {
		sqlDB, err := db.DB()
		if err != nil {
			return
		}
		for {
			sqlDB.Ping()
			time.Sleep(5 * time.Minute)
		}
	}()

	// =========================
	// INIT REPOSITORIES
	// =========================
	userRepo := repository.NewUserRepository(db)
	artistRepo := repository.NewArtistRepository(db)
	songRepo := repository.NewSongRepository(db)
	likeRepo := repository.NewLikeRepository(db, cfg.FreeLikeCap, cfg.PayoutPerLike)
	playRepo := repository.NewPlayRepository(db)

	// =========================
	// INIT SERVICES
	// =========================
	accrualService := services.NewAccrualService(playRepo, userRepo, services.AccrualPolicy{
		WindowSeconds:    cfg.AccrualWindowSecs,
		ToleranceSeconds: cfg.AccrualToleranceSec,
	}, cfg.FreeLikeCap)

	payments := services.NewStripePayments(cfg)
	payoutService := services.NewPayoutService(artistRepo, payments, cfg.PayoutThreshold)
	webhookProcessor := services.NewWebhookProcessor(db, cfg.StripeWebhookSecret, cfg.LikeBundleSize)

	// Uploads are optional: without Cloudinary credentials the API still runs,
	// artists just provide media URLs directly.
	var uploadService services.UploadService
	if cfg.CloudinaryURL != "" {
		uploadService, err = services.NewUploadService(cfg.CloudinaryURL)
		if err != nil {
			log.Println("⚠️ Upload service init failed:", err)
		}
	} else {
		log.Println("⚠️ CLOUDINARY_URL not set, media uploads disabled")
	}

	// =========================
	// INIT HANDLERS
	// =========================
	authHandler := handlers.NewAuthHandler(userRepo, artistRepo, cfg)
	songHandler := handlers.NewSongHandler(songRepo, userRepo, likeRepo, playRepo, accrualService)
	artistHandler := handlers.NewArtistHandler(artistRepo, userRepo, songRepo, uploadService, cfg)
	paymentHandler := handlers.NewPaymentHandler(payments, payoutService, webhookProcessor, artistRepo, userRepo)

	// =========================
	// ROUTES
	// =========================
	router := routes.SetupRoutes(
		cfg,
		authHandler,
		songHandler,
		artistHandler,
		paymentHandler,
		artistRepo,
	)

	// =========================
	// SERVER
	// =========================
	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.ServerPort
	}
	if port == "" {
		port = "8080"
	}

	bindAddr := "0.0.0.0:" + port

	server := &http.Server{
		Addr:         bindAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Println("🎵 =======================================")
		log.Println("🎵   SONGCHART API SERVER")
		log.Println("🎵 =======================================")
		log.Printf("🎵   Running on: %s", bindAddr)
		log.Println("🚀 Server started")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Println("❌ Server error:", err)
		}
	}()

	// =========================
	// GRACEFUL SHUTDOWN
	// =========================
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Println("❌ Forced shutdown:", err)
	}

	log.Println("✅ Server exited properly")
}
