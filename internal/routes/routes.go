package routes

import (
	"log"
	"os"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/Ropeth/songchart/internal/config"
	"github.com/Ropeth/songchart/internal/handlers"
	"github.com/Ropeth/songchart/internal/middleware"
	"github.com/Ropeth/songchart/internal/repository"
)

func SetupRoutes(
	cfg *config.Config,
	authHandler *handlers.AuthHandler,
	songHandler *handlers.SongHandler,
	artistHandler *handlers.ArtistHandler,
	paymentHandler *handlers.PaymentHandler,
	artistRepo repository.ArtistRepository,
) *gin.Engine {

	router := gin.New()

	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	// =========================
	// CORS CONFIG (DEV / PROD)
	// =========================
	env := os.Getenv("ENV")
	frontendURL := os.Getenv("CORS_ORIGIN")

	corsConfig := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With", "Stripe-Signature"},
		ExposeHeaders:    []string{"Content-Length", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}

	if env == "production" {
		if frontendURL == "" {
			log.Fatal("❌ CORS_ORIGIN environment variable is NOT set in production!")
		}
		corsConfig.AllowOrigins = []string{frontendURL}
	} else {
		allowedOrigins := []string{
			"http://localhost:3000",
			"http://localhost:5173",
			"http://127.0.0.1:3000",
			"http://127.0.0.1:5173",
		}
		if frontendURL != "" {
			allowedOrigins = append(allowedOrigins, frontendURL)
		}

		corsConfig.AllowOriginFunc = func(origin string) bool {
			for _, allowed := range allowedOrigins {
				if origin == allowed {
					return true
				}
			}
			if strings.HasPrefix(origin, "http://192.168.") || strings.HasPrefix(origin, "http://10.") {
				return true
			}
			return false
		}
	}

	router.Use(cors.New(corsConfig))

	// =========================
	// SECURITY HEADERS
	// =========================
	router.Use(func(c *gin.Context) {
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Header("Content-Security-Policy", "default-src 'self'")
		c.Next()
	})

	// =========================
	// API ROUTES
	// =========================
	api := router.Group("/api")
	{
		// ---------- AUTH ----------
		auth := api.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)

			authProtected := auth.Group("/")
			authProtected.Use(middleware.JWTMiddleware(cfg.JWTSecret))
			{
				authProtected.GET("/me", authHandler.Me)
			}
		}

		// ---------- PUBLIC (optional JWT for like status) ----------
		songs := api.Group("/songs")
		songs.Use(middleware.OptionalJWTMiddleware(cfg.JWTSecret))
		{
			songs.GET("", songHandler.GetAllSongs)
			songs.GET("/:id", songHandler.GetSongByID)
		}

		artists := api.Group("/artists")
		{
			artists.GET("/:id", artistHandler.GetArtist)
		}

		// ---------- WEBHOOKS (verified by signature, no JWT) ----------
		api.POST("/webhooks/stripe", paymentHandler.StripeWebhook)

		// ---------- PROTECTED ----------
		protected := api.Group("/")
		protected.Use(middleware.JWTMiddleware(cfg.JWTSecret))
		{
			// USER
			user := protected.Group("/user")
			{
				user.POST("/like/:song_id", songHandler.LikeSong)
				user.DELETE("/like/:song_id", songHandler.UnlikeSong)
				user.POST("/gift/:song_id", songHandler.GiftSong)
				user.GET("/likes", songHandler.GetUserLikes)
				user.GET("/likes/today", songHandler.GetTodayLikes)
				user.GET("/balance", songHandler.GetBalance)
				user.POST("/play/:song_id", songHandler.StartPlay)
				user.PUT("/play/:play_id/progress", songHandler.PlayProgress)
				user.GET("/plays", songHandler.GetUserPlays)
			}

			// PAYMENTS
			payments := protected.Group("/payments")
			{
				payments.POST("/checkout-intent", paymentHandler.CreateCheckoutIntent)

				payoutOnly := payments.Group("/")
				payoutOnly.Use(middleware.ArtistMiddleware(artistRepo))
				{
					payoutOnly.POST("/connect-onboarding", paymentHandler.ConnectOnboarding)
					payoutOnly.POST("/payout", paymentHandler.Payout)
				}
			}

			// ARTIST
			protected.POST("/artist/register", artistHandler.RegisterArtist)

			artist := protected.Group("/artist")
			artist.Use(middleware.ArtistMiddleware(artistRepo))
			{
				artist.PUT("/profile", artistHandler.UpdateProfile)
				artist.GET("/earnings", artistHandler.GetEarnings)
				artist.GET("/songs", artistHandler.GetMySongs)
				artist.POST("/songs", artistHandler.CreateSong)
				artist.POST("/songs/:song_id/media", artistHandler.UploadSongMedia)
				artist.PUT("/songs/:song_id", artistHandler.UpdateSong)
				artist.DELETE("/songs/:song_id", artistHandler.DeleteSong)
			}
		}
	}

	// =========================
	// HEALTH & ROOT
	// =========================
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "success",
			"message": "Server is running",
		})
	})

	router.GET("/", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "success",
			"message": "Songchart API",
			"version": "1.0.0",
		})
	})

	return router
}
