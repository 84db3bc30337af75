package handlers

import (
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Ropeth/songchart/internal/repository"
	"github.com/Ropeth/songchart/internal/services"
)

type PaymentHandler struct {
	payments   services.PaymentClient
	payouts    *services.PayoutService
	webhooks   *services.WebhookProcessor
	artistRepo repository.ArtistRepository
	userRepo   repository.UserRepository
}

func NewPaymentHandler(
	payments services.PaymentClient,
	payouts *services.PayoutService,
	webhooks *services.WebhookProcessor,
	artistRepo repository.ArtistRepository,
	userRepo repository.UserRepository,
) *PaymentHandler {
	return &PaymentHandler{
		payments:   payments,
		payouts:    payouts,
		webhooks:   webhooks,
		artistRepo: artistRepo,
		userRepo:   userRepo,
	}
}

// CreateCheckoutIntent starts a like bundle purchase for the signed-in user
// and hands back the client secret for the payment form.
func (h *PaymentHandler) CreateCheckoutIntent(c *gin.Context) {
	userID := c.GetUint("user_id")

	clientSecret, err := h.payments.CreateLikeBundleIntent(c.Request.Context(), userID)
	if err != nil {
		log.Printf("[CreateCheckoutIntent] ERROR: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create checkout"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"clientSecret": clientSecret})
}

type connectRequest struct {
	Email string `json:"email"`
}

// ConnectOnboarding creates the artist's Express account (if needed) and
// returns the hosted onboarding URL.
func (h *PaymentHandler) ConnectOnboarding(c *gin.Context) {
	userID := c.GetUint("user_id")
	artistID := c.GetUint("artist_id")

	var req connectRequest
	_ = c.ShouldBindJSON(&req)

	artist, err := h.artistRepo.FindArtistByID(artistID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load artist"})
		return
	}

	accountID := artist.PayoutAccountID
	if accountID == "" {
		email := req.Email
		if email == "" {
			user, err := h.userRepo.FindUserByID(userID)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load user"})
				return
			}
			email = user.Email
		}

		accountID, err = h.payments.CreateConnectAccount(c.Request.Context(), userID, email)
		if err != nil {
			log.Printf("[ConnectOnboarding] account creation failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create payout account"})
			return
		}

		// Store the account id now; PayoutsEnabled stays false until the
		// account.updated webhook confirms onboarding finished.
		if err := h.artistRepo.SetPayoutAccount(userID, accountID, false); err != nil {
			log.Printf("[ConnectOnboarding] failed to store account id for artist %d: %v", artistID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store payout account"})
			return
		}
	}

	url, err := h.payments.CreateOnboardingLink(c.Request.Context(), accountID)
	if err != nil {
		log.Printf("[ConnectOnboarding] link creation failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create onboarding link"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": url})
}

// Payout transfers the artist's full pending earnings to their connected
// account. Thresholds are enforced here, not trusted from the client.
func (h *PaymentHandler) Payout(c *gin.Context) {
	artistID := c.GetUint("artist_id")

	artist, err := h.artistRepo.FindArtistByID(artistID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load artist"})
		return
	}

	transferID, amount, err := h.payouts.RequestPayout(c.Request.Context(), artist)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNotConnected):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Payout account not connected"})
		case errors.Is(err, services.ErrBelowThreshold):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Pending earnings below minimum withdrawal"})
		case errors.Is(err, services.ErrTransferUnknown):
			c.JSON(http.StatusBadGateway, gin.H{"error": "Transfer status unknown, support has been notified"})
		default:
			log.Printf("[Payout] ERROR for artist %d: %v", artistID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Payout failed"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"transferId": transferID,
		"amount":     amount,
	})
}

// StripeWebhook receives provider events. Signature verification failures are
// rejected with 400 before any state is touched.
func (h *PaymentHandler) StripeWebhook(c *gin.Context) {
	const maxBodyBytes = int64(65536)
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBodyBytes))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	sigHeader := c.GetHeader("Stripe-Signature")
	if err := h.webhooks.HandlePayload(payload, sigHeader); err != nil {
		if errors.Is(err, services.ErrSignatureVerification) {
			log.Printf("[StripeWebhook] signature verification failed: %v", err)
			c.JSON(http.StatusBadRequest, gin.H{"error": "signature verification failed"})
			return
		}
		// Processing failed after verification; let Stripe redeliver.
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to process event"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}
