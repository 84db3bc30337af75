package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strconv"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/webhook"
	"gorm.io/gorm"

	"github.com/Ropeth/songchart/internal/repository"
)

var ErrSignatureVerification = errors.New("webhook signature verification failed")

// webhookEvent is the tagged union of event kinds this processor understands.
// Anything else decodes to unhandledEvent; nothing is silently coerced.
type webhookEvent interface {
	isWebhookEvent()
}

// likeBundlePurchased: a fan's bundle payment settled.
type likeBundlePurchased struct {
	UserID uint
}

// payoutAccountUpdated: an artist moved through Stripe onboarding.
type payoutAccountUpdated struct {
	UserID           uint
	AccountID        string
	DetailsSubmitted bool
	PayoutsEnabled   bool
}

// metadataMissing: a known event kind whose payload lacks our user id.
// Logged and acknowledged; Stripe must not redeliver it.
type metadataMissing struct {
	Type string
}

type unhandledEvent struct {
	Type string
}

func (likeBundlePurchased) isWebhookEvent()  {}
func (payoutAccountUpdated) isWebhookEvent() {}
func (metadataMissing) isWebhookEvent()      {}
func (unhandledEvent) isWebhookEvent()       {}

// WebhookProcessor turns verified Stripe events into ledger mutations. Each
// event id is claimed in the same transaction that applies its effects, so a
// redelivered event is acknowledged without crediting anything twice.
type WebhookProcessor struct {
	db             *gorm.DB
	endpointSecret string
	bundleSize     int
}

func NewWebhookProcessor(db *gorm.DB, endpointSecret string, bundleSize int) *WebhookProcessor {
	return &WebhookProcessor{
		db:             db,
		endpointSecret: endpointSecret,
		bundleSize:     bundleSize,
	}
}

// HandlePayload verifies the signature and processes the event. A signature
// failure returns ErrSignatureVerification before any mutation is attempted.
func (p *WebhookProcessor) HandlePayload(payload []byte, sigHeader string) error {
	event, err := webhook.ConstructEventWithOptions(
		payload,
		sigHeader,
		p.endpointSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true},
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSignatureVerification, err)
	}
	return p.Process(event)
}

func (p *WebhookProcessor) Process(event stripe.Event) error {
	decoded, err := decodeEvent(event)
	if err != nil {
		return err
	}

	switch ev := decoded.(type) {
	case unhandledEvent:
		log.Printf("[Webhook] Unhandled event type %s", ev.Type)
		return nil
	case metadataMissing:
		log.Printf("[Webhook] Event %s (%s) missing user metadata, ignoring", event.ID, ev.Type)
		return nil
	}

	err = p.db.Transaction(func(tx *gorm.DB) error {
		fresh, err := repository.NewWebhookRepository(tx).MarkEventProcessed(event.ID, string(event.Type))
		if err != nil {
			return err
		}
		if !fresh {
			log.Printf("[Webhook] Duplicate delivery of event %s, already applied", event.ID)
			return nil
		}

		switch ev := decoded.(type) {
		case likeBundlePurchased:
			if err := repository.NewUserRepository(tx).CreditBoughtLikes(ev.UserID, p.bundleSize); err != nil {
				return err
			}
			log.Printf("[Webhook] Credited %d bought likes to user %d", p.bundleSize, ev.UserID)
			return nil
		case payoutAccountUpdated:
			if !ev.DetailsSubmitted {
				// Onboarding not finished; nothing to flip yet.
				return nil
			}
			if err := repository.NewArtistRepository(tx).SetPayoutAccount(ev.UserID, ev.AccountID, ev.PayoutsEnabled); err != nil {
				return err
			}
			log.Printf("[Webhook] Artist user %d connected with account %s", ev.UserID, ev.AccountID)
			return nil
		}
		return nil
	})
	if err != nil {
		log.Printf("[Webhook] Failed to process event %s: %v", event.ID, err)
	}
	return err
}

func decodeEvent(event stripe.Event) (webhookEvent, error) {
	switch event.Type {
	case "payment_intent.succeeded":
		var intent stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
			return nil, fmt.Errorf("invalid payment intent payload: %w", err)
		}
		userID, ok := userIDFromMetadata(intent.Metadata)
		if !ok {
			return metadataMissing{Type: string(event.Type)}, nil
		}
		return likeBundlePurchased{UserID: userID}, nil

	case "account.updated":
		var account stripe.Account
		if err := json.Unmarshal(event.Data.Raw, &account); err != nil {
			return nil, fmt.Errorf("invalid account payload: %w", err)
		}
		userID, ok := userIDFromMetadata(account.Metadata)
		if !ok {
			return metadataMissing{Type: string(event.Type)}, nil
		}
		return payoutAccountUpdated{
			UserID:           userID,
			AccountID:        account.ID,
			DetailsSubmitted: account.DetailsSubmitted,
			PayoutsEnabled:   account.PayoutsEnabled,
		}, nil

	default:
		return unhandledEvent{Type: string(event.Type)}, nil
	}
}

func userIDFromMetadata(metadata map[string]string) (uint, bool) {
	raw, ok := metadata["userId"]
	if !ok || raw == "" {
		return 0, false
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, false
	}
	return uint(id), true
}
