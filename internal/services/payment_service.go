package services

import (
	"context"
	"fmt"
	"strconv"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"

	"github.com/Ropeth/songchart/internal/config"
)

// PaymentClient is the boundary to the payments provider. Handlers and the
// payout service depend on this interface so tests can substitute a fake.
type PaymentClient interface {
	// CreateLikeBundleIntent starts a fixed-price purchase of one like bundle
	// and returns the client secret the frontend needs to confirm it.
	CreateLikeBundleIntent(ctx context.Context, userID uint) (clientSecret string, err error)

	// CreateConnectAccount creates an Express account tagged with our user id
	// so the account.updated webhook can find the artist later.
	CreateConnectAccount(ctx context.Context, userID uint, email string) (accountID string, err error)

	// CreateOnboardingLink returns the hosted onboarding URL for an account.
	CreateOnboardingLink(ctx context.Context, accountID string) (url string, err error)

	// Transfer moves amountPence to a connected account and returns the
	// transfer id. Callers own the context deadline; a deadline error means
	// the outcome is unknown, not that the transfer failed.
	Transfer(ctx context.Context, accountID string, amountPence int64, description string) (transferID string, err error)
}

type stripePayments struct {
	api      *client.API
	cfg      *config.Config
	frontend string
}

// NewStripePayments wraps the Stripe SDK behind PaymentClient. The API client
// is constructed once here and injected wherever it is needed; nothing relies
// on the SDK's package-level key.
func NewStripePayments(cfg *config.Config) PaymentClient {
	api := &client.API{}
	api.Init(cfg.StripeSecretKey, nil)
	return &stripePayments{
		api:      api,
		cfg:      cfg,
		frontend: cfg.FrontendURL,
	}
}

func (s *stripePayments) CreateLikeBundleIntent(ctx context.Context, userID uint) (string, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(s.cfg.LikeBundlePrice),
		Currency: stripe.String(s.cfg.Currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx
	params.AddMetadata("userId", strconv.FormatUint(uint64(userID), 10))

	intent, err := s.api.PaymentIntents.New(params)
	if err != nil {
		return "", fmt.Errorf("create payment intent: %w", err)
	}
	return intent.ClientSecret, nil
}

func (s *stripePayments) CreateConnectAccount(ctx context.Context, userID uint, email string) (string, error) {
	params := &stripe.AccountParams{
		Type:  stripe.String(string(stripe.AccountTypeExpress)),
		Email: stripe.String(email),
		Capabilities: &stripe.AccountCapabilitiesParams{
			Transfers: &stripe.AccountCapabilitiesTransfersParams{
				Requested: stripe.Bool(true),
			},
		},
	}
	params.Context = ctx
	params.AddMetadata("userId", strconv.FormatUint(uint64(userID), 10))

	account, err := s.api.Accounts.New(params)
	if err != nil {
		return "", fmt.Errorf("create connect account: %w", err)
	}
	return account.ID, nil
}

func (s *stripePayments) CreateOnboardingLink(ctx context.Context, accountID string) (string, error) {
	params := &stripe.AccountLinkParams{
		Account:    stripe.String(accountID),
		RefreshURL: stripe.String(s.frontend + "/artist-account"),
		ReturnURL:  stripe.String(s.frontend + "/artist-account"),
		Type:       stripe.String("account_onboarding"),
	}
	params.Context = ctx

	link, err := s.api.AccountLinks.New(params)
	if err != nil {
		return "", fmt.Errorf("create onboarding link: %w", err)
	}
	return link.URL, nil
}

func (s *stripePayments) Transfer(ctx context.Context, accountID string, amountPence int64, description string) (string, error) {
	params := &stripe.TransferParams{
		Amount:      stripe.Int64(amountPence),
		Currency:    stripe.String(s.cfg.Currency),
		Destination: stripe.String(accountID),
		Description: stripe.String(description),
	}
	params.Context = ctx

	transfer, err := s.api.Transfers.New(params)
	if err != nil {
		return "", err
	}
	return transfer.ID, nil
}
