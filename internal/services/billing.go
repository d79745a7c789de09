package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v81"
	portalsession "github.com/stripe/stripe-go/v81/billingportal/session"
	checkoutsession "github.com/stripe/stripe-go/v81/checkout/session"
	"github.com/stripe/stripe-go/v81/webhook"

	"quizforge-backend/internal/models"
)

// BillingStore is the slice of the user repository billing needs.
type BillingStore interface {
	SetPlan(ctx context.Context, userID uuid.UUID, plan string) error
	SetStripeCustomer(ctx context.Context, userID uuid.UUID, customerID string) error
	SetPlanByStripeCustomer(ctx context.Context, customerID, plan string) error
}

// BillingService wraps the Stripe subscription lifecycle. Checkout upgrades a
// user to the paid plan once the webhook confirms payment; subscription
// deletion drops them back to free.
type BillingService struct {
	store         BillingStore
	webhookSecret string
	priceID       string
	frontendURL   string
}

func NewBillingService(secretKey, webhookSecret, priceID, frontendURL string, store BillingStore) *BillingService {
	stripe.Key = secretKey
	return &BillingService{
		store:         store,
		webhookSecret: webhookSecret,
		priceID:       priceID,
		frontendURL:   frontendURL,
	}
}

// CreateCheckoutSession starts a subscription checkout for the user.
func (s *BillingService) CreateCheckoutSession(ctx context.Context, user *models.User) (string, error) {
	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{Price: stripe.String(s.priceID), Quantity: stripe.Int64(1)},
		},
		SuccessURL:        stripe.String(s.frontendURL + "/billing/success"),
		CancelURL:         stripe.String(s.frontendURL + "/billing/cancel"),
		CustomerEmail:     stripe.String(user.Email),
		ClientReferenceID: stripe.String(user.ID.String()),
	}

	sess, err := checkoutsession.New(params)
	if err != nil {
		return "", fmt.Errorf("failed to create checkout session: %w", err)
	}
	return sess.URL, nil
}

// CreatePortalSession opens the Stripe customer portal for plan management.
func (s *BillingService) CreatePortalSession(ctx context.Context, user *models.User) (string, error) {
	if user.StripeCustomerID == nil || *user.StripeCustomerID == "" {
		return "", &NotFoundError{Message: "No billing account for this user"}
	}

	params := &stripe.BillingPortalSessionParams{
		Customer:  stripe.String(*user.StripeCustomerID),
		ReturnURL: stripe.String(s.frontendURL + "/settings"),
	}

	sess, err := portalsession.New(params)
	if err != nil {
		return "", fmt.Errorf("failed to create portal session: %w", err)
	}
	return sess.URL, nil
}

// HandleWebhook verifies a Stripe webhook payload and applies plan changes.
func (s *BillingService) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	event, err := webhook.ConstructEvent(payload, signature, s.webhookSecret)
	if err != nil {
		return &UnauthorizedError{Message: "Invalid webhook signature"}
	}

	switch event.Type {
	case "checkout.session.completed":
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
			return fmt.Errorf("failed to parse checkout session: %w", err)
		}
		return s.activatePlan(ctx, &sess)

	case "customer.subscription.deleted":
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return fmt.Errorf("failed to parse subscription: %w", err)
		}
		if sub.Customer == nil {
			return nil
		}
		return s.store.SetPlanByStripeCustomer(ctx, sub.Customer.ID, "free")

	default:
		log.Printf("ignoring Stripe event type %s", event.Type)
		return nil
	}
}

func (s *BillingService) activatePlan(ctx context.Context, sess *stripe.CheckoutSession) error {
	userID, err := uuid.Parse(sess.ClientReferenceID)
	if err != nil {
		return fmt.Errorf("checkout session carries no valid user reference: %w", err)
	}

	if sess.Customer != nil && sess.Customer.ID != "" {
		if err := s.store.SetStripeCustomer(ctx, userID, sess.Customer.ID); err != nil {
			return err
		}
	}

	return s.store.SetPlan(ctx, userID, "paid")
}
