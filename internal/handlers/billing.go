package handlers

import (
	"io"
	"net/http"

	"quizforge-backend/internal/middleware"
	"quizforge-backend/internal/repository"
	"quizforge-backend/internal/services"
)

type BillingHandler struct {
	billing  *services.BillingService
	userRepo *repository.UserRepo
}

func NewBillingHandler(billing *services.BillingService, userRepo *repository.UserRepo) *BillingHandler {
	return &BillingHandler{billing: billing, userRepo: userRepo}
}

func (h *BillingHandler) CreateCheckoutSession(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	user, err := h.userRepo.GetByID(r.Context(), userID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	url, err := h.billing.CreateCheckoutSession(r.Context(), user)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"url": url})
}

func (h *BillingHandler) CreatePortalSession(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	user, err := h.userRepo.GetByID(r.Context(), userID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	url, err := h.billing.CreatePortalSession(r.Context(), user)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"url": url})
}

// StripeWebhook receives plan lifecycle events. The signature check replaces
// JWT auth on this route.
func (h *BillingHandler) StripeWebhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Failed to read webhook payload", r))
		return
	}

	if err := h.billing.HandleWebhook(r.Context(), payload, r.Header.Get("Stripe-Signature")); err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"received": "true"})
}
