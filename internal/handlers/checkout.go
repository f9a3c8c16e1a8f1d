package handlers

import (
	"net/http"

	"github.com/learnhub/backend/internal/billing"
)

// CheckoutHandler opens payment sessions and lists the available plans.
type CheckoutHandler struct {
	Checkout CheckoutService
	Limiter  RateLimiter
}

// Plans handles GET /api/plans.
func (h CheckoutHandler) Plans(w http.ResponseWriter, r *http.Request) {
	respondJSON(r.Context(), w, http.StatusOK, map[string]any{"plans": billing.Plans()})
}

// CreateSession handles POST /api/create-checkout-session.
func (h CheckoutHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if !allowRequest(h.Limiter, w, r, "checkout") {
		return
	}

	var req struct {
		PlanID string `json:"planId"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		respondMessage(ctx, w, http.StatusBadRequest, "invalid request body")
		return
	}

	session, err := h.Checkout.CreateSession(ctx, req.PlanID)
	if err != nil {
		respondError(ctx, w, err, "payment processing failed")
		return
	}
	respondJSON(ctx, w, http.StatusOK, map[string]string{"url": session.URL})
}
