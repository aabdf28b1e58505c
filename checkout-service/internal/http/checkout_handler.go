package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	d "github.com/fjod/go_cart/checkout-service/domain"
	"github.com/fjod/go_cart/checkout-service/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type CheckoutHandler struct {
	svc     service.CheckoutService
	timeout time.Duration
}

func NewCheckoutHandler(svc service.CheckoutService, timeout time.Duration) *CheckoutHandler {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &CheckoutHandler{
		svc:     svc,
		timeout: timeout,
	}
}

type PlaceOrderRequestDTO struct {
	Lines []d.CartLine `json:"lines"`
}

type PlaceOrderResponseDTO struct {
	OrderID uuid.UUID           `json:"order_id"`
	Outcome d.SettlementOutcome `json:"outcome"`
	Total   string              `json:"total"`
}

// caller pulls the member and browsing session set by the middleware.
func (h *CheckoutHandler) caller(w http.ResponseWriter, r *http.Request) (context.Context, context.CancelFunc, int64, string, bool) {
	memberID := memberIDFromContext(r.Context())
	if memberID == 0 {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing member authentication")
		return nil, nil, 0, "", false
	}
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	return ctx, cancel, memberID, sessionIDFromContext(r.Context()), true
}

func (h *CheckoutHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel, memberID, _, ok := h.caller(w, r)
	if !ok {
		return
	}
	defer cancel()

	cart, err := h.svc.Cart(ctx, memberID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, cart)
}

func (h *CheckoutHandler) GetShipping(w http.ResponseWriter, r *http.Request) {
	ctx, cancel, memberID, sessionID, ok := h.caller(w, r)
	if !ok {
		return
	}
	defer cancel()

	view, err := h.svc.ShippingInfo(ctx, memberID, sessionID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

func (h *CheckoutHandler) PostShipping(w http.ResponseWriter, r *http.Request) {
	ctx, cancel, memberID, sessionID, ok := h.caller(w, r)
	if !ok {
		return
	}
	defer cancel()

	var form service.ShippingForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if form.AddressID != 0 && form.Address != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "send either address_id or address, not both")
		return
	}

	next, err := h.svc.SubmitShipping(ctx, memberID, sessionID, form)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	redirect(w, next, stepPath(next, uuid.Nil), "", "")
}

func (h *CheckoutHandler) GetBilling(w http.ResponseWriter, r *http.Request) {
	ctx, cancel, memberID, sessionID, ok := h.caller(w, r)
	if !ok {
		return
	}
	defer cancel()

	view, err := h.svc.BillingInfo(ctx, memberID, sessionID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

func (h *CheckoutHandler) PostBilling(w http.ResponseWriter, r *http.Request) {
	ctx, cancel, memberID, sessionID, ok := h.caller(w, r)
	if !ok {
		return
	}
	defer cancel()

	var form service.BillingForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if form.CardID != 0 && form.Token != "" {
		respondError(w, http.StatusBadRequest, "invalid_request", "send either card_id or token, not both")
		return
	}

	next, err := h.svc.SubmitBilling(ctx, memberID, sessionID, form)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	redirect(w, next, stepPath(next, uuid.Nil), "", "")
}

func (h *CheckoutHandler) GetConfirm(w http.ResponseWriter, r *http.Request) {
	ctx, cancel, memberID, sessionID, ok := h.caller(w, r)
	if !ok {
		return
	}
	defer cancel()

	view, err := h.svc.Confirm(ctx, memberID, sessionID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

func (h *CheckoutHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel, memberID, sessionID, ok := h.caller(w, r)
	if !ok {
		return
	}
	defer cancel()

	var req PlaceOrderRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	for _, line := range req.Lines {
		if line.ProductID <= 0 || !line.Condition.Valid() || line.Quantity < 1 {
			respondError(w, http.StatusBadRequest, "invalid_line", "each line needs a product_id, a condition of new or used and a positive quantity")
			return
		}
	}

	res, err := h.svc.PlaceOrder(ctx, memberID, sessionID, req.Lines)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	location := stepPath(d.StepPlaced, res.Order.ID)
	w.Header().Set("Location", location)
	respondJSON(w, http.StatusSeeOther, PlaceOrderResponseDTO{
		OrderID: res.Order.ID,
		Outcome: res.Outcome,
		Total:   res.Order.Totals.Total.StringFixed(2),
	})
}

func (h *CheckoutHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel, memberID, _, ok := h.caller(w, r)
	if !ok {
		return
	}
	defer cancel()

	orderID, err := uuid.Parse(chi.URLParam(r, "order_id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_order_id", "order_id must be a UUID")
		return
	}

	order, err := h.svc.GetOrder(ctx, memberID, orderID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, order)
}
