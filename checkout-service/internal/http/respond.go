package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	d "github.com/fjod/go_cart/checkout-service/domain"
	"github.com/fjod/go_cart/checkout-service/internal/service"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

// RedirectResponse accompanies every 303 so API clients need not parse Location.
type RedirectResponse struct {
	Step     d.Step `json:"step"`
	Location string `json:"location"`
	Reason   string `json:"reason,omitempty"`
	Message  string `json:"message,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}

// stepPath maps a wizard step to its route. orderID is used only for Placed.
func stepPath(step d.Step, orderID uuid.UUID) string {
	switch step {
	case d.StepNoCart:
		return "/cart"
	case d.StepShippingInfo:
		return "/checkout/shipping"
	case d.StepBillingInfo:
		return "/checkout/billing"
	case d.StepConfirm:
		return "/checkout/confirm"
	case d.StepPlaced:
		return "/orders/" + orderID.String()
	default:
		return "/cart"
	}
}

func redirect(w http.ResponseWriter, step d.Step, location, reason, message string) {
	if reason != "" {
		location += "?" + url.Values{"reason": {reason}}.Encode()
	}
	w.Header().Set("Location", location)
	respondJSON(w, http.StatusSeeOther, RedirectResponse{
		Step:     step,
		Location: location,
		Reason:   reason,
		Message:  message,
	})
}

func handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var stepErr *service.StepError
	switch {
	case errors.As(err, &stepErr):
		redirect(w, stepErr.Step, stepPath(stepErr.Step, uuid.Nil), stepErr.Code, stepErr.Message)
	case errors.Is(err, service.ErrOrderNotFound):
		respondError(w, http.StatusNotFound, "not_found", "order not found")
	default:
		slog.ErrorContext(r.Context(), "checkout request failed",
			"path", r.URL.Path,
			"request_id", middleware.GetReqID(r.Context()),
			"error", err,
		)
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}
