package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

type RouterConfig struct {
	Checkout       *CheckoutHandler
	JWTSecret      []byte
	SecureCookies  bool
	RequestTimeout time.Duration
	// Metrics serves /metrics when set.
	Metrics http.Handler
	Logger  *slog.Logger
}

func NewRouter(cfg RouterConfig) http.Handler {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(RequestIDMiddleware)
	r.Use(RequestLogger(log))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(timeout))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if cfg.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", cfg.Metrics)
	}

	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(cfg.JWTSecret))
		r.Use(SessionMiddleware(cfg.SecureCookies))

		r.Get("/cart", cfg.Checkout.GetCart)
		r.Get("/orders/{order_id}", cfg.Checkout.GetOrder)

		r.Route("/checkout", func(r chi.Router) {
			r.Get("/shipping", cfg.Checkout.GetShipping)
			r.Post("/shipping", cfg.Checkout.PostShipping)
			r.Get("/billing", cfg.Checkout.GetBilling)
			r.Post("/billing", cfg.Checkout.PostBilling)
			r.Get("/confirm", cfg.Checkout.GetConfirm)
			r.Post("/place", cfg.Checkout.PlaceOrder)
		})
	})

	return otelhttp.NewHandler(r, "checkout-http")
}
