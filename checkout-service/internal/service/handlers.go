package service

import (
	"time"

	"github.com/fjod/go_cart/checkout-service/internal/notification"
	"github.com/fjod/go_cart/checkout-service/internal/payment"
)

const defaultTimeout = 5 * time.Second

type PaymentHandler struct {
	gateway payment.Gateway
	timeout time.Duration
}

func NewPaymentHandler(gateway payment.Gateway, timeout time.Duration) *PaymentHandler {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &PaymentHandler{
		gateway: gateway,
		timeout: timeout,
	}
}

type NotificationHandler struct {
	notifier notification.Notifier
	timeout  time.Duration
}

func NewNotificationHandler(notifier notification.Notifier, timeout time.Duration) *NotificationHandler {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &NotificationHandler{
		notifier: notifier,
		timeout:  timeout,
	}
}
