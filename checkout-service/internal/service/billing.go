package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	d "github.com/fjod/go_cart/checkout-service/domain"
	r "github.com/fjod/go_cart/checkout-service/internal/repository"
)

type BillingView struct {
	Cards   []d.SavedCard    `json:"cards"`
	Current *d.BillingChoice `json:"current,omitempty"`
}

// BillingForm carries either CardID or Token.
type BillingForm struct {
	CardID int64  `json:"card_id,omitempty"`
	Token  string `json:"token,omitempty"`
	// Save turns the token into a saved card through the gateway.
	Save bool `json:"save,omitempty"`
}

func (s *CheckoutServiceImpl) BillingInfo(ctx context.Context, memberID int64, sessionID string) (*BillingView, error) {
	if _, err := s.requireCart(ctx, memberID); err != nil {
		return nil, err
	}
	state, err := s.loadSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if _, err := s.resolveShipping(ctx, memberID, state); err != nil {
		return nil, err
	}
	cards, err := s.repo.ListCards(ctx, memberID)
	if err != nil {
		return nil, fmt.Errorf("failed to list cards: %w", err)
	}
	return &BillingView{Cards: cards, Current: state.Billing}, nil
}

// SubmitBilling records the payment method. Confirm always follows billing.
// Shipping fields in the session are left alone.
func (s *CheckoutServiceImpl) SubmitBilling(ctx context.Context, memberID int64, sessionID string, form BillingForm) (d.Step, error) {
	if _, err := s.requireCart(ctx, memberID); err != nil {
		return "", err
	}
	state, err := s.loadSession(ctx, sessionID)
	if err != nil {
		return "", err
	}
	if _, err := s.resolveShipping(ctx, memberID, state); err != nil {
		return "", err
	}

	token := strings.TrimSpace(form.Token)
	var choice *d.BillingChoice
	switch {
	case form.CardID != 0:
		card, err := s.repo.FindCard(ctx, memberID, form.CardID)
		if errors.Is(err, r.ErrNotFound) {
			return "", s.redirect(d.StepBillingInfo, ErrMissingBilling, "That card is no longer available.")
		}
		if err != nil {
			return "", fmt.Errorf("failed to load card: %w", err)
		}
		choice = d.SavedCardRef(card.ID)
	case token != "" && form.Save:
		id, err := s.saveCard(ctx, memberID, token)
		if err != nil {
			return "", err
		}
		choice = d.SavedCardRef(id)
	case token != "":
		choice = d.PaymentToken(token)
	default:
		return "", s.redirect(d.StepBillingInfo, ErrMissingBilling, "Please choose a payment method.")
	}

	state.Billing = choice
	if err := s.sessions.Save(ctx, sessionID, state); err != nil {
		return "", fmt.Errorf("failed to save checkout session: %w", err)
	}

	return d.StepConfirm, nil
}

func (s *CheckoutServiceImpl) saveCard(ctx context.Context, memberID int64, token string) (int64, error) {
	member, err := s.repo.GetMember(ctx, memberID)
	if err != nil {
		return 0, fmt.Errorf("failed to load member: %w", err)
	}
	ref, err := s.createCard(ctx, member, token)
	if err != nil {
		return 0, s.paymentRedirect(memberID, "create_card", err)
	}
	id, err := s.repo.AddCard(ctx, &d.SavedCard{
		MemberID:      memberID,
		GatewayCardID: ref.CardID,
		Last4:         ref.Last4,
	})
	if err != nil {
		// The gateway already holds the card; it has to be removed there by hand.
		s.log.ErrorContext(ctx, "gateway card created but not stored",
			"member_id", memberID,
			"gateway_card_id", ref.CardID,
			"error", err,
		)
		return 0, fmt.Errorf("failed to save card: %w", err)
	}
	return id, nil
}
