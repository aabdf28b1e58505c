package service

import (
	"context"
	"errors"
	"fmt"

	d "github.com/fjod/go_cart/checkout-service/domain"
	r "github.com/fjod/go_cart/checkout-service/internal/repository"
)

type ShippingView struct {
	Addresses []d.SavedAddress  `json:"addresses"`
	Current   *d.ShippingChoice `json:"current,omitempty"`
}

// ShippingForm carries either AddressID or Address.
type ShippingForm struct {
	AddressID int64     `json:"address_id,omitempty"`
	Address   *d.Address `json:"address,omitempty"`
	// Save stores an inline address on the member's account.
	Save            bool `json:"save,omitempty"`
	ReturnToConfirm bool `json:"return_to_confirm,omitempty"`
}

func (s *CheckoutServiceImpl) ShippingInfo(ctx context.Context, memberID int64, sessionID string) (*ShippingView, error) {
	if _, err := s.requireCart(ctx, memberID); err != nil {
		return nil, err
	}
	state, err := s.loadSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	addresses, err := s.repo.ListAddresses(ctx, memberID)
	if err != nil {
		return nil, fmt.Errorf("failed to list addresses: %w", err)
	}
	return &ShippingView{Addresses: addresses, Current: state.Shipping}, nil
}

// SubmitShipping records the shipping choice and returns the next step.
// Billing fields in the session are left alone.
func (s *CheckoutServiceImpl) SubmitShipping(ctx context.Context, memberID int64, sessionID string, form ShippingForm) (d.Step, error) {
	if _, err := s.requireCart(ctx, memberID); err != nil {
		return "", err
	}

	var (
		choice *d.ShippingChoice
		addr   d.Address
	)
	switch {
	case form.AddressID != 0:
		saved, err := s.repo.FindAddress(ctx, memberID, form.AddressID)
		if errors.Is(err, r.ErrNotFound) {
			return "", s.redirect(d.StepShippingInfo, ErrMissingShipping, "That address is no longer available.")
		}
		if err != nil {
			return "", fmt.Errorf("failed to load address: %w", err)
		}
		addr = saved.Address.Normalize()
		choice = d.SavedAddressRef(saved.ID)
	case form.Address != nil:
		addr = form.Address.Normalize()
		if !addr.Complete() {
			return "", s.redirect(d.StepShippingInfo, ErrMissingShipping, "Country and province are required.")
		}
		choice = d.InlineAddress(addr)
	default:
		return "", s.redirect(d.StepShippingInfo, ErrMissingShipping, "Please choose a shipping address.")
	}

	if _, err := s.repo.Rates(ctx, addr.ProvinceCode, addr.CountryCode); err != nil {
		if errors.Is(err, r.ErrNotFound) {
			return "", s.redirect(d.StepShippingInfo, ErrUnsupportedRegion, "We do not ship to that region.")
		}
		return "", fmt.Errorf("failed to load tax rates: %w", err)
	}

	if choice.Kind == d.ShippingInlineAddress && form.Save {
		id, err := s.repo.AddAddress(ctx, memberID, addr)
		if err != nil {
			return "", fmt.Errorf("failed to save address: %w", err)
		}
		choice = d.SavedAddressRef(id)
	}

	state, err := s.loadSession(ctx, sessionID)
	if err != nil {
		return "", err
	}
	state.Shipping = choice
	state.ProvinceCode = addr.ProvinceCode
	state.CountryCode = addr.CountryCode
	if err := s.sessions.Save(ctx, sessionID, state); err != nil {
		return "", fmt.Errorf("failed to save checkout session: %w", err)
	}

	if form.ReturnToConfirm {
		return d.StepConfirm, nil
	}
	return d.StepBillingInfo, nil
}
