package service

import (
	"fmt"
	"log/slog"

	d "github.com/fjod/go_cart/checkout-service/domain"
	"github.com/google/uuid"
)

// placement tracks one place-order attempt through its states.
type placement struct {
	state d.PlacementState
	log   *slog.Logger
}

func (s *CheckoutServiceImpl) newPlacement(memberID int64) *placement {
	return &placement{
		state: d.PlacementValidating,
		log:   s.log.With("placement_id", uuid.NewString(), "member_id", memberID),
	}
}

func (p *placement) advance(to d.PlacementState) error {
	if !d.CanTransitionTo(p.state, to) {
		return fmt.Errorf("%w: %s -> %s", IllegalTransitionError, p.state, to)
	}
	p.enter(to)
	return nil
}

func (p *placement) enter(to d.PlacementState) {
	p.log.Info("placement state changed", "from", p.state.String(), "to", to.String())
	p.state = to
}

// abortUnlessTerminal closes out an attempt that stopped before persisting.
func (p *placement) abortUnlessTerminal() {
	if p.state.IsTerminal() {
		return
	}
	if d.CanTransitionTo(p.state, d.PlacementAborted) {
		p.enter(d.PlacementAborted)
		return
	}
	p.log.Error("placement left in non-terminal state", "state", p.state.String())
}
