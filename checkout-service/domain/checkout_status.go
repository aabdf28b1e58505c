package domain

// PlacementState tracks how far a single place-order attempt got.
type PlacementState string

const (
	PlacementValidating        PlacementState = "VALIDATING"
	PlacementInventoryChecking PlacementState = "INVENTORY_CHECKING"
	PlacementCharging          PlacementState = "CHARGING"
	PlacementPersisting        PlacementState = "PERSISTING"
	PlacementRefunding         PlacementState = "REFUNDING"
	PlacementCommitted         PlacementState = "COMMITTED"
	PlacementAborted           PlacementState = "ABORTED"
)

func (s PlacementState) IsTerminal() bool {
	return s == PlacementCommitted || s == PlacementAborted
}

// String representation (for logging)
func (s PlacementState) String() string {
	return string(s)
}

var placementTransitions = map[PlacementState][]PlacementState{
	PlacementValidating:        {PlacementInventoryChecking, PlacementAborted},
	PlacementInventoryChecking: {PlacementCharging, PlacementAborted},
	PlacementCharging:          {PlacementPersisting, PlacementAborted},
	PlacementPersisting:        {PlacementCommitted, PlacementRefunding},
	PlacementRefunding:         {PlacementAborted},
}

// CanTransitionTo reports whether a placement may move from one state to the next.
// A failed save never aborts directly; it has to pass through Refunding first.
func CanTransitionTo(from, to PlacementState) bool {
	for _, next := range placementTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// SettlementOutcome is the result of the persist-or-refund step.
type SettlementOutcome string

const (
	SettlementCommitted            SettlementOutcome = "COMMITTED"
	SettlementRefundedAfterFailure SettlementOutcome = "REFUNDED_AFTER_FAILURE"
	SettlementRefundFailedCritical SettlementOutcome = "REFUND_FAILED_CRITICAL"
)

func (o SettlementOutcome) String() string {
	return string(o)
}
