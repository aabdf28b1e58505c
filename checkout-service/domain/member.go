package domain

type Member struct {
	ID    int64
	Email string
	Name  string
	// PaymentCustomerID is the gateway customer reference. Empty when the
	// member has never saved a card.
	PaymentCustomerID string
}

type SavedCard struct {
	ID            int64  `json:"id"`
	MemberID      int64  `json:"member_id"`
	GatewayCardID string `json:"-"`
	Last4         string `json:"last4"`
}
