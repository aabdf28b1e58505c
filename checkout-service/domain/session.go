package domain

type ShippingKind string

const (
	ShippingSavedAddress  ShippingKind = "saved_address"
	ShippingInlineAddress ShippingKind = "inline_address"
)

// ShippingChoice is either a reference to a saved address or an inline
// address snapshot. Build it with SavedAddressRef or InlineAddress.
type ShippingChoice struct {
	Kind      ShippingKind `json:"kind"`
	AddressID int64        `json:"address_id,omitempty"`
	Inline    *Address     `json:"inline,omitempty"`
}

func SavedAddressRef(id int64) *ShippingChoice {
	return &ShippingChoice{Kind: ShippingSavedAddress, AddressID: id}
}

func InlineAddress(a Address) *ShippingChoice {
	return &ShippingChoice{Kind: ShippingInlineAddress, Inline: &a}
}

type BillingKind string

const (
	BillingSavedCard    BillingKind = "saved_card"
	BillingPaymentToken BillingKind = "payment_token"
)

// BillingChoice is either a saved card reference or a one-off gateway token.
type BillingChoice struct {
	Kind   BillingKind `json:"kind"`
	CardID int64       `json:"card_id,omitempty"`
	Token  string      `json:"token,omitempty"`
}

func SavedCardRef(id int64) *BillingChoice {
	return &BillingChoice{Kind: BillingSavedCard, CardID: id}
}

func PaymentToken(token string) *BillingChoice {
	return &BillingChoice{Kind: BillingPaymentToken, Token: token}
}

// CheckoutSessionState is the not-yet-committed order held between wizard steps.
type CheckoutSessionState struct {
	Shipping     *ShippingChoice `json:"shipping,omitempty"`
	ProvinceCode string          `json:"province_code,omitempty"`
	CountryCode  string          `json:"country_code,omitempty"`
	Billing      *BillingChoice  `json:"billing,omitempty"`
}
