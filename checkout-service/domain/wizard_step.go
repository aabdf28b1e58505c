package domain

// Step is a checkout wizard position. Every redirect issued by the wizard
// targets one of these.
type Step string

const (
	StepNoCart       Step = "NO_CART"
	StepShippingInfo Step = "SHIPPING_INFO"
	StepBillingInfo  Step = "BILLING_INFO"
	StepConfirm      Step = "CONFIRM"
	StepPlaced       Step = "PLACED"
)

func (s Step) String() string {
	return string(s)
}
