package config

const defaultPaymentTermsDays = 30

// BillingConfig controls invoice settlement policy.
type BillingConfig struct {
	// PaymentTermsDays is the default number of days between issue and due date.
	PaymentTermsDays int
	// AllowOverpayment accepts payments exceeding the amount due. The excess is
	// recorded against the invoice rather than clamped or refunded.
	AllowOverpayment bool
}

func (c BillingConfig) TermsDays() int {
	if c.PaymentTermsDays <= 0 {
		return defaultPaymentTermsDays
	}
	return c.PaymentTermsDays
}
