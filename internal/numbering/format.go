package numbering

import (
	"fmt"
	"time"
)

// Kind identifies a numbered document series.
type Kind string

const (
	KindOrder   Kind = "order"
	KindInvoice Kind = "invoice"
)

func (k Kind) valid() bool {
	return k == KindOrder || k == KindInvoice
}

// Format renders a human-readable document number for a series.
//
// This function is PURE:
// - No side effects
// - No DB access
// - Fully deterministic
//
// Orders use ORD/{YY}{MM}/{seq:04d}; invoices use INV/{YY}{MM}{DD}/{seq:04d}.
// The date segment reflects issue time only; the sequence is cumulative per
// owner and never resets with the calendar.
func Format(kind Kind, at time.Time, seq int64) (string, error) {
	if !kind.valid() {
		return "", fmt.Errorf("unknown document kind %q", kind)
	}
	if seq <= 0 {
		return "", fmt.Errorf("invalid document sequence: %d", seq)
	}

	switch kind {
	case KindInvoice:
		return fmt.Sprintf("INV/%s/%04d", at.Format("060102"), seq), nil
	default:
		return fmt.Sprintf("ORD/%s/%04d", at.Format("0601"), seq), nil
	}
}
