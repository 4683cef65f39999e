package notification

import (
	"context"
	"fmt"
	"net/smtp"

	"github.com/smallbiznis/dukaan/internal/config"
)

// EmailProvider sends a plain summary mail to the customer on events that
// carry a customer_email payload key.
type EmailProvider struct {
	cfg config.SMTPConfig
}

func NewEmailProvider(cfg config.SMTPConfig) *EmailProvider {
	return &EmailProvider{cfg: cfg}
}

func (p *EmailProvider) Name() string { return "email" }

func (p *EmailProvider) Send(ctx context.Context, event Event) error {
	_ = ctx

	to, _ := event.Payload["customer_email"].(string)
	if to == "" {
		return nil
	}

	subject, body := render(event)
	if subject == "" {
		return nil
	}

	auth := smtp.PlainAuth("", p.cfg.Username, p.cfg.Password, p.cfg.Host)
	addr := fmt.Sprintf("%s:%d", p.cfg.Host, p.cfg.Port)

	msg := []byte(fmt.Sprintf("To: %s\r\nSubject: %s\r\n\r\n%s\r\n", to, subject, body))
	return smtp.SendMail(addr, auth, p.cfg.From, []string{to}, msg)
}

func render(event Event) (subject, body string) {
	name, _ := event.Payload["customer_name"].(string)
	if name == "" {
		name = "Customer"
	}

	switch event.Kind {
	case EventOrderCreated:
		subject = fmt.Sprintf("Order %v confirmed", event.Payload["order_number"])
		body = fmt.Sprintf("Hi %s,\n\nYour order %v for %v has been received.",
			name, event.Payload["order_number"], event.Payload["total"])
	case EventStatusChanged:
		subject = fmt.Sprintf("Order %v is %v", event.Payload["order_number"], event.Payload["status"])
		body = fmt.Sprintf("Hi %s,\n\nOrder %v is now %v.",
			name, event.Payload["order_number"], event.Payload["status"])
	case EventOrderCancelled:
		subject = fmt.Sprintf("Order %v cancelled", event.Payload["order_number"])
		body = fmt.Sprintf("Hi %s,\n\nOrder %v was cancelled. Reason: %v.",
			name, event.Payload["order_number"], event.Payload["reason"])
	case EventInvoiceSent:
		subject = fmt.Sprintf("Invoice %v", event.Payload["invoice_number"])
		body = fmt.Sprintf("Hi %s,\n\nInvoice %v for %v is due on %v.",
			name, event.Payload["invoice_number"], event.Payload["total"], event.Payload["due_date"])
	case EventPaymentReceived:
		subject = fmt.Sprintf("Payment received for %v", event.Payload["invoice_number"])
		body = fmt.Sprintf("Hi %s,\n\nWe received your payment of %v against invoice %v. Thank you.",
			name, event.Payload["amount"], event.Payload["invoice_number"])
	}
	return subject, body
}
