package invoice

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Kind distinguishes billable invoices from non-binding estimates.
type Kind string

const (
	KindInvoice  Kind = "invoice"
	KindEstimate Kind = "estimate"
)

func (k Kind) Valid() bool {
	return k == KindInvoice || k == KindEstimate
}

// Status is the invoice lifecycle state. Every invoice starts as draft.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusSent      Status = "sent"
	StatusPaid      Status = "paid"
	StatusPending   Status = "pending"
	StatusOverdue   Status = "overdue"
	StatusCancelled Status = "cancelled"
)

func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusSent, StatusPaid, StatusPending, StatusOverdue, StatusCancelled:
		return true
	}
	return false
}

// Customer is the bill-to contact. Name and Phone are required,
// Address and Email are optional.
type Customer struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address,omitempty"`
	Email   string `json:"email,omitempty"`
}

// ServiceItem is one billed line. Amount is always derived as quantity×rate
// and never taken from the client.
type ServiceItem struct {
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	Rate        decimal.Decimal `json:"rate"`
	Amount      decimal.Decimal `json:"amount"`
}

type Invoice struct {
	ID     uuid.UUID `json:"id"`
	UserID uuid.UUID `json:"user_id"`
	Number string    `json:"invoice_number"`
	Kind   Kind      `json:"invoice_type"`
	Status Status    `json:"status"`

	Customer Customer      `json:"customer"`
	Services []ServiceItem `json:"services"`

	Subtotal   decimal.Decimal `json:"subtotal"`
	TaxEnabled bool            `json:"tax_enabled"`
	TaxPercent decimal.Decimal `json:"tax_percentage"`
	TaxAmount  decimal.Decimal `json:"tax_amount"`
	Discount   decimal.Decimal `json:"discount"`
	Total      decimal.Decimal `json:"total"`

	InvoiceDate time.Time  `json:"invoice_date"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	Notes       string     `json:"notes,omitempty"`
	PDFURL      string     `json:"pdf_url,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Stats are the dashboard aggregates for one user.
type Stats struct {
	TotalInvoices  int64           `json:"total_invoices"`
	TotalEstimates int64           `json:"total_estimates"`
	DraftCount     int64           `json:"draft_count"`
	SentCount      int64           `json:"sent_count"`
	PaidCount      int64           `json:"paid_count"`
	TotalRevenue   decimal.Decimal `json:"total_revenue"`
	OutstandingDue decimal.Decimal `json:"outstanding_due"`
}
