package invoice

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when an invoice lookup scoped to a user misses.
var ErrNotFound = errors.New("invoice not found")

// ValidationError carries per-field messages for a rejected payload.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) add(field, msg string) {
	if e.Fields == nil {
		e.Fields = map[string]string{}
	}
	e.Fields[field] = msg
}

func (e *ValidationError) orNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

// ServiceInput is one submitted line item. Amount is ignored on input.
type ServiceInput struct {
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	Rate        decimal.Decimal `json:"rate"`
}

// CreateInput is a full invoice payload. Number, status and totals are
// server-assigned regardless of what the client sends.
type CreateInput struct {
	Kind        Kind
	Customer    Customer
	Services    []ServiceInput
	TaxEnabled  bool
	TaxPercent  decimal.Decimal
	Discount    decimal.Decimal
	InvoiceDate time.Time
	DueDate     *time.Time
	Notes       string
}

// Normalize trims free-text fields and fills defaults: kind invoice, invoice
// date today, quantity 1 for lines that omit it.
func (in *CreateInput) Normalize() {
	if in.Kind == "" {
		in.Kind = KindInvoice
	}
	in.Customer.Name = strings.TrimSpace(in.Customer.Name)
	in.Customer.Phone = strings.TrimSpace(in.Customer.Phone)
	in.Customer.Address = strings.TrimSpace(in.Customer.Address)
	in.Customer.Email = strings.TrimSpace(in.Customer.Email)
	in.Notes = strings.TrimSpace(in.Notes)
	for i := range in.Services {
		in.Services[i].Description = strings.TrimSpace(in.Services[i].Description)
		if in.Services[i].Quantity.IsZero() {
			in.Services[i].Quantity = decimal.NewFromInt(1)
		}
	}
	if in.InvoiceDate.IsZero() {
		in.InvoiceDate = DateOf(time.Now())
	}
}

// Validate checks the payload and returns a *ValidationError listing every
// offending field, or nil.
func (in *CreateInput) Validate() error {
	var verr ValidationError
	if !in.Kind.Valid() {
		verr.add("invoice_type", "must be invoice or estimate")
	}
	if in.Customer.Name == "" {
		verr.add("customer.name", "is required")
	}
	if in.Customer.Phone == "" {
		verr.add("customer.phone", "is required")
	}
	if len(in.Services) == 0 {
		verr.add("services", "at least one service is required")
	}
	for i, s := range in.Services {
		if s.Description == "" {
			verr.add(fmt.Sprintf("services[%d].description", i), "is required")
		}
		if !s.Rate.IsPositive() {
			verr.add(fmt.Sprintf("services[%d].rate", i), "must be positive")
		}
		if !s.Quantity.IsPositive() {
			verr.add(fmt.Sprintf("services[%d].quantity", i), "must be positive")
		}
	}
	if in.TaxPercent.IsNegative() {
		verr.add("tax_percentage", "must not be negative")
	}
	if in.Discount.IsNegative() {
		verr.add("discount", "must not be negative")
	}
	if in.DueDate != nil && in.DueDate.Before(in.InvoiceDate) {
		verr.add("due_date", "must not be before the invoice date")
	}
	return verr.orNil()
}

// Items converts the submitted lines into ServiceItems with derived amounts.
func (in *CreateInput) Items() []ServiceItem {
	items := make([]ServiceItem, 0, len(in.Services))
	for _, s := range in.Services {
		items = append(items, ServiceItem{
			Description: s.Description,
			Quantity:    s.Quantity,
			Rate:        s.Rate,
			Amount:      s.Quantity.Mul(s.Rate).Round(2),
		})
	}
	return items
}

// UpdateInput is a partial update: nil fields are left unchanged. Services,
// when present, replaces the whole line set. ClearDueDate removes the due
// date regardless of DueDate.
type UpdateInput struct {
	Kind         *Kind
	Status       *Status
	Customer     *Customer
	Services     []ServiceInput
	TaxEnabled   *bool
	TaxPercent   *decimal.Decimal
	Discount     *decimal.Decimal
	InvoiceDate  *time.Time
	DueDate      *time.Time
	ClearDueDate bool
	Notes        *string
}

// Apply overlays the update onto inv and revalidates the result. Derived
// totals are recomputed by the caller via ApplyTotals.
func (in *UpdateInput) Apply(inv *Invoice) error {
	var verr ValidationError
	if in.Kind != nil {
		if !in.Kind.Valid() {
			verr.add("invoice_type", "must be invoice or estimate")
		} else {
			inv.Kind = *in.Kind
		}
	}
	if in.Status != nil {
		if !in.Status.Valid() {
			verr.add("status", "unknown status")
		} else {
			inv.Status = *in.Status
		}
	}
	if in.Customer != nil {
		c := *in.Customer
		c.Name = strings.TrimSpace(c.Name)
		c.Phone = strings.TrimSpace(c.Phone)
		if c.Name == "" {
			verr.add("customer.name", "is required")
		}
		if c.Phone == "" {
			verr.add("customer.phone", "is required")
		}
		inv.Customer = c
	}
	if in.Services != nil {
		if len(in.Services) == 0 {
			verr.add("services", "at least one service is required")
		}
		items := make([]ServiceItem, 0, len(in.Services))
		for i, s := range in.Services {
			s.Description = strings.TrimSpace(s.Description)
			if s.Quantity.IsZero() {
				s.Quantity = decimal.NewFromInt(1)
			}
			if s.Description == "" {
				verr.add(fmt.Sprintf("services[%d].description", i), "is required")
			}
			if !s.Rate.IsPositive() {
				verr.add(fmt.Sprintf("services[%d].rate", i), "must be positive")
			}
			if !s.Quantity.IsPositive() {
				verr.add(fmt.Sprintf("services[%d].quantity", i), "must be positive")
			}
			items = append(items, ServiceItem{Description: s.Description, Quantity: s.Quantity, Rate: s.Rate})
		}
		inv.Services = items
	}
	if in.TaxEnabled != nil {
		inv.TaxEnabled = *in.TaxEnabled
	}
	if in.TaxPercent != nil {
		if in.TaxPercent.IsNegative() {
			verr.add("tax_percentage", "must not be negative")
		} else {
			inv.TaxPercent = *in.TaxPercent
		}
	}
	if in.Discount != nil {
		if in.Discount.IsNegative() {
			verr.add("discount", "must not be negative")
		} else {
			inv.Discount = *in.Discount
		}
	}
	if in.InvoiceDate != nil {
		inv.InvoiceDate = *in.InvoiceDate
	}
	if in.ClearDueDate {
		inv.DueDate = nil
	} else if in.DueDate != nil {
		inv.DueDate = in.DueDate
	}
	if inv.DueDate != nil && inv.DueDate.Before(inv.InvoiceDate) {
		verr.add("due_date", "must not be before the invoice date")
	}
	if in.Notes != nil {
		inv.Notes = strings.TrimSpace(*in.Notes)
	}
	return verr.orNil()
}
