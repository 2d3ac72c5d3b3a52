package pdf

import "craft-invoice/backend/internal/domain/invoice"

// Business is the issuer block printed on every document.
type Business struct {
	Name    string
	Phone   string
	Email   string
	Address string
}

type Generator interface {
	Generate(inv invoice.Invoice) ([]byte, error)
}
