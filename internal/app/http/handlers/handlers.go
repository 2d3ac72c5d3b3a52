package handlers

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"craft-invoice/backend/internal/domain/invoice"
	"craft-invoice/backend/internal/domain/invoice/pdf"
)

// InvoiceStore is the persistence surface the handlers depend on. Implemented
// by postgres.InvoiceStore; faked in tests.
type InvoiceStore interface {
	Create(ctx context.Context, userID uuid.UUID, in invoice.CreateInput) (*invoice.Invoice, error)
	GetByID(ctx context.Context, userID, id uuid.UUID) (*invoice.Invoice, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]invoice.Invoice, error)
	Update(ctx context.Context, userID, id uuid.UUID, in invoice.UpdateInput) (*invoice.Invoice, error)
	UpdateStatus(ctx context.Context, userID, id uuid.UUID, status invoice.Status) (*invoice.Invoice, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
	Duplicate(ctx context.Context, userID, id uuid.UUID) (*invoice.Invoice, error)
	Stats(ctx context.Context, userID uuid.UUID) (*invoice.Stats, error)
	SetPDFURL(ctx context.Context, userID, id uuid.UUID, url string) error
}

// ObjectStorage persists rendered PDFs and returns their public URL.
type ObjectStorage interface {
	Upload(ctx context.Context, object, contentType string, data []byte) (string, error)
}

type Handlers struct {
	Store   InvoiceStore
	PDF     pdf.Generator
	Storage ObjectStorage
	Loc     *time.Location
	Log     zerolog.Logger
}

// New builds the handler set. loc is the business timezone used when a
// create payload omits the invoice date.
func New(store InvoiceStore, gen pdf.Generator, storage ObjectStorage, loc *time.Location, log zerolog.Logger) *Handlers {
	if loc == nil {
		loc = time.Local
	}
	return &Handlers{
		Store:   store,
		PDF:     gen,
		Storage: storage,
		Loc:     loc,
		Log:     log,
	}
}
