package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"craft-invoice/backend/internal/domain/invoice"
)

// uniqueViolation is the Postgres error code raised when the
// (user_id, invoice_number) constraint rejects a duplicate number.
const uniqueViolation = "23505"

// numberAttempts bounds the read-increment-insert retry loop when concurrent
// creations for the same user collide on a number.
const numberAttempts = 3

const invoiceColumns = `id, user_id, invoice_number, invoice_type, status,
	customer_name, customer_phone, customer_address, customer_email,
	services, subtotal, tax_enabled, tax_percentage, tax_amount, discount, total,
	invoice_date, due_date, notes, pdf_url, created_at, updated_at`

// InvoiceStore runs all invoice queries against the pool. Every operation is
// scoped to the owning user; a miss surfaces as invoice.ErrNotFound. loc is
// the business timezone used to date duplicated invoices.
type InvoiceStore struct {
	db     *DB
	prefix string
	loc    *time.Location
}

func NewInvoiceStore(db *DB, prefix string, loc *time.Location) *InvoiceStore {
	if loc == nil {
		loc = time.Local
	}
	return &InvoiceStore{db: db, prefix: prefix, loc: loc}
}

// Create assigns the next sequential number and inserts the invoice. The
// read-latest-then-increment step can race with a concurrent create for the
// same user; the unique constraint catches the duplicate and the loop re-reads
// and retries.
func (s *InvoiceStore) Create(ctx context.Context, userID uuid.UUID, in invoice.CreateInput) (*invoice.Invoice, error) {
	var lastErr error
	for attempt := 0; attempt < numberAttempts; attempt++ {
		last, err := s.latestNumber(ctx, userID)
		if err != nil {
			return nil, err
		}
		number := invoice.NextNumber(s.prefix, last)

		inv, err := s.insert(ctx, userID, number, in)
		if err == nil {
			return inv, nil
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			lastErr = err
			continue
		}
		return nil, err
	}
	return nil, fmt.Errorf("invoice number conflict after %d attempts: %w", numberAttempts, lastErr)
}

func (s *InvoiceStore) latestNumber(ctx context.Context, userID uuid.UUID) (string, error) {
	var number string
	err := s.db.Pool.QueryRow(ctx,
		`SELECT invoice_number FROM invoices WHERE user_id = $1 ORDER BY created_at DESC LIMIT 1`,
		userID,
	).Scan(&number)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read latest invoice number: %w", err)
	}
	return number, nil
}

func (s *InvoiceStore) insert(ctx context.Context, userID uuid.UUID, number string, in invoice.CreateInput) (*invoice.Invoice, error) {
	inv := invoice.Invoice{
		UserID:      userID,
		Number:      number,
		Kind:        in.Kind,
		Status:      invoice.StatusDraft,
		Customer:    in.Customer,
		Services:    in.Items(),
		TaxEnabled:  in.TaxEnabled,
		TaxPercent:  in.TaxPercent,
		Discount:    in.Discount,
		InvoiceDate: in.InvoiceDate,
		DueDate:     in.DueDate,
		Notes:       in.Notes,
	}
	invoice.ApplyTotals(&inv)

	services, err := json.Marshal(inv.Services)
	if err != nil {
		return nil, fmt.Errorf("marshal services: %w", err)
	}

	row := s.db.Pool.QueryRow(ctx, `
		INSERT INTO invoices (
			user_id, invoice_number, invoice_type, status,
			customer_name, customer_phone, customer_address, customer_email,
			services, subtotal, tax_enabled, tax_percentage, tax_amount, discount, total,
			invoice_date, due_date, notes
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		RETURNING `+invoiceColumns,
		inv.UserID, inv.Number, inv.Kind, inv.Status,
		inv.Customer.Name, inv.Customer.Phone, inv.Customer.Address, inv.Customer.Email,
		services, inv.Subtotal, inv.TaxEnabled, inv.TaxPercent, inv.TaxAmount, inv.Discount, inv.Total,
		inv.InvoiceDate, inv.DueDate, inv.Notes,
	)
	return scanInvoice(row)
}

func (s *InvoiceStore) GetByID(ctx context.Context, userID, id uuid.UUID) (*invoice.Invoice, error) {
	row := s.db.Pool.QueryRow(ctx,
		`SELECT `+invoiceColumns+` FROM invoices WHERE id = $1 AND user_id = $2`,
		id, userID,
	)
	inv, err := scanInvoice(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, invoice.ErrNotFound
	}
	return inv, err
}

// ListByUser returns every invoice of the user, newest first. Filtering,
// sorting and pagination happen in memory over this list.
func (s *InvoiceStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]invoice.Invoice, error) {
	rows, err := s.db.Pool.Query(ctx,
		`SELECT `+invoiceColumns+` FROM invoices WHERE user_id = $1 ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	defer rows.Close()

	var out []invoice.Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *inv)
	}
	return out, rows.Err()
}

// Update overlays a partial update onto the stored row, recomputes the derived
// totals and persists the result.
func (s *InvoiceStore) Update(ctx context.Context, userID, id uuid.UUID, in invoice.UpdateInput) (*invoice.Invoice, error) {
	inv, err := s.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if err := in.Apply(inv); err != nil {
		return nil, err
	}
	invoice.ApplyTotals(inv)

	services, err := json.Marshal(inv.Services)
	if err != nil {
		return nil, fmt.Errorf("marshal services: %w", err)
	}

	row := s.db.Pool.QueryRow(ctx, `
		UPDATE invoices SET
			invoice_type = $3, status = $4,
			customer_name = $5, customer_phone = $6, customer_address = $7, customer_email = $8,
			services = $9, subtotal = $10, tax_enabled = $11, tax_percentage = $12,
			tax_amount = $13, discount = $14, total = $15,
			invoice_date = $16, due_date = $17, notes = $18,
			updated_at = now()
		WHERE id = $1 AND user_id = $2
		RETURNING `+invoiceColumns,
		id, userID,
		inv.Kind, inv.Status,
		inv.Customer.Name, inv.Customer.Phone, inv.Customer.Address, inv.Customer.Email,
		services, inv.Subtotal, inv.TaxEnabled, inv.TaxPercent,
		inv.TaxAmount, inv.Discount, inv.Total,
		inv.InvoiceDate, inv.DueDate, inv.Notes,
	)
	updated, err := scanInvoice(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, invoice.ErrNotFound
	}
	return updated, err
}

func (s *InvoiceStore) UpdateStatus(ctx context.Context, userID, id uuid.UUID, status invoice.Status) (*invoice.Invoice, error) {
	row := s.db.Pool.QueryRow(ctx,
		`UPDATE invoices SET status = $3, updated_at = now()
		 WHERE id = $1 AND user_id = $2
		 RETURNING `+invoiceColumns,
		id, userID, status,
	)
	inv, err := scanInvoice(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, invoice.ErrNotFound
	}
	return inv, err
}

// Delete removes the row permanently. There is no soft delete or audit trail.
func (s *InvoiceStore) Delete(ctx context.Context, userID, id uuid.UUID) error {
	tag, err := s.db.Pool.Exec(ctx,
		`DELETE FROM invoices WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete invoice: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return invoice.ErrNotFound
	}
	return nil
}

// Duplicate clones an invoice under a fresh number: today's date, status reset
// to draft, due date and stored PDF cleared, everything else copied.
func (s *InvoiceStore) Duplicate(ctx context.Context, userID, id uuid.UUID) (*invoice.Invoice, error) {
	src, err := s.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	return s.Create(ctx, userID, invoice.DuplicateInput(*src, time.Now().In(s.loc)))
}

func (s *InvoiceStore) Stats(ctx context.Context, userID uuid.UUID) (*invoice.Stats, error) {
	var st invoice.Stats
	err := s.db.Pool.QueryRow(ctx, `
		SELECT
			COUNT(*) FILTER (WHERE invoice_type = 'invoice'),
			COUNT(*) FILTER (WHERE invoice_type = 'estimate'),
			COUNT(*) FILTER (WHERE status = 'draft'),
			COUNT(*) FILTER (WHERE status = 'sent'),
			COUNT(*) FILTER (WHERE status = 'paid'),
			COALESCE(SUM(total) FILTER (WHERE invoice_type = 'invoice' AND status = 'paid'), 0),
			COALESCE(SUM(total) FILTER (WHERE invoice_type = 'invoice' AND status IN ('sent', 'pending', 'overdue')), 0)
		FROM invoices
		WHERE user_id = $1`,
		userID,
	).Scan(
		&st.TotalInvoices, &st.TotalEstimates,
		&st.DraftCount, &st.SentCount, &st.PaidCount,
		&st.TotalRevenue, &st.OutstandingDue,
	)
	if err != nil {
		return nil, fmt.Errorf("invoice stats: %w", err)
	}
	return &st, nil
}

func (s *InvoiceStore) SetPDFURL(ctx context.Context, userID, id uuid.UUID, url string) error {
	tag, err := s.db.Pool.Exec(ctx,
		`UPDATE invoices SET pdf_url = $3, updated_at = now() WHERE id = $1 AND user_id = $2`,
		id, userID, url,
	)
	if err != nil {
		return fmt.Errorf("set pdf url: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return invoice.ErrNotFound
	}
	return nil
}

func scanInvoice(row pgx.Row) (*invoice.Invoice, error) {
	var (
		inv      invoice.Invoice
		services []byte
	)
	err := row.Scan(
		&inv.ID, &inv.UserID, &inv.Number, &inv.Kind, &inv.Status,
		&inv.Customer.Name, &inv.Customer.Phone, &inv.Customer.Address, &inv.Customer.Email,
		&services, &inv.Subtotal, &inv.TaxEnabled, &inv.TaxPercent, &inv.TaxAmount,
		&inv.Discount, &inv.Total,
		&inv.InvoiceDate, &inv.DueDate, &inv.Notes, &inv.PDFURL,
		&inv.CreatedAt, &inv.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(services, &inv.Services); err != nil {
		return nil, fmt.Errorf("unmarshal services: %w", err)
	}
	return &inv, nil
}
