package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"craft-invoice/backend/internal/app/http/middleware"
	"craft-invoice/backend/internal/domain/invoice"
)

// memStore is an in-memory InvoiceStore sharing the numbering and totals
// logic with the real one.
type memStore struct {
	mu       sync.Mutex
	prefix   string
	invoices map[uuid.UUID]*invoice.Invoice
	lastNum  map[uuid.UUID]string
}

func newMemStore() *memStore {
	return &memStore{
		prefix:   "CI",
		invoices: map[uuid.UUID]*invoice.Invoice{},
		lastNum:  map[uuid.UUID]string{},
	}
}

func (s *memStore) Create(_ context.Context, userID uuid.UUID, in invoice.CreateInput) (*invoice.Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	number := invoice.NextNumber(s.prefix, s.lastNum[userID])
	s.lastNum[userID] = number

	inv := &invoice.Invoice{
		ID:          uuid.New(),
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
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	invoice.ApplyTotals(inv)
	s.invoices[inv.ID] = inv
	return inv, nil
}

func (s *memStore) GetByID(_ context.Context, userID, id uuid.UUID) (*invoice.Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	inv, ok := s.invoices[id]
	if !ok || inv.UserID != userID {
		return nil, invoice.ErrNotFound
	}
	cp := *inv
	return &cp, nil
}

func (s *memStore) ListByUser(_ context.Context, userID uuid.UUID) ([]invoice.Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []invoice.Invoice
	for _, inv := range s.invoices {
		if inv.UserID == userID {
			out = append(out, *inv)
		}
	}
	return out, nil
}

func (s *memStore) Update(ctx context.Context, userID, id uuid.UUID, in invoice.UpdateInput) (*invoice.Invoice, error) {
	inv, err := s.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if err := in.Apply(inv); err != nil {
		return nil, err
	}
	invoice.ApplyTotals(inv)
	s.mu.Lock()
	s.invoices[id] = inv
	s.mu.Unlock()
	cp := *inv
	return &cp, nil
}

func (s *memStore) UpdateStatus(ctx context.Context, userID, id uuid.UUID, status invoice.Status) (*invoice.Invoice, error) {
	inv, err := s.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	inv.Status = status
	s.mu.Lock()
	s.invoices[id] = inv
	s.mu.Unlock()
	cp := *inv
	return &cp, nil
}

func (s *memStore) Delete(_ context.Context, userID, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	inv, ok := s.invoices[id]
	if !ok || inv.UserID != userID {
		return invoice.ErrNotFound
	}
	delete(s.invoices, id)
	return nil
}

func (s *memStore) Duplicate(ctx context.Context, userID, id uuid.UUID) (*invoice.Invoice, error) {
	src, err := s.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	return s.Create(ctx, userID, invoice.DuplicateInput(*src, time.Now()))
}

func (s *memStore) Stats(_ context.Context, userID uuid.UUID) (*invoice.Stats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var st invoice.Stats
	for _, inv := range s.invoices {
		if inv.UserID != userID {
			continue
		}
		switch inv.Kind {
		case invoice.KindInvoice:
			st.TotalInvoices++
		case invoice.KindEstimate:
			st.TotalEstimates++
		}
		switch inv.Status {
		case invoice.StatusDraft:
			st.DraftCount++
		case invoice.StatusSent:
			st.SentCount++
		case invoice.StatusPaid:
			st.PaidCount++
		}
		if inv.Kind == invoice.KindInvoice && inv.Status == invoice.StatusPaid {
			st.TotalRevenue = st.TotalRevenue.Add(inv.Total)
		}
	}
	return &st, nil
}

func (s *memStore) SetPDFURL(_ context.Context, userID, id uuid.UUID, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	inv, ok := s.invoices[id]
	if !ok || inv.UserID != userID {
		return invoice.ErrNotFound
	}
	inv.PDFURL = url
	return nil
}

type memStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func (s *memStorage) Upload(_ context.Context, object, _ string, data []byte) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.objects == nil {
		s.objects = map[string][]byte{}
	}
	s.objects[object] = data
	return "https://project.supabase.co/storage/v1/object/public/invoices/" + object, nil
}

type stubGenerator struct{}

func (stubGenerator) Generate(invoice.Invoice) ([]byte, error) {
	return []byte("%PDF-1.3 stub"), nil
}

type stubVerifier struct{ subject string }

func (v stubVerifier) Verify(context.Context, string) (string, error) {
	return v.subject, nil
}

// testZone sits well east of UTC so date defaulting against the wrong clock
// would show up as an off-by-one day.
var testZone = time.FixedZone("IST", 5*3600+1800)

type envelope struct {
	Success bool              `json:"success"`
	Data    json.RawMessage   `json:"data"`
	Message string            `json:"message"`
	Error   string            `json:"error"`
	Fields  map[string]string `json:"fields"`
}

type fixture struct {
	userID  uuid.UUID
	store   *memStore
	storage *memStorage
	router  http.Handler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		userID:  uuid.New(),
		store:   newMemStore(),
		storage: &memStorage{},
	}
	h := New(f.store, stubGenerator{}, f.storage, testZone, zerolog.New(os.Stderr))

	r := chi.NewRouter()
	r.Route("/api/invoices", func(r chi.Router) {
		r.Use(middleware.Auth(stubVerifier{subject: f.userID.String()}))
		r.Get("/", h.List)
		r.Get("/stats", h.Stats)
		r.Post("/", h.Create)
		r.Get("/{id}", h.Get)
		r.Put("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
		r.Post("/{id}/duplicate", h.Duplicate)
		r.Put("/{id}/status", h.UpdateStatus)
		r.Get("/{id}/pdf", h.DownloadPDF)
		r.Post("/{id}/pdf/upload", h.UploadPDF)
	})
	f.router = r
	return f
}

func (f *fixture) do(t *testing.T, method, path string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Authorization", "Bearer test-token")
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	var env envelope
	if ct := rec.Header().Get("Content-Type"); ct == "application/json" {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec, env
}

func validCreate() map[string]interface{} {
	return map[string]interface{}{
		"invoice_type": "invoice",
		"customer": map[string]string{
			"name":  "Rajan Traders",
			"phone": "9876543210",
		},
		"services": []map[string]interface{}{
			{"description": "Pipe fitting", "quantity": "2", "rate": "450"},
			{"description": "Labour", "quantity": "1", "rate": "1200"},
		},
		"tax_enabled":    true,
		"tax_percentage": "18",
		"discount":       "100",
		"invoice_date":   "2026-01-10",
		"notes":          "thank you",
	}
}

func (f *fixture) create(t *testing.T, body map[string]interface{}) invoice.Invoice {
	t.Helper()
	rec, env := f.do(t, http.MethodPost, "/api/invoices", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var inv invoice.Invoice
	require.NoError(t, json.Unmarshal(env.Data, &inv))
	return inv
}

func TestCreateInvoice(t *testing.T) {
	f := newFixture(t)

	inv := f.create(t, validCreate())
	require.Equal(t, "CI-001", inv.Number)
	require.Equal(t, invoice.StatusDraft, inv.Status)
	require.Equal(t, f.userID, inv.UserID)

	// 2*450 + 1*1200 = 2100, plus 18% tax 378, minus 100 discount.
	require.Equal(t, "2100", inv.Subtotal.String())
	require.Equal(t, "378", inv.TaxAmount.String())
	require.Equal(t, "2378", inv.Total.String())

	second := f.create(t, validCreate())
	require.Equal(t, "CI-002", second.Number)
}

func TestCreateInvoiceDefaultsDateToBusinessZone(t *testing.T) {
	f := newFixture(t)

	body := validCreate()
	delete(body, "invoice_date")

	inv := f.create(t, body)
	require.Equal(t, invoice.DateOf(time.Now().In(testZone)), inv.InvoiceDate)
}

func TestCreateInvoiceValidation(t *testing.T) {
	f := newFixture(t)

	body := validCreate()
	body["customer"] = map[string]string{"name": "   "}
	body["services"] = []map[string]interface{}{}

	rec, env := f.do(t, http.MethodPost, "/api/invoices", body)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.False(t, env.Success)
	require.Equal(t, "validation failed", env.Error)
	require.Contains(t, env.Fields, "customer.name")
	require.Contains(t, env.Fields, "customer.phone")
	require.Contains(t, env.Fields, "services")
}

func TestCreateInvoiceBadDate(t *testing.T) {
	f := newFixture(t)

	body := validCreate()
	body["invoice_date"] = "10/01/2026"

	rec, env := f.do(t, http.MethodPost, "/api/invoices", body)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "invoice_date must be formatted as YYYY-MM-DD", env.Error)
}

func TestListInvoicesFiltering(t *testing.T) {
	f := newFixture(t)

	first := validCreate()
	f.create(t, first)

	second := validCreate()
	second["customer"] = map[string]string{"name": "Mehta Hardware", "phone": "9000000001"}
	f.create(t, second)

	estimate := validCreate()
	estimate["invoice_type"] = "estimate"
	f.create(t, estimate)

	rec, env := f.do(t, http.MethodGet, "/api/invoices", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list listResponse
	require.NoError(t, json.Unmarshal(env.Data, &list))
	require.Equal(t, 3, list.Total)
	require.Equal(t, 1, list.Page, "unpaginated responses still report the first page")
	require.Equal(t, 0, list.Limit)

	rec, env = f.do(t, http.MethodGet, "/api/invoices?search=rajan", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(env.Data, &list))
	require.Equal(t, 2, list.Total)
	for _, inv := range list.Invoices {
		require.Equal(t, "Rajan Traders", inv.Customer.Name)
	}

	rec, env = f.do(t, http.MethodGet, "/api/invoices?type=estimate", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(env.Data, &list))
	require.Equal(t, 1, list.Total)
	require.Equal(t, invoice.KindEstimate, list.Invoices[0].Kind)

	rec, env = f.do(t, http.MethodGet, "/api/invoices?page=1&limit=2", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(env.Data, &list))
	require.Equal(t, 3, list.Total)
	require.Len(t, list.Invoices, 2)
}

func TestGetInvoiceNotFound(t *testing.T) {
	f := newFixture(t)

	rec, env := f.do(t, http.MethodGet, "/api/invoices/"+uuid.NewString(), nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "invoice not found", env.Error)

	// A malformed id behaves the same as a miss.
	rec, _ = f.do(t, http.MethodGet, "/api/invoices/not-a-uuid", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateInvoicePartial(t *testing.T) {
	f := newFixture(t)
	inv := f.create(t, validCreate())

	rec, env := f.do(t, http.MethodPut, "/api/invoices/"+inv.ID.String(), map[string]interface{}{
		"discount": "0",
		"notes":    "updated note",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var updated invoice.Invoice
	require.NoError(t, json.Unmarshal(env.Data, &updated))
	require.Equal(t, "updated note", updated.Notes)
	require.Equal(t, "2478", updated.Total.String())
	// Untouched fields survive.
	require.Equal(t, "Rajan Traders", updated.Customer.Name)
	require.Equal(t, inv.Number, updated.Number)
}

func TestUpdateStatus(t *testing.T) {
	f := newFixture(t)
	inv := f.create(t, validCreate())

	rec, env := f.do(t, http.MethodPut, "/api/invoices/"+inv.ID.String()+"/status",
		map[string]string{"status": "archived"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, env.Fields, "status")

	rec, env = f.do(t, http.MethodPut, "/api/invoices/"+inv.ID.String()+"/status",
		map[string]string{"status": "paid"})
	require.Equal(t, http.StatusOK, rec.Code)
	var updated invoice.Invoice
	require.NoError(t, json.Unmarshal(env.Data, &updated))
	require.Equal(t, invoice.StatusPaid, updated.Status)
}

func TestDeleteInvoice(t *testing.T) {
	f := newFixture(t)
	inv := f.create(t, validCreate())

	rec, env := f.do(t, http.MethodDelete, "/api/invoices/"+inv.ID.String(), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "invoice deleted", env.Message)

	rec, _ = f.do(t, http.MethodGet, "/api/invoices/"+inv.ID.String(), nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDuplicateInvoice(t *testing.T) {
	f := newFixture(t)
	body := validCreate()
	body["due_date"] = "2026-02-10"
	inv := f.create(t, body)

	rec, env := f.do(t, http.MethodPost, "/api/invoices/"+inv.ID.String()+"/duplicate", nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	var clone invoice.Invoice
	require.NoError(t, json.Unmarshal(env.Data, &clone))
	require.Equal(t, "CI-002", clone.Number)
	require.Equal(t, invoice.StatusDraft, clone.Status)
	require.Nil(t, clone.DueDate)
	require.Equal(t, inv.Customer, clone.Customer)
	require.True(t, clone.Total.Equal(inv.Total))
}

func TestStats(t *testing.T) {
	f := newFixture(t)
	inv := f.create(t, validCreate())
	f.create(t, validCreate())

	_, _ = f.do(t, http.MethodPut, "/api/invoices/"+inv.ID.String()+"/status",
		map[string]string{"status": "paid"})

	rec, env := f.do(t, http.MethodGet, "/api/invoices/stats", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var st invoice.Stats
	require.NoError(t, json.Unmarshal(env.Data, &st))
	require.Equal(t, int64(2), st.TotalInvoices)
	require.Equal(t, int64(1), st.PaidCount)
	require.Equal(t, int64(1), st.DraftCount)
	require.Equal(t, "2378", st.TotalRevenue.String())
}

func TestDownloadPDF(t *testing.T) {
	f := newFixture(t)
	inv := f.create(t, validCreate())

	rec, _ := f.do(t, http.MethodGet, "/api/invoices/"+inv.ID.String()+"/pdf", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	require.Equal(t, `attachment; filename="CI-001.pdf"`, rec.Header().Get("Content-Disposition"))
	require.Equal(t, "%PDF-1.3 stub", rec.Body.String())
}

func TestUploadPDF(t *testing.T) {
	f := newFixture(t)
	inv := f.create(t, validCreate())

	rec, env := f.do(t, http.MethodPost, "/api/invoices/"+inv.ID.String()+"/pdf/upload", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var data map[string]string
	require.NoError(t, json.Unmarshal(env.Data, &data))
	object := f.userID.String() + "/CI-001.pdf"
	require.Equal(t, "https://project.supabase.co/storage/v1/object/public/invoices/"+object, data["pdf_url"])
	require.Contains(t, f.storage.objects, object)

	stored, err := f.store.GetByID(context.Background(), f.userID, inv.ID)
	require.NoError(t, err)
	require.Equal(t, data["pdf_url"], stored.PDFURL)
}
