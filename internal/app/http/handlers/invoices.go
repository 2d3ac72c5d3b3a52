package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"craft-invoice/backend/internal/app/http/middleware"
	"craft-invoice/backend/internal/domain/invoice"
)

const dateLayout = "2006-01-02"

type customerPayload struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	Email   string `json:"email"`
}

type servicePayload struct {
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	Rate        decimal.Decimal `json:"rate"`
}

type createRequest struct {
	InvoiceType   string           `json:"invoice_type"`
	Customer      customerPayload  `json:"customer"`
	Services      []servicePayload `json:"services"`
	TaxEnabled    bool             `json:"tax_enabled"`
	TaxPercentage decimal.Decimal  `json:"tax_percentage"`
	Discount      decimal.Decimal  `json:"discount"`
	InvoiceDate   string           `json:"invoice_date"`
	DueDate       string           `json:"due_date"`
	Notes         string           `json:"notes"`
}

type updateRequest struct {
	InvoiceType   *string          `json:"invoice_type"`
	Status        *string          `json:"status"`
	Customer      *customerPayload `json:"customer"`
	Services      []servicePayload `json:"services"`
	TaxEnabled    *bool            `json:"tax_enabled"`
	TaxPercentage *decimal.Decimal `json:"tax_percentage"`
	Discount      *decimal.Decimal `json:"discount"`
	InvoiceDate   *string          `json:"invoice_date"`
	DueDate       *string          `json:"due_date"`
	Notes         *string          `json:"notes"`
}

type statusRequest struct {
	Status string `json:"status"`
}

type listResponse struct {
	Invoices []invoice.Invoice `json:"invoices"`
	Total    int               `json:"total"`
	Page     int               `json:"page"`
	Limit    int               `json:"limit"`
}

// List returns the user's invoices with filtering, sorting and optional
// pagination applied over the fetched set.
func (h *Handlers) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())

	all, err := h.Store.ListByUser(r.Context(), userID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	q := invoice.ListQuery{
		Search: r.URL.Query().Get("search"),
		Kind:   invoice.Kind(r.URL.Query().Get("type")),
		Status: invoice.Status(r.URL.Query().Get("status")),
		SortBy: r.URL.Query().Get("sortBy"),
	}
	q.Page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	q.Limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	if q.Page < 1 {
		// Pages are 1-based; echo the page actually served.
		q.Page = 1
	}

	filtered := invoice.FilterSort(all, q)
	items := invoice.Paginate(filtered, q.Page, q.Limit)
	if items == nil {
		items = []invoice.Invoice{}
	}

	h.writeData(w, http.StatusOK, listResponse{
		Invoices: items,
		Total:    len(filtered),
		Page:     q.Page,
		Limit:    q.Limit,
	}, "")
}

func (h *Handlers) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Store.Stats(r.Context(), middleware.UserID(r.Context()))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeData(w, http.StatusOK, stats, "")
}

func (h *Handlers) Get(w http.ResponseWriter, r *http.Request) {
	userID, id, ok := h.pathIDs(w, r)
	if !ok {
		return
	}
	inv, err := h.Store.GetByID(r.Context(), userID, id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeData(w, http.StatusOK, inv, "")
}

func (h *Handlers) Create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeBadRequest(w, "invalid request body")
		return
	}

	in, err := req.toInput()
	if err != nil {
		h.writeBadRequest(w, err.Error())
		return
	}
	if in.InvoiceDate.IsZero() {
		in.InvoiceDate = invoice.DateOf(time.Now().In(h.Loc))
	}
	in.Normalize()
	if err := in.Validate(); err != nil {
		h.writeError(w, r, err)
		return
	}

	inv, err := h.Store.Create(r.Context(), middleware.UserID(r.Context()), in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeData(w, http.StatusCreated, inv, "invoice created")
}

func (h *Handlers) Update(w http.ResponseWriter, r *http.Request) {
	userID, id, ok := h.pathIDs(w, r)
	if !ok {
		return
	}

	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeBadRequest(w, "invalid request body")
		return
	}
	in, err := req.toInput()
	if err != nil {
		h.writeBadRequest(w, err.Error())
		return
	}

	inv, err := h.Store.Update(r.Context(), userID, id, in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeData(w, http.StatusOK, inv, "invoice updated")
}

func (h *Handlers) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	userID, id, ok := h.pathIDs(w, r)
	if !ok {
		return
	}

	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeBadRequest(w, "invalid request body")
		return
	}
	status := invoice.Status(req.Status)
	if !status.Valid() {
		h.writeError(w, r, &invoice.ValidationError{Fields: map[string]string{"status": "unknown status"}})
		return
	}

	inv, err := h.Store.UpdateStatus(r.Context(), userID, id, status)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeData(w, http.StatusOK, inv, "status updated")
}

func (h *Handlers) Delete(w http.ResponseWriter, r *http.Request) {
	userID, id, ok := h.pathIDs(w, r)
	if !ok {
		return
	}
	if err := h.Store.Delete(r.Context(), userID, id); err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeData(w, http.StatusOK, nil, "invoice deleted")
}

func (h *Handlers) Duplicate(w http.ResponseWriter, r *http.Request) {
	userID, id, ok := h.pathIDs(w, r)
	if !ok {
		return
	}
	inv, err := h.Store.Duplicate(r.Context(), userID, id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeData(w, http.StatusCreated, inv, "invoice duplicated")
}

// pathIDs extracts the owner from the context and the invoice id from the
// URL. A malformed id behaves like a scoped lookup miss.
func (h *Handlers) pathIDs(w http.ResponseWriter, r *http.Request) (userID, id uuid.UUID, ok bool) {
	userID = middleware.UserID(r.Context())
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, invoice.ErrNotFound)
		return uuid.Nil, uuid.Nil, false
	}
	return userID, id, true
}

func (req *createRequest) toInput() (invoice.CreateInput, error) {
	in := invoice.CreateInput{
		Kind: invoice.Kind(req.InvoiceType),
		Customer: invoice.Customer{
			Name:    req.Customer.Name,
			Phone:   req.Customer.Phone,
			Address: req.Customer.Address,
			Email:   req.Customer.Email,
		},
		TaxEnabled: req.TaxEnabled,
		TaxPercent: req.TaxPercentage,
		Discount:   req.Discount,
		Notes:      req.Notes,
	}
	for _, s := range req.Services {
		in.Services = append(in.Services, invoice.ServiceInput{
			Description: s.Description,
			Quantity:    s.Quantity,
			Rate:        s.Rate,
		})
	}

	if req.InvoiceDate != "" {
		d, err := time.Parse(dateLayout, req.InvoiceDate)
		if err != nil {
			return in, errBadDate("invoice_date")
		}
		in.InvoiceDate = d
	}
	if req.DueDate != "" {
		d, err := time.Parse(dateLayout, req.DueDate)
		if err != nil {
			return in, errBadDate("due_date")
		}
		in.DueDate = &d
	}
	return in, nil
}

func (req *updateRequest) toInput() (invoice.UpdateInput, error) {
	var in invoice.UpdateInput
	if req.InvoiceType != nil {
		k := invoice.Kind(*req.InvoiceType)
		in.Kind = &k
	}
	if req.Status != nil {
		s := invoice.Status(*req.Status)
		in.Status = &s
	}
	if req.Customer != nil {
		in.Customer = &invoice.Customer{
			Name:    req.Customer.Name,
			Phone:   req.Customer.Phone,
			Address: req.Customer.Address,
			Email:   req.Customer.Email,
		}
	}
	if req.Services != nil {
		in.Services = make([]invoice.ServiceInput, 0, len(req.Services))
		for _, s := range req.Services {
			in.Services = append(in.Services, invoice.ServiceInput{
				Description: s.Description,
				Quantity:    s.Quantity,
				Rate:        s.Rate,
			})
		}
	}
	in.TaxEnabled = req.TaxEnabled
	in.TaxPercent = req.TaxPercentage
	in.Discount = req.Discount
	in.Notes = req.Notes

	if req.InvoiceDate != nil {
		d, err := time.Parse(dateLayout, *req.InvoiceDate)
		if err != nil {
			return in, errBadDate("invoice_date")
		}
		in.InvoiceDate = &d
	}
	if req.DueDate != nil {
		if strings.TrimSpace(*req.DueDate) == "" {
			in.ClearDueDate = true
		} else {
			d, err := time.Parse(dateLayout, *req.DueDate)
			if err != nil {
				return in, errBadDate("due_date")
			}
			in.DueDate = &d
		}
	}
	return in, nil
}

type badDateError string

func errBadDate(field string) error { return badDateError(field) }

func (e badDateError) Error() string {
	return string(e) + " must be formatted as YYYY-MM-DD"
}
