package handlers

import (
	"fmt"
	"net/http"
	"strconv"
)

// DownloadPDF renders the invoice and streams it as an attachment.
func (h *Handlers) DownloadPDF(w http.ResponseWriter, r *http.Request) {
	userID, id, ok := h.pathIDs(w, r)
	if !ok {
		return
	}
	inv, err := h.Store.GetByID(r.Context(), userID, id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	out, err := h.PDF.Generate(*inv)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.pdf"`, inv.Number))
	w.Header().Set("Content-Length", strconv.Itoa(len(out)))
	w.WriteHeader(http.StatusOK)
	w.Write(out)
}

// UploadPDF renders the invoice, persists it to object storage and records
// the resulting public URL on the invoice.
func (h *Handlers) UploadPDF(w http.ResponseWriter, r *http.Request) {
	userID, id, ok := h.pathIDs(w, r)
	if !ok {
		return
	}
	inv, err := h.Store.GetByID(r.Context(), userID, id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	out, err := h.PDF.Generate(*inv)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	object := userID.String() + "/" + inv.Number + ".pdf"
	url, err := h.Storage.Upload(r.Context(), object, "application/pdf", out)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := h.Store.SetPDFURL(r.Context(), userID, id, url); err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeData(w, http.StatusOK, map[string]string{"pdf_url": url}, "pdf uploaded")
}
