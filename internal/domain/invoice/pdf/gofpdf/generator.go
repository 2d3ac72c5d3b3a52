package gofpdf

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"

	"craft-invoice/backend/internal/domain/invoice"
	"craft-invoice/backend/internal/domain/invoice/pdf"
)

const (
	pageWidth  = 210.0
	marginX    = 15.0
	contentW   = pageWidth - 2*marginX
	descColW   = 95.0
	qtyColW    = 20.0
	rateColW   = 30.0
	amountColW = 35.0
)

type Generator struct {
	Business pdf.Business
}

func New(b pdf.Business) *Generator { return &Generator{Business: b} }

// Generate renders one invoice to a print-ready A4 PDF. Pure function of the
// invoice data; any gofpdf error is returned to the caller.
func (g *Generator) Generate(inv invoice.Invoice) ([]byte, error) {
	p := gofpdf.New("P", "mm", "A4", "")
	// Pin the document dates to the invoice date; gofpdf stamps wall-clock
	// time otherwise and the same invoice would render different bytes.
	p.SetCreationDate(inv.InvoiceDate)
	p.SetModificationDate(inv.InvoiceDate)
	p.SetTitle(title(inv.Kind)+" "+inv.Number, false)
	p.SetMargins(marginX, 15, marginX)
	p.SetAutoPageBreak(true, 20)
	p.AddPage()

	g.header(p, inv)
	g.billTo(p, inv)
	g.servicesTable(p, inv)
	g.totals(p, inv)
	g.amountInWords(p, inv)
	g.notes(p, inv)
	g.signature(p)
	g.footer(p)

	var buf bytes.Buffer
	if err := p.Output(&buf); err != nil {
		return nil, fmt.Errorf("render %s: %w", inv.Number, err)
	}
	return buf.Bytes(), nil
}

func (g *Generator) header(p *gofpdf.Fpdf, inv invoice.Invoice) {
	p.SetFont("Arial", "B", 20)
	p.SetTextColor(30, 41, 59)
	p.Cell(contentW/2, 10, g.Business.Name)

	p.SetFont("Arial", "B", 16)
	p.CellFormat(contentW/2, 10, strings.ToUpper(title(inv.Kind)), "", 1, "R", false, 0, "")

	p.SetFont("Arial", "", 9)
	p.SetTextColor(100, 100, 100)
	for _, line := range []string{g.Business.Address, g.Business.Phone, g.Business.Email} {
		if line != "" {
			p.Cell(contentW, 4.5, line)
			p.Ln(4.5)
		}
	}

	p.Ln(2)
	p.SetTextColor(0, 0, 0)
	p.SetFont("Arial", "B", 10)
	p.Cell(30, 6, "No:")
	p.SetFont("Arial", "", 10)
	p.Cell(60, 6, inv.Number)
	p.SetFont("Arial", "B", 10)
	p.Cell(30, 6, "Date:")
	p.SetFont("Arial", "", 10)
	p.CellFormat(0, 6, inv.InvoiceDate.Format("02/01/2006"), "", 1, "", false, 0, "")
	if inv.DueDate != nil {
		p.SetFont("Arial", "B", 10)
		p.Cell(30, 6, "Due Date:")
		p.SetFont("Arial", "", 10)
		p.CellFormat(0, 6, inv.DueDate.Format("02/01/2006"), "", 1, "", false, 0, "")
	}
	p.Ln(3)
	p.SetDrawColor(30, 41, 59)
	p.Line(marginX, p.GetY(), pageWidth-marginX, p.GetY())
	p.Ln(4)
}

func (g *Generator) billTo(p *gofpdf.Fpdf, inv invoice.Invoice) {
	p.SetFont("Arial", "B", 10)
	p.Cell(contentW, 6, "Bill To")
	p.Ln(6)
	p.SetFont("Arial", "", 10)
	p.Cell(contentW, 5, inv.Customer.Name)
	p.Ln(5)
	p.Cell(contentW, 5, inv.Customer.Phone)
	p.Ln(5)
	if inv.Customer.Address != "" {
		p.MultiCell(contentW, 5, inv.Customer.Address, "", "L", false)
	}
	if inv.Customer.Email != "" {
		p.Cell(contentW, 5, inv.Customer.Email)
		p.Ln(5)
	}
	p.Ln(4)
}

func (g *Generator) servicesTable(p *gofpdf.Fpdf, inv invoice.Invoice) {
	p.SetFillColor(30, 41, 59)
	p.SetTextColor(255, 255, 255)
	p.SetFont("Arial", "B", 10)
	p.CellFormat(descColW, 8, "Description", "1", 0, "L", true, 0, "")
	p.CellFormat(qtyColW, 8, "Qty", "1", 0, "C", true, 0, "")
	p.CellFormat(rateColW, 8, "Rate", "1", 0, "R", true, 0, "")
	p.CellFormat(amountColW, 8, "Amount", "1", 1, "R", true, 0, "")

	p.SetTextColor(0, 0, 0)
	p.SetFont("Arial", "", 10)
	fill := false
	p.SetFillColor(245, 246, 248)
	for _, s := range inv.Services {
		p.CellFormat(descColW, 7, trim(s.Description, 55), "1", 0, "L", fill, 0, "")
		p.CellFormat(qtyColW, 7, s.Quantity.String(), "1", 0, "C", fill, 0, "")
		p.CellFormat(rateColW, 7, money(s.Rate), "1", 0, "R", fill, 0, "")
		p.CellFormat(amountColW, 7, money(s.Amount), "1", 1, "R", fill, 0, "")
		fill = !fill
	}
	p.Ln(3)
}

func (g *Generator) totals(p *gofpdf.Fpdf, inv invoice.Invoice) {
	labelW := contentW - amountColW - 30.0

	row := func(label, value string, bold bool) {
		style := ""
		if bold {
			style = "B"
		}
		p.SetFont("Arial", style, 10)
		p.CellFormat(labelW, 6, "", "", 0, "", false, 0, "")
		p.CellFormat(30, 6, label, "", 0, "R", false, 0, "")
		p.CellFormat(amountColW, 6, value, "", 1, "R", false, 0, "")
	}

	row("Subtotal:", money(inv.Subtotal), false)
	if inv.TaxEnabled && !inv.TaxAmount.IsZero() {
		// Split tax display: half CGST, half SGST.
		half := inv.TaxAmount.Div(decimal.NewFromInt(2)).Round(2)
		halfPct := inv.TaxPercent.Div(decimal.NewFromInt(2))
		row(fmt.Sprintf("CGST (%s%%):", halfPct.String()), money(half), false)
		row(fmt.Sprintf("SGST (%s%%):", halfPct.String()), money(inv.TaxAmount.Sub(half)), false)
	}
	if !inv.Discount.IsZero() {
		row("Discount:", "- "+money(inv.Discount), false)
	}
	row("Total:", money(inv.Total), true)
	p.Ln(3)
}

func (g *Generator) amountInWords(p *gofpdf.Fpdf, inv invoice.Invoice) {
	p.SetFont("Arial", "I", 9)
	p.MultiCell(contentW, 5, "Amount in words: "+invoice.AmountInWords(inv.Total)+" Only", "", "L", false)
	p.Ln(3)
}

func (g *Generator) notes(p *gofpdf.Fpdf, inv invoice.Invoice) {
	if inv.Notes == "" {
		return
	}
	p.SetFont("Arial", "B", 9)
	p.Cell(contentW, 5, "Notes")
	p.Ln(5)
	p.SetFont("Arial", "", 9)
	p.MultiCell(contentW, 4.5, inv.Notes, "", "L", false)
	p.Ln(3)
}

func (g *Generator) signature(p *gofpdf.Fpdf) {
	p.Ln(12)
	x := pageWidth - marginX - 60
	p.Line(x, p.GetY(), pageWidth-marginX, p.GetY())
	p.SetFont("Arial", "", 9)
	p.SetX(x)
	p.CellFormat(60, 5, "Authorised Signatory", "", 1, "C", false, 0, "")
}

func (g *Generator) footer(p *gofpdf.Fpdf) {
	p.SetY(-25)
	p.SetFont("Arial", "", 8)
	p.SetTextColor(130, 130, 130)
	p.CellFormat(contentW, 5, "Thank you for your business!", "", 1, "C", false, 0, "")
	p.CellFormat(contentW, 5, g.Business.Name, "", 1, "C", false, 0, "")
}

func title(k invoice.Kind) string {
	if k == invoice.KindEstimate {
		return "Estimate"
	}
	return "Invoice"
}

// money formats a rupee amount. Core PDF fonts have no rupee glyph, so the
// "Rs." prefix is used instead of the currency symbol.
func money(v decimal.Decimal) string {
	return "Rs. " + v.StringFixed(2)
}

func trim(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "..."
}
