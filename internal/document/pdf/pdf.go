// Package pdf renders invoices and quotes as printable A4 documents.
//
// The first page carries the addresses, dates, description and totals. Every
// pagination bucket of the view follows on a page of its own. Item pages are
// laid out on a fixed line grid so that a page never holds more than
// paginate.LinesPerPage lines.
package pdf

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"billing/internal/document"
	"billing/internal/paginate"
	"billing/pkg/models"
	"github.com/go-pdf/fpdf"
)

const (
	marginLeft  = 20.0
	marginRight = 20.0
	pageWidth   = 210.0
	lineHeight  = 4.6
	gridTop     = 40.0
	fontFamily  = "Helvetica"
)

const contentWidth = pageWidth - marginLeft - marginRight

// Renderer produces PDF documents.
type Renderer struct {
	// Compress deflates page streams. Disabled output keeps text searchable
	// in the raw file.
	Compress bool
}

// New returns a Renderer with compression enabled.
func New() *Renderer {
	return &Renderer{Compress: true}
}

// Format implements document.Renderer.
func (r *Renderer) Format() string { return "pdf" }

// Render implements document.Renderer.
func (r *Renderer) Render(w io.Writer, v *document.View) error {
	pdf, err := r.Build(v)
	if err != nil {
		return err
	}
	if err := pdf.Output(w); err != nil {
		return models.WrapRenderError("Output", "", err)
	}
	return nil
}

// Build lays out the document without writing it.
func (r *Renderer) Build(v *document.View) (*fpdf.Fpdf, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetCompression(r.Compress)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetMargins(marginLeft, 20, marginRight)

	l := labelsFor(v)
	d := &drawer{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor(""), l: l, v: v}

	title := fmt.Sprintf("%s %s", l.title(v), v.Number)
	pdf.SetTitle(title, true)
	pdf.SetAuthor(v.Business.Name, true)
	pdf.SetCreator("billing", false)
	if v.IssueDate != nil {
		pdf.SetCreationDate(*v.IssueDate)
	} else {
		pdf.SetCreationDate(time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC))
	}

	d.cover(title)
	for i, page := range v.Pages {
		d.items(page, i+1, len(v.Pages))
	}

	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("layout %s: %w", title, err)
	}
	return pdf, nil
}

type drawer struct {
	pdf *fpdf.Fpdf
	tr  func(string) string
	l   labels
	v   *document.View
}

func (d *drawer) text(w, h float64, s, align string) {
	d.pdf.CellFormat(w, h, d.tr(s), "", 0, align, false, 0, "")
}

func (d *drawer) line(s string) {
	d.pdf.SetX(marginLeft)
	d.text(contentWidth, lineHeight, s, "L")
	d.pdf.Ln(lineHeight)
}

func (d *drawer) cover(title string) {
	pdf, v, l := d.pdf, d.v, d.l
	pdf.AddPage()

	if exists(v.Business.Logo) {
		pdf.ImageOptions(v.Business.Logo, pageWidth-marginRight-40, 12, 40, 0, false,
			fpdf.ImageOptions{ReadDpi: true}, 0, "")
	}

	// Sender line above the window envelope address block.
	pdf.SetFont(fontFamily, "", 7)
	pdf.SetXY(marginLeft, 45)
	d.text(contentWidth, 4, joinNonEmpty(" · ", v.Business.Name, v.Business.Street,
		joinNonEmpty(" ", v.Business.PostalCode, v.Business.City)), "L")

	pdf.SetFont(fontFamily, "", 10)
	pdf.SetXY(marginLeft, 52)
	c := v.Client
	d.line(c.DisplayName())
	if c.Company != "" && c.Name != "" {
		d.line(c.Name)
	}
	d.line(c.Street)
	d.line(joinNonEmpty(" ", c.PostalCode, c.City))
	d.line(c.Country)

	// Document metadata on the right.
	pdf.SetXY(130, 52)
	d.meta(l.Number, v.Number)
	if v.IssueDate != nil {
		d.meta(l.Date, v.IssueDate.Format(document.DateLayout))
	}
	if v.DueDate != nil {
		label := l.Due
		if v.Kind == document.KindQuote {
			label = l.ValidUntil
		}
		d.meta(label, v.DueDate.Format(document.DateLayout))
	}

	pdf.SetXY(marginLeft, 95)
	pdf.SetFont(fontFamily, "B", 16)
	d.text(contentWidth, 8, title, "L")
	pdf.Ln(10)

	if v.Title != "" {
		pdf.SetFont(fontFamily, "B", 11)
		d.line(v.Title)
		pdf.Ln(2)
	}
	if v.Description != "" {
		pdf.SetFont(fontFamily, "", 10)
		pdf.MultiCell(contentWidth, lineHeight, d.tr(v.Description), "", "L", false)
		pdf.Ln(4)
	}

	d.totals()

	if exists(v.Business.Signature) {
		pdf.ImageOptions(v.Business.Signature, marginLeft, pdf.GetY()+6, 50, 0, false,
			fpdf.ImageOptions{ReadDpi: true}, 0, "")
	}

	d.footer()
}

func (d *drawer) meta(label, value string) {
	d.pdf.SetX(130)
	d.pdf.SetFont(fontFamily, "", 10)
	d.text(25, lineHeight, label+":", "L")
	d.text(35, lineHeight, value, "R")
	d.pdf.Ln(lineHeight)
}

func (d *drawer) totals() {
	pdf, v, l := d.pdf, d.v, d.l
	row := func(label, value string, bold bool) {
		style := ""
		if bold {
			style = "B"
		}
		pdf.SetFont(fontFamily, style, 10)
		pdf.SetX(pageWidth - marginRight - 90)
		d.text(55, lineHeight+1, label, "L")
		d.text(35, lineHeight+1, value, "R")
		pdf.Ln(lineHeight + 1)
	}

	if v.ShowQuantities() {
		row(l.Hours, l.quantity(v.Totals.Hours), false)
	}
	if !v.Discount.IsZero() {
		row(l.Discount, "-"+l.money(v.Discount), false)
	}
	row(l.Net, l.money(v.Totals.Net), false)
	row(fmt.Sprintf("%s %s", l.VAT, l.percent(v.VATRate)), l.money(v.Totals.VAT), false)
	row(l.Gross, l.money(v.Totals.Gross), v.Deduction.IsZero())
	if !v.Deduction.IsZero() {
		row(l.Deduction, "-"+l.money(v.Deduction), false)
		row(l.Final, l.money(v.Totals.Final), true)
	}
}

func (d *drawer) footer() {
	pdf, b, l := d.pdf, d.v.Business, d.l
	pdf.SetFont(fontFamily, "", 7)
	pdf.SetDrawColor(160, 160, 160)
	pdf.Line(marginLeft, 270, pageWidth-marginRight, 270)
	pdf.SetXY(marginLeft, 272)

	col := contentWidth / 3
	lines := [3][]string{
		{b.Name, b.Street, joinNonEmpty(" ", b.PostalCode, b.City)},
		{b.Email, b.Phone, b.Website},
		{
			labeled(l.Bank+":", joinNonEmpty(", ", b.BankName, b.AccountHolder)),
			joinNonEmpty("  ", labeled("IBAN", b.IBAN), labeled("BIC", b.BIC)),
			joinNonEmpty("  ", labeled(l.VATID, b.VATID), labeled(l.TaxOffice, b.TaxOffice)),
		},
	}
	for i := 0; i < 3; i++ {
		for c := 0; c < 3; c++ {
			pdf.SetXY(marginLeft+float64(c)*col, 272+float64(i)*3.5)
			d.text(col, 3.5, lines[c][i], "L")
		}
	}
}

// items draws one pagination bucket on the line grid. Each item takes one
// heading line, its description lines and one spacing line.
func (d *drawer) items(page []document.Line, n, total int) {
	pdf, v, l := d.pdf, d.v, d.l
	pdf.AddPage()

	pdf.SetFont(fontFamily, "B", 12)
	pdf.SetXY(marginLeft, 20)
	d.text(contentWidth, 6, fmt.Sprintf("%s %s · %s", l.title(v), v.Number, l.Positions), "L")

	pdf.SetFont(fontFamily, "B", 9)
	pdf.SetXY(marginLeft, 30)
	if v.ShowQuantities() {
		d.columns("", "", l.Quantity, l.UnitPrice, l.Total)
	}
	pdf.SetDrawColor(160, 160, 160)
	pdf.Line(marginLeft, 35, pageWidth-marginRight, 35)

	row := 0
	y := func() float64 { return gridTop + float64(row)*lineHeight }
	for _, item := range page {
		pdf.SetXY(marginLeft, y())
		pdf.SetFont(fontFamily, "B", 9)
		if v.ShowQuantities() {
			d.columns(item.Label, item.Title, l.quantity(item.Quantity), l.money(item.UnitPrice), l.money(item.Total))
		} else {
			d.columns(item.Label, item.Title, "", "", "")
		}
		row++

		pdf.SetFont(fontFamily, "", 9)
		for _, text := range paginate.SplitLines(item.Description) {
			pdf.SetXY(marginLeft+22, y())
			d.text(contentWidth-22, lineHeight, text, "L")
			row++
		}
		row += paginate.ItemOverhead - 1
	}

	pdf.SetFont(fontFamily, "", 8)
	pdf.SetXY(marginLeft, 282)
	d.text(contentWidth, 4, fmt.Sprintf("%s %d %s %d", l.Page, n, l.Of, total), "R")
}

func (d *drawer) columns(label, title, qty, price, total string) {
	d.text(22, lineHeight, label, "L")
	d.text(contentWidth-22-75, lineHeight, title, "L")
	d.text(20, lineHeight, qty, "R")
	d.text(27, lineHeight, price, "R")
	d.text(28, lineHeight, total, "R")
}

func joinNonEmpty(sep string, parts ...string) string {
	var kept []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}

// labeled prefixes value with label, or returns "" for an empty value.
func labeled(label, value string) string {
	if strings.TrimSpace(value) == "" {
		return ""
	}
	return label + " " + value
}

func exists(path string) bool {
	if path == "" {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
