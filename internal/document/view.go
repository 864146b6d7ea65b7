// Package document builds the renderer-agnostic view of an invoice or quote
// and writes rendered artifacts to disk.
//
// A View is assembled once per request from a snapshot and the business
// settings. Both the print layout and the tax XML renderer consume the same
// View, so figures shown in the two artifacts always agree.
//
// Missing optional settings render as empty strings. Invalid records, such as
// a position that finishes before it starts, abort view construction.
package document

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"billing/internal/finance"
	"billing/internal/paginate"
	"billing/pkg/models"
	"github.com/shopspring/decimal"
)

// Kind distinguishes invoices from quotes.
type Kind string

const (
	KindInvoice Kind = "invoice"
	KindQuote   Kind = "quote"
)

// DateLayout is the print format of dates on documents.
const DateLayout = "02.01.2006"

// Business is the issuing business as configured in the settings.
type Business struct {
	Name          string
	Street        string
	PostalCode    string
	City          string
	Country       string
	Email         string
	Phone         string
	Website       string
	IBAN          string
	BIC           string
	BankName      string
	AccountHolder string
	TaxOffice     string
	VATID         string
	Logo          string
	Signature     string
}

// NewBusiness resolves the business fields from settings. Absent keys stay
// empty.
func NewBusiness(s models.Settings) Business {
	return Business{
		Name:          s.Get(models.SettingName),
		Street:        s.Get(models.SettingStreet),
		PostalCode:    s.Get(models.SettingPostalCode),
		City:          s.Get(models.SettingCity),
		Country:       s.Get(models.SettingCountry),
		Email:         s.Get(models.SettingEmail),
		Phone:         s.Get(models.SettingPhone),
		Website:       s.Get(models.SettingWebsite),
		IBAN:          s.Get(models.SettingIBAN),
		BIC:           s.Get(models.SettingBIC),
		BankName:      s.Get(models.SettingBankName),
		AccountHolder: s.Get(models.SettingAccountHolder),
		TaxOffice:     s.Get(models.SettingTaxOffice),
		VATID:         s.Get(models.SettingVATID),
		Logo:          s.Get(models.SettingLogo),
		Signature:     s.Get(models.SettingSignature),
	}
}

// Line is one billed or estimated item.
type Line struct {
	Seq         int
	Label       string
	Title       string
	Description string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	Total       decimal.Decimal
	// Net is the line's share of the document net.
	Net decimal.Decimal
}

// View is everything a renderer needs to produce one document.
type View struct {
	Kind        Kind
	Number      string
	Title       string
	Description string
	IssueDate   *time.Time
	DueDate     *time.Time

	Client   models.Client
	Project  models.Project
	Business Business
	Settings models.Settings

	Unit      models.PricingUnit
	Taxable   bool
	VATRate   decimal.Decimal
	Discount  decimal.Decimal
	Deduction decimal.Decimal
	Totals    finance.Totals

	Lines []Line
	Pages [][]Line
}

// German reports whether the document is addressed in German.
func (v *View) German() bool {
	return strings.EqualFold(strings.TrimSpace(v.Client.Language), "de")
}

// ShowQuantities reports whether quantity, unit price and line total columns
// are printed. Flat project pricing has no meaningful per-line figures.
func (v *View) ShowQuantities() bool {
	return v.Unit != models.UnitProject
}

// NewInvoiceView assembles the view of an invoice.
func NewInvoiceView(snap *models.Snapshot, invoiceID int64, settings models.Settings) (*View, error) {
	const op = "NewInvoiceView"

	inv, err := snap.Invoice(invoiceID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	project, client, err := snap.ClientOfInvoice(inv)
	if err != nil {
		return nil, fmt.Errorf("%s: invoice %s: %w", op, inv.DocumentNumber(), err)
	}

	positions := snap.PositionsOf(inv.ID)
	totals, err := finance.Invoice(inv, positions)
	if err != nil {
		return nil, fmt.Errorf("%s: invoice %s: %w", op, inv.DocumentNumber(), err)
	}

	lines := make([]Line, 0, len(positions))
	for i, p := range positions {
		duration, err := finance.Duration(p)
		if err != nil {
			return nil, fmt.Errorf("%s: invoice %s: %w", op, inv.DocumentNumber(), err)
		}
		label := p.StartedAt.Format(DateLayout)
		if inv.Undated {
			label = sequenceLabel(i + 1)
		}
		lines = append(lines, Line{
			Seq:         i + 1,
			Label:       label,
			Description: p.Description,
			Quantity:    duration,
			UnitPrice:   inv.Price,
			Total:       inv.Price.Mul(duration),
			Net:         finance.LineNet(totals, duration),
		})
	}

	v := &View{
		Kind:        KindInvoice,
		Number:      inv.DocumentNumber(),
		Title:       inv.Title,
		Description: inv.Description,
		IssueDate:   inv.InvoicedAt,
		Client:      client,
		Project:     project,
		Business:    NewBusiness(settings),
		Settings:    settings,
		Unit:        inv.Unit,
		Taxable:     inv.Taxable,
		VATRate:     inv.VATRate,
		Discount:    inv.Discount,
		Deduction:   inv.Deduction,
		Totals:      totals,
		Lines:       lines,
		Pages:       paginateLines(lines),
	}

	if inv.InvoicedAt != nil {
		term, err := settings.PaymentTermDays()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		due := inv.InvoicedAt.AddDate(0, 0, term)
		v.DueDate = &due
	}
	return v, nil
}

// NewQuoteView assembles the quote of a project from its estimates, dated
// at issued.
func NewQuoteView(snap *models.Snapshot, projectID int64, settings models.Settings, issued time.Time) (*View, error) {
	const op = "NewQuoteView"

	project, err := snap.Project(projectID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	client, err := snap.Client(project.ClientID)
	if err != nil {
		return nil, fmt.Errorf("%s: project %d: %w", op, project.ID, err)
	}

	estimates := snap.EstimatesOf(project.ID)
	totals := finance.ProjectEstimate(project, estimates)

	lines := make([]Line, 0, len(estimates))
	for i, e := range estimates {
		lines = append(lines, Line{
			Seq:         i + 1,
			Label:       sequenceLabel(i + 1),
			Title:       e.Title,
			Description: e.Description,
			Quantity:    e.Amount,
			UnitPrice:   project.Price,
			Total:       project.Price.Mul(e.Amount),
			Net:         finance.LineNet(totals, e.Amount),
		})
	}

	return &View{
		Kind:        KindQuote,
		Number:      strconv.FormatInt(project.ID, 10),
		Title:       project.Title,
		Description: project.Description,
		IssueDate:   &issued,
		DueDate:     project.Due,
		Client:      client,
		Project:     project,
		Business:    NewBusiness(settings),
		Settings:    settings,
		Unit:        project.Unit,
		Taxable:     project.VATRate.IsPositive(),
		VATRate:     project.VATRate,
		Totals:      totals,
		Lines:       lines,
		Pages:       paginateLines(lines),
	}, nil
}

func sequenceLabel(n int) string {
	return strconv.Itoa(n) + "."
}

func paginateLines(lines []Line) [][]Line {
	return paginate.Paginate(lines, func(l Line) string { return l.Description })
}
