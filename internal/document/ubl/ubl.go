// Package ubl renders invoices as UBL 2.1 Invoice documents following the
// EN16931 core invoice model.
//
// Only invoices can be expressed; a quote has no UBL counterpart. The
// supplier's identity, address, VAT id, bank account and email are mandatory
// and validated before anything is written.
package ubl

import (
	"bytes"
	"encoding/xml"
	"io"

	"billing/internal/document"
	"billing/internal/paginate"
	"billing/pkg/models"
	"github.com/shopspring/decimal"
)

// Namespaces and code lists used in the document.
const (
	NamespaceInvoice = "urn:oasis:names:specification:ubl:schema:xsd:Invoice-2"
	NamespaceCAC     = "urn:oasis:names:specification:ubl:schema:xsd:CommonAggregateComponents-2"
	NamespaceCBC     = "urn:oasis:names:specification:ubl:schema:xsd:CommonBasicComponents-2"

	CustomizationID     = "urn:cen.eu:en16931:2017"
	InvoiceTypeCode     = "380"
	Currency            = "EUR"
	PaymentMeansCredit  = "30"
	TaxCategoryStandard = "S"
	TaxCategoryZero     = "Z"
	TaxSchemeVAT        = "VAT"
	UnitCodeEach        = "EA"
)

const isoDate = "2006-01-02"

// RequiredSettings lists the settings the supplier party is built from.
var RequiredSettings = []string{
	models.SettingName,
	models.SettingStreet,
	models.SettingPostalCode,
	models.SettingCity,
	models.SettingCountry,
	models.SettingVATID,
	models.SettingIBAN,
	models.SettingEmail,
}

// Renderer produces UBL invoice XML.
type Renderer struct{}

// New returns a Renderer.
func New() *Renderer { return &Renderer{} }

// Format implements document.Renderer.
func (r *Renderer) Format() string { return "xml" }

// Render implements document.Renderer.
func (r *Renderer) Render(w io.Writer, v *document.View) error {
	doc, err := Build(v)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return err
	}
	buf.WriteByte('\n')

	if _, err := buf.WriteTo(w); err != nil {
		return models.NewRenderError("Write", "", err)
	}
	return nil
}

// Build maps a view onto the UBL document structure.
func Build(v *document.View) (*Invoice, error) {
	if v.Kind != document.KindInvoice {
		return nil, models.NewValidationError("kind", string(v.Kind), models.ErrUnsupportedKind,
			"only invoices can be rendered as UBL")
	}
	if err := v.Settings.Require(RequiredSettings...); err != nil {
		return nil, err
	}
	if v.IssueDate == nil || v.DueDate == nil {
		return nil, models.NewValidationError("invoiced_at", v.Number, models.ErrInvalidDate,
			"invoice has no invoice date")
	}

	b := v.Business
	category := taxCategory(v)
	amounts := lineAmounts(v.Lines, v.Totals.Net)
	net := v.Totals.Net.Round(2)
	tax := net.Mul(rate(v)).Round(2)
	gross := net.Add(tax)

	doc := &Invoice{
		Xmlns:                NamespaceInvoice,
		XmlnsCAC:             NamespaceCAC,
		XmlnsCBC:             NamespaceCBC,
		CustomizationID:      CustomizationID,
		ID:                   v.Number,
		IssueDate:            v.IssueDate.Format(isoDate),
		DueDate:              v.DueDate.Format(isoDate),
		InvoiceTypeCode:      InvoiceTypeCode,
		DocumentCurrencyCode: Currency,
		Supplier: PartyWrapper{Party: Party{
			PostalAddress: Address{
				StreetName: b.Street,
				CityName:   b.City,
				PostalZone: b.PostalCode,
				Country:    Country{IdentificationCode: b.Country},
			},
			TaxScheme:   &PartyTaxScheme{CompanyID: b.VATID, TaxScheme: vatScheme()},
			LegalEntity: LegalEntity{RegistrationName: b.Name, CompanyID: b.VATID},
			Contact:     &Contact{ElectronicMail: b.Email},
		}},
		Customer: PartyWrapper{Party: customerParty(v.Client)},
		PaymentMeans: PaymentMeans{
			Code:      PaymentMeansCredit,
			PaymentID: v.Number,
			Account:   Account{ID: b.IBAN},
		},
		TaxTotal: TaxTotal{
			TaxAmount: money(tax),
			Subtotal: TaxSubtotal{
				TaxableAmount: money(net),
				TaxAmount:     money(tax),
				Category:      category,
			},
		},
		MonetaryTotal: MonetaryTotal{
			LineExtensionAmount: money(net),
			TaxExclusiveAmount:  money(net),
			TaxInclusiveAmount:  money(gross),
			ChargeTotalAmount:   money(decimal.Zero),
			PayableAmount:       money(gross),
		},
	}

	for i, line := range v.Lines {
		c := category
		doc.Lines = append(doc.Lines, InvoiceLine{
			ID:                  line.Seq,
			Quantity:            Quantity{UnitCode: UnitCodeEach, Value: line.Quantity.String()},
			LineExtensionAmount: money(amounts[i]),
			Item:                Item{Description: line.Description, Name: firstLine(line), TaxCategory: &c},
			Price:               linePrice(amounts[i], line.Quantity),
		})
	}
	return doc, nil
}

// taxCategory is standard rated for taxable invoices and zero rated otherwise.
func taxCategory(v *document.View) TaxCategory {
	if !v.Taxable {
		return TaxCategory{ID: TaxCategoryZero, Percent: "0", TaxScheme: vatScheme()}
	}
	return TaxCategory{
		ID:        TaxCategoryStandard,
		Percent:   v.VATRate.Mul(decimal.NewFromInt(100)).String(),
		TaxScheme: vatScheme(),
	}
}

func rate(v *document.View) decimal.Decimal {
	if !v.Taxable {
		return decimal.Zero
	}
	return v.VATRate
}

// lineAmounts rounds the line nets to cents. Each line gets the rounded
// running total minus what the earlier lines already got, and the last line
// closes on the rounded document net, so the amounts always add up to it.
func lineAmounts(lines []document.Line, net decimal.Decimal) []decimal.Decimal {
	amounts := make([]decimal.Decimal, len(lines))
	exact, taken := decimal.Zero, decimal.Zero
	for i, l := range lines {
		exact = exact.Add(l.Net)
		running := exact.Round(2)
		if i == len(lines)-1 {
			running = net.Round(2)
		}
		amounts[i] = running.Sub(taken)
		taken = running
	}
	return amounts
}

// linePrice returns the unit price of a line when quantity times the rounded
// unit price reproduces the line amount. Otherwise the price covers the whole
// quantity, stated as base quantity.
func linePrice(amount, quantity decimal.Decimal) Price {
	if quantity.IsZero() {
		return Price{Amount: money(amount)}
	}
	unit := amount.Div(quantity).Round(2)
	if unit.Mul(quantity).Round(2).Equal(amount) {
		return Price{Amount: money(unit)}
	}
	return Price{
		Amount:       money(amount),
		BaseQuantity: &Quantity{UnitCode: UnitCodeEach, Value: quantity.String()},
	}
}

func customerParty(c models.Client) Party {
	p := Party{
		PostalAddress: Address{
			StreetName: c.Street,
			CityName:   c.City,
			PostalZone: c.PostalCode,
			Country:    Country{IdentificationCode: c.Country},
		},
		LegalEntity: LegalEntity{RegistrationName: c.DisplayName(), CompanyID: c.VATID},
	}
	if c.VATID != "" {
		p.TaxScheme = &PartyTaxScheme{CompanyID: c.VATID, TaxScheme: vatScheme()}
	}
	return p
}

func firstLine(l document.Line) string {
	if l.Title != "" {
		return l.Title
	}
	if lines := paginate.SplitLines(l.Description); len(lines) > 0 {
		return lines[0]
	}
	return l.Label
}

func vatScheme() TaxScheme { return TaxScheme{ID: TaxSchemeVAT} }

func money(d decimal.Decimal) Amount {
	return Amount{Currency: Currency, Value: d.StringFixed(2)}
}
