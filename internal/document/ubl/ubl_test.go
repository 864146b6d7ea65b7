package ubl

import (
	"bytes"
	"encoding/xml"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"billing/internal/document"
	"billing/internal/document/doctest"
	"billing/pkg/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func invoiceView(t *testing.T, id int64) *document.View {
	t.Helper()
	v, err := document.NewInvoiceView(doctest.Snapshot(), id, doctest.Settings())
	require.NoError(t, err)
	return v
}

func render(t *testing.T, v *document.View) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, New().Render(&buf, v))
	return buf.String()
}

// walk decodes the whole document and returns its start elements.
func walk(t *testing.T, doc string) []xml.StartElement {
	t.Helper()
	dec := xml.NewDecoder(strings.NewReader(doc))
	var elements []xml.StartElement
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return elements
		}
		require.NoError(t, err)
		if se, ok := tok.(xml.StartElement); ok {
			elements = append(elements, se.Copy())
		}
	}
}

func TestRenderInvoice(t *testing.T) {
	out := render(t, invoiceView(t, doctest.InvoiceID))

	assert.True(t, strings.HasPrefix(out, xml.Header))
	for _, want := range []string{
		`<cbc:CustomizationID>urn:cen.eu:en16931:2017</cbc:CustomizationID>`,
		`<cbc:ID>2024-001</cbc:ID>`,
		`<cbc:IssueDate>2024-04-02</cbc:IssueDate>`,
		`<cbc:DueDate>2024-04-16</cbc:DueDate>`,
		`<cbc:InvoiceTypeCode>380</cbc:InvoiceTypeCode>`,
		`<cbc:DocumentCurrencyCode>EUR</cbc:DocumentCurrencyCode>`,
		`<cbc:ElectronicMail>jane@example.com</cbc:ElectronicMail>`,
		`<cbc:RegistrationName>Acme Ltd</cbc:RegistrationName>`,
		`<cbc:PaymentMeansCode>30</cbc:PaymentMeansCode>`,
		`<cbc:PaymentID>2024-001</cbc:PaymentID>`,
		`<cbc:TaxAmount currencyID="EUR">190.00</cbc:TaxAmount>`,
		`<cbc:TaxableAmount currencyID="EUR">1000.00</cbc:TaxableAmount>`,
		`<cbc:Percent>19</cbc:Percent>`,
		`<cbc:ChargeTotalAmount currencyID="EUR">0.00</cbc:ChargeTotalAmount>`,
		`<cbc:PayableAmount currencyID="EUR">1190.00</cbc:PayableAmount>`,
		`<cbc:InvoicedQuantity unitCode="EA">4</cbc:InvoicedQuantity>`,
		`<cbc:LineExtensionAmount currencyID="EUR">600.00</cbc:LineExtensionAmount>`,
		`<cbc:PriceAmount currencyID="EUR">100.00</cbc:PriceAmount>`,
		`<cbc:Name>API design</cbc:Name>`,
	} {
		assert.Contains(t, out, want)
	}

	elements := walk(t, out)
	require.NotEmpty(t, elements)
	root := elements[0]
	assert.Equal(t, NamespaceInvoice, root.Name.Space)
	assert.Equal(t, "Invoice", root.Name.Local)

	lines := 0
	for _, el := range elements {
		switch {
		case el.Name.Local == "InvoiceLine":
			lines++
			assert.Equal(t, NamespaceCAC, el.Name.Space)
		case strings.HasSuffix(el.Name.Local, "Amount"):
			require.Len(t, el.Attr, 1, el.Name.Local)
			assert.Equal(t, "currencyID", el.Attr[0].Name.Local)
			assert.Equal(t, "EUR", el.Attr[0].Value)
			assert.Equal(t, NamespaceCBC, el.Name.Space)
		}
	}
	assert.Equal(t, 2, lines)
}

func TestBuildElementOrder(t *testing.T) {
	out := render(t, invoiceView(t, doctest.InvoiceID))

	var order []string
	depth := 0
	dec := xml.NewDecoder(strings.NewReader(out))
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		switch el := tok.(type) {
		case xml.StartElement:
			depth++
			if depth == 2 && (len(order) == 0 || order[len(order)-1] != el.Name.Local) {
				order = append(order, el.Name.Local)
			}
		case xml.EndElement:
			depth--
		}
	}

	assert.Equal(t, []string{
		"CustomizationID", "ID", "IssueDate", "DueDate", "InvoiceTypeCode", "DocumentCurrencyCode",
		"AccountingSupplierParty", "AccountingCustomerParty", "PaymentMeans", "TaxTotal",
		"LegalMonetaryTotal", "InvoiceLine",
	}, order)
}

func TestBuildLinesSumToNet(t *testing.T) {
	v := invoiceView(t, doctest.InvoiceID)
	doc, err := Build(v)
	require.NoError(t, err)

	sum := decimal.Zero
	for _, l := range doc.Lines {
		sum = sum.Add(decimal.RequireFromString(l.LineExtensionAmount.Value))
	}
	assert.Equal(t, doc.MonetaryTotal.LineExtensionAmount.Value, sum.StringFixed(2))
	assert.Equal(t, 1, doc.Lines[0].ID)
	assert.Equal(t, 2, doc.Lines[1].ID)
	require.NotNil(t, doc.Lines[0].Item.TaxCategory)
	assert.Equal(t, "S", doc.Lines[0].Item.TaxCategory.ID)
}

func TestBuildFlatPricing(t *testing.T) {
	doc, err := Build(invoiceView(t, doctest.FlatInvoiceID))
	require.NoError(t, err)

	require.Len(t, doc.Lines, 1)
	line := doc.Lines[0]
	assert.Equal(t, "7", line.Quantity.Value)
	assert.Equal(t, "4500.00", line.LineExtensionAmount.Value)
	assert.Equal(t, "4500.00", line.Price.Amount.Value)
	require.NotNil(t, line.Price.BaseQuantity)
	assert.Equal(t, "7", line.Price.BaseQuantity.Value)
	assert.Equal(t, "5355.00", doc.MonetaryTotal.PayableAmount.Value)
	require.NotNil(t, doc.Customer.Party.TaxScheme)
	assert.Equal(t, "DE987654321", doc.Customer.Party.TaxScheme.CompanyID)
	assert.Equal(t, "Erika Muster", doc.Customer.Party.LegalEntity.RegistrationName)
}

func TestBuildZeroQuantity(t *testing.T) {
	v := invoiceView(t, doctest.FlatInvoiceID)
	v.Lines[0].Quantity = decimal.Zero

	doc, err := Build(v)
	require.NoError(t, err)
	assert.Equal(t, "4500.00", doc.Lines[0].Price.Amount.Value)
	assert.Nil(t, doc.Lines[0].Price.BaseQuantity)
}

func TestBuildNotTaxable(t *testing.T) {
	doc, err := Build(invoiceView(t, doctest.DeductedInvoiceID))
	require.NoError(t, err)

	assert.Equal(t, "0.00", doc.TaxTotal.TaxAmount.Value)
	assert.Equal(t, "300.00", doc.MonetaryTotal.PayableAmount.Value)
	assert.Equal(t, TaxCategory{ID: "Z", Percent: "0", TaxScheme: TaxScheme{ID: "VAT"}}, doc.TaxTotal.Subtotal.Category)
	require.NotNil(t, doc.Lines[0].Item.TaxCategory)
	assert.Equal(t, "Z", doc.Lines[0].Item.TaxCategory.ID)
}

func TestBuildNotTaxableIgnoresStoredRate(t *testing.T) {
	v := invoiceView(t, doctest.InvoiceID)
	v.Taxable = false

	doc, err := Build(v)
	require.NoError(t, err)
	assert.Equal(t, "Z", doc.TaxTotal.Subtotal.Category.ID)
	assert.Equal(t, "0", doc.TaxTotal.Subtotal.Category.Percent)
	assert.Equal(t, "0.00", doc.TaxTotal.TaxAmount.Value)
	assert.Equal(t, "1000.00", doc.MonetaryTotal.PayableAmount.Value)
	assertConsistent(t, doc)
}

// fractionalSnapshot adds a flat invoice split over three one-hour positions
// and an hourly invoice of twenty-minute positions at an odd rate.
func fractionalSnapshot() *models.Snapshot {
	snap := doctest.Snapshot()
	rate := decimal.RequireFromString("0.19")
	issued := time.Date(2024, time.June, 3, 0, 0, 0, 0, time.UTC)
	snap.Invoices = append(snap.Invoices,
		models.Invoice{ID: 200, ProjectID: doctest.FlatProjectID, Number: "2024-010", Unit: models.UnitProject,
			Price: decimal.NewFromInt(1000), Taxable: true, VATRate: rate, InvoicedAt: &issued},
		models.Invoice{ID: 201, ProjectID: doctest.ProjectID, Number: "2024-011", Unit: models.UnitHour,
			Price: decimal.RequireFromString("95.55"), Taxable: true, VATRate: rate, InvoicedAt: &issued},
	)
	for i := 0; i < 3; i++ {
		start := time.Date(2024, time.May, 6+i, 9, 0, 0, 0, time.UTC)
		snap.Positions = append(snap.Positions,
			models.Position{ID: int64(200 + i), InvoiceID: 200, StartedAt: start, FinishedAt: start.Add(time.Hour),
				Description: "Milestone"},
			models.Position{ID: int64(210 + i), InvoiceID: 201, StartedAt: start, FinishedAt: start.Add(20 * time.Minute),
				Description: "Call"},
		)
	}
	return snap
}

// assertConsistent checks the document-level sums validators recompute.
func assertConsistent(t *testing.T, doc *Invoice) {
	t.Helper()
	amount := func(a Amount) decimal.Decimal { return decimal.RequireFromString(a.Value) }

	sum := decimal.Zero
	for _, l := range doc.Lines {
		line := amount(l.LineExtensionAmount)
		sum = sum.Add(line)

		qty := decimal.RequireFromString(l.Quantity.Value)
		if qty.IsZero() {
			continue
		}
		base := decimal.NewFromInt(1)
		if l.Price.BaseQuantity != nil {
			base = decimal.RequireFromString(l.Price.BaseQuantity.Value)
		}
		assert.True(t, qty.Mul(amount(l.Price.Amount)).Div(base).Round(2).Equal(line),
			"line %d: %s x %s / %s != %s", l.ID, qty, l.Price.Amount.Value, base, l.LineExtensionAmount.Value)
	}

	total := doc.MonetaryTotal
	assert.True(t, sum.Equal(amount(total.LineExtensionAmount)), "lines %s, total %s", sum, total.LineExtensionAmount.Value)
	assert.Equal(t, total.LineExtensionAmount.Value, total.TaxExclusiveAmount.Value)
	assert.Equal(t, total.LineExtensionAmount.Value, doc.TaxTotal.Subtotal.TaxableAmount.Value)

	percent := decimal.RequireFromString(doc.TaxTotal.Subtotal.Category.Percent)
	wantTax := amount(doc.TaxTotal.Subtotal.TaxableAmount).Mul(percent).Div(decimal.NewFromInt(100)).Round(2)
	assert.True(t, wantTax.Equal(amount(doc.TaxTotal.TaxAmount)), "tax %s, want %s", doc.TaxTotal.TaxAmount.Value, wantTax)
	assert.True(t, amount(total.TaxExclusiveAmount).Add(amount(doc.TaxTotal.TaxAmount)).Equal(amount(total.TaxInclusiveAmount)))
	assert.Equal(t, total.TaxInclusiveAmount.Value, total.PayableAmount.Value)
}

func TestBuildFractionalLinesAddUp(t *testing.T) {
	snap := fractionalSnapshot()

	v, err := document.NewInvoiceView(snap, 200, doctest.Settings())
	require.NoError(t, err)
	doc, err := Build(v)
	require.NoError(t, err)

	require.Len(t, doc.Lines, 3)
	assert.Equal(t, "333.33", doc.Lines[0].LineExtensionAmount.Value)
	assert.Equal(t, "333.34", doc.Lines[1].LineExtensionAmount.Value)
	assert.Equal(t, "333.33", doc.Lines[2].LineExtensionAmount.Value)
	assert.Equal(t, "1000.00", doc.MonetaryTotal.LineExtensionAmount.Value)
	assert.Equal(t, "190.00", doc.TaxTotal.TaxAmount.Value)
	assertConsistent(t, doc)

	for _, id := range []int64{201, doctest.InvoiceID, doctest.UndatedInvoiceID, doctest.FlatInvoiceID, doctest.DeductedInvoiceID} {
		v, err := document.NewInvoiceView(snap, id, doctest.Settings())
		require.NoError(t, err)
		doc, err := Build(v)
		require.NoError(t, err)
		assertConsistent(t, doc)
	}
}

func TestLineAmounts(t *testing.T) {
	third := decimal.NewFromInt(100).Div(decimal.NewFromInt(3))
	lines := []document.Line{{Net: third}, {Net: third}, {Net: third}}

	amounts := lineAmounts(lines, decimal.NewFromInt(100))
	require.Len(t, amounts, 3)
	assert.Equal(t, "33.33", amounts[0].StringFixed(2))
	assert.Equal(t, "33.34", amounts[1].StringFixed(2))
	assert.Equal(t, "33.33", amounts[2].StringFixed(2))

	assert.Empty(t, lineAmounts(nil, decimal.NewFromInt(100)))
}

func TestBuildErrors(t *testing.T) {
	quote, err := document.NewQuoteView(doctest.Snapshot(), doctest.FlatProjectID, doctest.Settings(), time.Now())
	require.NoError(t, err)
	_, err = Build(quote)
	assert.ErrorIs(t, err, models.ErrUnsupportedKind)

	for _, key := range RequiredSettings {
		t.Run(key, func(t *testing.T) {
			settings := doctest.Settings()
			delete(settings, key)
			v, err := document.NewInvoiceView(doctest.Snapshot(), doctest.InvoiceID, settings)
			require.NoError(t, err)

			_, err = Build(v)
			var validationErr *models.ValidationError
			require.ErrorAs(t, err, &validationErr)
			assert.Equal(t, key, validationErr.Field)
			assert.ErrorIs(t, err, models.ErrMissingSetting)
		})
	}

	_, err = Build(invoiceView(t, doctest.DraftInvoiceID))
	assert.ErrorIs(t, err, models.ErrInvalidDate)
}

func TestRenderLeavesWriterUntouchedOnError(t *testing.T) {
	settings := doctest.Settings()
	delete(settings, models.SettingIBAN)
	v, err := document.NewInvoiceView(doctest.Snapshot(), doctest.InvoiceID, settings)
	require.NoError(t, err)

	var buf bytes.Buffer
	assert.ErrorIs(t, New().Render(&buf, v), models.ErrMissingSetting)
	assert.Zero(t, buf.Len())
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestRenderWriteFailure(t *testing.T) {
	err := New().Render(failingWriter{}, invoiceView(t, doctest.InvoiceID))
	assert.ErrorIs(t, err, models.ErrWriteFailed)
}
