package pdf

import (
	"strings"

	"billing/internal/document"
	"github.com/shopspring/decimal"
)

type labels struct {
	Invoice     string
	Quote       string
	Number      string
	Date        string
	Due         string
	ValidUntil  string
	Hours       string
	Quantity    string
	UnitPrice   string
	Total       string
	Net         string
	Discount    string
	VAT         string
	Gross       string
	Deduction   string
	Final       string
	Positions   string
	Page        string
	Of          string
	Bank        string
	VATID       string
	TaxOffice   string
	decimalMark string
}

var english = labels{
	Invoice:     "Invoice",
	Quote:       "Quote",
	Number:      "Number",
	Date:        "Date",
	Due:         "Due",
	ValidUntil:  "Valid until",
	Hours:       "Hours",
	Quantity:    "Qty",
	UnitPrice:   "Price",
	Total:       "Total",
	Net:         "Net",
	Discount:    "Discount",
	VAT:         "VAT",
	Gross:       "Gross",
	Deduction:   "Deduction",
	Final:       "Amount due",
	Positions:   "Positions",
	Page:        "Page",
	Of:          "of",
	Bank:        "Bank",
	VATID:       "VAT ID",
	TaxOffice:   "Tax office",
	decimalMark: ".",
}

var german = labels{
	Invoice:     "Rechnung",
	Quote:       "Angebot",
	Number:      "Nummer",
	Date:        "Datum",
	Due:         "Fällig am",
	ValidUntil:  "Gültig bis",
	Hours:       "Stunden",
	Quantity:    "Menge",
	UnitPrice:   "Preis",
	Total:       "Summe",
	Net:         "Netto",
	Discount:    "Rabatt",
	VAT:         "USt.",
	Gross:       "Brutto",
	Deduction:   "Abzug",
	Final:       "Zahlbetrag",
	Positions:   "Positionen",
	Page:        "Seite",
	Of:          "von",
	Bank:        "Bank",
	VATID:       "USt-IdNr.",
	TaxOffice:   "Finanzamt",
	decimalMark: ",",
}

func labelsFor(v *document.View) labels {
	if v.German() {
		return german
	}
	return english
}

func (l labels) title(v *document.View) string {
	if v.Kind == document.KindQuote {
		return l.Quote
	}
	return l.Invoice
}

// money formats an amount with two decimals and the currency.
func (l labels) money(d decimal.Decimal) string {
	return l.number(d.StringFixed(2)) + " EUR"
}

// quantity formats hours without trailing zeros.
func (l labels) quantity(d decimal.Decimal) string {
	return l.number(d.String())
}

func (l labels) percent(rate decimal.Decimal) string {
	return l.number(rate.Mul(decimal.NewFromInt(100)).String()) + " %"
}

func (l labels) number(s string) string {
	return strings.Replace(s, ".", l.decimalMark, 1)
}
