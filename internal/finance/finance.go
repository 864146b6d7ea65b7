// Package finance derives monetary and time figures from billing records.
//
// Every function is pure and recomputes its result from the raw fields on
// each call; nothing is cached on the records. Amounts are exact decimals and
// are never rounded here. Rounding happens where figures are presented.
//
// Order of reductions:
//   - discount reduces the pre-tax base (net)
//   - VAT is charged on the discounted net
//   - deduction reduces the post-tax total (final)
package finance

import (
	"time"

	"billing/pkg/models"
	"github.com/shopspring/decimal"
)

var secondsPerHour = decimal.NewFromInt(3600)

// Totals groups the derived figures of an invoice or project estimate.
type Totals struct {
	Hours decimal.Decimal
	Net   decimal.Decimal
	VAT   decimal.Decimal
	Gross decimal.Decimal
	Final decimal.Decimal
}

// Duration returns the billable hours of a position: the time between start
// and finish minus the pause. A non-positive span or a negative result is a
// ValidationError.
func Duration(p models.Position) (decimal.Decimal, error) {
	if !p.FinishedAt.After(p.StartedAt) {
		return decimal.Zero, models.NewValidationError("finished_at", p.FinishedAt, models.ErrNegativeDuration,
			"position must finish after it started")
	}

	hours := HoursBetween(p.StartedAt, p.FinishedAt)
	duration := hours.Sub(p.Pause)
	if duration.IsNegative() {
		return decimal.Zero, models.NewValidationError("pause", p.Pause.String(), models.ErrNegativeDuration,
			"pause exceeds worked time")
	}
	return duration, nil
}

// HoursBetween returns the wall-clock hours between two timestamps.
func HoursBetween(start, end time.Time) decimal.Decimal {
	seconds := int64(end.Sub(start) / time.Second)
	return decimal.NewFromInt(seconds).Div(secondsPerHour)
}

// InvoiceHours sums the durations of the given positions.
func InvoiceHours(positions []models.Position) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, p := range positions {
		d, err := Duration(p)
		if err != nil {
			return decimal.Zero, err
		}
		total = total.Add(d)
	}
	return total, nil
}

// Net computes the taxable base. Project pricing ignores the hours.
func Net(unit models.PricingUnit, price, hours, discount decimal.Decimal) decimal.Decimal {
	if unit == models.UnitProject {
		return price.Sub(discount)
	}
	return price.Mul(hours).Sub(discount)
}

// VAT computes the tax charged on net.
func VAT(net decimal.Decimal, taxable bool, rate decimal.Decimal) decimal.Decimal {
	if !taxable {
		return decimal.Zero
	}
	return net.Mul(rate)
}

func totals(unit models.PricingUnit, price, hours, discount decimal.Decimal, taxable bool, rate, deduction decimal.Decimal) Totals {
	net := Net(unit, price, hours, discount)
	vat := VAT(net, taxable, rate)
	gross := net.Add(vat)
	return Totals{
		Hours: hours,
		Net:   net,
		VAT:   vat,
		Gross: gross,
		Final: gross.Sub(deduction),
	}
}

// Invoice derives all figures of an invoice from its positions.
func Invoice(inv models.Invoice, positions []models.Position) (Totals, error) {
	hours, err := InvoiceHours(positions)
	if err != nil {
		return Totals{}, err
	}
	return totals(inv.Unit, inv.Price, hours, inv.Discount, inv.Taxable, inv.VATRate, inv.Deduction), nil
}

// InvoiceNet returns the net amount of an invoice.
func InvoiceNet(inv models.Invoice, positions []models.Position) (decimal.Decimal, error) {
	t, err := Invoice(inv, positions)
	return t.Net, err
}

// InvoiceVAT returns the VAT amount of an invoice.
func InvoiceVAT(inv models.Invoice, positions []models.Position) (decimal.Decimal, error) {
	t, err := Invoice(inv, positions)
	return t.VAT, err
}

// InvoiceGross returns net plus VAT.
func InvoiceGross(inv models.Invoice, positions []models.Position) (decimal.Decimal, error) {
	t, err := Invoice(inv, positions)
	return t.Gross, err
}

// InvoiceFinal returns the payable amount after the deduction.
func InvoiceFinal(inv models.Invoice, positions []models.Position) (decimal.Decimal, error) {
	t, err := Invoice(inv, positions)
	return t.Final, err
}

// ProjectEstimate derives the estimated figures of a project from its
// estimates, using the project's own price, unit and VAT rate.
func ProjectEstimate(p models.Project, estimates []models.Estimate) Totals {
	hours := decimal.Zero
	for _, e := range estimates {
		hours = hours.Add(e.Amount)
	}
	return totals(p.Unit, p.Price, hours, decimal.Zero, p.VATRate.IsPositive(), p.VATRate, decimal.Zero)
}

// LineNet returns the share of the invoice net attributable to a position of
// the given duration.
func LineNet(t Totals, duration decimal.Decimal) decimal.Decimal {
	if t.Hours.IsZero() {
		return decimal.Zero
	}
	return t.Net.Mul(duration).Div(t.Hours)
}

// ExpenseVAT extracts the VAT contained in a VAT-inclusive expense price.
func ExpenseVAT(e models.Expense) decimal.Decimal {
	if !e.Taxable {
		return decimal.Zero
	}
	return e.Price.Mul(e.VATRate).Div(decimal.NewFromInt(1).Add(e.VATRate))
}

// ExpenseNet returns the expense price without VAT.
func ExpenseNet(e models.Expense) decimal.Decimal {
	return e.Price.Sub(ExpenseVAT(e))
}

// Overdue reports whether an invoice is issued, unpaid and past its term.
func Overdue(inv models.Invoice, termDays int, now time.Time) bool {
	if inv.InvoicedAt == nil || inv.PaidAt != nil {
		return false
	}
	return now.After(inv.InvoicedAt.AddDate(0, 0, termDays))
}
