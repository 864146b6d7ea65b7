// Package report builds the periodic tax and profit report and the dashboard
// indicators from a snapshot.
package report

import (
	"fmt"
	"time"

	"billing/internal/finance"
	"billing/internal/period"
	"billing/pkg/models"
	"github.com/shopspring/decimal"
)

// Metric names of the report buckets.
const (
	MetricHours        = "hours"
	MetricRevenueNet   = "revenue_net"
	MetricRevenueVAT   = "revenue_vat"
	MetricRevenueGross = "revenue_gross"
	MetricExpenseNet   = "expense_net"
	MetricExpenseVAT   = "expense_vat"
	MetricOperatingNet = "operating_net"
	MetricInvoices     = "invoices"
	MetricExpenses     = "expenses"
)

var one = decimal.NewFromInt(1)

// Row is one period of the tax report.
type Row struct {
	Period       period.Period   `json:"-"`
	Label        string          `json:"period"`
	Invoices     int             `json:"invoices"`
	Expenses     int             `json:"expenses"`
	Hours        decimal.Decimal `json:"hours"`
	RevenueNet   decimal.Decimal `json:"revenue_net"`
	RevenueVAT   decimal.Decimal `json:"revenue_vat"`
	RevenueGross decimal.Decimal `json:"revenue_gross"`
	ExpenseNet   decimal.Decimal `json:"expense_net"`
	ExpenseVAT   decimal.Decimal `json:"expense_vat"`
	VATDue       decimal.Decimal `json:"vat_due"`
	Profit       decimal.Decimal `json:"profit"`
}

// Report is the tax report over consecutive periods.
type Report struct {
	Granularity period.Granularity `json:"granularity"`
	Year        int                `json:"year,omitempty"`
	Rows        []Row              `json:"rows"`
	Total       Row                `json:"total"`
}

// Options select the report shape.
type Options struct {
	Granularity period.Granularity
	// Year restricts the records to one calendar year; zero keeps all.
	Year     int
	Location *time.Location
	Now      func() time.Time
}

// entry is an invoice or an expense with its figures derived once.
type entry struct {
	at      time.Time
	invoice bool
	totals  finance.Totals
	expense models.Expense
}

func (e entry) metric(name string) (decimal.Decimal, error) {
	if e.invoice {
		switch name {
		case MetricHours:
			return e.totals.Hours, nil
		case MetricRevenueNet:
			return e.totals.Net, nil
		case MetricRevenueVAT:
			return e.totals.VAT, nil
		case MetricRevenueGross:
			return e.totals.Gross, nil
		case MetricInvoices:
			return one, nil
		}
		return decimal.Zero, nil
	}

	switch name {
	case MetricExpenses:
		return one, nil
	case MetricExpenseNet:
		return finance.ExpenseNet(e.expense), nil
	case MetricExpenseVAT:
		return finance.ExpenseVAT(e.expense), nil
	case MetricOperatingNet:
		tax, ok := e.expense.Category.IsTax()
		if !ok {
			return decimal.Zero, models.NewValidationError("category", string(e.expense.Category),
				models.ErrUnknownCategory, fmt.Sprintf("expense %d has an unknown category", e.expense.ID))
		}
		if tax {
			return decimal.Zero, nil
		}
		return finance.ExpenseNet(e.expense), nil
	}
	return decimal.Zero, nil
}

var metricNames = []string{
	MetricHours, MetricRevenueNet, MetricRevenueVAT, MetricRevenueGross,
	MetricExpenseNet, MetricExpenseVAT, MetricOperatingNet,
	MetricInvoices, MetricExpenses,
}

// Build derives the tax report. Transitory invoices and invoices without an
// invoice date are left out.
func Build(snap *models.Snapshot, opts Options) (Report, error) {
	const op = "report.Build"

	g := opts.Granularity
	if g == "" {
		g = period.Month
	}
	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}

	inYear := func(t time.Time) bool {
		return opts.Year == 0 || period.Wall(t, loc).Year() == opts.Year
	}

	var entries []entry
	for _, inv := range snap.Invoices {
		if inv.Transitory || inv.InvoicedAt == nil || !inYear(*inv.InvoicedAt) {
			continue
		}
		totals, err := finance.Invoice(inv, snap.PositionsOf(inv.ID))
		if err != nil {
			return Report{}, fmt.Errorf("%s: invoice %s: %w", op, inv.DocumentNumber(), err)
		}
		entries = append(entries, entry{at: *inv.InvoicedAt, invoice: true, totals: totals})
	}
	for _, e := range snap.Expenses {
		if e.ExpendedAt.IsZero() || !inYear(e.ExpendedAt) {
			continue
		}
		entries = append(entries, entry{at: e.ExpendedAt, expense: e})
	}

	agg := period.Aggregator[entry]{
		Granularity: g,
		Location:    loc,
		Now:         yearBound(now, opts.Year, loc),
		At:          func(e entry) (time.Time, bool) { return e.at, true },
	}
	for _, name := range metricNames {
		name := name
		agg.Metrics = append(agg.Metrics, period.Metric[entry]{
			Name:  name,
			Value: func(e entry) (decimal.Decimal, error) { return e.metric(name) },
		})
	}

	buckets, err := agg.Aggregate(entries)
	if err != nil {
		return Report{}, fmt.Errorf("%s: %w", op, err)
	}

	rep := Report{Granularity: g, Year: opts.Year, Total: Row{Label: "total"}}
	for _, b := range buckets {
		row := newRow(b, g)
		rep.Rows = append(rep.Rows, row)
		rep.Total = add(rep.Total, row)
	}
	return rep, nil
}

// yearBound keeps the aggregation range inside the selected year.
func yearBound(now func() time.Time, year int, loc *time.Location) func() time.Time {
	if year == 0 {
		return now
	}
	return func() time.Time {
		n := period.Wall(now(), loc)
		last := time.Date(year, time.December, 31, 0, 0, 0, 0, loc)
		if n.After(last) {
			return last
		}
		if n.Year() < year {
			return time.Date(year, time.January, 1, 0, 0, 0, 0, loc)
		}
		return n
	}
}

func newRow(b period.Bucket, g period.Granularity) Row {
	row := Row{
		Period:       b.Period,
		Label:        b.Label(g),
		Invoices:     int(b.Value(MetricInvoices).IntPart()),
		Expenses:     int(b.Value(MetricExpenses).IntPart()),
		Hours:        b.Value(MetricHours),
		RevenueNet:   b.Value(MetricRevenueNet),
		RevenueVAT:   b.Value(MetricRevenueVAT),
		RevenueGross: b.Value(MetricRevenueGross),
		ExpenseNet:   b.Value(MetricExpenseNet),
		ExpenseVAT:   b.Value(MetricExpenseVAT),
	}
	row.VATDue = row.RevenueVAT.Sub(row.ExpenseVAT)
	row.Profit = row.RevenueNet.Sub(b.Value(MetricOperatingNet))
	return row
}

func add(total, row Row) Row {
	total.Invoices += row.Invoices
	total.Expenses += row.Expenses
	total.Hours = total.Hours.Add(row.Hours)
	total.RevenueNet = total.RevenueNet.Add(row.RevenueNet)
	total.RevenueVAT = total.RevenueVAT.Add(row.RevenueVAT)
	total.RevenueGross = total.RevenueGross.Add(row.RevenueGross)
	total.ExpenseNet = total.ExpenseNet.Add(row.ExpenseNet)
	total.ExpenseVAT = total.ExpenseVAT.Add(row.ExpenseVAT)
	total.VATDue = total.VATDue.Add(row.VATDue)
	total.Profit = total.Profit.Add(row.Profit)
	return total
}
