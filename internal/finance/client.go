package finance

import (
	"time"

	"billing/pkg/models"
	"github.com/shopspring/decimal"
)

const hoursPerDay = 24

// ClientHours sums the durations of every position under every invoice of
// every project of the client.
func ClientHours(snap *models.Snapshot, clientID int64) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, inv := range clientInvoices(snap, clientID) {
		hours, err := InvoiceHours(snap.PositionsOf(inv.ID))
		if err != nil {
			return decimal.Zero, err
		}
		total = total.Add(hours)
	}
	return total, nil
}

// ClientNet sums the net amounts of all invoices of the client.
func ClientNet(snap *models.Snapshot, clientID int64) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, inv := range clientInvoices(snap, clientID) {
		net, err := InvoiceNet(inv, snap.PositionsOf(inv.ID))
		if err != nil {
			return decimal.Zero, err
		}
		total = total.Add(net)
	}
	return total, nil
}

// AvgPaymentDelay returns the mean number of days between invoicing and
// payment over the client's invoices that have both dates. It is zero when
// no invoice qualifies.
func AvgPaymentDelay(snap *models.Snapshot, clientID int64) float64 {
	var days, count int
	for _, inv := range clientInvoices(snap, clientID) {
		if inv.InvoicedAt == nil || inv.PaidAt == nil {
			continue
		}
		days += calendarDays(*inv.InvoicedAt, *inv.PaidAt)
		count++
	}
	if count == 0 {
		return 0
	}
	return float64(days) / float64(count)
}

// calendarDays counts the date changes from one wall-clock date to another,
// ignoring the time of day.
func calendarDays(from, to time.Time) int {
	y1, m1, d1 := from.Date()
	y2, m2, d2 := to.Date()
	a := time.Date(y1, m1, d1, 0, 0, 0, 0, time.UTC)
	b := time.Date(y2, m2, d2, 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a).Hours() / hoursPerDay)
}

func clientInvoices(snap *models.Snapshot, clientID int64) []models.Invoice {
	var out []models.Invoice
	for _, p := range snap.ProjectsOf(clientID) {
		out = append(out, snap.InvoicesOf(p.ID)...)
	}
	return out
}
