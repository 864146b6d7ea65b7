package report

import (
	"testing"
	"time"

	"billing/internal/period"
	"billing/pkg/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func ptr(t time.Time) *time.Time { return &t }

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func at(t time.Time) func() time.Time { return func() time.Time { return t } }

func testSnapshot() *models.Snapshot {
	rate := dec("0.19")
	return &models.Snapshot{
		Clients:  []models.Client{{ID: 1, Name: "Ada"}},
		Projects: []models.Project{{ID: 1, ClientID: 1, Unit: models.UnitHour, Price: dec("100"), VATRate: rate}},
		Invoices: []models.Invoice{
			{ID: 1, ProjectID: 1, Number: "24-1", Unit: models.UnitHour, Price: dec("100"), Taxable: true, VATRate: rate, InvoicedAt: ptr(day(2024, time.January, 15))},
			{ID: 2, ProjectID: 1, Number: "24-2", Unit: models.UnitProject, Price: dec("2000"), Taxable: true, VATRate: rate, InvoicedAt: ptr(day(2024, time.February, 10))},
			{ID: 3, ProjectID: 1, Number: "24-3", Unit: models.UnitProject, Price: dec("500"), Transitory: true, InvoicedAt: ptr(day(2024, time.February, 12))},
			{ID: 4, ProjectID: 1, Number: "draft", Unit: models.UnitProject, Price: dec("800")},
		},
		Positions: []models.Position{
			{ID: 1, InvoiceID: 1, StartedAt: day(2024, time.January, 3).Add(8 * time.Hour), FinishedAt: day(2024, time.January, 3).Add(18 * time.Hour)},
		},
		Expenses: []models.Expense{
			{ID: 1, ExpendedAt: day(2024, time.January, 20), Price: dec("119"), Taxable: true, VATRate: rate, Category: models.ExpenseGood},
			{ID: 2, ExpendedAt: day(2024, time.February, 5), Price: dec("300"), Category: models.ExpenseTax},
			{ID: 3, ExpendedAt: day(2023, time.December, 1), Price: dec("50"), Category: models.ExpenseService},
		},
	}
}

func assertDec(t *testing.T, want string, got decimal.Decimal, field string) {
	t.Helper()
	assert.Truef(t, dec(want).Equal(got), "%s: want %s, got %s", field, want, got)
}

func TestBuildMonthlyYear(t *testing.T) {
	rep, err := Build(testSnapshot(), Options{Granularity: period.Month, Year: 2024, Now: at(day(2024, time.March, 5))})
	require.NoError(t, err)

	require.Len(t, rep.Rows, 3)
	jan, feb, mar := rep.Rows[0], rep.Rows[1], rep.Rows[2]

	assert.Equal(t, "2024-01", jan.Label)
	assert.Equal(t, 1, jan.Invoices)
	assert.Equal(t, 1, jan.Expenses)
	assertDec(t, "10", jan.Hours, "jan hours")
	assertDec(t, "1000", jan.RevenueNet, "jan revenue")
	assertDec(t, "190", jan.RevenueVAT, "jan vat")
	assertDec(t, "1190", jan.RevenueGross, "jan gross")
	assertDec(t, "100", jan.ExpenseNet, "jan expense net")
	assertDec(t, "19", jan.ExpenseVAT, "jan expense vat")
	assertDec(t, "171", jan.VATDue, "jan vat due")
	assertDec(t, "900", jan.Profit, "jan profit")

	assertDec(t, "2000", feb.RevenueNet, "feb revenue")
	assertDec(t, "300", feb.ExpenseNet, "feb expense net")
	assertDec(t, "2000", feb.Profit, "tax payments are not operating expenses")
	assertDec(t, "380", feb.VATDue, "feb vat due")

	assert.Equal(t, "2024-03", mar.Label)
	assert.Zero(t, mar.Invoices)

	assert.Equal(t, 2, rep.Total.Invoices)
	assertDec(t, "3000", rep.Total.RevenueNet, "total revenue")
	assertDec(t, "2900", rep.Total.Profit, "total profit")
	assertDec(t, "551", rep.Total.VATDue, "total vat due")
}

func TestBuildAllYears(t *testing.T) {
	rep, err := Build(testSnapshot(), Options{Granularity: period.Month, Now: at(day(2024, time.March, 5))})
	require.NoError(t, err)

	require.Len(t, rep.Rows, 4)
	assert.Equal(t, "2023-12", rep.Rows[0].Label)
	assertDec(t, "-50", rep.Rows[0].Profit, "december profit")
	assertDec(t, "2850", rep.Total.Profit, "total profit")
}

func TestBuildPastYearStopsAtDecember(t *testing.T) {
	rep, err := Build(testSnapshot(), Options{Granularity: period.Quarter, Year: 2024, Now: at(day(2026, time.June, 1))})
	require.NoError(t, err)

	require.Len(t, rep.Rows, 4)
	assert.Equal(t, "2024-Q4", rep.Rows[3].Label)
}

func TestBuildTotalsMatchAcrossGranularities(t *testing.T) {
	for _, g := range period.Granularities {
		rep, err := Build(testSnapshot(), Options{Granularity: g, Now: at(day(2024, time.March, 5))})
		require.NoError(t, err)
		assertDec(t, "3000", rep.Total.RevenueNet, string(g))
		assertDec(t, "450", rep.Total.ExpenseNet, string(g))
	}
}

func TestBuildErrors(t *testing.T) {
	snap := testSnapshot()
	snap.Expenses = append(snap.Expenses, models.Expense{ID: 9, ExpendedAt: day(2024, time.January, 2), Price: dec("1"), Category: "travel"})
	_, err := Build(snap, Options{Now: at(day(2024, time.March, 5))})
	assert.ErrorIs(t, err, models.ErrUnknownCategory)

	snap = testSnapshot()
	snap.Positions[0].FinishedAt = snap.Positions[0].StartedAt
	_, err = Build(snap, Options{Now: at(day(2024, time.March, 5))})
	assert.ErrorIs(t, err, models.ErrNegativeDuration)
}

func TestBuildEmpty(t *testing.T) {
	rep, err := Build(&models.Snapshot{}, Options{})
	require.NoError(t, err)
	assert.Empty(t, rep.Rows)
	assert.Equal(t, period.Month, rep.Granularity)
}

func TestDashboard(t *testing.T) {
	rep, err := Build(testSnapshot(), Options{Granularity: period.Month, Year: 2024, Now: at(day(2024, time.February, 20))})
	require.NoError(t, err)

	d := NewDashboard(rep)
	assert.Equal(t, "2024-02", d.Period)
	assertDec(t, "2000", d.RevenueNet, "revenue")
	assertDec(t, "100", d.RevenueTrend, "revenue trend")
	assertDec(t, "-100", d.HoursTrend, "hours trend")
	assert.Equal(t, "122.22", d.ProfitTrend.StringFixed(2))

	assert.Equal(t, Dashboard{}, NewDashboard(Report{}))
}
