package finance_test

import (
	"fmt"
	"log"
	"time"

	"billing/internal/finance"
	"billing/pkg/models"
	"github.com/shopspring/decimal"
)

// Example derives the figures printed on an hourly invoice.
func Example() {
	invoice := models.Invoice{
		Number:  "2024-031",
		Unit:    models.UnitHour,
		Price:   decimal.NewFromInt(95),
		Taxable: true,
		VATRate: decimal.RequireFromString("0.19"),
	}
	positions := []models.Position{
		{
			StartedAt:  time.Date(2024, 4, 2, 9, 0, 0, 0, time.UTC),
			FinishedAt: time.Date(2024, 4, 2, 17, 30, 0, 0, time.UTC),
			Pause:      decimal.RequireFromString("0.5"),
		},
	}

	totals, err := finance.Invoice(invoice, positions)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("Hours: %s\n", totals.Hours)
	fmt.Printf("Net:   %s EUR\n", totals.Net.StringFixed(2))
	fmt.Printf("VAT:   %s EUR\n", totals.VAT.StringFixed(2))
	fmt.Printf("Gross: %s EUR\n", totals.Gross.StringFixed(2))
	// Output:
	// Hours: 8
	// Net:   760.00 EUR
	// VAT:   144.40 EUR
	// Gross: 904.40 EUR
}

// ExampleExpenseVAT extracts the VAT contained in a receipt.
func ExampleExpenseVAT() {
	receipt := models.Expense{
		Price:    decimal.RequireFromString("59.50"),
		Taxable:  true,
		VATRate:  decimal.RequireFromString("0.19"),
		Category: models.ExpenseGood,
	}

	fmt.Println(finance.ExpenseVAT(receipt).StringFixed(2), finance.ExpenseNet(receipt).StringFixed(2))
	// Output: 9.50 50.00
}
