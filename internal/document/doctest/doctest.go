// Package doctest provides a small, consistent snapshot for document tests.
package doctest

import (
	"time"

	"billing/pkg/models"
	"github.com/shopspring/decimal"
)

// Record ids of the fixture.
const (
	ClientID          = 1
	GermanClientID    = 2
	ProjectID         = 10
	FlatProjectID     = 11
	InvoiceID         = 100
	UndatedInvoiceID  = 101
	FlatInvoiceID     = 102
	DraftInvoiceID    = 103
	DeductedInvoiceID = 104
)

func day(m time.Month, d, h int) time.Time {
	return time.Date(2024, m, d, h, 0, 0, 0, time.UTC)
}

func ptr(t time.Time) *time.Time { return &t }

// Settings returns complete business settings.
func Settings() models.Settings {
	return models.Settings{
		models.SettingName:          "Jane Doe Consulting",
		models.SettingStreet:        "Hauptstr. 1",
		models.SettingPostalCode:    "10115",
		models.SettingCity:          "Berlin",
		models.SettingCountry:       "DE",
		models.SettingEmail:         "jane@example.com",
		models.SettingPhone:         "+49 30 1234567",
		models.SettingWebsite:       "https://example.com",
		models.SettingIBAN:          "DE89370400440532013000",
		models.SettingBIC:           "COBADEFFXXX",
		models.SettingBankName:      "Example Bank",
		models.SettingAccountHolder: "Jane Doe",
		models.SettingTaxOffice:     "Finanzamt Mitte",
		models.SettingVATID:         "DE123456789",
		models.SettingVATRate:       "0.19",
		models.SettingPaymentTerm:   "14",
	}
}

// Snapshot returns clients, projects and invoices covering hourly, undated,
// flat-priced, draft and deducted invoices.
func Snapshot() *models.Snapshot {
	rate := decimal.RequireFromString("0.19")
	price := decimal.NewFromInt(100)

	return &models.Snapshot{
		Clients: []models.Client{
			{ID: ClientID, Name: "John Smith", Company: "Acme Ltd", Street: "1 Main Street", PostalCode: "SW1A 1AA",
				City: "London", Country: "GB", Email: "ap@acme.example", Language: "en", VATID: "GB123456789"},
			{ID: GermanClientID, Name: "Erika Muster", Street: "Bahnhofstr. 5", PostalCode: "80331",
				City: "München", Country: "DE", Language: "de", VATID: "DE987654321"},
		},
		Projects: []models.Project{
			{ID: ProjectID, ClientID: ClientID, Title: "Platform rebuild", Unit: models.UnitHour, Price: price, VATRate: rate},
			{ID: FlatProjectID, ClientID: GermanClientID, Title: "Website", Unit: models.UnitProject,
				Price: decimal.NewFromInt(5000), VATRate: rate, Due: ptr(day(time.June, 30, 0))},
		},
		Estimates: []models.Estimate{
			{ID: 2, ProjectID: FlatProjectID, Title: "Design", Description: "Layouts\nStyle guide", Amount: decimal.NewFromInt(12), Weight: 1},
			{ID: 1, ProjectID: FlatProjectID, Title: "Kickoff", Description: "Workshop", Amount: decimal.NewFromInt(4), Weight: 0},
		},
		Invoices: []models.Invoice{
			{ID: InvoiceID, ProjectID: ProjectID, Number: "2024-001", Title: "Development March", Unit: models.UnitHour,
				Price: price, Taxable: true, VATRate: rate, InvoicedAt: ptr(day(time.April, 2, 0))},
			{ID: UndatedInvoiceID, ProjectID: ProjectID, Number: "2024-002", Unit: models.UnitHour,
				Price: price, Taxable: true, VATRate: rate, Undated: true, InvoicedAt: ptr(day(time.April, 3, 0))},
			{ID: FlatInvoiceID, ProjectID: FlatProjectID, Number: "2024-003", Title: "Website", Unit: models.UnitProject,
				Price: decimal.NewFromInt(5000), Discount: decimal.NewFromInt(500), Taxable: true, VATRate: rate,
				InvoicedAt: ptr(day(time.May, 6, 0))},
			{ID: DraftInvoiceID, ProjectID: ProjectID, Unit: models.UnitHour, Price: price},
			{ID: DeductedInvoiceID, ProjectID: ProjectID, Number: "2024-005", Unit: models.UnitHour, Price: price,
				Deduction: decimal.NewFromInt(50), InvoicedAt: ptr(day(time.May, 31, 0))},
		},
		Positions: []models.Position{
			{ID: 2, InvoiceID: InvoiceID, StartedAt: day(time.March, 5, 9), FinishedAt: day(time.March, 5, 15),
				Description: "API design\nReview"},
			{ID: 1, InvoiceID: InvoiceID, StartedAt: day(time.March, 4, 9), FinishedAt: day(time.March, 4, 13),
				Description: "Kickoff"},
			{ID: 3, InvoiceID: UndatedInvoiceID, StartedAt: day(time.March, 20, 9), FinishedAt: day(time.March, 20, 11),
				Description: "Support"},
			{ID: 4, InvoiceID: FlatInvoiceID, StartedAt: day(time.April, 8, 9), FinishedAt: day(time.April, 8, 17),
				Pause: decimal.NewFromInt(1), Description: "Implementation"},
			{ID: 5, InvoiceID: DeductedInvoiceID, StartedAt: day(time.May, 2, 9), FinishedAt: day(time.May, 2, 12),
				Description: "Maintenance"},
		},
	}
}
