package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PricingUnit denominates the price field of an invoice or project.
type PricingUnit string

const (
	UnitHour    PricingUnit = "hour"
	UnitDay     PricingUnit = "day"
	UnitProject PricingUnit = "project"
)

// ExpenseCategory classifies an expense for tax reporting.
type ExpenseCategory string

const (
	ExpenseVAT     ExpenseCategory = "vat"     // VAT paid to the tax office
	ExpenseGood    ExpenseCategory = "good"    // Material goods
	ExpenseService ExpenseCategory = "service" // Bought-in services
	ExpenseTax     ExpenseCategory = "tax"     // Income/trade tax payments
)

// taxCategories maps each expense category to whether it is a tax payment
// rather than an operating expense.
var taxCategories = map[ExpenseCategory]bool{
	ExpenseVAT:     true,
	ExpenseGood:    false,
	ExpenseService: false,
	ExpenseTax:     true,
}

// IsTax reports whether the category is a tax payment. Unknown categories
// report ok == false.
func (c ExpenseCategory) IsTax() (tax bool, ok bool) {
	tax, ok = taxCategories[c]
	return tax, ok
}

// OfftimeCategory classifies a declared non-working interval.
type OfftimeCategory string

const (
	OfftimeVacation OfftimeCategory = "vacation"
	OfftimeHoliday  OfftimeCategory = "holiday"
	OfftimeSick     OfftimeCategory = "sick"
	OfftimeIncident OfftimeCategory = "incident"
)

// Client is a customer of the business.
type Client struct {
	ID         int64
	Name       string // Contact person
	Company    string // Legal name, may be empty for private clients
	Street     string
	PostalCode string
	City       string
	Country    string // ISO 3166-1 alpha-2
	Email      string
	Language   string // ISO 639-1, selects document labels
	Color      string
	VATID      string
}

// DisplayName returns the company name, falling back to the contact name.
func (c Client) DisplayName() string {
	if c.Company != "" {
		return c.Company
	}
	return c.Name
}

// Project is a contract with a client.
type Project struct {
	ID          int64
	ClientID    int64
	Title       string
	Description string
	Start       *time.Time
	Due         *time.Time
	MinHours    decimal.Decimal
	ScopeHours  decimal.Decimal
	Price       decimal.Decimal
	Unit        PricingUnit
	VATRate     decimal.Decimal // 0.19 = 19%
	Aborted     bool
}

// Estimate is a planned, unbilled line item used for quotes.
type Estimate struct {
	ID          int64
	ProjectID   int64
	Title       string
	Description string
	Amount      decimal.Decimal // Estimated hours
	Weight      int
}

// Invoice bills work done under a project.
type Invoice struct {
	ID          int64
	ProjectID   int64
	Number      string // Human-readable invoice number
	Title       string
	Description string
	Price       decimal.Decimal
	Unit        PricingUnit
	Discount    decimal.Decimal // Pre-tax reduction
	Taxable     bool
	VATRate     decimal.Decimal
	Transitory  bool // Excluded from profit reporting
	Undated     bool // Suppress per-line dates in documents
	InvoicedAt  *time.Time
	PaidAt      *time.Time
	Deduction   decimal.Decimal // Post-tax reduction
}

// DocumentNumber returns the invoice number, falling back to the record id.
func (i Invoice) DocumentNumber() string {
	if i.Number != "" {
		return i.Number
	}
	return decimal.NewFromInt(i.ID).String()
}

// Position is one logged work session billed under an invoice.
type Position struct {
	ID          int64
	InvoiceID   int64
	StartedAt   time.Time
	FinishedAt  time.Time
	Pause       decimal.Decimal // Hours
	Remote      bool
	Description string
}

// Expense is a business expense. Price is VAT-inclusive.
type Expense struct {
	ID          int64
	ExpendedAt  time.Time
	Price       decimal.Decimal
	Taxable     bool
	VATRate     decimal.Decimal
	Quantity    int
	Category    ExpenseCategory
	Description string
}

// Offtime is a declared non-working interval. A nil End means a single day.
type Offtime struct {
	ID          int64
	Start       time.Time
	End         *time.Time
	Category    OfftimeCategory
	Description string
}
