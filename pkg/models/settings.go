package models

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Settings keys describing the invoicing business.
const (
	SettingName          = "name"
	SettingStreet        = "street"
	SettingPostalCode    = "postal_code"
	SettingCity          = "city"
	SettingCountry       = "country"
	SettingEmail         = "email"
	SettingPhone         = "phone"
	SettingWebsite       = "website"
	SettingIBAN          = "iban"
	SettingBIC           = "bic"
	SettingBankName      = "bank_name"
	SettingAccountHolder = "account_holder"
	SettingTaxOffice     = "tax_office"
	SettingVATID         = "vat_id"
	SettingVATRate       = "vat_rate"
	SettingLogo          = "logo"
	SettingSignature     = "signature"
	SettingPaymentTerm   = "payment_term_days"
)

// DefaultPaymentTermDays applies when no payment term is configured.
const DefaultPaymentTermDays = 14

// Settings is the read-only key/value configuration of the business.
// Missing keys read as empty strings.
type Settings map[string]string

// Get returns the trimmed value for key, or "" when unset.
func (s Settings) Get(key string) string {
	return strings.TrimSpace(s[key])
}

// VATRate returns the default VAT rate. Unset reads as zero.
func (s Settings) VATRate() (decimal.Decimal, error) {
	raw := s.Get(SettingVATRate)
	if raw == "" {
		return decimal.Zero, nil
	}
	rate, err := decimal.NewFromString(strings.ReplaceAll(raw, ",", "."))
	if err != nil {
		return decimal.Zero, NewFormatError(SettingVATRate, raw, ErrInvalidNumber)
	}
	return rate, nil
}

// PaymentTermDays returns the number of days between issue and due date.
func (s Settings) PaymentTermDays() (int, error) {
	raw := s.Get(SettingPaymentTerm)
	if raw == "" {
		return DefaultPaymentTermDays, nil
	}
	days, err := strconv.Atoi(raw)
	if err != nil || days < 0 {
		return 0, NewFormatError(SettingPaymentTerm, raw, ErrInvalidNumber)
	}
	return days, nil
}

// Require returns a ValidationError for the first key that is unset.
func (s Settings) Require(keys ...string) error {
	for _, key := range keys {
		if s.Get(key) == "" {
			return NewValidationError(key, "", ErrMissingSetting, "setting is required")
		}
	}
	return nil
}
