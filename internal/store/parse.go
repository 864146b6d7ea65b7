package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"billing/pkg/models"
	"github.com/shopspring/decimal"
)

// dateLayouts are tried in order. Values without zone are wall-clock times
// and are read as UTC.
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"02.01.2006 15:04",
	"02.01.2006", // DD.MM.YYYY
	"2.1.2006",   // D.M.YYYY
}

// field names a column of a row for error messages, e.g. "invoices.paid_at[7]".
func field(table, column string, id int64) string {
	return fmt.Sprintf("%s.%s[%d]", table, column, id)
}

// parseDate parses a stored date or timestamp.
func parseDate(table, column string, id int64, raw string) (time.Time, error) {
	cleaned := strings.TrimSpace(raw)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, cleaned); err == nil {
			return t, nil
		}
	}
	return time.Time{}, models.NewFormatError(field(table, column, id), raw, models.ErrInvalidDate)
}

// parseOptionalDate returns nil for NULL or blank values.
func parseOptionalDate(table, column string, id int64, raw sql.NullString) (*time.Time, error) {
	if !raw.Valid || strings.TrimSpace(raw.String) == "" {
		return nil, nil
	}
	t, err := parseDate(table, column, id, raw.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// parseDecimal parses a stored amount. Both "1234.56" and the German
// "1.234,56" are accepted; NULL and blank read as zero.
func parseDecimal(table, column string, id int64, raw sql.NullString) (decimal.Decimal, error) {
	if !raw.Valid {
		return decimal.Zero, nil
	}
	cleaned := strings.TrimSpace(raw.String)
	if cleaned == "" {
		return decimal.Zero, nil
	}

	cleaned = strings.ReplaceAll(cleaned, " ", "")
	cleaned = strings.ReplaceAll(cleaned, "€", "")
	cleaned = strings.ReplaceAll(cleaned, "EUR", "")
	if strings.Contains(cleaned, ",") {
		// German format: dots group thousands, the comma separates decimals.
		cleaned = strings.ReplaceAll(cleaned, ".", "")
		cleaned = strings.ReplaceAll(cleaned, ",", ".")
	}

	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, models.NewFormatError(field(table, column, id), raw.String, models.ErrInvalidNumber)
	}
	return d, nil
}
