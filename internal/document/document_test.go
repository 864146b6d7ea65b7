package document

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"billing/internal/document/doctest"
	"billing/pkg/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertDec(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.Truef(t, decimal.RequireFromString(want).Equal(got), "want %s, got %s", want, got)
}

func TestNewInvoiceView(t *testing.T) {
	v, err := NewInvoiceView(doctest.Snapshot(), doctest.InvoiceID, doctest.Settings())
	require.NoError(t, err)

	assert.Equal(t, KindInvoice, v.Kind)
	assert.Equal(t, "2024-001", v.Number)
	assert.Equal(t, "Acme Ltd", v.Client.DisplayName())
	assert.Equal(t, "Jane Doe Consulting", v.Business.Name)
	assert.Equal(t, "DE89370400440532013000", v.Business.IBAN)
	assertDec(t, "10", v.Totals.Hours)
	assertDec(t, "1000", v.Totals.Net)
	assertDec(t, "190", v.Totals.VAT)
	assertDec(t, "1190", v.Totals.Gross)
	require.NotNil(t, v.DueDate)
	assert.Equal(t, time.Date(2024, time.April, 16, 0, 0, 0, 0, time.UTC), *v.DueDate)

	require.Len(t, v.Lines, 2)
	first := v.Lines[0]
	assert.Equal(t, "04.03.2024", first.Label)
	assert.Equal(t, "Kickoff", first.Description)
	assertDec(t, "4", first.Quantity)
	assertDec(t, "100", first.UnitPrice)
	assertDec(t, "400", first.Total)
	assertDec(t, "400", first.Net)
	assert.Equal(t, "05.03.2024", v.Lines[1].Label)

	require.Len(t, v.Pages, 1)
	assert.Equal(t, v.Lines, v.Pages[0])
	assert.True(t, v.ShowQuantities())
}

func TestNewInvoiceViewUndated(t *testing.T) {
	v, err := NewInvoiceView(doctest.Snapshot(), doctest.UndatedInvoiceID, doctest.Settings())
	require.NoError(t, err)
	require.Len(t, v.Lines, 1)
	assert.Equal(t, "1.", v.Lines[0].Label)
}

func TestNewInvoiceViewFlatPrice(t *testing.T) {
	v, err := NewInvoiceView(doctest.Snapshot(), doctest.FlatInvoiceID, doctest.Settings())
	require.NoError(t, err)

	assertDec(t, "4500", v.Totals.Net)
	assertDec(t, "500", v.Discount)
	assert.False(t, v.ShowQuantities())
	assertDec(t, "4500", v.Lines[0].Net)
	assert.True(t, v.German())
}

func TestNewInvoiceViewDraft(t *testing.T) {
	v, err := NewInvoiceView(doctest.Snapshot(), doctest.DraftInvoiceID, models.Settings{})
	require.NoError(t, err)

	assert.Equal(t, "103", v.Number)
	assert.Nil(t, v.IssueDate)
	assert.Nil(t, v.DueDate)
	assert.Empty(t, v.Business.Name)
	assert.Empty(t, v.Lines)
}

func TestNewInvoiceViewErrors(t *testing.T) {
	_, err := NewInvoiceView(doctest.Snapshot(), 999, doctest.Settings())
	assert.ErrorIs(t, err, models.ErrNotFound)

	settings := doctest.Settings()
	settings[models.SettingPaymentTerm] = "two weeks"
	_, err = NewInvoiceView(doctest.Snapshot(), doctest.InvoiceID, settings)
	var formatErr *models.FormatError
	assert.ErrorAs(t, err, &formatErr)

	snap := doctest.Snapshot()
	snap.Positions[0].FinishedAt = snap.Positions[0].StartedAt.Add(-time.Hour)
	_, err = NewInvoiceView(snap, doctest.InvoiceID, doctest.Settings())
	assert.ErrorIs(t, err, models.ErrNegativeDuration)
}

func TestNewQuoteView(t *testing.T) {
	issued := time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC)
	v, err := NewQuoteView(doctest.Snapshot(), doctest.FlatProjectID, doctest.Settings(), issued)
	require.NoError(t, err)

	assert.Equal(t, KindQuote, v.Kind)
	assert.Equal(t, "11", v.Number)
	assert.Equal(t, issued, *v.IssueDate)
	assert.True(t, v.Taxable)
	assertDec(t, "16", v.Totals.Hours)
	assertDec(t, "5000", v.Totals.Net)
	assertDec(t, "950", v.Totals.VAT)

	require.Len(t, v.Lines, 2)
	assert.Equal(t, "1.", v.Lines[0].Label)
	assert.Equal(t, "Kickoff", v.Lines[0].Title)
	assert.Equal(t, "Design", v.Lines[1].Title)
	assertDec(t, "3750", v.Lines[1].Net)

	_, err = NewQuoteView(doctest.Snapshot(), 999, doctest.Settings(), issued)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestViewPagination(t *testing.T) {
	snap := doctest.Snapshot()
	start := time.Date(2024, time.March, 1, 8, 0, 0, 0, time.UTC)
	for i := 0; i < 40; i++ {
		snap.Positions = append(snap.Positions, models.Position{
			ID:          int64(1000 + i),
			InvoiceID:   doctest.DraftInvoiceID,
			StartedAt:   start.AddDate(0, 0, i),
			FinishedAt:  start.AddDate(0, 0, i).Add(time.Hour),
			Description: "Task",
		})
	}

	v, err := NewInvoiceView(snap, doctest.DraftInvoiceID, doctest.Settings())
	require.NoError(t, err)
	require.Len(t, v.Pages, 3)
	assert.Len(t, v.Pages[0], 16)
	assert.Len(t, v.Pages[2], 8)
}

func TestFileName(t *testing.T) {
	snap := doctest.Snapshot()
	settings := doctest.Settings()

	inv, err := NewInvoiceView(snap, doctest.InvoiceID, settings)
	require.NoError(t, err)
	assert.Equal(t, "2024-001_invoice_jane-doe-consulting.pdf", FileName(inv, "pdf"))
	assert.Equal(t, "2024-001_invoice_jane-doe-consulting.xml", FileName(inv, ".xml"))

	german, err := NewInvoiceView(snap, doctest.FlatInvoiceID, settings)
	require.NoError(t, err)
	assert.Equal(t, "2024-003_rechnung_jane-doe-consulting.pdf", FileName(german, "pdf"))

	quote, err := NewQuoteView(snap, doctest.FlatProjectID, settings, time.Now())
	require.NoError(t, err)
	assert.Equal(t, "11_angebot_jane-doe-consulting.pdf", FileName(quote, "pdf"))

	quote.Client.Language = "en"
	quote.Business.Name = "  ACME /  Tools\\Inc "
	assert.Equal(t, "11_quote_acme-toolsinc.pdf", FileName(quote, "pdf"))

	quote.Business.Name = ""
	assert.Equal(t, "11_quote.pdf", FileName(quote, "pdf"))
}

func listDir(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestOutputWrite(t *testing.T) {
	dir := t.TempDir()
	out := NewOutput(filepath.Join(dir, "docs"))

	path, err := out.Write(context.Background(), "a.txt", func(w io.Writer) error {
		_, err := io.WriteString(w, "hello")
		return err
	})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
	assert.Equal(t, []string{"a.txt"}, listDir(t, filepath.Join(dir, "docs")))
}

func TestOutputRenderFailureLeavesNothing(t *testing.T) {
	dir := t.TempDir()
	out := NewOutput(dir)
	renderErr := models.NewValidationError("iban", "", models.ErrMissingSetting, "setting is required")

	_, err := out.Write(context.Background(), "a.xml", func(w io.Writer) error {
		io.WriteString(w, "<partial")
		return renderErr
	})

	assert.Same(t, renderErr, err)
	assert.Empty(t, listDir(t, dir))
}

func TestOutputKeepsPreviousOnFailure(t *testing.T) {
	dir := t.TempDir()
	out := NewOutput(dir)
	write := func(content string, fail bool) error {
		_, err := out.Write(context.Background(), "doc.txt", func(w io.Writer) error {
			io.WriteString(w, content)
			if fail {
				return errors.New("boom")
			}
			return nil
		})
		return err
	}

	require.NoError(t, write("first", false))
	require.Error(t, write("second", true))

	data, err := os.ReadFile(filepath.Join(dir, "doc.txt"))
	require.NoError(t, err)
	assert.Equal(t, "first", string(data))
}

func TestOutputCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	_, err := NewOutput(t.TempDir()).Write(ctx, "a.txt", func(io.Writer) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}

func TestOutputUnwritableDir(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))

	_, err := NewOutput(blocker).Write(context.Background(), "a.txt", func(io.Writer) error { return nil })

	var renderErr *models.RenderError
	require.ErrorAs(t, err, &renderErr)
	assert.ErrorIs(t, err, models.ErrWriteFailed)
	assert.Contains(t, renderErr.Path, "a.txt")
}

func TestOutputConcurrentSamePath(t *testing.T) {
	dir := t.TempDir()
	out := NewOutput(dir)
	content := strings.Repeat("0123456789", 10000)

	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := out.Write(context.Background(), "same.txt", func(w io.Writer) error {
				for j := 0; j < len(content); j += 1000 {
					if _, err := io.WriteString(w, content[j:j+1000]); err != nil {
						return err
					}
				}
				return nil
			})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}
	data, err := os.ReadFile(filepath.Join(dir, "same.txt"))
	require.NoError(t, err)
	assert.Equal(t, content, string(data))
	assert.Equal(t, []string{"same.txt"}, listDir(t, dir))
}

type textRenderer struct{}

func (textRenderer) Format() string { return "txt" }

func (textRenderer) Render(w io.Writer, v *View) error {
	_, err := fmt.Fprintf(w, "%s %s %s", v.Kind, v.Number, v.Totals.Gross.StringFixed(2))
	return err
}

func TestGenerator(t *testing.T) {
	dir := t.TempDir()
	gen := NewGenerator(NewOutput(dir), doctest.Settings(), textRenderer{})
	assert.Equal(t, []string{"txt"}, gen.Formats())

	artifacts, err := gen.Invoice(context.Background(), doctest.Snapshot(), doctest.InvoiceID, []string{" TXT "})
	require.NoError(t, err)
	require.Len(t, artifacts, 1)
	assert.Equal(t, filepath.Join(dir, "2024-001_invoice_jane-doe-consulting.txt"), artifacts[0].Path)

	data, err := os.ReadFile(artifacts[0].Path)
	require.NoError(t, err)
	assert.Equal(t, "invoice 2024-001 1190.00", string(data))

	artifacts, err = gen.Quote(context.Background(), doctest.Snapshot(), doctest.FlatProjectID, []string{"txt"})
	require.NoError(t, err)
	assert.Equal(t, "txt", artifacts[0].Format)

	_, err = gen.Invoice(context.Background(), doctest.Snapshot(), doctest.InvoiceID, []string{"docx"})
	assert.ErrorIs(t, err, models.ErrUnsupportedKind)

	_, err = gen.Invoice(context.Background(), doctest.Snapshot(), 999, []string{"txt"})
	assert.ErrorIs(t, err, models.ErrNotFound)
}
