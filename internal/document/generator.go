package document

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"billing/internal/logger"
	"billing/pkg/models"
)

// Renderer turns a View into one artifact format.
type Renderer interface {
	// Format is the short format name and file extension, e.g. "pdf".
	Format() string

	// Render writes the document for v to w. Renderers validate the view
	// before writing, so a validation failure leaves w untouched.
	Render(w io.Writer, v *View) error
}

// Artifact is a document written to disk.
type Artifact struct {
	Format string
	Path   string
}

// Generator renders invoices and quotes through a set of renderers and
// writes them with an Output.
type Generator struct {
	out       *Output
	settings  models.Settings
	renderers map[string]Renderer
	now       func() time.Time
}

// NewGenerator creates a Generator. Renderers are selected by their Format.
func NewGenerator(out *Output, settings models.Settings, renderers ...Renderer) *Generator {
	byFormat := make(map[string]Renderer, len(renderers))
	for _, r := range renderers {
		byFormat[r.Format()] = r
	}
	return &Generator{
		out:       out,
		settings:  settings,
		renderers: byFormat,
		now:       time.Now,
	}
}

// Formats lists the formats the generator can produce.
func (g *Generator) Formats() []string {
	formats := make([]string, 0, len(g.renderers))
	for f := range g.renderers {
		formats = append(formats, f)
	}
	sort.Strings(formats)
	return formats
}

// Invoice renders the invoice with the given id in each requested format.
func (g *Generator) Invoice(ctx context.Context, snap *models.Snapshot, invoiceID int64, formats []string) ([]Artifact, error) {
	v, err := NewInvoiceView(snap, invoiceID, g.settings)
	if err != nil {
		return nil, err
	}
	return g.render(ctx, v, formats)
}

// Quote renders the quote of a project in each requested format.
func (g *Generator) Quote(ctx context.Context, snap *models.Snapshot, projectID int64, formats []string) ([]Artifact, error) {
	v, err := NewQuoteView(snap, projectID, g.settings, g.now())
	if err != nil {
		return nil, err
	}
	return g.render(ctx, v, formats)
}

func (g *Generator) render(ctx context.Context, v *View, formats []string) ([]Artifact, error) {
	const op = "Generator.render"

	base, _ := logger.NewRequestLogger("document")
	log := base.With().
		Str("kind", string(v.Kind)).
		Str("number", v.Number).
		Logger()

	log.Info().
		Int("lines", len(v.Lines)).
		Int("pages", len(v.Pages)).
		Str("net", v.Totals.Net.StringFixed(2)).
		Msg("Rendering document")

	var artifacts []Artifact
	for _, format := range formats {
		format = strings.ToLower(strings.TrimSpace(format))
		r, ok := g.renderers[format]
		if !ok {
			return artifacts, models.NewValidationError("format", format, models.ErrUnsupportedKind,
				"no renderer for format")
		}

		start := time.Now()
		path, err := g.out.Write(ctx, FileName(v, r.Format()), func(w io.Writer) error {
			return r.Render(w, v)
		})
		if err != nil {
			log.Error().Err(err).Str("format", format).Msg("Failed to render document")
			return artifacts, fmt.Errorf("%s: %s %s: %w", op, v.Kind, v.Number, err)
		}

		log.Info().
			Str("format", format).
			Str("path", path).
			Dur("duration", time.Since(start)).
			Msg("Document written")
		artifacts = append(artifacts, Artifact{Format: format, Path: path})
	}
	return artifacts, nil
}
