// Package store reads billing records from a local SQLite database.
//
// The store never writes records: it loads a consistent Snapshot inside one
// read-only transaction. Dates and amounts are stored as TEXT and parsed on
// load; a value that cannot be parsed is reported as a *models.FormatError
// naming its table, column and row.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"billing/internal/logger"
	"billing/pkg/models"
	"github.com/rs/zerolog"
)

// Reader provides snapshots of all billing records.
type Reader interface {
	Snapshot(ctx context.Context) (*models.Snapshot, error)
}

// Store is a SQLite backed Reader.
type Store struct {
	db  *sql.DB
	log zerolog.Logger
}

var _ Reader = (*Store)(nil)

// Open connects to the database at dbPath. The schema must exist; see Migrate.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath+"?_pragma=busy_timeout(5000)&_pragma=query_only(1)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &Store{db: db, log: logger.WithComponent("store")}, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Snapshot loads every record in one read transaction.
func (s *Store) Snapshot(ctx context.Context) (*models.Snapshot, error) {
	const op = "Snapshot"
	start := time.Now()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: begin: %w", op, err)
	}
	defer tx.Rollback()

	snap := &models.Snapshot{}
	loaders := []struct {
		table string
		load  func(context.Context, *sql.Tx, *models.Snapshot) error
	}{
		{"clients", loadClients},
		{"projects", loadProjects},
		{"estimates", loadEstimates},
		{"invoices", loadInvoices},
		{"positions", loadPositions},
		{"expenses", loadExpenses},
		{"offtimes", loadOfftimes},
	}
	for _, l := range loaders {
		if err := l.load(ctx, tx, snap); err != nil {
			return nil, fmt.Errorf("%s: %s: %w", op, l.table, err)
		}
	}

	s.log.Debug().
		Int("clients", len(snap.Clients)).
		Int("invoices", len(snap.Invoices)).
		Int("positions", len(snap.Positions)).
		Int("expenses", len(snap.Expenses)).
		Dur("duration", time.Since(start)).
		Msg("Loaded snapshot")
	return snap, nil
}

func query(ctx context.Context, tx *sql.Tx, q string, scan func(*sql.Rows) error) error {
	rows, err := tx.QueryContext(ctx, q)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		if err := scan(rows); err != nil {
			return err
		}
	}
	return rows.Err()
}

func loadClients(ctx context.Context, tx *sql.Tx, snap *models.Snapshot) error {
	return query(ctx, tx, `SELECT id, name, company, street, postal_code, city, country,
		email, language, color, vat_id FROM clients ORDER BY id`, func(rows *sql.Rows) error {
		var c models.Client
		if err := rows.Scan(&c.ID, &c.Name, &c.Company, &c.Street, &c.PostalCode, &c.City,
			&c.Country, &c.Email, &c.Language, &c.Color, &c.VATID); err != nil {
			return err
		}
		snap.Clients = append(snap.Clients, c)
		return nil
	})
}

func loadProjects(ctx context.Context, tx *sql.Tx, snap *models.Snapshot) error {
	const table = "projects"
	return query(ctx, tx, `SELECT id, client_id, title, description, start, due, min_hours,
		scope_hours, price, unit, vat_rate, aborted FROM projects ORDER BY id`, func(rows *sql.Rows) error {
		var (
			p                                     models.Project
			start, due, minH, scopeH, price, rate sql.NullString
			unit                                  string
			err                                   error
		)
		if err := rows.Scan(&p.ID, &p.ClientID, &p.Title, &p.Description, &start, &due, &minH,
			&scopeH, &price, &unit, &rate, &p.Aborted); err != nil {
			return err
		}
		p.Unit = models.PricingUnit(unit)
		if p.Start, err = parseOptionalDate(table, "start", p.ID, start); err != nil {
			return err
		}
		if p.Due, err = parseOptionalDate(table, "due", p.ID, due); err != nil {
			return err
		}
		if p.MinHours, err = parseDecimal(table, "min_hours", p.ID, minH); err != nil {
			return err
		}
		if p.ScopeHours, err = parseDecimal(table, "scope_hours", p.ID, scopeH); err != nil {
			return err
		}
		if p.Price, err = parseDecimal(table, "price", p.ID, price); err != nil {
			return err
		}
		if p.VATRate, err = parseDecimal(table, "vat_rate", p.ID, rate); err != nil {
			return err
		}
		snap.Projects = append(snap.Projects, p)
		return nil
	})
}

func loadEstimates(ctx context.Context, tx *sql.Tx, snap *models.Snapshot) error {
	return query(ctx, tx, `SELECT id, project_id, title, description, amount, weight
		FROM estimates ORDER BY id`, func(rows *sql.Rows) error {
		var (
			e      models.Estimate
			amount sql.NullString
			err    error
		)
		if err := rows.Scan(&e.ID, &e.ProjectID, &e.Title, &e.Description, &amount, &e.Weight); err != nil {
			return err
		}
		if e.Amount, err = parseDecimal("estimates", "amount", e.ID, amount); err != nil {
			return err
		}
		snap.Estimates = append(snap.Estimates, e)
		return nil
	})
}

func loadInvoices(ctx context.Context, tx *sql.Tx, snap *models.Snapshot) error {
	const table = "invoices"
	return query(ctx, tx, `SELECT id, project_id, number, title, description, price, unit,
		discount, taxable, vat_rate, transitory, undated, invoiced_at, paid_at, deduction
		FROM invoices ORDER BY id`, func(rows *sql.Rows) error {
		var (
			inv                              models.Invoice
			price, discount, rate, deduction sql.NullString
			invoicedAt, paidAt               sql.NullString
			unit                             string
			err                              error
		)
		if err := rows.Scan(&inv.ID, &inv.ProjectID, &inv.Number, &inv.Title, &inv.Description,
			&price, &unit, &discount, &inv.Taxable, &rate, &inv.Transitory, &inv.Undated,
			&invoicedAt, &paidAt, &deduction); err != nil {
			return err
		}
		inv.Unit = models.PricingUnit(unit)
		if inv.Price, err = parseDecimal(table, "price", inv.ID, price); err != nil {
			return err
		}
		if inv.Discount, err = parseDecimal(table, "discount", inv.ID, discount); err != nil {
			return err
		}
		if inv.VATRate, err = parseDecimal(table, "vat_rate", inv.ID, rate); err != nil {
			return err
		}
		if inv.Deduction, err = parseDecimal(table, "deduction", inv.ID, deduction); err != nil {
			return err
		}
		if inv.InvoicedAt, err = parseOptionalDate(table, "invoiced_at", inv.ID, invoicedAt); err != nil {
			return err
		}
		if inv.PaidAt, err = parseOptionalDate(table, "paid_at", inv.ID, paidAt); err != nil {
			return err
		}
		snap.Invoices = append(snap.Invoices, inv)
		return nil
	})
}

func loadPositions(ctx context.Context, tx *sql.Tx, snap *models.Snapshot) error {
	const table = "positions"
	return query(ctx, tx, `SELECT id, invoice_id, started_at, finished_at, pause, remote, description
		FROM positions ORDER BY id`, func(rows *sql.Rows) error {
		var (
			p                 models.Position
			started, finished string
			pause             sql.NullString
			err               error
		)
		if err := rows.Scan(&p.ID, &p.InvoiceID, &started, &finished, &pause, &p.Remote, &p.Description); err != nil {
			return err
		}
		if p.StartedAt, err = parseDate(table, "started_at", p.ID, started); err != nil {
			return err
		}
		if p.FinishedAt, err = parseDate(table, "finished_at", p.ID, finished); err != nil {
			return err
		}
		if p.Pause, err = parseDecimal(table, "pause", p.ID, pause); err != nil {
			return err
		}
		snap.Positions = append(snap.Positions, p)
		return nil
	})
}

func loadExpenses(ctx context.Context, tx *sql.Tx, snap *models.Snapshot) error {
	const table = "expenses"
	return query(ctx, tx, `SELECT id, expended_at, price, taxable, vat_rate, quantity, category, description
		FROM expenses ORDER BY id`, func(rows *sql.Rows) error {
		var (
			e           models.Expense
			expendedAt  string
			price, rate sql.NullString
			category    string
			err         error
		)
		if err := rows.Scan(&e.ID, &expendedAt, &price, &e.Taxable, &rate, &e.Quantity, &category, &e.Description); err != nil {
			return err
		}
		e.Category = models.ExpenseCategory(category)
		if e.ExpendedAt, err = parseDate(table, "expended_at", e.ID, expendedAt); err != nil {
			return err
		}
		if e.Price, err = parseDecimal(table, "price", e.ID, price); err != nil {
			return err
		}
		if e.VATRate, err = parseDecimal(table, "vat_rate", e.ID, rate); err != nil {
			return err
		}
		snap.Expenses = append(snap.Expenses, e)
		return nil
	})
}

func loadOfftimes(ctx context.Context, tx *sql.Tx, snap *models.Snapshot) error {
	const table = "offtimes"
	return query(ctx, tx, `SELECT id, start_date, end_date, category, description
		FROM offtimes ORDER BY id`, func(rows *sql.Rows) error {
		var (
			o        models.Offtime
			start    string
			end      sql.NullString
			category string
			err      error
		)
		if err := rows.Scan(&o.ID, &start, &end, &category, &o.Description); err != nil {
			return err
		}
		o.Category = models.OfftimeCategory(category)
		if o.Start, err = parseDate(table, "start_date", o.ID, start); err != nil {
			return err
		}
		if o.End, err = parseOptionalDate(table, "end_date", o.ID, end); err != nil {
			return err
		}
		snap.Offtimes = append(snap.Offtimes, o)
		return nil
	})
}
