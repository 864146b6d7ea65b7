package models

import (
	"sort"
)

// Snapshot is a consistent, read-only view of all billing records.
type Snapshot struct {
	Clients   []Client
	Projects  []Project
	Estimates []Estimate
	Invoices  []Invoice
	Positions []Position
	Expenses  []Expense
	Offtimes  []Offtime
}

// Client returns the client with the given id.
func (s *Snapshot) Client(id int64) (Client, error) {
	for _, c := range s.Clients {
		if c.ID == id {
			return c, nil
		}
	}
	return Client{}, NewValidationError("client_id", id, ErrNotFound, "client does not exist")
}

// Project returns the project with the given id.
func (s *Snapshot) Project(id int64) (Project, error) {
	for _, p := range s.Projects {
		if p.ID == id {
			return p, nil
		}
	}
	return Project{}, NewValidationError("project_id", id, ErrNotFound, "project does not exist")
}

// Invoice returns the invoice with the given id.
func (s *Snapshot) Invoice(id int64) (Invoice, error) {
	for _, inv := range s.Invoices {
		if inv.ID == id {
			return inv, nil
		}
	}
	return Invoice{}, NewValidationError("invoice_id", id, ErrNotFound, "invoice does not exist")
}

// ProjectsOf returns the projects of a client ordered by id.
func (s *Snapshot) ProjectsOf(clientID int64) []Project {
	var out []Project
	for _, p := range s.Projects {
		if p.ClientID == clientID {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// InvoicesOf returns the invoices of a project ordered by id.
func (s *Snapshot) InvoicesOf(projectID int64) []Invoice {
	var out []Invoice
	for _, inv := range s.Invoices {
		if inv.ProjectID == projectID {
			out = append(out, inv)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// PositionsOf returns the positions of an invoice in document order.
func (s *Snapshot) PositionsOf(invoiceID int64) []Position {
	var out []Position
	for _, p := range s.Positions {
		if p.InvoiceID == invoiceID {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].StartedAt.Equal(out[j].StartedAt) {
			return out[i].StartedAt.Before(out[j].StartedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// EstimatesOf returns the estimates of a project ordered by weight.
func (s *Snapshot) EstimatesOf(projectID int64) []Estimate {
	var out []Estimate
	for _, e := range s.Estimates {
		if e.ProjectID == projectID {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Weight != out[j].Weight {
			return out[i].Weight < out[j].Weight
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// ClientOfInvoice resolves the project and client an invoice belongs to.
func (s *Snapshot) ClientOfInvoice(inv Invoice) (Project, Client, error) {
	project, err := s.Project(inv.ProjectID)
	if err != nil {
		return Project{}, Client{}, err
	}
	client, err := s.Client(project.ClientID)
	if err != nil {
		return Project{}, Client{}, err
	}
	return project, client, nil
}
