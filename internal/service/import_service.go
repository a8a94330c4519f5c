package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"crm/internal/importer"
	"crm/internal/model"
	"crm/internal/repository"

	"github.com/google/uuid"
)

const (
	ImportRowSuccess = "success"
	ImportRowError   = "error"
)

type ImportRowResult struct {
	Row     int        `json:"row"`
	Status  string     `json:"status"`
	Message string     `json:"message,omitempty"`
	ID      *uuid.UUID `json:"id,omitempty"`
}

type ImportResult struct {
	Total     int               `json:"total"`
	Succeeded int               `json:"succeeded"`
	Failed    int               `json:"failed"`
	Rows      []ImportRowResult `json:"rows"`
}

func (r *ImportResult) add(row int, id *uuid.UUID, err error) {
	r.Total++
	if err != nil {
		r.Failed++
		r.Rows = append(r.Rows, ImportRowResult{Row: row, Status: ImportRowError, Message: err.Error()})
		return
	}
	r.Succeeded++
	r.Rows = append(r.Rows, ImportRowResult{Row: row, Status: ImportRowSuccess, ID: id})
}

type ImportService interface {
	ImportLeads(ctx context.Context, actor model.Actor, filename string, r io.Reader) (ImportResult, error)
	ImportClients(ctx context.Context, actor model.Actor, filename string, r io.Reader) (ImportResult, error)
}

type importService struct {
	leads      LeadService
	clients    ClientService
	leadRepo   repository.LeadRepository
	clientRepo repository.ClientRepository
	auditRepo  repository.AuditRepository
}

func NewImportService(
	leads LeadService,
	clients ClientService,
	leadRepo repository.LeadRepository,
	clientRepo repository.ClientRepository,
	auditRepo repository.AuditRepository,
) ImportService {
	return &importService{
		leads:      leads,
		clients:    clients,
		leadRepo:   leadRepo,
		clientRepo: clientRepo,
		auditRepo:  auditRepo,
	}
}

func readUpload(filename string, r io.Reader, schema importer.Schema) ([]importer.Row, error) {
	rows, err := importer.Read(filename, r, schema)
	if err != nil {
		return nil, validationError("%s", err.Error())
	}
	return rows, nil
}

func duplicateRow(what string) error {
	return fmt.Errorf("%w: %s already registered", ErrDuplicate, what)
}

// ImportLeads creates one lead per row. A row whose email or phone matches a
// lead visible to the actor, or an earlier row, is reported as duplicate.
func (s *importService) ImportLeads(ctx context.Context, actor model.Actor, filename string, r io.Reader) (ImportResult, error) {
	rows, err := readUpload(filename, r, importer.LeadSchema)
	if err != nil {
		return ImportResult{}, err
	}

	existing, err := s.leadRepo.Contacts(ctx, ownerScope(actor))
	if err != nil {
		return ImportResult{}, fmt.Errorf("failed to load existing leads: %w", err)
	}
	emails := make(map[string]bool)
	phones := make(map[string]bool)
	for _, l := range existing {
		if l.Email != "" {
			emails[strings.ToLower(l.Email)] = true
		}
		if p := digitsOnly(l.Phone); p != "" {
			phones[p] = true
		}
	}

	result := ImportResult{Rows: make([]ImportRowResult, 0, len(rows))}
	for _, row := range rows {
		email := strings.ToLower(row.Get("email"))
		phone := digitsOnly(row.Get("phone"))
		if email != "" && emails[email] {
			result.add(row.Line, nil, duplicateRow("email "+email))
			continue
		}
		if phone != "" && phones[phone] {
			result.add(row.Line, nil, duplicateRow("phone "+row.Get("phone")))
			continue
		}

		lead, err := s.leads.Create(ctx, actor, CreateLeadRequest{
			PersonName:        row.Get("person_name"),
			EstablishmentName: row.Get("establishment_name"),
			City:              row.Get("city"),
			Phone:             row.Get("phone"),
			Email:             row.Get("email"),
			Notes:             row.Get("notes"),
			Source:            strings.ToLower(row.Get("source")),
		})
		if err != nil {
			result.add(row.Line, nil, err)
			continue
		}
		if email != "" {
			emails[email] = true
		}
		if phone != "" {
			phones[phone] = true
		}
		result.add(row.Line, &lead.ID, nil)
	}

	s.auditImport(ctx, actor, "leads", result)
	return result, nil
}

// ImportClients creates one client per row; duplicates match on CNPJ, else email.
func (s *importService) ImportClients(ctx context.Context, actor model.Actor, filename string, r io.Reader) (ImportResult, error) {
	rows, err := readUpload(filename, r, importer.ClientSchema)
	if err != nil {
		return ImportResult{}, err
	}

	seenTax := make(map[string]bool)
	seenEmail := make(map[string]bool)
	result := ImportResult{Rows: make([]ImportRowResult, 0, len(rows))}
	for _, row := range rows {
		taxID := digitsOnly(row.Get("tax_id"))
		email := strings.ToLower(row.Get("email"))

		if dup, err := s.clientExists(ctx, taxID, email, seenTax, seenEmail); err != nil {
			result.add(row.Line, nil, err)
			continue
		} else if dup != "" {
			result.add(row.Line, nil, duplicateRow(dup))
			continue
		}

		client, err := s.clients.Create(ctx, actor, CreateClientRequest{
			PersonName:        row.Get("person_name"),
			EstablishmentName: row.Get("establishment_name"),
			TaxID:             row.Get("tax_id"),
			CPF:               row.Get("cpf"),
			City:              row.Get("city"),
			Phone:             row.Get("phone"),
			Email:             row.Get("email"),
			Street:            row.Get("street"),
			Number:            row.Get("number"),
			Complement:        row.Get("complement"),
			Neighborhood:      row.Get("neighborhood"),
			PostalCode:        row.Get("postal_code"),
			Notes:             row.Get("notes"),
		})
		if err != nil {
			result.add(row.Line, nil, err)
			continue
		}
		if taxID != "" {
			seenTax[taxID] = true
		}
		if email != "" {
			seenEmail[email] = true
		}
		result.add(row.Line, &client.ID, nil)
	}

	s.auditImport(ctx, actor, "clientes", result)
	return result, nil
}

// clientExists returns a description of the clashing key, or "".
func (s *importService) clientExists(ctx context.Context, taxID, email string, seenTax, seenEmail map[string]bool) (string, error) {
	if taxID != "" {
		if seenTax[taxID] {
			return "CNPJ " + taxID, nil
		}
		_, err := s.clientRepo.FindByTaxID(ctx, taxID)
		if err == nil {
			return "CNPJ " + taxID, nil
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return "", err
		}
		return "", nil
	}
	if email != "" {
		if seenEmail[email] {
			return "email " + email, nil
		}
		_, err := s.clientRepo.FindByEmail(ctx, email)
		if err == nil {
			return "email " + email, nil
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return "", err
		}
	}
	return "", nil
}

func (s *importService) auditImport(ctx context.Context, actor model.Actor, entity string, result ImportResult) {
	details := map[string]int{"total": result.Total, "succeeded": result.Succeeded, "failed": result.Failed}
	if err := recordAudit(ctx, s.auditRepo, actor, model.ActionImport, uuid.Nil, entity, details); err != nil {
		log.Printf("import of %s succeeded but audit failed: %v", entity, err)
	}
}
