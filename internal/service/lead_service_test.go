package service_test

import (
	"context"
	"errors"
	"testing"

	"crm/internal/model"
	"crm/internal/service"
)

func strPtr(s string) *string { return &s }

func TestLeadStatusChangeAppendsOneHistoryRow(t *testing.T) {
	env := newEnv(t)
	ctx := context.Background()

	lead, err := env.leads.Create(ctx, env.rep, service.CreateLeadRequest{
		PersonName:        "João Silva",
		EstablishmentName: "Mercado Silva",
		City:              "São Paulo",
		Phone:             "11999990000",
		Email:             "joao@example.com",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if lead.Status != model.LeadStatusNew || lead.RepresentativeID != env.rep.ID {
		t.Fatalf("unexpected lead after create: %+v", lead)
	}
	history, _ := env.leads.History(ctx, env.rep, lead.ID)
	if len(history) != 0 {
		t.Fatalf("create must not write history, got %d rows", len(history))
	}

	updated, err := env.leads.Update(ctx, env.rep, lead.ID, service.UpdateLeadRequest{Status: strPtr(model.LeadStatusContacted)})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Status != model.LeadStatusContacted {
		t.Fatalf("status = %s, want contacted", updated.Status)
	}

	history, err = env.leads.History(ctx, env.rep, lead.ID)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("expected exactly one history row, got %d", len(history))
	}
	h := history[0]
	if h.PreviousStatus != model.LeadStatusNew || h.NewStatus != model.LeadStatusContacted {
		t.Errorf("unexpected transition %s -> %s", h.PreviousStatus, h.NewStatus)
	}
	if h.UserID != env.rep.ID || h.Reason != model.DefaultStatusReason {
		t.Errorf("unexpected actor or reason: %+v", h)
	}
	if owners := env.events.owners(service.EventLeadStatusChanged); len(owners) != 1 || owners[0] != env.rep.ID {
		t.Errorf("expected one status event scoped to the rep, got %v", owners)
	}

	// same status and non-status edits leave history alone
	if _, err := env.leads.Update(ctx, env.rep, lead.ID, service.UpdateLeadRequest{Status: strPtr(model.LeadStatusContacted)}); err != nil {
		t.Fatalf("noop update: %v", err)
	}
	if _, err := env.leads.Update(ctx, env.rep, lead.ID, service.UpdateLeadRequest{Notes: strPtr("ligar amanhã")}); err != nil {
		t.Fatalf("notes update: %v", err)
	}
	history, _ = env.leads.History(ctx, env.rep, lead.ID)
	if len(history) != 1 {
		t.Fatalf("expected history to stay at 1 row, got %d", len(history))
	}

	// any state may move to any other, with a custom reason
	if _, err := env.leads.Update(ctx, env.rep, lead.ID, service.UpdateLeadRequest{Status: strPtr(model.LeadStatusLost), Reason: "sem interesse"}); err != nil {
		t.Fatalf("lost update: %v", err)
	}
	history, _ = env.leads.History(ctx, env.rep, lead.ID)
	if len(history) != 2 || history[0].Reason != "sem interesse" {
		t.Fatalf("expected newest entry with custom reason, got %+v", history)
	}
}

func TestLeadValidation(t *testing.T) {
	env := newEnv(t)
	ctx := context.Background()

	_, err := env.leads.Create(ctx, env.rep, service.CreateLeadRequest{PersonName: "x", EstablishmentName: "y", City: "z"})
	if !errors.Is(err, service.ErrValidation) {
		t.Errorf("missing phone: expected ErrValidation, got %v", err)
	}
	_, err = env.leads.Create(ctx, env.rep, service.CreateLeadRequest{PersonName: "x", EstablishmentName: "y", City: "z", Phone: "1", Email: "not-an-email"})
	if !errors.Is(err, service.ErrValidation) {
		t.Errorf("bad email: expected ErrValidation, got %v", err)
	}
	lead, err := env.leads.Create(ctx, env.rep, service.CreateLeadRequest{PersonName: "x", EstablishmentName: "y", City: "z", Phone: "1"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	_, err = env.leads.Update(ctx, env.rep, lead.ID, service.UpdateLeadRequest{Status: strPtr("archived")})
	if !errors.Is(err, service.ErrValidation) {
		t.Errorf("unknown status: expected ErrValidation, got %v", err)
	}
}

func TestLeadOwnershipAndAdminDelete(t *testing.T) {
	env := newEnv(t)
	ctx := context.Background()

	lead, err := env.leads.Create(ctx, env.rep, service.CreateLeadRequest{PersonName: "Ana", EstablishmentName: "Loja", City: "Recife", Phone: "81"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := env.leads.Get(ctx, env.other, lead.ID); !errors.Is(err, service.ErrForbidden) {
		t.Errorf("other rep get: expected ErrForbidden, got %v", err)
	}
	leads, total, err := env.leads.List(ctx, env.other, service.ListParams{})
	if err != nil || total != 0 || len(leads) != 0 {
		t.Errorf("other rep should see nothing, got %d (%v)", total, err)
	}
	if _, total, _ := env.leads.List(ctx, env.admin, service.ListParams{}); total != 1 {
		t.Errorf("admin should see every lead, got %d", total)
	}

	if err := env.leads.Delete(ctx, env.rep, lead.ID); !errors.Is(err, service.ErrForbidden) {
		t.Fatalf("owner delete: expected ErrForbidden, got %v", err)
	}
	if err := env.leads.Delete(ctx, env.admin, lead.ID); err != nil {
		t.Fatalf("admin delete: %v", err)
	}
	if _, err := env.leads.Get(ctx, env.admin, lead.ID); !errors.Is(err, service.ErrNotFound) {
		t.Errorf("deleted lead: expected ErrNotFound, got %v", err)
	}

	logs, total, err := env.audit.GetAuditLogs(ctx, env.admin, 10, 0)
	if err != nil || total != 1 || logs[0].Action != model.ActionDeleteLead {
		t.Fatalf("expected one DELETE_LEAD audit row, got %+v (%v)", logs, err)
	}
}

func TestConvertLead(t *testing.T) {
	env := newEnv(t)
	ctx := context.Background()

	lead, err := env.leads.Create(ctx, env.rep, service.CreateLeadRequest{
		PersonName: "Pedro", EstablishmentName: "Bar do Pedro", City: "Santos", Phone: "13", Email: "pedro@example.com",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	client, err := env.leads.Convert(ctx, env.rep, lead.ID, service.ConvertLeadRequest{TaxID: "11.222.333/0001-81"})
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if client.LeadID == nil || *client.LeadID != lead.ID || client.ConvertedAt == nil {
		t.Errorf("client not linked to lead: %+v", client)
	}
	if client.TaxID == nil || *client.TaxID != "11222333000181" || client.Email != "pedro@example.com" {
		t.Errorf("unexpected client fields: %+v", client)
	}

	got, _ := env.leads.Get(ctx, env.rep, lead.ID)
	if got.Status != model.LeadStatusConverted {
		t.Errorf("lead status = %s, want converted", got.Status)
	}
	history, _ := env.leads.History(ctx, env.rep, lead.ID)
	if len(history) != 1 || history[0].Reason != service.ConvertedReason {
		t.Errorf("expected conversion history row, got %+v", history)
	}

	if _, err := env.leads.Convert(ctx, env.rep, lead.ID, service.ConvertLeadRequest{}); !errors.Is(err, service.ErrValidation) {
		t.Errorf("second conversion: expected ErrValidation, got %v", err)
	}
}
