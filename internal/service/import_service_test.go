package service_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"crm/internal/model"
	"crm/internal/service"
)

func TestImportLeadsReportsEachRow(t *testing.T) {
	env := newEnv(t)
	ctx := context.Background()

	csv := "\ufeffNome;Estabelecimento;Cidade;Telefone;E-mail\n" +
		"Ana;Bar da Ana;Santos;(13) 99999-0000;ana@example.com\n" +
		"Bia;Padaria Bia;Santos;13999990000;bia@example.com\n" +
		"Caio;Mercado Caio;Santos;11988887777;ANA@example.com\n" +
		"Dora;;Santos;11900000000;\n" +
		"Eva;Loja Eva;Santos;11911112222;eva@example.com\n"

	res, err := env.imports.ImportLeads(ctx, env.rep, "leads.csv", strings.NewReader(csv))
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if res.Total != 5 || res.Succeeded != 2 || res.Failed != 3 {
		t.Fatalf("unexpected summary: %+v", res)
	}

	want := []string{service.ImportRowSuccess, service.ImportRowError, service.ImportRowError, service.ImportRowError, service.ImportRowSuccess}
	for i, row := range res.Rows {
		if row.Row != i+2 || row.Status != want[i] {
			t.Errorf("row %d: got line %d status %s, want line %d status %s", i, row.Row, row.Status, i+2, want[i])
		}
	}
	if !strings.Contains(res.Rows[1].Message, "phone") || !strings.Contains(res.Rows[2].Message, "email") {
		t.Errorf("duplicate messages should name the clashing key: %+v", res.Rows[1:3])
	}

	leads, total, err := env.leads.List(ctx, env.rep, service.ListParams{})
	if err != nil || total != 2 {
		t.Fatalf("expected 2 stored leads, got %d (%v)", total, err)
	}
	for _, l := range leads {
		if l.RepresentativeID != env.rep.ID {
			t.Errorf("imported lead owned by %s", l.RepresentativeID)
		}
	}

	logs, _, err := env.audit.GetAuditLogs(ctx, env.admin, 10, 0)
	if err != nil {
		t.Fatalf("audit logs: %v", err)
	}
	if len(logs) != 1 || logs[0].Action != model.ActionImport {
		t.Errorf("expected one import audit row, got %+v", logs)
	}
}

func TestImportClientsDuplicateCNPJ(t *testing.T) {
	env := newEnv(t)
	ctx := context.Background()

	csv := "nome,estabelecimento,cnpj,cidade,telefone,email\n" +
		"Ana,Bar da Ana,11.222.333/0001-81,Santos,13999990000,ana@example.com\n" +
		"Bia,Bar da Bia,11222333000181,Santos,13999990001,bia@example.com\n"

	res, err := env.imports.ImportClients(ctx, env.rep, "clientes.csv", strings.NewReader(csv))
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if res.Succeeded != 1 || res.Failed != 1 || !strings.Contains(res.Rows[1].Message, "CNPJ") {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestImportRejectsUnknownFormat(t *testing.T) {
	env := newEnv(t)
	_, err := env.imports.ImportLeads(context.Background(), env.rep, "leads.pdf", strings.NewReader("x"))
	if !errors.Is(err, service.ErrValidation) {
		t.Fatalf("expected unsupported format error, got %v", err)
	}
}
