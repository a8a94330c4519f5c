package importer

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestNormalizeHeader(t *testing.T) {
	cases := []struct{ in, want string }{
		{"Nome Pessoa", "nomepessoa"},
		{"nome_pessoa", "nomepessoa"},
		{"nomePessoa", "nomepessoa"},
		{"Observações", "observacoes"},
		{" E-mail ", "email"},
		{"MUNICÍPIO", "municipio"},
	}
	for _, c := range cases {
		if got := NormalizeHeader(c.in); got != c.want {
			t.Errorf("NormalizeHeader(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestReadCSVSemicolon(t *testing.T) {
	data := "\xEF\xBB\xBFNome;Estabelecimento;Cidade;Telefone;E-mail;Ignorada\n" +
		"João Silva;Mercado Bom;São Paulo;(11) 99999-0000;joao@example.com;x\n" +
		";;;;;\n" +
		"Maria;Padaria;Campinas;1988887777;;\n"

	rows, err := Read("leads.csv", strings.NewReader(data), LeadSchema)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows (blank skipped), got %d", len(rows))
	}
	if rows[0].Get("person_name") != "João Silva" || rows[0].Get("email") != "joao@example.com" {
		t.Errorf("unexpected first row: %+v", rows[0].Values)
	}
	if rows[1].Line != 4 {
		t.Errorf("expected second data row on line 4, got %d", rows[1].Line)
	}
	if _, ok := rows[0].Values["Ignorada"]; ok {
		t.Errorf("unknown columns must be dropped")
	}
}

func TestReadCSVComma(t *testing.T) {
	data := "person_name,establishment_name,city,phone\nAna,Loja,Recife,81999990000\n"
	rows, err := Read("x.CSV", strings.NewReader(data), LeadSchema)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(rows) != 1 || rows[0].Get("city") != "Recife" {
		t.Fatalf("unexpected rows: %+v", rows)
	}
}

func TestReadXLSX(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	f.SetSheetRow(sheet, "A1", &[]interface{}{"CNPJ", "Nome", "Estabelecimento", "Cidade", "Telefone", "Email"})
	f.SetSheetRow(sheet, "A2", &[]interface{}{"11.222.333/0001-81", "Carlos", "Bar do Carlos", "Santos", "13999990000", "carlos@example.com"})
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatalf("write xlsx: %v", err)
	}

	rows, err := Read("clientes.xlsx", &buf, ClientSchema)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(rows) != 1 || rows[0].Get("tax_id") != "11.222.333/0001-81" || rows[0].Get("establishment_name") != "Bar do Carlos" {
		t.Fatalf("unexpected rows: %+v", rows)
	}
}

func TestReadRejects(t *testing.T) {
	if _, err := Read("leads.txt", strings.NewReader("a"), LeadSchema); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("expected ErrUnsupportedFormat, got %v", err)
	}
	if _, err := Read("leads.csv", strings.NewReader("nome,cidade\n"), LeadSchema); !errors.Is(err, ErrNoRows) {
		t.Errorf("expected ErrNoRows, got %v", err)
	}
}
