// Package importer reads tabular uploads (CSV or XLSX) into rows keyed by
// canonical field names.
package importer

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	ErrUnsupportedFormat = errors.New("only .csv and .xlsx files are supported")
	ErrNoRows            = errors.New("file has no data rows")
)

// Schema maps a canonical field to the header spellings accepted for it
type Schema map[string][]string

var LeadSchema = Schema{
	"person_name":        {"person_name", "nome", "nome_pessoa", "contato", "name"},
	"establishment_name": {"establishment_name", "nome_estabelecimento", "estabelecimento", "empresa", "razao_social"},
	"city":               {"city", "cidade", "municipio"},
	"phone":              {"phone", "telefone", "celular", "whatsapp"},
	"email":              {"email", "e-mail"},
	"notes":              {"notes", "observacoes", "obs"},
	"source":             {"source", "fonte", "fonte_lead", "origem"},
}

var ClientSchema = Schema{
	"person_name":        {"person_name", "nome", "nome_pessoa", "contato", "name"},
	"establishment_name": {"establishment_name", "nome_estabelecimento", "estabelecimento", "empresa", "razao_social"},
	"tax_id":             {"tax_id", "cnpj"},
	"cpf":                {"cpf"},
	"city":               {"city", "cidade", "municipio"},
	"phone":              {"phone", "telefone", "celular"},
	"email":              {"email", "e-mail"},
	"street":             {"street", "endereco", "logradouro", "rua"},
	"number":             {"number", "numero"},
	"complement":         {"complement", "complemento"},
	"neighborhood":       {"neighborhood", "bairro"},
	"postal_code":        {"postal_code", "cep"},
	"notes":              {"notes", "observacoes", "obs"},
}

// Row is one data line. Line is the 1-based line in the source, header included.
type Row struct {
	Line   int
	Values map[string]string
}

func (r Row) Get(field string) string {
	return r.Values[field]
}

// Read dispatches on the file extension.
func Read(filename string, r io.Reader, schema Schema) ([]Row, error) {
	var records [][]string
	var err error
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		records, err = readCSV(r)
	case ".xlsx":
		records, err = readXLSX(r)
	default:
		return nil, ErrUnsupportedFormat
	}
	if err != nil {
		return nil, err
	}
	return mapRecords(records, schema)
}

func readCSV(r io.Reader) ([][]string, error) {
	br := bufio.NewReader(r)
	// drop a UTF-8 BOM written by spreadsheet exports
	if bom, _ := br.Peek(3); bytes.Equal(bom, []byte{0xEF, 0xBB, 0xBF}) {
		br.Discard(3)
	}
	first, _ := br.Peek(4096)
	if i := bytes.IndexByte(first, '\n'); i >= 0 {
		first = first[:i]
	}

	cr := csv.NewReader(br)
	if bytes.Count(first, []byte{';'}) > bytes.Count(first, []byte{','}) {
		cr.Comma = ';'
	}
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("invalid csv: %w", err)
	}
	return records, nil
}

func readXLSX(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("invalid xlsx: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrNoRows
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("invalid xlsx: %w", err)
	}
	return rows, nil
}

func mapRecords(records [][]string, schema Schema) ([]Row, error) {
	if len(records) < 2 {
		return nil, ErrNoRows
	}

	lookup := make(map[string]string)
	for field, aliases := range schema {
		for _, a := range aliases {
			lookup[NormalizeHeader(a)] = field
		}
	}
	columns := make([]string, len(records[0]))
	for i, h := range records[0] {
		columns[i] = lookup[NormalizeHeader(h)]
	}

	rows := make([]Row, 0, len(records)-1)
	for i, rec := range records[1:] {
		values := make(map[string]string, len(schema))
		blank := true
		for j, cell := range rec {
			if j >= len(columns) || columns[j] == "" {
				continue
			}
			cell = strings.TrimSpace(cell)
			if cell != "" {
				blank = false
			}
			values[columns[j]] = cell
		}
		if blank {
			continue
		}
		rows = append(rows, Row{Line: i + 2, Values: values})
	}
	if len(rows) == 0 {
		return nil, ErrNoRows
	}
	return rows, nil
}

// NormalizeHeader folds case and accents and drops separators,
// so "Nome Pessoa", "nome_pessoa" and "nomePessoa" all match.
func NormalizeHeader(h string) string {
	folded, _, err := transform.String(transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), h)
	if err != nil {
		folded = h
	}
	var b strings.Builder
	for _, r := range strings.ToLower(folded) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
