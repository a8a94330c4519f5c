// Package cep looks up Brazilian postal codes on ViaCEP.
package cep

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"
	"unicode"
)

var ErrInvalid = errors.New("CEP must have 8 digits")

// Address is the subset of the ViaCEP payload the CRM fills forms with
type Address struct {
	CEP          string `json:"cep"`
	Street       string `json:"street"`
	Complement   string `json:"complement"`
	Neighborhood string `json:"neighborhood"`
	City         string `json:"city"`
	State        string `json:"state"`
	IBGE         string `json:"ibge"`
	DDD          string `json:"ddd"`
}

type viaCEPResponse struct {
	CEP         string      `json:"cep"`
	Logradouro  string      `json:"logradouro"`
	Complemento string      `json:"complemento"`
	Bairro      string      `json:"bairro"`
	Localidade  string      `json:"localidade"`
	UF          string      `json:"uf"`
	IBGE        string      `json:"ibge"`
	DDD         string      `json:"ddd"`
	Erro        interface{} `json:"erro"` // true, or "true" on newer deployments
}

type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 5 * time.Second},
	}
}

// Normalize strips formatting and returns the 8 digits of a CEP.
func Normalize(raw string) (string, error) {
	var b strings.Builder
	for _, r := range raw {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	if b.Len() != 8 {
		return "", ErrInvalid
	}
	return b.String(), nil
}

// Format renders XXXXX-XXX, or returns raw unchanged when it is not a CEP.
func Format(raw string) string {
	d, err := Normalize(raw)
	if err != nil {
		return raw
	}
	return d[:5] + "-" + d[5:]
}

// Lookup returns nil when the CEP is unknown or the service fails; it never errors.
func (c *Client) Lookup(ctx context.Context, cep string) *Address {
	digits, err := Normalize(cep)
	if err != nil {
		return nil
	}
	addr, err := c.fetch(ctx, digits)
	if err != nil {
		log.Printf("[ViaCEP] lookup %s failed: %v", digits, err)
		return nil
	}
	return addr
}

func (c *Client) fetch(ctx context.Context, digits string) (*Address, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/%s/json/", c.baseURL, digits), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	var body viaCEPResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if notFound(body.Erro) {
		return nil, fmt.Errorf("not found")
	}
	return &Address{
		CEP:          Format(body.CEP),
		Street:       body.Logradouro,
		Complement:   body.Complemento,
		Neighborhood: body.Bairro,
		City:         body.Localidade,
		State:        body.UF,
		IBGE:         body.IBGE,
		DDD:          body.DDD,
	}, nil
}

func notFound(v interface{}) bool {
	switch e := v.(type) {
	case bool:
		return e
	case string:
		return e == "true"
	default:
		return false
	}
}
