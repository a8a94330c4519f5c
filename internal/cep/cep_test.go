package cep

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNormalizeAndFormat(t *testing.T) {
	d, err := Normalize("01310-100")
	if err != nil || d != "01310100" {
		t.Fatalf("Normalize = %q, %v", d, err)
	}
	if _, err := Normalize("1234"); err != ErrInvalid {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
	if got := Format("01310100"); got != "01310-100" {
		t.Errorf("Format = %q", got)
	}
	if got := Format("abc"); got != "abc" {
		t.Errorf("Format of invalid input should be unchanged, got %q", got)
	}
}

func TestLookup(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/01310100/json/":
			w.Write([]byte(`{"cep":"01310-100","logradouro":"Avenida Paulista","bairro":"Bela Vista","localidade":"São Paulo","uf":"SP","ddd":"11"}`))
		case "/99999999/json/":
			w.Write([]byte(`{"erro":"true"}`))
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL + "/")
	ctx := context.Background()

	addr := c.Lookup(ctx, "01310-100")
	if addr == nil {
		t.Fatal("expected an address")
	}
	if addr.Street != "Avenida Paulista" || addr.City != "São Paulo" || addr.State != "SP" || addr.CEP != "01310-100" {
		t.Errorf("unexpected address: %+v", addr)
	}

	if c.Lookup(ctx, "99999-999") != nil {
		t.Error("unknown CEP should yield nil")
	}
	if c.Lookup(ctx, "12345678") != nil {
		t.Error("server failure should yield nil")
	}
	if c.Lookup(ctx, "123") != nil {
		t.Error("invalid CEP should yield nil")
	}
}
