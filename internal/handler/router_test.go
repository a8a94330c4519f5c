package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"crm/internal/cep"
	"crm/internal/database/dbtest"
	"crm/internal/handler"
	"crm/internal/middleware"
	"crm/internal/repository"
	"crm/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const testSecret = "test-secret"

type fakeCEP struct{}

func (fakeCEP) Lookup(_ context.Context, code string) *cep.Address {
	if code == "01001000" {
		return &cep.Address{CEP: "01001-000", Street: "Praça da Sé", City: "São Paulo", State: "SP"}
	}
	return nil
}

type envelope struct {
	Status     string          `json:"status"`
	StatusCode int             `json:"status_code"`
	Data       json.RawMessage `json:"data"`
	Error      string          `json:"error"`
}

type api struct {
	t      *testing.T
	router *gin.Engine
}

func newAPI(t *testing.T) *api {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db := dbtest.Open(t)

	tx := repository.NewTransactionManager(db)
	leadRepo := repository.NewLeadRepository(db)
	clientRepo := repository.NewClientRepository(db)
	companyRepo := repository.NewCompanyRepository(db)
	productRepo := repository.NewProductRepository(db)
	quoteRepo := repository.NewQuoteRepository(db)
	saleRepo := repository.NewSaleRepository(db)
	userRepo := repository.NewUserRepository(db)
	auditRepo := repository.NewAuditRepository(db)

	leads := service.NewLeadService(leadRepo, repository.NewLeadHistoryRepository(db), clientRepo, auditRepo, tx, nil)
	clients := service.NewClientService(clientRepo, auditRepo, tx)
	users := service.NewUserService(userRepo, auditRepo, tx, "owner")

	router := handler.NewRouter(handler.RouterOptions{
		Services: handler.Services{
			Leads:     leads,
			Clients:   clients,
			Companies: service.NewCompanyService(companyRepo, auditRepo, tx),
			Products:  service.NewProductService(productRepo, companyRepo, auditRepo, tx),
			Quotes:    service.NewQuoteService(quoteRepo, clientRepo, companyRepo, productRepo, auditRepo, tx, nil, nil),
			Sales:     service.NewSaleService(saleRepo, quoteRepo, clientRepo, companyRepo, userRepo, auditRepo, tx, nil, nil),
			Imports:   service.NewImportService(leads, clients, leadRepo, clientRepo, auditRepo),
			Reports:   service.NewReportService(repository.NewReportRepository(db)),
			Users:     users,
			Audit:     service.NewAuditService(auditRepo),
		},
		Auth: middleware.NewAuthenticator(testSecret, "", users),
		CEP:  fakeCEP{},
	})
	return &api{t: t, router: router}
}

func token(t *testing.T, sub string) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  sub,
		"name": sub,
		"exp":  time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return s
}

func (a *api) do(method, path, sub string, body interface{}) (int, envelope) {
	a.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			a.t.Fatalf("marshal: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	return a.send(req, sub)
}

func (a *api) send(req *http.Request, sub string) (int, envelope) {
	a.t.Helper()
	if sub != "" {
		req.Header.Set("Authorization", "Bearer "+token(a.t, sub))
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
			a.t.Fatalf("%s %s: invalid JSON %q", req.Method, req.URL, w.Body.String())
		}
	}
	return w.Code, env
}

func decode(t *testing.T, raw json.RawMessage, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(raw, v); err != nil {
		t.Fatalf("decode %s: %v", raw, err)
	}
}

func TestLeadEndpoints(t *testing.T) {
	a := newAPI(t)

	if code, _ := a.do(http.MethodGet, "/api/leads", "", nil); code != http.StatusUnauthorized {
		t.Fatalf("anonymous list: got %d", code)
	}

	code, env := a.do(http.MethodPost, "/api/leads", "rep", map[string]string{
		"person_name":        "João Silva",
		"establishment_name": "Mercado Silva",
		"city":               "São Paulo",
		"phone":              "11999990000",
	})
	if code != http.StatusCreated {
		t.Fatalf("create: %d %s", code, env.Error)
	}
	var lead struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	decode(t, env.Data, &lead)
	if lead.Status != "new" {
		t.Fatalf("status = %q, want new", lead.Status)
	}

	if code, _ := a.do(http.MethodPost, "/api/leads", "rep", map[string]string{"person_name": "x"}); code != http.StatusBadRequest {
		t.Errorf("missing fields: got %d", code)
	}

	code, env = a.do(http.MethodPut, "/api/leads/"+lead.ID, "rep", map[string]string{"status": "qualified", "reason": "Visitou a loja"})
	if code != http.StatusOK {
		t.Fatalf("update: %d %s", code, env.Error)
	}

	code, env = a.do(http.MethodGet, "/api/leads/"+lead.ID+"/history", "rep", nil)
	if code != http.StatusOK {
		t.Fatalf("history: %d", code)
	}
	var history []struct {
		PreviousStatus string `json:"previous_status"`
		NewStatus      string `json:"new_status"`
		Reason         string `json:"reason"`
	}
	decode(t, env.Data, &history)
	if len(history) != 1 || history[0].PreviousStatus != "new" || history[0].NewStatus != "qualified" || history[0].Reason != "Visitou a loja" {
		t.Fatalf("unexpected history: %+v", history)
	}

	code, env = a.do(http.MethodGet, "/api/leads?search=silva&limit=10", "rep", nil)
	var page struct {
		Total int64 `json:"total"`
		Limit int   `json:"limit"`
	}
	decode(t, env.Data, &page)
	if code != http.StatusOK || page.Total != 1 || page.Limit != 10 {
		t.Fatalf("list: %d %+v", code, page)
	}

	if code, _ := a.do(http.MethodGet, "/api/leads/"+lead.ID, "intruder", nil); code != http.StatusForbidden {
		t.Errorf("other user get: got %d", code)
	}
	if code, _ := a.do(http.MethodGet, "/api/leads/not-a-uuid", "rep", nil); code != http.StatusBadRequest {
		t.Errorf("bad id: got %d", code)
	}
	if code, _ := a.do(http.MethodGet, "/api/leads/"+uuid.NewString(), "rep", nil); code != http.StatusNotFound {
		t.Errorf("missing lead: got %d", code)
	}
	if code, _ := a.do(http.MethodDelete, "/api/leads/"+lead.ID, "rep", nil); code != http.StatusForbidden {
		t.Errorf("rep delete: got %d", code)
	}
	if code, _ := a.do(http.MethodDelete, "/api/leads/"+lead.ID, "owner", nil); code != http.StatusOK {
		t.Errorf("admin delete: got %d", code)
	}
}

func TestCompanyEndpointsAreAdminOnly(t *testing.T) {
	a := newAPI(t)
	body := map[string]string{"name": "Acme", "tax_id": "11.222.333/0001-81"}

	if code, _ := a.do(http.MethodPost, "/api/empresas", "rep", body); code != http.StatusForbidden {
		t.Fatalf("rep create: got %d", code)
	}
	if code, env := a.do(http.MethodPost, "/api/empresas", "owner", body); code != http.StatusCreated {
		t.Fatalf("admin create: got %d %s", code, env.Error)
	}
	if code, _ := a.do(http.MethodPost, "/api/empresas", "owner", body); code != http.StatusConflict {
		t.Fatalf("duplicate: got %d", code)
	}
	if code, _ := a.do(http.MethodGet, "/api/empresas?active=true", "rep", nil); code != http.StatusOK {
		t.Fatalf("rep list: got %d", code)
	}
	if code, _ := a.do(http.MethodGet, "/api/empresas?active=maybe", "rep", nil); code != http.StatusBadRequest {
		t.Fatalf("bad active flag: got %d", code)
	}

	code, env := a.do(http.MethodGet, "/api/audit-logs", "owner", nil)
	var page struct {
		Total int64 `json:"total"`
	}
	decode(t, env.Data, &page)
	if code != http.StatusOK || page.Total != 1 {
		t.Fatalf("audit logs: %d %+v", code, page)
	}
	if code, _ := a.do(http.MethodGet, "/api/audit-logs", "rep", nil); code != http.StatusForbidden {
		t.Fatalf("rep audit logs: got %d", code)
	}
}

func TestCEPEndpoint(t *testing.T) {
	a := newAPI(t)

	if code, _ := a.do(http.MethodGet, "/api/cep/123", "rep", nil); code != http.StatusBadRequest {
		t.Errorf("short cep: got %d", code)
	}
	code, env := a.do(http.MethodGet, "/api/cep/01001-000", "rep", nil)
	var addr cep.Address
	decode(t, env.Data, &addr)
	if code != http.StatusOK || addr.City != "São Paulo" {
		t.Errorf("known cep: %d %+v", code, addr)
	}
	code, env = a.do(http.MethodGet, "/api/cep/99999999", "rep", nil)
	var miss struct {
		Found bool `json:"found"`
	}
	decode(t, env.Data, &miss)
	if code != http.StatusNotFound || miss.Found {
		t.Errorf("unknown cep: %d %s", code, env.Data)
	}
}

func TestImportEndpoint(t *testing.T) {
	a := newAPI(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "leads.csv")
	if err != nil {
		t.Fatal(err)
	}
	_, _ = part.Write([]byte("nome,estabelecimento,cidade,telefone\nAna,Bar da Ana,Santos,13999990000\nBia,,Santos,13999990001\n"))
	_ = mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/import/leads", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	code, env := a.send(req, "rep")
	if code != http.StatusOK {
		t.Fatalf("import: %d %s", code, env.Error)
	}
	var result service.ImportResult
	decode(t, env.Data, &result)
	if result.Total != 2 || result.Succeeded != 1 || result.Failed != 1 {
		t.Fatalf("unexpected result: %+v", result)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/import/leads", strings.NewReader(""))
	if code, _ := a.send(req, "rep"); code != http.StatusBadRequest {
		t.Fatalf("missing file: got %d", code)
	}
}

func TestMeEndpoint(t *testing.T) {
	a := newAPI(t)
	code, env := a.do(http.MethodGet, "/api/auth/me", "owner", nil)
	var me struct {
		OpenID string `json:"open_id"`
		Role   string `json:"role"`
	}
	decode(t, env.Data, &me)
	if code != http.StatusOK || me.OpenID != "owner" || me.Role != "admin" {
		t.Fatalf("me: %d %+v", code, me)
	}
	if code, _ := a.do(http.MethodGet, "/api/users", "rep", nil); code != http.StatusForbidden {
		t.Fatalf("rep users list: got %d", code)
	}
}
