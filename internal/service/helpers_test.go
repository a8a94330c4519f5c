package service_test

import (
	"context"
	"sync"
	"testing"

	"crm/internal/database/dbtest"
	"crm/internal/model"
	"crm/internal/notifier"
	"crm/internal/repository"
	"crm/internal/service"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type publishedEvent struct {
	owner uuid.UUID
	name  string
	data  interface{}
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (p *recordingPublisher) Publish(owner uuid.UUID, event string, data interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{owner, event, data})
}

func (p *recordingPublisher) owners(name string) []uuid.UUID {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []uuid.UUID
	for _, e := range p.events {
		if e.name == name {
			out = append(out, e.owner)
		}
	}
	return out
}

func (p *recordingPublisher) count(name string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, e := range p.events {
		if e.name == name {
			n++
		}
	}
	return n
}

type fakeNotifier struct {
	deliver bool
	quotes  []notifier.QuoteEmail
	sales   []notifier.SaleEmail
}

func (n *fakeNotifier) SendQuote(_ context.Context, data notifier.QuoteEmail) bool {
	n.quotes = append(n.quotes, data)
	return n.deliver
}

func (n *fakeNotifier) SendSaleConfirmation(_ context.Context, data notifier.SaleEmail) bool {
	n.sales = append(n.sales, data)
	return n.deliver
}

func (n *fakeNotifier) QuoteLink(id string) string {
	return "http://crm.test/orcamentos/" + id
}

type testEnv struct {
	db       *gorm.DB
	events   *recordingPublisher
	notifier *fakeNotifier

	leads     service.LeadService
	clients   service.ClientService
	companies service.CompanyService
	products  service.ProductService
	quotes    service.QuoteService
	sales     service.SaleService
	users     service.UserService
	imports   service.ImportService
	reports   service.ReportService
	audit     service.AuditService

	admin model.Actor
	rep   model.Actor
	other model.Actor
}

func newEnv(t *testing.T) *testEnv {
	t.Helper()
	db := dbtest.Open(t)
	events := &recordingPublisher{}
	mail := &fakeNotifier{deliver: true}

	tx := repository.NewTransactionManager(db)
	leadRepo := repository.NewLeadRepository(db)
	historyRepo := repository.NewLeadHistoryRepository(db)
	clientRepo := repository.NewClientRepository(db)
	companyRepo := repository.NewCompanyRepository(db)
	productRepo := repository.NewProductRepository(db)
	quoteRepo := repository.NewQuoteRepository(db)
	saleRepo := repository.NewSaleRepository(db)
	userRepo := repository.NewUserRepository(db)
	auditRepo := repository.NewAuditRepository(db)

	leads := service.NewLeadService(leadRepo, historyRepo, clientRepo, auditRepo, tx, events)
	clients := service.NewClientService(clientRepo, auditRepo, tx)

	return &testEnv{
		db:        db,
		events:    events,
		notifier:  mail,
		leads:     leads,
		clients:   clients,
		companies: service.NewCompanyService(companyRepo, auditRepo, tx),
		products:  service.NewProductService(productRepo, companyRepo, auditRepo, tx),
		quotes:    service.NewQuoteService(quoteRepo, clientRepo, companyRepo, productRepo, auditRepo, tx, mail, events),
		sales:     service.NewSaleService(saleRepo, quoteRepo, clientRepo, companyRepo, userRepo, auditRepo, tx, mail, events),
		users:     service.NewUserService(userRepo, auditRepo, tx, "owner-open-id"),
		imports:   service.NewImportService(leads, clients, leadRepo, clientRepo, auditRepo),
		reports:   service.NewReportService(repository.NewReportRepository(db)),
		audit:     service.NewAuditService(auditRepo),
		admin:     model.Actor{ID: uuid.New(), Role: model.RoleAdmin},
		rep:       model.Actor{ID: uuid.New(), Role: model.RoleRepresentative},
		other:     model.Actor{ID: uuid.New(), Role: model.RoleRepresentative},
	}
}

func (e *testEnv) mustCompany(t *testing.T, taxID string) *model.Company {
	t.Helper()
	c, err := e.companies.Create(context.Background(), e.admin, service.CompanyRequest{Name: "Acme Alimentos", TaxID: taxID})
	if err != nil {
		t.Fatalf("create company: %v", err)
	}
	return c
}

func (e *testEnv) mustClient(t *testing.T, actor model.Actor, email string) *model.Client {
	t.Helper()
	c, err := e.clients.Create(context.Background(), actor, service.CreateClientRequest{
		PersonName:        "João Silva",
		EstablishmentName: "Mercado Silva",
		City:              "São Paulo",
		Phone:             "11999990000",
		Email:             email,
	})
	if err != nil {
		t.Fatalf("create client: %v", err)
	}
	return c
}
