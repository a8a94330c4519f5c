package repository_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"crm/internal/database/dbtest"
	"crm/internal/model"
	"crm/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func seedLead(t *testing.T, repo repository.LeadRepository, owner uuid.UUID, person, city string) *model.Lead {
	t.Helper()
	l := &model.Lead{
		PersonName:        person,
		EstablishmentName: "Mercado " + person,
		City:              city,
		Phone:             "11999990000",
		Status:            model.LeadStatusNew,
		Source:            model.LeadSourceOther,
		RepresentativeID:  owner,
	}
	if err := repo.Create(context.Background(), l); err != nil {
		t.Fatalf("create lead: %v", err)
	}
	return l
}

func TestLeadListScopesAndSearch(t *testing.T) {
	db := dbtest.Open(t)
	repo := repository.NewLeadRepository(db)
	ctx := context.Background()

	alice, bob := uuid.New(), uuid.New()
	seedLead(t, repo, alice, "João Silva", "São Paulo")
	seedLead(t, repo, alice, "Maria Souza", "Campinas")
	seedLead(t, repo, bob, "Pedro Lima", "Santos")

	leads, total, err := repo.List(ctx, repository.ListFilter{OwnerID: &alice})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 2 || len(leads) != 2 {
		t.Fatalf("expected 2 leads for owner, got total=%d len=%d", total, len(leads))
	}

	leads, _, err = repo.List(ctx, repository.ListFilter{Search: "CAMPI"})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(leads) != 1 || leads[0].PersonName != "Maria Souza" {
		t.Fatalf("case-insensitive search failed: %+v", leads)
	}

	leads, total, err = repo.List(ctx, repository.ListFilter{Limit: 1, Offset: 1})
	if err != nil {
		t.Fatalf("paginate: %v", err)
	}
	if total != 3 || len(leads) != 1 {
		t.Fatalf("expected page of 1 out of 3, got total=%d len=%d", total, len(leads))
	}
}

func TestSearchMatchesWildcardsLiterally(t *testing.T) {
	db := dbtest.Open(t)
	repo := repository.NewLeadRepository(db)
	ctx := context.Background()
	owner := uuid.New()
	seedLead(t, repo, owner, "Ana_Paula", "Recife")
	seedLead(t, repo, owner, "Ana Paula", "Recife")

	for search, want := range map[string]int64{"_": 1, "a_p": 1, "%": 0, `\`: 0} {
		_, total, err := repo.List(ctx, repository.ListFilter{Search: search})
		if err != nil {
			t.Fatalf("search %q: %v", search, err)
		}
		if total != want {
			t.Errorf("search %q matched %d leads, want %d", search, total, want)
		}
	}
}

func TestLeadFindMissing(t *testing.T) {
	repo := repository.NewLeadRepository(dbtest.Open(t))
	_, err := repo.FindByID(context.Background(), uuid.New())
	if !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCompanyDuplicateTaxID(t *testing.T) {
	repo := repository.NewCompanyRepository(dbtest.Open(t))
	ctx := context.Background()

	first := &model.Company{Name: "Acme", TaxID: "11222333000181", Active: true, CreatedBy: uuid.New()}
	if err := repo.Create(ctx, first); err != nil {
		t.Fatalf("create: %v", err)
	}
	dup := &model.Company{Name: "Acme 2", TaxID: "11222333000181", Active: true, CreatedBy: uuid.New()}
	if err := repo.Create(ctx, dup); !errors.Is(err, repository.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
}

func TestLeadHistoryNewestFirst(t *testing.T) {
	repo := repository.NewLeadHistoryRepository(dbtest.Open(t))
	ctx := context.Background()
	leadID, actor := uuid.New(), uuid.New()
	base := time.Now().Add(-time.Hour)

	for i, st := range []string{model.LeadStatusContacted, model.LeadStatusQualified} {
		entry := &model.LeadStatusHistory{
			LeadID:    leadID,
			NewStatus: st,
			UserID:    actor,
			Reason:    model.DefaultStatusReason,
			ChangedAt: base.Add(time.Duration(i) * time.Minute),
		}
		if err := repo.Append(ctx, entry); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	entries, err := repo.ListByLead(ctx, leadID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 2 || entries[0].NewStatus != model.LeadStatusQualified {
		t.Fatalf("expected newest first, got %+v", entries)
	}
}

func TestQuoteCreateWithItemsAndReplace(t *testing.T) {
	db := dbtest.Open(t)
	repo := repository.NewQuoteRepository(db)
	ctx := context.Background()

	q := &model.Quote{
		Number:           "ORC-20260101-00001",
		ClientID:         uuid.New(),
		CompanyID:        uuid.New(),
		RepresentativeID: uuid.New(),
		IssuedAt:         time.Now(),
		Status:           model.QuoteStatusDraft,
		GrossTotal:       decimal.NewFromInt(30),
		NetTotal:         decimal.NewFromInt(30),
		Items: []model.QuoteItem{
			{ProductName: "B", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(20), LineTotal: decimal.NewFromInt(20), Position: 1},
			{ProductName: "A", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(10), LineTotal: decimal.NewFromInt(10), Position: 0},
		},
	}
	if err := repo.Create(ctx, q); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := repo.FindByID(ctx, q.ID)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(got.Items) != 2 || got.Items[0].ProductName != "A" {
		t.Fatalf("expected items ordered by position, got %+v", got.Items)
	}

	replacement := []model.QuoteItem{
		{ProductName: "C", Quantity: decimal.NewFromInt(2), UnitPrice: decimal.NewFromInt(5), LineTotal: decimal.NewFromInt(10)},
	}
	if err := repo.ReplaceItems(ctx, q.ID, replacement); err != nil {
		t.Fatalf("replace: %v", err)
	}
	got, _ = repo.FindByID(ctx, q.ID)
	if len(got.Items) != 1 || got.Items[0].ProductName != "C" {
		t.Fatalf("expected replaced items, got %+v", got.Items)
	}

	last, err := repo.LastNumber(ctx, "ORC-20260101-")
	if err != nil || last != q.Number {
		t.Fatalf("last number = %q, %v", last, err)
	}
	if last, err = repo.LastNumber(ctx, "ORC-20991231-"); err != nil || last != "" {
		t.Fatalf("last number for empty prefix = %q, %v", last, err)
	}
}

func TestTransactionRollback(t *testing.T) {
	db := dbtest.Open(t)
	tx := repository.NewTransactionManager(db)
	repo := repository.NewLeadRepository(db)
	ctx := context.Background()
	owner := uuid.New()

	seedLead(t, repo, owner, "Kept", "Nowhere")

	boom := errors.New("boom")
	err := tx.RunInTx(ctx, func(txCtx context.Context) error {
		l := &model.Lead{PersonName: "x", EstablishmentName: "y", City: "z", Phone: "1", RepresentativeID: owner}
		if err := repo.Create(txCtx, l); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	_, total, _ := repo.List(ctx, repository.ListFilter{OwnerID: &owner})
	if total != 1 {
		t.Fatalf("expected the rolled back lead to be gone, got %d", total)
	}
}

func TestNestedRunInTxJoinsOuter(t *testing.T) {
	db := dbtest.Open(t)
	tx := repository.NewTransactionManager(db)
	repo := repository.NewLeadRepository(db)
	ctx := context.Background()
	owner := uuid.New()

	boom := errors.New("boom")
	err := tx.RunInTx(ctx, func(outer context.Context) error {
		if err := repo.Create(outer, &model.Lead{PersonName: "Outer", EstablishmentName: "y", City: "z", Phone: "1", RepresentativeID: owner}); err != nil {
			return err
		}
		if err := tx.RunInTx(outer, func(inner context.Context) error {
			return repo.Create(inner, &model.Lead{PersonName: "Inner", EstablishmentName: "y", City: "z", Phone: "1", RepresentativeID: owner})
		}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	_, total, _ := repo.List(ctx, repository.ListFilter{OwnerID: &owner})
	if total != 0 {
		t.Fatalf("inner work must roll back with the outer unit, got %d leads", total)
	}
}
