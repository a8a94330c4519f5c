package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"crm/internal/model"
	"crm/internal/service"
)

func TestSaleFromQuote(t *testing.T) {
	env := newEnv(t)
	ctx := context.Background()
	q := env.mustQuote(t, decPtr("10"))

	sale, err := env.sales.Create(ctx, env.rep, service.CreateSaleRequest{
		QuoteID:           &q.ID,
		CommissionPercent: decPtr("10"),
	})
	if err != nil {
		t.Fatalf("create sale: %v", err)
	}
	if !sale.TotalAmount.Equal(dec("900")) || !sale.CommissionAmount.Equal(dec("90")) {
		t.Fatalf("total/commission = %s/%s, want 900/90", sale.TotalAmount, sale.CommissionAmount)
	}
	if sale.ClientID != q.ClientID || sale.CompanyID != q.CompanyID || sale.Status != model.SaleStatusPending {
		t.Errorf("sale not derived from quote: %+v", sale)
	}

	got, _ := env.quotes.Get(ctx, env.rep, q.ID)
	if got.Status != model.QuoteStatusAccepted {
		t.Errorf("quote status = %s, want accepted", got.Status)
	}
}

func TestSaleFromQuoteOfOtherClient(t *testing.T) {
	env := newEnv(t)
	q := env.mustQuote(t, nil)
	other := env.mustClient(t, env.rep, "outro@example.com")

	_, err := env.sales.Create(context.Background(), env.rep, service.CreateSaleRequest{QuoteID: &q.ID, ClientID: other.ID})
	if !errors.Is(err, service.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestSaleCommissionAndConfirmation(t *testing.T) {
	env := newEnv(t)
	ctx := context.Background()
	company := env.mustCompany(t, "11222333000181")
	client := env.mustClient(t, env.rep, "cliente@example.com")

	sale, err := env.sales.Create(ctx, env.rep, service.CreateSaleRequest{
		ClientID:    client.ID,
		CompanyID:   company.ID,
		TotalAmount: decPtr("10000"),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !sale.CommissionAmount.IsZero() {
		t.Fatalf("no percent means no commission, got %s", sale.CommissionAmount)
	}

	sale, err = env.sales.Update(ctx, env.rep, sale.ID, service.UpdateSaleRequest{CommissionPercent: decPtr("10")})
	if err != nil {
		t.Fatalf("update percent: %v", err)
	}
	if !sale.CommissionAmount.Equal(dec("1000")) {
		t.Fatalf("commission = %s, want 1000", sale.CommissionAmount)
	}
	if len(env.notifier.sales) != 0 {
		t.Fatalf("no email before confirmation")
	}

	confirmed := model.SaleStatusConfirmed
	if _, err := env.sales.Update(ctx, env.rep, sale.ID, service.UpdateSaleRequest{Status: &confirmed}); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if len(env.notifier.sales) != 1 || env.notifier.sales[0].To != "cliente@example.com" {
		t.Fatalf("expected one confirmation email, got %+v", env.notifier.sales)
	}
	if owners := env.events.owners(service.EventSaleConfirmed); len(owners) != 1 || owners[0] != env.rep.ID {
		t.Fatalf("expected one sale.confirmed event scoped to the rep, got %v", owners)
	}

	// re-sending the same status is not a transition
	if _, err := env.sales.Update(ctx, env.rep, sale.ID, service.UpdateSaleRequest{Status: &confirmed}); err != nil {
		t.Fatalf("reconfirm: %v", err)
	}
	if len(env.notifier.sales) != 1 {
		t.Fatalf("confirmation must be sent once, got %d", len(env.notifier.sales))
	}

	delivered := model.SaleStatusDelivered
	sale, err = env.sales.Update(ctx, env.rep, sale.ID, service.UpdateSaleRequest{Status: &delivered})
	if err != nil || sale.DeliveredAt == nil {
		t.Fatalf("delivered should stamp delivered_at: %+v (%v)", sale, err)
	}

	if _, err := env.sales.Update(ctx, env.rep, sale.ID, service.UpdateSaleRequest{CommissionPercent: decPtr("120")}); !errors.Is(err, service.ErrValidation) {
		t.Fatalf("percent above 100: expected ErrValidation, got %v", err)
	}
	if err := env.sales.Delete(ctx, env.rep, sale.ID); !errors.Is(err, service.ErrForbidden) {
		t.Fatalf("rep delete: expected ErrForbidden, got %v", err)
	}
	if err := env.sales.Delete(ctx, env.admin, sale.ID); err != nil {
		t.Fatalf("admin delete: %v", err)
	}
}

func TestDashboardAndCommissions(t *testing.T) {
	env := newEnv(t)
	ctx := context.Background()
	company := env.mustCompany(t, "11222333000181")
	client := env.mustClient(t, env.rep, "cliente@example.com")

	for _, total := range []string{"1000", "500"} {
		if _, err := env.sales.Create(ctx, env.rep, service.CreateSaleRequest{
			ClientID: client.ID, CompanyID: company.ID, TotalAmount: decPtr(total), CommissionPercent: decPtr("10"),
		}); err != nil {
			t.Fatalf("create sale: %v", err)
		}
	}
	if _, err := env.sales.Create(ctx, env.rep, service.CreateSaleRequest{
		ClientID: client.ID, CompanyID: company.ID, TotalAmount: decPtr("700"), Status: model.SaleStatusCancelled,
	}); err != nil {
		t.Fatalf("create cancelled sale: %v", err)
	}
	if _, err := env.leads.Create(ctx, env.rep, service.CreateLeadRequest{PersonName: "a", EstablishmentName: "b", City: "c", Phone: "1"}); err != nil {
		t.Fatalf("create lead: %v", err)
	}

	start, end := time.Now().AddDate(0, -1, 0), time.Now().Add(time.Hour)
	stats, err := env.reports.Dashboard(ctx, env.rep, start, end)
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	if stats.SalesCount != 2 || !stats.SalesTotal.Equal(dec("1500")) || !stats.CommissionTotal.Equal(dec("150")) {
		t.Errorf("unexpected sales stats: %+v", stats)
	}
	if stats.TotalLeads != 1 || stats.LeadsByStatus[model.LeadStatusNew] != 1 || stats.ActiveClients != 1 {
		t.Errorf("unexpected counters: %+v", stats)
	}

	other, err := env.reports.Dashboard(ctx, env.other, start, end)
	if err != nil || other.SalesCount != 0 {
		t.Errorf("other rep must not see foreign sales: %+v (%v)", other, err)
	}

	rows, err := env.reports.Commissions(ctx, env.admin, start, end)
	if err != nil {
		t.Fatalf("commissions: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected pending and cancelled groups, got %+v", rows)
	}

	if _, err := env.reports.Dashboard(ctx, env.rep, end, start); !errors.Is(err, service.ErrValidation) {
		t.Errorf("inverted window: expected ErrValidation, got %v", err)
	}
}
