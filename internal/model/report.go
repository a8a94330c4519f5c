package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// DashboardStats aggregates the counters shown on the home page
type DashboardStats struct {
	LeadsByStatus   map[string]int64 `json:"leads_by_status"`
	TotalLeads      int64            `json:"total_leads"`
	ActiveClients   int64            `json:"active_clients"`
	OpenQuotes      int64            `json:"open_quotes"`
	SalesCount      int64            `json:"sales_count"`
	SalesTotal      decimal.Decimal  `json:"sales_total"`
	CommissionTotal decimal.Decimal  `json:"commission_total"`
	StartDate       time.Time        `json:"start_date"`
	EndDate         time.Time        `json:"end_date"`
}

// CommissionSummary is one row of the commission report
type CommissionSummary struct {
	RepresentativeID   string          `json:"representative_id"`
	RepresentativeName string          `json:"representative_name"`
	Status             string          `json:"status"`
	SalesCount         int64           `json:"sales_count"`
	SalesTotal         decimal.Decimal `json:"sales_total"`
	CommissionTotal    decimal.Decimal `json:"commission_total"`
}
