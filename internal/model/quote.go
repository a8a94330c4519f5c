package model

import (
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// QuoteStatus values
const (
	QuoteStatusDraft    = "draft"
	QuoteStatusSent     = "sent"
	QuoteStatusAccepted = "accepted"
	QuoteStatusRejected = "rejected"
	QuoteStatusExpired  = "expired"
)

var QuoteStatuses = []string{
	QuoteStatusDraft, QuoteStatusSent, QuoteStatusAccepted, QuoteStatusRejected, QuoteStatusExpired,
}

// Quote is an itemized proposal to a client on behalf of one company
type Quote struct {
	ID               uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	Number           string           `gorm:"type:varchar(50);uniqueIndex;not null" json:"number"`
	ClientID         uuid.UUID        `gorm:"type:uuid;not null;index" json:"client_id"`
	Client           *Client          `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	CompanyID        uuid.UUID        `gorm:"type:uuid;not null;index" json:"company_id"`
	Company          *Company         `gorm:"foreignKey:CompanyID" json:"company,omitempty"`
	RepresentativeID uuid.UUID        `gorm:"type:uuid;not null;index" json:"representative_id"`
	IssuedAt         time.Time        `gorm:"not null" json:"issued_at"`
	ValidUntil       *time.Time       `json:"valid_until"`
	Status           string           `gorm:"type:varchar(20);not null;default:'draft';index" json:"status"`
	GrossTotal       decimal.Decimal  `gorm:"type:decimal(12,2);not null" json:"gross_total"`
	DiscountPercent  *decimal.Decimal `gorm:"type:decimal(5,2)" json:"discount_percent"`
	DiscountAmount   *decimal.Decimal `gorm:"type:decimal(12,2)" json:"discount_amount"`
	NetTotal         decimal.Decimal  `gorm:"type:decimal(12,2);not null" json:"net_total"`
	Notes            string           `gorm:"type:text" json:"notes"`
	PaymentTerms     string           `gorm:"type:text" json:"payment_terms"`
	Items            []QuoteItem      `gorm:"foreignKey:QuoteID;constraint:OnDelete:CASCADE" json:"items"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

func (q *Quote) BeforeCreate(tx *gorm.DB) error {
	assignID(&q.ID)
	return nil
}

// QuoteItem snapshots a product line; ProductID is informational only
type QuoteItem struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	QuoteID     uuid.UUID       `gorm:"type:uuid;not null;index" json:"quote_id"`
	ProductID   *uuid.UUID      `gorm:"type:uuid" json:"product_id"`
	ProductName string          `gorm:"type:varchar(255);not null" json:"product_name"`
	Description string          `gorm:"type:text" json:"description"`
	Quantity    decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"quantity"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"unit_price"`
	LineTotal   decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"line_total"`
	Position    int             `gorm:"not null" json:"position"`
	CreatedAt   time.Time       `json:"created_at"`
}

func (i *QuoteItem) BeforeCreate(tx *gorm.DB) error {
	assignID(&i.ID)
	return nil
}

func IsQuoteStatus(s string) bool {
	return slices.Contains(QuoteStatuses, s)
}
