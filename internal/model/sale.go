package model

import (
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SaleStatus values
const (
	SaleStatusPending   = "pending"
	SaleStatusConfirmed = "confirmed"
	SaleStatusDelivered = "delivered"
	SaleStatusCancelled = "cancelled"
)

var SaleStatuses = []string{SaleStatusPending, SaleStatusConfirmed, SaleStatusDelivered, SaleStatusCancelled}

// Sale is a confirmed transaction, optionally derived from a quote
type Sale struct {
	ID                 uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	Number             string           `gorm:"type:varchar(50);uniqueIndex;not null" json:"number"`
	QuoteID            *uuid.UUID       `gorm:"type:uuid;index" json:"quote_id"`
	ClientID           uuid.UUID        `gorm:"type:uuid;not null;index" json:"client_id"`
	Client             *Client          `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	CompanyID          uuid.UUID        `gorm:"type:uuid;not null;index" json:"company_id"`
	Company            *Company         `gorm:"foreignKey:CompanyID" json:"company,omitempty"`
	RepresentativeID   uuid.UUID        `gorm:"type:uuid;not null;index" json:"representative_id"`
	TotalAmount        decimal.Decimal  `gorm:"type:decimal(12,2);not null" json:"total_amount"`
	CommissionPercent  *decimal.Decimal `gorm:"type:decimal(5,2)" json:"commission_percent"`
	CommissionAmount   decimal.Decimal  `gorm:"type:decimal(12,2);not null;default:0" json:"commission_amount"`
	SoldAt             time.Time        `gorm:"not null;index" json:"sold_at"`
	ExpectedDeliveryAt *time.Time       `json:"expected_delivery_at"`
	DeliveredAt        *time.Time       `json:"delivered_at"`
	Status             string           `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	Notes              string           `gorm:"type:text" json:"notes"`
	CreatedAt          time.Time        `json:"created_at"`
	UpdatedAt          time.Time        `json:"updated_at"`
	DeletedAt          gorm.DeletedAt   `gorm:"index" json:"-"`
}

func (s *Sale) BeforeCreate(tx *gorm.DB) error {
	assignID(&s.ID)
	return nil
}

func IsSaleStatus(s string) bool {
	return slices.Contains(SaleStatuses, s)
}
