package model

import (
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ClientStatus values
const (
	ClientStatusActive    = "active"
	ClientStatusInactive  = "inactive"
	ClientStatusSuspended = "suspended"
)

var ClientStatuses = []string{ClientStatusActive, ClientStatusInactive, ClientStatusSuspended}

// Client is a billable account, created directly or converted from a lead
type Client struct {
	ID                uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	PersonName        string           `gorm:"type:varchar(255);not null" json:"person_name"`
	EstablishmentName string           `gorm:"type:varchar(255);not null" json:"establishment_name"`
	TaxID             *string          `gorm:"type:varchar(14);uniqueIndex" json:"tax_id"` // CNPJ digits, nullable
	CPF               string           `gorm:"type:varchar(11)" json:"cpf"`
	City              string           `gorm:"type:varchar(100);not null" json:"city"`
	Phone             string           `gorm:"type:varchar(20);not null" json:"phone"`
	Email             string           `gorm:"type:varchar(320);not null;index" json:"email"`
	Street            string           `gorm:"type:varchar(255)" json:"street"`
	Number            string           `gorm:"type:varchar(20)" json:"number"`
	Complement        string           `gorm:"type:varchar(255)" json:"complement"`
	Neighborhood      string           `gorm:"type:varchar(100)" json:"neighborhood"`
	PostalCode        string           `gorm:"type:varchar(10)" json:"postal_code"`
	Notes             string           `gorm:"type:text" json:"notes"`
	LeadID            *uuid.UUID       `gorm:"type:uuid;index" json:"lead_id"`
	RepresentativeID  uuid.UUID        `gorm:"type:uuid;not null;index" json:"representative_id"`
	Status            string           `gorm:"type:varchar(20);not null;default:'active';index" json:"status"`
	ConvertedAt       *time.Time       `json:"converted_at"`
	CreditLimit       *decimal.Decimal `gorm:"type:decimal(12,2)" json:"credit_limit"`
	PaymentTerms      string           `gorm:"type:varchar(100)" json:"payment_terms"`
	CreatedAt         time.Time        `json:"created_at"`
	UpdatedAt         time.Time        `json:"updated_at"`
	DeletedAt         gorm.DeletedAt   `gorm:"index" json:"-"`
}

func (c *Client) BeforeCreate(tx *gorm.DB) error {
	assignID(&c.ID)
	return nil
}

func IsClientStatus(s string) bool {
	return slices.Contains(ClientStatuses, s)
}
