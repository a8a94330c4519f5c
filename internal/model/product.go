package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product belongs to exactly one represented company
type Product struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string          `gorm:"type:varchar(255);not null" json:"name"`
	Description string          `gorm:"type:text" json:"description"`
	SKU         string          `gorm:"type:varchar(100);uniqueIndex;not null" json:"sku"`
	CompanyID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"company_id"`
	Company     *Company        `gorm:"foreignKey:CompanyID" json:"company,omitempty"`
	Category    string          `gorm:"type:varchar(100)" json:"category"`
	BasePrice   decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"base_price"`
	Active      bool            `gorm:"default:true;not null" json:"active"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	DeletedAt   gorm.DeletedAt  `gorm:"index" json:"-"`
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	assignID(&p.ID)
	return nil
}
