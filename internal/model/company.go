package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Company is a represented principal whose products are sold on commission
type Company struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string         `gorm:"type:varchar(255);not null" json:"name"`
	TaxID       string         `gorm:"type:varchar(14);uniqueIndex;not null" json:"tax_id"`
	LogoURL     string         `gorm:"type:text" json:"logo_url"`
	Description string         `gorm:"type:text" json:"description"`
	Phone       string         `gorm:"type:varchar(20)" json:"phone"`
	Email       string         `gorm:"type:varchar(320)" json:"email"`
	Website     string         `gorm:"type:varchar(255)" json:"website"`
	Address     string         `gorm:"type:varchar(255)" json:"address"`
	City        string         `gorm:"type:varchar(100)" json:"city"`
	State       string         `gorm:"type:varchar(2)" json:"state"`
	Active      bool           `gorm:"default:true;not null" json:"active"`
	CreatedBy   uuid.UUID      `gorm:"type:uuid;not null" json:"created_by"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (c *Company) BeforeCreate(tx *gorm.DB) error {
	assignID(&c.ID)
	return nil
}
