package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ActionCreateCompany = "CREATE_COMPANY"
	ActionUpdateCompany = "UPDATE_COMPANY"
	ActionDeleteCompany = "DELETE_COMPANY"
	ActionCreateProduct = "CREATE_PRODUCT"
	ActionUpdateProduct = "UPDATE_PRODUCT"
	ActionDeleteProduct = "DELETE_PRODUCT"
	ActionDeleteLead    = "DELETE_LEAD"
	ActionConvertLead   = "CONVERT_LEAD"
	ActionDeleteClient  = "DELETE_CLIENT"
	ActionDeleteQuote   = "DELETE_QUOTE"
	ActionDeleteSale    = "DELETE_SALE"
	ActionUpdateUser    = "UPDATE_USER"
	ActionImport        = "BULK_IMPORT"
)

// AuditLog tracks Who, What, and When for admin mutations and deletions
type AuditLog struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     *uuid.UUID `gorm:"type:uuid;index" json:"user_id"`
	User       *User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Action     string     `gorm:"type:varchar(50);not null;index" json:"action"`
	EntityID   string     `gorm:"type:varchar(50);index" json:"entity_id"`
	EntityName string     `gorm:"type:varchar(255)" json:"entity_name,omitempty"`
	Details    string     `gorm:"type:jsonb" json:"details"`
	CreatedAt  time.Time  `gorm:"index" json:"created_at"`
}

func (a *AuditLog) BeforeCreate(tx *gorm.DB) error {
	assignID(&a.ID)
	return nil
}
