package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role constants
const (
	RoleAdmin          = "admin"
	RoleRepresentative = "representative"
	RoleUser           = "user"
)

// User is the local mirror of an identity-provider account
type User struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	OpenID       string         `gorm:"type:varchar(64);uniqueIndex;not null" json:"open_id"` // IdP subject
	Name         string         `gorm:"type:varchar(255)" json:"name"`
	Email        string         `gorm:"type:varchar(320)" json:"email"`
	Role         string         `gorm:"type:varchar(20);not null;default:'user'" json:"role"`
	Active       bool           `gorm:"default:true;not null" json:"active"`
	LastSignedIn time.Time      `json:"last_signed_in"`
	CreatedAt    time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	assignID(&u.ID)
	return nil
}

// Actor is the already-authenticated caller of an operation
type Actor struct {
	ID   uuid.UUID
	Role string
}

func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// CanAccess reports whether the actor may read or modify a row owned by ownerID.
func (a Actor) CanAccess(ownerID uuid.UUID) bool {
	return a.IsAdmin() || a.ID == ownerID
}

func (u *User) Actor() Actor {
	return Actor{ID: u.ID, Role: u.Role}
}
