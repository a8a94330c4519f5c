package model

import (
	"slices"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LeadStatus values
const (
	LeadStatusNew          = "new"
	LeadStatusContacted    = "contacted"
	LeadStatusQualified    = "qualified"
	LeadStatusProposalSent = "proposal_sent"
	LeadStatusLost         = "lost"
	LeadStatusConverted    = "converted"
)

// LeadSource values
const (
	LeadSourceReferral = "referral"
	LeadSourceWebsite  = "website"
	LeadSourceEvent    = "event"
	LeadSourceColdCall = "cold_call"
	LeadSourceOther    = "other"
)

var LeadStatuses = []string{
	LeadStatusNew, LeadStatusContacted, LeadStatusQualified,
	LeadStatusProposalSent, LeadStatusLost, LeadStatusConverted,
}

var LeadSources = []string{
	LeadSourceReferral, LeadSourceWebsite, LeadSourceEvent, LeadSourceColdCall, LeadSourceOther,
}

// DefaultStatusReason is recorded when a status change comes without an explicit reason
const DefaultStatusReason = "Status atualizado"

// Lead is an unconverted prospective contact owned by a representative
type Lead struct {
	ID                uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	PersonName        string         `gorm:"type:varchar(255);not null" json:"person_name"`
	EstablishmentName string         `gorm:"type:varchar(255);not null" json:"establishment_name"`
	City              string         `gorm:"type:varchar(100);not null" json:"city"`
	Phone             string         `gorm:"type:varchar(20);not null" json:"phone"`
	Email             string         `gorm:"type:varchar(320);index" json:"email"`
	Notes             string         `gorm:"type:text" json:"notes"`
	Status            string         `gorm:"type:varchar(20);not null;default:'new';index" json:"status"`
	Source            string         `gorm:"type:varchar(20);default:'other'" json:"source"`
	RepresentativeID  uuid.UUID      `gorm:"type:uuid;not null;index" json:"representative_id"`
	LastContactAt     *time.Time     `json:"last_contact_at"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
	DeletedAt         gorm.DeletedAt `gorm:"index" json:"-"`
}

func (l *Lead) BeforeCreate(tx *gorm.DB) error {
	assignID(&l.ID)
	return nil
}

// LeadStatusHistory is an append-only record of one lead status transition
type LeadStatusHistory struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	LeadID         uuid.UUID `gorm:"type:uuid;not null;index" json:"lead_id"`
	PreviousStatus string    `gorm:"type:varchar(20)" json:"previous_status"`
	NewStatus      string    `gorm:"type:varchar(20);not null" json:"new_status"`
	UserID         uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	Reason         string    `gorm:"type:text" json:"reason"`
	ChangedAt      time.Time `gorm:"not null;index" json:"changed_at"`
}

func (LeadStatusHistory) TableName() string {
	return "lead_status_history"
}

func (h *LeadStatusHistory) BeforeCreate(tx *gorm.DB) error {
	assignID(&h.ID)
	if h.ChangedAt.IsZero() {
		h.ChangedAt = time.Now()
	}
	return nil
}

// ChangeStatus overwrites the lead status and returns the history row that must
// be persisted with it. It returns nil when the status does not change.
// Any state may move to any other state.
func (l *Lead) ChangeStatus(newStatus string, actorID uuid.UUID, reason string) *LeadStatusHistory {
	if newStatus == "" || newStatus == l.Status {
		return nil
	}
	if reason == "" {
		reason = DefaultStatusReason
	}
	entry := &LeadStatusHistory{
		LeadID:         l.ID,
		PreviousStatus: l.Status,
		NewStatus:      newStatus,
		UserID:         actorID,
		Reason:         reason,
		ChangedAt:      time.Now(),
	}
	l.Status = newStatus
	return entry
}

func IsLeadStatus(s string) bool {
	return slices.Contains(LeadStatuses, s)
}

func IsLeadSource(s string) bool {
	return slices.Contains(LeadSources, s)
}
