package model_test

import (
	"strings"
	"testing"

	"crm/internal/model"

	"github.com/google/uuid"
)

func TestLead_ChangeStatus(t *testing.T) {
	actor := uuid.New()

	t.Run("records transition", func(t *testing.T) {
		lead := &model.Lead{ID: uuid.New(), Status: model.LeadStatusNew}

		entry := lead.ChangeStatus(model.LeadStatusContacted, actor, "")

		if entry == nil {
			t.Fatal("expected history entry")
		}
		if entry.PreviousStatus != model.LeadStatusNew || entry.NewStatus != model.LeadStatusContacted {
			t.Errorf("unexpected transition %s -> %s", entry.PreviousStatus, entry.NewStatus)
		}
		if entry.Reason != model.DefaultStatusReason {
			t.Errorf("expected default reason, got %q", entry.Reason)
		}
		if entry.UserID != actor || entry.LeadID != lead.ID {
			t.Error("entry must reference actor and lead")
		}
		if lead.Status != model.LeadStatusContacted {
			t.Errorf("lead status not overwritten: %s", lead.Status)
		}
	})

	t.Run("same status is a no-op", func(t *testing.T) {
		lead := &model.Lead{ID: uuid.New(), Status: model.LeadStatusQualified}
		if entry := lead.ChangeStatus(model.LeadStatusQualified, actor, "x"); entry != nil {
			t.Error("expected no history entry")
		}
		if entry := lead.ChangeStatus("", actor, "x"); entry != nil {
			t.Error("expected no history entry for empty status")
		}
	})

	t.Run("any state reaches any state", func(t *testing.T) {
		lead := &model.Lead{ID: uuid.New(), Status: model.LeadStatusLost}
		entry := lead.ChangeStatus(model.LeadStatusNew, actor, "reaberto")
		if entry == nil || entry.Reason != "reaberto" {
			t.Fatal("expected reopen transition with custom reason")
		}
	})
}

func TestActorCanAccess(t *testing.T) {
	owner := uuid.New()
	rep := model.Actor{ID: uuid.New(), Role: model.RoleRepresentative}
	admin := model.Actor{ID: uuid.New(), Role: model.RoleAdmin}

	if rep.CanAccess(owner) {
		t.Error("representative must not access foreign rows")
	}
	if !admin.CanAccess(owner) {
		t.Error("admin bypasses ownership")
	}
	if !(model.Actor{ID: owner}).CanAccess(owner) {
		t.Error("owner must access own rows")
	}
}

func TestStatusSets(t *testing.T) {
	tests := []struct {
		name string
		fn   func(string) bool
		ok   string
	}{
		{"lead status", model.IsLeadStatus, model.LeadStatusNew},
		{"lead source", model.IsLeadSource, model.LeadSourceReferral},
		{"client status", model.IsClientStatus, model.ClientStatusSuspended},
		{"quote status", model.IsQuoteStatus, model.QuoteStatusExpired},
		{"sale status", model.IsSaleStatus, model.SaleStatusDelivered},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !tt.fn(tt.ok) {
				t.Errorf("%q should be accepted", tt.ok)
			}
			for _, bad := range []string{"", "unknown", strings.ToUpper(tt.ok)} {
				if tt.fn(bad) {
					t.Errorf("%q should be rejected", bad)
				}
			}
		})
	}
}
