package service

import (
	"crm/internal/model"
	"crm/internal/repository"

	"github.com/google/uuid"
)

// ListParams are the query parameters shared by every list operation
type ListParams struct {
	Status string
	Search string
	Limit  int
	Offset int
}

// ownerScope returns nil for admins so they see every row.
func ownerScope(actor model.Actor) *uuid.UUID {
	if actor.IsAdmin() {
		return nil
	}
	id := actor.ID
	return &id
}

func (p ListParams) filter(actor model.Actor) repository.ListFilter {
	return repository.ListFilter{
		OwnerID: ownerScope(actor),
		Status:  p.Status,
		Search:  p.Search,
		Limit:   p.Limit,
		Offset:  p.Offset,
	}
}
