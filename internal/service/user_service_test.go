package service_test

import (
	"context"
	"errors"
	"testing"

	"crm/internal/model"
	"crm/internal/service"
)

func TestUserSync(t *testing.T) {
	env := newEnv(t)
	ctx := context.Background()

	owner, err := env.users.Sync(ctx, service.Identity{OpenID: "owner-open-id", Name: "Dona", Email: "dona@example.com"})
	if err != nil {
		t.Fatalf("sync owner: %v", err)
	}
	if owner.Role != model.RoleAdmin || !owner.Active {
		t.Fatalf("owner should be an active admin, got %+v", owner)
	}

	user, err := env.users.Sync(ctx, service.Identity{OpenID: "rep-1", Name: "Rui"})
	if err != nil {
		t.Fatalf("sync user: %v", err)
	}
	if user.Role != model.RoleUser {
		t.Fatalf("new users start as %q, got %q", model.RoleUser, user.Role)
	}

	again, err := env.users.Sync(ctx, service.Identity{OpenID: "rep-1", Name: "Rui Souza"})
	if err != nil {
		t.Fatalf("resync: %v", err)
	}
	if again.ID != user.ID || again.Name != "Rui Souza" {
		t.Fatalf("sync must update the existing row, got %+v", again)
	}

	if _, err := env.users.Sync(ctx, service.Identity{}); !errors.Is(err, service.ErrValidation) {
		t.Fatalf("empty subject: expected ErrValidation, got %v", err)
	}
}

func TestUserAdministration(t *testing.T) {
	env := newEnv(t)
	ctx := context.Background()

	owner, _ := env.users.Sync(ctx, service.Identity{OpenID: "owner-open-id", Name: "Dona"})
	user, _ := env.users.Sync(ctx, service.Identity{OpenID: "rep-1", Name: "Rui"})
	admin := owner.Actor()

	role := model.RoleRepresentative
	updated, err := env.users.Update(ctx, admin, user.ID, service.UpdateUserRequest{Role: &role})
	if err != nil || updated.Role != model.RoleRepresentative {
		t.Fatalf("promote: %+v (%v)", updated, err)
	}

	if _, err := env.users.Update(ctx, updated.Actor(), owner.ID, service.UpdateUserRequest{Role: &role}); !errors.Is(err, service.ErrForbidden) {
		t.Fatalf("non-admin update: expected ErrForbidden, got %v", err)
	}
	if _, err := env.users.Update(ctx, admin, owner.ID, service.UpdateUserRequest{Role: &role}); !errors.Is(err, service.ErrValidation) {
		t.Fatalf("self demotion: expected ErrValidation, got %v", err)
	}

	inactive := false
	if _, err := env.users.Update(ctx, admin, user.ID, service.UpdateUserRequest{Active: &inactive}); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if _, err := env.users.Sync(ctx, service.Identity{OpenID: "rep-1"}); !errors.Is(err, service.ErrForbidden) {
		t.Fatalf("deactivated user: expected ErrForbidden, got %v", err)
	}

	users, total, err := env.users.List(ctx, admin, 10, 0)
	if err != nil || total != 2 || len(users) != 2 {
		t.Fatalf("list: %d users (%v)", total, err)
	}
}
