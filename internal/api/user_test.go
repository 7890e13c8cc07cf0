package api

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/lookprice/lookprice/internal/models"
)

func TestInviteTeammate(t *testing.T) {
	ts := newTestServer(t)
	store, owner := ts.seedStore(t, "Acme", "acme")
	token := ts.token(t, owner)

	w := ts.do(t, "POST", "/api/store/users", token, map[string]any{
		"email": "editor@acme.test", "password": "longenough", "role": "editor",
	})
	wantStatus(t, w, http.StatusCreated)

	invited := decode[models.User](t, w)
	if invited.Role != models.RoleEditor {
		t.Errorf("role = %q, want editor", invited.Role)
	}
	if invited.StoreID != store.ID {
		t.Errorf("teammate not in inviter's store")
	}

	// Duplicate email → conflict.
	w = ts.do(t, "POST", "/api/store/users", token, map[string]any{
		"email": "editor@acme.test", "password": "longenough", "role": "viewer",
	})
	wantStatus(t, w, http.StatusConflict)

	// A storeadmin role cannot be minted through invites.
	w = ts.do(t, "POST", "/api/store/users", token, map[string]any{
		"email": "boss@acme.test", "password": "longenough", "role": "storeadmin",
	})
	wantStatus(t, w, http.StatusBadRequest)
}

func TestInviteDeniedToEditor(t *testing.T) {
	ts := newTestServer(t)
	store, _ := ts.seedStore(t, "Acme", "acme")
	editor := ts.seedUser(t, store.ID, "editor@acme.test", models.RoleEditor)

	w := ts.do(t, "POST", "/api/store/users", ts.token(t, editor), map[string]any{
		"email": "new@acme.test", "password": "longenough", "role": "viewer",
	})
	wantStatus(t, w, http.StatusForbidden)
}

func TestCannotDeleteStoreOwner(t *testing.T) {
	ts := newTestServer(t)
	store, owner := ts.seedStore(t, "Acme", "acme")
	editor := ts.seedUser(t, store.ID, "editor@acme.test", models.RoleEditor)
	token := ts.token(t, owner)

	w := ts.do(t, "DELETE", "/api/store/users/"+owner.ID.String(), token, nil)
	wantStatus(t, w, http.StatusForbidden)

	w = ts.do(t, "DELETE", "/api/store/users/"+editor.ID.String(), token, nil)
	wantStatus(t, w, http.StatusOK)

	users, _ := ts.users.ListByStore(context.Background(), store.ID)
	if len(users) != 1 {
		t.Fatalf("got %d users, want just the owner", len(users))
	}
	if users[0].Role != models.RoleStoreAdmin {
		t.Errorf("surviving user is %q, want the storeadmin", users[0].Role)
	}
}

func TestDeleteUserScopedToStore(t *testing.T) {
	ts := newTestServer(t)
	_, acmeOwner := ts.seedStore(t, "Acme", "acme")
	other, _ := ts.seedStore(t, "Other", "other")
	otherEditor := ts.seedUser(t, other.ID, "editor@other.test", models.RoleEditor)

	// Acme's owner cannot delete a user belonging to another store — the
	// lookup is scoped to the effective store, so the target is simply not
	// found there.
	w := ts.do(t, "DELETE", "/api/store/users/"+otherEditor.ID.String(), ts.token(t, acmeOwner), nil)
	wantStatus(t, w, http.StatusNotFound)

	users, _ := ts.users.ListByStore(context.Background(), other.ID)
	if len(users) != 2 {
		t.Errorf("foreign store lost a user: %d left", len(users))
	}
}

func TestGetMe(t *testing.T) {
	ts := newTestServer(t)
	_, owner := ts.seedStore(t, "Acme", "acme")

	w := ts.do(t, "GET", "/api/store/me", ts.token(t, owner), nil)
	wantStatus(t, w, http.StatusOK)

	me := decode[models.User](t, w)
	if me.ID != owner.ID {
		t.Errorf("me.ID = %v, want %v", me.ID, owner.ID)
	}
	// The hash must never serialize.
	raw := decode[map[string]any](t, w)
	if _, ok := raw["password_hash"]; ok {
		t.Error("password hash leaked in response")
	}
}

func TestGetMeSuperadmin(t *testing.T) {
	ts := newTestServer(t)
	super := ts.seedUser(t, uuid.Nil, "root@lookprice.test", models.RoleSuperadmin)

	// The superadmin row has no store; /me must still resolve it.
	w := ts.do(t, "GET", "/api/store/me", ts.token(t, super), nil)
	wantStatus(t, w, http.StatusOK)

	me := decode[models.User](t, w)
	if me.ID != super.ID {
		t.Errorf("me.ID = %v, want %v", me.ID, super.ID)
	}
	if me.Role != models.RoleSuperadmin {
		t.Errorf("me.Role = %q, want superadmin", me.Role)
	}
}
