package auth

import (
	"github.com/google/uuid"
	"github.com/lookprice/lookprice/internal/models"
)

// The authorization gate. Every tenant-scoped handler funnels through these
// predicates after the router has resolved the effective store id, so the
// role/tenant rules live in exactly one place.
//
// The matrix:
//
//	superadmin  — any store (must name it explicitly), plus the console-only
//	              operations: provisioning, billing, cross-tenant listing.
//	storeadmin  — everything within its own store.
//	editor      — catalog reads and writes within its own store, but not
//	              teammates, branding, or destructive bulk deletion.
//	viewer      — reads only.

// CanAccessStore reports whether a caller with the given role and token
// store id may touch resources of target at all. This is the tenant-isolation
// check: a mismatched store id is Forbidden no matter what the operation is.
func CanAccessStore(role models.Role, tokenStore, target uuid.UUID) bool {
	if role == models.RoleSuperadmin {
		return target != uuid.Nil
	}
	return tokenStore != uuid.Nil && tokenStore == target
}

// CanWriteCatalog reports whether the role may create, update, or delete
// individual products. Viewers are read-only.
func CanWriteCatalog(role models.Role) bool {
	switch role {
	case models.RoleSuperadmin, models.RoleStoreAdmin, models.RoleEditor:
		return true
	}
	return false
}

// CanBulkDeleteCatalog reports whether the role may wipe the whole catalog.
// Stricter than CanWriteCatalog: editors can fix one product, but emptying
// the store is an owner-level action.
func CanBulkDeleteCatalog(role models.Role) bool {
	return role == models.RoleSuperadmin || role == models.RoleStoreAdmin
}

// CanManageUsers reports whether the role may invite or remove teammates.
func CanManageUsers(role models.Role) bool {
	return role == models.RoleSuperadmin || role == models.RoleStoreAdmin
}

// CanManageBranding reports whether the role may update the public page theme.
func CanManageBranding(role models.Role) bool {
	return role == models.RoleSuperadmin || role == models.RoleStoreAdmin
}

// IsSuperadmin guards the console-only operations (tenant provisioning,
// subscription extension, cross-tenant listing, system stats). Tenant match
// is irrelevant here — these are denied to every other role outright.
func IsSuperadmin(role models.Role) bool {
	return role == models.RoleSuperadmin
}
