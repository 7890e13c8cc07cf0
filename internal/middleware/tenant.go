package middleware

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/lookprice/lookprice/internal/models"
)

// ErrStoreRequired means a superadmin hit a tenant-scoped endpoint without
// naming the target store. Handlers translate it to a 400.
var ErrStoreRequired = errors.New("store_id is required for superadmin requests")

// EffectiveStoreID computes the one store id an operation is allowed to touch.
// Every tenant-scoped handler calls this — never c.Query("store_id") or a
// body field directly — so the tenant-confusion branch exists exactly once.
//
// The rule:
//   - superadmin tokens carry no store. The client must name the target:
//     bodyStoreID for writes (the handler passes the field it already
//     parsed), the store_id query parameter for reads. Neither given → error.
//   - every other role acts on the store in its token, full stop. A
//     client-supplied store id is ignored, not rejected: the caller cannot
//     widen their scope by naming someone else's store.
func EffectiveStoreID(c *gin.Context, bodyStoreID uuid.UUID) (uuid.UUID, error) {
	if GetRole(c) != models.RoleSuperadmin {
		return GetStoreID(c), nil
	}

	if bodyStoreID != uuid.Nil {
		return bodyStoreID, nil
	}
	if raw := c.Query("store_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return uuid.Nil, errors.New("invalid store_id")
		}
		return id, nil
	}
	return uuid.Nil, ErrStoreRequired
}
