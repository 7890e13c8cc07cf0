package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/lookprice/lookprice/internal/auth"
	"github.com/lookprice/lookprice/internal/middleware"
	"github.com/lookprice/lookprice/internal/models"
	"github.com/lookprice/lookprice/internal/repository"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// UserHandler manages a store's teammates, plus the caller's own profile.
type UserHandler struct {
	repo   repository.UserRepository
	logger *zap.Logger
}

func NewUserHandler(repo repository.UserRepository, logger *zap.Logger) *UserHandler {
	return &UserHandler{repo: repo, logger: logger}
}

// GetMe handles GET /api/store/me
//
// Fetched by user id alone: the token already pins the caller, and a
// store-scoped lookup would lose superadmins, whose row has no store.
func (h *UserHandler) GetMe(c *gin.Context) {
	user, err := h.repo.Get(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		h.logger.Error("failed to get user", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get user"})
		return
	}
	// A valid token whose user has since been deleted — treat as gone.
	if user == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	c.JSON(http.StatusOK, user)
}

// List handles GET /api/store/users
func (h *UserHandler) List(c *gin.Context) {
	if !auth.CanManageUsers(middleware.GetRole(c)) {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}

	storeID, ok := storeIDOrAbort(c, uuid.Nil)
	if !ok {
		return
	}

	users, err := h.repo.ListByStore(c.Request.Context(), storeID)
	if err != nil {
		h.logger.Error("failed to list users", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list users"})
		return
	}
	c.JSON(http.StatusOK, users)
}

// inviteRequest creates a teammate. Role is restricted to editor/viewer —
// the one storeadmin per store is the owner created at provisioning time,
// and superadmins only come from the console seed.
type inviteRequest struct {
	StoreID  uuid.UUID   `json:"store_id"`
	Email    string      `json:"email" binding:"required,email"`
	Password string      `json:"password" binding:"required,min=8"`
	Role     models.Role `json:"role" binding:"required,oneof=editor viewer"`
}

// Invite handles POST /api/store/users
func (h *UserHandler) Invite(c *gin.Context) {
	if !auth.CanManageUsers(middleware.GetRole(c)) {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}

	var req inviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	storeID, ok := storeIDOrAbort(c, req.StoreID)
	if !ok {
		return
	}

	existing, err := h.repo.GetByEmail(c.Request.Context(), req.Email)
	if err != nil {
		h.logger.Error("failed to check email", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to invite user"})
		return
	}
	if existing != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "email already registered"})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		h.logger.Error("failed to hash password", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to invite user"})
		return
	}

	user, err := h.repo.Create(c.Request.Context(), storeID, req.Email, string(hash), req.Role)
	if err != nil {
		h.logger.Error("failed to create user", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to invite user"})
		return
	}
	c.JSON(http.StatusCreated, user)
}

// Delete handles DELETE /api/store/users/:id
func (h *UserHandler) Delete(c *gin.Context) {
	if !auth.CanManageUsers(middleware.GetRole(c)) {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}

	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	storeID, ok := storeIDOrAbort(c, uuid.Nil)
	if !ok {
		return
	}

	target, err := h.repo.GetByID(c.Request.Context(), storeID, userID)
	if err != nil {
		h.logger.Error("failed to get user", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete user"})
		return
	}
	if target == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}

	// The owning storeadmin cannot be deleted — a store always keeps its
	// owner. Dropping the whole store is a console decision, not this one.
	if target.Role == models.RoleStoreAdmin {
		c.JSON(http.StatusForbidden, gin.H{"error": "cannot delete the store owner"})
		return
	}

	if _, err := h.repo.Delete(c.Request.Context(), storeID, userID); err != nil {
		h.logger.Error("failed to delete user", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete user"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}
