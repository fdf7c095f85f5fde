package controllers

import (
	"context"
	"errors"
	"math"
	"net/http"
	"strconv"

	"github.com/Kariqs/storefront-api/models"
	"github.com/Kariqs/storefront-api/services"
	"github.com/Kariqs/storefront-api/store"
	"github.com/gin-gonic/gin"
)

const (
	defaultUserLimit = 20

	msgUserNotFound = "User not found"
)

type UserAdminStore interface {
	FindUser(ctx context.Context, id uint) (*models.User, error)
	ListUsers(ctx context.Context, page, limit int) ([]models.User, int64, error)
	UpdateUser(ctx context.Context, id uint, changes map[string]any) (*models.User, error)
	DeleteUser(ctx context.Context, id uint) error
}

// updateUserInput holds the editable profile fields. The email address is fixed.
type updateUserInput struct {
	FullName *string `json:"fullName" binding:"omitempty,min=1"`
	Phone    *string `json:"phone"`
	Role     *string `json:"role" binding:"omitempty,oneof=user admin"`
}

// UserController manages accounts. Admins see and edit every account; users only
// their own, and only admins change roles.
type UserController struct {
	users UserAdminStore
}

func NewUserController(users UserAdminStore) *UserController {
	return &UserController{users: users}
}

// targetUser parses :id and checks the caller may act on that account.
func targetUser(ctx *gin.Context) (services.Identity, uint, bool) {
	id, ok := requireIdentity(ctx)
	if !ok {
		return id, 0, false
	}
	userID, ok := parseIDParam(ctx, "id")
	if !ok {
		return id, 0, false
	}
	if !id.IsAdmin() && id.UserID != userID {
		respondWithError(ctx, http.StatusForbidden, "You can only manage your own account", services.ErrForbidden)
		return id, 0, false
	}
	return id, userID, true
}

func (c *UserController) GetUsers(ctx *gin.Context) {
	page, err := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	limit, err := strconv.Atoi(ctx.DefaultQuery("limit", strconv.Itoa(defaultUserLimit)))
	if err != nil || limit < 1 || limit > maxProductLimit {
		limit = defaultUserLimit
	}

	users, count, err := c.users.ListUsers(ctx.Request.Context(), page, limit)
	if err != nil {
		respondWithServiceError(ctx, "Unable to fetch users", err)
		return
	}

	totalPages := int(math.Ceil(float64(count) / float64(limit)))
	ctx.JSON(http.StatusOK, gin.H{
		"users": users,
		"metadata": gin.H{
			"total":       count,
			"currentPage": page,
			"limit":       limit,
			"hasPrevPage": page > 1,
			"hasNextPage": totalPages > page,
		},
	})
}

func (c *UserController) GetUser(ctx *gin.Context) {
	_, userID, ok := targetUser(ctx)
	if !ok {
		return
	}
	user, err := c.users.FindUser(ctx.Request.Context(), userID)
	if errors.Is(err, store.ErrNotFound) {
		respondWithError(ctx, http.StatusNotFound, msgUserNotFound, nil)
		return
	}
	if err != nil {
		respondWithServiceError(ctx, "Unable to fetch user", err)
		return
	}
	sendJSONResponse(ctx, http.StatusOK, gin.H{"user": user})
}

func (c *UserController) UpdateUser(ctx *gin.Context) {
	id, userID, ok := targetUser(ctx)
	if !ok {
		return
	}
	var input updateUserInput
	if err := ctx.ShouldBindJSON(&input); err != nil {
		respondWithError(ctx, http.StatusBadRequest, msgInvalidInput, err)
		return
	}
	if input.Role != nil && !id.IsAdmin() {
		respondWithError(ctx, http.StatusForbidden, "Only admins can change roles", services.ErrForbidden)
		return
	}

	changes := map[string]any{}
	if input.FullName != nil {
		changes["full_name"] = *input.FullName
	}
	if input.Phone != nil {
		changes["phone"] = *input.Phone
	}
	if input.Role != nil {
		changes["role"] = *input.Role
	}

	user, err := c.users.UpdateUser(ctx.Request.Context(), userID, changes)
	if errors.Is(err, store.ErrNotFound) {
		respondWithError(ctx, http.StatusNotFound, msgUserNotFound, nil)
		return
	}
	if err != nil {
		respondWithServiceError(ctx, "Failed to update user", err)
		return
	}
	sendJSONResponse(ctx, http.StatusOK, gin.H{"message": "User updated successfully.", "user": user})
}

// DeleteUser closes the account. Past orders are kept.
func (c *UserController) DeleteUser(ctx *gin.Context) {
	_, userID, ok := targetUser(ctx)
	if !ok {
		return
	}
	err := c.users.DeleteUser(ctx.Request.Context(), userID)
	if errors.Is(err, store.ErrNotFound) {
		respondWithError(ctx, http.StatusNotFound, msgUserNotFound, nil)
		return
	}
	if err != nil {
		respondWithServiceError(ctx, "Failed to delete user", err)
		return
	}
	sendJSONResponse(ctx, http.StatusOK, gin.H{"message": "User deleted successfully."})
}
