package handler

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/kedai/backoffice-service/internal/user"
	"github.com/kedai/backoffice-service/internal/user/dto"
	"github.com/kedai/backoffice-service/pkg/logger"
)

type UserHandler struct {
	uc     user.UseCase
	logger logger.ZapLogger
}

func NewUserHandler(uc user.UseCase, log logger.ZapLogger) *UserHandler {
	return &UserHandler{uc: uc, logger: log}
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (h *UserHandler) Login(ctx *gin.Context) {
	var req loginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondError(ctx, http.StatusBadRequest, "Invalid request body")
		return
	}

	token, u, err := h.uc.Login(ctx.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, user.ErrInvalidCredentials) {
			respondError(ctx, http.StatusUnauthorized, "Invalid email or password")
			return
		}
		h.logger.Error("login failed", zap.Error(err))
		respondError(ctx, http.StatusInternalServerError, "Login failed")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"token": token, "user": u})
}

// Logout exists for symmetry; sessions are stateless bearer tokens, so the
// client simply drops the token.
func (h *UserHandler) Logout(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

func (h *UserHandler) List(ctx *gin.Context) {
	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "5"))

	users, count, err := h.uc.ListUsers(ctx.Request.Context(), &dto.UserFilters{
		SearchQuery: ctx.Query("search"),
		Role:        ctx.Query("role"),
		Page:        page,
		PageSize:    limit,
	})
	if err != nil {
		h.logger.Error("failed to list users", zap.Error(err))
		respondError(ctx, http.StatusInternalServerError, "Failed to list users")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"users": users,
		"metadata": gin.H{
			"total": count,
			"page":  page,
			"limit": limit,
		},
	})
}

type changeRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

func (h *UserHandler) ChangeRole(ctx *gin.Context) {
	var req changeRoleRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondError(ctx, http.StatusBadRequest, "Invalid request body")
		return
	}

	u, err := h.uc.ChangeRole(ctx.Request.Context(), ctx.Param("id"), req.Role)
	if err != nil {
		switch {
		case errors.Is(err, user.ErrNotFound):
			respondError(ctx, http.StatusNotFound, "User not found")
		case errors.Is(err, user.ErrInvalidRole):
			respondError(ctx, http.StatusBadRequest, "Invalid role")
		default:
			h.logger.Error("failed to change role", zap.Error(err))
			respondError(ctx, http.StatusInternalServerError, "Failed to change role")
		}
		return
	}

	ctx.JSON(http.StatusOK, u)
}

func (h *UserHandler) Stream(ctx *gin.Context) {
	snapshots, err := h.uc.WatchUsers(ctx.Request.Context())
	if err != nil {
		h.logger.Error("failed to open users stream", zap.Error(err))
		respondError(ctx, http.StatusInternalServerError, "Failed to open users stream")
		return
	}

	ctx.Writer.Header().Set("Cache-Control", "no-cache")
	ctx.Stream(func(w io.Writer) bool {
		snapshot, ok := <-snapshots
		if !ok {
			return false
		}
		ctx.SSEvent("snapshot", snapshot)
		return true
	})
}

func respondError(ctx *gin.Context, status int, message string) {
	ctx.JSON(status, gin.H{"message": message})
}
