package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/kedai/backoffice-service/internal/auth"
	"github.com/kedai/backoffice-service/internal/inventory"
	"github.com/kedai/backoffice-service/internal/inventory/dto"
	"github.com/kedai/backoffice-service/pkg/logger"
)

type InventoryHandler struct {
	uc     inventory.UseCase
	logger logger.ZapLogger
}

func NewInventoryHandler(uc inventory.UseCase, log logger.ZapLogger) *InventoryHandler {
	return &InventoryHandler{uc: uc, logger: log}
}

func (h *InventoryHandler) Increment(ctx *gin.Context) {
	h.singleStep(ctx, true)
}

func (h *InventoryHandler) Decrement(ctx *gin.Context) {
	h.singleStep(ctx, false)
}

func (h *InventoryHandler) singleStep(ctx *gin.Context, increment bool) {
	actorID := ""
	if session, ok := auth.FromContext(ctx.Request.Context()); ok {
		actorID = session.UserID
	}

	adjust := h.uc.DecrementStock
	if increment {
		adjust = h.uc.IncrementStock
	}

	item, err := adjust(ctx.Request.Context(), ctx.Param("id"), actorID)
	if err != nil {
		h.respondAdjustError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, item)
}

type bulkAdjustRequest struct {
	Direction string `json:"direction" binding:"required"`
	Amount    int    `json:"amount" binding:"required"`
}

func (h *InventoryHandler) BulkAdjust(ctx *gin.Context) {
	var req bulkAdjustRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondError(ctx, http.StatusBadRequest, "Invalid request body")
		return
	}

	actorID := ""
	if session, ok := auth.FromContext(ctx.Request.Context()); ok {
		actorID = session.UserID
	}

	item, err := h.uc.BulkAdjustStock(ctx.Request.Context(), &dto.BulkAdjustInput{
		ItemID:    ctx.Param("id"),
		Direction: req.Direction,
		Amount:    req.Amount,
		ActorID:   actorID,
	})
	if err != nil {
		h.respondAdjustError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, item)
}

func (h *InventoryHandler) LowStock(ctx *gin.Context) {
	items, err := h.uc.ListLowStock(ctx.Request.Context())
	if err != nil {
		h.logger.Error("failed to list low stock items", zap.Error(err))
		respondError(ctx, http.StatusInternalServerError, "Failed to list low stock items")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *InventoryHandler) Movements(ctx *gin.Context) {
	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))

	movements, count, err := h.uc.ListMovements(ctx.Request.Context(), &dto.MovementFilters{
		ItemID:   ctx.Query("itemId"),
		Reason:   ctx.Query("reason"),
		Page:     page,
		PageSize: limit,
	})
	if err != nil {
		h.logger.Error("failed to list stock movements", zap.Error(err))
		respondError(ctx, http.StatusInternalServerError, "Failed to list stock movements")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"movements": movements,
		"metadata": gin.H{
			"total": count,
			"page":  page,
			"limit": limit,
		},
	})
}

func (h *InventoryHandler) respondAdjustError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, inventory.ErrItemNotFound):
		respondError(ctx, http.StatusNotFound, "Menu item not found")
	case errors.Is(err, inventory.ErrInvalidAdjustment):
		respondError(ctx, http.StatusBadRequest, "Invalid stock adjustment")
	default:
		h.logger.Error("failed to adjust stock", zap.Error(err))
		respondError(ctx, http.StatusInternalServerError, "Failed to adjust stock")
	}
}

func respondError(ctx *gin.Context, status int, message string) {
	ctx.JSON(status, gin.H{"message": message})
}
