package handler

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/kedai/backoffice-service/internal/menu"
	"github.com/kedai/backoffice-service/internal/menu/dto"
	"github.com/kedai/backoffice-service/pkg/logger"
)

type MenuHandler struct {
	uc     menu.UseCase
	logger logger.ZapLogger
}

func NewMenuHandler(uc menu.UseCase, log logger.ZapLogger) *MenuHandler {
	return &MenuHandler{uc: uc, logger: log}
}

func (h *MenuHandler) Create(ctx *gin.Context) {
	var input dto.CreateMenuItemInput
	if err := ctx.ShouldBindJSON(&input); err != nil {
		respondError(ctx, http.StatusBadRequest, "Invalid request body")
		return
	}

	item, err := h.uc.CreateMenuItem(ctx.Request.Context(), &input)
	if err != nil {
		h.logger.Error("failed to create menu item", zap.Error(err))
		respondError(ctx, http.StatusInternalServerError, "Failed to create menu item")
		return
	}

	ctx.JSON(http.StatusCreated, item)
}

func (h *MenuHandler) Get(ctx *gin.Context) {
	item, err := h.uc.GetMenuItem(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		if errors.Is(err, menu.ErrNotFound) {
			respondError(ctx, http.StatusNotFound, "Menu item not found")
			return
		}
		h.logger.Error("failed to get menu item", zap.Error(err))
		respondError(ctx, http.StatusInternalServerError, "Failed to get menu item")
		return
	}

	ctx.JSON(http.StatusOK, item)
}

func (h *MenuHandler) List(ctx *gin.Context) {
	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))

	filters := &dto.MenuFilters{
		SearchQuery: ctx.Query("search"),
		Category:    ctx.Query("category"),
		Page:        page,
		PageSize:    limit,
	}

	items, count, err := h.uc.ListMenuItems(ctx.Request.Context(), filters)
	if err != nil {
		h.logger.Error("failed to list menu items", zap.Error(err))
		respondError(ctx, http.StatusInternalServerError, "Failed to list menu items")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"items": items,
		"metadata": gin.H{
			"total": count,
			"page":  page,
			"limit": limit,
		},
	})
}

func (h *MenuHandler) Update(ctx *gin.Context) {
	var input dto.UpdateMenuItemInput
	if err := ctx.ShouldBindJSON(&input); err != nil {
		respondError(ctx, http.StatusBadRequest, "Invalid request body")
		return
	}
	input.ID = ctx.Param("id")

	item, err := h.uc.UpdateMenuItem(ctx.Request.Context(), &input)
	if err != nil {
		if errors.Is(err, menu.ErrNotFound) {
			respondError(ctx, http.StatusNotFound, "Menu item not found")
			return
		}
		h.logger.Error("failed to update menu item", zap.Error(err))
		respondError(ctx, http.StatusInternalServerError, "Failed to update menu item")
		return
	}

	ctx.JSON(http.StatusOK, item)
}

// Delete reports the deletion and the cart cleanup as two separate fields;
// a cleanup failure still returns 200 because the item itself is gone.
func (h *MenuHandler) Delete(ctx *gin.Context) {
	result, err := h.uc.DeleteMenuItem(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		if errors.Is(err, menu.ErrNotFound) {
			respondError(ctx, http.StatusNotFound, "Menu item not found")
			return
		}
		h.logger.Error("failed to delete menu item", zap.Error(err))
		respondError(ctx, http.StatusInternalServerError, "Failed to delete menu item")
		return
	}

	resp := gin.H{
		"message":      "Menu item deleted",
		"cartsScanned": result.CartsScanned,
		"cartsUpdated": result.CartsUpdated,
	}
	if result.CleanupErr != nil {
		resp["cartCleanup"] = "failed: " + result.CleanupErr.Error()
	}
	ctx.JSON(http.StatusOK, resp)
}

func (h *MenuHandler) UploadImage(ctx *gin.Context) {
	file, err := ctx.FormFile("image")
	if err != nil {
		respondError(ctx, http.StatusBadRequest, "No image uploaded")
		return
	}

	f, err := file.Open()
	if err != nil {
		respondError(ctx, http.StatusBadRequest, "Unable to read uploaded image")
		return
	}
	defer f.Close()

	url, err := h.uc.AttachImage(ctx.Request.Context(), ctx.Param("id"), file.Header.Get("Content-Type"), f)
	if err != nil {
		if errors.Is(err, menu.ErrNotFound) {
			respondError(ctx, http.StatusNotFound, "Menu item not found")
			return
		}
		h.logger.Error("failed to upload menu image", zap.Error(err))
		respondError(ctx, http.StatusInternalServerError, "Failed to upload image")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"imageURL": url})
}

func (h *MenuHandler) TopSelling(ctx *gin.Context) {
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "5"))

	items, err := h.uc.TopSelling(ctx.Request.Context(), limit)
	if err != nil {
		h.logger.Error("failed to list top selling items", zap.Error(err))
		respondError(ctx, http.StatusInternalServerError, "Failed to list top selling items")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"items": items})
}

// Stream pushes full menu snapshots over SSE whenever the collection changes.
func (h *MenuHandler) Stream(ctx *gin.Context) {
	snapshots, err := h.uc.WatchMenu(ctx.Request.Context())
	if err != nil {
		h.logger.Error("failed to open menu stream", zap.Error(err))
		respondError(ctx, http.StatusInternalServerError, "Failed to open menu stream")
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
