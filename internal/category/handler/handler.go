package handler

import (
	"net/http"
	"strconv"

	"github.com/fekuna/omnipos-variation-service/internal/category"
	"github.com/fekuna/omnipos-variation-service/internal/category/dto"
	"github.com/fekuna/omnipos-variation-service/internal/httpio"
	"github.com/fekuna/omnipos-variation-service/pkg/logger"
	"github.com/labstack/echo/v4"
)

type CategoryHandler struct {
	uc     category.UseCase
	logger logger.ZapLogger
}

func NewCategoryHandler(uc category.UseCase, log logger.ZapLogger) *CategoryHandler {
	return &CategoryHandler{
		uc:     uc,
		logger: log,
	}
}

func (h *CategoryHandler) Register(admin *echo.Group) {
	admin.GET("/categories/paths", h.ListPaths)
}

// ListPaths returns the flattened category tree for product form pickers.
// ?active=true limits it to active categories.
func (h *CategoryHandler) ListPaths(c echo.Context) error {
	filters := &dto.CategoryFilters{}
	if v := c.QueryParam("active"); v != "" {
		if active, err := strconv.ParseBool(v); err == nil {
			filters.IsActive = &active
		}
	}

	paths, err := h.uc.ListPaths(c.Request().Context(), filters)
	if err != nil {
		return httpio.Error(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, paths)
}
