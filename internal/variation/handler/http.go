package handler

import (
	"net/http"

	"github.com/fekuna/omnipos-variation-service/internal/apperror"
	"github.com/fekuna/omnipos-variation-service/internal/httpio"
	"github.com/fekuna/omnipos-variation-service/internal/variation"
	"github.com/fekuna/omnipos-variation-service/internal/variation/dto"
	"github.com/fekuna/omnipos-variation-service/pkg/logger"
	"github.com/fekuna/omnipos-variation-service/pkg/middleware"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type HTTPHandler struct {
	uc     variation.UseCase
	logger logger.ZapLogger
}

func NewHTTPHandler(uc variation.UseCase, log logger.ZapLogger) *HTTPHandler {
	return &HTTPHandler{
		uc:     uc,
		logger: log,
	}
}

func (h *HTTPHandler) RegisterAdmin(admin *echo.Group) {
	admin.GET("/products/:id/variations/grid", h.GetGrid)
	admin.PUT("/products/:id/variations", h.SaveGrid)
}

func (h *HTTPHandler) RegisterStore(store *echo.Group) {
	store.GET("/products/:id", h.GetProductPage)
	store.GET("/products/:id/resolve", h.ResolveSelection)
	store.POST("/products/:id/line-items", h.BuildLineItem)
}

func (h *HTTPHandler) GetGrid(c echo.Context) error {
	id, err := httpio.ParamID(c, "id")
	if err != nil {
		return httpio.Error(c, h.logger, err)
	}
	grid, err := h.uc.GetGrid(c.Request().Context(), id)
	if err != nil {
		return httpio.Error(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, grid)
}

func (h *HTTPHandler) SaveGrid(c echo.Context) error {
	log := middleware.FromContext(c, h.logger)

	id, err := httpio.ParamID(c, "id")
	if err != nil {
		return httpio.Error(c, h.logger, err)
	}

	var req dto.SaveGridRequest
	if err := httpio.Bind(c, &req); err != nil {
		return httpio.Error(c, h.logger, err)
	}

	result, err := h.uc.SaveGrid(c.Request().Context(), id, req.Variations)
	if err != nil {
		return httpio.Error(c, h.logger, err)
	}

	log.Info("Variation grid saved",
		zap.Int64("product_id", id),
		zap.Int("created", result.Created),
		zap.Int("updated", result.Updated),
		zap.Int("deleted", result.Deleted),
	)
	return c.JSON(http.StatusOK, result)
}

// GetProductPage returns the storefront view and the resolution of the
// options[<type_id>]=<option_id> query, default-filled.
func (h *HTTPHandler) GetProductPage(c echo.Context) error {
	id, err := httpio.ParamID(c, "id")
	if err != nil {
		return httpio.Error(c, h.logger, err)
	}
	ctx := c.Request().Context()

	view, err := h.uc.GetStorefrontView(ctx, id)
	if err != nil {
		return httpio.Error(c, h.logger, err)
	}
	res, err := h.uc.Resolve(ctx, id, variation.ParseSelection(c.QueryParams()))
	if err != nil {
		return httpio.Error(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, dto.StorefrontResponse{View: view, Resolution: res})
}

func (h *HTTPHandler) ResolveSelection(c echo.Context) error {
	id, err := httpio.ParamID(c, "id")
	if err != nil {
		return httpio.Error(c, h.logger, err)
	}
	res, err := h.uc.Resolve(c.Request().Context(), id, variation.ParseSelection(c.QueryParams()))
	if err != nil {
		return httpio.Error(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *HTTPHandler) BuildLineItem(c echo.Context) error {
	id, err := httpio.ParamID(c, "id")
	if err != nil {
		return httpio.Error(c, h.logger, err)
	}

	var req dto.LineItemRequest
	if err := httpio.Bind(c, &req); err != nil {
		return httpio.Error(c, h.logger, err)
	}
	if req.Options == nil {
		req.Options = variation.ParseSelection(c.QueryParams())
	}

	resp, err := buildLineItem(c.Request().Context(), h.uc, id, &req)
	if err != nil {
		return httpio.Error(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, resp)
}

var errNoQuantity = apperror.NewValidationError("quantity", "validation.required", nil)
