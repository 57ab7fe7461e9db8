package handler

import (
	"net/http"

	"github.com/fekuna/omnipos-variation-service/internal/httpio"
	"github.com/fekuna/omnipos-variation-service/internal/product"
	"github.com/fekuna/omnipos-variation-service/internal/product/dto"
	"github.com/fekuna/omnipos-variation-service/internal/variation"
	"github.com/fekuna/omnipos-variation-service/pkg/logger"
	"github.com/fekuna/omnipos-variation-service/pkg/middleware"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type ProductHandler struct {
	uc     product.UseCase
	logger logger.ZapLogger
}

func NewProductHandler(uc product.UseCase, log logger.ZapLogger) *ProductHandler {
	return &ProductHandler{
		uc:     uc,
		logger: log,
	}
}

// Register mounts the admin type editor routes.
func (h *ProductHandler) Register(admin *echo.Group) {
	admin.GET("/products/:id", h.GetProduct)
	admin.GET("/products/:id/variation-types", h.GetVariationTypes)
	admin.PUT("/products/:id/variation-types", h.SaveVariationTypes)
}

func (h *ProductHandler) GetProduct(c echo.Context) error {
	id, err := httpio.ParamID(c, "id")
	if err != nil {
		return httpio.Error(c, h.logger, err)
	}
	p, err := h.uc.GetProduct(c.Request().Context(), id)
	if err != nil {
		return httpio.Error(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, p)
}

// GetVariationTypes returns the product's types as an editable draft.
func (h *ProductHandler) GetVariationTypes(c echo.Context) error {
	id, err := httpio.ParamID(c, "id")
	if err != nil {
		return httpio.Error(c, h.logger, err)
	}
	draft, err := h.uc.GetDraft(c.Request().Context(), id)
	if err != nil {
		return httpio.Error(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, draft)
}

func (h *ProductHandler) SaveVariationTypes(c echo.Context) error {
	log := middleware.FromContext(c, h.logger)

	id, err := httpio.ParamID(c, "id")
	if err != nil {
		return httpio.Error(c, h.logger, err)
	}

	var draft variation.Draft
	if err := httpio.Bind(c, &draft); err != nil {
		return httpio.Error(c, h.logger, err)
	}

	p, err := h.uc.SaveVariationTypes(c.Request().Context(), id, draft)
	if err != nil {
		return httpio.Error(c, h.logger, err)
	}

	log.Info("Variation types saved", zap.Int64("product_id", id))
	return c.JSON(http.StatusOK, dto.SaveTypesResponse{
		Product:          p,
		Draft:            variation.DraftFromTypes(p.VariationTypes),
		CombinationCount: variation.CombinationCount(p.VariationTypes),
	})
}
