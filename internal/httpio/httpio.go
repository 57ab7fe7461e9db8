// Package httpio holds the small request and response helpers shared by the
// echo handlers.
package httpio

import (
	"net/http"
	"strconv"

	"github.com/fekuna/omnipos-variation-service/internal/apperror"
	"github.com/fekuna/omnipos-variation-service/pkg/logger"
	"github.com/fekuna/omnipos-variation-service/pkg/middleware"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// ParamID parses a positive int64 path parameter.
func ParamID(c echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperror.NewValidationError(name, "validation.not_an_integer", map[string]any{"Value": c.Param(name)})
	}
	return id, nil
}

// Langs returns the caller's preferred languages for i18n.
func Langs(c echo.Context) []string {
	if lang := c.QueryParam("lang"); lang != "" {
		return []string{lang, c.Request().Header.Get("Accept-Language")}
	}
	return []string{c.Request().Header.Get("Accept-Language")}
}

// Bind decodes the request body, reporting a bad body as a validation error.
func Bind(c echo.Context, dst any) error {
	if err := c.Bind(dst); err != nil {
		return apperror.NewValidationError("body", "validation.failed", nil)
	}
	return nil
}

// Error writes err as the JSON error envelope. Server side failures are logged
// with their cause; client errors at debug level.
func Error(c echo.Context, fallback logger.ZapLogger, err error) error {
	log := middleware.FromContext(c, fallback)
	status := apperror.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		log.Error("request failed", zap.String("path", c.Path()), zap.Error(err))
	} else {
		log.Debug("request rejected", zap.String("path", c.Path()), zap.Int("status", status), zap.Error(err))
	}
	return c.JSON(status, apperror.NewBody(err, Langs(c)...))
}
