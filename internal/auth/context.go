package auth

import (
	"context"

	"github.com/fekuna/omnipos-variation-service/pkg/middleware"
	"github.com/labstack/echo/v4"
	"google.golang.org/grpc/metadata"
)

const HeaderMerchantID = "X-Merchant-ID"

// GetMerchantID returns the calling merchant, or "" when the caller did not
// identify one. Authentication happens upstream; this only scopes reads.
func GetMerchantID(ctx context.Context) string {
	// Set by the gRPC interceptor or the HTTP middleware.
	if val, ok := middleware.MerchantIDFromContext(ctx); ok {
		return val
	}

	md, ok := metadata.FromIncomingContext(ctx)
	if ok {
		if val := md.Get("x-merchant-id"); len(val) > 0 {
			return val[0]
		}
	}
	return ""
}

// MerchantHeader copies X-Merchant-ID onto the request context.
func MerchantHeader(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if id := c.Request().Header.Get(HeaderMerchantID); id != "" {
			req := c.Request()
			c.SetRequest(req.WithContext(middleware.WithMerchantID(req.Context(), id)))
		}
		return next(c)
	}
}

// CanAccess reports whether the caller may see a product owned by merchantID.
// Callers that name no merchant are storefront traffic and see everything.
func CanAccess(ctx context.Context, merchantID string) bool {
	caller := GetMerchantID(ctx)
	return caller == "" || caller == merchantID
}
