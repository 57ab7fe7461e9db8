package middleware

import (
	"context"
	"time"

	"github.com/fekuna/omnipos-variation-service/pkg/logger"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type merchantKey struct{}

// WithMerchantID stores the calling merchant on the context.
func WithMerchantID(ctx context.Context, merchantID string) context.Context {
	return context.WithValue(ctx, merchantKey{}, merchantID)
}

func MerchantIDFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(merchantKey{}).(string)
	return v, ok && v != ""
}

// ContextInterceptor lifts x-merchant-id from incoming metadata onto the context
// and logs each call with its status code.
func ContextInterceptor(log logger.ZapLogger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			if vals := md.Get("x-merchant-id"); len(vals) > 0 {
				ctx = WithMerchantID(ctx, vals[0])
			}
		}

		start := time.Now()
		resp, err := handler(ctx, req)
		log.Debug("gRPC call",
			zap.String("method", info.FullMethod),
			zap.String("code", status.Code(err).String()),
			zap.Duration("latency", time.Since(start)),
		)
		return resp, err
	}
}
