package handler

import (
	"context"

	"github.com/fekuna/omnipos-variation-service/internal/apperror"
	"github.com/fekuna/omnipos-variation-service/internal/variation"
	"github.com/fekuna/omnipos-variation-service/internal/variation/dto"
	"github.com/fekuna/omnipos-variation-service/pkg/codec"
	"github.com/fekuna/omnipos-variation-service/pkg/logger"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
)

const serviceName = "omnipos.variation.v1.VariationService"

// VariationServiceServer is the gRPC surface used by the cart and order
// services. Messages travel with the JSON codec.
type VariationServiceServer interface {
	ResolveSelection(context.Context, *dto.ResolveRequest) (*dto.ResolveResponse, error)
	BuildLineItem(context.Context, *dto.LineItemRequest) (*dto.LineItemResponse, error)
}

type GRPCHandler struct {
	uc     variation.UseCase
	logger logger.ZapLogger
}

func NewGRPCHandler(uc variation.UseCase, log logger.ZapLogger) *GRPCHandler {
	return &GRPCHandler{
		uc:     uc,
		logger: log,
	}
}

func (h *GRPCHandler) ResolveSelection(ctx context.Context, req *dto.ResolveRequest) (*dto.ResolveResponse, error) {
	res, err := h.uc.Resolve(ctx, req.ProductID, req.Options)
	if err != nil {
		return nil, h.statusError(ctx, "ResolveSelection", err)
	}
	return &dto.ResolveResponse{Resolution: res}, nil
}

func (h *GRPCHandler) BuildLineItem(ctx context.Context, req *dto.LineItemRequest) (*dto.LineItemResponse, error) {
	resp, err := buildLineItem(ctx, h.uc, req.ProductID, req)
	if err != nil {
		return nil, h.statusError(ctx, "BuildLineItem", err)
	}
	return resp, nil
}

func (h *GRPCHandler) statusError(ctx context.Context, method string, err error) error {
	if apperror.HTTPStatus(err) >= 500 {
		h.logger.Error("gRPC call failed", zap.String("method", method), zap.Error(err))
	}
	var langs []string
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		langs = md.Get("accept-language")
	}
	return apperror.GRPCError(err, langs...)
}

// buildLineItem is shared by the HTTP and gRPC boundaries.
func buildLineItem(ctx context.Context, uc variation.UseCase, productID int64, req *dto.LineItemRequest) (*dto.LineItemResponse, error) {
	if req.Quantity == 0 {
		return nil, errNoQuantity
	}
	item, err := uc.BuildLineItem(ctx, productID, req.Options, req.Quantity)
	if err != nil {
		return nil, err
	}
	resp := &dto.LineItemResponse{Item: item}
	if req.Lines != nil {
		resp.Lines, err = variation.AddToLines(req.Lines, item)
		if err != nil {
			return nil, err
		}
	}
	return resp, nil
}

func RegisterVariationServiceServer(s grpc.ServiceRegistrar, srv VariationServiceServer) {
	s.RegisterService(&VariationServiceDesc, srv)
}

var VariationServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*VariationServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "ResolveSelection", Handler: resolveSelectionHandler},
		{MethodName: "BuildLineItem", Handler: buildLineItemHandler},
	},
	Streams: []grpc.StreamDesc{},
}

func resolveSelectionHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(dto.ResolveRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(VariationServiceServer).ResolveSelection(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + serviceName + "/ResolveSelection"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(VariationServiceServer).ResolveSelection(ctx, req.(*dto.ResolveRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func buildLineItemHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(dto.LineItemRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(VariationServiceServer).BuildLineItem(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + serviceName + "/BuildLineItem"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(VariationServiceServer).BuildLineItem(ctx, req.(*dto.LineItemRequest))
	}
	return interceptor(ctx, in, info, handler)
}

// VariationServiceClient calls VariationService over a connection, selecting
// the JSON codec on every call.
type VariationServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewVariationServiceClient(cc grpc.ClientConnInterface) *VariationServiceClient {
	return &VariationServiceClient{cc: cc}
}

func (c *VariationServiceClient) ResolveSelection(ctx context.Context, in *dto.ResolveRequest, opts ...grpc.CallOption) (*dto.ResolveResponse, error) {
	out := new(dto.ResolveResponse)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(codec.Name)}, opts...)
	if err := c.cc.Invoke(ctx, "/"+serviceName+"/ResolveSelection", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *VariationServiceClient) BuildLineItem(ctx context.Context, in *dto.LineItemRequest, opts ...grpc.CallOption) (*dto.LineItemResponse, error) {
	out := new(dto.LineItemResponse)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(codec.Name)}, opts...)
	if err := c.cc.Invoke(ctx, "/"+serviceName+"/BuildLineItem", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
