package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/fekuna/omnipos-variation-service/internal/apperror"
	"github.com/fekuna/omnipos-variation-service/internal/auth"
	"github.com/fekuna/omnipos-variation-service/internal/httpio"
	"github.com/fekuna/omnipos-variation-service/internal/inventory"
	"github.com/fekuna/omnipos-variation-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-variation-service/pkg/codec"
	"github.com/fekuna/omnipos-variation-service/pkg/logger"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
)

const serviceName = "omnipos.variation.v1.StockService"

type StockServiceServer interface {
	ReserveStock(context.Context, *dto.ReserveStockInput) (*dto.ReserveStockResponse, error)
}

type InventoryHandler struct {
	uc     inventory.UseCase
	logger logger.ZapLogger
}

func NewInventoryHandler(uc inventory.UseCase, log logger.ZapLogger) *InventoryHandler {
	return &InventoryHandler{
		uc:     uc,
		logger: log,
	}
}

func (h *InventoryHandler) Register(admin *echo.Group) {
	admin.GET("/products/:id/stock-movements", h.ListMovements)
}

// ReserveStock is the synchronous twin of the OrderCreated listener.
func (h *InventoryHandler) ReserveStock(ctx context.Context, req *dto.ReserveStockInput) (*dto.ReserveStockResponse, error) {
	if req.MerchantID == "" {
		req.MerchantID = auth.GetMerchantID(ctx)
	}
	resp, err := h.uc.ReserveStock(ctx, req)
	if err != nil {
		if apperror.HTTPStatus(err) >= http.StatusInternalServerError {
			h.logger.Error("failed to reserve stock", zap.String("order_id", req.OrderID), zap.Error(err))
		}
		var langs []string
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			langs = md.Get("accept-language")
		}
		return nil, apperror.GRPCError(err, langs...)
	}
	return resp, nil
}

func (h *InventoryHandler) ListMovements(c echo.Context) error {
	id, err := httpio.ParamID(c, "id")
	if err != nil {
		return httpio.Error(c, h.logger, err)
	}
	page, _ := strconv.Atoi(c.QueryParam("page"))
	pageSize, _ := strconv.Atoi(c.QueryParam("page_size"))

	filters := &dto.MovementFilters{ProductID: id, Page: page, PageSize: pageSize}
	items, total, err := h.uc.ListMovements(c.Request().Context(), filters)
	if err != nil {
		return httpio.Error(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, dto.ListMovementsResponse{
		Movements: items,
		Total:     total,
		Page:      filters.Page,
		PageSize:  filters.PageSize,
	})
}

func RegisterStockServiceServer(s grpc.ServiceRegistrar, srv StockServiceServer) {
	s.RegisterService(&StockServiceDesc, srv)
}

var StockServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*StockServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "ReserveStock", Handler: reserveStockHandler},
	},
	Streams: []grpc.StreamDesc{},
}

func reserveStockHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(dto.ReserveStockInput)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(StockServiceServer).ReserveStock(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + serviceName + "/ReserveStock"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(StockServiceServer).ReserveStock(ctx, req.(*dto.ReserveStockInput))
	}
	return interceptor(ctx, in, info, handler)
}

type StockServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewStockServiceClient(cc grpc.ClientConnInterface) *StockServiceClient {
	return &StockServiceClient{cc: cc}
}

func (c *StockServiceClient) ReserveStock(ctx context.Context, in *dto.ReserveStockInput, opts ...grpc.CallOption) (*dto.ReserveStockResponse, error) {
	out := new(dto.ReserveStockResponse)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(codec.Name)}, opts...)
	if err := c.cc.Invoke(ctx, "/"+serviceName+"/ReserveStock", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
