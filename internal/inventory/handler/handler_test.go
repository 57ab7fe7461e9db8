package handler

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/fekuna/omnipos-variation-service/internal/apperror"
	"github.com/fekuna/omnipos-variation-service/internal/auth"
	"github.com/fekuna/omnipos-variation-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-variation-service/internal/model"
	"github.com/fekuna/omnipos-variation-service/pkg/i18n"
	"github.com/fekuna/omnipos-variation-service/pkg/logger"
	"github.com/fekuna/omnipos-variation-service/pkg/middleware"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

func TestMain(m *testing.M) {
	if err := i18n.Init("en"); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

type stubUseCase struct {
	reserved *dto.ReserveStockInput
	filters  *dto.MovementFilters
	err      error
}

func (s *stubUseCase) ReserveStock(_ context.Context, in *dto.ReserveStockInput) (*dto.ReserveStockResponse, error) {
	s.reserved = in
	if s.err != nil {
		return nil, s.err
	}
	return &dto.ReserveStockResponse{Movements: []model.StockMovement{{ProductID: 42, QuantityChange: -2}}}, nil
}

func (s *stubUseCase) ListMovements(_ context.Context, f *dto.MovementFilters) ([]model.StockMovement, int, error) {
	s.filters = f
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize <= 0 {
		f.PageSize = 20
	}
	return []model.StockMovement{{ProductID: f.ProductID, MovementType: model.MovementSale}}, 1, nil
}

func TestListMovements(t *testing.T) {
	uc := &stubUseCase{}
	e := echo.New()
	e.Use(auth.MerchantHeader)
	NewInventoryHandler(uc, logger.NewNop()).Register(e.Group("/api/admin"))

	req := httptest.NewRequest(http.MethodGet, "/api/admin/products/42/stock-movements?page=2", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp dto.ListMovementsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Total)
	assert.Equal(t, 2, resp.Page)
	assert.Equal(t, 20, resp.PageSize)
	assert.Equal(t, int64(42), uc.filters.ProductID)
}

func TestListMovements_BadID(t *testing.T) {
	e := echo.New()
	NewInventoryHandler(&stubUseCase{}, logger.NewNop()).Register(e.Group("/api/admin"))

	req := httptest.NewRequest(http.MethodGet, "/api/admin/products/abc/stock-movements", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func dial(t *testing.T, uc *stubUseCase) *StockServiceClient {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer(grpc.UnaryInterceptor(middleware.ContextInterceptor(logger.NewNop())))
	RegisterStockServiceServer(srv, NewInventoryHandler(uc, logger.NewNop()))
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return NewStockServiceClient(conn)
}

func TestGRPC_ReserveStock(t *testing.T) {
	uc := &stubUseCase{}
	client := dial(t, uc)

	ctx := metadata.AppendToOutgoingContext(context.Background(), "x-merchant-id", "m-1")
	resp, err := client.ReserveStock(ctx, &dto.ReserveStockInput{
		OrderID: "order-1",
		Items:   []dto.ReserveItem{{ProductID: 42, OptionIDs: model.NewOptionIDs(1, 10), Quantity: 2}},
	})
	require.NoError(t, err)
	require.Len(t, resp.Movements, 1)
	assert.Equal(t, "m-1", uc.reserved.MerchantID)
	assert.Equal(t, model.NewOptionIDs(1, 10), uc.reserved.Items[0].OptionIDs)
}

func TestGRPC_ReserveStock_OutOfStock(t *testing.T) {
	client := dial(t, &stubUseCase{err: apperror.ErrOutOfStock})

	ctx := metadata.AppendToOutgoingContext(context.Background(), "accept-language", "en")
	_, err := client.ReserveStock(ctx, &dto.ReserveStockInput{OrderID: "order-2"})
	st, _ := status.FromError(err)
	assert.Equal(t, codes.FailedPrecondition, st.Code())
	assert.NotEmpty(t, st.Message())
}
