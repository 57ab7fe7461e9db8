package handler

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/fekuna/omnipos-variation-service/internal/apperror"
	"github.com/fekuna/omnipos-variation-service/internal/model"
	"github.com/fekuna/omnipos-variation-service/internal/variation"
	"github.com/fekuna/omnipos-variation-service/internal/variation/dto"
	"github.com/fekuna/omnipos-variation-service/pkg/i18n"
	"github.com/fekuna/omnipos-variation-service/pkg/logger"
	"github.com/fekuna/omnipos-variation-service/pkg/middleware"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
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

func product() *model.Product {
	return &model.Product{
		BaseModel: model.BaseModel{ID: 42},
		Name:      "Shirt",
		BasePrice: decimal.RequireFromString("10.00"),
		Quantity:  5,
		VariationTypes: []model.VariationType{
			{
				BaseModel: model.BaseModel{ID: 1},
				Name:      "Color",
				Kind:      model.KindDropdown,
				Options: []model.VariationOption{
					{BaseModel: model.BaseModel{ID: 1}, Name: "Red"},
					{BaseModel: model.BaseModel{ID: 2}, Name: "Blue"},
				},
			},
		},
	}
}

func rows() []model.Variation {
	three, zero := int64(3), int64(0)
	return []model.Variation{
		{BaseModel: model.BaseModel{ID: 100}, ProductID: 42, OptionIDs: model.NewOptionIDs(1),
			Price: decimal.NewNullDecimal(decimal.RequireFromString("15.00")), Quantity: &three},
		{BaseModel: model.BaseModel{ID: 101}, ProductID: 42, OptionIDs: model.NewOptionIDs(2),
			Price: decimal.NewNullDecimal(decimal.RequireFromString("18.00")), Quantity: &zero},
	}
}

// stubUseCase runs the engine over a fixed product instead of storage.
type stubUseCase struct {
	saveErr  error
	lastRows []variation.RawRow
	lastSel  variation.Selection
}

func (s *stubUseCase) product(id int64) (*model.Product, error) {
	if id != 42 {
		return nil, apperror.NewNotFound("Product", id)
	}
	return product(), nil
}

func (s *stubUseCase) GetGrid(_ context.Context, id int64) (*variation.Grid, error) {
	p, err := s.product(id)
	if err != nil {
		return nil, err
	}
	return variation.Reconcile(p.VariationTypes, rows()), nil
}

func (s *stubUseCase) SaveGrid(_ context.Context, id int64, raw []variation.RawRow) (*variation.SaveResult, error) {
	s.lastRows = raw
	if s.saveErr != nil {
		return nil, s.saveErr
	}
	if _, err := variation.ParseSubmission(raw); err != nil {
		return nil, err
	}
	grid, _ := s.GetGrid(context.Background(), id)
	return &variation.SaveResult{Grid: grid, Unchanged: len(raw)}, nil
}

func (s *stubUseCase) GetStorefrontView(_ context.Context, id int64) (*variation.StorefrontView, error) {
	p, err := s.product(id)
	if err != nil {
		return nil, err
	}
	return &variation.StorefrontView{Product: *p, Variations: rows()}, nil
}

func (s *stubUseCase) Resolve(_ context.Context, id int64, sel variation.Selection) (*variation.Resolution, error) {
	s.lastSel = sel
	p, err := s.product(id)
	if err != nil {
		return nil, err
	}
	return variation.Resolve(p, rows(), sel, variation.Options{}), nil
}

func (s *stubUseCase) BuildLineItem(ctx context.Context, id int64, sel variation.Selection, qty int64) (variation.LineItem, error) {
	res, err := s.Resolve(ctx, id, sel)
	if err != nil {
		return variation.LineItem{}, err
	}
	return variation.NewLineItem(res, qty)
}

func (s *stubUseCase) InvalidateView(context.Context, ...int64) {}

func newServer(uc variation.UseCase) *echo.Echo {
	e := echo.New()
	e.Use(middleware.RequestID, middleware.Logger(logger.NewNop()))
	h := NewHTTPHandler(uc, logger.NewNop())
	h.RegisterAdmin(e.Group("/api/admin"))
	h.RegisterStore(e.Group("/api/store"))
	return e
}

func do(e *echo.Echo, method, target, body string, headers ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) apperror.Body {
	t.Helper()
	var b apperror.Body
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &b))
	return b
}

func TestGetGrid(t *testing.T) {
	e := newServer(&stubUseCase{})

	rec := do(e, http.MethodGet, "/api/admin/products/42/variations/grid", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var grid struct {
		Rows []struct {
			ID       *int64   `json:"id"`
			Labels   []string `json:"labels"`
			Quantity *int64   `json:"quantity"`
		} `json:"rows"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &grid))
	require.Len(t, grid.Rows, 2)
	assert.Equal(t, int64(100), *grid.Rows[0].ID)
	assert.Equal(t, []string{"Red"}, grid.Rows[0].Labels)
}

func TestGetGrid_BadID(t *testing.T) {
	e := newServer(&stubUseCase{})

	rec := do(e, http.MethodGet, "/api/admin/products/abc/variations/grid", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "validation_failed", decodeBody(t, rec).Code)
}

func TestGetGrid_NotFound(t *testing.T) {
	e := newServer(&stubUseCase{})

	rec := do(e, http.MethodGet, "/api/admin/products/7/variations/grid", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Product not found", decodeBody(t, rec).Message)
}

func TestSaveGrid(t *testing.T) {
	uc := &stubUseCase{}
	e := newServer(uc)

	rec := do(e, http.MethodPut, "/api/admin/products/42/variations",
		`{"variations":[{"id":100,"option_ids":"[1]","price":"15.00","quantity":3}]}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	require.Len(t, uc.lastRows, 1)
	assert.Equal(t, int64(100), *uc.lastRows[0].ID)
	assert.JSONEq(t, `"[1]"`, string(uc.lastRows[0].OptionIDs))
}

func TestSaveGrid_FieldErrorsLocalized(t *testing.T) {
	e := newServer(&stubUseCase{})

	rec := do(e, http.MethodPut, "/api/admin/products/42/variations",
		`{"variations":[{"option_ids":[1],"price":"abc","quantity":"x"}]}`,
		"Accept-Language", "id")
	require.Equal(t, http.StatusBadRequest, rec.Code)

	b := decodeBody(t, rec)
	assert.Equal(t, "validation_failed", b.Code)
	require.Len(t, b.Fields, 2)
	assert.Equal(t, "variations[0].price", b.Fields[0].Field)
	assert.Equal(t, "price harus berupa angka", b.Fields[0].Message)
	assert.Equal(t, "variations[0].quantity", b.Fields[1].Field)
}

func TestSaveGrid_BadBody(t *testing.T) {
	e := newServer(&stubUseCase{})

	rec := do(e, http.MethodPut, "/api/admin/products/42/variations", `{"variations":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	b := decodeBody(t, rec)
	require.Len(t, b.Fields, 1)
	assert.Equal(t, "body", b.Fields[0].Field)
}

func TestSaveGrid_PersistenceFailure(t *testing.T) {
	e := newServer(&stubUseCase{saveErr: &apperror.PersistenceError{ProductID: 42, Op: "save", Err: assert.AnError}})

	rec := do(e, http.MethodPut, "/api/admin/products/42/variations", `{"variations":[]}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	b := decodeBody(t, rec)
	assert.Equal(t, "persistence_failure", b.Code)
	assert.NotContains(t, b.Message, assert.AnError.Error())
}

func TestGetProductPage(t *testing.T) {
	uc := &stubUseCase{}
	e := newServer(uc)

	rec := do(e, http.MethodGet, "/api/store/products/42?options%5B1%5D=2", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, variation.Selection{1: 2}, uc.lastSel)

	var resp struct {
		View       json.RawMessage `json:"view"`
		Resolution struct {
			Matched     bool   `json:"matched"`
			Price       string `json:"price"`
			Purchasable bool   `json:"purchasable"`
			Stock       *int64 `json:"stock"`
		} `json:"resolution"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.View)
	assert.True(t, resp.Resolution.Matched)
	assert.Equal(t, "18", resp.Resolution.Price)
	assert.False(t, resp.Resolution.Purchasable)
	assert.Equal(t, int64(0), *resp.Resolution.Stock)
}

func TestResolveSelection_Defaults(t *testing.T) {
	uc := &stubUseCase{}
	e := newServer(uc)

	rec := do(e, http.MethodGet, "/api/store/products/42/resolve?options%5B1%5D=junk", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, uc.lastSel)

	var res variation.Resolution
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, variation.Selection{1: 1}, res.Selection)
	assert.Equal(t, int64(100), *res.VariationID)
}

func TestBuildLineItem_HTTP(t *testing.T) {
	e := newServer(&stubUseCase{})

	rec := do(e, http.MethodPost, "/api/store/products/42/line-items", `{"options":{"1":1},"quantity":2}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp dto.LineItemResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(2), resp.Item.Quantity)
	assert.Empty(t, resp.Lines)

	rec = do(e, http.MethodPost, "/api/store/products/42/line-items?options%5B1%5D=1", `{"quantity":4}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "out_of_stock", decodeBody(t, rec).Code)

	rec = do(e, http.MethodPost, "/api/store/products/42/line-items", `{"options":{"1":1}}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "quantity", decodeBody(t, rec).Fields[0].Field)
}

func TestBuildLineItem_MergesLines(t *testing.T) {
	e := newServer(&stubUseCase{})

	body := `{"options":{"1":1},"quantity":1,"lines":[{"product_id":42,"option_ids":[1],"unit_price":"15","stock":3,"quantity":2}]}`
	rec := do(e, http.MethodPost, "/api/store/products/42/line-items", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp dto.LineItemResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Lines, 1)
	assert.Equal(t, int64(3), resp.Lines[0].Quantity)
}

func dialBufconn(t *testing.T, uc variation.UseCase) *grpc.ClientConn {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer(grpc.UnaryInterceptor(middleware.ContextInterceptor(logger.NewNop())))
	RegisterVariationServiceServer(srv, NewGRPCHandler(uc, logger.NewNop()))
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestGRPC_ResolveSelection(t *testing.T) {
	client := NewVariationServiceClient(dialBufconn(t, &stubUseCase{}))

	resp, err := client.ResolveSelection(context.Background(), &dto.ResolveRequest{
		ProductID: 42,
		Options:   variation.Selection{1: 1},
	})
	require.NoError(t, err)
	assert.True(t, resp.Resolution.Matched)
	assert.True(t, resp.Resolution.Price.Equal(decimal.RequireFromString("15")))
	assert.Equal(t, model.NewOptionIDs(1), resp.Resolution.OptionIDs)
}

func TestGRPC_Errors(t *testing.T) {
	client := NewVariationServiceClient(dialBufconn(t, &stubUseCase{}))

	_, err := client.ResolveSelection(context.Background(), &dto.ResolveRequest{ProductID: 7})
	st, _ := status.FromError(err)
	assert.Equal(t, codes.NotFound, st.Code())
	assert.Equal(t, "Product not found", st.Message())

	ctx := metadata.AppendToOutgoingContext(context.Background(), "accept-language", "id")
	_, err = client.BuildLineItem(ctx, &dto.LineItemRequest{ProductID: 42, Options: variation.Selection{1: 2}, Quantity: 1})
	st, _ = status.FromError(err)
	assert.Equal(t, codes.FailedPrecondition, st.Code())
	assert.Equal(t, "Kombinasi ini sedang habis", st.Message())

	_, err = client.BuildLineItem(context.Background(), &dto.LineItemRequest{ProductID: 42})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestGRPC_BuildLineItem(t *testing.T) {
	client := NewVariationServiceClient(dialBufconn(t, &stubUseCase{}))

	resp, err := client.BuildLineItem(context.Background(), &dto.LineItemRequest{
		ProductID: 42,
		Options:   variation.Selection{1: 1},
		Quantity:  3,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(100), *resp.Item.VariationID)
	assert.True(t, resp.Item.Subtotal().Equal(decimal.RequireFromString("45")))
}
