package restapi

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"wallet_dashboard/internal/domain/entity"
	"wallet_dashboard/internal/infrastructure/configloader"
)

type fakePortfolioService struct {
	calls     int
	portfolio *entity.PortfolioView
	detail    *entity.WalletDetailView
	assets    *entity.AssetWalletsView
	err       error
}

func (f *fakePortfolioService) GetPortfolio(_ context.Context, userID int64) (*entity.PortfolioView, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	f.portfolio.UserID = userID
	return f.portfolio, nil
}

func (f *fakePortfolioService) GetAssetWallets(_ context.Context, userID, _ int64) (*entity.AssetWalletsView, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	f.assets.UserID = userID
	return f.assets, nil
}

func (f *fakePortfolioService) GetWalletDetail(_ context.Context, _ int64) (*entity.WalletDetailView, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.detail, nil
}

type fakeAdminService struct {
	lastWallet  entity.CreateWalletRequest
	lastAddress entity.CreateAddressRequest
	lastMapping entity.WalletUserMapping
	lastActor   int64
	removed     int64
	err         error
}

func (f *fakeAdminService) CreateWallet(_ context.Context, req entity.CreateWalletRequest) (int64, error) {
	f.lastWallet = req
	return 41, f.err
}

func (f *fakeAdminService) CreateWalletAddress(_ context.Context, req entity.CreateAddressRequest) (int64, error) {
	f.lastAddress = req
	return 42, f.err
}

func (f *fakeAdminService) ListWalletUsers(_ context.Context, walletID int64) ([]entity.WalletUserMapping, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []entity.WalletUserMapping{{ID: 1, UserID: 7, WalletID: walletID, Role: entity.WalletRoleOwner}}, nil
}

func (f *fakeAdminService) AddWalletUser(_ context.Context, actor int64, m entity.WalletUserMapping) (int64, error) {
	f.lastActor = actor
	f.lastMapping = m
	return 43, f.err
}

func (f *fakeAdminService) RemoveWalletUser(_ context.Context, actor, _, mappingID int64) error {
	f.lastActor = actor
	f.removed = mappingID
	return f.err
}

func newTestRouter(ps *fakePortfolioService, as *fakeAdminService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	cfg := &configloader.Config{}
	cfg.Server.RequestTimeout = 5
	logger := zap.NewNop()
	return SetupRouter(cfg, NewPortfolioHandler(ps, logger), NewWalletHandler(as, logger), logger)
}

func perform(r http.Handler, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func samplePortfolio() *entity.PortfolioView {
	btc := entity.Asset{ID: 1, Symbol: "BTC", Decimals: 8}
	return &entity.PortfolioView{
		Entries: []entity.PortfolioEntry{{
			Asset:            btc,
			ConfirmedRaw:     big.NewInt(150_000_000),
			PendingRaw:       big.NewInt(0),
			Quote:            entity.PriceQuote{Symbol: "BTC", PriceUSD: decimal.NewFromInt(50000), Change24h: decimal.RequireFromString("1.25")},
			PriceAvailable:   true,
			FiatValue:        decimal.NewFromInt(75000),
			PortfolioPercent: decimal.NewFromInt(100),
			WalletCount:      2,
		}},
		TotalFiatValue: decimal.NewFromInt(75000),
	}
}

func TestGetPortfolioHandler(t *testing.T) {
	ps := &fakePortfolioService{portfolio: samplePortfolio()}
	r := newTestRouter(ps, &fakeAdminService{})

	w := perform(r, http.MethodGet, "/api/v1/users/5/portfolio", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(requestIDHeader))

	body := w.Body.String()
	assert.Contains(t, body, `"userId":5`)
	assert.Contains(t, body, `"confirmed":"1.5"`)
	assert.Contains(t, body, `"confirmedRaw":"150000000"`)
	assert.Contains(t, body, `"fiatValueDisplay":"$75,000.00 USD"`)
	assert.Contains(t, body, `"portfolioPercentDisplay":"100.0%"`)
	assert.Contains(t, body, `"change24hDisplay":"1.3%"`)
}

func TestInvalidPathIDRejectedBeforeServiceCall(t *testing.T) {
	ps := &fakePortfolioService{portfolio: samplePortfolio()}
	r := newTestRouter(ps, &fakeAdminService{})

	for _, path := range []string{
		"/api/v1/users/abc/portfolio",
		"/api/v1/users/0/portfolio",
		"/api/v1/users/-3/assets/1/wallets",
		"/api/v1/users/3/assets/x/wallets",
		"/api/v1/wallets/0",
	} {
		t.Run(path, func(t *testing.T) {
			w := perform(r, http.MethodGet, path, "", nil)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, w.Body.String(), `"code":"invalid_identifier"`)
		})
	}
	assert.Equal(t, 0, ps.calls)
}

func TestErrorStatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"not found", fmt.Errorf("wallet 9: %w", entity.ErrNotFound), http.StatusNotFound, "not_found"},
		{"backend down", fmt.Errorf("list assets: %w", entity.ErrBackendUnavailable), http.StatusBadGateway, "backend_unavailable"},
		{"deadline", context.DeadlineExceeded, http.StatusBadGateway, "backend_unavailable"},
		{"forbidden", entity.ErrForbidden, http.StatusForbidden, "forbidden"},
		{"validation", entity.NewValidationError("walName", "required"), http.StatusBadRequest, "validation_failed"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "internal"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRouter(&fakePortfolioService{err: tt.err}, &fakeAdminService{})
			w := perform(r, http.MethodGet, "/api/v1/wallets/9", "", nil)
			assert.Equal(t, tt.status, w.Code)
			assert.Contains(t, w.Body.String(), fmt.Sprintf(`"code":%q`, tt.code))
		})
	}
}

func TestGetWalletDetailHandler(t *testing.T) {
	ps := &fakePortfolioService{detail: &entity.WalletDetailView{
		Wallet:      entity.Wallet{ID: 26, Name: "Treasury"},
		Asset:       entity.Asset{ID: 1, Symbol: "ETH", Decimals: 18},
		FormattedID: "0000001a000000ff0000000100000010",
		Balance:     entity.ZeroWalletBalance(26),
	}}
	r := newTestRouter(ps, &fakeAdminService{})

	w := perform(r, http.MethodGet, "/api/v1/wallets/26", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `"formattedId":"0000001a000000ff0000000100000010"`)
	assert.Contains(t, body, `"transactions":[]`)
	assert.Contains(t, body, `"addresses":[]`)
	assert.Contains(t, body, `"available":false`)
}

func TestCreateWalletHandler(t *testing.T) {
	as := &fakeAdminService{}
	r := newTestRouter(&fakePortfolioService{}, as)

	w := perform(r, http.MethodPost, "/api/v1/wallets",
		`{"walName":"Ops","walType":"Cold","walProtocol":"MPC","astId":1}`, nil)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"data":{"id":41}}`, w.Body.String())
	assert.Equal(t, "Ops", as.lastWallet.Name)
	assert.Equal(t, entity.WalletTypeCold, as.lastWallet.Type)

	w = perform(r, http.MethodPost, "/api/v1/wallets", `{not json`, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"field":"body"`)
}

func TestCreateWalletAddressHandlerUsesPathWallet(t *testing.T) {
	as := &fakeAdminService{}
	r := newTestRouter(&fakePortfolioService{}, as)

	w := perform(r, http.MethodPost, "/api/v1/wallets/12/addresses",
		`{"walNum":99,"wadAddress":"bc1q","wadKeyInfo":"{\"type\":\"single\"}"}`, nil)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, int64(12), as.lastAddress.WalletID)
	assert.Equal(t, "bc1q", as.lastAddress.Address)
}

func TestWalletUserHandlers(t *testing.T) {
	as := &fakeAdminService{}
	r := newTestRouter(&fakePortfolioService{}, as)

	w := perform(r, http.MethodGet, "/api/v1/wallets/3/users", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"wumRole":"owner"`)

	w = perform(r, http.MethodPost, "/api/v1/wallets/3/users", `{"usiNum":8,"wumRole":"viewer"}`, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code, "missing actor header")

	w = perform(r, http.MethodPost, "/api/v1/wallets/3/users", `{"usiNum":8,"wumRole":"viewer"}`,
		map[string]string{userIDHeader: "7"})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, int64(7), as.lastActor)
	assert.Equal(t, entity.WalletUserMapping{UserID: 8, WalletID: 3, Role: entity.WalletRoleViewer}, as.lastMapping)

	w = perform(r, http.MethodDelete, "/api/v1/wallets/3/users/15", "", map[string]string{userIDHeader: "7"})
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, int64(15), as.removed)

	as.err = entity.ErrForbidden
	w = perform(r, http.MethodDelete, "/api/v1/wallets/3/users/15", "", map[string]string{userIDHeader: "9"})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestHealthz(t *testing.T) {
	r := newTestRouter(&fakePortfolioService{}, &fakeAdminService{})
	w := perform(r, http.MethodGet, "/healthz", "", map[string]string{requestIDHeader: "req-1"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "req-1", w.Header().Get(requestIDHeader))
}
