package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"ledgerpay/internal/models"
	"ledgerpay/internal/repositories"
	"ledgerpay/internal/services/charge"
	"ledgerpay/internal/services/wallet"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockWalletService struct {
	mock.Mock
}

type MockChargeService struct {
	mock.Mock
}

func newTestApp(ws wallet.Service, cs charge.Service) *fiber.App {
	app := fiber.New()
	wh := NewWalletHandler(ws, time.Second, nil)
	ch := NewChargeHandler(cs, time.Second, nil)
	app.Get("/balance", wh.GetBalance)
	app.Get("/history", wh.GetHistory)
	app.Post("/charge", ch.CreateCharge)
	app.Post("/charge_ack", ch.AcknowledgeCharge)
	return app
}

func doRequest(t *testing.T, app *fiber.App, method, target, body string) (int, map[string]interface{}) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func TestWalletHandler_GetBalance(t *testing.T) {
	tests := []struct {
		name       string
		target     string
		setupMock  func(*MockWalletService)
		wantStatus int
		wantBody   map[string]interface{}
	}{
		{
			name:   "known wallet",
			target: "/balance?customerPhoneNumber=%2B15550001",
			setupMock: func(ws *MockWalletService) {
				ws.On("GetBalance", mock.Anything, "+15550001").Return(decimal.RequireFromString("12.5"), nil)
			},
			wantStatus: fiber.StatusOK,
			wantBody:   map[string]interface{}{"customer_phone_number": "+15550001", "balance": 12.5},
		},
		{
			name:   "unknown wallet",
			target: "/balance?customerPhoneNumber=555",
			setupMock: func(ws *MockWalletService) {
				ws.On("GetBalance", mock.Anything, "555").Return(decimal.Zero, wallet.ErrWalletNotFound)
			},
			wantStatus: fiber.StatusNotFound,
			wantBody:   map[string]interface{}{"error": "Wallet not found"},
		},
		{
			name:   "store failure",
			target: "/balance?customerPhoneNumber=555",
			setupMock: func(ws *MockWalletService) {
				ws.On("GetBalance", mock.Anything, "555").Return(decimal.Zero, errors.New("db down"))
			},
			wantStatus: fiber.StatusInternalServerError,
			wantBody:   map[string]interface{}{"error": "Failed to get balance"},
		},
		{
			name:       "missing key",
			target:     "/balance",
			wantStatus: fiber.StatusBadRequest,
			wantBody:   map[string]interface{}{"error": "customerPhoneNumber is required"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ws := new(MockWalletService)
			if tt.setupMock != nil {
				tt.setupMock(ws)
			}

			status, body := doRequest(t, newTestApp(ws, new(MockChargeService)), "GET", tt.target, "")
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantBody, body)
			ws.AssertExpectations(t)
		})
	}
}

func TestWalletHandler_GetHistory(t *testing.T) {
	at := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)

	t.Run("defaults to first page of ten", func(t *testing.T) {
		ws := new(MockWalletService)
		ws.On("ListHistory", mock.Anything, "7", 1, 10).Return([]models.TransactionRecord{
			{ID: 3, Time: at, Amount: decimal.RequireFromString("12.5"), Cause: models.CauseCharge},
		}, nil)

		status, body := doRequest(t, newTestApp(ws, new(MockChargeService)), "GET", "/history?userId=7", "")
		assert.Equal(t, fiber.StatusOK, status)
		assert.Equal(t, map[string]interface{}{
			"transactions": []interface{}{
				map[string]interface{}{"time": "2024-03-01T09:30:00Z", "amount": 12.5, "cause": "charge"},
			},
		}, body)
		ws.AssertExpectations(t)
	})

	t.Run("empty page is an empty list", func(t *testing.T) {
		ws := new(MockWalletService)
		ws.On("ListHistory", mock.Anything, "7", 4, 10).Return([]models.TransactionRecord{}, nil)

		status, body := doRequest(t, newTestApp(ws, new(MockChargeService)), "GET", "/history?userId=7&page=4&limit=10", "")
		assert.Equal(t, fiber.StatusOK, status)
		assert.Equal(t, []interface{}{}, body["transactions"])
	})

	t.Run("limit above maximum", func(t *testing.T) {
		ws := new(MockWalletService)
		ws.On("ListHistory", mock.Anything, "7", 1, 500).Return(nil, wallet.ErrInvalidPagination)

		status, _ := doRequest(t, newTestApp(ws, new(MockChargeService)), "GET", "/history?userId=7&limit=500", "")
		assert.Equal(t, fiber.StatusBadRequest, status)
	})

	for _, target := range []string{"/history", "/history?userId=abc", "/history?userId=7&page=0"} {
		t.Run("rejects "+target, func(t *testing.T) {
			ws := new(MockWalletService)
			status, _ := doRequest(t, newTestApp(ws, new(MockChargeService)), "GET", target, "")
			assert.Equal(t, fiber.StatusBadRequest, status)
			ws.AssertNotCalled(t, "ListHistory", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestChargeHandler_CreateCharge(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		setupMock  func(*MockChargeService)
		wantStatus int
		wantBody   map[string]interface{}
	}{
		{
			name: "created",
			body: `{"user_id": 7, "amount": 12.5}`,
			setupMock: func(cs *MockChargeService) {
				cs.On("CreateCharge", mock.Anything, "7", mock.MatchedBy(func(d decimal.Decimal) bool {
					return d.Equal(decimal.RequireFromString("12.5"))
				})).Return(&charge.ChargeHandle{AckURL: "http://localhost/charge_ack", Token: "a1b2", TransactionID: 101}, nil)
			},
			wantStatus: fiber.StatusCreated,
			wantBody:   map[string]interface{}{"url": "http://localhost/charge_ack", "token": "a1b2", "trx_id": float64(101)},
		},
		{
			name: "duplicate charge",
			body: `{"user_id": 7, "amount": 1}`,
			setupMock: func(cs *MockChargeService) {
				cs.On("CreateCharge", mock.Anything, "7", mock.Anything).Return(nil, charge.ErrChargeExists)
			},
			wantStatus: fiber.StatusBadRequest,
			wantBody:   map[string]interface{}{"error": "Charge already exists"},
		},
		{
			name: "non-positive amount",
			body: `{"user_id": 7, "amount": 0}`,
			setupMock: func(cs *MockChargeService) {
				cs.On("CreateCharge", mock.Anything, "7", mock.Anything).Return(nil, charge.ErrInvalidAmount)
			},
			wantStatus: fiber.StatusBadRequest,
			wantBody:   map[string]interface{}{"error": "amount must be positive with at most two decimals"},
		},
		{
			name: "store failure",
			body: `{"user_id": 7, "amount": 1}`,
			setupMock: func(cs *MockChargeService) {
				cs.On("CreateCharge", mock.Anything, "7", mock.Anything).Return(nil, errors.New("db down"))
			},
			wantStatus: fiber.StatusInternalServerError,
			wantBody:   map[string]interface{}{"error": "Failed to create charge"},
		},
		{
			name:       "missing user",
			body:       `{"amount": 1}`,
			wantStatus: fiber.StatusBadRequest,
			wantBody:   map[string]interface{}{"error": "user_id: is required"},
		},
		{
			name:       "malformed body",
			body:       `{"user_id": "seven"`,
			wantStatus: fiber.StatusBadRequest,
			wantBody:   map[string]interface{}{"error": "Invalid request format"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cs := new(MockChargeService)
			if tt.setupMock != nil {
				tt.setupMock(cs)
			}

			status, body := doRequest(t, newTestApp(new(MockWalletService), cs), "POST", "/charge", tt.body)
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantBody, body)
			cs.AssertExpectations(t)
		})
	}
}

func TestChargeHandler_AcknowledgeCharge(t *testing.T) {
	const body = `{"token": "a1b2", "trx_id": 101, "user_id": "7"}`

	tests := []struct {
		name       string
		body       string
		token      string
		ackErr     error
		skipMock   bool
		wantStatus int
		wantBody   map[string]interface{}
	}{
		{
			name:       "verified",
			body:       body,
			wantStatus: fiber.StatusOK,
			wantBody:   map[string]interface{}{"status": "verified"},
		},
		{
			name:       "no matching charge",
			body:       body,
			ackErr:     charge.ErrChargeNotFound,
			wantStatus: fiber.StatusNotFound,
			wantBody:   map[string]interface{}{"error": "No valid charge found"},
		},
		{
			name:       "already settled",
			body:       body,
			ackErr:     charge.ErrAlreadySettled,
			wantStatus: fiber.StatusConflict,
			wantBody:   map[string]interface{}{"error": "Charge already settled"},
		},
		{
			name:       "wallet missing",
			body:       body,
			ackErr:     charge.ErrWalletNotFound,
			wantStatus: fiber.StatusNotFound,
			wantBody:   map[string]interface{}{"error": "Wallet not found"},
		},
		{
			name:       "store failure",
			body:       body,
			ackErr:     errors.New("db down"),
			wantStatus: fiber.StatusInternalServerError,
			wantBody:   map[string]interface{}{"error": "Failed to acknowledge charge"},
		},
		{
			// any token shape is looked up; one that was never issued matches nothing
			name:       "token never issued",
			body:       `{"token": "not-hex!", "trx_id": 101, "user_id": "7"}`,
			token:      "not-hex!",
			ackErr:     charge.ErrChargeNotFound,
			wantStatus: fiber.StatusNotFound,
			wantBody:   map[string]interface{}{"error": "No valid charge found"},
		},
		{
			name:       "token missing",
			body:       `{"trx_id": 101, "user_id": "7"}`,
			skipMock:   true,
			wantStatus: fiber.StatusBadRequest,
			wantBody:   map[string]interface{}{"error": "token: is required"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cs := new(MockChargeService)
			if !tt.skipMock {
				token := tt.token
				if token == "" {
					token = "a1b2"
				}
				cs.On("AcknowledgeCharge", mock.Anything, "7", token, uint(101)).Return(tt.ackErr)
			}

			status, got := doRequest(t, newTestApp(new(MockWalletService), cs), "POST", "/charge_ack", tt.body)
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantBody, got)
			cs.AssertExpectations(t)
		})
	}
}

type stubCache struct {
	err   error
	stats *redis.PoolStats
}

func (s stubCache) HealthCheck(context.Context) error { return s.err }
func (s stubCache) GetStats() *redis.PoolStats       { return s.stats }

func TestHealthHandler(t *testing.T) {
	ok := PingFunc(func(context.Context) error { return nil })
	down := PingFunc(func(context.Context) error { return errors.New("unreachable") })
	pool := &redis.PoolStats{Hits: 12, Misses: 3, TotalConns: 4, IdleConns: 2}
	wantPool := map[string]interface{}{
		"hits": 12.0, "misses": 3.0, "timeouts": 0.0,
		"total_conns": 4.0, "idle_conns": 2.0, "stale_conns": 0.0,
	}

	tests := []struct {
		name       string
		db         Pinger
		cache      CacheChecker
		wantStatus int
		wantBody   map[string]interface{}
	}{
		{
			name:       "all up",
			db:         ok,
			cache:      stubCache{stats: pool},
			wantStatus: fiber.StatusOK,
			wantBody: map[string]interface{}{
				"status":     "ok",
				"services":   map[string]interface{}{"database": "connected", "redis": "connected"},
				"redis_pool": wantPool,
			},
		},
		{
			name:       "redis down is not fatal",
			db:         ok,
			cache:      stubCache{err: errors.New("unreachable"), stats: pool},
			wantStatus: fiber.StatusOK,
			wantBody: map[string]interface{}{
				"status":     "ok",
				"services":   map[string]interface{}{"database": "connected", "redis": "unavailable"},
				"redis_pool": wantPool,
			},
		},
		{
			name:       "database down",
			db:         down,
			wantStatus: fiber.StatusServiceUnavailable,
			wantBody: map[string]interface{}{
				"status":   "degraded",
				"services": map[string]interface{}{"database": "unavailable", "redis": "disabled"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			app.Get("/health", NewHealthHandler(tt.db, tt.cache, nil).HealthCheck)

			status, body := doRequest(t, app, "GET", "/health", "")
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantBody, body)
		})
	}
}

// Implement required mock methods
func (m *MockWalletService) GetBalance(ctx context.Context, customerKey string) (decimal.Decimal, error) {
	args := m.Called(ctx, customerKey)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockWalletService) ListHistory(ctx context.Context, userID string, page, limit int) ([]models.TransactionRecord, error) {
	args := m.Called(ctx, userID, page, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.TransactionRecord), args.Error(1)
}

func (m *MockWalletService) RefreshBalance(ctx context.Context, customerKey string, snapshot repositories.BalanceSnapshot) error {
	return m.Called(ctx, customerKey, snapshot).Error(0)
}

func (m *MockChargeService) CreateCharge(ctx context.Context, userID string, amount decimal.Decimal) (*charge.ChargeHandle, error) {
	args := m.Called(ctx, userID, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*charge.ChargeHandle), args.Error(1)
}

func (m *MockChargeService) AcknowledgeCharge(ctx context.Context, userID, token string, transactionID uint) error {
	return m.Called(ctx, userID, token, transactionID).Error(0)
}
