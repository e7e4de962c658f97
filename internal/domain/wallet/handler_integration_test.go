package wallet_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/bridge-pay/bridge-api/internal/domain/user"
	"github.com/bridge-pay/bridge-api/internal/domain/wallet"
	"github.com/bridge-pay/bridge-api/internal/middleware"
	"github.com/bridge-pay/bridge-api/internal/pkg/jwt"
)

type walletAPIResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func TestWalletEndpointsIntegration(t *testing.T) {
	db := setupTestDB(t)
	defer cleanupTestDB(db)

	sender := createTestUser(t, db, "Quentin")
	recipient := createTestUser(t, db, "Rupert")

	repo := wallet.NewRepository(db)
	svc := wallet.NewService(repo, user.NewRepository(db), nil, wallet.DefaultPolicy())
	h := wallet.NewHandler(svc)

	jwtSvc := jwt.NewService("wallet-integration-secret", time.Hour)
	token, err := jwtSvc.GenerateAccessToken(sender.ID, sender.Phone)
	if err != nil {
		t.Fatalf("generate token failed: %v", err)
	}

	// nil redis client makes the limiter a no-op
	rateLimit := middleware.RateLimit(nil, "test", 1000, time.Minute)

	r := chi.NewRouter()
	r.Mount("/api/v1/wallet", h.Routes(middleware.Auth(jwtSvc), rateLimit))

	t.Run("GET /balance initial", func(t *testing.T) {
		resp := performWalletRequest(t, r, token, http.MethodGet, "/api/v1/wallet/balance", nil)
		if resp.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d; body=%s", resp.Code, resp.Body.String())
		}
		var data struct {
			Balance  decimal.Decimal `json:"balance"`
			Currency string          `json:"currency"`
		}
		decodeWalletData(t, resp, &data)
		if !data.Balance.IsZero() || data.Currency != "KES" {
			t.Fatalf("expected balance 0 KES, got %s %s", data.Balance, data.Currency)
		}
	})

	t.Run("POST /deposit", func(t *testing.T) {
		resp := performWalletRequest(t, r, token, http.MethodPost, "/api/v1/wallet/deposit", map[string]interface{}{
			"amount":    1000,
			"reference": "MPESA-INT-001",
		})
		if resp.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d; body=%s", resp.Code, resp.Body.String())
		}
	})

	t.Run("POST /transfer", func(t *testing.T) {
		resp := performWalletRequest(t, r, token, http.MethodPost, "/api/v1/wallet/transfer", map[string]interface{}{
			"recipient_phone": recipient.Phone,
			"amount":          250,
			"note":            "lunch",
		})
		if resp.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d; body=%s", resp.Code, resp.Body.String())
		}
		var data struct {
			Reference string          `json:"reference"`
			Amount    decimal.Decimal `json:"amount"`
			Type      string          `json:"type"`
			Status    string          `json:"status"`
		}
		decodeWalletData(t, resp, &data)
		if data.Type != "TRANSFER" || data.Status != "SUCCESS" {
			t.Fatalf("expected TRANSFER/SUCCESS, got %s/%s", data.Type, data.Status)
		}
		if len(data.Reference) < 4 || data.Reference[:4] != "TRF-" {
			t.Fatalf("expected TRF- reference, got %q", data.Reference)
		}
	})

	t.Run("POST /transfer to self", func(t *testing.T) {
		resp := performWalletRequest(t, r, token, http.MethodPost, "/api/v1/wallet/transfer", map[string]interface{}{
			"recipient_phone": sender.Phone,
			"amount":          10,
		})
		if resp.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", resp.Code)
		}
		body := decodeWalletResponse(t, resp)
		if body.Error == nil || body.Error.Code != "SELF_TRANSFER_FORBIDDEN" {
			t.Fatalf("expected SELF_TRANSFER_FORBIDDEN, got %+v", body.Error)
		}
	})

	t.Run("POST /transfer insufficient funds", func(t *testing.T) {
		resp := performWalletRequest(t, r, token, http.MethodPost, "/api/v1/wallet/transfer", map[string]interface{}{
			"recipient_phone": recipient.Phone,
			"amount":          100000,
		})
		if resp.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", resp.Code)
		}
		body := decodeWalletResponse(t, resp)
		if body.Error == nil || body.Error.Code != "INSUFFICIENT_FUNDS" {
			t.Fatalf("expected INSUFFICIENT_FUNDS, got %+v", body.Error)
		}
	})

	t.Run("POST /transfer unknown recipient", func(t *testing.T) {
		resp := performWalletRequest(t, r, token, http.MethodPost, "/api/v1/wallet/transfer", map[string]interface{}{
			"recipient_phone": "+254700000001",
			"amount":          10,
		})
		if resp.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", resp.Code)
		}
	})

	t.Run("POST /withdraw below minimum", func(t *testing.T) {
		resp := performWalletRequest(t, r, token, http.MethodPost, "/api/v1/wallet/withdraw", map[string]interface{}{
			"amount": 5,
			"phone":  sender.Phone,
		})
		if resp.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", resp.Code)
		}
	})

	t.Run("POST /withdraw", func(t *testing.T) {
		resp := performWalletRequest(t, r, token, http.MethodPost, "/api/v1/wallet/withdraw", map[string]interface{}{
			"amount": 200,
			"phone":  sender.Phone,
		})
		if resp.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d; body=%s", resp.Code, resp.Body.String())
		}
		var data struct {
			Fee    decimal.Decimal `json:"fee"`
			Status string          `json:"status"`
		}
		decodeWalletData(t, resp, &data)
		if !data.Fee.Equal(decimal.NewFromInt(2)) {
			t.Fatalf("expected fee 2, got %s", data.Fee)
		}
		if data.Status != "PENDING" {
			t.Fatalf("expected PENDING withdrawal, got %s", data.Status)
		}
	})

	t.Run("GET /transactions", func(t *testing.T) {
		resp := performWalletRequest(t, r, token, http.MethodGet, "/api/v1/wallet/transactions?limit=10", nil)
		if resp.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", resp.Code)
		}
		var items []struct {
			Reference string `json:"reference"`
			Type      string `json:"type"`
		}
		decodeWalletData(t, resp, &items)
		// deposit + transfer + withdrawal
		if len(items) != 3 {
			t.Fatalf("expected 3 history entries, got %d", len(items))
		}
	})

	t.Run("GET /balance final", func(t *testing.T) {
		resp := performWalletRequest(t, r, token, http.MethodGet, "/api/v1/wallet/balance", nil)
		var data struct {
			Balance decimal.Decimal `json:"balance"`
		}
		decodeWalletData(t, resp, &data)
		// 1000 - 250 - 200 - 2
		if !data.Balance.Equal(decimal.NewFromInt(548)) {
			t.Fatalf("expected final balance 548, got %s", data.Balance)
		}
	})

	t.Run("validation error", func(t *testing.T) {
		resp := performWalletRequest(t, r, token, http.MethodPost, "/api/v1/wallet/transfer", map[string]interface{}{
			"recipient_phone": "not-a-phone",
			"amount":          10,
		})
		if resp.Code != http.StatusUnprocessableEntity {
			t.Fatalf("expected 422, got %d", resp.Code)
		}
	})

	t.Run("JWT required", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/wallet/balance", nil)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req.WithContext(context.Background()))
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401 without jwt, got %d", rec.Code)
		}
	})
}

func performWalletRequest(t *testing.T, handler http.Handler, token, method, path string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var body bytes.Buffer
	if payload != nil {
		if err := json.NewEncoder(&body).Encode(payload); err != nil {
			t.Fatalf("encode payload failed: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Authorization", "Bearer "+token)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decodeWalletResponse(t *testing.T, rec *httptest.ResponseRecorder) walletAPIResponse {
	t.Helper()
	var out walletAPIResponse
	if err := json.NewDecoder(rec.Body).Decode(&out); err != nil {
		t.Fatalf("decode response failed: %v; body=%s", err, rec.Body.String())
	}
	return out
}

func decodeWalletData(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	body := decodeWalletResponse(t, rec)
	if err := json.Unmarshal(body.Data, v); err != nil {
		t.Fatalf("decode data failed: %v; body=%s", err, rec.Body.String())
	}
}
