package handlers

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crystalrealm/ecobank/internal/services"
)

func setupServer(t *testing.T) (*echo.Echo, *services.TestBank) {
	t.Helper()

	tb := services.NewTestBank(t, nil)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	e := echo.New()
	e.Validator = NewRequestValidator()
	api := e.Group("/api/v1")
	NewBankHandler(tb.Bank, logger).Register(api)
	NewAdminHandler(tb.Bank, logger).Register(e.Group("/api/v1/admin"))
	return e, tb
}

func doJSON(e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestListPlansEndpoint(t *testing.T) {
	e, _ := setupServer(t)

	rec := doJSON(e, http.MethodGet, "/api/v1/plans", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data []struct {
			Name     string `json:"name"`
			TermDays int    `json:"term_days"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 3)
	assert.Equal(t, "short", resp.Data[0].Name)
	assert.Equal(t, 7, resp.Data[0].TermDays)
}

func TestOpenDepositEndpoint(t *testing.T) {
	e, tb := setupServer(t)
	tb.Wallet.Set("steve", decimal.NewFromInt(5000))

	rec := doJSON(e, http.MethodPost, "/api/v1/accounts/steve/deposits",
		`{"plan":"short","amount":1000}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	balance, _ := tb.Wallet.Balance("steve")
	assert.True(t, balance.Equal(decimal.NewFromInt(4000)))
}

func TestOpenDepositEndpointRejections(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantCode   string
	}{
		{
			name: "unknown plan",
			body: `{"plan":"platinum","amount":1000}`,
			wantStatus: http.StatusNotFound, wantCode: "plan_not_found",
		},
		{
			name: "insufficient funds",
			body: `{"plan":"short","amount":9000}`,
			wantStatus: http.StatusPaymentRequired, wantCode: "insufficient_funds",
		},
		{
			name: "missing fields",
			body: `{}`,
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, tb := setupServer(t)
			tb.Wallet.Set("steve", decimal.NewFromInt(5000))

			rec := doJSON(e, http.MethodPost, "/api/v1/accounts/steve/deposits", tt.body)
			require.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())

			if tt.wantCode != "" {
				var resp ErrorResponse
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
				assert.Equal(t, tt.wantCode, string(resp.Code))
			}
		})
	}
}

func TestLoanEndpoints(t *testing.T) {
	e, tb := setupServer(t)
	tb.Wallet.Set("steve", decimal.NewFromInt(1000))

	rec := doJSON(e, http.MethodPost, "/api/v1/accounts/steve/loans",
		`{"amount":1000}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Data struct {
			EntryID string `json:"entry_id"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Data.EntryID)

	rec = doJSON(e, http.MethodPost,
		"/api/v1/accounts/steve/loans/"+resp.Data.EntryID+"/repay",
		`{"amount":1000}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doJSON(e, http.MethodPost,
		"/api/v1/accounts/steve/loans/nope/repay", `{"amount":1000}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAdminFreezeEndpoint(t *testing.T) {
	e, tb := setupServer(t)
	tb.Wallet.Set("steve", decimal.NewFromInt(5000))

	rec := doJSON(e, http.MethodPost, "/api/v1/admin/accounts/steve/freeze",
		`{"reason":"dupe exploit"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(e, http.MethodPost, "/api/v1/accounts/steve/deposits",
		`{"plan":"short","amount":1000}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = doJSON(e, http.MethodPost, "/api/v1/admin/accounts/steve/unfreeze", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(e, http.MethodPost, "/api/v1/accounts/steve/deposits",
		`{"plan":"short","amount":1000}`)
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestGetCreditScoreEndpoint(t *testing.T) {
	e, _ := setupServer(t)

	rec := doJSON(e, http.MethodGet, "/api/v1/accounts/steve/credit", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data struct {
			Rating string `json:"rating"`
			Score  struct {
				Score int `json:"score"`
			} `json:"score"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 500, resp.Data.Score.Score)
	assert.Equal(t, "Fair", resp.Data.Rating)
}
