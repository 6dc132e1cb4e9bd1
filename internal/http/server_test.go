package http

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"finman/internal/auth"
	"finman/internal/services"
	"finman/internal/storage/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 6, 15, 14, 30, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

type testAPI struct {
	t   *testing.T
	srv *Server
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	store := memory.New()
	issuer, err := auth.NewIssuer("test-secret", time.Hour, fixedClock)
	require.NoError(t, err)

	categories := services.NewCategoryService(store)
	_, err = categories.SeedDefaults(context.Background())
	require.NoError(t, err)

	srv := NewServer(Config{Addr: ":0", RateLimitPerMinute: 1000, Now: fixedClock}, Services{
		Store:        store,
		Users:        services.NewUserService(store, auth.NewHasher(4), issuer, fixedClock),
		Categories:   categories,
		Transactions: services.NewTransactionService(store, nil, fixedClock),
		Goals:        services.NewGoalService(store, fixedClock),
		Reports:      services.NewReportService(store),
	})
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })
	return &testAPI{t: t, srv: srv}
}

func (a *testAPI) do(method, path, token string, body any) *httptest.ResponseRecorder {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(a.t, json.NewEncoder(&buf).Encode(b))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.srv.Handler.ServeHTTP(rec, req)
	return rec
}

// login registers username and returns a bearer token for it.
func (a *testAPI) login(username string) string {
	a.t.Helper()
	rec := a.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"username":    username,
		"password":    "secret1",
		"fullName":    "Test User",
		"phoneNumber": "+391234567890",
	})
	require.Equal(a.t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = a.do(http.MethodPost, "/api/auth/login", "", map[string]string{"username": username, "password": "secret1"})
	require.Equal(a.t, http.StatusOK, rec.Code, rec.Body.String())
	var resp LoginResponse
	require.NoError(a.t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(a.t, resp.Token)
	return resp.Token
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	dec := json.NewDecoder(bytes.NewReader(rec.Body.Bytes()))
	dec.UseNumber()
	var out map[string]any
	require.NoError(t, dec.Decode(&out), rec.Body.String())
	return out
}

func TestHealthAndReady(t *testing.T) {
	api := newTestAPI(t)

	for _, path := range []string{"/", "/healthz", "/readyz"} {
		rec := api.do(http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusOK, rec.Code, path)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"), path)
	}
}

func TestUnknownRouteRendersErrorBody(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(http.MethodGet, "/nope", "", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, json.Number("404"), body["status"])
	assert.Equal(t, "Not Found", body["error"])
	assert.Equal(t, "/nope", body["path"])
	assert.NotEmpty(t, body["timestamp"])
}

func TestRegisterAndLogin(t *testing.T) {
	api := newTestAPI(t)
	reg := map[string]string{
		"username":    "Alice@Example.com",
		"password":    "secret1",
		"fullName":    "Alice",
		"phoneNumber": "+391234567890",
	}

	rec := api.do(http.MethodPost, "/api/auth/register", "", reg)
	require.Equal(t, http.StatusCreated, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "User registered successfully", body["message"])
	userID, err := body["userId"].(json.Number).Int64()
	require.NoError(t, err)
	assert.Positive(t, userID)

	rec = api.do(http.MethodPost, "/api/auth/register", "", reg)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = api.do(http.MethodPost, "/api/auth/register", "", map[string]string{"username": "not-an-email", "password": "x"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(http.MethodPost, "/api/auth/login", "", map[string]string{"username": "alice@example.com", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("WWW-Authenticate"))

	rec = api.do(http.MethodPost, "/api/auth/login", "", map[string]string{"username": "ALICE@example.com", "password": "secret1"})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = api.do(http.MethodPost, "/api/auth/logout", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Logout successful", decode(t, rec)["message"])
}

func TestProtectedRoutesNeedToken(t *testing.T) {
	api := newTestAPI(t)

	for _, path := range []string{"/api/categories", "/api/transactions", "/api/goals", "/api/reports/yearly/2024"} {
		rec := api.do(http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}
	rec := api.do(http.MethodGet, "/api/categories", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCategoryEndpoints(t *testing.T) {
	api := newTestAPI(t)
	token := api.login("alice@example.com")

	rec := api.do(http.MethodGet, "/api/categories", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list CategoryListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Len(t, list.Categories, 7)

	rec = api.do(http.MethodPost, "/api/categories", token, map[string]string{"name": "Side Hustle", "type": "INCOME"})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"name":"Side Hustle","type":"INCOME","custom":true}`, rec.Body.String())

	rec = api.do(http.MethodPost, "/api/categories", token, map[string]string{"name": "Food", "type": "EXPENSE"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = api.do(http.MethodPost, "/api/categories", token, map[string]string{"name": "Gifts", "type": "SAVINGS"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(http.MethodDelete, "/api/categories/Food", token, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = api.do(http.MethodDelete, "/api/categories/Side%20Hustle", token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Category deleted successfully", decode(t, rec)["message"])

	rec = api.do(http.MethodDelete, "/api/categories/Side%20Hustle", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTransactionEndpoints(t *testing.T) {
	api := newTestAPI(t)
	alice := api.login("alice@example.com")
	bob := api.login("bob@example.com")

	rec := api.do(http.MethodPost, "/api/transactions", alice, `{"amount":12.345,"date":"2024-06-10","category":"Food","description":"Lunch"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode(t, rec)
	assert.Equal(t, json.Number("12.35"), created["amount"])
	assert.Equal(t, "EXPENSE", created["type"])
	assert.Equal(t, "2024-06-10", created["date"])
	id := created["id"].(json.Number).String()

	rec = api.do(http.MethodPost, "/api/transactions", alice, `{"amount":10,"date":"2024-06-16","category":"Food"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "future dates are rejected")

	rec = api.do(http.MethodPost, "/api/transactions", alice, `{"date":"2024-06-10","category":"Food"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "amount is required")

	rec = api.do(http.MethodPost, "/api/transactions", alice, `{"amount":10,"date":"2024-06-10","category":"Nope"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = api.do(http.MethodPost, "/api/transactions", alice, `{"amount":10,"date":"2024-06-10","category":" "}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "a blank category is a bad request")

	rec = api.do(http.MethodPost, "/api/transactions", alice, `{"amount":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(http.MethodPost, "/api/transactions", alice, `{"amount":5000,"date":"2024-05-01","category":"Salary"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = api.do(http.MethodGet, "/api/transactions?startDate=2024-06-01&endDate=2024-06-30", alice, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list TransactionListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list.Transactions, 1)
	assert.Equal(t, "Lunch", list.Transactions[0].Description)

	rec = api.do(http.MethodGet, "/api/transactions?startDate=06/01/2024", alice, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(http.MethodGet, "/api/transactions/"+id, bob, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code, "transactions are scoped to their owner")

	rec = api.do(http.MethodPut, "/api/transactions/"+id, alice, `{"amount":20,"description":"Dinner"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decode(t, rec)
	assert.Equal(t, json.Number("20.00"), updated["amount"])
	assert.Equal(t, "Dinner", updated["description"])

	rec = api.do(http.MethodGet, "/api/transactions/abc", alice, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(http.MethodDelete, "/api/transactions/"+id, bob, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = api.do(http.MethodDelete, "/api/transactions/"+id, alice, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Transaction deleted successfully", decode(t, rec)["message"])
}

func TestGoalEndpoints(t *testing.T) {
	api := newTestAPI(t)
	token := api.login("alice@example.com")

	rec := api.do(http.MethodPost, "/api/transactions", token, `{"amount":1500,"date":"2024-06-01","category":"Salary"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = api.do(http.MethodPost, "/api/transactions", token, `{"amount":500,"date":"2024-06-02","category":"Rent"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = api.do(http.MethodPost, "/api/goals", token, `{"goalName":"Emergency Fund","targetAmount":5000,"targetDate":"2025-01-01","startDate":"2024-01-01"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	goal := decode(t, rec)
	assert.Equal(t, "Emergency Fund", goal["goalName"])
	assert.Equal(t, json.Number("5000.00"), goal["targetAmount"])
	assert.Equal(t, json.Number("1000.00"), goal["currentProgress"])
	assert.Equal(t, json.Number("20.0"), goal["progressPercentage"])
	assert.Equal(t, json.Number("4000.00"), goal["remainingAmount"])
	assert.Equal(t, "2024-01-01", goal["startDate"])
	id := goal["id"].(json.Number).String()

	rec = api.do(http.MethodPost, "/api/goals", token, `{"goalName":"Past","targetAmount":100,"targetDate":"2024-06-15"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(http.MethodPut, "/api/goals/"+id, token, `{"targetAmount":1000}`)
	require.Equal(t, http.StatusOK, rec.Code)
	updated := decode(t, rec)
	assert.Equal(t, json.Number("100.0"), updated["progressPercentage"])
	assert.Equal(t, json.Number("0"), updated["remainingAmount"])

	rec = api.do(http.MethodGet, "/api/goals", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list GoalListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Len(t, list.Goals, 1)

	rec = api.do(http.MethodGet, "/api/goals/"+id, token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = api.do(http.MethodDelete, "/api/goals/"+id, token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Goal deleted successfully", decode(t, rec)["message"])

	rec = api.do(http.MethodGet, "/api/goals/"+id, token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestReportEndpoints(t *testing.T) {
	api := newTestAPI(t)
	token := api.login("alice@example.com")

	for _, body := range []string{
		`{"amount":5000,"date":"2024-01-05","category":"Salary"}`,
		`{"amount":1500,"date":"2024-01-06","category":"Rent"}`,
		`{"amount":30.5,"date":"2024-01-07","category":"Food"}`,
		`{"amount":200,"date":"2024-02-07","category":"Food"}`,
	} {
		rec := api.do(http.MethodPost, "/api/transactions", token, body)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}

	rec := api.do(http.MethodGet, "/api/reports/monthly/2024/1", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{
		"month": 1,
		"year": 2024,
		"totalIncome": {"Salary": 5000.00},
		"totalExpenses": {"Rent": 1500.00, "Food": 30.50},
		"netSavings": 3469.50
	}`, rec.Body.String())

	rec = api.do(http.MethodGet, "/api/reports/monthly/2024/3", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"month":3,"year":2024,"totalIncome":{},"totalExpenses":{},"netSavings":0}`, rec.Body.String())

	rec = api.do(http.MethodGet, "/api/reports/monthly/2024/13", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(http.MethodGet, "/api/reports/yearly/2024", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, json.Number("3269.50"), body["netSavings"])
	assert.Equal(t, json.Number("230.50"), body["totalExpenses"].(map[string]any)["Food"])
}

func TestRateLimitAppliesToWrites(t *testing.T) {
	var logs bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&logs, nil)))
	defer slog.SetDefault(prev)

	store := memory.New()
	issuer, err := auth.NewIssuer("test-secret", time.Hour, fixedClock)
	require.NoError(t, err)
	srv := NewServer(Config{RateLimitPerMinute: 1, Now: fixedClock}, Services{
		Store: store,
		Users: services.NewUserService(store, auth.NewHasher(4), issuer, fixedClock),
	})
	defer srv.Shutdown(context.Background())

	post := func() int {
		rec := httptest.NewRecorder()
		srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil))
		return rec.Code
	}
	assert.Equal(t, http.StatusOK, post())
	assert.Equal(t, http.StatusTooManyRequests, post())
	assert.Contains(t, logs.String(), "component=rate_limit")

	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
