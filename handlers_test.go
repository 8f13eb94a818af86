package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// capturePublisher records notifications instead of sending them.
type capturePublisher struct {
	mu            sync.Mutex
	notifications []Notification
}

func (c *capturePublisher) Publish(ctx context.Context, n Notification) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.notifications = append(c.notifications, n)
	return nil
}

func (c *capturePublisher) all() []Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Notification(nil), c.notifications...)
}

type testEnv struct {
	t         *testing.T
	mux       *chi.Mux
	store     *MemoryStore
	publisher *capturePublisher
}

func newTestEnv(t *testing.T) *testEnv {
	store := NewMemoryStore()
	publisher := &capturePublisher{}
	h := NewHandler(store, publisher, testSecret)
	mux := chi.NewRouter()
	RegisterRouters(mux, h)
	return &testEnv{t: t, mux: mux, store: store, publisher: publisher}
}

func (e *testEnv) do(method, path, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(e.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	e.mux.ServeHTTP(rr, req)
	return rr
}

func itoa(i int) string { return strconv.Itoa(i) }

func decodeBody[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	var v T
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&v))
	return v
}

// register creates a user through the API and returns their token.
func (e *testEnv) register(name, email, password string) string {
	rr := e.do(http.MethodPost, "/api/register", "", RegisterInput{Name: name, Email: email, Password: password})
	require.Equal(e.t, http.StatusOK, rr.Code, rr.Body.String())
	body := decodeBody[map[string]string](e.t, rr)
	require.NotEmpty(e.t, body["token"])
	return body["token"]
}

func TestRegisterLoginScenario(t *testing.T) {
	env := newTestEnv(t)

	// Register Ana.
	rr := env.do(http.MethodPost, "/api/register", "", RegisterInput{Name: "Ana", Email: "ana@x.com", Password: "pw123"})
	require.Equal(t, http.StatusOK, rr.Code)
	registered := decodeBody[map[string]string](t, rr)
	assert.NotEmpty(t, registered["token"])

	// Wrong password.
	rr = env.do(http.MethodPost, "/api/login", "", LoginInput{Email: "ana@x.com", Password: "wrong"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "Invalid password", decodeBody[map[string]string](t, rr)["error"])

	// Unknown user.
	rr = env.do(http.MethodPost, "/api/login", "", LoginInput{Email: "ghost@x.com", Password: "pw123"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "User not found", decodeBody[map[string]string](t, rr)["error"])

	// Correct credentials return a token and the display name.
	rr = env.do(http.MethodPost, "/api/login", "", LoginInput{Email: "ana@x.com", Password: "pw123"})
	require.Equal(t, http.StatusOK, rr.Code)
	loggedIn := decodeBody[map[string]string](t, rr)
	assert.NotEmpty(t, loggedIn["token"])
	assert.Equal(t, "Ana", loggedIn["name"])

	// The token's embedded identity matches the registered user.
	claims, err := ValidateToken(testSecret, loggedIn["token"])
	require.NoError(t, err)
	user, err := env.store.GetUserByEmail(context.Background(), "ana@x.com")
	require.NoError(t, err)
	assert.Equal(t, user.Id, claims.UserId)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	env := newTestEnv(t)
	env.register("Ana", "ana@x.com", "pw123")

	rr := env.do(http.MethodPost, "/api/register", "", RegisterInput{Name: "Impostor", Email: "ana@x.com", Password: "other"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "Email already registered", decodeBody[map[string]string](t, rr)["error"])
}

func TestRegisterMissingFields(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(http.MethodPost, "/api/register", "", RegisterInput{Email: "ana@x.com"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestProtectedEndpointsRequireToken(t *testing.T) {
	env := newTestEnv(t)

	paths := []struct{ method, path string }{
		{http.MethodGet, "/api/expenses"},
		{http.MethodPost, "/api/expenses"},
		{http.MethodPut, "/api/expenses/1"},
		{http.MethodDelete, "/api/expenses/1"},
		{http.MethodGet, "/api/loans"},
		{http.MethodPost, "/api/loans"},
		{http.MethodPut, "/api/loans/1"},
		{http.MethodDelete, "/api/loans/1"},
		{http.MethodGet, "/api/users/limit"},
		{http.MethodPut, "/api/users/limit"},
	}
	for _, p := range paths {
		rr := env.do(p.method, p.path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, rr.Code, "%s %s without token", p.method, p.path)
		assert.Equal(t, "Missing token", decodeBody[map[string]string](t, rr)["error"])
	}
}

func TestProtectedEndpointRejectsBadToken(t *testing.T) {
	env := newTestEnv(t)
	token := env.register("Ana", "ana@x.com", "pw123")

	rr := env.do(http.MethodGet, "/api/expenses", token[:len(token)-2]+"xx", nil)
	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.Equal(t, "Invalid token", decodeBody[map[string]string](t, rr)["error"])
}

func TestExpenseCRUD(t *testing.T) {
	env := newTestEnv(t)
	token := env.register("Ana", "ana@x.com", "pw123")

	// Create.
	rr := env.do(http.MethodPost, "/api/expenses", token, ExpenseInput{
		Category:    "food",
		Amount:      decimal.NewFromFloat(12.50),
		Description: "lunch",
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	created := decodeBody[Expense](t, rr)
	assert.Equal(t, ExpenseType, created.Type)
	assert.Equal(t, "food", created.Category)
	assert.True(t, created.Amount.Equal(decimal.NewFromFloat(12.50)))
	assert.NotZero(t, created.Id)

	// List includes it.
	rr = env.do(http.MethodGet, "/api/expenses", token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	listed := decodeBody[[]Expense](t, rr)
	require.Len(t, listed, 1)
	assert.Equal(t, created.Id, listed[0].Id)

	// Update.
	rr = env.do(http.MethodPut, "/api/expenses/"+itoa(created.Id), token, ExpenseInput{
		Category:    "groceries",
		Amount:      decimal.NewFromInt(20),
		Description: "weekly shop",
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	updated := decodeBody[Expense](t, rr)
	assert.Equal(t, "groceries", updated.Category)
	assert.True(t, updated.Amount.Equal(decimal.NewFromInt(20)))

	// Delete.
	rr = env.do(http.MethodDelete, "/api/expenses/"+itoa(created.Id), token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Expense deleted", decodeBody[map[string]string](t, rr)["message"])

	// Repeated delete is a 404, never a crash.
	rr = env.do(http.MethodDelete, "/api/expenses/"+itoa(created.Id), token, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestExpenseValidation(t *testing.T) {
	env := newTestEnv(t)
	token := env.register("Ana", "ana@x.com", "pw123")

	rr := env.do(http.MethodPost, "/api/expenses", token, ExpenseInput{
		Category:    "food",
		Amount:      decimal.NewFromInt(-5),
		Description: "bad",
	})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, decodeBody[map[string]string](t, rr)["error"], "amount must be a positive number")

	// Non-numeric amount fails at decode.
	rr = env.do(http.MethodPost, "/api/expenses", token, map[string]any{
		"category": "food", "amount": "lots", "description": "bad",
	})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestExpenseCrossUserIsolation(t *testing.T) {
	env := newTestEnv(t)
	anaToken := env.register("Ana", "ana@x.com", "pw123")
	bobToken := env.register("Bob", "bob@x.com", "pw456")

	rr := env.do(http.MethodPost, "/api/expenses", anaToken, ExpenseInput{
		Category:    "food",
		Amount:      decimal.NewFromInt(10),
		Description: "ana's lunch",
	})
	require.Equal(t, http.StatusCreated, rr.Code)
	anaExpense := decodeBody[Expense](t, rr)

	// Bob's list excludes Ana's row.
	rr = env.do(http.MethodGet, "/api/expenses", bobToken, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Empty(t, decodeBody[[]Expense](t, rr))

	// Bob cannot update or delete it; both read as not-found.
	rr = env.do(http.MethodPut, "/api/expenses/"+itoa(anaExpense.Id), bobToken, ExpenseInput{
		Category:    "theft",
		Amount:      decimal.NewFromInt(1),
		Description: "mine now",
	})
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = env.do(http.MethodDelete, "/api/expenses/"+itoa(anaExpense.Id), bobToken, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	// Ana still sees her row untouched.
	rr = env.do(http.MethodGet, "/api/expenses", anaToken, nil)
	listed := decodeBody[[]Expense](t, rr)
	require.Len(t, listed, 1)
	assert.Equal(t, "ana's lunch", listed[0].Description)
}

func TestWeeklyLimitEndpoints(t *testing.T) {
	env := newTestEnv(t)
	token := env.register("Ana", "ana@x.com", "pw123")

	rr := env.do(http.MethodGet, "/api/users/limit", token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	limits := decodeBody[map[string]decimal.Decimal](t, rr)
	assert.True(t, limits["weekly_limit"].IsZero())

	rr = env.do(http.MethodPut, "/api/users/limit", token, WeeklyLimitInput{WeeklyLimit: decimal.NewFromInt(100)})
	require.Equal(t, http.StatusOK, rr.Code)

	rr = env.do(http.MethodGet, "/api/users/limit", token, nil)
	limits = decodeBody[map[string]decimal.Decimal](t, rr)
	assert.True(t, limits["weekly_limit"].Equal(decimal.NewFromInt(100)))

	rr = env.do(http.MethodPut, "/api/users/limit", token, WeeklyLimitInput{WeeklyLimit: decimal.NewFromInt(-1)})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestWeeklyLimitNotification(t *testing.T) {
	env := newTestEnv(t)
	token := env.register("Ana", "ana@x.com", "pw123")

	rr := env.do(http.MethodPut, "/api/users/limit", token, WeeklyLimitInput{WeeklyLimit: decimal.NewFromInt(50)})
	require.Equal(t, http.StatusOK, rr.Code)

	// Under the limit: no notification.
	rr = env.do(http.MethodPost, "/api/expenses", token, ExpenseInput{
		Category: "food", Amount: decimal.NewFromInt(30), Description: "groceries",
	})
	require.Equal(t, http.StatusCreated, rr.Code)
	assert.Empty(t, env.publisher.all())

	// This one crosses it.
	rr = env.do(http.MethodPost, "/api/expenses", token, ExpenseInput{
		Category: "food", Amount: decimal.NewFromInt(30), Description: "more groceries",
	})
	require.Equal(t, http.StatusCreated, rr.Code)
	notifications := env.publisher.all()
	require.Len(t, notifications, 1)
	assert.True(t, notifications[0].CurrentSpent.Equal(decimal.NewFromInt(60)))
	assert.True(t, notifications[0].Limit.Equal(decimal.NewFromInt(50)))
}

func TestHealthEndpoint(t *testing.T) {
	env := newTestEnv(t)
	rr := env.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "ok", decodeBody[map[string]string](t, rr)["status"])
}
