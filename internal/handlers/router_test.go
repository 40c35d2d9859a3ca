package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"cashvelo/internal/database/dbtest"
	"cashvelo/internal/models"
	"cashvelo/internal/repository"
	"cashvelo/internal/security"
	"cashvelo/internal/service"
)

type capturingTransport struct {
	mu   sync.Mutex
	sent []service.Message
}

func (t *capturingTransport) Send(ctx context.Context, msg service.Message) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sent = append(t.sent, msg)
	return "test-message", nil
}

func (t *capturingTransport) count() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.sent)
}

// lastResetToken pulls the token out of the most recent reset link
func (t *capturingTransport) lastResetToken() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.sent) == 0 {
		return ""
	}
	text := t.sent[len(t.sent)-1].Text
	_, after, ok := strings.Cut(text, "/reset-password/")
	if !ok {
		return ""
	}
	return strings.Fields(after)[0]
}

type APISuite struct {
	suite.Suite
	router    http.Handler
	transport *capturingTransport
	limiter   *security.RateLimiter
}

const suiteTokenSecret = "router-test-secret"

func TestAPISuite(t *testing.T) {
	suite.Run(t, new(APISuite))
}

func (s *APISuite) SetupTest() {
	db := dbtest.Open(s.T())

	userRepo := repository.NewUserRepository(db)
	goalRepo := repository.NewGoalRepository(db)
	expenseRepo := repository.NewExpenseRepository(db)

	tokens := security.NewTokenService(suiteTokenSecret, time.Hour, time.Hour)
	s.transport = &capturingTransport{}
	mailer := service.NewEmailService(s.transport, "noreply@cashvelo.test", "Cashvelo", "http://app.test", time.Hour, false)
	authService := service.NewAuthService(userRepo, tokens, mailer)

	s.limiter = security.NewRateLimiter(100, time.Minute)
	s.T().Cleanup(s.limiter.Stop)

	s.router = SetupRoutes(Handlers{
		Auth:          NewAuthHandler(authService),
		Budgets:       NewResourceHandler("Budget", repository.NewBudgetRepository(db)),
		Expenses:      NewResourceHandler("Expense", expenseRepo),
		CreditCards:   NewResourceHandler("Credit card", repository.NewCreditCardRepository(db)),
		Income:        NewResourceHandler("Income", repository.NewIncomeRepository(db)),
		Goals:         NewGoalHandler(goalRepo, service.NewGoalService(goalRepo)),
		Statements:    NewStatementHandler(authService, service.NewStatementService(expenseRepo)),
		Middleware:    NewMiddleware(tokens),
		AuthLimiter:   s.limiter,
		AllowedOrigin: "http://app.test",
	})
}

func (s *APISuite) do(method, path, token string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		s.Require().NoError(err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func (s *APISuite) signup(username, email string) string {
	rec := s.do(http.MethodPost, "/api/signup", "", map[string]string{
		"username": username,
		"email":    email,
		"password": "secret123",
	})
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())
	return decodeBody[map[string]any](s.T(), rec)["token"].(string)
}

func (s *APISuite) TestHealth() {
	rec := s.do(http.MethodGet, "/api/health", "", nil)
	s.Equal(http.StatusOK, rec.Code)

	body := decodeBody[map[string]string](s.T(), rec)
	s.Equal("ok", body["status"])
	s.Equal("Server is running", body["message"])
	s.NotEmpty(body["timestamp"])
}

func (s *APISuite) TestSignupAndLogin() {
	rec := s.do(http.MethodPost, "/api/signup", "", map[string]string{
		"username": "alice",
		"email":    "Alice@Example.com",
		"password": "secret123",
	})
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())

	body := decodeBody[map[string]any](s.T(), rec)
	s.Equal("User created successfully", body["message"])
	s.NotEmpty(body["token"])
	user := body["user"].(map[string]any)
	s.Equal("alice", user["username"])
	s.Equal("alice", user["fullName"])
	s.Equal("alice@example.com", user["email"])
	s.NotContains(rec.Body.String(), "password")

	dup := s.do(http.MethodPost, "/api/signup", "", map[string]string{
		"username": "alice2",
		"email":    "alice@example.com",
		"password": "secret123",
	})
	s.Equal(http.StatusConflict, dup.Code)
	s.Equal(MsgAccountConflict, decodeBody[map[string]string](s.T(), dup)["error"])

	taken := s.do(http.MethodPost, "/api/signup", "", map[string]string{
		"username": "alice",
		"email":    "other@example.com",
		"password": "secret123",
	})
	s.Equal(http.StatusConflict, taken.Code)
	s.Equal(MsgUsernameTaken, decodeBody[map[string]string](s.T(), taken)["error"])

	wrong := s.do(http.MethodPost, "/api/login", "", map[string]string{"email": "alice@example.com", "password": "nope123"})
	s.Equal(http.StatusUnauthorized, wrong.Code)
	s.Equal(MsgInvalidCredentials, decodeBody[map[string]string](s.T(), wrong)["error"])

	ok := s.do(http.MethodPost, "/api/login", "", map[string]string{"email": "ALICE@example.com", "password": "secret123"})
	s.Require().Equal(http.StatusOK, ok.Code)
	s.Equal("Login successful", decodeBody[map[string]any](s.T(), ok)["message"])
}

func (s *APISuite) TestSignupValidation() {
	cases := []struct {
		name string
		body map[string]string
		want string
	}{
		{"missing fields", map[string]string{"username": "bob"}, MsgMissingSignup},
		{"short password", map[string]string{"username": "bob", "email": "bob@example.com", "password": "abc"}, "Password must be at least 6 characters"},
		{"bad email", map[string]string{"username": "bob", "email": "bob-at-example", "password": "secret123"}, "Please provide a valid email"},
		{"short username", map[string]string{"username": "bo", "email": "bob@example.com", "password": "secret123"}, "Username must be at least 3 characters"},
	}
	for _, tc := range cases {
		s.Run(tc.name, func() {
			rec := s.do(http.MethodPost, "/api/signup", "", tc.body)
			s.Equal(http.StatusBadRequest, rec.Code)
			s.Equal(tc.want, decodeBody[map[string]string](s.T(), rec)["error"])
		})
	}
}

func (s *APISuite) TestAuthMiddleware() {
	rec := s.do(http.MethodGet, "/api/user", "", nil)
	s.Equal(http.StatusUnauthorized, rec.Code)
	s.Equal(MsgAccessTokenRequired, decodeBody[map[string]string](s.T(), rec)["error"])

	rec = s.do(http.MethodGet, "/api/budgets", "not-a-jwt", nil)
	s.Equal(http.StatusForbidden, rec.Code)
	s.Equal(MsgInvalidToken, decodeBody[map[string]string](s.T(), rec)["error"])

	token := s.signup("carol", "carol@example.com")
	rec = s.do(http.MethodGet, "/api/user", token, nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	user := decodeBody[map[string]map[string]any](s.T(), rec)["user"]
	s.Equal("carol", user["username"])
	s.NotEmpty(user["createdAt"])

	rec = s.do(http.MethodPost, "/api/logout", token, nil)
	s.Equal(http.StatusOK, rec.Code)
	s.Equal(MsgLoggedOut, decodeBody[map[string]string](s.T(), rec)["message"])
}

func (s *APISuite) TestBudgetCRUDIsOwnerScoped() {
	owner := s.signup("dave", "dave@example.com")
	other := s.signup("erin", "erin@example.com")

	rec := s.do(http.MethodPost, "/api/budgets", owner, map[string]any{"type": "recurring"})
	s.Equal(http.StatusBadRequest, rec.Code)
	s.Equal("Name and type are required", decodeBody[map[string]string](s.T(), rec)["error"])

	rec = s.do(http.MethodPost, "/api/budgets", owner, map[string]any{
		"name":   "Rent",
		"limit":  1200,
		"type":   "recurring",
		"userId": "someone-else",
	})
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())
	created := decodeBody[map[string]any](s.T(), rec)
	id := created["id"].(string)
	s.NotEqual("someone-else", created["userId"])
	s.Equal(float64(1200), created["limit"])

	rec = s.do(http.MethodGet, "/api/budgets", owner, nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	s.Len(decodeBody[[]map[string]any](s.T(), rec), 1)

	rec = s.do(http.MethodGet, "/api/budgets", other, nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	s.Equal("[]", strings.TrimSpace(rec.Body.String()))

	rec = s.do(http.MethodGet, "/api/budgets/"+id, other, nil)
	s.Equal(http.StatusNotFound, rec.Code)
	s.Equal("Budget not found", decodeBody[map[string]string](s.T(), rec)["error"])

	rec = s.do(http.MethodPut, "/api/budgets/"+id, owner, map[string]any{"limit": 1500})
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	updated := decodeBody[map[string]any](s.T(), rec)
	s.Equal("Rent", updated["name"])
	s.Equal(float64(1500), updated["limit"])

	rec = s.do(http.MethodPut, "/api/budgets/"+id, owner, map[string]any{"type": "weekly"})
	s.Equal(http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodDelete, "/api/budgets/"+id, other, nil)
	s.Equal(http.StatusNotFound, rec.Code)

	rec = s.do(http.MethodDelete, "/api/budgets/"+id, owner, nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	s.Equal("Budget deleted successfully", decodeBody[map[string]string](s.T(), rec)["message"])

	rec = s.do(http.MethodGet, "/api/budgets/"+id, owner, nil)
	s.Equal(http.StatusNotFound, rec.Code)
}

func (s *APISuite) TestIncomeTypeFilter() {
	token := s.signup("frank", "frank@example.com")

	for _, body := range []map[string]any{
		{"type": "salary", "amount": 3000, "date": "2026-01-01"},
		{"type": "freelance", "amount": 400, "date": "2026-01-05"},
	} {
		rec := s.do(http.MethodPost, "/api/income", token, body)
		s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())
	}

	rec := s.do(http.MethodGet, "/api/income?type=salary", token, nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	items := decodeBody[[]map[string]any](s.T(), rec)
	s.Require().Len(items, 1)
	s.Equal("salary", items[0]["type"])

	rec = s.do(http.MethodGet, "/api/income", token, nil)
	items = decodeBody[[]map[string]any](s.T(), rec)
	s.Require().Len(items, 2)
	s.Equal("freelance", items[0]["type"], "newest entry first")
}

func (s *APISuite) TestGoalContributeAndWithdraw() {
	token := s.signup("grace", "grace@example.com")

	rec := s.do(http.MethodPost, "/api/goals", token, map[string]any{
		"name":          "Trip",
		"targetAmount":  1000,
		"targetDate":    time.Now().AddDate(0, 2, 0).Format("2006-01-02"),
		"category":      "vacation",
		"currentAmount": 999,
		"completed":     true,
	})
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())
	goal := decodeBody[map[string]any](s.T(), rec)
	id := goal["id"].(string)
	s.Equal(float64(0), goal["currentAmount"])
	s.Equal(false, goal["completed"])
	s.Equal("🎯", goal["icon"])

	rec = s.do(http.MethodPost, "/api/goals/"+id+"/contribute", token, map[string]any{"amount": 800})
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	goal = decodeBody[map[string]any](s.T(), rec)
	s.Equal(float64(80), goal["progress"])
	s.Equal(float64(200), goal["remaining"])

	rec = s.do(http.MethodPost, "/api/goals/"+id+"/contribute", token, map[string]any{"amount": 200})
	s.Require().Equal(http.StatusOK, rec.Code)
	goal = decodeBody[map[string]any](s.T(), rec)
	s.Equal(float64(1000), goal["currentAmount"])
	s.Equal(true, goal["completed"])
	s.NotNil(goal["completedAt"])

	rec = s.do(http.MethodPut, "/api/goals/"+id, token, map[string]any{"name": "Big trip", "currentAmount": 5})
	s.Require().Equal(http.StatusOK, rec.Code)
	goal = decodeBody[map[string]any](s.T(), rec)
	s.Equal("Big trip", goal["name"])
	s.Equal(float64(1000), goal["currentAmount"])

	rec = s.do(http.MethodPost, "/api/goals/"+id+"/withdraw", token, map[string]any{"amount": 5000})
	s.Equal(http.StatusBadRequest, rec.Code)
	s.Equal(MsgInsufficientFunds, decodeBody[map[string]string](s.T(), rec)["error"])

	rec = s.do(http.MethodPost, "/api/goals/"+id+"/withdraw", token, map[string]any{"amount": 500})
	s.Require().Equal(http.StatusOK, rec.Code)
	goal = decodeBody[map[string]any](s.T(), rec)
	s.Equal(float64(500), goal["currentAmount"])
	s.Equal(false, goal["completed"])
	s.Nil(goal["completedAt"])

	rec = s.do(http.MethodPost, "/api/goals/"+id+"/contribute", token, map[string]any{"amount": 0})
	s.Equal(http.StatusBadRequest, rec.Code)
	s.Equal(MsgInvalidAmount, decodeBody[map[string]string](s.T(), rec)["error"])

	rec = s.do(http.MethodPost, "/api/goals/missing/contribute", token, map[string]any{"amount": 10})
	s.Equal(http.StatusNotFound, rec.Code)
	s.Equal("Goal not found", decodeBody[map[string]string](s.T(), rec)["error"])
}

func (s *APISuite) TestPasswordResetFlow() {
	s.signup("heidi", "heidi@example.com")

	rec := s.do(http.MethodPost, "/api/forgot-password", "", map[string]string{"email": "nobody@example.com"})
	s.Require().Equal(http.StatusOK, rec.Code)
	s.Equal(MsgResetLinkSent, decodeBody[map[string]string](s.T(), rec)["message"])
	s.Equal(0, s.transport.count())

	rec = s.do(http.MethodPost, "/api/forgot-password", "", map[string]string{})
	s.Equal(http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodPost, "/api/forgot-password", "", map[string]string{"email": "heidi@example.com"})
	s.Require().Equal(http.StatusOK, rec.Code)
	s.Equal(MsgResetLinkSent, decodeBody[map[string]string](s.T(), rec)["message"])
	s.Require().Equal(1, s.transport.count())
	token := s.transport.lastResetToken()
	s.Require().Len(token, 64)

	rec = s.do(http.MethodGet, "/api/verify-reset-token/"+token, "", nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	verified := decodeBody[map[string]any](s.T(), rec)
	s.Equal(true, verified["valid"])
	s.Equal("heidi@example.com", verified["email"])

	rec = s.do(http.MethodGet, "/api/verify-reset-token/bogus", "", nil)
	s.Equal(http.StatusBadRequest, rec.Code)
	s.Equal(false, decodeBody[map[string]any](s.T(), rec)["valid"])

	rec = s.do(http.MethodPost, "/api/reset-password/"+token, "", map[string]string{"password": "abc"})
	s.Equal(http.StatusBadRequest, rec.Code)
	s.Equal("Password must be at least 6 characters", decodeBody[map[string]string](s.T(), rec)["error"])

	rec = s.do(http.MethodPost, "/api/reset-password/"+token, "", map[string]string{"password": "newsecret"})
	s.Require().Equal(http.StatusOK, rec.Code)
	s.Equal(MsgPasswordReset, decodeBody[map[string]string](s.T(), rec)["message"])

	rec = s.do(http.MethodPost, "/api/reset-password/"+token, "", map[string]string{"password": "another1"})
	s.Equal(http.StatusBadRequest, rec.Code)
	s.Equal(MsgInvalidResetToken, decodeBody[map[string]string](s.T(), rec)["error"])

	rec = s.do(http.MethodPost, "/api/login", "", map[string]string{"email": "heidi@example.com", "password": "secret123"})
	s.Equal(http.StatusUnauthorized, rec.Code)
	rec = s.do(http.MethodPost, "/api/login", "", map[string]string{"email": "heidi@example.com", "password": "newsecret"})
	s.Equal(http.StatusOK, rec.Code)
}

func (s *APISuite) TestExpenseStatement() {
	token := s.signup("ivan", "ivan@example.com")

	rec := s.do(http.MethodPost, "/api/expenses", token, map[string]any{
		"amount": 42.5, "category": "food", "date": "2026-03-02", "note": "groceries",
	})
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())

	rec = s.do(http.MethodGet, "/api/expenses/statement.pdf?from=2026-03-01&to=2026-03-31", token, nil)
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	s.Equal("application/pdf", rec.Header().Get("Content-Type"))
	s.True(bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")))

	rec = s.do(http.MethodGet, "/api/expenses/statement.pdf?from=March", token, nil)
	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *APISuite) TestCreditCardDefaults() {
	token := s.signup("judy", "judy@example.com")

	rec := s.do(http.MethodPost, "/api/credit-cards", token, map[string]any{"name": "Visa", "balance": 250.75})
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())
	card := decodeBody[map[string]any](s.T(), rec)
	s.Equal(250.75, card["balance"])
	s.Equal(float64(0), card["payment"])

	rec = s.do(http.MethodDelete, "/api/credit-cards/"+card["id"].(string), token, nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	s.Equal("Credit card deleted successfully", decodeBody[map[string]string](s.T(), rec)["message"])
}

func (s *APISuite) TestExpiredSessionTokenIsForbidden() {
	token := s.signup("kate", "kate@example.com")
	rec := s.do(http.MethodGet, "/api/user", token, nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	user := decodeBody[map[string]map[string]any](s.T(), rec)["user"]

	expiredIssuer := security.NewTokenService(suiteTokenSecret, -time.Minute, time.Hour)
	expired, err := expiredIssuer.IssueSessionToken(security.Identity{
		UserID:   user["id"].(string),
		Email:    "kate@example.com",
		Username: "kate",
	})
	s.Require().NoError(err)

	rec = s.do(http.MethodGet, "/api/user", expired, nil)
	s.Equal(http.StatusForbidden, rec.Code)
	s.Equal(MsgInvalidToken, decodeBody[map[string]string](s.T(), rec)["error"])

	rec = s.do(http.MethodGet, "/api/budgets", expired, nil)
	s.Equal(http.StatusForbidden, rec.Code)
}

func (s *APISuite) TestFreeTextIsStoredVerbatim() {
	token := s.signup("liam", "liam@example.com")

	rec := s.do(http.MethodPost, "/api/credit-cards", token, map[string]any{"name": "Tom & Jerry's Card"})
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())
	card := decodeBody[map[string]any](s.T(), rec)
	id := card["id"].(string)
	s.Equal("Tom & Jerry's Card", card["name"])

	rec = s.do(http.MethodPut, "/api/credit-cards/"+id, token, map[string]any{"balance": 10})
	s.Require().Equal(http.StatusOK, rec.Code)
	s.Equal("Tom & Jerry's Card", decodeBody[map[string]any](s.T(), rec)["name"])

	rec = s.do(http.MethodPut, "/api/credit-cards/"+id, token, map[string]any{"name": `Tom & Jerry's "Gold"`})
	s.Require().Equal(http.StatusOK, rec.Code)
	s.Equal(`Tom & Jerry's "Gold"`, decodeBody[map[string]any](s.T(), rec)["name"])

	rec = s.do(http.MethodGet, "/api/credit-cards/"+id, token, nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	s.Equal(`Tom & Jerry's "Gold"`, decodeBody[map[string]any](s.T(), rec)["name"])

	rec = s.do(http.MethodPost, "/api/income", token, map[string]any{"type": "Bed & Breakfast", "amount": 90, "source": "<b>Guests</b>"})
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())
	s.Equal("Guests", decodeBody[map[string]any](s.T(), rec)["source"])

	rec = s.do(http.MethodGet, "/api/income?type="+url.QueryEscape("Bed & Breakfast"), token, nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	items := decodeBody[[]map[string]any](s.T(), rec)
	s.Require().Len(items, 1)
	s.Equal("Bed & Breakfast", items[0]["type"])
}

func (s *APISuite) TestCrossOwnerWritesAreNotFound() {
	owner := s.signup("mona", "mona@example.com")
	intruder := s.signup("nick", "nick@example.com")
	targetDate := time.Now().AddDate(0, 6, 0).Format("2006-01-02")

	cases := []struct {
		name   string
		path   string
		create map[string]any
		update map[string]any
		field  string
	}{
		{"budgets", "/api/budgets", map[string]any{"name": "Rent", "limit": 1200, "type": "recurring"}, map[string]any{"name": "Hijacked"}, "name"},
		{"expenses", "/api/expenses", map[string]any{"amount": 20, "date": "2026-02-01", "note": "lunch"}, map[string]any{"note": "Hijacked"}, "note"},
		{"credit cards", "/api/credit-cards", map[string]any{"name": "Visa", "balance": 100}, map[string]any{"name": "Hijacked"}, "name"},
		{"income", "/api/income", map[string]any{"type": "salary", "amount": 3000, "date": "2026-02-01"}, map[string]any{"type": "Hijacked"}, "type"},
		{"goals", "/api/goals", map[string]any{"name": "Car", "targetAmount": 5000, "targetDate": targetDate}, map[string]any{"name": "Hijacked"}, "name"},
	}

	for _, tc := range cases {
		s.Run(tc.name, func() {
			rec := s.do(http.MethodPost, tc.path, owner, tc.create)
			s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())
			created := decodeBody[map[string]any](s.T(), rec)
			item := tc.path + "/" + created["id"].(string)

			rec = s.do(http.MethodPut, item, intruder, tc.update)
			s.Equal(http.StatusNotFound, rec.Code, "PUT %s", item)

			rec = s.do(http.MethodDelete, item, intruder, nil)
			s.Equal(http.StatusNotFound, rec.Code, "DELETE %s", item)

			rec = s.do(http.MethodGet, item, owner, nil)
			s.Require().Equal(http.StatusOK, rec.Code)
			stored := decodeBody[map[string]any](s.T(), rec)
			s.Equal(created[tc.field], stored[tc.field])
			s.NotEqual("Hijacked", stored[tc.field])
		})
	}

	s.Run("goal contributions", func() {
		rec := s.do(http.MethodPost, "/api/goals", owner, map[string]any{"name": "Bike", "targetAmount": 800, "targetDate": targetDate})
		s.Require().Equal(http.StatusCreated, rec.Code)
		item := "/api/goals/" + decodeBody[map[string]any](s.T(), rec)["id"].(string)

		rec = s.do(http.MethodPost, item+"/contribute", owner, map[string]any{"amount": 100})
		s.Require().Equal(http.StatusOK, rec.Code)

		for _, action := range []string{"/contribute", "/withdraw"} {
			rec = s.do(http.MethodPost, item+action, intruder, map[string]any{"amount": 50})
			s.Equal(http.StatusNotFound, rec.Code, action)
			s.Equal("Goal not found", decodeBody[map[string]string](s.T(), rec)["error"])
		}

		rec = s.do(http.MethodGet, item, owner, nil)
		s.Require().Equal(http.StatusOK, rec.Code)
		s.Equal(float64(100), decodeBody[map[string]any](s.T(), rec)["currentAmount"])
	})
}

func (s *APISuite) TestGoalContributionIsRoundedToCents() {
	token := s.signup("olga", "olga@example.com")

	rec := s.do(http.MethodPost, "/api/goals", token, map[string]any{
		"name": "Fund", "targetAmount": 100, "targetDate": time.Now().AddDate(1, 0, 0).Format("2006-01-02"),
	})
	s.Require().Equal(http.StatusCreated, rec.Code)
	item := "/api/goals/" + decodeBody[map[string]any](s.T(), rec)["id"].(string)

	rec = s.do(http.MethodPost, item+"/contribute", token, map[string]any{"amount": 0.005})
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	s.Equal(0.01, decodeBody[map[string]any](s.T(), rec)["currentAmount"])

	rec = s.do(http.MethodGet, item, token, nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	s.Equal(0.01, decodeBody[map[string]any](s.T(), rec)["currentAmount"])

	rec = s.do(http.MethodPost, item+"/contribute", token, map[string]any{"amount": 0.004})
	s.Equal(http.StatusBadRequest, rec.Code)
	s.Equal(MsgInvalidAmount, decodeBody[map[string]string](s.T(), rec)["error"])
}

func newLimitedRouter(t *testing.T, rate int, trustProxy bool) http.Handler {
	t.Helper()
	limiter := security.NewRateLimiter(rate, time.Minute)
	t.Cleanup(limiter.Stop)

	db := dbtest.Open(t)
	tokens := security.NewTokenService("secret", time.Hour, time.Hour)
	authService := service.NewAuthService(repository.NewUserRepository(db), tokens, service.NewEmailService(nil, "", "", "", time.Hour, false))
	return SetupRoutes(Handlers{
		Auth:        NewAuthHandler(authService),
		Budgets:     NewResourceHandler[models.Budget]("Budget", repository.NewBudgetRepository(db)),
		Expenses:    NewResourceHandler[models.Expense]("Expense", repository.NewExpenseRepository(db)),
		CreditCards: NewResourceHandler[models.CreditCard]("Credit card", repository.NewCreditCardRepository(db)),
		Income:      NewResourceHandler[models.Income]("Income", repository.NewIncomeRepository(db)),
		Goals:       NewGoalHandler(repository.NewGoalRepository(db), service.NewGoalService(repository.NewGoalRepository(db))),
		Statements:  NewStatementHandler(authService, service.NewStatementService(repository.NewExpenseRepository(db))),
		Middleware:  NewMiddleware(tokens),
		AuthLimiter: limiter,
		TrustProxy:  trustProxy,
	})
}

func loginAttempt(router http.Handler, remoteAddr, forwardedFor string) int {
	req := httptest.NewRequest(http.MethodPost, "/api/login", strings.NewReader(`{"email":"x@example.com","password":"secret123"}`))
	req.RemoteAddr = remoteAddr
	if forwardedFor != "" {
		req.Header.Set("X-Forwarded-For", forwardedFor)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec.Code
}

func TestAuthRoutesAreRateLimited(t *testing.T) {
	router := newLimitedRouter(t, 2, false)

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		codes = append(codes, loginAttempt(router, "192.0.2.1:1234", ""))
	}
	assert.Equal(t, []int{http.StatusUnauthorized, http.StatusUnauthorized, http.StatusTooManyRequests}, codes)

	// Health is not behind the limiter
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimitIgnoresSpoofedForwardedFor(t *testing.T) {
	router := newLimitedRouter(t, 2, false)

	throttled := 0
	for i := 0; i < 20; i++ {
		if loginAttempt(router, "192.0.2.1:1234", fmt.Sprintf("203.0.113.%d", i+1)) == http.StatusTooManyRequests {
			throttled++
		}
	}
	assert.Equal(t, 18, throttled)
}

func TestRateLimitUsesForwardedForBehindTrustedProxy(t *testing.T) {
	router := newLimitedRouter(t, 1, true)

	assert.Equal(t, http.StatusUnauthorized, loginAttempt(router, "10.0.0.1:1", "203.0.113.1"))
	assert.Equal(t, http.StatusUnauthorized, loginAttempt(router, "10.0.0.1:1", "203.0.113.2"))
	assert.Equal(t, http.StatusTooManyRequests, loginAttempt(router, "10.0.0.1:1", "203.0.113.2"))
}
