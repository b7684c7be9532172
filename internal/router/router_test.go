package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paywallet/internal/auth"
	"paywallet/internal/cache"
	"paywallet/internal/config"
	"paywallet/internal/db"
	"paywallet/internal/handler"
	"paywallet/internal/repository"
	"paywallet/internal/service"
)

func newTestApp(t *testing.T, cfg *config.Config) *echo.Echo {
	t.Helper()
	e, _ := newTestAppWithRedis(t, cfg)
	return e
}

func newTestAppWithRedis(t *testing.T, cfg *config.Config) (*echo.Echo, *miniredis.Miniredis) {
	t.Helper()

	gormDB, err := db.Open(db.DriverSQLite, "file::memory:")
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gormDB))
	t.Cleanup(func() { _ = db.Close(gormDB) })

	mr := miniredis.RunT(t)
	cacheClient := cache.New(mr.Addr(), "", 0)
	t.Cleanup(func() { _ = cacheClient.Close() })

	store := repository.NewStore(gormDB)
	jwtService := auth.NewJWTService(cfg.JWTSecret, cfg.TokenTTL)
	tokenStore := auth.NewTokenStore(cacheClient)

	authService := service.NewAuthService(store, jwtService, tokenStore)
	userService := service.NewUserService(store, cacheClient, cfg.SearchLimit)

	e := echo.New()
	Register(e, cfg, handler.NewAuthHandler(authService), handler.NewUserHandler(userService), jwtService, tokenStore)
	return e, mr
}

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:      "test-secret",
		RateLimitRPS:   1000,
		RateLimitBurst: 1000,
	}
}

type apiResponse struct {
	code int
	body map[string]interface{}
	raw  string
}

func call(t *testing.T, e *echo.Echo, method, path, token, body string) apiResponse {
	t.Helper()
	req := httptest.NewRequest(method, BasePath+path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	res := apiResponse{code: rec.Code, raw: rec.Body.String()}
	_ = json.Unmarshal(rec.Body.Bytes(), &res.body)
	return res
}

func signup(t *testing.T, e *echo.Echo, username, first, last string) string {
	t.Helper()
	res := call(t, e, http.MethodPost, "/signup", "",
		`{"username":"`+username+`","password":"secret1","firstName":"`+first+`","lastName":"`+last+`"}`)
	require.Equal(t, http.StatusOK, res.code, res.raw)
	token, _ := res.body["token"].(string)
	require.NotEmpty(t, token)
	return token
}

func TestUserLifecycle(t *testing.T) {
	e := newTestApp(t, testConfig())

	token := signup(t, e, "jane@example.com", "Jane", "Doe")

	res := call(t, e, http.MethodPost, "/signin", "", `{"username":"jane@example.com","password":"secret1"}`)
	require.Equal(t, http.StatusOK, res.code)
	assert.NotEmpty(t, res.body["token"])

	res = call(t, e, http.MethodGet, "/info", token, "")
	require.Equal(t, http.StatusOK, res.code)
	balance := res.body["balance"].(float64)
	assert.GreaterOrEqual(t, balance, float64(1))
	assert.LessOrEqual(t, balance, float64(10000))

	res = call(t, e, http.MethodPut, "/", token, `{"firstName":"Janet"}`)
	require.Equal(t, http.StatusOK, res.code)

	res = call(t, e, http.MethodGet, "/info", token, "")
	require.Equal(t, http.StatusOK, res.code)
	assert.Equal(t, "Janet", res.body["firstName"])
	assert.Equal(t, "Doe", res.body["lastName"])
	assert.Equal(t, balance, res.body["balance"])

	res = call(t, e, http.MethodPost, "/signin", "", `{"username":"jane@example.com","password":"secret1"}`)
	assert.Equal(t, http.StatusOK, res.code)

	res = call(t, e, http.MethodDelete, "/", token, "")
	require.Equal(t, http.StatusOK, res.code)

	res = call(t, e, http.MethodGet, "/info", token, "")
	assert.Equal(t, http.StatusNotFound, res.code)

	res = call(t, e, http.MethodDelete, "/", token, "")
	assert.Equal(t, http.StatusOK, res.code)
}

func TestDuplicateAndBadCredentials(t *testing.T) {
	e := newTestApp(t, testConfig())
	signup(t, e, "jane@example.com", "Jane", "Doe")

	res := call(t, e, http.MethodPost, "/signup", "",
		`{"username":"jane@example.com","password":"secret1","firstName":"Jane","lastName":"Doe"}`)
	assert.Equal(t, http.StatusLengthRequired, res.code)

	wrong := call(t, e, http.MethodPost, "/signin", "", `{"username":"jane@example.com","password":"nope123"}`)
	unknown := call(t, e, http.MethodPost, "/signin", "", `{"username":"ghost@example.com","password":"secret1"}`)
	assert.Equal(t, http.StatusLengthRequired, wrong.code)
	assert.Equal(t, wrong.code, unknown.code)
	assert.Equal(t, wrong.raw, unknown.raw)
}

func TestBulkSearch(t *testing.T) {
	e := newTestApp(t, testConfig())
	signup(t, e, "jane@example.com", "Jane", "Doe")
	signup(t, e, "john@example.com", "John", "Smith")

	res := call(t, e, http.MethodGet, "/bulk", "", "")
	require.Equal(t, http.StatusOK, res.code)
	assert.Len(t, res.body["user"], 2)

	res = call(t, e, http.MethodGet, "/bulk?filter=Doe", "", "")
	require.Equal(t, http.StatusOK, res.code)
	users := res.body["user"].([]interface{})
	require.Len(t, users, 1)
	first := users[0].(map[string]interface{})
	assert.Equal(t, "jane@example.com", first["username"])
	assert.NotEmpty(t, first["_id"])
	assert.NotContains(t, first, "balance")

	res = call(t, e, http.MethodGet, "/bulk?filter=zzz", "", "")
	require.Equal(t, http.StatusOK, res.code)
	assert.JSONEq(t, `{"user":[]}`, res.raw)
}

func TestSearchLimit(t *testing.T) {
	cfg := testConfig()
	cfg.SearchLimit = 1
	e := newTestApp(t, cfg)
	signup(t, e, "jane@example.com", "Jane", "Doe")
	signup(t, e, "john@example.com", "John", "Smith")

	res := call(t, e, http.MethodGet, "/bulk", "", "")
	require.Equal(t, http.StatusOK, res.code)
	assert.Len(t, res.body["user"], 1)
}

func TestSignoutRevokesToken(t *testing.T) {
	e := newTestApp(t, testConfig())
	token := signup(t, e, "jane@example.com", "Jane", "Doe")

	require.Equal(t, http.StatusOK, call(t, e, http.MethodGet, "/info", token, "").code)
	require.Equal(t, http.StatusOK, call(t, e, http.MethodPost, "/signout", token, "").code)

	res := call(t, e, http.MethodGet, "/info", token, "")
	assert.Equal(t, http.StatusUnauthorized, res.code)
	assert.Equal(t, "Unauthorized", res.body["msg"])
}

func TestSignoutWithRedisDownIsNotReportedAsSuccess(t *testing.T) {
	e, mr := newTestAppWithRedis(t, testConfig())
	token := signup(t, e, "jane@example.com", "Jane", "Doe")

	mr.Close()
	res := call(t, e, http.MethodPost, "/signout", token, "")
	assert.Equal(t, http.StatusInternalServerError, res.code)
	assert.Equal(t, "Internal Server Error", res.body["msg"])

	require.NoError(t, mr.Restart())
	require.Equal(t, http.StatusOK, call(t, e, http.MethodPost, "/signout", token, "").code)
	assert.Equal(t, http.StatusUnauthorized, call(t, e, http.MethodGet, "/info", token, "").code)
}

func TestRateLimitedRoutes(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimitRPS = 0.001
	cfg.RateLimitBurst = 1
	e := newTestApp(t, cfg)

	assert.Equal(t, http.StatusOK, call(t, e, http.MethodGet, "/bulk", "", "").code)
	assert.Equal(t, http.StatusTooManyRequests, call(t, e, http.MethodGet, "/bulk", "", "").code)
}

func TestHealthz(t *testing.T) {
	e := newTestApp(t, testConfig())
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}
