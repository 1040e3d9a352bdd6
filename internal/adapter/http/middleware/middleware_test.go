package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"ledger-api/internal/core/domain"
	"ledger-api/internal/core/ports"
	"ledger-api/internal/core/ports/mocks"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// actorEcho returns a router that answers with the resolved actor.
func actorEcho(mw gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.GET("/test", mw, func(c *gin.Context) {
		actor := ActorFrom(c)
		if actor == nil {
			c.JSON(http.StatusOK, gin.H{"actor": nil})
			return
		}
		c.JSON(http.StatusOK, gin.H{"actor": actor.ID, "role": actor.Role})
	})
	return r
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestAuthenticate_AdminAPIKey(t *testing.T) {
	router := actorEcho(Authenticate(AuthConfig{AdminAPIKey: "Soup123", RequireActor: true}, zerolog.Nop()))

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set(HeaderAPIKey, "Soup123")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, AdminActorID, body["actor"])
	assert.Equal(t, "ADMIN", body["role"])
}

func TestAuthenticate_WrongAPIKey(t *testing.T) {
	router := actorEcho(Authenticate(AuthConfig{AdminAPIKey: "Soup123", RequireActor: true}, zerolog.Nop()))

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set(HeaderAPIKey, "Soup124")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "AUTH_002", decodeBody(t, w)["error_code"])
}

func TestAuthenticate_APIKeyDisabled(t *testing.T) {
	router := actorEcho(Authenticate(AuthConfig{RequireActor: true}, zerolog.Nop()))

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set(HeaderAPIKey, "anything")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthenticate_BearerToken(t *testing.T) {
	ctrl := gomock.NewController(t)
	tokenSvc := mocks.NewMockTokenService(ctrl)
	tokenSvc.EXPECT().Validate("good-token").Return(&ports.TokenClaims{Subject: "alice", Role: domain.RoleUser}, nil)

	router := actorEcho(Authenticate(AuthConfig{TokenSvc: tokenSvc, RequireActor: true}, zerolog.Nop()))

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "alice", body["actor"])
	assert.Equal(t, "USER", body["role"])
}

func TestAuthenticate_InvalidBearer(t *testing.T) {
	ctrl := gomock.NewController(t)
	tokenSvc := mocks.NewMockTokenService(ctrl)
	tokenSvc.EXPECT().Validate("bad-token").Return(nil, errors.New("expired"))

	router := actorEcho(Authenticate(AuthConfig{TokenSvc: tokenSvc, RequireActor: true}, zerolog.Nop()))

	for _, header := range []string{"Bearer bad-token", "Basic abc", "Bearer "} {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set("Authorization", header)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code, header)
		assert.Equal(t, "AUTH_003", decodeBody(t, w)["error_code"], header)
	}
}

func TestAuthenticate_MissingCredentials(t *testing.T) {
	t.Run("required", func(t *testing.T) {
		router := actorEcho(Authenticate(AuthConfig{RequireActor: true}, zerolog.Nop()))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "AUTH_001", decodeBody(t, w)["error_code"])
	})

	t.Run("anonymous allowed", func(t *testing.T) {
		router := actorEcho(Authenticate(AuthConfig{RequireActor: false}, zerolog.Nop()))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

		require.Equal(t, http.StatusOK, w.Code)
		assert.Nil(t, decodeBody(t, w)["actor"])
	})
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/test", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(CtxRequestID))
	})

	t.Run("propagates client id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set(HeaderRequestID, "req-123")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, "req-123", w.Body.String())
		assert.Equal(t, "req-123", w.Header().Get(HeaderRequestID))
	})

	t.Run("replaces unsafe id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set(HeaderRequestID, "bad id\r\n")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.NotEqual(t, "bad id\r\n", w.Body.String())
		assert.Len(t, w.Body.String(), 36)
	})

	t.Run("generates when absent", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

		assert.Len(t, w.Header().Get(HeaderRequestID), 36)
	})
}

func TestRecovery_ReturnsEnvelope(t *testing.T) {
	r := gin.New()
	r.Use(RequestID(), Recovery(zerolog.Nop()))
	r.GET("/panic", func(c *gin.Context) {
		panic("boom")
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "SYS_001", body["error_code"])
	assert.Equal(t, w.Header().Get(HeaderRequestID), body["request_id"])
}

func TestRequestLogger_LevelsByStatus(t *testing.T) {
	var buf syncWriter
	r := gin.New()
	r.Use(RequestLogger(zerolog.New(&buf)))
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/missing", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ok", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/missing", nil))

	lines := buf.Lines()
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], `"level":"info"`)
	assert.Contains(t, lines[1], `"level":"warn"`)
	assert.Contains(t, lines[1], `"status":404`)
}
