package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/trunghai04/webmoi-sub001/internal/service"
	"github.com/trunghai04/webmoi-sub001/internal/token"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func init() { gin.SetMode(gin.TestMode) }

func TestExtractBearerToken(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"Bearer abc.def.ghi", "abc.def.ghi", true},
		{"bearer abc.def.ghi", "abc.def.ghi", true},
		{"Bearer \"abc.def.ghi\"", "abc.def.ghi", true},
		{"Bearer abc.def.ghi, extra", "abc.def.ghi", true},
		{"Bearer abc.def.ghi trailing", "abc.def.ghi", true},
		{"Bearer ", "", true},
		{"Basic abc", "", false},
		{"abc", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, ok := ExtractBearerToken(tc.in)
		assert.Equal(t, tc.ok, ok, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}
}

func TestParseRole(t *testing.T) {
	assert.Equal(t, service.RoleAdmin, ParseRole("ROLE_ADMIN"))
	assert.Equal(t, service.RolePartner, ParseRole(" role_partner "))
	assert.Equal(t, service.RoleCustomer, ParseRole("ROLE_CUSTOMER"))
	assert.Equal(t, service.RoleCustomer, ParseRole("ROLE_ROOT"))
	assert.Equal(t, service.RoleCustomer, ParseRole(""))
}

func authEngine(v TokenVerifier) *gin.Engine {
	r := gin.New()
	r.Use(AuthRequired(v, zap.NewNop()))
	r.GET("/me", func(c *gin.Context) {
		uid, ok := service.UserIDFromContext(c.Request.Context())
		role, _ := service.RoleFromContext(c.Request.Context())
		c.JSON(http.StatusOK, gin.H{
			"ok":       ok,
			"user_id":  uid.String(),
			"role":     string(role),
			"gin_user": c.GetString(CtxUserID),
			"gin_role": c.GetString(CtxUserRole),
		})
	})
	return r
}

func TestAuthRequired(t *testing.T) {
	v := token.NewHSVerifier("secret", "storefront-auth", "storefront")
	uid := uuid.New()
	signed, _, err := v.SignAccess(uid, "ROLE_PARTNER", time.Minute)
	require.NoError(t, err)

	r := authEngine(v)

	t.Run("valid token", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer "+signed)
		r.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), uid.String())
		assert.Contains(t, w.Body.String(), `"role":"ROLE_PARTNER"`)
		assert.Contains(t, w.Body.String(), `"gin_role":"ROLE_PARTNER"`)
	})

	for name, header := range map[string]string{
		"missing header": "",
		"wrong scheme":   "Basic " + signed,
		"empty token":    "Bearer ",
		"garbage token":  "Bearer not-a-jwt",
	} {
		t.Run(name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if header != "" {
				req.Header.Set("Authorization", header)
			}
			r.ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Contains(t, w.Body.String(), `"code":"unauthorized"`)
		})
	}

	t.Run("foreign secret", func(t *testing.T) {
		other := token.NewHSVerifier("another", "storefront-auth", "storefront")
		forged, _, err := other.SignAccess(uid, "ROLE_ADMIN", time.Minute)
		require.NoError(t, err)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer "+forged)
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestTimeout_SetsDeadline(t *testing.T) {
	r := gin.New()
	r.Use(Timeout(50 * time.Millisecond))
	var deadline time.Time
	var has bool
	r.GET("/", func(c *gin.Context) {
		deadline, has = c.Request.Context().Deadline()
		<-c.Request.Context().Done()
		c.String(http.StatusOK, c.Request.Context().Err().Error())
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	require.True(t, has)
	assert.False(t, deadline.IsZero())
	assert.Equal(t, context.DeadlineExceeded.Error(), w.Body.String())
}

func TestTimeout_ZeroDisables(t *testing.T) {
	r := gin.New()
	r.Use(Timeout(0))
	r.GET("/", func(c *gin.Context) {
		_, has := c.Request.Context().Deadline()
		assert.False(t, has)
		c.Status(http.StatusNoContent)
	})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestRequestLogger_LevelByStatus(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	r := gin.New()
	r.Use(RequestLogger(zap.New(core)))
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/bad", func(c *gin.Context) { c.Status(http.StatusConflict) })
	r.GET("/boom", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	for _, p := range []string{"/ok", "/bad", "/boom"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, p, nil))
	}

	entries := logs.All()
	require.Len(t, entries, 3)
	assert.Equal(t, zap.InfoLevel, entries[0].Level)
	assert.Equal(t, zap.WarnLevel, entries[1].Level)
	assert.Equal(t, zap.ErrorLevel, entries[2].Level)
	assert.Equal(t, "/bad", entries[1].ContextMap()["path"])
}
