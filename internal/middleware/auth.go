package middleware

import (
	"net/http"
	"strings"

	"github.com/trunghai04/webmoi-sub001/internal/dto"
	"github.com/trunghai04/webmoi-sub001/internal/service"
	"github.com/trunghai04/webmoi-sub001/internal/token"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Context keys for user info
const (
	CtxUserID   = "user_id"
	CtxUserRole = "user_role"
)

type TokenVerifier interface {
	ParseAndValidateAccess(raw string) (*token.Claims, error)
}

// AuthRequired validates the Bearer access token locally and puts the caller identity
// both into the gin context and into the request context used by services.
func AuthRequired(verifier TokenVerifier, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authz := c.GetHeader("Authorization")
		if authz == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewUnauthorizedError("missing Authorization header"))
			return
		}
		raw, ok := ExtractBearerToken(authz)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewUnauthorizedError("invalid Authorization header"))
			return
		}
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewUnauthorizedError("empty token"))
			return
		}

		claims, err := verifier.ParseAndValidateAccess(raw)
		if err != nil {
			log.Warn("Невалидный access token", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewUnauthorizedError("invalid token"))
			return
		}

		role := ParseRole(claims.Role)
		c.Set(CtxUserID, claims.UserID.String())
		c.Set(CtxUserRole, string(role))
		c.Request = c.Request.WithContext(service.WithIdentity(c.Request.Context(), claims.UserID, role))
		c.Next()
	}
}

// ParseRole maps the role claim onto a known role; anything unknown is a customer.
func ParseRole(s string) service.Role {
	switch r := service.Role(strings.ToUpper(strings.TrimSpace(s))); r {
	case service.RoleAdmin, service.RolePartner, service.RoleCustomer:
		return r
	}
	return service.RoleCustomer
}

// ExtractBearerToken извлекает токен из заголовка Authorization, устойчиво к лишним символам
// Примеры допустимых значений:
// - "Bearer abc.def.ghi"
// - "Bearer \"abc.def.ghi\""
// - "Bearer abc.def.ghi, extra"
func ExtractBearerToken(authz string) (string, bool) {
	if authz == "" {
		return "", false
	}
	parts := strings.SplitN(authz, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	t := strings.Trim(strings.TrimSpace(parts[1]), " \"'")
	if i := strings.IndexRune(t, ','); i >= 0 {
		t = strings.Trim(t[:i], " \"'")
	}
	if i := strings.IndexByte(t, ' '); i >= 0 {
		t = strings.Trim(t[:i], " \"'")
	}
	return t, true
}
