// middleware/jwt_middleware.go
package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/HSouheill/indique_backend/models"
)

// TriggerClaims identify the event runtime calling the trigger endpoints.
type TriggerClaims struct {
	Source string `json:"source"`
	jwt.StandardClaims
}

// Valid rejects expired and not-yet-valid tokens. Tokens without exp are
// accepted, as issued by long-lived function deployments.
func (c TriggerClaims) Valid() error {
	now := time.Now().Unix()
	if c.ExpiresAt > 0 && now > c.ExpiresAt {
		return errors.New("token is expired")
	}
	if c.NotBefore > 0 && now < c.NotBefore {
		return errors.New("token used before valid")
	}
	if c.Source == "" {
		return errors.New("token has no source")
	}
	return nil
}

// TriggerAuth verifies the HS256 bearer token sent by the event runtime and
// stores its source in the context as "triggerSource". An empty secret
// disables the check; config only allows that in development.
func TriggerAuth(secret string, logger *zap.Logger) echo.MiddlewareFunc {
	if secret == "" {
		logger.Warn("TRIGGER_SECRET is not set, trigger endpoints are unauthenticated")
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return next
		}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := bearerToken(c.Request())
			if raw == "" {
				return c.JSON(http.StatusUnauthorized, models.Response{
					Status:  http.StatusUnauthorized,
					Message: "Missing trigger token",
				})
			}

			claims, err := ParseTriggerToken(secret, raw)
			if err != nil {
				logger.Warn("trigger token rejected", zap.String("path", c.Path()), zap.Error(err))
				return c.JSON(http.StatusUnauthorized, models.Response{
					Status:  http.StatusUnauthorized,
					Message: "Invalid or expired trigger token",
				})
			}

			c.Set("triggerSource", claims.Source)
			return next(c)
		}
	}
}

// ParseTriggerToken validates raw against secret.
func ParseTriggerToken(secret, raw string) (*TriggerClaims, error) {
	claims := &TriggerClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// GenerateTriggerToken signs a token for source. A zero ttl issues a token
// without expiry.
func GenerateTriggerToken(secret, source string, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", errors.New("trigger secret is required")
	}
	now := time.Now()
	claims := &TriggerClaims{
		Source: source,
		StandardClaims: jwt.StandardClaims{
			IssuedAt: now.Unix(),
		},
	}
	if ttl > 0 {
		claims.ExpiresAt = now.Add(ttl).Unix()
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get(echo.HeaderAuthorization)
	if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}
