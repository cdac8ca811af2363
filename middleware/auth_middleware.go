// middleware/auth_middleware.go
package middleware

import (
	"context"
	"errors"
	"net/http"

	"firebase.google.com/go/v4/auth"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/HSouheill/indique_backend/models"
)

// TokenVerifier is the part of the Firebase auth client used to check the
// app's identity tokens.
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

// FirebaseAuth verifies the identity provider token and stores the user id as
// "userId" and the email as "email". Websocket clients may pass the token in
// the "token" query parameter.
func FirebaseAuth(verifier TokenVerifier, logger *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := bearerToken(c.Request())
			if raw == "" {
				raw = c.QueryParam("token")
			}
			if raw == "" {
				return c.JSON(http.StatusUnauthorized, models.Response{
					Status:  http.StatusUnauthorized,
					Message: "Please provide valid credentials",
				})
			}

			token, err := verifier.VerifyIDToken(c.Request().Context(), raw)
			if err != nil {
				logger.Debug("identity token rejected", zap.String("path", c.Path()), zap.Error(err))
				return c.JSON(http.StatusUnauthorized, models.Response{
					Status:  http.StatusUnauthorized,
					Message: "Invalid or expired token",
				})
			}

			c.Set("userId", token.UID)
			if email, ok := token.Claims["email"].(string); ok {
				c.Set("email", email)
			}
			return next(c)
		}
	}
}

// ExtractUserID returns the authenticated user id set by FirebaseAuth.
func ExtractUserID(c echo.Context) (string, error) {
	userID, ok := c.Get("userId").(string)
	if !ok || userID == "" {
		return "", errors.New("invalid user ID in token")
	}
	return userID, nil
}
