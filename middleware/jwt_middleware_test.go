package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testSecret = "trigger-secret"

func runTriggerAuth(t *testing.T, secret, authorization string) (*httptest.ResponseRecorder, echo.Context) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/triggers/users", nil)
	if authorization != "" {
		req.Header.Set(echo.HeaderAuthorization, authorization)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := TriggerAuth(secret, zap.NewNop())(func(c echo.Context) error {
		return c.NoContent(http.StatusNoContent)
	})
	require.NoError(t, h(c))
	return rec, c
}

func TestTriggerAuth(t *testing.T) {
	valid, err := GenerateTriggerToken(testSecret, "functions", time.Hour)
	require.NoError(t, err)
	noExpiry, err := GenerateTriggerToken(testSecret, "functions", 0)
	require.NoError(t, err)
	otherSecret, err := GenerateTriggerToken("other", "functions", time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"valid token", "Bearer " + valid, http.StatusNoContent},
		{"lowercase scheme", "bearer " + valid, http.StatusNoContent},
		{"token without expiry", "Bearer " + noExpiry, http.StatusNoContent},
		{"missing token", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic " + valid, http.StatusUnauthorized},
		{"wrong secret", "Bearer " + otherSecret, http.StatusUnauthorized},
		{"garbage", "Bearer not.a.token", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, c := runTriggerAuth(t, testSecret, tt.header)
			assert.Equal(t, tt.want, rec.Code)
			if tt.want == http.StatusNoContent {
				assert.Equal(t, "functions", c.Get("triggerSource"))
			}
		})
	}
}

func TestTriggerAuthDisabledWithoutSecret(t *testing.T) {
	rec, _ := runTriggerAuth(t, "", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestParseTriggerTokenRejects(t *testing.T) {
	sign := func(claims TriggerClaims) string {
		raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
		require.NoError(t, err)
		return raw
	}

	expired := sign(TriggerClaims{Source: "functions", StandardClaims: jwt.StandardClaims{ExpiresAt: time.Now().Add(-time.Minute).Unix()}})
	_, err := ParseTriggerToken(testSecret, expired)
	assert.Error(t, err)

	notYet := sign(TriggerClaims{Source: "functions", StandardClaims: jwt.StandardClaims{NotBefore: time.Now().Add(time.Hour).Unix()}})
	_, err = ParseTriggerToken(testSecret, notYet)
	assert.Error(t, err)

	noSource := sign(TriggerClaims{})
	_, err = ParseTriggerToken(testSecret, noSource)
	assert.Error(t, err)

	_, err = GenerateTriggerToken("", "functions", time.Hour)
	assert.Error(t, err)
}
