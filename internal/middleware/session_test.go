package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func sessionApp(cfg SessionConfig) *fiber.App {
	app := fiber.New()
	app.Use(Session(cfg))
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"user_id": UserID(c), "token": SessionToken(c)})
	})
	return app
}

func decodeSession(t *testing.T, resp *http.Response) map[string]string {
	t.Helper()
	defer resp.Body.Close()
	var payload map[string]string
	require.NoError(t, jsonDecode(resp, &payload))
	return payload
}

func TestSessionAllowsAnonymous(t *testing.T) {
	app := sessionApp(SessionConfig{Secret: "secret"})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	payload := decodeSession(t, resp)
	require.Empty(t, payload["user_id"])
	require.Empty(t, payload["token"])
}

func TestSessionReadsCookie(t *testing.T) {
	token := signToken(t, "secret", jwt.MapClaims{"_id": "64fa01"})
	app := sessionApp(SessionConfig{CookieName: "token", Secret: "secret"})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: token})
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	payload := decodeSession(t, resp)
	require.Equal(t, "64fa01", payload["user_id"])
	require.Equal(t, token, payload["token"])
}

func TestSessionReadsBearerHeader(t *testing.T) {
	token := signToken(t, "secret", jwt.MapClaims{"sub": float64(42)})
	app := sessionApp(SessionConfig{Secret: "secret"})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)

	payload := decodeSession(t, resp)
	require.Equal(t, "42", payload["user_id"])
}

func TestSessionRejectsBadSignature(t *testing.T) {
	token := signToken(t, "other", jwt.MapClaims{"sub": "u1"})
	app := sessionApp(SessionConfig{Secret: "secret"})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestSessionWithoutSecretReadsClaimsUnverified(t *testing.T) {
	token := signToken(t, "platform-only", jwt.MapClaims{"user_id": "u7"})
	app := sessionApp(SessionConfig{})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: token})
	resp, err := app.Test(req)
	require.NoError(t, err)

	payload := decodeSession(t, resp)
	require.Equal(t, "u7", payload["user_id"])
}

func TestSessionForwardsOpaqueToken(t *testing.T) {
	app := sessionApp(SessionConfig{})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: "opaque"})
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	payload := decodeSession(t, resp)
	require.Empty(t, payload["user_id"])
	require.Equal(t, "opaque", payload["token"])
}
