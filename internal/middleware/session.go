package middleware

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	"github.com/noah-isme/codecraft-workspace/internal/utils"
)

const (
	localUserID       = "user_id"
	localSessionToken = "session_token"
)

// SessionConfig controls how the platform session token is read.
type SessionConfig struct {
	// CookieName is the cookie the platform stores its token in.
	CookieName string
	// Secret enables HS256 signature checks. Without it claims are read unverified and the
	// platform remains the authority on the token.
	Secret string
}

// Session resolves the caller from the platform token. Requests without a token continue
// anonymously; a token that fails verification is rejected.
func Session(cfg SessionConfig) fiber.Handler {
	cookieName := strings.TrimSpace(cfg.CookieName)
	if cookieName == "" {
		cookieName = "token"
	}

	return func(c *fiber.Ctx) error {
		tokenString := bearerToken(c.Get(fiber.HeaderAuthorization))
		if tokenString == "" {
			tokenString = strings.TrimSpace(c.Cookies(cookieName))
		}
		if tokenString == "" {
			return c.Next()
		}

		claims, err := parseClaims(tokenString, cfg.Secret)
		if err != nil {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid session token")
		}

		c.Locals(localSessionToken, tokenString)
		if userID := extractUserIDFromClaims(claims); userID != "" {
			c.Locals(localUserID, userID)
		}

		return c.Next()
	}
}

// UserID returns the caller resolved by Session, or an empty string for anonymous requests.
func UserID(c *fiber.Ctx) string {
	if value, ok := c.Locals(localUserID).(string); ok {
		return value
	}
	return ""
}

// SessionToken returns the raw platform token of the caller.
func SessionToken(c *fiber.Ctx) string {
	if value, ok := c.Locals(localSessionToken).(string); ok {
		return value
	}
	return ""
}

func bearerToken(authorization string) string {
	const bearer = "bearer "
	if len(authorization) < len(bearer) || !strings.EqualFold(authorization[:len(bearer)], bearer) {
		return ""
	}
	return strings.TrimSpace(authorization[len(bearer):])
}

func parseClaims(tokenString, secret string) (jwt.MapClaims, error) {
	claims := jwt.MapClaims{}

	if secret == "" {
		if _, _, err := jwt.NewParser().ParseUnverified(tokenString, claims); err != nil {
			// Opaque tokens are still forwarded to the platform.
			return jwt.MapClaims{}, nil
		}
		return claims, nil
	}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}

func extractUserIDFromClaims(claims jwt.MapClaims) string {
	for _, key := range []string{"sub", "user_id", "_id", "id"} {
		value, ok := claims[key]
		if !ok {
			continue
		}
		switch v := value.(type) {
		case string:
			if trimmed := strings.TrimSpace(v); trimmed != "" {
				return trimmed
			}
		case float64:
			if v >= 0 {
				return strconv.FormatUint(uint64(v), 10)
			}
		}
	}
	return ""
}
