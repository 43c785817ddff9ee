package middleware

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"threadloom/internal/config"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-12345678901234567890123456789012"

func generateToken(t *testing.T, userID string, onboarded bool, exp time.Duration) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub":       userID,
		"onboarded": onboarded,
		"exp":       time.Now().Add(exp).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return s
}

func TestAuthRequired(t *testing.T) {
	app := fiber.New()
	InitMiddleware(&config.Config{JWTSecret: testSecret})

	app.Get("/test", AuthRequired, func(c *fiber.Ctx) error {
		ctxUserID, _ := c.UserContext().Value(UserIDKey).(string)
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"userID":    c.Locals("userID"),
			"ctxUserID": ctxUserID,
		})
	})

	tests := []struct {
		name           string
		authHeader     string
		expectedStatus int
		expectedUserID string
		expectedError  string
	}{
		{
			name:           "Happy Path",
			authHeader:     "Bearer " + generateToken(t, "user-abc", true, time.Hour),
			expectedStatus: http.StatusOK,
			expectedUserID: "user-abc",
		},
		{
			name:           "Missing Header",
			authHeader:     "",
			expectedStatus: http.StatusUnauthorized,
			expectedError:  "Authorization header required",
		},
		{
			name:           "Invalid Format",
			authHeader:     "Basic dXNlcjpwYXNz",
			expectedStatus: http.StatusUnauthorized,
			expectedError:  "Invalid authorization header format",
		},
		{
			name:           "Malformed Token",
			authHeader:     "Bearer malformed.token.here",
			expectedStatus: http.StatusUnauthorized,
			expectedError:  "Invalid or expired token",
		},
		{
			name:           "Expired Token",
			authHeader:     "Bearer " + generateToken(t, "user-abc", true, -time.Hour),
			expectedStatus: http.StatusUnauthorized,
			expectedError:  "Invalid or expired token",
		},
		{
			name:           "Missing Subject",
			authHeader:     "Bearer " + generateSubjectlessToken(t),
			expectedStatus: http.StatusUnauthorized,
			expectedError:  "Invalid token structure - missing subject",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}

			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)

			// Unmarshal the full body so a double-written response
			// (two concatenated JSON objects) fails the test.
			raw, err := io.ReadAll(resp.Body)
			require.NoError(t, err)
			var body map[string]string
			require.NoError(t, json.Unmarshal(raw, &body))

			if tt.expectedStatus == http.StatusOK {
				assert.Equal(t, tt.expectedUserID, body["userID"])
				assert.Equal(t, tt.expectedUserID, body["ctxUserID"])
			} else {
				assert.Equal(t, tt.expectedError, body["error"])
			}
		})
	}
}

func generateSubjectlessToken(t *testing.T) string {
	t.Helper()
	claims := jwt.MapClaims{
		"onboarded": true,
		"exp":       time.Now().Add(time.Hour).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return s
}

func TestOnboardedRequired(t *testing.T) {
	app := fiber.New()
	InitMiddleware(&config.Config{JWTSecret: testSecret})

	app.Post("/write", AuthRequired, OnboardedRequired, func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	req := httptest.NewRequest(http.MethodPost, "/write", nil)
	req.Header.Set("Authorization", "Bearer "+generateToken(t, "user-abc", false, time.Hour))
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	req = httptest.NewRequest(http.MethodPost, "/write", nil)
	req.Header.Set("Authorization", "Bearer "+generateToken(t, "user-abc", true, time.Hour))
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
