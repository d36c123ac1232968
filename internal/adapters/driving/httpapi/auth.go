package httpapi

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

// DefaultAPIKeyHash is the sha256 digest of the demo key "demo-key-123".
// It is accepted when no key hashes are configured.
//
//nolint:gosec // G101: a digest, not a credential.
const DefaultAPIKeyHash = "a52782e3a2d4dd2f95f640b9abfb3b2a6b8e722c65f55be830f6e5f619f7f873"

// Auth failure messages.
const (
	msgKeyRequired = "API key required"
	msgKeyInvalid  = "Invalid API key"
)

// HashKey returns the hex sha256 digest of an API key.
func HashKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}

// Authenticator checks bearer tokens against key hashes and a JWT secret.
type Authenticator struct {
	hashes [][]byte
	secret []byte
}

// NewAuthenticator creates an authenticator. With no hashes the demo key
// hash is used. An empty secret disables JWT.
func NewAuthenticator(keyHashes []string, jwtSecret string) *Authenticator {
	if len(keyHashes) == 0 {
		keyHashes = []string{DefaultAPIKeyHash}
	}
	a := &Authenticator{}
	for _, h := range keyHashes {
		h = strings.ToLower(strings.TrimSpace(h))
		if h != "" {
			a.hashes = append(a.hashes, []byte(h))
		}
	}
	if jwtSecret != "" {
		a.secret = []byte(jwtSecret)
	}
	return a
}

// Valid reports whether token is an accepted API key or JWT.
func (a *Authenticator) Valid(token string) bool {
	digest := []byte(HashKey(token))
	for _, h := range a.hashes {
		if subtle.ConstantTimeCompare(digest, h) == 1 {
			return true
		}
	}
	return a.validJWT(token)
}

func (a *Authenticator) validJWT(token string) bool {
	if a.secret == nil || strings.Count(token, ".") != 2 {
		return false
	}
	parsed, err := jwt.Parse(token, func(*jwt.Token) (any, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	return err == nil && parsed.Valid
}

// Middleware rejects requests without an accepted bearer token.
func (a *Authenticator) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := bearerToken(c.Request())
			if token == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, msgKeyRequired)
			}
			if !a.Valid(token) {
				return echo.NewHTTPError(http.StatusUnauthorized, msgKeyInvalid)
			}
			return next(c)
		}
	}
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get(echo.HeaderAuthorization)
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
