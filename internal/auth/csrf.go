package auth

import (
	"encoding/hex"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/csrf"

	"github.com/mrlokans/commentbank/internal/entities"
)

// CSRFTokenHeader carries the token on cookie-authenticated API calls.
const CSRFTokenHeader = "X-CSRF-Token"

const contextKeyCSRFToken = "csrf_token"

// TokenValidator resolves bearer tokens; *Service implements it.
type TokenValidator interface {
	ValidateToken(token string) (*entities.Teacher, error)
}

// CSRFKey turns AUTH_SESSION_SECRET into a 32-byte key. A hex secret is
// decoded, anything else is used as raw bytes. An empty secret yields a
// random key, which invalidates CSRF cookies on every restart.
func CSRFKey(secret string) ([]byte, error) {
	if secret == "" {
		generated, err := GenerateSessionSecret()
		if err != nil {
			return nil, err
		}
		secret = generated
	}
	if key, err := hex.DecodeString(secret); err == nil && len(key) == 32 {
		return key, nil
	}
	key := []byte(secret)
	if len(key) < 32 {
		padded := make([]byte, 32)
		copy(padded, key)
		return padded, nil
	}
	return key[:32], nil
}

// CSRFMiddleware protects cookie-authenticated mutations. Requests carrying
// a valid bearer token are exempt since browsers never attach one implicitly.
func CSRFMiddleware(secret []byte, secure bool, tokens TokenValidator) gin.HandlerFunc {
	protect := csrf.Protect(
		secret,
		csrf.Secure(secure),
		csrf.HttpOnly(true),
		csrf.SameSite(csrf.SameSiteStrictMode),
		csrf.Path("/"),
		csrf.RequestHeader(CSRFTokenHeader),
		csrf.ErrorHandler(http.HandlerFunc(csrfErrorHandler)),
	)

	return func(c *gin.Context) {
		if hasValidBearer(c, tokens) {
			c.Next()
			return
		}

		passed := false
		handler := protect(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			passed = true
			c.Set(contextKeyCSRFToken, csrf.Token(r))
			c.Request = r
			c.Next()
		}))
		handler.ServeHTTP(c.Writer, c.Request)
		if !passed {
			c.Abort()
		}
	}
}

func csrfErrorHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusForbidden)
	_, _ = w.Write([]byte(`{"error":"CSRF token invalid or missing","code":"csrf_failed"}`))
}

func hasValidBearer(c *gin.Context, tokens TokenValidator) bool {
	token, ok := bearerToken(c.GetHeader("Authorization"))
	if !ok || tokens == nil {
		return false
	}
	_, err := tokens.ValidateToken(token)
	return err == nil
}

// bearerToken extracts the token from an "Authorization: Bearer x" header.
func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// GetCSRFToken returns the masked token issued for this request, if any.
func GetCSRFToken(c *gin.Context) string {
	return c.GetString(contextKeyCSRFToken)
}
