package adaptor

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/ponyo877/livechat/server/domain"
)

const (
	DefaultSessionCookie = "__session"
	sessionIssuer        = "livechat"
	bearerPrefix         = "Bearer "
)

type sessionClaims struct {
	jwt.RegisteredClaims
}

// SessionStore issues and verifies the signed token that carries a user's
// display name between requests.
type SessionStore struct {
	secret     []byte
	maxAge     time.Duration
	cookieName string
	secure     bool
}

func NewSessionStore(secret string, maxAge time.Duration, cookieName string, secure bool) *SessionStore {
	if cookieName == "" {
		cookieName = DefaultSessionCookie
	}
	return &SessionStore{
		secret:     []byte(secret),
		maxAge:     maxAge,
		cookieName: cookieName,
		secure:     secure,
	}
}

func (s *SessionStore) Token(user string) (string, error) {
	now := time.Now()
	claims := &sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    sessionIssuer,
			Subject:   user,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.maxAge)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return token, nil
}

func (s *SessionStore) Verify(token string) (string, error) {
	parsed, err := jwt.ParseWithClaims(token, &sessionClaims{}, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(sessionIssuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrUnauthenticated, err)
	}
	claims, ok := parsed.Claims.(*sessionClaims)
	if !ok || !parsed.Valid || claims.Subject == "" {
		return "", domain.ErrUnauthenticated
	}
	return claims.Subject, nil
}

func (s *SessionStore) Issue(w http.ResponseWriter, user string) error {
	token, err := s.Token(user)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     s.cookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(s.maxAge.Seconds()),
		Expires:  time.Now().Add(s.maxAge),
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

func (s *SessionStore) Destroy(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// User resolves the request's session from the cookie, falling back to an
// Authorization bearer header.
func (s *SessionStore) User(r *http.Request) (string, error) {
	if cookie, err := r.Cookie(s.cookieName); err == nil && cookie.Value != "" {
		return s.Verify(cookie.Value)
	}
	if token, ok := BearerToken(r.Header.Get("Authorization")); ok {
		return s.Verify(token)
	}
	return "", domain.ErrUnauthenticated
}

func BearerToken(header string) (string, bool) {
	if !strings.HasPrefix(header, bearerPrefix) {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, bearerPrefix))
	return token, token != ""
}

func IsUnauthenticated(err error) bool {
	return errors.Is(err, domain.ErrUnauthenticated)
}
