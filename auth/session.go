package auth

import (
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	CookieName      = "casino_session"
	TokenExpiration = 24 * time.Hour
	tokenIssuer     = "minicasino"
)

var (
	ErrInvalidToken = errors.New("invalid or expired token")
	ErrMissingToken = errors.New("missing authentication token")
)

// Claims is the session token payload
type Claims struct {
	AccountID string `json:"account_id"`
	jwt.RegisteredClaims
}

// SessionManager issues and verifies signed session cookies
type SessionManager struct {
	secretKey    []byte
	cookieSecure bool
	now          func() time.Time
}

// NewSessionManager creates a session manager signing with secret.
// cookieSecure should be true whenever the site is served over HTTPS.
func NewSessionManager(secret string, cookieSecure bool) *SessionManager {
	return &SessionManager{
		secretKey:    []byte(secret),
		cookieSecure: cookieSecure,
		now:          time.Now,
	}
}

// GenerateToken signs a session token for the account
func (s *SessionManager) GenerateToken(accountID uuid.UUID) (string, error) {
	now := s.now()
	claims := Claims{
		AccountID: accountID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenExpiration)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    tokenIssuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secretKey)
}

// ValidateToken verifies the signature and expiry of a token
func (s *SessionManager) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secretKey, nil
	},
		jwt.WithIssuer(tokenIssuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Issue sets a fresh session cookie for the account
func (s *SessionManager) Issue(w http.ResponseWriter, accountID uuid.UUID) error {
	token, err := s.GenerateToken(accountID)
	if err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.cookieSecure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(TokenExpiration.Seconds()),
	})
	return nil
}

// Clear expires the session cookie
func (s *SessionManager) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   s.cookieSecure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}

// AccountID returns the account carried by the request's session cookie
func (s *SessionManager) AccountID(r *http.Request) (uuid.UUID, error) {
	cookie, err := r.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		return uuid.Nil, ErrMissingToken
	}

	claims, err := s.ValidateToken(cookie.Value)
	if err != nil {
		return uuid.Nil, err
	}

	id, err := uuid.Parse(claims.AccountID)
	if err != nil {
		return uuid.Nil, ErrInvalidToken
	}
	return id, nil
}
