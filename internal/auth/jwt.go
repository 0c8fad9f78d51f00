package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/sakif/waste-portal/internal/model"
)

const issuer = "waste-portal"

// tokenLifetime is how long an issued session token stays valid.
const tokenLifetime = 24 * time.Hour

// TokenService signs and verifies the session tokens stored in the
// auth cookie. HS256 throughout; the same secret signs and verifies.
type TokenService struct {
	secret []byte
}

// NewTokenService creates a TokenService. The secret should be at least
// 32 bytes of random data in production; anything under 16 is refused.
func NewTokenService(secret string) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: JWT secret must be at least 16 characters")
	}
	return &TokenService{secret: []byte(secret)}, nil
}

// claims carries the user ID in the standard "sub" claim and the role in
// a private claim. The role in the token is a routing hint only — the
// database row remains the authority when it matters.
type claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Generate creates and signs a session token for the given user.
func (s *TokenService) Generate(userID int64, role model.Role) (string, error) {
	return s.GenerateWithDuration(userID, role, tokenLifetime)
}

// GenerateWithDuration creates a token with a custom expiry. Used in
// tests to produce already-expired tokens.
func (s *TokenService) GenerateWithDuration(userID int64, role model.Role, d time.Duration) (string, error) {
	now := time.Now()

	c := claims{
		Role: string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(d)),
			Issuer:    issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}
	return signed, nil
}

// Validate parses and verifies a token string, returning the user ID and
// role it carries. Restricting the accepted methods to HS256 blocks
// algorithm-confusion tokens; the issuer check blocks tokens minted by
// other applications sharing the secret.
func (s *TokenService) Validate(tokenStr string) (int64, model.Role, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&claims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("auth: unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return 0, "", fmt.Errorf("auth: token expired")
		}
		return 0, "", fmt.Errorf("auth: invalid token: %w", err)
	}

	c, ok := token.Claims.(*claims)
	if !ok || !token.Valid {
		return 0, "", fmt.Errorf("auth: invalid token claims")
	}

	userID, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil || userID <= 0 {
		return 0, "", fmt.Errorf("auth: token has no usable subject")
	}

	role := model.Role(c.Role)
	if !role.Valid() {
		return 0, "", fmt.Errorf("auth: token carries unknown role %q", c.Role)
	}

	return userID, role, nil
}
