package security

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/topconlabs/topcon-blog/internal/config"
)

// ErrInvalidToken is returned for any token validation failure. The reason
// (bad signature, expired, wrong issuer or audience, malformed) is never
// exposed to callers.
var ErrInvalidToken = errors.New("invalid token")

// UserClaims are the JWT claims carried by issued bearer tokens.
type UserClaims struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// UserID parses the subject claim as the user ID, zero when absent.
func (c *UserClaims) UserID() uint64 {
	id, err := strconv.ParseUint(c.Subject, 10, 64)
	if err != nil {
		return 0
	}
	return id
}

// IssueUserToken signs a token for the user with the configured secret,
// issuer, audience, and expiry.
func IssueUserToken(cfg config.JWTConfig, userID uint64, email, name, role string) (string, error) {
	now := time.Now().UTC()
	claims := UserClaims{
		Email: email,
		Name:  name,
		Role:  role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(userID, 10),
			Issuer:    cfg.Issuer,
			Audience:  jwt.ClaimStrings{cfg.Audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(cfg.Expiry)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(cfg.Secret))
}

// ParseUserToken verifies signature, issuer, audience, and expiry, and
// returns the decoded claims.
func ParseUserToken(cfg config.JWTConfig, tokenString string) (*UserClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &UserClaims{},
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, ErrInvalidToken
			}
			return []byte(cfg.Secret), nil
		},
		jwt.WithIssuer(cfg.Issuer),
		jwt.WithAudience(cfg.Audience),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*UserClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
