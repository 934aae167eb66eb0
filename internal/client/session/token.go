package session

import (
	"fmt"
	"time"

	"github.com/dmitrijs2005/authflow/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Claims are the access token claims the client reads. The signature is
// not checked on the client; the server remains the authority.
type Claims struct {
	jwt.RegisteredClaims
	UserID uint64 `json:"user_id,omitempty"`
}

// TokenExpiry reads the exp claim of an access token without verifying it.
func TokenExpiry(token string) (time.Time, error) {
	claims := &Claims{}

	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, fmt.Errorf("%w: no exp claim", common.ErrInvalidToken)
	}
	return claims.ExpiresAt.Time, nil
}
