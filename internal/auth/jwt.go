package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/lookprice/lookprice/internal/models"
)

// Claims is the payload inside every bearer token.
//
// A token is the only credential presented after login, so it carries
// everything the authorization gate needs: who (UserID), what they may do
// (Role), and which tenant they belong to (StoreID — uuid.Nil for
// superadmins, whose accounts own no store).
//
// Why embed jwt.RegisteredClaims?
//   - Standard fields for free: ExpiresAt, IssuedAt, Issuer.
//   - Verification is stateless — signature plus expiry, no store lookup —
//     so expiry has to live in the token itself.
type Claims struct {
	UserID  uuid.UUID   `json:"user_id"`
	StoreID uuid.UUID   `json:"store_id"`
	Role    models.Role `json:"role"`
	jwt.RegisteredClaims
}

// GenerateToken signs a token for a user. ttl bounds how long the session
// lives; there is no server-side revocation, so validity is purely a function
// of the signature and the expiry.
func GenerateToken(userID, storeID uuid.UUID, role models.Role, secret string, ttl time.Duration) (string, error) {
	now := time.Now()

	claims := Claims{
		UserID:  userID,
		StoreID: storeID,
		Role:    role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    "lookprice",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return signed, nil
}

// ParseToken validates a token string and extracts the claims.
//
// It verifies the signature, the expiry, and that the signing method is HMAC
// — rejecting "none"/RSA tokens up front closes the classic algorithm
// confusion attack. It never touches the database.
func ParseToken(tokenString, secret string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(secret), nil
		},
	)
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}
	if !claims.Role.Valid() {
		return nil, fmt.Errorf("unknown role in token: %q", claims.Role)
	}

	return claims, nil
}
