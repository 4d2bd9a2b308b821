package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenService issues and validates the HMAC-signed bearer tokens the
// PrepFlow dashboard uses against the sync API
type TokenService struct {
	secretKey []byte
}

// NewTokenService creates a new token service
func NewTokenService(secretKey []byte) *TokenService {
	return &TokenService{secretKey: secretKey}
}

// IssueToken signs a token for one account
func (s *TokenService) IssueToken(accountID string, role string, ttl time.Duration) (string, error) {
	now := time.Now()

	claims := jwt.MapClaims{
		"account_id": accountID,
		"role":       role,
		"jti":        uuid.NewString(),
		"exp":        now.Add(ttl).Unix(),
		"iat":        now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.secretKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

// ValidateToken parses a bearer token and returns the account claims
func (s *TokenService) ValidateToken(tokenString string) (*JWTAccountClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.MapClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secretKey, nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(*jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}

	accountID, ok := (*claims)["account_id"].(string)
	if !ok || accountID == "" {
		return nil, errors.New("missing or invalid account_id claim")
	}

	role, _ := (*claims)["role"].(string)

	return &JWTAccountClaims{
		AccountUUID: accountID,
		RoleValue:   role,
	}, nil
}
