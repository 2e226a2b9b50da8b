package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"tourguard/models"
)

// JWTService verifies bearer tokens minted by the identity provider. Token
// issuance is kept for tooling and tests; no HTTP route hands tokens out.
type JWTService struct {
	secretKey      []byte
	issuer         string
	accessTokenTTL time.Duration
}

type Claims struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	Name   string `json:"name"`
	jwt.RegisteredClaims
}

func NewJWTService(secretKey, issuer string) *JWTService {
	return &JWTService{
		secretKey:      []byte(secretKey),
		issuer:         issuer,
		accessTokenTTL: 15 * time.Minute,
	}
}

func (j *JWTService) GenerateToken(identity models.UserIdentity, ttl time.Duration) (string, error) {
	if ttl == 0 {
		ttl = j.accessTokenTTL
	}
	now := time.Now()

	claims := Claims{
		UserID: identity.ID,
		Email:  identity.Email,
		Role:   string(identity.Role),
		Name:   identity.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    j.issuer,
			Subject:   identity.ID,
			ID:        uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(j.secretKey)
}

func (j *JWTService) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return j.secretKey, nil
	}, jwt.WithIssuer(j.issuer))

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}

	return nil, errors.New("invalid token")
}

// Authenticate resolves a bearer token to the caller's identity.
func (j *JWTService) Authenticate(tokenString string) (*models.UserIdentity, error) {
	claims, err := j.ValidateToken(tokenString)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, NewUnauthenticatedError("Token has expired")
		}
		return nil, NewUnauthenticatedError("Invalid token")
	}

	role := models.Role(claims.Role)
	if claims.UserID == "" || !role.Valid() {
		return nil, NewUnauthenticatedError("Invalid token claims")
	}

	return &models.UserIdentity{
		ID:    claims.UserID,
		Email: claims.Email,
		Role:  role,
		Name:  claims.Name,
	}, nil
}
