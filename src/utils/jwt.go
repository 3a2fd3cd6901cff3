package utils

import (
	"crypto/rand"
	"encoding/hex"
	"time"

	"Backend-Feedback/src/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type JWTClaims struct {
	UserID       string `json:"userId"`
	Email        string `json:"email"`
	Role         string `json:"role"`
	Department   string `json:"department"`
	AcademicYear string `json:"academicYear,omitempty"`
	jwt.RegisteredClaims
}

// Identity turns verified claims back into the caller identity.
func (c *JWTClaims) Identity() (models.Identity, error) {
	uid, err := primitive.ObjectIDFromHex(c.UserID)
	if err != nil {
		return models.Identity{}, errors.New("token carries an invalid userId")
	}
	role, ok := models.ParseRole(c.Role)
	if !ok {
		return models.Identity{}, errors.New("token carries an unknown role")
	}
	id := models.Identity{
		UserID:     uid,
		Email:      c.Email,
		Role:       role,
		Department: models.Department(c.Department),
	}
	if c.AcademicYear != "" {
		if year, err := primitive.ObjectIDFromHex(c.AcademicYear); err == nil {
			id.AcademicYear = year
		}
	}
	return id, nil
}

// ExpiresIn is the remaining lifetime, zero once expired.
func (c *JWTClaims) ExpiresIn() time.Duration {
	if c.ExpiresAt == nil {
		return 0
	}
	left := time.Until(c.ExpiresAt.Time)
	if left < 0 {
		return 0
	}
	return left
}

// TokenManager signs access and refresh tokens with separate secrets.
type TokenManager struct {
	accessSecret  []byte
	refreshSecret []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

func NewTokenManager(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *TokenManager {
	if accessSecret == "" {
		accessSecret = "your_secret_key" // fallback for development
	}
	if refreshSecret == "" {
		refreshSecret = "your_refresh_secret_key"
	}
	return &TokenManager{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		AccessTTL:     accessTTL,
		RefreshTTL:    refreshTTL,
	}
}

func (m *TokenManager) claimsFor(identity models.Identity, ttl time.Duration) JWTClaims {
	now := time.Now()
	claims := JWTClaims{
		UserID:     identity.UserID.Hex(),
		Email:      identity.Email,
		Role:       string(identity.Role),
		Department: string(identity.Department),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.UserID.Hex(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        GenerateRandomString(16),
		},
	}
	if !identity.AcademicYear.IsZero() {
		claims.AcademicYear = identity.AcademicYear.Hex()
	}
	return claims
}

func (m *TokenManager) GenerateAccessToken(identity models.Identity) (string, error) {
	claims := m.claimsFor(identity, m.AccessTTL)
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.accessSecret)
}

func (m *TokenManager) GenerateRefreshToken(identity models.Identity) (string, error) {
	claims := m.claimsFor(identity, m.RefreshTTL)
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.refreshSecret)
}

func (m *TokenManager) ParseAccessToken(tokenStr string) (*JWTClaims, error) {
	return parseJWT(tokenStr, m.accessSecret)
}

func (m *TokenManager) ParseRefreshToken(tokenStr string) (*JWTClaims, error) {
	return parseJWT(tokenStr, m.refreshSecret)
}

func parseJWT(tokenStr string, secret []byte) (*JWTClaims, error) {
	if tokenStr == "" {
		return nil, errors.New("empty token string")
	}

	token, err := jwt.ParseWithClaims(tokenStr, &JWTClaims{}, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, errors.Wrap(err, "token parsing failed")
	}
	if token == nil {
		return nil, errors.New("token parsing failed")
	}

	claims, ok := token.Claims.(*JWTClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}

// GenerateRandomString generates a random hex string of specified length
func GenerateRandomString(length int) string {
	bytes := make([]byte, length/2)
	if _, err := rand.Read(bytes); err != nil {
		return ""
	}
	return hex.EncodeToString(bytes)
}
