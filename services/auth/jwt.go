package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"sola-donation-api/models"
)

const AccessTokenDuration = 1 * time.Hour

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrTokenExpired       = errors.New("token expired")
	ErrInvalidToken       = errors.New("invalid token")
)

// JWTService authenticates the admin account and issues/validates the tokens
// guarding the admin endpoints.
type JWTService struct {
	secretKey     []byte
	issuer        string
	adminUsername string
	adminPassHash string // hex-encoded SHA-256
}

type Claims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

func NewJWTService(secretKey, issuer, adminUsername, adminPassHash string) *JWTService {
	return &JWTService{
		secretKey:     []byte(secretKey),
		issuer:        issuer,
		adminUsername: adminUsername,
		adminPassHash: adminPassHash,
	}
}

// Authenticate checks the configured admin credentials and returns an access
// token on success.
func (j *JWTService) Authenticate(username, password string) (*models.AuthResponse, error) {
	hasher := sha256.New()
	hasher.Write([]byte(password))
	hashed := hex.EncodeToString(hasher.Sum(nil))

	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(j.adminUsername)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(hashed), []byte(j.adminPassHash)) == 1
	if !userOK || !passOK {
		return nil, ErrInvalidCredentials
	}

	user := models.AuthUser{
		Username: username,
		Role:     "admin",
	}

	token, err := j.GenerateToken(user, AccessTokenDuration)
	if err != nil {
		return nil, fmt.Errorf("error generating access token: %v", err)
	}

	return &models.AuthResponse{
		User:        user,
		AccessToken: token,
		ExpiresIn:   int64(AccessTokenDuration.Seconds()),
	}, nil
}

func (j *JWTService) GenerateToken(user models.AuthUser, duration time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Username: user.Username,
		Role:     user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    j.issuer,
			Subject:   user.Username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(duration)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(j.secretKey)
}

func (j *JWTService) ValidateToken(tokenString string) (*models.AuthUser, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return j.secretKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	return &models.AuthUser{
		Username: claims.Username,
		Role:     claims.Role,
	}, nil
}
