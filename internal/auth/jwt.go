package auth

import (
	"errors"
	"time"

	"cloud-drive/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

const (
	issuer         = "cloud-drive"
	accessTokenTTL = 24 * time.Hour
	blobAudience   = "blob"
)

var ErrWrongTokenKind = errors.New("token is not valid for this use")

type AppClaims struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// BlobClaims authorize reading one blob key without a session.
type BlobClaims struct {
	Key string `json:"key"`
	jwt.RegisteredClaims
}

func GenerateJWT(user *models.User, secret string) (string, error) {
	now := time.Now()
	claims := &AppClaims{
		UserID:   user.ID,
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(accessTokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

func VerifyJWT(tokenString, secret string) (*AppClaims, error) {
	claims := &AppClaims{}
	if err := parse(tokenString, secret, claims); err != nil {
		return nil, err
	}
	if len(claims.Audience) > 0 {
		return nil, ErrWrongTokenKind
	}
	return claims, nil
}

func GenerateBlobToken(key, secret string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &BlobClaims{
		Key: key,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    issuer,
			Audience:  jwt.ClaimStrings{blobAudience},
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// VerifyBlobToken returns the blob key the token grants access to.
func VerifyBlobToken(tokenString, secret string) (string, error) {
	claims := &BlobClaims{}
	if err := parse(tokenString, secret, claims, jwt.WithAudience(blobAudience)); err != nil {
		return "", err
	}
	if claims.Key == "" {
		return "", ErrWrongTokenKind
	}
	return claims.Key, nil
}

func parse(tokenString, secret string, claims jwt.Claims, opts ...jwt.ParserOption) error {
	opts = append(opts, jwt.WithIssuer(issuer))
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(secret), nil
	}, opts...)
	if err != nil {
		return err
	}
	if !token.Valid {
		return jwt.ErrTokenInvalidClaims
	}
	return nil
}
