package jwt

import (
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	internal_errors "github.com/openreview/openreview-web/shared/errors"
	"github.com/openreview/openreview-web/shared/logger"
)

// AccessTokenCookie is where the OpenReview API stores the signed-in user's token.
const AccessTokenCookie = "openreview.accessToken"

type JwtService interface {
	NewToken(userId string) (string, error)
	DecodeToken(jwtStr string) (*jwt.Token, error)
	UserID(jwtStr string) (string, error)
}

type Jwt struct {
	secretKey string
	ttl       time.Duration
}

func New(secretKey string, ttl time.Duration) JwtService {
	return &Jwt{secretKey, ttl}
}

// NewToken signs a token shaped like the API's: {"user": {"id": ...}, "exp": ...}.
func (j *Jwt) NewToken(userId string) (string, error) {
	claims := jwt.MapClaims{
		"user": map[string]any{"id": userId},
		"exp":  time.Now().Add(j.ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(j.secretKey))
	if err != nil {
		return "", fmt.Errorf("can't create token: %w", err)
	}
	return tokenString, nil
}

func (j *Jwt) DecodeToken(jwtStr string) (*jwt.Token, error) {
	token, err := jwt.Parse(jwtStr, func(token *jwt.Token) (interface{}, error) {
		// Verify signing algorithm
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, &internal_errors.ErrorWithStatusCode{Message: fmt.Sprintf("Unexpected signing method: %v", token.Header["alg"]), StatusCode: http.StatusUnauthorized}
		}
		return []byte(j.secretKey), nil
	})
	if err != nil {
		logger.Log.Debug().Err(err).Msg("access token rejected")
		return nil, &internal_errors.ErrorWithStatusCode{Message: "Invalid token signature", StatusCode: http.StatusUnauthorized}
	}

	if !token.Valid {
		return nil, &internal_errors.ErrorWithStatusCode{Message: "Invalid access token", StatusCode: http.StatusUnauthorized}
	}

	return token, nil
}

// UserID decodes the token and returns its user id.
func (j *Jwt) UserID(jwtStr string) (string, error) {
	token, err := j.DecodeToken(jwtStr)
	if err != nil {
		return "", err
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", errInvalidClaims
	}
	user, ok := claims["user"].(map[string]any)
	if !ok {
		return "", errInvalidClaims
	}
	id, ok := user["id"].(string)
	if !ok || id == "" {
		return "", errInvalidClaims
	}
	return id, nil
}

var errInvalidClaims = &internal_errors.ErrorWithStatusCode{Message: "Invalid token claims", StatusCode: http.StatusUnauthorized}
