package httpkit

import (
	"errors"
	"strings"
	"time"

	"leadcall_backend/platform/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const sessionTokenType = "session"

var errInvalidSession = errors.New(errInvalidToken)

// IssueSessionToken signs a session token for the operator.
func IssueSessionToken(cfg config.SessionConfig, username string, now time.Time) (string, time.Time, error) {
	expiresAt := now.Add(cfg.GetSessionTTL())
	claims := jwt.MapClaims{
		"sub":  username,
		"type": sessionTokenType,
		"jti":  uuid.NewString(),
		"iat":  now.Unix(),
		"exp":  expiresAt.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(cfg.GetSessionSecret()))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// ParseSessionToken validates a session token and returns the operator username.
func ParseSessionToken(cfg config.SessionConfig, rawToken string) (string, error) {
	parsed, err := jwt.Parse(rawToken, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return []byte(cfg.GetSessionSecret()), nil
	})
	if err != nil || !parsed.Valid {
		return "", errInvalidSession
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return "", errInvalidSession
	}
	if tokenType, _ := claims["type"].(string); tokenType != sessionTokenType {
		return "", errInvalidSession
	}

	username, _ := claims["sub"].(string)
	if strings.TrimSpace(username) == "" {
		return "", errInvalidSession
	}
	return username, nil
}
