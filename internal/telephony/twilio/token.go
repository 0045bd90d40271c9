package twilio

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenTTL is the lifetime of issued access tokens.
const TokenTTL = time.Hour

var (
	// ErrNotConfigured is returned when access tokens cannot be issued.
	ErrNotConfigured = errors.New("twilio not configured")
	// ErrRESTNotConfigured is returned when the REST API credentials are missing.
	ErrRESTNotConfigured = errors.New("twilio REST API not configured")
)

type voiceIncoming struct {
	Allow bool `json:"allow"`
}

type voiceOutgoing struct {
	ApplicationSID string `json:"application_sid"`
}

type voiceGrant struct {
	Incoming voiceIncoming `json:"incoming"`
	Outgoing voiceOutgoing `json:"outgoing"`
}

type grants struct {
	Identity string     `json:"identity"`
	Voice    voiceGrant `json:"voice"`
}

type accessTokenClaims struct {
	jwt.RegisteredClaims
	Grants grants `json:"grants"`
}

// AccessToken issues a voice access token for identity. Incoming calls are not allowed.
func (c *Client) AccessToken(identity string) (string, error) {
	if !c.Configured() {
		return "", ErrNotConfigured
	}

	now := c.now()
	claims := accessTokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        fmt.Sprintf("%s-%d", c.apiKeySID, now.Unix()),
			Issuer:    c.apiKeySID,
			Subject:   c.accountSID,
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenTTL)),
		},
		Grants: grants{
			Identity: identity,
			Voice: voiceGrant{
				Incoming: voiceIncoming{Allow: false},
				Outgoing: voiceOutgoing{ApplicationSID: c.twimlAppSID},
			},
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	token.Header["cty"] = "twilio-fpa;v=1"
	if c.region != "" {
		token.Header["twr"] = c.region
	}

	signed, err := token.SignedString([]byte(c.apiKeySecret))
	if err != nil {
		return "", fmt.Errorf("sign access token: %w", err)
	}
	return signed, nil
}
