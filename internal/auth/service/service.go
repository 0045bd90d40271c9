// Package service implements operator authentication against the configured admin credentials.
package service

import (
	"context"
	"crypto/subtle"
	"time"

	"leadcall_backend/platform/apperr"
	"leadcall_backend/platform/config"
	"leadcall_backend/platform/httpkit"
	"leadcall_backend/platform/logger"

	"golang.org/x/crypto/bcrypt"
)

const msgInvalidCredentials = "Invalid credentials"

// Session is an issued operator session.
type Session struct {
	Username  string
	Token     string
	ExpiresAt time.Time
}

// Service checks credentials and issues session tokens.
type Service struct {
	cfg config.AuthConfig
	log *logger.Logger
	now func() time.Time
}

// New creates the auth service.
func New(cfg config.AuthConfig, log *logger.Logger) *Service {
	return &Service{cfg: cfg, log: log, now: time.Now}
}

// Login verifies the operator's credentials and returns a signed session.
func (s *Service) Login(ctx context.Context, username, password string) (Session, error) {
	if !s.checkCredentials(username, password) {
		s.log.WithContext(ctx).AuthEvent("login", username, false, "invalid credentials")
		return Session{}, apperr.Unauthorized(msgInvalidCredentials)
	}

	token, expiresAt, err := httpkit.IssueSessionToken(s.cfg, username, s.now())
	if err != nil {
		return Session{}, apperr.Wrap(apperr.KindInternal, "failed to issue session", err)
	}

	s.log.WithContext(ctx).AuthEvent("login", username, true, "")
	return Session{Username: username, Token: token, ExpiresAt: expiresAt}, nil
}

// checkCredentials compares in constant time so the response timing does not leak which field was wrong.
func (s *Service) checkCredentials(username, password string) bool {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(s.cfg.GetAdminUsername())) == 1

	var passOK bool
	if hash := s.cfg.GetAdminPasswordHash(); hash != "" {
		passOK = bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
	} else {
		passOK = subtle.ConstantTimeCompare([]byte(password), []byte(s.cfg.GetAdminPassword())) == 1
	}

	return userOK && passOK
}
