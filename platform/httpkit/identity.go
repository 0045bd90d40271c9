// Package httpkit provides HTTP utilities including identity abstraction.
package httpkit

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Identity represents the signed-in operator.
// Handlers read it without depending on how the session was transported.
type Identity interface {
	// Username returns the operator's login name.
	Username() string
	// IsAuthenticated returns true if a valid session was presented.
	IsAuthenticated() bool
}

type identity struct {
	username      string
	authenticated bool
}

func (i *identity) Username() string {
	return i.username
}

func (i *identity) IsAuthenticated() bool {
	return i.authenticated
}

// GetIdentity extracts the Identity from a Gin context.
// Returns an unauthenticated identity if no session is present.
func GetIdentity(c *gin.Context) Identity {
	value, ok := c.Get(ContextOperatorKey)
	if !ok {
		return &identity{}
	}
	username, ok := value.(string)
	if !ok || username == "" {
		return &identity{}
	}
	return &identity{username: username, authenticated: true}
}

// MustGetIdentity extracts the Identity from a Gin context.
// If the operator is not authenticated, it aborts with 401 Unauthorized and returns nil.
func MustGetIdentity(c *gin.Context) Identity {
	id := GetIdentity(c)
	if !id.IsAuthenticated() {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return nil
	}
	return id
}
