package auth

import "github.com/gin-gonic/gin"

const identityKey = "identity"

// SetIdentity stores the authenticated caller on the request context
func SetIdentity(c *gin.Context, identity *Identity) {
	c.Set(identityKey, identity)
}

// IdentityFrom returns the caller set by the session middleware, or nil
func IdentityFrom(c *gin.Context) *Identity {
	value, exists := c.Get(identityKey)
	if !exists {
		return nil
	}
	identity, _ := value.(*Identity)
	return identity
}
