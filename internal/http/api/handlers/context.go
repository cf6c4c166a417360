package handlers

import "github.com/gin-gonic/gin"

// Context keys set by the auth middleware.
const (
	CtxUserID   = "userID"
	CtxUserRole = "userRole"
)

// getUserID returns the authenticated caller's user ID, zero when absent.
func getUserID(c *gin.Context) uint64 {
	value, ok := c.Get(CtxUserID)
	if !ok {
		return 0
	}
	id, ok := value.(uint64)
	if !ok {
		return 0
	}
	return id
}
