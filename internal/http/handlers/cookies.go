package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// setSessionCookie writes the httpOnly session cookie. The cookie name is
// the single configuration constant shared with the edge gate; no other
// session cookies exist to clear.
func setSessionCookie(c *gin.Context, name, token string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(name, token, maxAge, "/", "", false, true)
}

// clearSessionCookie expires the session cookie on the client.
func clearSessionCookie(c *gin.Context, name string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(name, "", -1, "/", "", false, true)
}
