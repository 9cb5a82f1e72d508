package middleware

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/you/authgate/internal/metrics"
)

// EdgeGate is the cheap pre-filter that runs on every request. On protected
// path prefixes it requires the session cookie to be present and token-shaped
// and nothing more: no signature check, no store round trip. The page gate
// behind it remains the authoritative check.
type EdgeGate struct {
	prefixes   []string
	cookieName string
	signInPath string
	recorder   metrics.Recorder
}

// NewEdgeGate creates the edge gate middleware wrapper. recorder may be nil.
func NewEdgeGate(cookieName, signInPath string, prefixes []string, recorder metrics.Recorder) *EdgeGate {
	return &EdgeGate{
		prefixes:   prefixes,
		cookieName: cookieName,
		signInPath: signInPath,
		recorder:   recorder,
	}
}

// Filter returns the gin middleware function.
func (g *EdgeGate) Filter() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if !g.protected(path) {
			c.Next()
			return
		}

		cookie, err := c.Cookie(g.cookieName)
		if err != nil || !tokenShaped(cookie) {
			if g.recorder != nil {
				g.recorder.RecordEdgeDecision(false)
			}
			redirect := g.signInPath + "?callbackUrl=" + url.QueryEscape(path)
			c.Redirect(http.StatusSeeOther, redirect)
			c.Abort()
			return
		}

		if g.recorder != nil {
			g.recorder.RecordEdgeDecision(true)
		}
		c.Next()
	}
}

func (g *EdgeGate) protected(path string) bool {
	for _, prefix := range g.prefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
		// A prefix of "/user/" also protects "/user" itself.
		if trimmed := strings.TrimSuffix(prefix, "/"); trimmed != "" && path == trimmed {
			return true
		}
	}
	return false
}

// tokenShaped reports whether the cookie value is structurally a signed
// token: three non-empty dot-separated segments. Cryptographic validity is
// deliberately not checked here.
func tokenShaped(token string) bool {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return false
	}
	for _, part := range parts {
		if part == "" {
			return false
		}
	}
	return true
}
