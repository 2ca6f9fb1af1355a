package middleware

import (
	"github.com/gin-gonic/gin"

	goGate "github.com/MrEthical07/goGate"
)

// GinGuard adapts Guard to gin. Rejected requests are aborted with the same
// JSON bodies; accepted ones continue with the user in the request context.
func GinGuard(gate *goGate.Gate) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request = c.Request.WithContext(withClientIP(c.Request))
		d := gate.Evaluate(c.Request)
		if !d.Allowed() {
			writeError(c.Writer, d.HTTPStatus())
			c.Abort()
			return
		}
		c.Request = c.Request.WithContext(withDecision(c.Request.Context(), d))
		if d.Status == goGate.DecisionAuthenticated {
			c.Set("user", d.User)
		}
		c.Next()
	}
}
