package middleware

import (
	"github.com/gin-gonic/gin"

	"lumenlearn/api/telemetry"
)

// PageVisit is the navigation hook: every request passing through it
// performs the page-visit-logger step for the current path. Requests that
// land before the visitor profile has resolved are dropped by the
// pipeline, and logging never delays or fails the response.
func PageVisit(p *telemetry.Pipeline) gin.HandlerFunc {
	return func(c *gin.Context) {
		p.LogVisit(c.Request.URL.Path)
		c.Next()
	}
}
