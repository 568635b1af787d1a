package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mentorbase/mentor-marketplace/internal/config"
)

// CronAuthMiddleware rejects sweep-job invocations that do not carry the
// operator-supplied bearer secret. Checked before any work is attempted.
func CronAuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		if cfg.CronSecret == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"ok": false, "error": gin.H{"code": "cron_secret_not_configured"}})
			return
		}

		authHeader := c.GetHeader("Authorization")
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"ok": false, "error": gin.H{"code": "invalid_authorization_header"}})
			return
		}

		if subtle.ConstantTimeCompare([]byte(parts[1]), []byte(cfg.CronSecret)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"ok": false, "error": gin.H{"code": "invalid_cron_secret"}})
			return
		}

		c.Next()
	}
}
