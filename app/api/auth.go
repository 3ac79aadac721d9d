package api

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/lysyi3m/storyfeed/app/database"
	"github.com/lysyi3m/storyfeed/app/feed"
)

const (
	viewerContextKey = "viewer"
	apiKeyCookie     = "storyfeed_api_key"
)

// credential returns the API secret presented by the request, if any.
func credential(c *gin.Context) string {
	if key := c.GetHeader("api-key"); key != "" {
		return key
	}
	if key := c.GetHeader("X-API-Key"); key != "" {
		return key
	}
	if authHeader := c.GetHeader("Authorization"); strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	}
	if key, err := c.Cookie(apiKeyCookie); err == nil {
		return key
	}
	return ""
}

// viewerMiddleware resolves the request's viewer. Unknown or missing
// credentials leave the viewer anonymous; rejecting them is up to the
// handler.
func viewerMiddleware(users database.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		viewer := feed.Anonymous()

		if key := credential(c); key != "" {
			user, err := users.GetUserByAPISecret(c.Request.Context(), key)
			if err != nil {
				slog.Error("Database error", "operation", "get_user_by_api_secret", "error", err)
				c.AbortWithStatus(http.StatusInternalServerError)
				return
			}
			if user != nil {
				viewer = feed.Viewer{UserID: user.ID, Username: user.Username}
			}
		}

		c.Set(viewerContextKey, viewer)
		c.Next()
	}
}

// requireViewer rejects anonymous requests with 401.
func requireViewer() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !viewerFrom(c).Authenticated() {
			abortUnauthorized(c)
			return
		}
		c.Next()
	}
}

func viewerFrom(c *gin.Context) feed.Viewer {
	if v, ok := c.Get(viewerContextKey); ok {
		if viewer, ok := v.(feed.Viewer); ok {
			return viewer
		}
	}
	return feed.Anonymous()
}

func abortUnauthorized(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error":  "unauthorized",
		"status": http.StatusUnauthorized,
	})
}
