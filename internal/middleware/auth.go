package middleware

import (
	"net/http"
	"net/url"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"hondana/internal/thread"
)

const CheckUserKey = "user"
const UnreadCountKey = "unread_count"

// AuthRequired ensures a user is logged in, bouncing to the login page with
// a next parameter so the original destination survives the round trip.
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		if session.Get("user") == nil {
			c.Redirect(http.StatusFound, "/login?next="+url.QueryEscape(c.Request.URL.RequestURI()))
			c.Abort()
			return
		}
		c.Next()
	}
}

// LoadUser puts the session username and their unread-notification count
// into the request context for every page render.
func LoadUser(threads *thread.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		if username, ok := session.Get("user").(string); ok && username != "" {
			c.Set(CheckUserKey, username)

			count, err := threads.UnreadCount(username)
			if err == nil {
				c.Set(UnreadCountKey, count)
			}
		}
		c.Next()
	}
}
