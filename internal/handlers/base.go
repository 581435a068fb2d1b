package handlers

import (
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"hondana/internal/middleware"
)

// Render helper to inject common variables like 'current user'. Injection
// happens on a copy: handlers cache their gin.H across requests, so the
// original must never pick up per-request values.
func Render(c *gin.Context, code int, name string, obj gin.H) {
	data := gin.H{}
	for k, v := range obj {
		data[k] = v
	}

	if user, exists := c.Get(middleware.CheckUserKey); exists {
		data["CurrentUser"] = user
		if count, ok := c.Get(middleware.UnreadCountKey); ok {
			data["UnreadCount"] = count.(int)
		} else {
			data["UnreadCount"] = 0
		}
	}

	// Drain queued flash messages into this render
	session := sessions.Default(c)
	if flashes := session.Flashes(); len(flashes) > 0 {
		session.Save()
		data["Flashes"] = flashes
	}

	data["CurrentPath"] = c.Request.URL.Path

	c.HTML(code, name, data)
}

// Flash queues a one-shot message for the next rendered page.
func Flash(c *gin.Context, message string) {
	session := sessions.Default(c)
	session.AddFlash(message)
	session.Save()
}

// Error helper
func RenderError(c *gin.Context, code int, message string) {
	Render(c, code, "error.html", gin.H{"Error": message})
}

// CurrentUser returns the logged-in username, empty when anonymous.
func CurrentUser(c *gin.Context) string {
	if user, exists := c.Get(middleware.CheckUserKey); exists {
		return user.(string)
	}
	return ""
}
