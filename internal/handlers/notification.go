package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"hondana/internal/thread"
)

type NotificationHandler struct {
	threads *thread.Engine
}

func NewNotificationHandler(threads *thread.Engine) *NotificationHandler {
	return &NotificationHandler{threads: threads}
}

// List shows every unread comment on the user's own listings.
func (h *NotificationHandler) List(c *gin.Context) {
	user := CurrentUser(c)
	notifications, err := h.threads.ListUnread(user)
	if err != nil {
		RenderError(c, http.StatusInternalServerError, "通知の読み込みに失敗しました。")
		return
	}
	Render(c, http.StatusOK, "notification/list.html", gin.H{
		"Title":         "通知",
		"Notifications": notifications,
	})
}

// MarkRead marks every comment in one thread as read by the current user.
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	user := CurrentUser(c)
	owner := c.Param("owner")
	title := c.Param("title")

	if err := h.threads.MarkRead(owner, title, user); err != nil {
		RenderError(c, http.StatusInternalServerError, "通知の更新に失敗しました。")
		return
	}
	c.Redirect(http.StatusFound, "/notifications")
}
