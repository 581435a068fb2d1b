package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"hondana/internal/catalog"
	"hondana/internal/thread"
)

type BookHandler struct {
	catalog *catalog.Catalog
	threads *thread.Engine
}

func NewBookHandler(cat *catalog.Catalog, threads *thread.Engine) *BookHandler {
	return &BookHandler{catalog: cat, threads: threads}
}

func detailPath(owner, title string) string {
	return fmt.Sprintf("/book/%s/%s", url.PathEscape(owner), url.PathEscape(title))
}

// Detail shows one listing with its comment thread.
func (h *BookHandler) Detail(c *gin.Context) {
	owner := c.Param("owner")
	title := c.Param("title")

	listing, ok, err := h.catalog.Get(owner, title)
	if err != nil {
		RenderError(c, http.StatusInternalServerError, "データの読み込みに失敗しました。")
		return
	}
	if !ok {
		Flash(c, "指定の投稿は存在しません。")
		c.Redirect(http.StatusFound, "/public")
		return
	}

	comments, err := h.threads.Comments(owner, title)
	if err != nil {
		RenderError(c, http.StatusInternalServerError, "コメントの読み込みに失敗しました。")
		return
	}

	Render(c, http.StatusOK, "listing/detail.html", gin.H{
		"Title":    listing.Title,
		"Owner":    owner,
		"Listing":  listing,
		"Comments": comments,
	})
}

// PostComment appends to the listing's thread. The new comment starts with
// an empty read-by set, which is what makes it show up as unread for the
// listing owner.
func (h *BookHandler) PostComment(c *gin.Context) {
	owner := c.Param("owner")
	title := c.Param("title")
	user := CurrentUser(c)

	err := h.threads.Post(owner, title, user, c.PostForm("comment"))
	if errors.Is(err, thread.ErrEmptyBody) {
		Flash(c, "コメントを入力してください。")
		c.Redirect(http.StatusFound, detailPath(owner, title))
		return
	}
	if err != nil {
		RenderError(c, http.StatusInternalServerError, "コメントの保存に失敗しました。")
		return
	}
	c.Redirect(http.StatusFound, detailPath(owner, title))
}
