package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"hondana/internal/catalog"
	"hondana/internal/search"
	"hondana/internal/utils"
)

type PublicHandler struct {
	catalog *catalog.Catalog
}

func NewPublicHandler(cat *catalog.Catalog) *PublicHandler {
	return &PublicHandler{catalog: cat}
}

// Public renders the public browse/search page: keyword filter with
// highlighting, per-owner sort. Results are cached briefly per query.
func (h *PublicHandler) Public(c *gin.Context) {
	keyword := strings.TrimSpace(c.Query("q"))
	mode := search.ParseMode(c.Query("sort"))

	cacheKey := fmt.Sprintf("public:%s:%s", mode, keyword)
	if cached := utils.GetCache().Get(cacheKey); cached != nil {
		if hData, ok := cached.(gin.H); ok {
			Render(c, http.StatusOK, "listing/public.html", hData)
			return
		}
	}

	snap, err := h.catalog.Snapshot()
	if err != nil {
		RenderError(c, http.StatusInternalServerError, "データの読み込みに失敗しました。")
		return
	}
	groups := search.Query(snap, keyword, mode)

	renderData := gin.H{
		"Title":   "出品一覧",
		"Groups":  groups,
		"Keyword": keyword,
		"Sort":    string(mode),
	}
	utils.GetCache().Set(cacheKey, renderData, 1*time.Minute)

	Render(c, http.StatusOK, "listing/public.html", renderData)
}
