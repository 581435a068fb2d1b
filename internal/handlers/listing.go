package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"hondana/internal/blob"
	"hondana/internal/catalog"
	"hondana/internal/models"
	"hondana/internal/thread"
	"hondana/internal/utils"
)

type ListingHandler struct {
	catalog *catalog.Catalog
	blobs   *blob.Store
	threads *thread.Engine
}

func NewListingHandler(cat *catalog.Catalog, blobs *blob.Store, threads *thread.Engine) *ListingHandler {
	return &ListingHandler{catalog: cat, blobs: blobs, threads: threads}
}

// Index is the owner's own shelf (マイページ).
func (h *ListingHandler) Index(c *gin.Context) {
	user := CurrentUser(c)
	listings, err := h.catalog.ByOwner(user)
	if err != nil {
		RenderError(c, http.StatusInternalServerError, "データの読み込みに失敗しました。")
		return
	}
	Render(c, http.StatusOK, "listing/index.html", gin.H{
		"Title":    "マイページ",
		"Listings": listings,
	})
}

// Upload creates the listing on first post and attaches the uploaded
// images, up to the slot cap. A repeat upload with the same title adds
// images to the existing listing without touching its fields.
func (h *ListingHandler) Upload(c *gin.Context) {
	user := CurrentUser(c)

	title := strings.TrimSpace(c.PostForm("title"))
	if title == "" {
		Flash(c, "教科書名は必須です。")
		c.Redirect(http.StatusFound, "/")
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		Flash(c, "画像を選択してください。")
		c.Redirect(http.StatusFound, "/")
		return
	}
	files := form.File["images"]
	if len(files) == 0 {
		Flash(c, "画像を選択してください。")
		c.Redirect(http.StatusFound, "/")
		return
	}

	listing, err := h.catalog.Put(user, title, catalog.Fields{
		Author:    c.PostForm("author"),
		Price:     c.PostForm("price"),
		Condition: c.PostForm("condition"),
		Note:      c.PostForm("note"),
		Course:    c.PostForm("course"),
	})
	if errors.Is(err, catalog.ErrReservedTitle) {
		Flash(c, "教科書名に使用できない文字が含まれています。")
		c.Redirect(http.StatusFound, "/")
		return
	}
	if err != nil {
		RenderError(c, http.StatusInternalServerError, "投稿の保存に失敗しました。")
		return
	}

	// Trim before writing any file, so overflow uploads never hit disk.
	remaining := models.MaxImages - len(listing.Images)
	if remaining <= 0 {
		Flash(c, "この出品は既に画像が5枚あります。")
		c.Redirect(http.StatusFound, "/")
		return
	}
	if len(files) > remaining {
		files = files[:remaining]
	}

	refs := make([]string, 0, len(files))
	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			continue
		}
		ref, err := h.blobs.Save(f, fh.Filename)
		f.Close()
		if err != nil {
			log.Printf("save upload: %v", err)
			continue
		}
		refs = append(refs, ref)
	}

	accepted, err := h.catalog.AttachImages(user, title, refs)
	if err != nil && !errors.Is(err, catalog.ErrCapacityExceeded) {
		RenderError(c, http.StatusInternalServerError, "投稿の保存に失敗しました。")
		return
	}
	// Remove files that lost the race for the remaining slots.
	for _, ref := range refs {
		kept := false
		for _, a := range accepted {
			if a == ref {
				kept = true
				break
			}
		}
		if !kept {
			h.blobs.Delete(ref)
		}
	}
	if errors.Is(err, catalog.ErrCapacityExceeded) {
		Flash(c, "この出品は既に画像が5枚あります。")
	}

	utils.GetCache().Purge()
	c.Redirect(http.StatusFound, "/")
}

// Delete removes a listing, its image files and its comment thread. The
// listing and thread live in separate documents, so a crash between the two
// writes can orphan a thread; accepted limitation.
func (h *ListingHandler) Delete(c *gin.Context) {
	user := CurrentUser(c)
	title := c.Param("title")

	refs, err := h.catalog.Delete(user, title)
	if err != nil {
		RenderError(c, http.StatusInternalServerError, "削除に失敗しました。")
		return
	}
	for _, ref := range refs {
		if err := h.blobs.Delete(ref); err != nil {
			log.Printf("delete blob %s: %v", ref, err)
		}
	}
	if err := h.threads.DeleteThread(user, title); err != nil {
		log.Printf("cascade thread delete %s: %v", models.ThreadKey(user, title), err)
	}

	utils.GetCache().Purge()
	c.Redirect(http.StatusFound, "/")
}

// DeleteImage detaches one image from a listing and deletes its file.
func (h *ListingHandler) DeleteImage(c *gin.Context) {
	user := CurrentUser(c)
	title := c.Param("title")
	ref := c.Param("ref")

	removed, err := h.catalog.DeleteImage(user, title, ref)
	if err != nil {
		RenderError(c, http.StatusInternalServerError, "削除に失敗しました。")
		return
	}
	if removed {
		if err := h.blobs.Delete(ref); err != nil {
			log.Printf("delete blob %s: %v", ref, err)
		}
		utils.GetCache().Purge()
	}
	c.Redirect(http.StatusFound, "/")
}
