package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"hondana/internal/auth"
)

type AuthHandler struct {
	creds *auth.Credentials
}

func NewAuthHandler(creds *auth.Credentials) *AuthHandler {
	return &AuthHandler{creds: creds}
}

func (h *AuthHandler) ShowRegister(c *gin.Context) {
	Render(c, http.StatusOK, "auth/register.html", nil)
}

func (h *AuthHandler) Register(c *gin.Context) {
	username := strings.TrimSpace(c.PostForm("username"))
	password := c.PostForm("password")

	if username == "" || password == "" {
		Render(c, http.StatusBadRequest, "auth/register.html", gin.H{"Error": "ユーザー名とパスワードは必須です。"})
		return
	}

	switch err := h.creds.Register(username, password); {
	case errors.Is(err, auth.ErrDuplicateUser):
		Render(c, http.StatusConflict, "auth/register.html", gin.H{"Error": "そのユーザー名は既に存在します。"})
		return
	case errors.Is(err, auth.ErrReservedName):
		Render(c, http.StatusBadRequest, "auth/register.html", gin.H{"Error": "ユーザー名に使用できない文字が含まれています。"})
		return
	case err != nil:
		RenderError(c, http.StatusInternalServerError, "登録処理に失敗しました。")
		return
	}

	Flash(c, "登録しました。ログインしてください。")
	c.Redirect(http.StatusFound, "/login")
}

func (h *AuthHandler) ShowLogin(c *gin.Context) {
	Render(c, http.StatusOK, "auth/login.html", gin.H{"Next": c.Query("next")})
}

func (h *AuthHandler) Login(c *gin.Context) {
	username := strings.TrimSpace(c.PostForm("username"))
	password := c.PostForm("password")
	next := c.PostForm("next")

	if err := h.creds.Authenticate(username, password); err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			Render(c, http.StatusUnauthorized, "auth/login.html", gin.H{"Error": "ユーザー名またはパスワードが違います。", "Next": next})
			return
		}
		RenderError(c, http.StatusInternalServerError, "ログイン処理に失敗しました。")
		return
	}

	session := sessions.Default(c)
	session.Set("user", username)
	session.AddFlash(username + " さん、ログインしました。")
	session.Save()

	if next == "" || !strings.HasPrefix(next, "/") {
		next = "/"
	}
	c.Redirect(http.StatusFound, next)
}

func (h *AuthHandler) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	session.AddFlash("ログアウトしました。")
	session.Save()
	c.Redirect(http.StatusFound, "/public")
}
