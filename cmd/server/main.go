package main

import (
	"html/template"
	"log"
	"net/url"
	"os"
	"path/filepath"

	"github.com/gin-contrib/multitemplate"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"hondana/internal/auth"
	"hondana/internal/blob"
	"hondana/internal/catalog"
	"hondana/internal/handlers"
	"hondana/internal/middleware"
	"hondana/internal/store"
	"hondana/internal/thread"
	"hondana/internal/utils"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, finding env vars from system")
	}

	st, err := openStore()
	if err != nil {
		log.Fatalf("open snapshot store: %v", err)
	}

	uploadDir := os.Getenv("UPLOAD_DIR")
	if uploadDir == "" {
		uploadDir = "./data/uploads"
	}
	blobs, err := blob.New(uploadDir)
	if err != nil {
		log.Fatalf("open blob store: %v", err)
	}

	cat := catalog.New(st)
	threads := thread.New(st)
	creds := auth.New(st)

	// Initialize Gin
	r := gin.Default()

	// Setup Sessions
	secret := os.Getenv("SESSION_SECRET")
	if secret == "" {
		secret = "secret_key_change_me"
	}
	sessionStore := cookie.NewStore([]byte(secret))
	r.Use(sessions.Sessions("hondana_session", sessionStore))

	r.HTMLRender = loadTemplates("./web/templates")

	// Static assets and the uploaded image files
	r.Static("/static", "./web/static")
	r.Static("/uploads", blobs.Dir())

	r.Use(middleware.LoadUser(threads))

	authHandler := handlers.NewAuthHandler(creds)
	listingHandler := handlers.NewListingHandler(cat, blobs, threads)
	publicHandler := handlers.NewPublicHandler(cat)
	bookHandler := handlers.NewBookHandler(cat, threads)
	notificationHandler := handlers.NewNotificationHandler(threads)

	// Public Routes
	r.GET("/public", publicHandler.Public)
	r.GET("/book/:owner/:title", bookHandler.Detail)

	r.GET("/register", authHandler.ShowRegister)
	r.POST("/register", authHandler.Register)
	r.GET("/login", authHandler.ShowLogin)
	r.POST("/login", authHandler.Login)
	r.GET("/logout", authHandler.Logout)

	// Protected Routes
	authorized := r.Group("/")
	authorized.Use(middleware.AuthRequired())
	{
		authorized.GET("/", listingHandler.Index)
		authorized.POST("/upload", listingHandler.Upload)
		authorized.POST("/delete/:title", listingHandler.Delete)
		authorized.POST("/delete_image/:title/:ref", listingHandler.DeleteImage)

		authorized.POST("/book/:owner/:title/comment", bookHandler.PostComment)

		authorized.GET("/notifications", notificationHandler.List)
		authorized.POST("/notifications/read/:owner/:title", notificationHandler.MarkRead)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Printf("hondana server starting on :%s", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatal(err)
	}
}

// openStore picks the snapshot backend: JSON files by default, one jsonb
// row per collection in Postgres when DATA_BACKEND=postgres.
func openStore() (store.Store, error) {
	if os.Getenv("DATA_BACKEND") == "postgres" {
		dsn := os.Getenv("DATABASE_URL")
		if dsn == "" {
			dsn = "host=localhost user=postgres password=postgres dbname=hondana port=5432 sslmode=disable"
		}
		return store.NewPostgresStore(dsn)
	}
	dataDir := os.Getenv("DATA_DIR")
	if dataDir == "" {
		dataDir = "./data"
	}
	return store.NewFileStore(dataDir)
}

func loadTemplates(templatesDir string) multitemplate.Renderer {
	r := multitemplate.NewRenderer()

	layouts, err := filepath.Glob(templatesDir + "/layouts/*.html")
	if err != nil {
		panic(err)
	}

	includes, err := filepath.Glob(templatesDir + "/includes/*.html")
	if err != nil {
		panic(err)
	}

	assemble := func(view string) []string {
		files := make([]string, 0)
		files = append(files, layouts...)
		files = append(files, includes...)
		files = append(files, view)
		return files
	}

	funcMap := template.FuncMap{
		"add": func(a, b int) int {
			return a + b
		},
		"safeHTML": func(s string) template.HTML {
			return template.HTML(s)
		},
		"markdown": utils.RenderMarkdown,
		"marked":   utils.SafeMarked,
		"urlquery": func(s string) string {
			return url.QueryEscape(s)
		},
		"pathescape": func(s string) string {
			return url.PathEscape(s)
		},
	}

	// Manual registration to ensure keys match handler expectation
	r.AddFromFilesFuncs("auth/login.html", funcMap, assemble(templatesDir+"/views/auth/login.html")...)
	r.AddFromFilesFuncs("auth/register.html", funcMap, assemble(templatesDir+"/views/auth/register.html")...)

	r.AddFromFilesFuncs("listing/index.html", funcMap, assemble(templatesDir+"/views/listing/index.html")...)
	r.AddFromFilesFuncs("listing/public.html", funcMap, assemble(templatesDir+"/views/listing/public.html")...)
	r.AddFromFilesFuncs("listing/detail.html", funcMap, assemble(templatesDir+"/views/listing/detail.html")...)

	r.AddFromFilesFuncs("notification/list.html", funcMap, assemble(templatesDir+"/views/notification/list.html")...)

	r.AddFromFilesFuncs("error.html", funcMap, assemble(templatesDir+"/views/error.html")...)

	return r
}
