package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-contrib/sessions/mongo/mongodriver"
	"github.com/gin-gonic/gin"

	"github.com/shopkit/storefront/configs"
	"github.com/shopkit/storefront/internal/auth"
	"github.com/shopkit/storefront/internal/db"
	"github.com/shopkit/storefront/internal/handlers"
	"github.com/shopkit/storefront/internal/orders"
	"github.com/shopkit/storefront/internal/ratelimit"
	"github.com/shopkit/storefront/internal/store"
	"github.com/shopkit/storefront/internal/store/memstore"
	"github.com/shopkit/storefront/internal/store/mongostore"
	"github.com/shopkit/storefront/internal/uploads"
)

const (
	sessionName   = "storefront_session"
	sessionMaxAge = 14 * 24 * 60 * 60 // 14 days, in seconds
	maxReqPerMin  = 100
)

func main() {
	cfg := config.Load()
	handlers.SetProduction(cfg.Env == "production")

	client, connected := db.Connect(cfg.MongoURI)

	var (
		users        store.UserStore
		products     store.ProductStore
		reviews      store.ReviewStore
		orderStore   store.OrderStore
		sessionStore sessions.Store
	)

	switch {
	case client != nil:
		database := client.Database(cfg.MongoDB)
		users = mongostore.NewUserStore(database.Collection("users"))
		products = mongostore.NewProductStore(database.Collection("products"))
		reviews = mongostore.NewReviewStore(database.Collection("reviews"))
		orderStore = mongostore.NewOrderStore(database.Collection("orders"))

		if connected {
			db.EnsureIndexes(client, cfg.MongoDB)
			sessionStore = mongodriver.NewStore(
				database.Collection("sessions"), sessionMaxAge, true, []byte(cfg.SessionSecret))
			log.Println("MongoDB session store initialized")
		} else {
			// Data calls will 503 until the database comes back, but
			// the server itself keeps running.
			sessionStore = cookie.NewStore([]byte(cfg.SessionSecret))
			log.Println("Warning: using cookie session store (MongoDB not reachable)")
		}
	default:
		log.Println("Warning: running with in-memory stores; nothing will be persisted")
		users = memstore.NewUserStore()
		products = memstore.NewProductStore()
		reviews = memstore.NewReviewStore()
		orderStore = memstore.NewOrderStore()
		sessionStore = cookie.NewStore([]byte(cfg.SessionSecret))
	}

	up, err := uploads.New(cfg.UploadDir)
	if err != nil {
		log.Fatalf("Failed to prepare upload directory: %v", err)
	}

	engine := orders.NewEngine(products, orderStore, users)
	authSvc := auth.New(users)
	productHandler := handlers.NewProductHandler(products, up)
	reviewHandler := handlers.NewReviewHandler(reviews, products)
	orderHandler := handlers.NewOrderHandler(engine)

	limiter := ratelimit.New(maxReqPerMin)
	defer limiter.Stop()

	r := gin.Default()
	r.Use(limiter.Middleware())
	r.Use(sessions.Sessions(sessionName, sessionStore))

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	r.Static(uploads.URLPrefix, up.Dir())

	api := r.Group("/api")

	// ── auth ──
	authGroup := api.Group("/auth")
	{
		authGroup.POST("/register", authSvc.Register)
		authGroup.POST("/login", authSvc.Login)
		authGroup.POST("/logout", authSvc.RequireAuth(), authSvc.Logout)
		authGroup.GET("/profile", authSvc.RequireAuth(), authSvc.Profile)
	}

	// ── catalog: public reads, admin writes ──
	api.GET("/products", productHandler.List)
	api.GET("/products/:id", productHandler.Get)
	productAdmin := api.Group("/products", authSvc.RequireAuth(), authSvc.RequireAdmin())
	{
		productAdmin.POST("", productHandler.Create)
		productAdmin.PUT("/:id", productHandler.Update)
		productAdmin.DELETE("/:id", productHandler.Delete)
		productAdmin.POST("/:id/image", productHandler.UpdateImage)
		productAdmin.DELETE("/:id/image", productHandler.RemoveImage)
	}

	// ── reviews: public reads, admin writes ──
	api.GET("/reviews", reviewHandler.List)
	api.GET("/reviews/:id", reviewHandler.Get)
	reviewAdmin := api.Group("/reviews", authSvc.RequireAuth(), authSvc.RequireAdmin())
	{
		reviewAdmin.POST("", reviewHandler.Create)
		reviewAdmin.PUT("/:id", reviewHandler.Update)
		reviewAdmin.DELETE("/:id", reviewHandler.Delete)
	}

	// ── orders: session required throughout ──
	orderGroup := api.Group("/orders", authSvc.RequireAuth())
	{
		orderGroup.POST("", orderHandler.Create)
		orderGroup.GET("", orderHandler.ListMine)
		orderGroup.GET("/all", authSvc.RequireAdmin(), orderHandler.ListAll)
		orderGroup.GET("/:id", orderHandler.Get)
		orderGroup.PUT("/:id/status", authSvc.RequireAdmin(), orderHandler.UpdateStatus)
		orderGroup.PUT("/:id", orderHandler.UpdateItems)
		orderGroup.DELETE("/:id", orderHandler.Delete)
	}

	// Static front-end with a JSON 404 for everything else.
	r.NoRoute(func(c *gin.Context) {
		if c.Request.Method == http.MethodGet {
			p := filepath.Join("public", filepath.Clean("/"+c.Request.URL.Path))
			if p == "public" {
				p = filepath.Join("public", "index.html")
			}
			if info, err := os.Stat(p); err == nil && !info.IsDir() {
				c.File(p)
				return
			}
		}
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "Route not found",
			"message": fmt.Sprintf("Cannot %s %s", c.Request.Method, c.Request.URL.Path),
		})
	})

	log.Printf("Server is running on http://localhost:%s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
