package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/shopkit/storefront/internal/auth"
	"github.com/shopkit/storefront/internal/handlers"
	"github.com/shopkit/storefront/internal/models"
	"github.com/shopkit/storefront/internal/orders"
	"github.com/shopkit/storefront/internal/store/memstore"
	"github.com/shopkit/storefront/internal/uploads"
)

const (
	testSessionName   = "storefront_session"
	testSessionSecret = "test-secret-key"
)

// M is shorthand for ad-hoc JSON request bodies.
type M = map[string]any

type testEnv struct {
	router    *gin.Engine
	users     *memstore.UserStore
	products  *memstore.ProductStore
	reviews   *memstore.ReviewStore
	orders    *memstore.OrderStore
	uploadDir string
}

// newTestEnv wires the same route table as main over in-memory stores.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	env := &testEnv{
		users:     memstore.NewUserStore(),
		products:  memstore.NewProductStore(),
		reviews:   memstore.NewReviewStore(),
		orders:    memstore.NewOrderStore(),
		uploadDir: t.TempDir(),
	}

	up, err := uploads.New(env.uploadDir)
	assert.NoError(t, err)

	engine := orders.NewEngine(env.products, env.orders, env.users)
	authSvc := auth.New(env.users)
	productHandler := handlers.NewProductHandler(env.products, up)
	reviewHandler := handlers.NewReviewHandler(env.reviews, env.products)
	orderHandler := handlers.NewOrderHandler(engine)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(sessions.Sessions(testSessionName, cookie.NewStore([]byte(testSessionSecret))))

	api := r.Group("/api")

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

	api.GET("/reviews", reviewHandler.List)
	api.GET("/reviews/:id", reviewHandler.Get)
	reviewAdmin := api.Group("/reviews", authSvc.RequireAuth(), authSvc.RequireAdmin())
	{
		reviewAdmin.POST("", reviewHandler.Create)
		reviewAdmin.PUT("/:id", reviewHandler.Update)
		reviewAdmin.DELETE("/:id", reviewHandler.Delete)
	}

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

	env.router = r
	return env
}

func (e *testEnv) seedUser(t *testing.T, email, role string) *models.User {
	t.Helper()
	u := &models.User{
		Email:     email,
		Password:  "not-a-real-hash",
		Role:      role,
		CreatedAt: time.Now().UTC(),
	}
	assert.NoError(t, e.users.Create(context.Background(), u))
	return u
}

func (e *testEnv) seedProduct(t *testing.T, name string, price float64) *models.Product {
	t.Helper()
	p := &models.Product{
		Name:        name,
		Price:       price,
		Description: name + " description",
		Category:    "gadgets",
		CreatedAt:   time.Now().UTC(),
		UpdatedAt:   time.Now().UTC(),
	}
	assert.NoError(t, e.products.Create(context.Background(), p))
	return p
}

func (e *testEnv) seedReview(t *testing.T, productID primitive.ObjectID, reviewer string, rating float64) *models.Review {
	t.Helper()
	r := &models.Review{
		ProductID:    productID,
		ReviewerName: reviewer,
		Rating:       rating,
		Comment:      "seeded review",
		CreatedAt:    time.Now().UTC(),
		UpdatedAt:    time.Now().UTC(),
	}
	assert.NoError(t, e.reviews.Create(context.Background(), r))
	return r
}

// sessionCookieFor forges a session cookie the way a login would set
// it, by running the session middleware over a throwaway context.
func sessionCookieFor(userID string) string {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	sessions.Sessions(testSessionName, cookie.NewStore([]byte(testSessionSecret)))(c)

	sess := sessions.Default(c)
	if userID != "" {
		sess.Set(auth.SessionUserID, userID)
	}
	_ = sess.Save()
	return w.Header().Get("Set-Cookie")
}

func performJSON(router *gin.Engine, method, path string, body any, sessionCookie string) *httptest.ResponseRecorder {
	var reqBody []byte
	if body != nil {
		reqBody, _ = json.Marshal(body)
	}
	req := httptest.NewRequest(method, path, bytes.NewBuffer(reqBody))
	req.Header.Set("Content-Type", "application/json")
	if sessionCookie != "" {
		req.Header.Set("Cookie", sessionCookie)
	}
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	return recorder
}

func performMultipart(router *gin.Engine, method, path string, fields map[string]string, fileField, fileName string, fileContent []byte, sessionCookie string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		_ = mw.WriteField(k, v)
	}
	if fileField != "" {
		fw, _ := mw.CreateFormFile(fileField, fileName)
		_, _ = io.Copy(fw, bytes.NewReader(fileContent))
	}
	_ = mw.Close()

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if sessionCookie != "" {
		req.Header.Set("Cookie", sessionCookie)
	}
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	return recorder
}

func decodeBody(t *testing.T, recorder *httptest.ResponseRecorder, out any) {
	t.Helper()
	assert.NoError(t, json.Unmarshal(recorder.Body.Bytes(), out))
}
