package handlers_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/shopkit/storefront/internal/models"
)

type reviewResponse struct {
	Message string        `json:"message"`
	Review  models.Review `json:"review"`
}

func TestCreateReviewHandler(t *testing.T) {
	env := newTestEnv(t)
	admin := env.seedUser(t, "admin@example.com", models.RoleAdmin)
	adminCookie := sessionCookieFor(admin.ID.Hex())
	product := env.seedProduct(t, "Speaker", 60)

	t.Run("requires the admin role", func(t *testing.T) {
		user := env.seedUser(t, "user@example.com", models.RoleUser)
		recorder := performJSON(env.router, http.MethodPost, "/api/reviews", M{
			"productId":    product.ID.Hex(),
			"reviewerName": "Sam",
			"rating":       5,
			"comment":      "Great",
		}, sessionCookieFor(user.ID.Hex()))
		assert.Equal(t, http.StatusForbidden, recorder.Code)
	})

	t.Run("collects field-level violations", func(t *testing.T) {
		recorder := performJSON(env.router, http.MethodPost, "/api/reviews", M{
			"reviewerName": "   ",
			"rating":       6,
		}, adminCookie)

		assert.Equal(t, http.StatusBadRequest, recorder.Code)
		var resp struct {
			Error   string   `json:"error"`
			Details []string `json:"details"`
		}
		decodeBody(t, recorder, &resp)
		assert.Equal(t, "Validation failed", resp.Error)
		assert.Len(t, resp.Details, 4)
		assert.Contains(t, resp.Details, "Rating is required and must be a number between 1 and 5")
	})

	t.Run("404 when the product does not exist", func(t *testing.T) {
		recorder := performJSON(env.router, http.MethodPost, "/api/reviews", M{
			"productId":    primitive.NewObjectID().Hex(),
			"reviewerName": "Sam",
			"rating":       4,
			"comment":      "Fine",
		}, adminCookie)
		assert.Equal(t, http.StatusNotFound, recorder.Code)
	})

	t.Run("creates and expands the product reference", func(t *testing.T) {
		recorder := performJSON(env.router, http.MethodPost, "/api/reviews", M{
			"productId":    product.ID.Hex(),
			"reviewerName": "  Sam  ",
			"rating":       4.5,
			"comment":      "Solid sound",
		}, adminCookie)

		assert.Equal(t, http.StatusCreated, recorder.Code)
		var resp reviewResponse
		decodeBody(t, recorder, &resp)
		assert.Equal(t, "Review created successfully", resp.Message)
		assert.Equal(t, "Sam", resp.Review.ReviewerName)
		assert.Equal(t, 4.5, resp.Review.Rating)
		if assert.NotNil(t, resp.Review.Product) {
			assert.Equal(t, "Speaker", resp.Review.Product.Name)
		}
	})
}

func TestGetReviewHandler(t *testing.T) {
	env := newTestEnv(t)
	product := env.seedProduct(t, "Desk", 120)
	review := env.seedReview(t, product.ID, "Ana", 5)

	t.Run("public read", func(t *testing.T) {
		recorder := performJSON(env.router, http.MethodGet, "/api/reviews/"+review.ID.Hex(), nil, "")
		assert.Equal(t, http.StatusOK, recorder.Code)
		var resp reviewResponse
		decodeBody(t, recorder, &resp)
		assert.Equal(t, "Ana", resp.Review.ReviewerName)
	})

	t.Run("400 for malformed id", func(t *testing.T) {
		recorder := performJSON(env.router, http.MethodGet, "/api/reviews/nope", nil, "")
		assert.Equal(t, http.StatusBadRequest, recorder.Code)
		var resp map[string]string
		decodeBody(t, recorder, &resp)
		assert.Equal(t, "Invalid ID format", resp["error"])
	})

	t.Run("404 for unknown id", func(t *testing.T) {
		recorder := performJSON(env.router, http.MethodGet, "/api/reviews/"+primitive.NewObjectID().Hex(), nil, "")
		assert.Equal(t, http.StatusNotFound, recorder.Code)
	})
}

func TestUpdateReviewHandler(t *testing.T) {
	env := newTestEnv(t)
	admin := env.seedUser(t, "admin@example.com", models.RoleAdmin)
	adminCookie := sessionCookieFor(admin.ID.Hex())
	product := env.seedProduct(t, "Desk", 120)
	other := env.seedProduct(t, "Shelf", 40)
	review := env.seedReview(t, product.ID, "Ana", 5)

	recorder := performJSON(env.router, http.MethodPut, "/api/reviews/"+review.ID.Hex(), M{
		"productId":    other.ID.Hex(),
		"reviewerName": "Ana",
		"rating":       3,
		"comment":      "Changed my mind",
	}, adminCookie)

	assert.Equal(t, http.StatusOK, recorder.Code)
	var resp reviewResponse
	decodeBody(t, recorder, &resp)
	assert.Equal(t, float64(3), resp.Review.Rating)
	assert.Equal(t, other.ID, resp.Review.ProductID)
	if assert.NotNil(t, resp.Review.Product) {
		assert.Equal(t, "Shelf", resp.Review.Product.Name)
	}
}

func TestDeleteReviewHandler(t *testing.T) {
	env := newTestEnv(t)
	admin := env.seedUser(t, "admin@example.com", models.RoleAdmin)
	adminCookie := sessionCookieFor(admin.ID.Hex())
	product := env.seedProduct(t, "Desk", 120)
	review := env.seedReview(t, product.ID, "Ana", 5)

	recorder := performJSON(env.router, http.MethodDelete, "/api/reviews/"+review.ID.Hex(), nil, adminCookie)
	assert.Equal(t, http.StatusOK, recorder.Code)
	var resp reviewResponse
	decodeBody(t, recorder, &resp)
	assert.Equal(t, "Review deleted successfully", resp.Message)

	get := performJSON(env.router, http.MethodGet, "/api/reviews/"+review.ID.Hex(), nil, "")
	assert.Equal(t, http.StatusNotFound, get.Code)
}

func TestListReviewsHandler(t *testing.T) {
	env := newTestEnv(t)
	product := env.seedProduct(t, "Desk", 120)
	env.seedReview(t, product.ID, "First", 4)
	env.seedReview(t, product.ID, "Second", 5)

	recorder := performJSON(env.router, http.MethodGet, "/api/reviews", nil, "")
	assert.Equal(t, http.StatusOK, recorder.Code)

	var resp struct {
		Count   int             `json:"count"`
		Reviews []models.Review `json:"reviews"`
	}
	decodeBody(t, recorder, &resp)
	assert.Equal(t, 2, resp.Count)
	assert.Equal(t, "Second", resp.Reviews[0].ReviewerName)
}
