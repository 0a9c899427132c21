package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/shopkit/storefront/internal/apperr"
	"github.com/shopkit/storefront/internal/models"
	"github.com/shopkit/storefront/internal/store"
)

type ReviewHandler struct {
	reviews  store.ReviewStore
	products store.ProductStore
}

func NewReviewHandler(reviews store.ReviewStore, products store.ProductStore) *ReviewHandler {
	return &ReviewHandler{reviews: reviews, products: products}
}

type reviewRequest struct {
	ProductID    string   `json:"productId"`
	ReviewerName string   `json:"reviewerName"`
	Rating       *float64 `json:"rating"`
	Comment      string   `json:"comment"`
}

func (r *reviewRequest) validate() []string {
	var details []string
	if r.ProductID == "" {
		details = append(details, "Product ID is required")
	}
	if strings.TrimSpace(r.ReviewerName) == "" {
		details = append(details, "Reviewer name is required and must be a non-empty string")
	}
	if r.Rating == nil || *r.Rating < 1 || *r.Rating > 5 {
		details = append(details, "Rating is required and must be a number between 1 and 5")
	}
	if strings.TrimSpace(r.Comment) == "" {
		details = append(details, "Comment is required and must be a non-empty string")
	}
	return details
}

// resolveProduct re-validates that the referenced product still exists.
func (h *ReviewHandler) resolveProduct(c *gin.Context, productID string) (*models.Product, bool) {
	id, err := primitive.ObjectIDFromHex(productID)
	if err != nil {
		writeError(c, apperr.InvalidID())
		return nil, false
	}
	product, err := h.products.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, apperr.FromStore(err, apperr.NotFound("Product not found")))
		return nil, false
	}
	return product, true
}

func (h *ReviewHandler) expand(c *gin.Context, review *models.Review) {
	if p, err := h.products.Get(c.Request.Context(), review.ProductID); err == nil {
		review.Product = &models.ReviewProductRef{ID: p.ID, Name: p.Name}
	}
}

// POST /api/reviews (admin)
func (h *ReviewHandler) Create(c *gin.Context) {
	var req reviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, apperr.Validation("Request body must be valid JSON"))
		return
	}
	if details := req.validate(); len(details) > 0 {
		writeError(c, apperr.Validation(details...))
		return
	}

	product, ok := h.resolveProduct(c, req.ProductID)
	if !ok {
		return
	}

	now := time.Now().UTC()
	review := &models.Review{
		ProductID:    product.ID,
		ReviewerName: strings.TrimSpace(req.ReviewerName),
		Rating:       *req.Rating,
		Comment:      strings.TrimSpace(req.Comment),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := h.reviews.Create(c.Request.Context(), review); err != nil {
		if errors.Is(err, store.ErrUnavailable) {
			writeError(c, apperr.Unavailable(err))
		} else {
			writeError(c, apperr.Internal(err))
		}
		return
	}
	h.expand(c, review)
	c.JSON(http.StatusCreated, gin.H{"message": "Review created successfully", "review": review})
}

// GET /api/reviews
func (h *ReviewHandler) List(c *gin.Context) {
	reviews, err := h.reviews.List(c.Request.Context())
	if err != nil {
		writeError(c, apperr.FromStore(err, apperr.NotFound("Review not found")))
		return
	}
	for i := range reviews {
		h.expand(c, &reviews[i])
	}
	c.JSON(http.StatusOK, gin.H{"count": len(reviews), "reviews": reviews})
}

// GET /api/reviews/:id
func (h *ReviewHandler) Get(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		writeError(c, apperr.InvalidID())
		return
	}
	review, err := h.reviews.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, apperr.FromStore(err, apperr.NotFound("Review not found")))
		return
	}
	h.expand(c, review)
	c.JSON(http.StatusOK, gin.H{"review": review})
}

// PUT /api/reviews/:id (admin)
func (h *ReviewHandler) Update(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		writeError(c, apperr.InvalidID())
		return
	}

	var req reviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, apperr.Validation("Request body must be valid JSON"))
		return
	}
	if details := req.validate(); len(details) > 0 {
		writeError(c, apperr.Validation(details...))
		return
	}

	product, ok := h.resolveProduct(c, req.ProductID)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	review, err := h.reviews.Get(ctx, id)
	if err != nil {
		writeError(c, apperr.FromStore(err, apperr.NotFound("Review not found")))
		return
	}

	review.ProductID = product.ID
	review.ReviewerName = strings.TrimSpace(req.ReviewerName)
	review.Rating = *req.Rating
	review.Comment = strings.TrimSpace(req.Comment)
	review.UpdatedAt = time.Now().UTC()

	if err := h.reviews.Update(ctx, review); err != nil {
		writeError(c, apperr.FromStore(err, apperr.NotFound("Review not found")))
		return
	}
	h.expand(c, review)
	c.JSON(http.StatusOK, gin.H{"message": "Review updated successfully", "review": review})
}

// DELETE /api/reviews/:id (admin)
func (h *ReviewHandler) Delete(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		writeError(c, apperr.InvalidID())
		return
	}
	review, err := h.reviews.Delete(c.Request.Context(), id)
	if err != nil {
		writeError(c, apperr.FromStore(err, apperr.NotFound("Review not found")))
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Review deleted successfully", "review": review})
}
