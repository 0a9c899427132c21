package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/shopkit/storefront/internal/apperr"
	"github.com/shopkit/storefront/internal/models"
	"github.com/shopkit/storefront/internal/store"
	"github.com/shopkit/storefront/internal/uploads"
)

type ProductHandler struct {
	products store.ProductStore
	uploads  *uploads.Store
}

func NewProductHandler(products store.ProductStore, up *uploads.Store) *ProductHandler {
	return &ProductHandler{products: products, uploads: up}
}

// productForm holds validated multipart fields.
type productForm struct {
	Name        string
	Price       float64
	Description string
	Category    string
}

// parseProductForm trims string fields and coerces the form-data price.
// All four fields are required on create and full update.
func parseProductForm(c *gin.Context) (productForm, []string) {
	var form productForm
	var details []string

	form.Name = strings.TrimSpace(c.PostForm("name"))
	form.Description = strings.TrimSpace(c.PostForm("description"))
	form.Category = strings.TrimSpace(c.PostForm("category"))

	if form.Name == "" {
		details = append(details, "Name is required and must be a non-empty string")
	}

	priceRaw := strings.TrimSpace(c.PostForm("price"))
	price, err := strconv.ParseFloat(priceRaw, 64)
	if priceRaw == "" || err != nil || price < 0 {
		details = append(details, "Price is required and must be a positive number")
	} else {
		form.Price = price
	}

	if form.Description == "" {
		details = append(details, "Description is required and must be a non-empty string")
	}
	if form.Category == "" {
		details = append(details, "Category is required and must be a non-empty string")
	}
	return form, details
}

// GET /api/products
func (h *ProductHandler) List(c *gin.Context) {
	products, err := h.products.List(c.Request.Context())
	if err != nil {
		writeError(c, apperr.FromStore(err, apperr.NotFound("Product not found")))
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(products), "products": products})
}

// GET /api/products/:id
func (h *ProductHandler) Get(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		writeError(c, apperr.InvalidID())
		return
	}
	product, err := h.products.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, apperr.FromStore(err, apperr.NotFound("Product not found")))
		return
	}
	c.JSON(http.StatusOK, gin.H{"product": product})
}

// POST /api/products (admin, multipart)
func (h *ProductHandler) Create(c *gin.Context) {
	form, details := parseProductForm(c)
	if len(details) > 0 {
		writeError(c, apperr.Validation(details...))
		return
	}

	now := time.Now().UTC()
	product := &models.Product{
		Name:        form.Name,
		Price:       form.Price,
		Description: form.Description,
		Category:    form.Category,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if file, err := c.FormFile("image"); err == nil && file != nil {
		ref, err := h.uploads.Save(file)
		if err != nil {
			writeError(c, apperr.Internal(err))
			return
		}
		product.Image = ref
	}

	if err := h.products.Create(c.Request.Context(), product); err != nil {
		if errors.Is(err, store.ErrUnavailable) {
			writeError(c, apperr.Unavailable(err))
		} else {
			writeError(c, apperr.Internal(err))
		}
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Product created successfully", "product": product})
}

// PUT /api/products/:id (admin, multipart)
func (h *ProductHandler) Update(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		writeError(c, apperr.InvalidID())
		return
	}

	form, details := parseProductForm(c)
	if len(details) > 0 {
		writeError(c, apperr.Validation(details...))
		return
	}

	ctx := c.Request.Context()
	existing, err := h.products.Get(ctx, id)
	if err != nil {
		writeError(c, apperr.FromStore(err, apperr.NotFound("Product not found")))
		return
	}

	if file, ferr := c.FormFile("image"); ferr == nil && file != nil {
		ref, err := h.uploads.Save(file)
		if err != nil {
			writeError(c, apperr.Internal(err))
			return
		}
		h.uploads.Remove(existing.Image)
		existing.Image = ref
	} else if c.PostForm("removeImage") == "true" {
		h.uploads.Remove(existing.Image)
		existing.Image = ""
	}

	existing.Name = form.Name
	existing.Price = form.Price
	existing.Description = form.Description
	existing.Category = form.Category
	existing.UpdatedAt = time.Now().UTC()

	if err := h.products.Update(ctx, existing); err != nil {
		writeError(c, apperr.FromStore(err, apperr.NotFound("Product not found")))
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Product updated successfully", "product": existing})
}

// POST /api/products/:id/image (admin) — swap the image only.
func (h *ProductHandler) UpdateImage(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		writeError(c, apperr.InvalidID())
		return
	}

	file, err := c.FormFile("image")
	if err != nil || file == nil {
		writeError(c, apperr.Validation("Image file is required"))
		return
	}

	ctx := c.Request.Context()
	existing, err := h.products.Get(ctx, id)
	if err != nil {
		writeError(c, apperr.FromStore(err, apperr.NotFound("Product not found")))
		return
	}

	ref, err := h.uploads.Save(file)
	if err != nil {
		writeError(c, apperr.Internal(err))
		return
	}
	h.uploads.Remove(existing.Image)
	existing.Image = ref
	existing.UpdatedAt = time.Now().UTC()

	if err := h.products.Update(ctx, existing); err != nil {
		writeError(c, apperr.FromStore(err, apperr.NotFound("Product not found")))
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Product image updated successfully", "product": existing})
}

// DELETE /api/products/:id/image (admin)
func (h *ProductHandler) RemoveImage(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		writeError(c, apperr.InvalidID())
		return
	}

	ctx := c.Request.Context()
	existing, err := h.products.Get(ctx, id)
	if err != nil {
		writeError(c, apperr.FromStore(err, apperr.NotFound("Product not found")))
		return
	}

	h.uploads.Remove(existing.Image)
	existing.Image = ""
	existing.UpdatedAt = time.Now().UTC()

	if err := h.products.Update(ctx, existing); err != nil {
		writeError(c, apperr.FromStore(err, apperr.NotFound("Product not found")))
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Product image removed successfully", "product": existing})
}

// DELETE /api/products/:id (admin). Orders referencing the product keep
// their captured snapshots; nothing cascades.
func (h *ProductHandler) Delete(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		writeError(c, apperr.InvalidID())
		return
	}

	product, err := h.products.Delete(c.Request.Context(), id)
	if err != nil {
		writeError(c, apperr.FromStore(err, apperr.NotFound("Product not found")))
		return
	}
	h.uploads.Remove(product.Image)
	c.JSON(http.StatusOK, gin.H{"message": "Product deleted successfully", "product": product})
}
