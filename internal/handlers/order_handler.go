package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shopkit/storefront/internal/apperr"
	"github.com/shopkit/storefront/internal/auth"
	"github.com/shopkit/storefront/internal/notifier"
	"github.com/shopkit/storefront/internal/orders"
)

type OrderHandler struct {
	engine *orders.Engine
}

func NewOrderHandler(engine *orders.Engine) *OrderHandler {
	return &OrderHandler{engine: engine}
}

type createOrderRequest struct {
	Items           []orders.ItemInput `json:"items"`
	ShippingAddress map[string]any     `json:"shippingAddress"`
}

type updateOrderRequest struct {
	Items []orders.ItemInput `json:"items"`
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

// POST /api/orders
func (h *OrderHandler) Create(c *gin.Context) {
	user := auth.CurrentUser(c)

	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, apperr.Validation("Request body must be valid JSON"))
		return
	}

	order, err := h.engine.Create(c.Request.Context(), user.ID, req.Items, req.ShippingAddress)
	if err != nil {
		writeError(c, err)
		return
	}

	if notifier.Enabled() {
		go func(email, orderID string, total float64) {
			_ = notifier.SendOrderConfirmation(email, orderID, total)
		}(user.Email, order.ID.Hex(), order.TotalAmount)
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Order created successfully", "order": order})
}

// GET /api/orders — the caller's own orders, newest first.
func (h *OrderHandler) ListMine(c *gin.Context) {
	user := auth.CurrentUser(c)
	list, err := h.engine.ListOwn(c.Request.Context(), user.ID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(list), "orders": list})
}

// GET /api/orders/all (admin) — every order with the owner expanded.
func (h *OrderHandler) ListAll(c *gin.Context) {
	list, err := h.engine.ListAll(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(list), "orders": list})
}

// GET /api/orders/:id
func (h *OrderHandler) Get(c *gin.Context) {
	user := auth.CurrentUser(c)
	order, err := h.engine.Get(c.Request.Context(), c.Param("id"), user.ID, user.Role)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": order})
}

// PUT /api/orders/:id/status (admin)
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, apperr.Validation("Request body must be valid JSON"))
		return
	}
	order, err := h.engine.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Order status updated successfully", "order": order})
}

// PUT /api/orders/:id — full item replacement, owner while pending.
func (h *OrderHandler) UpdateItems(c *gin.Context) {
	user := auth.CurrentUser(c)

	var req updateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, apperr.Validation("Request body must be valid JSON"))
		return
	}
	order, err := h.engine.ReplaceItems(c.Request.Context(), c.Param("id"), user.ID, req.Items)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Order updated", "order": order})
}

// DELETE /api/orders/:id — owner only, any status.
func (h *OrderHandler) Delete(c *gin.Context) {
	user := auth.CurrentUser(c)
	if err := h.engine.Delete(c.Request.Context(), c.Param("id"), user.ID); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Order deleted successfully"})
}
