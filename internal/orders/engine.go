// Package orders implements the order lifecycle: building line items
// from catalog snapshots, recomputing totals before every write, and
// enforcing ownership and status rules on mutation.
package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/shopkit/storefront/internal/apperr"
	"github.com/shopkit/storefront/internal/models"
	"github.com/shopkit/storefront/internal/store"
)

type Engine struct {
	products store.ProductStore
	orders   store.OrderStore
	users    store.UserStore
}

func NewEngine(products store.ProductStore, orders store.OrderStore, users store.UserStore) *Engine {
	return &Engine{products: products, orders: orders, users: users}
}

// ItemInput is one requested line item; the unit price is never part
// of the input, it is always read from the catalog.
type ItemInput struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// Create builds an order from the current catalog state. All items are
// resolved before anything is written, so a missing product aborts the
// whole operation with nothing persisted.
func (e *Engine) Create(ctx context.Context, userID primitive.ObjectID, items []ItemInput, shipping map[string]any) (*models.Order, error) {
	resolved, err := e.resolveItems(ctx, items)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	order := &models.Order{
		UserID:          userID,
		Items:           resolved,
		Status:          models.StatusPending,
		ShippingAddress: shipping,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	order.ComputeTotal()

	if err := e.orders.Create(ctx, order); err != nil {
		// An insert cannot miss a document; only reachability matters.
		if errors.Is(err, store.ErrUnavailable) {
			return nil, apperr.Unavailable(err)
		}
		return nil, apperr.Internal(err)
	}
	return e.expand(ctx, order), nil
}

// Get returns one order. The owner and administrators may read it;
// anyone else is denied.
func (e *Engine) Get(ctx context.Context, orderID string, callerID primitive.ObjectID, callerRole string) (*models.Order, error) {
	order, err := e.fetch(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != callerID && callerRole != models.RoleAdmin {
		return nil, apperr.Forbidden("You can only view your own orders")
	}
	return e.expand(ctx, order), nil
}

// ListOwn returns the caller's orders, newest first.
func (e *Engine) ListOwn(ctx context.Context, userID primitive.ObjectID) ([]models.Order, error) {
	list, err := e.orders.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperr.FromStore(err, apperr.NotFound("Order not found"))
	}
	for i := range list {
		e.expand(ctx, &list[i])
	}
	return list, nil
}

// ListAll returns every order, newest first, with the owner expanded.
// The caller must already have passed the admin gate.
func (e *Engine) ListAll(ctx context.Context) ([]models.Order, error) {
	list, err := e.orders.ListAll(ctx)
	if err != nil {
		return nil, apperr.FromStore(err, apperr.NotFound("Order not found"))
	}
	for i := range list {
		e.expand(ctx, &list[i])
		if u, err := e.users.Get(ctx, list[i].UserID); err == nil {
			list[i].User = u.Summary()
		}
	}
	return list, nil
}

// UpdateStatus sets the order status. Any of the five statuses may
// follow any other; only membership in the set is checked.
func (e *Engine) UpdateStatus(ctx context.Context, orderID, status string) (*models.Order, error) {
	if !models.ValidOrderStatus(status) {
		return nil, &apperr.Error{
			Kind:    apperr.KindValidation,
			Message: "Invalid status",
			Detail:  "Status must be one of: " + strings.Join(models.OrderStatuses, ", "),
		}
	}

	order, err := e.fetch(ctx, orderID)
	if err != nil {
		return nil, err
	}

	order.Status = status
	order.UpdatedAt = time.Now().UTC()
	order.ComputeTotal()
	if err := e.orders.Update(ctx, order); err != nil {
		return nil, apperr.FromStore(err, apperr.NotFound("Order not found"))
	}
	return e.expand(ctx, order), nil
}

// ReplaceItems swaps the entire item sequence of a pending order owned
// by the caller, re-snapshotting prices from the current catalog.
func (e *Engine) ReplaceItems(ctx context.Context, orderID string, callerID primitive.ObjectID, items []ItemInput) (*models.Order, error) {
	order, err := e.fetch(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != callerID {
		return nil, apperr.Forbidden("You can only modify your own orders")
	}
	if order.Status != models.StatusPending {
		return nil, apperr.InvalidState("Only pending orders can be modified")
	}

	resolved, err := e.resolveItems(ctx, items)
	if err != nil {
		return nil, err
	}

	order.Items = resolved
	order.UpdatedAt = time.Now().UTC()
	order.ComputeTotal()
	if err := e.orders.Update(ctx, order); err != nil {
		return nil, apperr.FromStore(err, apperr.NotFound("Order not found"))
	}
	return e.expand(ctx, order), nil
}

// Delete removes an order. Deletion is owner-exclusive: administrators
// are not granted this path, and there is no pending-only restriction.
func (e *Engine) Delete(ctx context.Context, orderID string, callerID primitive.ObjectID) error {
	order, err := e.fetch(ctx, orderID)
	if err != nil {
		return err
	}
	if order.UserID != callerID {
		return apperr.Forbidden("You can only delete your own orders")
	}
	if err := e.orders.Delete(ctx, order.ID); err != nil {
		return apperr.FromStore(err, apperr.NotFound("Order not found"))
	}
	return nil
}

// resolveItems validates every requested item and snapshots the current
// catalog price into it. The first failure aborts; nothing is written.
func (e *Engine) resolveItems(ctx context.Context, items []ItemInput) ([]models.OrderItem, error) {
	if len(items) == 0 {
		return nil, apperr.Validation("Items are required")
	}

	resolved := make([]models.OrderItem, 0, len(items))
	for _, item := range items {
		id, err := primitive.ObjectIDFromHex(item.ProductID)
		if err != nil {
			return nil, apperr.InvalidID()
		}
		if item.Quantity < 1 {
			return nil, apperr.Validation("Quantity must be at least 1")
		}
		product, err := e.products.Get(ctx, id)
		if err != nil {
			return nil, apperr.FromStore(err, &apperr.Error{
				Kind:    apperr.KindNotFound,
				Message: "Product not found",
				Detail:  fmt.Sprintf("Product with ID %s does not exist", item.ProductID),
			})
		}
		resolved = append(resolved, models.OrderItem{
			ProductID: product.ID,
			Quantity:  item.Quantity,
			Price:     product.Price,
		})
	}
	return resolved, nil
}

func (e *Engine) fetch(ctx context.Context, orderID string) (*models.Order, error) {
	id, err := primitive.ObjectIDFromHex(orderID)
	if err != nil {
		return nil, apperr.InvalidID()
	}
	order, err := e.orders.Get(ctx, id)
	if err != nil {
		return nil, apperr.FromStore(err, apperr.NotFound("Order not found"))
	}
	return order, nil
}

// expand fills the denormalized product view on each item. A deleted
// product leaves the view nil while the captured price and quantity
// stand on their own.
func (e *Engine) expand(ctx context.Context, order *models.Order) *models.Order {
	for i := range order.Items {
		if p, err := e.products.Get(ctx, order.Items[i].ProductID); err == nil {
			order.Items[i].Product = p.Summary()
		}
	}
	return order
}
