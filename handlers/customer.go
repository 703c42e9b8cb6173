package handlers

import (
	"errors"
	"net/http"

	"order-tracking-api/middleware"
	"order-tracking-api/store"

	"github.com/gin-gonic/gin"
)

// GetMyOrders returns all orders for the logged-in customer
func GetMyOrders(c *gin.Context) {
	customerID := middleware.GetUserID(c)
	orders, err := store.GetOrders(0, &customerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load orders"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(orders), "orders": orders})
}

// GetMyOrderDetail returns a single order's full detail with history
func GetMyOrderDetail(c *gin.Context) {
	customerID := middleware.GetUserID(c)

	order, err := store.GetOrder(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	}
	if order.UserID == nil || *order.UserID != customerID {
		c.JSON(http.StatusForbidden, gin.H{"error": "This order does not belong to you"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": order})
}

// ConfirmReceipt is the customer's final confirmation once everything has
// been delivered: delivered items move to received.
func ConfirmReceipt(c *gin.Context) {
	customerID := middleware.GetUserID(c)

	order, err := store.GetOrder(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	}
	if order.UserID == nil || *order.UserID != customerID {
		c.JSON(http.StatusForbidden, gin.H{"error": "This order does not belong to you"})
		return
	}

	// optional body pins the confirmation to the revision the client read
	var req struct {
		Revision *int64 `json:"revision"`
	}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	if err := store.ConfirmOrderReceipt(order.ID, req.Revision); err != nil {
		if errors.Is(err, store.ErrConcurrentModification) {
			c.JSON(http.StatusConflict, gin.H{"error": "Order was updated by someone else, please retry"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to confirm receipt"})
		return
	}

	updated, err := store.GetOrder(order.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reload order"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Receipt confirmed, enjoy!",
		"order":   updated,
	})
}
