package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"order-tracking-api/config"
	"order-tracking-api/middleware"
	"order-tracking-api/models"
	"order-tracking-api/receipt"
	"order-tracking-api/statemachine"
	"order-tracking-api/store"
	"order-tracking-api/tracking"

	"github.com/gin-gonic/gin"
)

// Feeds is the per-company tracking feed registry, wired up in main
var Feeds *tracking.Manager

// GetTracking serves the staff tracking view: the latest polled snapshot of
// the company's active orders plus the items that newly came up ready since
// the client's last poll — the client plays its notification sound for
// those. Clients pass the alerts_cursor they got back as ?alerts_since= so
// each viewer gets every alert exactly once, independent of other viewers.
func GetTracking(c *gin.Context) {
	companyID := middleware.GetCompanyID(c)
	if companyID == 0 {
		c.JSON(http.StatusForbidden, gin.H{"error": "No company scope on this account"})
		return
	}

	var orders []models.Order
	var newlyReady []tracking.ReadyKey
	cursor := 0
	if Feeds != nil {
		since, _ := strconv.Atoi(c.Query("alerts_since"))
		feed := Feeds.ForCompany(companyID)
		orders = feed.Snapshot()
		newlyReady, cursor = feed.AlertsSince(since)
	} else {
		var err error
		orders, err = store.GetActiveOrders(companyID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load orders"})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"count":         len(orders),
		"orders":        orders,
		"newly_ready":   newlyReady,
		"alerts_cursor": cursor,
	})
}

type PlaceInternalOrderRequest struct {
	TargetType   models.TargetType `json:"target_type" binding:"required,oneof=table room"`
	TargetNumber string            `json:"target_number" binding:"required"`
	Items        []store.NewItem   `json:"items" binding:"required,min=1,dive"`
}

// PlaceInternalOrder creates a staff-entered order for the caller's company
func PlaceInternalOrder(c *gin.Context) {
	companyID := middleware.GetCompanyID(c)
	var req PlaceInternalOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order, err := store.PlaceOrder(companyID, nil, req.TargetType, req.TargetNumber, models.SourceInternal, req.Items)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Order placed", "order": order})
}

type UpdateItemStatusRequest struct {
	ItemIndex int               `json:"item_index" binding:"min=0"`
	Status    models.ItemStatus `json:"status" binding:"required,oneof=pending preparing ready delivered received"`
	// Revision optionally pins the write to the order revision the client
	// read; a stale value gets a 409 instead of silently overwriting
	Revision *int64 `json:"revision"`
}

// UpdateItemStatus transitions one line item. The store primitive is
// permissive; this call site enforces the state machine and rejects illegal
// moves with 422.
func UpdateItemStatus(c *gin.Context) {
	companyID := middleware.GetCompanyID(c)
	var req UpdateItemStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order, err := store.GetOrder(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	}
	if order.CompanyID != companyID {
		// same answer as an unknown id — staff never learn about other
		// tenants' orders through this path
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	}
	if req.ItemIndex >= len(order.Items) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Item index out of range"})
		return
	}

	item := order.Items[req.ItemIndex]
	if err := statemachine.CanTransition(item.Status, req.Status, statemachine.ActorStaff); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":             "Invalid state transition",
			"current_status":    item.Status,
			"reason":            err.Error(),
			"valid_next_states": statemachine.ValidTransitionsFrom(item.Status),
		})
		return
	}
	// pending→preparing only makes sense for lines the kitchen actually
	// tracks: preparation items, or any item under detailed tracking
	if item.Status == models.ItemPending && req.Status == models.ItemPreparing {
		if !item.RequiresPreparation && !order.Company.DetailedTracking {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error": "Item does not require preparation and detailed tracking is disabled",
			})
			return
		}
	}

	actor := &models.Actor{ID: middleware.GetUserID(c), Name: middleware.GetUserName(c)}
	if err := store.UpdateOrderItemStatus(order.ID, req.ItemIndex, req.Status, actor, req.Revision); err != nil {
		if errors.Is(err, store.ErrConcurrentModification) {
			c.JSON(http.StatusConflict, gin.H{"error": "Order was updated by someone else, please retry"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update item status"})
		return
	}

	updated, err := store.GetOrder(order.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reload order"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Item status updated", "order": updated})
}

type ValidateReceiptRequest struct {
	Token string `json:"token" binding:"required"`
}

// ValidateReceipt runs the scan-to-validate flow against the caller's
// company scope. Every pending/ready item of the resolved order is
// transitioned to delivered.
func ValidateReceipt(c *gin.Context) {
	companyID := middleware.GetCompanyID(c)
	var req ValidateReceiptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := receipt.Validate(req.Token, companyID)
	if err != nil {
		switch {
		case errors.Is(err, receipt.ErrInvalidToken):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Not a valid receipt code"})
		case errors.Is(err, store.ErrOrderNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "No matching order found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Receipt validation failed"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":          result.Message,
		"order_id":         result.OrderID,
		"items_delivered":  result.ItemsDelivered,
		"dismiss_after_ms": receipt.FeedbackDismissAfter / time.Millisecond,
	})
}

// ArchiveCompleted bulk-archives the company's fully delivered orders so
// they drop out of active tracking views.
func ArchiveCompleted(c *gin.Context) {
	companyID := middleware.GetCompanyID(c)
	archived, err := store.ArchiveCompletedOrders(companyID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to archive orders"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Completed orders archived", "archived": archived})
}

// GetCompanySettings returns the caller's company record
func GetCompanySettings(c *gin.Context) {
	companyID := middleware.GetCompanyID(c)
	var company models.Company
	if err := config.DB.First(&company, companyID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Company not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"company": company})
}
