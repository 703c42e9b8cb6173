package handlers

import (
	"net/http"
	"strconv"

	"order-tracking-api/config"
	"order-tracking-api/models"
	"order-tracking-api/receipt"
	"order-tracking-api/statemachine"
	"order-tracking-api/store"

	"github.com/gin-gonic/gin"
)

type PlacePublicOrderRequest struct {
	CompanyID    uint              `json:"company_id" binding:"required"`
	UserID       *uint             `json:"user_id"` // present when the customer is logged in
	TargetType   models.TargetType `json:"target_type" binding:"required,oneof=table room"`
	TargetNumber string            `json:"target_number" binding:"required"`
	Items        []store.NewItem   `json:"items" binding:"required,min=1,dive"`
}

// PlacePublicOrder creates a new customer self-service order. Works for
// anonymous guests; a logged-in customer passes their user id so the order
// shows up under "my orders".
func PlacePublicOrder(c *gin.Context) {
	var req PlacePublicOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var company models.Company
	if err := config.DB.First(&company, req.CompanyID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Company not found"})
		return
	}

	order, err := store.PlaceOrder(req.CompanyID, req.UserID, req.TargetType, req.TargetNumber, models.SourcePublic, req.Items)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":       "Order placed successfully",
		"order":         order,
		"receipt_token": receipt.Token(order.ID),
	})
}

// GetPublicOrder returns the live status snapshot of one order — the
// endpoint a customer's tracking screen polls.
func GetPublicOrder(c *gin.Context) {
	order, err := store.GetOrder(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": order})
}

// GetReceiptQR renders the order's receipt token as a QR PNG for the
// customer to present at pickup.
func GetReceiptQR(c *gin.Context) {
	order, err := store.GetOrder(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	}

	size := 256
	if s := c.Query("size"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n >= 64 && n <= 1024 {
			size = n
		}
	}

	png, err := receipt.QRPNG(order.ID, size)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to render QR code"})
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}

// GetStateMachineInfo returns the item state machine for informational purposes
func GetStateMachineInfo(c *gin.Context) {
	var info []gin.H
	for _, t := range statemachine.GetAllTransitions() {
		info = append(info, gin.H{"from": t.From, "to": t.To, "actor": t.Actor})
	}
	c.JSON(http.StatusOK, gin.H{
		"state_machine":   info,
		"order_statuses":  []models.OrderStatus{models.OrderPending, models.OrderAccepted, models.OrderCompleted},
		"receipt_prefix":  receipt.TokenPrefix,
		"feedback_expiry": receipt.FeedbackDismissAfter.String(),
	})
}
