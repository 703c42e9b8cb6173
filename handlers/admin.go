package handlers

import (
	"net/http"

	"order-tracking-api/config"
	"order-tracking-api/middleware"
	"order-tracking-api/models"
	"order-tracking-api/store"

	"github.com/gin-gonic/gin"
)

// AdminGetAllOrders returns the company's orders with full detail, archived
// included, plus a dashboard summary by derived status.
func AdminGetAllOrders(c *gin.Context) {
	companyID := middleware.GetCompanyID(c)
	orders, err := store.GetOrders(companyID, nil)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load orders"})
		return
	}

	if status := c.Query("status"); status != "" {
		filtered := orders[:0]
		for _, o := range orders {
			if string(o.Status) == status {
				filtered = append(filtered, o)
			}
		}
		orders = filtered
	}

	summary := map[string]int{}
	var totalRevenue float64
	for _, o := range orders {
		summary[string(o.Status)]++
		if o.Status == models.OrderCompleted {
			for _, it := range o.Items {
				totalRevenue += it.Price * float64(it.Quantity)
			}
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"order_summary": summary,
		"total_revenue": totalRevenue,
		"count":         len(orders),
		"orders":        orders,
	})
}

type UpdateCompanySettingsRequest struct {
	DetailedTracking *bool `json:"detailed_tracking" binding:"required"`
}

// UpdateCompanySettings toggles detailed tracking for the admin's company
func UpdateCompanySettings(c *gin.Context) {
	companyID := middleware.GetCompanyID(c)
	var req UpdateCompanySettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var company models.Company
	if err := config.DB.First(&company, companyID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Company not found"})
		return
	}
	config.DB.Model(&company).Update("detailed_tracking", *req.DetailedTracking)
	c.JSON(http.StatusOK, gin.H{"message": "Company settings updated", "company": company})
}

// CreateCompany registers a new tenant
func CreateCompany(c *gin.Context) {
	var req struct {
		Name             string `json:"name" binding:"required"`
		DetailedTracking bool   `json:"detailed_tracking"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	company := models.Company{Name: req.Name, DetailedTracking: req.DetailedTracking}
	if err := config.DB.Create(&company).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create company"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Company created", "company": company})
}
