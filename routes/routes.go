package routes

import (
	"order-tracking-api/handlers"
	"order-tracking-api/middleware"
	"order-tracking-api/models"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(r *gin.Engine) {
	// ── Public routes ──────────────────────────────────────────────
	public := r.Group("/api")
	{
		// Auth
		public.POST("/auth/register", handlers.Register)
		public.POST("/auth/login", handlers.Login)

		// Self-service ordering & live order tracking (no auth needed)
		public.POST("/public/orders", handlers.PlacePublicOrder)
		public.GET("/public/orders/:id", handlers.GetPublicOrder)
		public.GET("/public/orders/:id/receipt.png", handlers.GetReceiptQR)

		// Companies (tenant bootstrap)
		public.POST("/companies", handlers.CreateCompany)

		// State machine info (great for docs/Postman)
		public.GET("/state-machine", handlers.GetStateMachineInfo)
	}

	// ── Authenticated routes ───────────────────────────────────────
	auth := r.Group("/api")
	auth.Use(middleware.AuthRequired())
	{
		auth.GET("/profile", handlers.GetProfile)
	}

	// ── Customer routes ────────────────────────────────────────────
	customer := r.Group("/api/customer")
	customer.Use(middleware.AuthRequired(), middleware.RoleRequired(models.RoleCustomer))
	{
		customer.GET("/orders", handlers.GetMyOrders)
		customer.GET("/orders/:id", handlers.GetMyOrderDetail)
		customer.PUT("/orders/:id/confirm-receipt", handlers.ConfirmReceipt)
	}

	// ── Staff routes (employees and company admins) ────────────────
	staff := r.Group("/api/staff")
	staff.Use(middleware.AuthRequired(), middleware.RoleRequired(models.RoleEmployee, models.RoleAdmin))
	{
		staff.GET("/tracking", handlers.GetTracking)
		staff.POST("/orders", handlers.PlaceInternalOrder)
		staff.PUT("/orders/:id/items", handlers.UpdateItemStatus)
		staff.POST("/receipts/validate", handlers.ValidateReceipt)
		staff.POST("/orders/archive-completed", handlers.ArchiveCompleted)
		staff.GET("/company", handlers.GetCompanySettings)
	}

	// ── Admin routes ───────────────────────────────────────────────
	admin := r.Group("/api/admin")
	admin.Use(middleware.AuthRequired(), middleware.RoleRequired(models.RoleAdmin))
	{
		admin.GET("/orders", handlers.AdminGetAllOrders)
		admin.PUT("/company/settings", handlers.UpdateCompanySettings)
	}
}
