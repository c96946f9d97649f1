package handlers

import (
	"github.com/labstack/echo/v4"

	"github.com/Egles-vieira/fernandes-surgical-crm-sub005/internal/app"
	"github.com/Egles-vieira/fernandes-surgical-crm-sub005/internal/http/middleware"
	"github.com/Egles-vieira/fernandes-surgical-crm-sub005/internal/ws"
)

// SetupRoutes sets up all API routes
func SetupRoutes(api *echo.Group, services *app.Services) {
	hub := ws.NewHub(services.AuthService)
	services.WebhookHandler.SetNotifier(hub)

	// Auth routes (no authentication required)
	authHandler := NewAuthHandler(services.AuthService)
	auth := api.Group("/auth")
	auth.POST("/login", authHandler.Login)

	// WhatsApp Cloud webhook (verified by hub token, not JWT)
	api.GET("/webhook/whatsapp", services.WebhookHandler.Verify)
	api.POST("/webhook/whatsapp", services.WebhookHandler.Receive)

	// WebSocket endpoint (handles authentication via query parameter)
	api.GET("/ws", hub.Handle)

	// Protected routes (require authentication)
	protected := api.Group("")
	protected.Use(middleware.JWTAuth(services.AuthService))

	conversationHandler := NewConversationHandler(services.DB)
	conversations := protected.Group("/conversations")
	conversations.GET("", conversationHandler.List)
	conversations.GET("/:id", conversationHandler.GetByID)
	conversations.GET("/:id/messages", conversationHandler.ListMessages)
	conversations.GET("/:id/interactions", conversationHandler.ListInteractions)
	conversations.PUT("/:id/ai", conversationHandler.ToggleAI)

	cartHandler := NewCartHandler(services.DB, services.CartService)
	conversations.GET("/:id/cart", cartHandler.GetByConversation)
	conversations.POST("/:id/cart/items", cartHandler.AddItem)

	customerHandler := NewCustomerHandler(services.DB, services.Classifier)
	customers := protected.Group("/customers")
	customers.GET("", customerHandler.List)
	customers.GET("/:id", customerHandler.GetByID)
	customers.GET("/:id/profile", customerHandler.GetProfile)
	customers.PUT("/:id", customerHandler.Update)

	productHandler := NewProductHandler(services.DB, services.ProductService)
	products := protected.Group("/products")
	products.GET("", productHandler.List)
	products.GET("/:id", productHandler.GetByID)
	products.POST("", productHandler.Create, middleware.RequireManager())
	products.PUT("/:id", productHandler.Update, middleware.RequireManager())
	products.DELETE("/:id", productHandler.Delete, middleware.RequireManager())

	proposalHandler := NewProposalHandler(services.DB, services.SalesRepo, services.ProposalService)
	proposals := protected.Group("/proposals")
	proposals.GET("", proposalHandler.List)
	proposals.GET("/:id", proposalHandler.GetByID)
	proposals.POST("", proposalHandler.CreateFromCart)
	proposals.PUT("/:id/status", proposalHandler.UpdateStatus)
}
