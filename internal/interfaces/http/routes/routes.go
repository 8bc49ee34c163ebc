// internal/interfaces/http/routes/routes.go
package routes

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-gateway/internal/domain/auth"
	"github.com/your-org/storefront-gateway/internal/domain/cart"
	"github.com/your-org/storefront-gateway/internal/domain/checkout"
	"github.com/your-org/storefront-gateway/internal/domain/profile"
	"github.com/your-org/storefront-gateway/internal/infrastructure/storeapi"
	"github.com/your-org/storefront-gateway/internal/interfaces/http/handlers"
	"github.com/your-org/storefront-gateway/internal/pkg/bus"
)

// SetupShopRoutes sets up the public catalog routes
func SetupShopRoutes(rg *gin.RouterGroup, api *storeapi.Client) {
	shopHandler := handlers.NewShopHandler(api)

	shop := rg.Group("/shop")
	{
		shop.GET("/products", shopHandler.ListProducts)
		shop.GET("/products/:id", shopHandler.GetProduct)
	}
}

// SetupAuthRoutes sets up authentication related routes
func SetupAuthRoutes(rg *gin.RouterGroup, authService *auth.Service, logger *logrus.Logger) {
	authHandler := handlers.NewAuthHandler(authService, logger)

	authGroup := rg.Group("/auth")
	{
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/logout", authHandler.Logout)
		authGroup.GET("/session", authHandler.Session)
	}
}

// SetupCartRoutes sets up cart related routes
func SetupCartRoutes(rg *gin.RouterGroup, cartService *cart.Service, authService *auth.Service, badge *cart.BadgeCache) {
	cartHandler := handlers.NewCartHandler(cartService, authService, badge)

	cartGroup := rg.Group("/cart")
	{
		cartGroup.GET("", cartHandler.GetCart)
		cartGroup.DELETE("", cartHandler.ClearCart)
		cartGroup.POST("/items", cartHandler.AddItem)
		cartGroup.DELETE("/items/:id", cartHandler.RemoveItem)
		cartGroup.GET("/badge", cartHandler.Badge)
	}
}

// SetupCheckoutRoutes sets up the order submission route
func SetupCheckoutRoutes(rg *gin.RouterGroup, checkoutService *checkout.Service, authService *auth.Service) {
	checkoutHandler := handlers.NewCheckoutHandler(checkoutService, authService)

	rg.POST("/checkout", checkoutHandler.Submit)
}

// SetupProfileRoutes sets up the profile dashboard routes
func SetupProfileRoutes(rg *gin.RouterGroup, profileService *profile.Service, eventBus *bus.Bus, sessionTTL time.Duration) {
	profileHandler := handlers.NewProfileHandler(profileService, eventBus, sessionTTL)

	profileGroup := rg.Group("/profile")
	{
		profileGroup.GET("/stats", profileHandler.Stats)
		profileGroup.PUT("/account", profileHandler.UpdateAccount)
		profileGroup.GET("/orders/:id/items", profileHandler.OrderDetail)
		profileGroup.PATCH("/orders/:id/complete", profileHandler.CompleteOrder)
		profileGroup.DELETE("/users/:id", profileHandler.DeleteUser)
		profileGroup.PATCH("/inventory/:id", profileHandler.UpdateInventory)
		profileGroup.GET("/:section", profileHandler.Section)
	}
}
