package router

import (
	"nickstore/internal/rest"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func SetupUserRoutes(api *echo.Group, handler *rest.UserHandler, authRequired, adminOnly, selfOrAdmin echo.MiddlewareFunc) {
	users := api.Group("/users")

	users.POST("/register", handler.Register)
	users.POST("/login", handler.Login)

	users.POST("/logout", handler.Logout, authRequired)
	users.GET("/profile", handler.GetProfile, authRequired)
	users.PUT("/profile", handler.UpdateProfile, authRequired)

	users.GET("", handler.GetAllUsers, authRequired, adminOnly)
	users.GET("/:id", handler.GetUserByID, authRequired, selfOrAdmin)
	users.PUT("/:id", handler.UpdateUser, authRequired, adminOnly)
	users.POST("/:id/balance", handler.AdjustBalance, authRequired, adminOnly)
	users.DELETE("/:id", handler.DeleteUser, authRequired, adminOnly)
}

func SetupProductRoutes(api *echo.Group, handler *rest.ProductHandler, authRequired, sellerOrAdmin, adminOnly echo.MiddlewareFunc) {
	products := api.Group("/products")

	products.GET("", handler.GetAllProducts)
	products.GET("/:id", handler.GetProductByID)
	products.GET("/:id/credentials", handler.GetProductCredentials, authRequired)
	products.POST("", handler.CreateProduct, authRequired, sellerOrAdmin)
	products.PUT("/:id", handler.UpdateProduct, authRequired, sellerOrAdmin)
	products.DELETE("/:id", handler.DeleteProduct, authRequired, adminOnly)
}

func SetupCategoryRoutes(api *echo.Group, handler *rest.CategoryHandler, authRequired, adminOnly echo.MiddlewareFunc) {
	categories := api.Group("/categories")

	categories.GET("", handler.GetAllCategories)
	categories.GET("/:id", handler.GetCategoryByID)
	categories.POST("", handler.CreateCategory, authRequired, adminOnly)
	categories.PUT("/:id", handler.UpdateCategory, authRequired, adminOnly)
	categories.DELETE("/:id", handler.DeleteCategory, authRequired, adminOnly)
}

func SetupOrdersRoutes(api *echo.Group, handler *rest.OrdersHandler, authRequired, adminOnly echo.MiddlewareFunc) {
	orders := api.Group("/orders", authRequired)

	orders.POST("", handler.CreateOrder)
	orders.GET("/myorders", handler.GetMyOrders)
	orders.GET("/:id", handler.GetOrderByID)
	orders.GET("", handler.GetAllOrders, adminOnly)
	orders.PUT("/:id/status", handler.UpdateOrderStatus, adminOnly)
}

func SetupDepositRoutes(api *echo.Group, handler *rest.DepositHandler, authRequired echo.MiddlewareFunc) {
	deposits := api.Group("/deposits", authRequired)

	deposits.POST("", handler.CreateDeposit)
	deposits.GET("", handler.GetMyDeposits)
}

// SetupWebhookRoutes registers the gateway callback. No auth
// middleware: the HMAC signature is the authentication.
func SetupWebhookRoutes(api *echo.Group, handler *rest.WebhookHandler) {
	api.POST("/webhook", handler.HandleWebhook)
}

func SetupMetricsRoute(e *echo.Echo) {
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
}
