// internal/interfaces/http/routes/routes.go
package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/your-org/ecommerce-core/internal/app"
	"github.com/your-org/ecommerce-core/internal/interfaces/http/handlers"
	"github.com/your-org/ecommerce-core/internal/interfaces/http/middleware"
)

// SetupAuthRoutes sets up authentication related routes
func SetupAuthRoutes(rg *gin.RouterGroup, a *app.App) {
	authHandler := handlers.NewAuthHandler(a.Users, a.Logger)

	auth := rg.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
	}
}

// SetupUserRoutes sets up profile, wishlist and cart routes
func SetupUserRoutes(rg *gin.RouterGroup, a *app.App) {
	profileHandler := handlers.NewUserProfileHandler(a.Users, a.Logger)
	wishlistHandler := handlers.NewWishlistHandler(a.Wishlists, a.Logger)
	cartHandler := handlers.NewCartHandler(a.Carts, a.Logger)

	users := rg.Group("/users")
	users.Use(middleware.AuthMiddleware(a.JWT))
	{
		users.GET("/profile", profileHandler.GetProfile)
		users.PUT("/profile", profileHandler.UpdateProfile)

		users.GET("/wishlist", wishlistHandler.GetWishlist)
		users.POST("/wishlist/:productId", wishlistHandler.AddToWishlist)
		users.DELETE("/wishlist/:productId", wishlistHandler.RemoveFromWishlist)

		users.GET("/cart", cartHandler.GetCart)
		users.POST("/cart", cartHandler.AddToCart)
		users.PUT("/cart/:productId", cartHandler.UpdateCartItem)
		users.DELETE("/cart/:productId", cartHandler.RemoveFromCart)
	}
}

// SetupCategoryRoutes sets up category related routes
func SetupCategoryRoutes(rg *gin.RouterGroup, a *app.App) {
	categoryHandler := handlers.NewCategoryHandler(a.Categories, a.Logger)

	categories := rg.Group("/categories")
	{
		categories.GET("", categoryHandler.ListCategories)
		categories.GET("/:id", categoryHandler.GetCategory)

		admin := categories.Group("")
		admin.Use(middleware.AuthMiddleware(a.JWT), middleware.AdminMiddleware())
		{
			admin.POST("", categoryHandler.CreateCategory)
			admin.PUT("/:id", categoryHandler.UpdateCategory)
			admin.DELETE("/:id", categoryHandler.DeleteCategory)
		}
	}
}

// SetupProductRoutes sets up product related routes
func SetupProductRoutes(rg *gin.RouterGroup, a *app.App) {
	productHandler := handlers.NewProductHandler(a.Products, a.Logger)

	products := rg.Group("/products")
	{
		public := products.Group("")
		public.Use(middleware.OptionalAuthMiddleware(a.JWT))
		{
			public.GET("", productHandler.ListProducts)
			public.GET("/:id", productHandler.GetProduct)
			public.GET("/slug/:slug", productHandler.GetProductBySlug)
		}

		admin := products.Group("")
		admin.Use(middleware.AuthMiddleware(a.JWT), middleware.AdminMiddleware())
		{
			admin.POST("", productHandler.CreateProduct)
			admin.PUT("/:id", productHandler.UpdateProduct)
			admin.DELETE("/:id", productHandler.DeleteProduct)
		}
	}
}

// SetupReviewRoutes sets up review related routes
func SetupReviewRoutes(rg *gin.RouterGroup, a *app.App) {
	reviewHandler := handlers.NewReviewHandler(a.Reviews, a.Logger)

	reviews := rg.Group("/reviews")
	{
		reviews.GET("/product/:id", reviewHandler.ListProductReviews)

		protected := reviews.Group("")
		protected.Use(middleware.AuthMiddleware(a.JWT))
		{
			protected.POST("", reviewHandler.CreateReview)
			protected.PUT("/:id", reviewHandler.UpdateReview)
			protected.DELETE("/:id", reviewHandler.DeleteReview)
			protected.PUT("/:id/approval", middleware.AdminMiddleware(), reviewHandler.SetApproval)
		}
	}
}

// SetupOrderRoutes sets up order related routes
func SetupOrderRoutes(rg *gin.RouterGroup, a *app.App) {
	orderHandler := handlers.NewOrderHandler(a.Orders, a.Carts, a.Logger)

	orders := rg.Group("/orders")
	orders.Use(middleware.AuthMiddleware(a.JWT))
	{
		orders.POST("", orderHandler.CreateOrder)
		orders.GET("", orderHandler.ListOrders)
		orders.GET("/:id", orderHandler.GetOrder)
		orders.GET("/number/:number", orderHandler.GetOrderByNumber)
		orders.POST("/:id/cancel", orderHandler.CancelOrder)

		orders.PUT("/:id/status", middleware.AdminMiddleware(), orderHandler.UpdateStatus)
		orders.PUT("/:id/payment", middleware.AdminMiddleware(), orderHandler.UpdatePayment)
	}
}

// SetupAdminRoutes sets up operational admin routes
func SetupAdminRoutes(rg *gin.RouterGroup, a *app.App) {
	journalHandler := handlers.NewJournalHandler(a.Journal, a.Logger)

	admin := rg.Group("/admin")
	admin.Use(middleware.AuthMiddleware(a.JWT), middleware.AdminMiddleware())
	{
		admin.GET("/journal", journalHandler.ListPending)
		admin.POST("/journal/replay", journalHandler.Replay)
	}
}

// SetupRoutes registers every API route under rg
func SetupRoutes(rg *gin.RouterGroup, a *app.App) {
	SetupAuthRoutes(rg, a)
	SetupUserRoutes(rg, a)
	SetupCategoryRoutes(rg, a)
	SetupProductRoutes(rg, a)
	SetupReviewRoutes(rg, a)
	SetupOrderRoutes(rg, a)
	SetupAdminRoutes(rg, a)
}
