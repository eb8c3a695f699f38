package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/gemora/gemora/internal/middleware"
)

type Deps struct {
	AuthHandler       *AuthHTTP
	OrderHandler      *OrderHTTP
	NewsletterHandler *NewsletterHTTP
	ProductHandler    *ProductHTTP
	UserHandler       *UserHTTP
	SearchHandler     *SearchHTTP
	AuthMw            *middleware.AuthMiddleware
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	v1 := e.Group("/api/v1")

	auth := v1.Group("/auth")
	auth.POST("/register", d.AuthHandler.Register)
	auth.POST("/authenticate", d.AuthHandler.Authenticate)
	auth.POST("/refresh-token", d.AuthHandler.RefreshToken)

	v1.POST("/newsletter", d.NewsletterHandler.Subscribe)
	v1.GET("/search", d.SearchHandler.Search)

	products := v1.Group("/products")
	products.GET("", d.ProductHandler.GetProducts)
	products.GET("/:id", d.ProductHandler.GetProduct)

	orders := v1.Group("/orders", d.AuthMw.RequireAuth)
	orders.POST("", d.OrderHandler.CreateOrder)
	orders.POST("/save-order", d.OrderHandler.SaveOrder)

	admin := v1.Group("/admin", d.AuthMw.RequireAdmin)
	admin.POST("/products", d.ProductHandler.CreateProduct)
	admin.PATCH("/products/:id", d.ProductHandler.PatchProduct)
	admin.DELETE("/products/:id", d.ProductHandler.DeleteProduct)
	admin.GET("/orders", d.OrderHandler.GetAllOrders)
	admin.GET("/orders/user/:id", d.OrderHandler.GetOrdersByUser)
	admin.GET("/users/:email", d.UserHandler.GetUser)
}
