package http

import (
	"net/http"
	"strconv"

	"github.com/Eldesouky97/home-craft/internal/domain"
	"github.com/Eldesouky97/home-craft/internal/services"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	orders  *services.OrderService
	catalog *services.CatalogService
	stores  *services.StoreService
	auth    *services.AuthService
	uploads *services.UploadService
	stats   *services.StatsService
	resp    *Responder
	limiter *RateLimiter
}

type Services struct {
	Orders  *services.OrderService
	Catalog *services.CatalogService
	Stores  *services.StoreService
	Auth    *services.AuthService
	Uploads *services.UploadService
	Stats   *services.StatsService
}

func NewHandler(svc Services, resp *Responder, limiter *RateLimiter) *Handler {
	return &Handler{
		orders:  svc.Orders,
		catalog: svc.Catalog,
		stores:  svc.Stores,
		auth:    svc.Auth,
		uploads: svc.Uploads,
		stats:   svc.Stats,
		resp:    resp,
		limiter: limiter,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	api := r.Group("/api", Authenticate(h.auth, h.resp))
	if h.limiter != nil {
		api.Use(h.limiter.Handler())
	}

	authed := RequireAuth(h.resp)
	sellers := RequireRole(h.resp, domain.RoleSeller, domain.RoleAdmin)
	admins := RequireRole(h.resp, domain.RoleAdmin)

	auth := api.Group("/auth")
	auth.POST("/register", h.Register)
	auth.POST("/login", h.Login)
	auth.GET("/me", authed, h.Me)
	auth.PUT("/profile", authed, h.UpdateProfile)
	auth.PUT("/change-password", authed, h.ChangePassword)

	orders := api.Group("/orders")
	orders.POST("", h.CreateOrder)
	orders.GET("", admins, h.ListOrders)
	orders.GET("/my-orders", authed, h.ListMyOrders)
	orders.GET("/store-orders", sellers, h.ListStoreOrders)
	orders.GET("/stats", sellers, h.OrderStats)
	orders.GET("/:id", authed, h.GetOrder)
	orders.PUT("/:id/status", sellers, h.UpdateOrderStatus)
	orders.DELETE("/:id", admins, h.DeleteOrder)

	products := api.Group("/products")
	products.GET("", h.ListProducts)
	products.GET("/store/:storeId", h.ListStoreProducts)
	products.GET("/:id", h.GetProduct)
	products.POST("", sellers, h.CreateProduct)
	products.PUT("/:id", sellers, h.UpdateProduct)
	products.DELETE("/:id", sellers, h.DeleteProduct)

	categories := api.Group("/categories")
	categories.GET("", h.ListCategories)
	categories.GET("/:id", h.GetCategory)
	categories.GET("/:id/products", h.ListCategoryProducts)
	categories.POST("", admins, h.CreateCategory)
	categories.PUT("/:id", admins, h.UpdateCategory)
	categories.DELETE("/:id", admins, h.DeleteCategory)

	stores := api.Group("/stores")
	stores.GET("", h.ListStores)
	stores.GET("/featured", h.FeaturedStores)
	stores.GET("/mine", sellers, h.ListMyStores)
	stores.GET("/:id", h.GetStore)
	stores.POST("", sellers, h.CreateStore)
	stores.PUT("/:id", sellers, h.UpdateStore)
	stores.DELETE("/:id", sellers, h.DeleteStore)

	stats := api.Group("/stats")
	stats.GET("/general", h.GeneralStats)
	stats.GET("/dashboard", sellers, h.DashboardStats)

	uploads := api.Group("/uploads", sellers)
	uploads.POST("", h.UploadImage)
	uploads.DELETE("/:name", h.DeleteImage)
}

// pathID parses the :id parameter and writes the failure itself.
func (h *Handler) pathID(c *gin.Context) (uint64, bool) {
	return h.pathUint(c, "id")
}

func (h *Handler) pathUint(c *gin.Context, name string) (uint64, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		h.resp.FailKey(c, http.StatusBadRequest, "request.invalid_id", raw)
		return 0, false
	}
	return id, true
}

func (h *Handler) bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		h.resp.FailKey(c, http.StatusBadRequest, "request.invalid_body")
		return false
	}
	return true
}

func (h *Handler) bindQuery(c *gin.Context, dst any) bool {
	if err := c.ShouldBindQuery(dst); err != nil {
		h.resp.FailKey(c, http.StatusBadRequest, "request.invalid_body")
		return false
	}
	return true
}
