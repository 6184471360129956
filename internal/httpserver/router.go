package httpserver

import (
	"context"
	"log"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"storefront/internal/domain"
	orderrepo "storefront/internal/repository/order"
	cartsvc "storefront/internal/service/cart"
	ordersvc "storefront/internal/service/order"
)

// Deps bundles everything the router needs.
type Deps struct {
	CartSvc  cartService
	OrderSvc orderService
	Identity IdentityResolver

	CORSOrigins []string
}

type cartService interface {
	Get(ctx context.Context, ownerID string) (*cartsvc.View, error)
	Add(ctx context.Context, ownerID, productID string, quantity int) (*cartsvc.View, error)
	SetQuantity(ctx context.Context, ownerID, productID string, quantity int) (*cartsvc.View, error)
	Remove(ctx context.Context, ownerID, productID string) (*cartsvc.View, error)
	Clear(ctx context.Context, ownerID string) error
}

type orderService interface {
	Create(ctx context.Context, ownerID string, in ordersvc.CreateInput) (*ordersvc.Receipt, error)
	ListMine(ctx context.Context, ownerID string) ([]domain.Order, error)
	Cancel(ctx context.Context, ident domain.Identity, orderID string) (*domain.Order, error)
	UpdateStatus(ctx context.Context, ident domain.Identity, orderID string, next domain.OrderStatus) (*domain.Order, error)
	List(ctx context.Context, q ordersvc.ListQuery) (*ordersvc.ListResult, error)
	Stats(ctx context.Context, status, search string) (*orderrepo.Stats, error)
}

// buildRouter wires routes for the API.
func buildRouter(logger *log.Logger, db *pgxpool.Pool, deps Deps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(requestID(), gin.LoggerWithWriter(logger.Writer()), gin.Recovery())

	origins := deps.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	corsCfg := cors.DefaultConfig()
	if len(origins) == 1 && origins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = origins
	}
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization", "Idempotency-Key", "X-User-Id", "X-User-Role")
	router.Use(cors.New(corsCfg))

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(db))

	authed := router.Group("/", authRequired(deps.Identity))

	cart := authed.Group("/cart")
	cart.GET("", getCartHandler(logger, deps.CartSvc))
	cart.POST("", addToCartHandler(logger, deps.CartSvc))
	cart.PUT("", updateCartItemHandler(logger, deps.CartSvc))
	cart.DELETE("/:product_id", removeCartItemHandler(logger, deps.CartSvc))
	cart.DELETE("", clearCartHandler(logger, deps.CartSvc))

	orders := authed.Group("/order")
	orders.POST("", createOrderHandler(logger, deps.OrderSvc))
	orders.GET("/my-orders", myOrdersHandler(logger, deps.OrderSvc))
	orders.PUT("/:id/cancel", cancelOrderHandler(logger, deps.OrderSvc))

	staff := orders.Group("", staffOnly())
	staff.GET("", listOrdersHandler(logger, deps.OrderSvc))
	staff.GET("/stats", orderStatsHandler(logger, deps.OrderSvc))
	staff.PUT("/:id/status", updateOrderStatusHandler(logger, deps.OrderSvc))

	return router
}

// requestID tags every request, so log lines from one call can be stitched
// together.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader("X-Request-ID")
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Writer.Header().Set("X-Request-ID", rid)
		c.Next()
	}
}
