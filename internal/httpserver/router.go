package httpserver

import (
	"context"
	"errors"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"tableorder/internal/domain"
	"tableorder/internal/service/cart"
	"tableorder/internal/service/catalog"
	"tableorder/internal/service/query"
	"tableorder/internal/storage"
)

type sessionService interface {
	StartSession(ctx context.Context) (*domain.Order, error)
	ResolveSession(ctx context.Context, token string) (*domain.Order, error)
	CloseSession(ctx context.Context, orderID int64, status string) (*domain.Order, error)
	Purge(ctx context.Context, orderID int64) error
}

type catalogService interface {
	Get(ctx context.Context, id int64) (*domain.Product, error)
	Create(ctx context.Context, in catalog.Input, img *catalog.Image) (*domain.Product, error)
	Update(ctx context.Context, id int64, in catalog.Input) error
	Delete(ctx context.Context, id int64) error
}

type cartService interface {
	AddItem(ctx context.Context, in cart.AddItemInput) (*domain.OrderItem, error)
	ListItems(ctx context.Context, orderID int64) ([]domain.OrderItem, error)
	ListAllItems(ctx context.Context) ([]domain.OrderItem, error)
	GetItem(ctx context.Context, itemID int64) (*domain.OrderItem, error)
	UpdateItem(ctx context.Context, in cart.UpdateItemInput) error
	RemoveItem(ctx context.Context, orderID, itemID int64) error

	AddOrUpdateCustomization(ctx context.Context, itemID, customizationID int64, note string) (*domain.Customization, error)
	RemoveCustomization(ctx context.Context, customizationID int64) error
	GetCustomization(ctx context.Context, customizationID int64) (*domain.Customization, error)
	ListCustomizations(ctx context.Context, itemID int64) ([]domain.Customization, error)
}

type paymentService interface {
	RecordPayment(ctx context.Context, orderID int64, method string, amountCents int64) (*domain.Payment, error)
	ListPayments(ctx context.Context, orderID int64) ([]domain.Payment, error)
	ListAll(ctx context.Context) ([]domain.Payment, error)
	Get(ctx context.Context, id int64) (*domain.Payment, error)
	DeletePayment(ctx context.Context, id int64) error
}

type queryService interface {
	OrderDetail(ctx context.Context, orderID int64) (*query.OrderView, error)
	SessionView(ctx context.Context, order domain.Order) (*query.OrderView, error)
	Orders(ctx context.Context) ([]query.OrderView, error)
	Catalog(ctx context.Context) ([]domain.Product, error)
}

// Deps are the services behind the routes.
type Deps struct {
	Sessions sessionService
	Catalog  catalogService
	Cart     cartService
	Payments paymentService
	Query    queryService
	Settings Settings
}

// Settings carries the HTTP-facing configuration.
type Settings struct {
	// OrderingURL is where /sessions/start redirects with ?token=.
	OrderingURL string
	// PublicBaseURL is encoded into the table QR code.
	PublicBaseURL string
	// StaffKeyHash is a bcrypt hash of the staff key. Empty leaves staff
	// routes open.
	StaffKeyHash         string
	CORSOrigins          []string
	ImageDir             string
	SessionRatePerMinute int
}

// buildRouter wires routes for the API.
func buildRouter(logger *zap.Logger, db *pgxpool.Pool, deps Deps) (*gin.Engine, error) {
	if deps.Sessions == nil || deps.Catalog == nil || deps.Cart == nil || deps.Payments == nil || deps.Query == nil {
		return nil, errors.New("httpserver: missing service dependency")
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(requestLogger(logger), recovery(logger))
	if len(deps.Settings.CORSOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     deps.Settings.CORSOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", staffKeyHeader},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(db))
	if deps.Settings.ImageDir != "" {
		router.Static(storage.URLPrefix, deps.Settings.ImageDir)
	}

	if deps.Settings.StaffKeyHash == "" {
		logger.Warn("STAFF_KEY_HASH not set; staff routes are unprotected")
	}
	staff := staffOnly(deps.Settings.StaffKeyHash)
	throttle := newClientLimiter(deps.Settings.SessionRatePerMinute, 5, 10*time.Minute).middleware()

	h := &handlers{deps: deps, logger: logger}

	router.GET("/qr/start", h.qrStart)

	router.GET("/sessions/start", throttle, h.sessionStartRedirect)
	router.POST("/sessions", throttle, h.sessionCreate)
	router.GET("/sessions/:token", h.sessionGet)

	router.GET("/products", h.productList)
	router.GET("/products/:id", h.productGet)
	router.POST("/products", staff, h.productCreate)
	router.PUT("/products/:id", staff, h.productUpdate)
	router.DELETE("/products/:id", staff, h.productDelete)

	router.GET("/orderitems", staff, h.orderItemList)
	router.GET("/orderitems/:id", h.orderItemGet)
	router.GET("/orderitems/byorder/:orderId", h.orderItemsByOrder)
	router.POST("/orderitems", h.orderItemCreate)
	router.PUT("/orderitems/:id", h.orderItemUpdate)
	router.DELETE("/orderitems/:id", h.orderItemDelete)

	router.GET("/customizations", staff, h.customizationList)
	router.GET("/customizations/:id", h.customizationGet)
	router.GET("/customizations/byorderitem/:orderItemId", h.customizationsByItem)
	router.POST("/customizations", h.customizationCreate)
	router.PUT("/customizations/:id", h.customizationUpdate)
	router.DELETE("/customizations/:id", h.customizationDelete)

	payments := router.Group("/payments", staff)
	payments.GET("", h.paymentList)
	payments.GET("/:id", h.paymentGet)
	payments.GET("/byorder/:orderId", h.paymentsByOrder)
	payments.POST("", h.paymentCreate)
	payments.DELETE("/:id", h.paymentDelete)

	orders := router.Group("/orders", staff)
	orders.GET("", h.orderList)
	orders.GET("/:id", h.orderGet)
	orders.POST("", h.orderCreate)
	orders.PUT("/:id", h.orderUpdate)
	orders.DELETE("/:id", h.orderDelete)

	return router, nil
}

type handlers struct {
	deps   Deps
	logger *zap.Logger
}
