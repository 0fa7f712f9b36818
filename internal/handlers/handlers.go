package handlers

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"slicehub/api/internal/apperr"
	"slicehub/api/internal/config"
	"slicehub/api/internal/factory"
	"slicehub/api/internal/middleware"
	"slicehub/api/internal/models"
	"slicehub/api/internal/repository"
	"slicehub/api/internal/service"
	"slicehub/api/internal/storage"
)

// UserDirectory is the read surface handlers need beyond AuthService.
type UserDirectory interface {
	FindByEmail(ctx context.Context, email string) (models.User, error)
	GetByID(ctx context.Context, id string) (models.User, error)
	List(ctx context.Context, limit int, offset int) ([]models.User, error)
}

type FranchiseStore interface {
	Create(ctx context.Context, name string, admins []models.FranchiseAdmin) (models.Franchise, error)
	GetByID(ctx context.Context, id string) (models.Franchise, error)
	List(ctx context.Context, limit int, offset int) ([]models.Franchise, error)
	ListByUser(ctx context.Context, userID string) ([]models.Franchise, error)
	Delete(ctx context.Context, id string) error
	CreateStore(ctx context.Context, franchiseID string, name string) (models.Store, error)
	DeleteStore(ctx context.Context, franchiseID string, storeID string) error
}

type HandlerSet struct {
	log          zerolog.Logger
	cfg          *config.AppConfig
	authService  *service.AuthService
	orderService *service.OrderService
	users        UserDirectory
	franchises   FranchiseStore
	sessions     *repository.SessionRepository
	db           *pgxpool.Pool
	cache        *redis.Client
}

func NewHandlerSet(log zerolog.Logger, db *pgxpool.Pool, cache *redis.Client, store *storage.ObjectStore, factoryClient *factory.Client, cfg *config.AppConfig) HandlerSet {
	userRepo := repository.NewUserRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	franchiseRepo := repository.NewFranchiseRepository(db)
	menuRepo := repository.NewMenuRepository(db)
	orderRepo := repository.NewOrderRepository(db)

	auth := service.NewAuthService(userRepo, sessionRepo, cfg, log)
	orders := service.NewOrderService(menuRepo, orderRepo, factoryClient, store, cache, log)

	return HandlerSet{
		log:          log,
		cfg:          cfg,
		authService:  auth,
		orderService: orders,
		users:        userRepo,
		franchises:   franchiseRepo,
		sessions:     sessionRepo,
		db:           db,
		cache:        cache,
	}
}

// Sessions exposes the credential store for wiring the authenticator and the
// janitor in main.
func (h HandlerSet) Sessions() *repository.SessionRepository {
	return h.sessions
}

func (h HandlerSet) Register(router *gin.RouterGroup) {
	router.GET("/healthz", h.Health)

	router.POST("/auth", h.RegisterUser)
	router.PUT("/auth", h.Login)
	router.DELETE("/auth", middleware.RequireAuth(), h.Logout)

	user := router.Group("/user")
	user.Use(middleware.RequireAuth())
	{
		user.GET("/me", h.Me)
		user.GET("", h.ListUsers)
		user.PUT("/:id", h.UpdateUser)
	}

	franchise := router.Group("/franchise")
	{
		franchise.GET("", h.ListFranchises)
		franchise.GET("/:id", middleware.RequireAuth(), h.ListUserFranchises)
		franchise.POST("", middleware.RequireAuth(), h.CreateFranchise)
		// No auth gate on franchise deletion. The route predates the
		// permission model and clients depend on the current contract;
		// see TestDeleteFranchise_NoPermissionCheck.
		franchise.DELETE("/:id", h.DeleteFranchise)
		franchise.POST("/:id/store", middleware.RequireAuth(), h.CreateStore)
		franchise.DELETE("/:id/store/:storeId", middleware.RequireAuth(), h.DeleteStore)
	}

	order := router.Group("/order")
	{
		order.GET("/menu", h.Menu)
		order.PUT("/menu", middleware.RequireAuth(), h.AddMenuItem)
		order.GET("", middleware.RequireAuth(), h.ListOrders)
		order.POST("", middleware.RequireAuth(), h.PlaceOrder)
	}
}

// fail maps an error kind to its HTTP status; unknown errors become a
// generic 500 so storage detail never reaches clients.
func fail(c *gin.Context, err error) {
	e := apperr.From(err)
	c.JSON(e.Status(), gin.H{"message": e.Message})
}

// Orders exposes the order service for the janitor's cache warming.
func (h HandlerSet) Orders() *service.OrderService {
	return h.orderService
}
