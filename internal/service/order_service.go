package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"slicehub/api/internal/apperr"
	"slicehub/api/internal/factory"
	"slicehub/api/internal/ids"
	"slicehub/api/internal/models"
)

const (
	menuCacheKey = "menu"
	menuCacheTTL = 5 * time.Minute
)

type MenuStore interface {
	List(ctx context.Context) ([]models.MenuItem, error)
	Add(ctx context.Context, item models.MenuItem) (models.MenuItem, error)
}

type OrderStore interface {
	Create(ctx context.Context, order models.Order) error
	ListByUser(ctx context.Context, userID string) ([]models.Order, error)
}

// Fulfiller forwards an order to the external factory.
type Fulfiller interface {
	Submit(ctx context.Context, diner factory.Diner, order models.Order) (factory.Fulfillment, error)
}

// ReceiptArchiver stores the factory's response for later dispute handling.
type ReceiptArchiver interface {
	ArchiveReceipt(ctx context.Context, orderID string, receipt []byte) error
}

type OrderService struct {
	menu     MenuStore
	orders   OrderStore
	fulfill  Fulfiller
	receipts ReceiptArchiver
	cache    *redis.Client
	log      zerolog.Logger
}

func NewOrderService(menu MenuStore, orders OrderStore, fulfill Fulfiller, receipts ReceiptArchiver, cache *redis.Client, log zerolog.Logger) *OrderService {
	return &OrderService{
		menu:     menu,
		orders:   orders,
		fulfill:  fulfill,
		receipts: receipts,
		cache:    cache,
		log:      log,
	}
}

// Menu returns the menu, served from the redis cache when warm. Only the
// menu is cached; nothing caches in front of the active-session table.
func (s *OrderService) Menu(ctx context.Context) ([]models.MenuItem, error) {
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, menuCacheKey).Bytes(); err == nil {
			var items []models.MenuItem
			if err := json.Unmarshal(cached, &items); err == nil {
				return items, nil
			}
		}
	}

	items, err := s.menu.List(ctx)
	if err != nil {
		return nil, err
	}

	s.cacheMenu(ctx, items)
	return items, nil
}

// AddMenuItem appends the item and returns the full updated menu.
func (s *OrderService) AddMenuItem(ctx context.Context, item models.MenuItem) ([]models.MenuItem, error) {
	if _, err := s.menu.Add(ctx, item); err != nil {
		return nil, err
	}

	items, err := s.menu.List(ctx)
	if err != nil {
		return nil, err
	}

	s.cacheMenu(ctx, items)
	return items, nil
}

type PlaceOrderResult struct {
	Order     models.Order
	ReportURL string
	JWT       string
}

// PlaceOrder persists the order locally and forwards it to the factory. A
// factory failure surfaces as a 500 carrying the factory's own message. The
// receipt archive is best effort and never blocks the response.
func (s *OrderService) PlaceOrder(ctx context.Context, diner models.Principal, order models.Order) (PlaceOrderResult, error) {
	order.ID = ids.New()
	order.DinerID = diner.ID
	order.Date = time.Now().UTC()

	if err := s.orders.Create(ctx, order); err != nil {
		return PlaceOrderResult{}, err
	}

	fulfillment, err := s.fulfill.Submit(ctx, factory.Diner{
		ID:    diner.ID,
		Name:  diner.Name,
		Email: diner.Email,
	}, order)
	if err != nil {
		return PlaceOrderResult{}, apperr.Internal(err.Error(), err)
	}

	if s.receipts != nil {
		go s.archiveReceipt(order.ID, fulfillment)
	}

	return PlaceOrderResult{
		Order:     order,
		ReportURL: fulfillment.ReportURL,
		JWT:       fulfillment.JWT,
	}, nil
}

func (s *OrderService) ListByUser(ctx context.Context, userID string) ([]models.Order, error) {
	return s.orders.ListByUser(ctx, userID)
}

func (s *OrderService) cacheMenu(ctx context.Context, items []models.MenuItem) {
	if s.cache == nil {
		return
	}
	encoded, err := json.Marshal(items)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, menuCacheKey, encoded, menuCacheTTL).Err(); err != nil {
		s.log.Warn().Err(err).Msg("menu cache write failed")
	}
}

func (s *OrderService) archiveReceipt(orderID string, fulfillment factory.Fulfillment) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	receipt, err := json.Marshal(fulfillment)
	if err != nil {
		return
	}
	if err := s.receipts.ArchiveReceipt(ctx, orderID, receipt); err != nil {
		s.log.Warn().Err(err).Str("order_id", orderID).Msg("receipt archive failed")
	}
}
