package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/Eldesouky97/home-craft/internal/domain"
	"github.com/Eldesouky97/home-craft/internal/infra/cache"
	rabbit "github.com/Eldesouky97/home-craft/internal/infra/rabbitmq"
	"github.com/Eldesouky97/home-craft/internal/metrics"
	"github.com/Eldesouky97/home-craft/internal/repository"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const publishTimeout = 5 * time.Second

// OrderConfig carries the pricing policy and operational limits of the ledger.
type OrderConfig struct {
	Currency              string
	TaxRate               decimal.Decimal
	ShippingFee           decimal.Decimal
	FreeShippingThreshold decimal.Decimal
	// OperationTimeout bounds every ledger operation, including the wait
	// for a pooled connection. Zero disables the bound.
	OperationTimeout time.Duration
	OrderCacheTTL    time.Duration
	StatsCacheTTL    time.Duration
}

// price applies the pricing policy to a subtotal.
func (c OrderConfig) price(subtotal decimal.Decimal) (tax, shipping, discount decimal.Decimal) {
	tax = subtotal.Mul(c.TaxRate).Round(2)
	shipping = c.ShippingFee
	if c.FreeShippingThreshold.IsPositive() && subtotal.GreaterThanOrEqual(c.FreeShippingThreshold) {
		shipping = decimal.Zero
	}
	return tax, shipping, decimal.Zero
}

type OrderService struct {
	uow       repository.UnitOfWork
	orders    repository.OrderRepository
	products  repository.ProductRepository
	publisher rabbit.PublisherInterface
	cache     *cache.OrderCache
	cfg       OrderConfig
	log       *zap.Logger
	now       func() time.Time
	wg        sync.WaitGroup
}

func NewOrderService(
	uow repository.UnitOfWork,
	orders repository.OrderRepository,
	products repository.ProductRepository,
	pub rabbit.PublisherInterface,
	cfg OrderConfig,
	log *zap.Logger,
) *OrderService {
	if cfg.Currency == "" {
		cfg.Currency = "EGP"
	}
	return &OrderService{
		uow:       uow,
		orders:    orders,
		products:  products,
		publisher: pub,
		cfg:       cfg,
		log:       log,
		now:       time.Now,
	}
}

// SetRedisClient enables caching of order views and seller statistics.
func (s *OrderService) SetRedisClient(client *redis.Client) {
	if client == nil {
		s.cache = nil
		return
	}
	s.cache = cache.NewOrderCache(client, s.cfg.OrderCacheTTL, s.cfg.StatsCacheTTL)
}

// Wait blocks until every in-flight event publication has finished.
func (s *OrderService) Wait() {
	s.wg.Wait()
}

func (s *OrderService) opContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.cfg.OperationTimeout > 0 {
		return context.WithTimeout(ctx, s.cfg.OperationTimeout)
	}
	return context.WithCancel(ctx)
}

// fail passes domain errors through and turns anything else into a
// persistence error under key.
func (s *OrderService) fail(key string, err error) error {
	if de, ok := domain.AsError(err); ok {
		return de
	}
	s.log.Error(key, zap.Error(err))
	return domain.Persistence(key, err)
}

func resultLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrValidation):
		return "validation"
	case errors.Is(err, domain.ErrItemNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrInsufficientStock):
		return "insufficient_stock"
	case errors.Is(err, domain.ErrConflict):
		return "conflict"
	default:
		return "persistence"
	}
}

func (s *OrderService) newOrderNumber() string {
	id := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	return fmt.Sprintf("ORD-%s-%s", s.now().Format("20060102"), id[:8])
}

// CreateOrder validates the request against the catalogue, prices every line
// from the current product price and writes the order, its items and the
// stock reservations in one transaction. actor is nil for guest checkout.
func (s *OrderService) CreateOrder(ctx context.Context, actor *domain.Actor, in CreateOrderInput) (*domain.Order, error) {
	start := time.Now()
	order, err := s.createOrder(ctx, actor, in)
	metrics.RecordOrderCreated(resultLabel(err), time.Since(start))
	return order, err
}

func (s *OrderService) createOrder(ctx context.Context, actor *domain.Actor, in CreateOrderInput) (*domain.Order, error) {
	lines, err := ValidateCreateOrder(in, actor != nil)
	if err != nil {
		return nil, err
	}

	ctx, cancel := s.opContext(ctx)
	defer cancel()

	ids := make([]uint64, len(lines))
	for i, l := range lines {
		ids[i] = l.ProductID
	}
	products, err := s.products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, s.fail("order.create_failed", err)
	}

	order := &domain.Order{
		OrderNumber:   in.OrderNumber,
		Currency:      s.cfg.Currency,
		PaymentMethod: in.PaymentMethod,
		PaymentStatus: domain.PaymentPending,
		Status:        domain.StatusPending,
		Notes:         in.Notes,
		Items:         make([]domain.OrderItem, 0, len(lines)),
	}
	if order.OrderNumber == "" {
		order.OrderNumber = s.newOrderNumber()
	}
	if actor != nil {
		order.CustomerID = &actor.UserID
	} else {
		email := strings.ToLower(strings.TrimSpace(in.GuestEmail))
		order.GuestEmail = &email
	}
	if in.ShippingAddress != nil {
		order.ShippingAddress = datatypes.NewJSONType(in.ShippingAddress)
		billing := in.BillingAddress
		if billing == nil {
			billing = in.ShippingAddress
		}
		order.BillingAddress = datatypes.NewJSONType(billing)
	} else if in.BillingAddress != nil {
		order.BillingAddress = datatypes.NewJSONType(in.BillingAddress)
	}

	subtotal := decimal.Zero
	var storeID uint64
	singleStore := true
	for _, l := range lines {
		p := products[l.ProductID]
		if p == nil || !p.Orderable() {
			return nil, domain.NotFound("order.product_not_found", l.ProductID)
		}
		if short := p.Shortfall(l.Quantity); short > 0 {
			return nil, domain.InsufficientStock(p.ID, p.Name, short)
		}
		if storeID == 0 {
			storeID = p.StoreID
		} else if storeID != p.StoreID {
			singleStore = false
		}

		lineTotal := p.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
		subtotal = subtotal.Add(lineTotal)
		order.Items = append(order.Items, domain.OrderItem{
			ProductID:   p.ID,
			ProductName: p.Name,
			Price:       p.Price,
			Quantity:    l.Quantity,
			Total:       lineTotal,
		})
	}
	if singleStore {
		order.StoreID = &storeID
	}

	order.Subtotal = subtotal
	order.Tax, order.Shipping, order.Discount = s.cfg.price(subtotal)
	order.Total = order.ComputeTotal()

	err = s.uow.Do(ctx, func(tx repository.Tx) error {
		if err := tx.Orders().Create(ctx, order); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return domain.Conflict("order.number_taken", order.OrderNumber)
			}
			return err
		}
		for _, l := range lines {
			p := products[l.ProductID]
			if !p.Reserves() {
				continue
			}
			ok, err := tx.Products().DecrementStock(ctx, p.ID, l.Quantity, p.AllowOversell)
			if err != nil {
				return err
			}
			if !ok {
				metrics.RecordStockConflict()
				return s.stockConflict(ctx, tx, p, l.Quantity)
			}
		}
		return nil
	})
	if err != nil {
		return nil, s.fail("order.create_failed", err)
	}

	created, err := s.orders.FindByID(ctx, order.ID)
	if err != nil || created == nil {
		s.log.Warn("re-read of created order failed", zap.Uint64("order_id", order.ID), zap.Error(err))
		created = order
	}

	s.invalidateStats(ctx)
	s.publish(domain.EventOrderCreated, domain.NewOrderCreatedEvent(created))
	s.log.Info("order created",
		zap.Uint64("order_id", created.ID),
		zap.String("order_number", created.OrderNumber),
		zap.String("total", created.Total.StringFixed(2)))

	return created, nil
}

// stockConflict reports a conditional decrement that lost a race. The
// shortfall is recomputed from the stock visible inside the transaction.
func (s *OrderService) stockConflict(ctx context.Context, tx repository.Tx, p *domain.Product, qty int) error {
	short := qty
	if cur, err := tx.Products().FindByID(ctx, p.ID); err == nil && cur != nil && cur.Stock >= 0 && cur.Stock < qty {
		short = qty - cur.Stock
	}
	return domain.InsufficientStock(p.ID, p.Name, short)
}

// GetOrder returns the order with its items. Buyers see their own orders,
// sellers see orders that contain at least one of their products and admins
// see everything.
func (s *OrderService) GetOrder(ctx context.Context, actor *domain.Actor, id uint64) (*domain.Order, error) {
	if actor == nil {
		return nil, domain.Unauthenticated("auth.token_missing")
	}
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	order, err := s.loadOrder(ctx, id)
	if err != nil {
		return nil, err
	}

	if actor.IsAdmin() || order.BelongsTo(actor.UserID) {
		return order, nil
	}
	if actor.IsSeller() {
		outside, err := s.orders.CountItemsOutsideOwner(ctx, id, actor.UserID)
		if err != nil {
			return nil, s.fail("order.read_failed", err)
		}
		if outside < int64(len(order.Items)) {
			return order, nil
		}
	}
	return nil, domain.Forbidden("order.forbidden")
}

func (s *OrderService) loadOrder(ctx context.Context, id uint64) (*domain.Order, error) {
	if s.cache != nil {
		cached, err := s.cache.GetOrder(ctx, id)
		if err != nil {
			s.log.Warn("order cache read failed", zap.Uint64("order_id", id), zap.Error(err))
		} else if cached != nil {
			return cached, nil
		}
	}

	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, s.fail("order.read_failed", err)
	}
	if order == nil {
		return nil, domain.NotFound("order.not_found", id)
	}

	if s.cache != nil {
		if err := s.cache.SetOrder(ctx, order); err != nil {
			s.log.Warn("order cache write failed", zap.Uint64("order_id", id), zap.Error(err))
		}
	}
	return order, nil
}

// ListOrders lists every order. Admin only.
func (s *OrderService) ListOrders(ctx context.Context, actor *domain.Actor, q ListQuery) (*Page[domain.OrderSummary], error) {
	if !actor.IsAdmin() {
		return nil, domain.Forbidden("order.list_forbidden")
	}
	return s.list(ctx, repository.OrderFilter{}, q)
}

// ListMyOrders lists the orders placed by the actor.
func (s *OrderService) ListMyOrders(ctx context.Context, actor *domain.Actor, q ListQuery) (*Page[domain.OrderSummary], error) {
	if actor == nil {
		return nil, domain.Unauthenticated("auth.token_missing")
	}
	return s.list(ctx, repository.OrderFilter{CustomerID: actor.UserID}, q)
}

// ListStoreOrders lists orders containing at least one product of the
// actor's stores, with the actor's share of each order as StoreTotal.
func (s *OrderService) ListStoreOrders(ctx context.Context, actor *domain.Actor, q ListQuery) (*Page[domain.OrderSummary], error) {
	if !actor.IsSeller() {
		return nil, domain.Forbidden("order.seller_only")
	}
	return s.list(ctx, repository.OrderFilter{StoreOwnerID: actor.UserID}, q)
}

func (s *OrderService) list(ctx context.Context, f repository.OrderFilter, q ListQuery) (*Page[domain.OrderSummary], error) {
	if q.Status != "" {
		st := domain.OrderStatus(q.Status)
		if !st.Valid() {
			return nil, domain.ValidationError("validation.failed",
				domain.Violation{Field: "status", Rule: "oneof"})
		}
		f.Status = st
	}
	page, limit, offset := NormalizePage(q.Page, q.Limit)
	f.Offset, f.Limit = offset, limit

	ctx, cancel := s.opContext(ctx)
	defer cancel()

	var (
		rows  []domain.OrderSummary
		total int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		rows, err = s.orders.List(gctx, f)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = s.orders.Count(gctx, f)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, s.fail("order.read_failed", err)
	}
	return newPage(rows, page, limit, total), nil
}

// UpdateStatus moves an order to a new fulfilment status. Sellers may only
// update orders whose every line belongs to one of their stores. Entering
// cancelled returns all reserved units to stock in the same transaction.
func (s *OrderService) UpdateStatus(ctx context.Context, actor *domain.Actor, id uint64, in UpdateStatusInput) (*domain.Order, error) {
	if err := ValidateUpdateStatus(in); err != nil {
		return nil, err
	}
	if !actor.IsSeller() {
		return nil, domain.Forbidden("order.update_forbidden")
	}

	ctx, cancel := s.opContext(ctx)
	defer cancel()

	var (
		from      domain.OrderStatus
		restocked bool
	)
	err := s.uow.Do(ctx, func(tx repository.Tx) error {
		order, err := tx.Orders().FindByID(ctx, id)
		if err != nil {
			return err
		}
		if order == nil {
			return domain.NotFound("order.not_found", id)
		}
		if !actor.IsAdmin() {
			outside, err := tx.Orders().CountItemsOutsideOwner(ctx, id, actor.UserID)
			if err != nil {
				return err
			}
			if outside > 0 {
				return domain.Forbidden("order.update_forbidden")
			}
		}

		from = order.Status
		if in.Status != from && !from.CanTransition(in.Status) {
			e := domain.ValidationError("order.status_terminal",
				domain.Violation{Field: "status", Rule: "terminal"})
			e.Args = []any{from}
			return e
		}

		ok, err := tx.Orders().UpdateStatus(ctx, id, from, in.Status, in.TrackingNumber)
		if err != nil {
			return err
		}
		if !ok {
			return domain.Conflict("order.concurrent_update", id)
		}

		if in.Status == domain.StatusCancelled && from != domain.StatusCancelled {
			if err := s.restock(ctx, tx, order.Items); err != nil {
				return err
			}
			restocked = true
		}
		return nil
	})
	if err != nil {
		return nil, s.fail("order.update_failed", err)
	}

	s.invalidateOrder(ctx, id)
	s.invalidateStats(ctx)
	if from != in.Status {
		metrics.RecordStatusTransition(string(from), string(in.Status))
	}

	updated, err := s.orders.FindByID(ctx, id)
	if err == nil && updated == nil {
		err = fmt.Errorf("order %d vanished after update", id)
	}
	if err != nil {
		return nil, s.fail("order.read_failed", err)
	}

	s.publish(domain.EventOrderStatusChanged, domain.OrderStatusChangedEvent{
		OrderID:        id,
		OrderNumber:    updated.OrderNumber,
		From:           from,
		To:             in.Status,
		TrackingNumber: updated.TrackingNumber,
		Restocked:      restocked,
		ChangedBy:      actor.UserID,
		ChangedAt:      s.now(),
	})
	return updated, nil
}

// DeleteOrder removes an order and, unless it was already cancelled, returns
// its units to stock. Admin only.
func (s *OrderService) DeleteOrder(ctx context.Context, actor *domain.Actor, id uint64) error {
	if !actor.IsAdmin() {
		return domain.Forbidden("order.delete_forbidden")
	}

	ctx, cancel := s.opContext(ctx)
	defer cancel()

	var (
		number    string
		restocked bool
	)
	err := s.uow.Do(ctx, func(tx repository.Tx) error {
		order, err := tx.Orders().FindByID(ctx, id)
		if err != nil {
			return err
		}
		if order == nil {
			return domain.NotFound("order.not_found", id)
		}
		number = order.OrderNumber

		if order.Status != domain.StatusCancelled {
			if err := s.restock(ctx, tx, order.Items); err != nil {
				return err
			}
			restocked = true
		}

		ok, err := tx.Orders().Delete(ctx, id, order.Status)
		if err != nil {
			return err
		}
		if !ok {
			return domain.Conflict("order.concurrent_update", id)
		}
		return nil
	})
	if err != nil {
		return s.fail("order.delete_failed", err)
	}

	s.invalidateOrder(ctx, id)
	s.invalidateStats(ctx)
	s.publish(domain.EventOrderDeleted, domain.OrderDeletedEvent{
		OrderID:     id,
		OrderNumber: number,
		Restocked:   restocked,
		DeletedBy:   actor.UserID,
		DeletedAt:   s.now(),
	})
	return nil
}

// restock returns the units of items to stock. Untracked products never
// reserved anything and are skipped; products deleted since the order was
// placed are restocked regardless.
func (s *OrderService) restock(ctx context.Context, tx repository.Tx, items []domain.OrderItem) error {
	ids := make([]uint64, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ProductID)
	}
	products, err := tx.Products().FindByIDs(ctx, ids)
	if err != nil {
		return err
	}

	units := 0
	for _, it := range items {
		if p := products[it.ProductID]; p != nil && !p.Reserves() {
			continue
		}
		if err := tx.Products().IncrementStock(ctx, it.ProductID, it.Quantity); err != nil {
			return fmt.Errorf("restock product %d: %w", it.ProductID, err)
		}
		units += it.Quantity
	}
	metrics.RecordRestock(units)
	return nil
}

// Stats aggregates the orders touching the actor's stores.
func (s *OrderService) Stats(ctx context.Context, actor *domain.Actor) (*domain.OrderStats, error) {
	if !actor.IsSeller() {
		return nil, domain.Forbidden("order.seller_only")
	}

	ctx, cancel := s.opContext(ctx)
	defer cancel()

	// the generation is read before the aggregate so a write committing in
	// between invalidates what this call stores
	var gen int64
	useCache := s.cache != nil
	if useCache {
		var err error
		if gen, err = s.cache.StatsGeneration(ctx); err != nil {
			s.log.Warn("stats cache read failed", zap.Uint64("owner_id", actor.UserID), zap.Error(err))
			useCache = false
		}
	}
	if useCache {
		cached, err := s.cache.GetStats(ctx, gen, actor.UserID)
		if err != nil {
			s.log.Warn("stats cache read failed", zap.Uint64("owner_id", actor.UserID), zap.Error(err))
		} else if cached != nil {
			return cached, nil
		}
	}

	stats, err := s.orders.Stats(ctx, actor.UserID)
	if err != nil {
		return nil, s.fail("order.stats_failed", err)
	}

	if useCache {
		if err := s.cache.SetStats(ctx, gen, actor.UserID, stats); err != nil {
			s.log.Warn("stats cache write failed", zap.Uint64("owner_id", actor.UserID), zap.Error(err))
		}
	}
	return stats, nil
}

func (s *OrderService) invalidateOrder(ctx context.Context, id uint64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateOrder(ctx, id); err != nil {
		s.log.Warn("order cache invalidation failed", zap.Uint64("order_id", id), zap.Error(err))
	}
}

func (s *OrderService) invalidateStats(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateStats(ctx); err != nil {
		s.log.Warn("stats cache invalidation failed", zap.Error(err))
	}
}

func (s *OrderService) publish(pattern string, evt any) {
	if s.publisher == nil {
		return
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()
		if err := s.publisher.Publish(ctx, pattern, evt); err != nil {
			s.log.Warn("failed to publish event", zap.String("pattern", pattern), zap.Error(err))
			return
		}
		s.log.Debug("published event", zap.String("pattern", pattern))
	}()
}
