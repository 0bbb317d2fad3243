package main

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Eldesouky97/home-craft/internal/domain"
	rabbit "github.com/Eldesouky97/home-craft/internal/infra/rabbitmq"
	mysqlrepo "github.com/Eldesouky97/home-craft/internal/repository/mysql"
	"github.com/Eldesouky97/home-craft/internal/services"

	"github.com/HdrHistogram/hdrhistogram-go"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type benchOptions struct {
	Stock       int
	Orders      int
	Quantity    int
	Concurrency int
}

type benchResult struct {
	Succeeded    int64
	OutOfStock   int64
	Failed       int64
	UnitsSold    int
	InitialStock int
	FinalStock   int
	OrdersStored int64
	TotalTime    time.Duration
	Throughput   float64
	P50          time.Duration
	P95          time.Duration
	P99          time.Duration
	Max          time.Duration
}

// Check verifies that no unit was sold twice and that stock and the order
// ledger agree.
func (r *benchResult) Check() error {
	switch {
	case r.FinalStock < 0:
		return fmt.Errorf("stock went negative: %d", r.FinalStock)
	case r.UnitsSold > r.InitialStock:
		return fmt.Errorf("oversold: %d units sold from %d", r.UnitsSold, r.InitialStock)
	case r.FinalStock != r.InitialStock-r.UnitsSold:
		return fmt.Errorf("stock mismatch: final %d, want %d", r.FinalStock, r.InitialStock-r.UnitsSold)
	case r.OrdersStored != r.Succeeded:
		return fmt.Errorf("ledger mismatch: %d orders stored, %d succeeded", r.OrdersStored, r.Succeeded)
	}
	return nil
}

type fixture struct {
	buyer   *domain.Actor
	product *domain.Product
}

func seed(ctx context.Context, db *gorm.DB, stock int) (*fixture, error) {
	suffix := uuid.NewString()[:8]
	seller := &domain.User{Name: "bench seller", Email: "seller-" + suffix + "@bench.local", PasswordHash: "-", Role: domain.RoleSeller, IsActive: true}
	buyer := &domain.User{Name: "bench buyer", Email: "buyer-" + suffix + "@bench.local", PasswordHash: "-", Role: domain.RoleBuyer, IsActive: true}
	tx := db.WithContext(ctx)
	if err := tx.Create(seller).Error; err != nil {
		return nil, fmt.Errorf("seed seller: %w", err)
	}
	if err := tx.Create(buyer).Error; err != nil {
		return nil, fmt.Errorf("seed buyer: %w", err)
	}

	store := &domain.Store{OwnerID: seller.ID, Name: "Bench Store", Slug: "bench-" + suffix, Category: "general", Status: domain.StoreActive}
	if err := tx.Create(store).Error; err != nil {
		return nil, fmt.Errorf("seed store: %w", err)
	}
	product := &domain.Product{
		StoreID:       store.ID,
		Name:          "Bench Item",
		Slug:          "bench-item",
		Price:         decimal.RequireFromString("10.00"),
		Stock:         stock,
		TrackQuantity: true,
		Status:        domain.ProductActive,
	}
	if err := tx.Create(product).Error; err != nil {
		return nil, fmt.Errorf("seed product: %w", err)
	}
	return &fixture{buyer: &domain.Actor{UserID: buyer.ID, Role: domain.RoleBuyer}, product: product}, nil
}

func runBench(ctx context.Context, db *gorm.DB, opts benchOptions, log *zap.Logger) (*benchResult, error) {
	fx, err := seed(ctx, db, opts.Stock)
	if err != nil {
		return nil, err
	}

	orders := mysqlrepo.NewOrderRepository(db)
	products := mysqlrepo.NewProductRepository(db)
	svc := services.NewOrderService(mysqlrepo.NewUnitOfWork(db), orders, products,
		rabbit.NewLogPublisher(zap.NewNop()), services.OrderConfig{
			Currency:    "EGP",
			TaxRate:     decimal.Zero,
			ShippingFee: decimal.Zero,
		}, log)

	// Max latency of 60 seconds in microseconds, 3 significant figures
	histogram := hdrhistogram.New(1, 60_000_000, 3)
	var histMu sync.Mutex

	res := &benchResult{InitialStock: opts.Stock}
	jobs := make(chan int)
	var wg sync.WaitGroup
	start := time.Now()

	for w := 0; w < opts.Concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range jobs {
				opStart := time.Now()
				_, err := svc.CreateOrder(ctx, fx.buyer, services.CreateOrderInput{
					Items:         []services.OrderItemInput{{ProductID: fx.product.ID, Quantity: opts.Quantity}},
					PaymentMethod: domain.PaymentCash,
				})
				switch {
				case err == nil:
					atomic.AddInt64(&res.Succeeded, 1)
					histMu.Lock()
					_ = histogram.RecordValue(time.Since(opStart).Microseconds())
					histMu.Unlock()
				case errors.Is(err, domain.ErrInsufficientStock):
					atomic.AddInt64(&res.OutOfStock, 1)
				default:
					atomic.AddInt64(&res.Failed, 1)
					log.Warn("order failed", zap.Error(err))
				}
			}
		}()
	}

	for i := 0; i < opts.Orders; i++ {
		jobs <- i
	}
	close(jobs)
	wg.Wait()
	svc.Wait()

	res.TotalTime = time.Since(start)
	res.Throughput = float64(res.Succeeded) / res.TotalTime.Seconds()
	res.P50 = time.Duration(histogram.ValueAtQuantile(50)) * time.Microsecond
	res.P95 = time.Duration(histogram.ValueAtQuantile(95)) * time.Microsecond
	res.P99 = time.Duration(histogram.ValueAtQuantile(99)) * time.Microsecond
	res.Max = time.Duration(histogram.Max()) * time.Microsecond
	res.UnitsSold = int(res.Succeeded) * opts.Quantity

	final, err := products.FindByID(ctx, fx.product.ID)
	if err != nil {
		return nil, fmt.Errorf("reload product: %w", err)
	}
	if final == nil {
		return nil, errors.New("bench product disappeared")
	}
	res.FinalStock = final.Stock

	if err := db.WithContext(ctx).Model(&domain.OrderItem{}).
		Where("product_id = ?", fx.product.ID).
		Distinct("order_id").Count(&res.OrdersStored).Error; err != nil {
		return nil, fmt.Errorf("count orders: %w", err)
	}
	return res, nil
}
