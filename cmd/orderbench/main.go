// Command orderbench fires concurrent orders at a single product and checks
// that the stock ledger never oversells.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"

	"github.com/Eldesouky97/home-craft/internal/config"
	"github.com/Eldesouky97/home-craft/internal/infra/database"
	"github.com/Eldesouky97/home-craft/internal/logger"

	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"
)

func main() {
	driver := flag.String("driver", "sqlite", "database driver: sqlite, mysql or postgres")
	dsn := flag.String("dsn", "file:orderbench?mode=memory&cache=shared", "database DSN")
	stock := flag.Int("stock", 100, "initial stock of the bench product")
	orders := flag.Int("orders", 500, "number of orders to place")
	qty := flag.Int("qty", 1, "units per order")
	concurrency := flag.Int("concurrency", 32, "concurrent buyers")
	flag.Parse()

	zlog, err := logger.New("development", "warn")
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer zlog.Sync()

	cfg := config.DatabaseConfig{
		Driver:       *driver,
		DSN:          *dsn,
		MaxOpenConns: *concurrency,
		MaxIdleConns: *concurrency,
		AutoMigrate:  true,
	}
	if *driver == "sqlite" {
		// sqlite serialises writers; extra connections only produce SQLITE_BUSY
		cfg.MaxOpenConns, cfg.MaxIdleConns = 1, 1
	}

	db, err := database.Open(cfg, gormlogger.Silent)
	if err != nil {
		zlog.Fatal("open database", zap.Error(err))
	}
	defer database.Close(db)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	res, err := runBench(ctx, db, benchOptions{
		Stock:       *stock,
		Orders:      *orders,
		Quantity:    *qty,
		Concurrency: *concurrency,
	}, zlog)
	if err != nil {
		zlog.Fatal("bench failed", zap.Error(err))
	}

	fmt.Printf("driver=%s concurrency=%d orders=%d qty=%d stock=%d\n", *driver, *concurrency, *orders, *qty, *stock)
	fmt.Printf("  succeeded:    %d\n", res.Succeeded)
	fmt.Printf("  out of stock: %d\n", res.OutOfStock)
	fmt.Printf("  failed:       %d\n", res.Failed)
	fmt.Printf("  total time:   %s\n", res.TotalTime)
	fmt.Printf("  throughput:   %.1f orders/s\n", res.Throughput)
	fmt.Printf("  latency:      p50=%s p95=%s p99=%s max=%s\n", res.P50, res.P95, res.P99, res.Max)
	fmt.Printf("  stock:        %d -> %d (%d sold)\n", res.InitialStock, res.FinalStock, res.UnitsSold)

	if err := res.Check(); err != nil {
		fmt.Printf("INTEGRITY VIOLATION: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("integrity: ok")
}
