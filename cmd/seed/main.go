// Package main provides a CLI tool for seeding the database with demo data:
// a small warehouse hierarchy, a few items, and opening-stock receipts.
package main

import (
	"context"
	"fmt"
	"os"

	"stockledger/internal/core/types"
	"stockledger/internal/domain/catalogs/item"
	"stockledger/internal/domain/catalogs/warehouse"
	"stockledger/internal/domain/ledger"
	"stockledger/internal/domain/movement"
	"stockledger/internal/infrastructure/storage/postgres"
	"stockledger/internal/infrastructure/storage/postgres/catalog_repo"
	"stockledger/internal/infrastructure/storage/postgres/ledger_repo"
	"stockledger/pkg/logger"
	"stockledger/pkg/numerator"
)

func main() {
	log, err := logger.New(logger.Config{
		Level:       "info",
		Development: true,
	})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	poolCfg := postgres.DefaultPoolConfig(dbURL)
	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	log.Info("connected to database")

	txManager := postgres.NewTxManager(pool)
	numbers := numerator.New(pool)

	warehouseService := warehouse.NewService(catalog_repo.NewWarehouseRepo(txManager), numbers)
	itemService := item.NewService(catalog_repo.NewItemRepo(txManager), numbers)

	ledgerRepo := ledger_repo.NewLedgerRepo(txManager)
	engine := movement.NewEngine(txManager, ledgerRepo, ledger.NewService(ledgerRepo), numbers)
	validator := movement.NewValidator(warehouseService)

	// --- Warehouses ---
	root := warehouse.NewGroup("WH-ROOT", "All warehouses")
	if err := warehouseService.Create(ctx, root); err != nil {
		log.Fatalw("failed to create warehouse group", "error", err)
	}

	mainWh := warehouse.NewWarehouse("WH-MAIN", "Main warehouse")
	mainWh.SetParent(root.ID.String())
	spare := warehouse.NewWarehouse("WH-SPARE", "Spare parts store")
	spare.SetParent(root.ID.String())

	for _, w := range []*warehouse.Warehouse{mainWh, spare} {
		if err := warehouseService.Create(ctx, w); err != nil {
			log.Fatalw("failed to create warehouse", "code", w.Code, "error", err)
		}
		log.Infow("warehouse created", "code", w.Code, "id", w.ID)
	}

	// --- Items ---
	bolt := item.NewItem("ITM-BOLT", "Hex bolt M8", "pcs")
	bearing := item.NewItem("ITM-BEAR", "Ball bearing 6204", "pcs")
	oil := item.NewItem("ITM-OIL", "Machine oil", "l")

	for _, it := range []*item.Item{bolt, bearing, oil} {
		if err := itemService.Create(ctx, it); err != nil {
			log.Fatalw("failed to create item", "code", it.Code, "error", err)
		}
		log.Infow("item created", "code", it.Code, "id", it.ID)
	}

	// --- Opening stock ---
	opening := movement.NewReceipt(mainWh.ID)
	opening.AddLine(bolt.ID, types.NewQuantityFromInt(1000), types.MustMoney("0.12"))
	opening.AddLine(bearing.ID, types.NewQuantityFromInt(40), types.MustMoney("8.50"))
	opening.AddLine(oil.ID, types.NewQuantityFromFloat64(25.5), types.MustMoney("4.00"))

	if err := validator.Validate(ctx, opening); err != nil {
		log.Fatalw("opening stock movement invalid", "error", err)
	}
	entries, err := engine.Post(ctx, opening)
	if err != nil {
		log.Fatalw("failed to post opening stock", "error", err)
	}
	log.Infow("opening stock posted", "voucher_no", opening.VoucherNo, "entries", len(entries))

	log.Info("seeding completed successfully")
}
