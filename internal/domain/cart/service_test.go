package cart

import (
	"context"
	"errors"
	"fmt"
	"testing"

	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	_ "modernc.org/sqlite"

	"workshop/internal/domain"
)

func setupTestService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:cart_test_%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(
		gormsqlite.New(gormsqlite.Config{DriverName: "sqlite", DSN: dsn}),
		&gorm.Config{Logger: logger.Default.LogMode(logger.Silent)},
	)
	if err != nil {
		t.Fatalf("failed to open sqlite db: %v", err)
	}
	if err := db.AutoMigrate(&domain.Sparepart{}, &domain.ServiceOffering{}, &domain.CartLine{}); err != nil {
		t.Fatalf("failed to migrate db: %v", err)
	}

	seed := []any{
		&domain.Sparepart{ID: 1, Name: "Brake pad set", Price: 100000},
		&domain.Sparepart{ID: 2, Name: "Oil filter", Price: 50000, DiscountPercent: 10},
		&domain.ServiceOffering{ID: 1, Name: "Oil change", Price: 50000},
	}
	for _, s := range seed {
		if err := db.Create(s).Error; err != nil {
			t.Fatalf("failed to seed catalog: %v", err)
		}
	}

	return NewService(NewRepository(db)), db
}

func TestAddItemCapturesDiscountedPrice(t *testing.T) {
	svc, _ := setupTestService(t)
	ctx := context.Background()

	line, err := svc.AddItem(ctx, 7, domain.KindSparepart, 2, 1)
	if err != nil {
		t.Fatalf("AddItem returned error: %v", err)
	}
	if line.UnitPrice != 45000 {
		t.Fatalf("expected discounted unit price 45000, got %v", line.UnitPrice)
	}
}

func TestAddItemSnapshotSurvivesCatalogChange(t *testing.T) {
	svc, db := setupTestService(t)
	ctx := context.Background()

	if _, err := svc.AddItem(ctx, 7, domain.KindSparepart, 1, 1); err != nil {
		t.Fatalf("AddItem returned error: %v", err)
	}

	if err := db.Model(&domain.Sparepart{}).Where("id = ?", 1).Update("price", 999999).Error; err != nil {
		t.Fatalf("failed to reprice catalog item: %v", err)
	}

	view, err := svc.Get(ctx, 7)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if view.Spareparts[0].UnitPrice != 100000 {
		t.Fatalf("expected snapshot price 100000, got %v", view.Spareparts[0].UnitPrice)
	}
}

func TestAddItemMergesSparepartQuantity(t *testing.T) {
	svc, _ := setupTestService(t)
	ctx := context.Background()

	if _, err := svc.AddItem(ctx, 7, domain.KindSparepart, 1, 2); err != nil {
		t.Fatalf("first AddItem returned error: %v", err)
	}
	line, err := svc.AddItem(ctx, 7, domain.KindSparepart, 1, 3)
	if err != nil {
		t.Fatalf("second AddItem returned error: %v", err)
	}
	if line.Quantity != 5 {
		t.Fatalf("expected merged quantity 5, got %d", line.Quantity)
	}

	view, err := svc.Get(ctx, 7)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if len(view.Spareparts) != 1 {
		t.Fatalf("expected a single merged line, got %d", len(view.Spareparts))
	}
}

func TestAddDuplicateServiceFails(t *testing.T) {
	svc, _ := setupTestService(t)
	ctx := context.Background()

	if _, err := svc.AddItem(ctx, 7, domain.KindService, 1, 1); err != nil {
		t.Fatalf("first AddItem returned error: %v", err)
	}
	_, err := svc.AddItem(ctx, 7, domain.KindService, 1, 1)
	if !errors.Is(err, ErrDuplicateItem) {
		t.Fatalf("expected ErrDuplicateItem, got %v", err)
	}

	view, err := svc.Get(ctx, 7)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if len(view.Services) != 1 {
		t.Fatalf("duplicate add must not mutate the cart, got %d service lines", len(view.Services))
	}
}

func TestAddUnknownItem(t *testing.T) {
	svc, _ := setupTestService(t)
	_, err := svc.AddItem(context.Background(), 7, domain.KindSparepart, 404, 1)
	if !errors.Is(err, ErrItemNotFound) {
		t.Fatalf("expected ErrItemNotFound, got %v", err)
	}
}

func TestUpdateQuantityFloorsAtOne(t *testing.T) {
	svc, _ := setupTestService(t)
	ctx := context.Background()

	if _, err := svc.AddItem(ctx, 7, domain.KindSparepart, 1, 1); err != nil {
		t.Fatalf("AddItem returned error: %v", err)
	}

	line, err := svc.UpdateQuantity(ctx, 7, 0, -1)
	if err != nil {
		t.Fatalf("UpdateQuantity returned error: %v", err)
	}
	if line.Quantity != 1 {
		t.Fatalf("quantity below 1 must be a no-op, got %d", line.Quantity)
	}

	line, err = svc.UpdateQuantity(ctx, 7, 0, 4)
	if err != nil {
		t.Fatalf("UpdateQuantity returned error: %v", err)
	}
	if line.Quantity != 5 {
		t.Fatalf("expected quantity 5, got %d", line.Quantity)
	}
}

func TestRemoveItemByIndex(t *testing.T) {
	svc, _ := setupTestService(t)
	ctx := context.Background()

	if _, err := svc.AddItem(ctx, 7, domain.KindSparepart, 1, 1); err != nil {
		t.Fatalf("AddItem returned error: %v", err)
	}
	if _, err := svc.AddItem(ctx, 7, domain.KindSparepart, 2, 1); err != nil {
		t.Fatalf("AddItem returned error: %v", err)
	}

	if err := svc.RemoveItem(ctx, 7, domain.KindSparepart, 0); err != nil {
		t.Fatalf("RemoveItem returned error: %v", err)
	}

	view, err := svc.Get(ctx, 7)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if len(view.Spareparts) != 1 || view.Spareparts[0].ItemID != 2 {
		t.Fatalf("expected only item 2 to remain, got %+v", view.Spareparts)
	}

	if err := svc.RemoveItem(ctx, 7, domain.KindSparepart, 5); !errors.Is(err, ErrLineNotFound) {
		t.Fatalf("expected ErrLineNotFound for out-of-range index, got %v", err)
	}
}

func TestComputeTotalsAppliesElevenPercentTax(t *testing.T) {
	lines := []domain.CartLine{
		{Kind: domain.KindSparepart, UnitPrice: 100000, Quantity: 2},
		{Kind: domain.KindService, UnitPrice: 50000, Quantity: 1},
	}

	totals := ComputeTotals(lines)
	if totals.Subtotal != 250000 {
		t.Fatalf("expected subtotal 250000, got %v", totals.Subtotal)
	}
	if totals.Tax != 27500 {
		t.Fatalf("expected tax 27500, got %v", totals.Tax)
	}
	if totals.Total != 277500 {
		t.Fatalf("expected total 277500, got %v", totals.Total)
	}
}
