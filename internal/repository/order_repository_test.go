package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/Koi-0105-Monkey/momo-backend/internal/constants"
	"github.com/Koi-0105-Monkey/momo-backend/internal/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupOrderRepoTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:order_repo_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open test db failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Order{}); err != nil {
		t.Fatalf("migrate test db failed: %v", err)
	}
	return db
}

func TestGetByOrderNo(t *testing.T) {
	db := setupOrderRepoTestDB(t)
	repo := NewOrderRepository(db)
	ctx := context.Background()

	seed := models.Order{
		OrderNo:       "ORD123",
		Status:        constants.OrderStatusPending,
		PaymentStatus: constants.PaymentStatusPending,
		TotalAmount:   100000,
	}
	if err := db.Create(&seed).Error; err != nil {
		t.Fatalf("seed order failed: %v", err)
	}

	order, err := repo.GetByOrderNo(ctx, "ORD123")
	if err != nil {
		t.Fatalf("GetByOrderNo failed: %v", err)
	}
	if order == nil || order.ID != seed.ID {
		t.Fatalf("expected order %d, got %+v", seed.ID, order)
	}

	// 未命中返回 (nil, nil)，由上层决定语义
	order, err = repo.GetByOrderNo(ctx, "ORD999")
	if err != nil {
		t.Fatalf("GetByOrderNo miss returned error: %v", err)
	}
	if order != nil {
		t.Fatalf("expected nil for unknown order, got %+v", order)
	}

	order, err = repo.GetByOrderNo(ctx, "   ")
	if err != nil || order != nil {
		t.Fatalf("blank order_no should return (nil, nil), got (%+v, %v)", order, err)
	}
}

func TestUpdatePayment(t *testing.T) {
	db := setupOrderRepoTestDB(t)
	repo := NewOrderRepository(db)
	ctx := context.Background()

	seed := models.Order{
		OrderNo:       "ORD456",
		Status:        constants.OrderStatusPending,
		PaymentStatus: constants.PaymentStatusPending,
		TotalAmount:   50000,
	}
	if err := db.Create(&seed).Error; err != nil {
		t.Fatalf("seed order failed: %v", err)
	}

	now := time.Now()
	err := repo.UpdatePayment(ctx, seed.ID, map[string]interface{}{
		"payment_status": constants.PaymentStatusPaid,
		"status":         constants.OrderStatusConfirmed,
		"transaction_id": "4088878653",
		"paid_at":        now,
		"updated_at":     now,
	})
	if err != nil {
		t.Fatalf("UpdatePayment failed: %v", err)
	}

	var got models.Order
	if err := db.First(&got, seed.ID).Error; err != nil {
		t.Fatalf("reload order failed: %v", err)
	}
	if got.PaymentStatus != constants.PaymentStatusPaid {
		t.Fatalf("payment_status: want paid got %s", got.PaymentStatus)
	}
	if got.Status != constants.OrderStatusConfirmed {
		t.Fatalf("status: want confirmed got %s", got.Status)
	}
	if got.TransactionID != "4088878653" {
		t.Fatalf("transaction_id: want 4088878653 got %s", got.TransactionID)
	}
	if got.PaidAt == nil {
		t.Fatal("paid_at not set")
	}
}

func TestUpdatePaymentNoop(t *testing.T) {
	db := setupOrderRepoTestDB(t)
	repo := NewOrderRepository(db)

	if err := repo.UpdatePayment(context.Background(), 0, map[string]interface{}{"status": "x"}); err != nil {
		t.Fatalf("zero id should be a no-op, got %v", err)
	}
	if err := repo.UpdatePayment(context.Background(), 1, nil); err != nil {
		t.Fatalf("empty updates should be a no-op, got %v", err)
	}
}
