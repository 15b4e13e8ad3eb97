package worker

import (
	"context"
	"testing"

	"github.com/Koi-0105-Monkey/momo-backend/internal/provider"
	"github.com/Koi-0105-Monkey/momo-backend/internal/queue"

	"github.com/hibiken/asynq"
)

func TestHandleOrderPaidPush(t *testing.T) {
	consumer := NewConsumer(&provider.Container{})

	task, err := queue.NewOrderPaidPushTask(queue.OrderPaidPushPayload{
		OrderID: 42,
		OrderNo: "ORD123",
		TransID: "4088878653",
	})
	if err != nil {
		t.Fatalf("build task failed: %v", err)
	}
	if task.Type() != queue.TaskOrderPaidPush {
		t.Fatalf("task type: want %s got %s", queue.TaskOrderPaidPush, task.Type())
	}
	if err := consumer.handleOrderPaidPush(context.Background(), task); err != nil {
		t.Fatalf("handleOrderPaidPush failed: %v", err)
	}
}

func TestHandleOrderPaidPushMalformedPayload(t *testing.T) {
	consumer := NewConsumer(&provider.Container{})

	task := asynq.NewTask(queue.TaskOrderPaidPush, []byte(`{"order_id":`))
	if err := consumer.handleOrderPaidPush(context.Background(), task); err == nil {
		t.Fatal("expected error for malformed payload")
	}
}

func TestHandleOrderPaidPushInvalidOrderID(t *testing.T) {
	consumer := NewConsumer(&provider.Container{})

	task, err := queue.NewOrderPaidPushTask(queue.OrderPaidPushPayload{OrderNo: "ORD123"})
	if err != nil {
		t.Fatalf("build task failed: %v", err)
	}
	// order_id 为零：记录后丢弃，不进重试
	if err := consumer.handleOrderPaidPush(context.Background(), task); err != nil {
		t.Fatalf("zero order_id should be dropped silently, got %v", err)
	}
}
