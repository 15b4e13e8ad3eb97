package worker

import (
	"context"
	"encoding/json"

	"github.com/Koi-0105-Monkey/momo-backend/internal/logger"
	"github.com/Koi-0105-Monkey/momo-backend/internal/provider"
	"github.com/Koi-0105-Monkey/momo-backend/internal/queue"

	"github.com/hibiken/asynq"
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskOrderPaidPush, c.handleOrderPaidPush)
}

// handleOrderPaidPush 消费支付成功推送任务
// TODO: 接入 Expo/FCM 推送客户端，目前只消费任务并留痕。
func (c *Consumer) handleOrderPaidPush(ctx context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_order_paid_push_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.OrderPaidPushPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_order_paid_push_unmarshal_failed", "error", err)
		return err
	}
	if payload.OrderID == 0 {
		logger.Debugw("worker_order_paid_push_skip_invalid_payload", "order_id", payload.OrderID)
		return nil
	}
	logger.Infow("worker_order_paid_push_pending_dispatch",
		"order_id", payload.OrderID,
		"order_no", payload.OrderNo,
		"trans_id", payload.TransID,
	)
	return nil
}
