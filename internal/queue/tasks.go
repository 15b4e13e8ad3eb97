package queue

import (
	"encoding/json"

	"github.com/Koi-0105-Monkey/momo-backend/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskOrderPaidPush 订单支付成功推送通知任务
	TaskOrderPaidPush = constants.TaskOrderPaidPush
)

// OrderPaidPushPayload 支付成功推送任务载荷
type OrderPaidPushPayload struct {
	OrderID uint   `json:"order_id"`
	OrderNo string `json:"order_no"`
	TransID string `json:"trans_id"`
}

// NewOrderPaidPushTask 创建支付成功推送任务
func NewOrderPaidPushTask(payload OrderPaidPushPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskOrderPaidPush, body), nil
}
