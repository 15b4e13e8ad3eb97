package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/Koi-0105-Monkey/momo-backend/internal/cache"
	"github.com/Koi-0105-Monkey/momo-backend/internal/constants"
	"github.com/Koi-0105-Monkey/momo-backend/internal/logger"
	"github.com/Koi-0105-Monkey/momo-backend/internal/models"
	"github.com/Koi-0105-Monkey/momo-backend/internal/queue"
	"github.com/Koi-0105-Monkey/momo-backend/internal/repository"

	"go.uber.org/zap"
)

var (
	ErrCallbackInvalid   = errors.New("callback input invalid")
	ErrOrderNotFound     = errors.New("order not found")
	ErrOrderFetchFailed  = errors.New("order fetch failed")
	ErrOrderUpdateFailed = errors.New("order update failed")
)

// PaymentService 支付核销服务
type PaymentService struct {
	orderRepo    repository.OrderRepository
	queueClient  *queue.Client
	storeTimeout time.Duration
}

// NewPaymentService 创建支付核销服务
func NewPaymentService(orderRepo repository.OrderRepository, queueClient *queue.Client, storeTimeout time.Duration) *PaymentService {
	if storeTimeout <= 0 {
		storeTimeout = 5 * time.Second
	}
	return &PaymentService{
		orderRepo:    orderRepo,
		queueClient:  queueClient,
		storeTimeout: storeTimeout,
	}
}

// MomoCallbackInput 验签通过后的回调核销输入
type MomoCallbackInput struct {
	OrderNo    string
	TransID    string
	ResultCode int
	Amount     int64
	Message    string
}

// HandleMomoCallback 将网关结果核销到订单
// 成功 → paid/confirmed 并落 paid_at；失败 → failed，paid_at 不动。
// 只放行 pending → {paid,failed}；终态订单收到重复投递按无操作受理，
// 收到相反结论只记异常、不回写。
func (s *PaymentService) HandleMomoCallback(ctx context.Context, input MomoCallbackInput) (*models.Order, error) {
	orderNo := strings.TrimSpace(input.OrderNo)
	transID := strings.TrimSpace(input.TransID)
	if orderNo == "" || transID == "" {
		return nil, ErrCallbackInvalid
	}

	targetStatus := constants.PaymentStatusFailed
	if input.ResultCode == constants.MomoResultCodeSuccess {
		targetStatus = constants.PaymentStatusPaid
	}

	log := paymentLogger(
		"order_no", orderNo,
		"trans_id", transID,
		"result_code", input.ResultCode,
		"target_status", targetStatus,
	)

	// 客户端断开不应打断已发起的核销，写入只受自身超时约束
	opCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.storeTimeout)
	defer cancel()

	if first, err := cache.MarkCallbackSeen(opCtx, orderNo, transID, input.ResultCode); err != nil {
		log.Debugw("payment_callback_seen_marker_failed", "error", err)
	} else if !first {
		log.Infow("payment_callback_duplicate_delivery")
	}

	order, err := s.orderRepo.GetByOrderNo(opCtx, orderNo)
	if err != nil {
		log.Errorw("payment_callback_order_fetch_failed", "error", err)
		return nil, ErrOrderFetchFailed
	}
	if order == nil {
		log.Warnw("payment_callback_order_not_found")
		return nil, ErrOrderNotFound
	}

	// 幂等处理：终态不回退
	if order.PaymentStatus != constants.PaymentStatusPending {
		if order.PaymentStatus == targetStatus {
			log.Infow("payment_callback_idempotent_same_status",
				"order_id", order.ID,
				"current_status", order.PaymentStatus,
			)
			return order, nil
		}
		log.Warnw("payment_callback_conflicting_renotification",
			"order_id", order.ID,
			"current_status", order.PaymentStatus,
			"stored_trans_id", order.TransactionID,
		)
		return order, nil
	}

	now := time.Now()
	updates := map[string]interface{}{
		"payment_status": targetStatus,
		"transaction_id": transID,
		"updated_at":     now,
	}
	if targetStatus == constants.PaymentStatusPaid {
		updates["status"] = constants.OrderStatusConfirmed
		updates["paid_at"] = now
	} else {
		updates["status"] = constants.OrderStatusPending
	}

	if err := s.orderRepo.UpdatePayment(opCtx, order.ID, updates); err != nil {
		log.Errorw("payment_callback_update_failed",
			"order_id", order.ID,
			"error", err,
		)
		return nil, ErrOrderUpdateFailed
	}

	order.PaymentStatus = targetStatus
	order.TransactionID = transID
	order.UpdatedAt = now
	if targetStatus == constants.PaymentStatusPaid {
		order.Status = constants.OrderStatusConfirmed
		order.PaidAt = &now
	}

	log.Infow("payment_callback_processed",
		"order_id", order.ID,
		"new_status", order.PaymentStatus,
		"order_status", order.Status,
	)

	if targetStatus == constants.PaymentStatusPaid {
		s.enqueueOrderPaidPushAsync(order, log)
	}
	return order, nil
}

// enqueueOrderPaidPushAsync 推送通知任务入队
// 推送本体由 worker 侧后续接入，这里只负责把事件递出去。
func (s *PaymentService) enqueueOrderPaidPushAsync(order *models.Order, log *zap.SugaredLogger) {
	if s.queueClient == nil || order == nil {
		return
	}
	if err := s.queueClient.EnqueueOrderPaidPush(queue.OrderPaidPushPayload{
		OrderID: order.ID,
		OrderNo: order.OrderNo,
		TransID: order.TransactionID,
	}); err != nil {
		log.Warnw("payment_enqueue_paid_push_failed",
			"order_id", order.ID,
			"error", err,
		)
	}
}

func paymentLogger(kv ...interface{}) *zap.SugaredLogger {
	if len(kv) == 0 {
		return logger.S()
	}
	return logger.SW(kv...)
}
