package public

import (
	"errors"
	"net/http"

	"github.com/Koi-0105-Monkey/momo-backend/internal/constants"
	"github.com/Koi-0105-Monkey/momo-backend/internal/http/response"
	"github.com/Koi-0105-Monkey/momo-backend/internal/payment/momo"
	"github.com/Koi-0105-Monkey/momo-backend/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	ackMessageOK               = "OK"
	ackMessageMissingFields    = "Missing required fields"
	ackMessageInvalidSignature = "Invalid signature"
	ackMessageFailedProcessed  = "Payment failed but processed"
	ackMessageUpdateFailed     = "Failed to update order"
	ackMessageInternalError    = "Internal server error"
)

// MomoWebhook Momo 支付结果回调
// 流水线：结构校验 → 验签 → 核销，严格单向，验签不过绝不触库。
func (h *Handler) MomoWebhook(c *gin.Context) {
	log := requestLog(c)

	var payload momo.CallbackPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		log.Warnw("momo_webhook_body_invalid", "client_ip", c.ClientIP(), "error", err)
		response.WriteAck(c, http.StatusBadRequest, constants.MomoAckCodeError, ackMessageMissingFields)
		return
	}

	log.Infow("momo_webhook_received",
		"client_ip", c.ClientIP(),
		"order_no", payload.OrderNo(),
		"trans_id", payload.TransNo(),
		"result_code", payload.ResultCode.String(),
		"amount", payload.Amount.String(),
	)

	if err := momo.Validate(&payload); err != nil {
		log.Warnw("momo_webhook_missing_fields",
			"order_no", payload.OrderNo(),
			"trans_id", payload.TransNo(),
			"error", err,
		)
		response.WriteAck(c, http.StatusBadRequest, constants.MomoAckCodeError, ackMessageMissingFields)
		return
	}

	if err := momo.VerifyCallback(h.MomoCfg, &payload); err != nil {
		if errors.Is(err, momo.ErrConfigInvalid) {
			log.Errorw("momo_webhook_config_invalid", "error", err)
			response.WriteAck(c, http.StatusInternalServerError, constants.MomoAckCodeError, ackMessageInternalError)
			return
		}
		log.Warnw("momo_webhook_signature_invalid",
			"order_no", payload.OrderNo(),
			"trans_id", payload.TransNo(),
			"client_ip", c.ClientIP(),
		)
		response.WriteAck(c, http.StatusForbidden, constants.MomoAckCodeBadSignature, ackMessageInvalidSignature)
		return
	}

	resultCode, _ := payload.ResultCode.Int()
	amount, _ := payload.Amount.Int64()
	input := service.MomoCallbackInput{
		OrderNo:    payload.OrderNo(),
		TransID:    payload.TransNo(),
		ResultCode: resultCode,
		Amount:     amount,
	}
	if payload.Message != nil {
		input.Message = *payload.Message
	}

	order, err := h.PaymentService.HandleMomoCallback(c.Request.Context(), input)

	if !payload.IsSuccess() {
		// 失败结论也要落库（failed），但对网关始终确认受理
		if err != nil {
			log.Warnw("momo_webhook_failed_outcome_store_error",
				"order_no", input.OrderNo,
				"trans_id", input.TransID,
				"result_code", resultCode,
				"error", err,
			)
		}
		response.WriteAck(c, http.StatusOK, constants.MomoAckCodeOK, ackMessageFailedProcessed)
		return
	}

	if err != nil {
		log.Errorw("momo_webhook_update_failed",
			"order_no", input.OrderNo,
			"trans_id", input.TransID,
			"error", err,
		)
		response.WriteAck(c, http.StatusInternalServerError, constants.MomoAckCodeError, ackMessageUpdateFailed)
		return
	}

	log.Infow("momo_webhook_processed",
		"order_id", order.ID,
		"order_no", order.OrderNo,
		"trans_id", order.TransactionID,
		"payment_status", order.PaymentStatus,
	)
	response.OK(c, ackMessageOK)
}
