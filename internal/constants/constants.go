package constants

// 订单支付状态
const (
	PaymentStatusPending = "pending" // 待支付
	PaymentStatusPaid    = "paid"    // 已支付
	PaymentStatusFailed  = "failed"  // 支付失败
)

// 订单状态
const (
	OrderStatusPending   = "pending"   // 待确认
	OrderStatusConfirmed = "confirmed" // 已确认
)

// Momo 回调结果码与应答码
const (
	// MomoResultCodeSuccess 网关侧支付成功
	MomoResultCodeSuccess = 0
	// MomoAckCodeOK 应答网关：已受理，勿重发
	MomoAckCodeOK = 0
	// MomoAckCodeError 应答网关：处理失败
	MomoAckCodeError = 1
	// MomoAckCodeBadSignature 应答网关：签名校验失败
	MomoAckCodeBadSignature = 97
)

// 队列名称
const (
	QueueDefault = "default"
)

// 异步任务类型
const (
	// TaskOrderPaidPush 订单支付成功推送通知任务
	TaskOrderPaidPush = "order:paid_push"
)
