package models

import (
	"time"

	"gorm.io/gorm"
)

// Order 订单表
// 订单由下单流程创建，回调核销只做「按订单号查、按主键改」。
type Order struct {
	ID            uint           `gorm:"primarykey" json:"id"`                                 // 主键
	OrderNo       string         `gorm:"uniqueIndex;not null" json:"order_no"`                 // 订单编号（对外业务号）
	UserID        uint           `gorm:"index" json:"user_id,omitempty"`                       // 用户ID
	Status        string         `gorm:"index;not null;default:pending" json:"status"`         // 订单状态
	PaymentStatus string         `gorm:"index;not null;default:pending" json:"payment_status"` // 支付状态
	TransactionID string         `gorm:"index" json:"transaction_id,omitempty"`                // 网关交易号
	TotalAmount   int64          `gorm:"not null;default:0" json:"total_amount"`               // 实付金额（最小货币单位）
	OrderInfo     string         `json:"order_info,omitempty"`                                 // 订单描述
	PaidAt        *time.Time     `gorm:"index" json:"paid_at"`                                 // 支付时间
	CreatedAt     time.Time      `gorm:"index" json:"created_at"`                              // 创建时间
	UpdatedAt     time.Time      `gorm:"index" json:"updated_at"`                              // 更新时间
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`                                       // 软删除时间
}

// TableName 指定表名
func (Order) TableName() string {
	return "orders"
}
