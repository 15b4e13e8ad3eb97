package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/Koi-0105-Monkey/momo-backend/internal/models"

	"gorm.io/gorm"
)

// OrderRepository 订单数据访问接口
// 回调核销只需要「按订单号查」与「按主键改」两个能力。
type OrderRepository interface {
	GetByOrderNo(ctx context.Context, orderNo string) (*models.Order, error)
	UpdatePayment(ctx context.Context, id uint, updates map[string]interface{}) error
	WithTx(tx *gorm.DB) *GormOrderRepository
}

// GormOrderRepository GORM 实现
type GormOrderRepository struct {
	db *gorm.DB
}

// NewOrderRepository 创建订单仓库
func NewOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// WithTx 绑定事务
func (r *GormOrderRepository) WithTx(tx *gorm.DB) *GormOrderRepository {
	if tx == nil {
		return r
	}
	return &GormOrderRepository{db: tx}
}

// GetByOrderNo 根据业务订单号获取订单
// order_no 带唯一索引，至多返回一条；未命中返回 (nil, nil)。
func (r *GormOrderRepository) GetByOrderNo(ctx context.Context, orderNo string) (*models.Order, error) {
	orderNo = strings.TrimSpace(orderNo)
	if orderNo == "" {
		return nil, nil
	}
	var order models.Order
	if err := r.db.WithContext(ctx).Where("order_no = ?", orderNo).First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

// UpdatePayment 按主键更新支付相关字段
// 订单号只作查询键，写入一律走内部主键。
func (r *GormOrderRepository) UpdatePayment(ctx context.Context, id uint, updates map[string]interface{}) error {
	if id == 0 || len(updates) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&models.Order{}).Where("id = ?", id).Updates(updates).Error
}
