package provider

import (
	"github.com/Koi-0105-Monkey/momo-backend/internal/cache"
	"github.com/Koi-0105-Monkey/momo-backend/internal/config"
	"github.com/Koi-0105-Monkey/momo-backend/internal/logger"
	"github.com/Koi-0105-Monkey/momo-backend/internal/models"
	"github.com/Koi-0105-Monkey/momo-backend/internal/payment/momo"
	"github.com/Koi-0105-Monkey/momo-backend/internal/queue"
	"github.com/Koi-0105-Monkey/momo-backend/internal/repository"
	"github.com/Koi-0105-Monkey/momo-backend/internal/service"
)

// Container 依赖注入容器
// 密钥随配置在此装配并注入，不存模块级单例。
type Container struct {
	Config      *config.Config
	MomoCfg     *momo.Config
	QueueClient *queue.Client

	// Repositories
	OrderRepo repository.OrderRepository

	// Services
	PaymentService *service.PaymentService
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) *Container {
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	var queueClient *queue.Client
	if cfg.Queue.Enabled {
		qc, err := queue.NewClient(&cfg.Queue)
		if err != nil {
			logger.Errorw("provider_init_queue_client_failed", "error", err)
		} else {
			queueClient = qc
		}
	}

	momoCfg := &momo.Config{
		PartnerCode: cfg.Momo.PartnerCode,
		AccessKey:   cfg.Momo.AccessKey,
		SecretKey:   cfg.Momo.SecretKey,
	}
	if err := momo.ValidateConfig(momoCfg); err != nil {
		logger.Warnw("provider_momo_config_incomplete", "error", err)
	}

	c := &Container{
		Config:      cfg,
		MomoCfg:     momoCfg,
		QueueClient: queueClient,
	}

	c.OrderRepo = repository.NewOrderRepository(models.DB)
	c.PaymentService = service.NewPaymentService(c.OrderRepo, queueClient, cfg.Momo.StoreTimeout())

	return c
}
