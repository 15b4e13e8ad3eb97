package public

import "github.com/Koi-0105-Monkey/momo-backend/internal/provider"

// Handler 公开接口处理器入口
// 回调与健康探针都在公开侧，鉴权靠签名而非会话。
type Handler struct {
	*provider.Container
}

// New 创建处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
