package cache

import (
	"context"
	"strconv"
	"time"
)

const callbackSeenTTL = 24 * time.Hour

// MarkCallbackSeen 记录一次回调投递，返回是否为首次见到
// 仅用于重复投递的运维观测；核销本身靠目标状态幂等，不依赖该标记。
// Redis 未启用或出错时按「首次」处理。
func MarkCallbackSeen(ctx context.Context, orderNo, transID string, resultCode int) (bool, error) {
	if !Enabled() {
		return true, nil
	}
	key := "callback_seen:" + orderNo + ":" + transID + ":" + strconv.Itoa(resultCode)
	ok, err := SetNX(ctx, key, "1", callbackSeenTTL)
	if err != nil {
		return true, err
	}
	return ok, nil
}
