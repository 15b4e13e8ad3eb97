package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Ack 网关应答结构
// resultCode=0 且 HTTP 200 表示「已受理，勿重发」，其余组合网关会重投，
// 因此应答表属于协议本身，不能随意更改。
type Ack struct {
	Message    string `json:"message"`
	ResultCode int    `json:"resultCode"`
}

// WriteAck 输出网关应答
func WriteAck(c *gin.Context, httpStatus, resultCode int, message string) {
	c.JSON(httpStatus, Ack{
		Message:    message,
		ResultCode: resultCode,
	})
}

// OK 受理成功应答
func OK(c *gin.Context, message string) {
	WriteAck(c, http.StatusOK, 0, message)
}
