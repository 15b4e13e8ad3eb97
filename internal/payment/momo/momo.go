package momo

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	ErrConfigInvalid    = errors.New("momo config invalid")
	ErrMissingFields    = errors.New("momo callback missing required fields")
	ErrSignatureInvalid = errors.New("momo signature invalid")
)

// Config Momo 商户配置
type Config struct {
	PartnerCode string `json:"partner_code"` // 商户号
	AccessKey   string `json:"access_key"`   // 访问密钥（参与签名串）
	SecretKey   string `json:"secret_key"`   // 签名密钥（HMAC key）
}

// ValidateConfig 校验 Momo 配置完整性
func ValidateConfig(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("%w: config is nil", ErrConfigInvalid)
	}
	if strings.TrimSpace(cfg.AccessKey) == "" {
		return fmt.Errorf("%w: access_key is required", ErrConfigInvalid)
	}
	if strings.TrimSpace(cfg.SecretKey) == "" {
		return fmt.Errorf("%w: secret_key is required", ErrConfigInvalid)
	}
	return nil
}

// Value 回调里的可缺省字段
// 网关对数值字段既可能发数字也可能发字符串；缺省字段在签名串中
// 按调用方序列化的字面量 "undefined" 参与拼接，这是协议约定的一部分。
type Value struct {
	set bool
	raw string
}

// UnmarshalJSON 同时接受字符串与数字形式
func (v *Value) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" {
		return nil
	}
	if strings.HasPrefix(trimmed, `"`) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		v.set = true
		v.raw = s
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	v.set = true
	v.raw = n.String()
	return nil
}

// MarshalJSON 原样输出
func (v Value) MarshalJSON() ([]byte, error) {
	if !v.set {
		return []byte("null"), nil
	}
	return json.Marshal(v.raw)
}

// Present 字段是否出现在回调中
func (v Value) Present() bool {
	return v.set
}

// String 字段的明文十进制文本（缺省返回空串）
func (v Value) String() string {
	if !v.set {
		return ""
	}
	return v.raw
}

// Int 按整数解析
func (v Value) Int() (int, bool) {
	if !v.set {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimSpace(v.raw))
	if err != nil {
		return 0, false
	}
	return n, true
}

// Int64 按 64 位整数解析
func (v Value) Int64() (int64, bool) {
	if !v.set {
		return 0, false
	}
	n, err := strconv.ParseInt(strings.TrimSpace(v.raw), 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// NewValue 构造已赋值字段（测试与签名用）
func NewValue(raw string) Value {
	return Value{set: true, raw: raw}
}

// CallbackPayload Momo 支付结果回调报文
// 在边界处一次性解码成强类型结构，下游只消费该结构。
type CallbackPayload struct {
	PartnerCode  *string `json:"partnerCode"`
	OrderID      *string `json:"orderId"`
	RequestID    *string `json:"requestId"`
	Amount       Value   `json:"amount"`
	OrderInfo    *string `json:"orderInfo"`
	OrderType    *string `json:"orderType"`
	TransID      Value   `json:"transId"`
	ResultCode   Value   `json:"resultCode"`
	Message      *string `json:"message"`
	PayType      *string `json:"payType"`
	ResponseTime Value   `json:"responseTime"`
	ExtraData    *string `json:"extraData"`
	Signature    string  `json:"signature"`
}

// OrderNo 业务订单号
func (p *CallbackPayload) OrderNo() string {
	if p == nil || p.OrderID == nil {
		return ""
	}
	return strings.TrimSpace(*p.OrderID)
}

// TransNo 网关交易号
func (p *CallbackPayload) TransNo() string {
	if p == nil {
		return ""
	}
	return strings.TrimSpace(p.TransID.String())
}

// IsSuccess 网关是否上报支付成功
func (p *CallbackPayload) IsSuccess() bool {
	code, ok := p.ResultCode.Int()
	return ok && code == 0
}

// Validate 结构校验
// resultCode 按「是否出现」判断，0 是合法的成功码，不能按零值当缺失。
func Validate(p *CallbackPayload) error {
	if p == nil {
		return fmt.Errorf("%w: empty payload", ErrMissingFields)
	}
	if p.OrderNo() == "" {
		return fmt.Errorf("%w: orderId", ErrMissingFields)
	}
	if p.TransNo() == "" {
		return fmt.Errorf("%w: transId", ErrMissingFields)
	}
	if _, ok := p.ResultCode.Int(); !ok {
		return fmt.Errorf("%w: resultCode", ErrMissingFields)
	}
	return nil
}

// BuildRawSignature 构造待签名串
// 字段顺序是协议契约，逐字节稳定；缺省字段拼入字面量 "undefined"，
// 数值一律使用明文十进制（禁止本地化格式）。顺序或编码偏差都会导致
// 签名不一致并被拒绝，这是协议的既定脆弱性，不是待修复项。
func BuildRawSignature(cfg *Config, p *CallbackPayload) string {
	var b strings.Builder
	b.WriteString("accessKey=")
	b.WriteString(cfg.AccessKey)
	b.WriteString("&amount=")
	b.WriteString(renderValue(p.Amount))
	b.WriteString("&extraData=")
	b.WriteString(renderString(p.ExtraData))
	b.WriteString("&message=")
	b.WriteString(renderString(p.Message))
	b.WriteString("&orderId=")
	b.WriteString(renderString(p.OrderID))
	b.WriteString("&orderInfo=")
	b.WriteString(renderString(p.OrderInfo))
	b.WriteString("&orderType=")
	b.WriteString(renderString(p.OrderType))
	b.WriteString("&partnerCode=")
	b.WriteString(renderString(p.PartnerCode))
	b.WriteString("&payType=")
	b.WriteString(renderString(p.PayType))
	b.WriteString("&requestId=")
	b.WriteString(renderString(p.RequestID))
	b.WriteString("&responseTime=")
	b.WriteString(renderValue(p.ResponseTime))
	b.WriteString("&resultCode=")
	b.WriteString(renderValue(p.ResultCode))
	b.WriteString("&transId=")
	b.WriteString(renderValue(p.TransID))
	return b.String()
}

// Sign 计算签名（HMAC-SHA256，小写十六进制）
func Sign(secretKey, raw string) string {
	mac := hmac.New(sha256.New, []byte(secretKey))
	mac.Write([]byte(raw))
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifyCallback 验证回调签名
// 比较采用等长恒时比较，通过/拒绝结果与普通相等判断一致。
func VerifyCallback(cfg *Config, p *CallbackPayload) error {
	if err := ValidateConfig(cfg); err != nil {
		return err
	}
	if p == nil || strings.TrimSpace(p.Signature) == "" {
		return ErrSignatureInvalid
	}
	expected := Sign(cfg.SecretKey, BuildRawSignature(cfg, p))
	if !hmac.Equal([]byte(expected), []byte(p.Signature)) {
		return ErrSignatureInvalid
	}
	return nil
}

func renderValue(v Value) string {
	if !v.Present() {
		return "undefined"
	}
	return v.String()
}

func renderString(s *string) string {
	if s == nil {
		return "undefined"
	}
	return *s
}
