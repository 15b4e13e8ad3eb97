package public

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Koi-0105-Monkey/momo-backend/internal/constants"
	"github.com/Koi-0105-Monkey/momo-backend/internal/http/response"
	"github.com/Koi-0105-Monkey/momo-backend/internal/models"
	"github.com/Koi-0105-Monkey/momo-backend/internal/payment/momo"
	"github.com/Koi-0105-Monkey/momo-backend/internal/provider"
	"github.com/Koi-0105-Monkey/momo-backend/internal/repository"
	"github.com/Koi-0105-Monkey/momo-backend/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

var webhookTestMomoCfg = &momo.Config{
	PartnerCode: "MOMOEWN820251130",
	AccessKey:   "bxpIpXsB5FM0vn5R",
	SecretKey:   "6YIKQUjACi9LBHerKQvTZXcBkEY3NEpq",
}

func setupWebhookTest(t *testing.T) (*gorm.DB, *gin.Engine) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:momo_webhook_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open test db failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Order{}); err != nil {
		t.Fatalf("migrate test db failed: %v", err)
	}

	repo := repository.NewOrderRepository(db)
	container := &provider.Container{
		MomoCfg:        webhookTestMomoCfg,
		OrderRepo:      repo,
		PaymentService: service.NewPaymentService(repo, nil, 0),
	}

	handler := New(container)
	r := gin.New()
	r.GET("/", handler.HealthCheck)
	r.POST("/api/momo-webhook", handler.MomoWebhook)
	return db, r
}

func seedWebhookOrder(t *testing.T, db *gorm.DB, orderNo string) *models.Order {
	t.Helper()
	order := models.Order{
		OrderNo:       orderNo,
		Status:        constants.OrderStatusPending,
		PaymentStatus: constants.PaymentStatusPending,
		TotalAmount:   100000,
	}
	if err := db.Create(&order).Error; err != nil {
		t.Fatalf("seed order failed: %v", err)
	}
	return &order
}

// signedBody 构造一份签名正确的回调报文
func signedBody(t *testing.T, mutate func(body map[string]interface{})) []byte {
	t.Helper()
	str := func(s string) *string { return &s }
	payload := &momo.CallbackPayload{
		PartnerCode:  str("MOMOEWN820251130"),
		OrderID:      str("ORD123"),
		RequestID:    str("REQ-1"),
		Amount:       momo.NewValue("100000"),
		OrderInfo:    str("Thanh toan don hang ORD123"),
		OrderType:    str("momo_wallet"),
		TransID:      momo.NewValue("4088878653"),
		ResultCode:   momo.NewValue("0"),
		Message:      str("Successful."),
		PayType:      str("qr"),
		ResponseTime: momo.NewValue("1732960000000"),
		ExtraData:    str(""),
	}
	signature := momo.Sign(webhookTestMomoCfg.SecretKey, momo.BuildRawSignature(webhookTestMomoCfg, payload))

	body := map[string]interface{}{
		"partnerCode":  "MOMOEWN820251130",
		"orderId":      "ORD123",
		"requestId":    "REQ-1",
		"amount":       100000,
		"orderInfo":    "Thanh toan don hang ORD123",
		"orderType":    "momo_wallet",
		"transId":      4088878653,
		"resultCode":   0,
		"message":      "Successful.",
		"payType":      "qr",
		"responseTime": 1732960000000,
		"extraData":    "",
		"signature":    signature,
	}
	if mutate != nil {
		mutate(body)
	}
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body failed: %v", err)
	}
	return raw
}

func postWebhook(r *gin.Engine, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/momo-webhook", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeAck(t *testing.T, w *httptest.ResponseRecorder) response.Ack {
	t.Helper()
	var ack response.Ack
	if err := json.Unmarshal(w.Body.Bytes(), &ack); err != nil {
		t.Fatalf("decode ack failed: %v (body=%s)", err, w.Body.String())
	}
	return ack
}

func TestMomoWebhookSuccess(t *testing.T) {
	db, r := setupWebhookTest(t)
	seeded := seedWebhookOrder(t, db, "ORD123")

	w := postWebhook(r, signedBody(t, nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status: want 200 got %d (body=%s)", w.Code, w.Body.String())
	}
	ack := decodeAck(t, w)
	if ack.ResultCode != constants.MomoAckCodeOK || ack.Message != "OK" {
		t.Fatalf("ack: want {OK 0} got %+v", ack)
	}

	var got models.Order
	if err := db.First(&got, seeded.ID).Error; err != nil {
		t.Fatalf("reload order failed: %v", err)
	}
	if got.PaymentStatus != constants.PaymentStatusPaid || got.Status != constants.OrderStatusConfirmed {
		t.Fatalf("order not reconciled: payment_status=%s status=%s", got.PaymentStatus, got.Status)
	}
	if got.PaidAt == nil {
		t.Fatal("paid_at not set")
	}
}

func TestMomoWebhookTamperedSignature(t *testing.T) {
	db, r := setupWebhookTest(t)
	seeded := seedWebhookOrder(t, db, "ORD123")

	w := postWebhook(r, signedBody(t, func(body map[string]interface{}) {
		sig := body["signature"].(string)
		head := byte('a')
		if sig[0] == 'a' {
			head = 'b'
		}
		body["signature"] = string(head) + sig[1:]
	}))

	if w.Code != http.StatusForbidden {
		t.Fatalf("status: want 403 got %d (body=%s)", w.Code, w.Body.String())
	}
	ack := decodeAck(t, w)
	if ack.ResultCode != constants.MomoAckCodeBadSignature || ack.Message != "Invalid signature" {
		t.Fatalf("ack: want {Invalid signature 97} got %+v", ack)
	}

	// 验签失败绝不触库
	var got models.Order
	if err := db.First(&got, seeded.ID).Error; err != nil {
		t.Fatalf("reload order failed: %v", err)
	}
	if got.PaymentStatus != constants.PaymentStatusPending {
		t.Fatalf("order touched despite bad signature: %s", got.PaymentStatus)
	}
}

func TestMomoWebhookMissingFields(t *testing.T) {
	_, r := setupWebhookTest(t)

	w := postWebhook(r, signedBody(t, func(body map[string]interface{}) {
		delete(body, "orderId")
	}))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status: want 400 got %d (body=%s)", w.Code, w.Body.String())
	}
	ack := decodeAck(t, w)
	if ack.ResultCode != constants.MomoAckCodeError || ack.Message != "Missing required fields" {
		t.Fatalf("ack: want {Missing required fields 1} got %+v", ack)
	}
}

func TestMomoWebhookFailedPayment(t *testing.T) {
	db, r := setupWebhookTest(t)
	seeded := seedWebhookOrder(t, db, "ORD123")

	// 失败结论要重签：resultCode 参与签名
	str := func(s string) *string { return &s }
	payload := &momo.CallbackPayload{
		PartnerCode:  str("MOMOEWN820251130"),
		OrderID:      str("ORD123"),
		RequestID:    str("REQ-1"),
		Amount:       momo.NewValue("100000"),
		OrderInfo:    str("Thanh toan don hang ORD123"),
		OrderType:    str("momo_wallet"),
		TransID:      momo.NewValue("4088878653"),
		ResultCode:   momo.NewValue("99"),
		Message:      str("Transaction denied."),
		PayType:      str("qr"),
		ResponseTime: momo.NewValue("1732960000000"),
		ExtraData:    str(""),
	}
	signature := momo.Sign(webhookTestMomoCfg.SecretKey, momo.BuildRawSignature(webhookTestMomoCfg, payload))
	w := postWebhook(r, signedBody(t, func(body map[string]interface{}) {
		body["resultCode"] = 99
		body["message"] = "Transaction denied."
		body["signature"] = signature
	}))

	if w.Code != http.StatusOK {
		t.Fatalf("status: want 200 got %d (body=%s)", w.Code, w.Body.String())
	}
	ack := decodeAck(t, w)
	if ack.ResultCode != constants.MomoAckCodeOK || ack.Message != "Payment failed but processed" {
		t.Fatalf("ack: want {Payment failed but processed 0} got %+v", ack)
	}

	var got models.Order
	if err := db.First(&got, seeded.ID).Error; err != nil {
		t.Fatalf("reload order failed: %v", err)
	}
	if got.PaymentStatus != constants.PaymentStatusFailed {
		t.Fatalf("payment_status: want failed got %s", got.PaymentStatus)
	}
	if got.Status != constants.OrderStatusPending || got.PaidAt != nil {
		t.Fatalf("failed outcome must not confirm order: status=%s paid_at=%v", got.Status, got.PaidAt)
	}
}

func TestMomoWebhookOrderNotFound(t *testing.T) {
	_, r := setupWebhookTest(t)

	// 验签通过但订单不存在：成功结论按核销失败告知网关重试
	w := postWebhook(r, signedBody(t, nil))

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status: want 500 got %d (body=%s)", w.Code, w.Body.String())
	}
	ack := decodeAck(t, w)
	if ack.ResultCode != constants.MomoAckCodeError || ack.Message != "Failed to update order" {
		t.Fatalf("ack: want {Failed to update order 1} got %+v", ack)
	}
}

func TestMomoWebhookMalformedBody(t *testing.T) {
	_, r := setupWebhookTest(t)

	w := postWebhook(r, []byte(`{"orderId":`))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status: want 400 got %d", w.Code)
	}
	ack := decodeAck(t, w)
	if ack.ResultCode != constants.MomoAckCodeError || ack.Message != "Missing required fields" {
		t.Fatalf("ack: want {Missing required fields 1} got %+v", ack)
	}
}

func TestHealthCheck(t *testing.T) {
	_, r := setupWebhookTest(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status: want 200 got %d", w.Code)
	}
	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body failed: %v", err)
	}
	if body["status"] != "OK" {
		t.Fatalf("health status: want OK got %v", body["status"])
	}
}
