package main

import (
	"math/rand"
	"net/http"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/thammystudio/studio-crm/internal/lead"
)

type DeliveryStatus string

const (
	StatusDelivered DeliveryStatus = "DELIVERED"
	StatusFailed    DeliveryStatus = "FAILED"
	StatusPending   DeliveryStatus = "PENDING"
)

const (
	maxSMSRunes  = 268
	maxZaloRunes = 2000
)

type SendRequest struct {
	MessageID   string `json:"message_id" binding:"required"`
	PhoneNumber string `json:"phone_number" binding:"required"`
	Content     string `json:"content" binding:"required"`
	Channel     string `json:"channel" binding:"omitempty,oneof=sms zalo"`
	Priority    string `json:"priority" binding:"omitempty,oneof=normal express"`
}

type SendResponse struct {
	MessageID   string         `json:"message_id"`
	Channel     string         `json:"channel"`
	Status      DeliveryStatus `json:"status"`
	DeliveredAt *time.Time     `json:"delivered_at,omitempty"`
	ErrorCode   string         `json:"error_code,omitempty"`
	ErrorMsg    string         `json:"error_message,omitempty"`
	OperatorID  string         `json:"operator_id"`
	ProcessedAt time.Time      `json:"processed_at"`
}

var errorMessages = map[string]string{
	"INVALID_NUMBER":    "Số điện thoại không hợp lệ",
	"CONTENT_TOO_LONG":  "Nội dung vượt quá độ dài cho phép",
	"NETWORK_ERROR":     "Lỗi kết nối tới nhà mạng",
	"TIMEOUT":           "Hết thời gian gửi tin",
	"BLOCKED":           "Người nhận đã chặn tin nhắn",
	"NOT_ON_ZALO":       "Số điện thoại chưa đăng ký Zalo",
	"OPERATOR_REJECTED": "Nhà mạng từ chối tin nhắn",
}

// transientCodes are drawn at random for simulated failures.
var transientCodes = []string{"NETWORK_ERROR", "TIMEOUT", "BLOCKED", "OPERATOR_REJECTED"}

type OperatorConfig struct {
	// DeliveryRate is the share of valid messages reported DELIVERED.
	DeliveryRate float64
	// PendingRate is the share reported PENDING; the rest fail.
	PendingRate float64
	MinDelay    time.Duration
	MaxDelay    time.Duration
	Seed        int64
}

// MockOperator simulates an SMS and Zalo provider. Results are kept so the
// status endpoint can answer for earlier sends.
type MockOperator struct {
	mu      sync.Mutex
	cfg     OperatorConfig
	id      string
	rng     *rand.Rand
	sleep   func(time.Duration)
	results map[string]SendResponse
}

func NewMockOperator(cfg OperatorConfig) *MockOperator {
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}
	return &MockOperator{
		cfg:     cfg,
		id:      "MOCK_OPERATOR_" + uuid.NewString()[:8],
		rng:     rand.New(rand.NewSource(cfg.Seed)),
		sleep:   time.Sleep,
		results: make(map[string]SendResponse),
	}
}

func (m *MockOperator) delay(priority string) time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()

	d := m.cfg.MinDelay
	if span := m.cfg.MaxDelay - m.cfg.MinDelay; span > 0 {
		d += time.Duration(m.rng.Int63n(int64(span)))
	}
	if priority == "express" {
		d /= 2
	}
	return d
}

// Send decides the outcome of req. Malformed numbers and oversized content
// always fail; other messages follow the configured rates.
func (m *MockOperator) Send(req SendRequest) SendResponse {
	if req.Channel == "" {
		req.Channel = "sms"
	}
	m.sleep(m.delay(req.Priority))

	resp := SendResponse{
		MessageID:   req.MessageID,
		Channel:     req.Channel,
		OperatorID:  m.id,
		ProcessedAt: time.Now().UTC(),
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	limit := maxSMSRunes
	if req.Channel == "zalo" {
		limit = maxZaloRunes
	}
	switch roll := m.rng.Float64(); {
	case !lead.ValidatePhone(req.PhoneNumber):
		resp.fail("INVALID_NUMBER")
	case utf8.RuneCountInString(req.Content) > limit:
		resp.fail("CONTENT_TOO_LONG")
	case roll < m.cfg.DeliveryRate:
		at := resp.ProcessedAt
		resp.Status = StatusDelivered
		resp.DeliveredAt = &at
	case roll < m.cfg.DeliveryRate+m.cfg.PendingRate:
		resp.Status = StatusPending
	case req.Channel == "zalo" && m.rng.Intn(2) == 0:
		resp.fail("NOT_ON_ZALO")
	default:
		resp.fail(transientCodes[m.rng.Intn(len(transientCodes))])
	}

	m.results[req.MessageID] = resp
	return resp
}

func (r *SendResponse) fail(code string) {
	r.Status = StatusFailed
	r.ErrorCode = code
	r.ErrorMsg = errorMessages[code]
}

func (m *MockOperator) Result(messageID string) (SendResponse, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.results[messageID]
	return r, ok
}

func (m *MockOperator) SetRates(delivery, pending float64) bool {
	if delivery < 0 || pending < 0 || delivery+pending > 1 {
		return false
	}
	m.mu.Lock()
	m.cfg.DeliveryRate, m.cfg.PendingRate = delivery, pending
	m.mu.Unlock()
	return true
}

func (m *MockOperator) rates() (float64, float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cfg.DeliveryRate, m.cfg.PendingRate
}

type Handler struct {
	operator *MockOperator
}

func NewHandler(operator *MockOperator) *Handler {
	return &Handler{operator: operator}
}

func (h *Handler) Send(c *gin.Context) {
	var req SendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	resp := h.operator.Send(req)
	ev := log.Info()
	if resp.Status == StatusFailed {
		ev = log.Warn().Str("error_code", resp.ErrorCode)
	}
	ev.Str("message_id", req.MessageID).
		Str("channel", resp.Channel).
		Str("status", string(resp.Status)).
		Msg("message processed")

	// a failed delivery is still an accepted request
	code := http.StatusOK
	if resp.Status == StatusFailed {
		code = http.StatusAccepted
	}
	c.JSON(code, resp)
}

func (h *Handler) Status(c *gin.Context) {
	resp, ok := h.operator.Result(c.Param("message_id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown message_id"})
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) Health(c *gin.Context) {
	delivery, pending := h.operator.rates()
	c.JSON(http.StatusOK, gin.H{
		"status":        "healthy",
		"operator_id":   h.operator.id,
		"delivery_rate": delivery,
		"pending_rate":  pending,
		"timestamp":     time.Now().UTC(),
	})
}

func (h *Handler) UpdateConfig(c *gin.Context) {
	var req struct {
		DeliveryRate *float64 `json:"delivery_rate"`
		PendingRate  *float64 `json:"pending_rate"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	delivery, pending := h.operator.rates()
	if req.DeliveryRate != nil {
		delivery = *req.DeliveryRate
	}
	if req.PendingRate != nil {
		pending = *req.PendingRate
	}
	if !h.operator.SetRates(delivery, pending) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "rates must be within [0,1] and sum to at most 1"})
		return
	}
	log.Info().Float64("delivery_rate", delivery).Float64("pending_rate", pending).Msg("rates updated")
	c.JSON(http.StatusOK, gin.H{"delivery_rate": delivery, "pending_rate": pending})
}

func requestLogger(c *gin.Context) {
	start := time.Now()
	c.Next()
	log.Debug().
		Str("method", c.Request.Method).
		Str("path", c.Request.URL.Path).
		Int("status", c.Writer.Status()).
		Dur("duration", time.Since(start)).
		Msg("request")
}

func SetupRouter(h *Handler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger)

	v1 := r.Group("/api/v1")
	v1.POST("/sms/send", h.Send)
	v1.GET("/sms/status/:message_id", h.Status)
	v1.GET("/health", h.Health)
	v1.PUT("/config", h.UpdateConfig)

	r.GET("/health", h.Health)
	return r
}
