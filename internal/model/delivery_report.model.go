package model

import "time"

// DeliveryReport is the provider outcome recorded for a message. A message
// retried after a transient failure gets a report only for its final outcome.
type DeliveryReport struct {
	ID          int64      `json:"id"`
	MessageID   string     `json:"message_id"`
	Status      string     `json:"status"`
	OperatorID  string     `json:"operator_id,omitempty"`
	ErrorCode   string     `json:"error_code,omitempty"`
	DeliveredAt *time.Time `json:"delivered_at"`
	CreatedAt   time.Time  `json:"created_at"`
}
