package model

import (
	"errors"
	"time"
)

// MessageStatus is the lifecycle state of an outbound message.
type MessageStatus string

const (
	MessageStatusQueued    MessageStatus = "queued"
	MessageStatusSent      MessageStatus = "sent"
	MessageStatusDelivered MessageStatus = "delivered"
	MessageStatusFailed    MessageStatus = "failed"
)

type Channel string

const (
	ChannelSMS  Channel = "sms"
	ChannelZalo Channel = "zalo"
)

const (
	PriorityNormal  = "normal"
	PriorityExpress = "express"
)

// Message is an outbound follow-up message to a customer.
type Message struct {
	ID         string        `json:"id"`
	ReminderID *string       `json:"reminder_id,omitempty"`
	CustomerID string        `json:"customer_id"`
	Mobile     string        `json:"mobile"`
	Channel    Channel       `json:"channel"`
	Template   ReminderType  `json:"template,omitempty"`
	Content    string        `json:"content"`
	Priority   string        `json:"priority"`
	Status     MessageStatus `json:"status"`
	CreatedAt  time.Time     `json:"created_at"`

	DeliveryReports []*DeliveryReport `json:"delivery_reports,omitempty"`
}

type MessageCreateRequest struct {
	ReminderID *string
	CustomerID string
	Mobile     string
	Channel    Channel
	Template   ReminderType
	Content    string
	Priority   string
}

func (p MessageCreateRequest) Validate() error {
	if p.CustomerID == "" {
		return errors.New("customer_id is required")
	}
	if p.Mobile == "" {
		return errors.New("mobile is required")
	}
	if p.Content == "" {
		return errors.New("content is required")
	}
	return nil
}

// MessageFilter controls List queries. [From, To) bounds created_at.
type MessageFilter struct {
	CustomerID *string
	ReminderID *string
	Mobile     *string
	From       *time.Time
	To         *time.Time
	Limit      int  // default 50
	Offset     int  // for pagination
	Desc       bool // order by created_at

	WithReports bool
}
