package processor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	gateway "github.com/thammystudio/studio-crm/internal/gateways"
	"github.com/thammystudio/studio-crm/internal/model"
	"github.com/thammystudio/studio-crm/internal/queue"
	"github.com/thammystudio/studio-crm/pkg/logger"
	"github.com/thammystudio/studio-crm/pkg/prom"
)

type Sender interface {
	SendSMS(ctx context.Context, req *gateway.SendRequest) (*gateway.SendResponse, error)
}

type DeliveryReportRepository interface {
	Create(ctx context.Context, dr *model.DeliveryReport) (*model.DeliveryReport, error)
}

type MessageStatusRepository interface {
	UpdateStatus(ctx context.Context, id string, status model.MessageStatus) error
}

var errNotDelivered = errors.New("provider did not deliver message")

const errCodeRetriesExhausted = "RETRIES_EXHAUSTED"

type SMSMessageProcessor struct {
	sender      Sender
	reports     DeliveryReportRepository
	messages    MessageStatusRepository
	idempotency *IdempotencyService
	now         func() time.Time
}

func NewSMSMessageProcessor(sender Sender, reports DeliveryReportRepository, messages MessageStatusRepository, idempotency *IdempotencyService) *SMSMessageProcessor {
	return &SMSMessageProcessor{
		sender:      sender,
		reports:     reports,
		messages:    messages,
		idempotency: idempotency,
		now:         time.Now,
	}
}

func (p *SMSMessageProcessor) GetType() string {
	return "message"
}

// Process delivers one queued message. A nil return acks it; an error leaves
// it on the queue for another attempt.
func (p *SMSMessageProcessor) Process(ctx context.Context, queueMessage *queue.Message) error {
	var message model.Message
	if err := json.Unmarshal(queueMessage.Data, &message); err != nil || message.ID == "" {
		// retrying cannot fix a malformed payload
		logger.Error("dropping malformed queue message", "queue_id", queueMessage.ID, "error", err)
		return nil
	}

	log := logger.With("message_id", message.ID, "customer_id", message.CustomerID)

	procCtx, err := p.idempotency.AcquireProcessingLock(ctx, message.ID)
	switch {
	case errors.Is(err, ErrAlreadyProcessed):
		log.Info("message already processed, skipping")
		return nil
	case errors.Is(err, ErrMaxRetriesExceeded):
		log.Error("message retries exhausted")
		p.finish(ctx, log, &message, model.MessageStatusFailed, &model.DeliveryReport{
			Status:    string(gateway.StatusFailed),
			ErrorCode: errCodeRetriesExhausted,
		})
		return nil
	case errors.Is(err, ErrLockAcquireFailed):
		return fmt.Errorf("message %s: %w", message.ID, err)
	case err != nil:
		return err
	}
	defer p.idempotency.ReleaseLock(ctx, procCtx) //nolint:errcheck

	log.Info("processing message", "channel", string(message.Channel), "retry_count", procCtx.RetryCount)

	res, err := p.sender.SendSMS(ctx, &gateway.SendRequest{
		MessageID:   message.ID,
		PhoneNumber: message.Mobile,
		Content:     message.Content,
		Channel:     string(message.Channel),
		Priority:    message.Priority,
	})
	if err == nil && res.Status == gateway.StatusFailed {
		err = fmt.Errorf("%w: %s %s", errNotDelivered, res.ErrorCode, res.ErrorMsg)
	}
	if err != nil {
		if markErr := p.idempotency.MarkFailure(ctx, procCtx, err); markErr != nil {
			log.Error("failed to mark failure", "error", markErr)
		}
		return err
	}

	report := &model.DeliveryReport{
		Status:     string(res.Status),
		OperatorID: res.OperatorID,
	}
	if res.Status == gateway.StatusDelivered {
		deliveredAt := p.now()
		if res.DeliveredAt != nil {
			deliveredAt = *res.DeliveredAt
		}
		report.DeliveredAt = &deliveredAt
		prom.AddMessageDeliveryDuration(deliveredAt.Sub(message.CreatedAt).Seconds(), message.Priority)
		p.finish(ctx, log, &message, model.MessageStatusDelivered, report)
	} else {
		// accepted by the operator, delivery confirmation still outstanding
		report.Status = string(gateway.StatusPending)
		p.finish(ctx, log, &message, model.MessageStatusSent, report)
	}

	if err := p.idempotency.MarkSuccess(ctx, procCtx); err != nil {
		log.Error("failed to mark success", "error", err)
	}
	return nil
}

// finish records the outcome. Storage errors are logged only: the send
// already happened and must not be repeated.
func (p *SMSMessageProcessor) finish(ctx context.Context, log *logger.ZapLogger, message *model.Message, status model.MessageStatus, report *model.DeliveryReport) {
	prom.IncMessageDelivered(string(status))

	report.MessageID = message.ID
	if _, err := p.reports.Create(ctx, report); err != nil {
		log.Error("failed to save delivery report", "error", err)
	}
	if err := p.messages.UpdateStatus(ctx, message.ID, status); err != nil {
		log.Error("failed to update message status", "error", err)
	}
}
