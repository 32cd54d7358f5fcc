package services

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/thammystudio/studio-crm/internal/lead"
	"github.com/thammystudio/studio-crm/internal/model"
	"github.com/thammystudio/studio-crm/pkg/logger"
)

// DefaultMaxContentLen allows a four-part concatenated Unicode SMS.
const DefaultMaxContentLen = 268

type MessageRepository interface {
	Create(ctx context.Context, p *model.Message) (*model.Message, error)
	List(ctx context.Context, f model.MessageFilter) ([]*model.Message, int64, error)
	UpdateStatus(ctx context.Context, id string, status model.MessageStatus) error
}

// Publisher is implemented by *queue.Queue.
type Publisher interface {
	PublishJSON(ctx context.Context, data interface{}, metadata map[string]string) (string, error)
}

// expressTemplates are time-sensitive and skip the normal queue.
var expressTemplates = map[model.ReminderType]bool{
	model.ReminderInitialContact:      true,
	model.ReminderAppointmentReminder: true,
}

type MessageService struct {
	messageRepo   MessageRepository
	queue         Publisher
	expressQueue  Publisher
	maxContentLen int
}

func NewMessageService(messageRepo MessageRepository, queue Publisher, expressQueue Publisher) *MessageService {
	return &MessageService{
		messageRepo:   messageRepo,
		queue:         queue,
		expressQueue:  expressQueue,
		maxContentLen: DefaultMaxContentLen,
	}
}

// Create stores the message and queues it for the dispatcher. A message that
// cannot be queued is marked failed.
func (s *MessageService) Create(ctx context.Context, p model.MessageCreateRequest) (*model.Message, error) {
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	mobile := strings.Join(strings.Fields(p.Mobile), "")
	if !lead.ValidatePhone(mobile) {
		return nil, invalid("invalid mobile number %q", p.Mobile)
	}

	content := strings.TrimSpace(p.Content)
	if content == "" {
		return nil, invalid("message content cannot be empty")
	}
	if s.maxContentLen > 0 && utf8.RuneCountInString(content) > s.maxContentLen {
		return nil, invalid("message content exceeds %d characters", s.maxContentLen)
	}

	channel := p.Channel
	if channel == "" {
		channel = model.ChannelSMS
	}
	priority := p.Priority
	if priority == "" {
		priority = model.PriorityNormal
		if expressTemplates[p.Template] {
			priority = model.PriorityExpress
		}
	}

	created, err := s.messageRepo.Create(ctx, &model.Message{
		ReminderID: p.ReminderID,
		CustomerID: p.CustomerID,
		Mobile:     mobile,
		Channel:    channel,
		Template:   p.Template,
		Content:    content,
		Priority:   priority,
		Status:     model.MessageStatusQueued,
	})
	if err != nil {
		return nil, fmt.Errorf("create message: %w", err)
	}

	q := s.queue
	if created.Priority == model.PriorityExpress {
		q = s.expressQueue
	}
	meta := map[string]string{"message_id": created.ID, "template": string(created.Template)}
	if _, err := q.PublishJSON(ctx, created, meta); err != nil {
		if uerr := s.messageRepo.UpdateStatus(ctx, created.ID, model.MessageStatusFailed); uerr != nil {
			logger.Error("failed to mark unqueued message", "message_id", created.ID, "error", uerr)
		}
		return nil, fmt.Errorf("queue message: %w", err)
	}

	logger.Info("message queued", "message_id", created.ID, "priority", created.Priority, "template", string(created.Template))
	return created, nil
}

func (s *MessageService) List(ctx context.Context, f model.MessageFilter) ([]*model.Message, int64, error) {
	return s.messageRepo.List(ctx, f)
}
