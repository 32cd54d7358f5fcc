package processor

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/thammystudio/studio-crm/pkg/logger"
	"github.com/thammystudio/studio-crm/pkg/redis"
)

var (
	ErrAlreadyProcessed   = errors.New("message already processed")
	ErrLockAcquireFailed  = errors.New("failed to acquire processing lock")
	ErrMaxRetriesExceeded = errors.New("maximum retries exceeded")
)

type IdempotencyConfig struct {
	LockTTL            time.Duration
	ProcessedTTL       time.Duration
	MaxRetries         int
	RetryKeyPrefix     string
	LockKeyPrefix      string
	ProcessedKeyPrefix string
}

func DefaultIdempotencyConfig() IdempotencyConfig {
	return IdempotencyConfig{
		LockTTL:            30 * time.Second,
		ProcessedTTL:       24 * time.Hour,
		MaxRetries:         3,
		RetryKeyPrefix:     "msg:retry:",
		LockKeyPrefix:      "msg:lock:",
		ProcessedKeyPrefix: "msg:processed:",
	}
}

// IdempotencyService keeps three keys per message: a short lock held while
// sending, a retry counter and a long-lived processed marker.
type IdempotencyService struct {
	redis  redis.RedisAdapter
	config IdempotencyConfig
}

func NewIdempotencyService(redisAdapter redis.RedisAdapter, config IdempotencyConfig) *IdempotencyService {
	return &IdempotencyService{
		redis:  redisAdapter,
		config: config,
	}
}

type ProcessingContext struct {
	MessageID    string
	RetryCount   int
	IsRetry      bool
	token        []byte
	lockAcquired bool
}

func (s *IdempotencyService) AcquireProcessingLock(ctx context.Context, messageID string) (*ProcessingContext, error) {
	processed, err := s.redis.Exists(ctx, s.config.ProcessedKeyPrefix+messageID)
	if err != nil {
		// a duplicate send is preferred over a stuck message
		logger.Warn("failed to check processed marker", "message_id", messageID, "error", err)
	} else if processed {
		return nil, ErrAlreadyProcessed
	}

	retryCount, err := s.GetRetryCount(ctx, messageID)
	if err != nil {
		logger.Warn("failed to read retry counter", "message_id", messageID, "error", err)
	}
	if retryCount >= s.config.MaxRetries {
		return nil, fmt.Errorf("%w: message_id=%s, retries=%d", ErrMaxRetriesExceeded, messageID, retryCount)
	}

	token := []byte(uuid.NewString())
	acquired, err := s.redis.SetNX(ctx, s.config.LockKeyPrefix+messageID, token, s.config.LockTTL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLockAcquireFailed, err)
	}
	if !acquired {
		return nil, ErrLockAcquireFailed
	}

	logger.Debug("processing lock acquired", "message_id", messageID, "retry_count", retryCount)

	return &ProcessingContext{
		MessageID:    messageID,
		RetryCount:   retryCount,
		IsRetry:      retryCount > 0,
		token:        token,
		lockAcquired: true,
	}, nil
}

// MarkSuccess sets the processed marker, then drops the lock and counter.
func (s *IdempotencyService) MarkSuccess(ctx context.Context, pc *ProcessingContext) error {
	if err := s.redis.Set(ctx, s.config.ProcessedKeyPrefix+pc.MessageID, []byte("1"), s.config.ProcessedTTL); err != nil {
		return fmt.Errorf("failed to mark as processed: %w", err)
	}

	if err := s.redis.Del(ctx, s.config.RetryKeyPrefix+pc.MessageID); err != nil {
		logger.Warn("failed to clean retry counter", "message_id", pc.MessageID, "error", err)
	}
	return s.ReleaseLock(ctx, pc)
}

func (s *IdempotencyService) MarkFailure(ctx context.Context, pc *ProcessingContext, reason error) error {
	count, err := s.redis.Incr(ctx, s.config.RetryKeyPrefix+pc.MessageID, s.config.ProcessedTTL)
	if err != nil {
		logger.Error("failed to increment retry counter", "message_id", pc.MessageID, "error", err)
	}

	logger.Warn("message processing failed",
		"message_id", pc.MessageID,
		"retry_count", count,
		"max_retries", s.config.MaxRetries,
		"reason", reason)

	return s.ReleaseLock(ctx, pc)
}

// ReleaseLock deletes the lock only while it still holds this attempt's token,
// so an expired lock taken over by another consumer is left alone.
func (s *IdempotencyService) ReleaseLock(ctx context.Context, pc *ProcessingContext) error {
	if pc == nil || !pc.lockAcquired {
		return nil
	}
	if _, err := s.redis.DelIfEqual(ctx, s.config.LockKeyPrefix+pc.MessageID, pc.token); err != nil {
		logger.Warn("failed to release lock", "message_id", pc.MessageID, "error", err)
		return err
	}
	pc.lockAcquired = false
	return nil
}

func (s *IdempotencyService) GetRetryCount(ctx context.Context, messageID string) (int, error) {
	raw, err := s.redis.Get(ctx, s.config.RetryKeyPrefix+messageID)
	if err != nil {
		if errors.Is(err, redis.NilError) {
			return 0, nil
		}
		return 0, err
	}
	return strconv.Atoi(string(raw))
}

func (s *IdempotencyService) IsProcessed(ctx context.Context, messageID string) (bool, error) {
	return s.redis.Exists(ctx, s.config.ProcessedKeyPrefix+messageID)
}
