package services

import (
	"errors"
	"fmt"

	"github.com/thammystudio/studio-crm/internal/reminder"
	"github.com/thammystudio/studio-crm/internal/repository"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("resource was modified concurrently")
	// ErrReminderClosed is returned when a completed or cancelled reminder is acted on.
	ErrReminderClosed = reminder.ErrReminderClosed
)

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// mapRepoErr translates repository sentinels into service sentinels.
func mapRepoErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrLeadNotFound),
		errors.Is(err, repository.ErrReminderNotFound),
		errors.Is(err, repository.ErrNotFound):
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	case errors.Is(err, repository.ErrConcurrentUpdate):
		return fmt.Errorf("%w: %v", ErrConflict, err)
	}
	return err
}
