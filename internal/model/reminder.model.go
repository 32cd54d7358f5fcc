package model

import "time"

type ReminderType string

const (
	ReminderInitialContact      ReminderType = "initial_contact"
	ReminderFollowUp            ReminderType = "follow_up"
	ReminderAppointmentReminder ReminderType = "appointment_reminder"
	ReminderPostService         ReminderType = "post_service"
	ReminderBirthday            ReminderType = "birthday"
	ReminderPromotion           ReminderType = "promotion"
	ReminderReEngagement        ReminderType = "re_engagement"
)

func (t ReminderType) Valid() bool {
	switch t {
	case ReminderInitialContact, ReminderFollowUp, ReminderAppointmentReminder, ReminderPostService,
		ReminderBirthday, ReminderPromotion, ReminderReEngagement:
		return true
	}
	return false
}

type ReminderStatus string

const (
	ReminderStatusPending   ReminderStatus = "pending"
	ReminderStatusCompleted ReminderStatus = "completed"
	ReminderStatusCancelled ReminderStatus = "cancelled"
	ReminderStatusSnoozed   ReminderStatus = "snoozed"
)

func (s ReminderStatus) Valid() bool {
	switch s {
	case ReminderStatusPending, ReminderStatusCompleted, ReminderStatusCancelled, ReminderStatusSnoozed:
		return true
	}
	return false
}

// Urgency is the display classification of a reminder; it is not a lead priority.
type Urgency string

const (
	UrgencyLow    Urgency = "low"
	UrgencyMedium Urgency = "medium"
	UrgencyHigh   Urgency = "high"
	UrgencyUrgent Urgency = "urgent"
)

// Reminder is a scheduled follow-up task tied to one customer. Customer name and
// phone are denormalized for display.
type Reminder struct {
	ID            string         `json:"id"`
	CustomerID    string         `json:"customer_id"`
	CustomerName  string         `json:"customer_name"`
	CustomerPhone string         `json:"customer_phone"`
	Type          ReminderType   `json:"type"`
	Status        ReminderStatus `json:"status"`
	ScheduledAt   time.Time      `json:"scheduled_at"`
	Notes         string         `json:"notes,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	CompletedAt   *time.Time     `json:"completed_at,omitempty"`
	SnoozedUntil  *time.Time     `json:"snoozed_until,omitempty"`
	SnoozeCount   int            `json:"snooze_count"`
}

// ReminderFilter controls List queries. [DueFrom, DueTo) bounds scheduled_at.
type ReminderFilter struct {
	CustomerID *string
	Statuses   []ReminderStatus
	Types      []ReminderType
	DueFrom    *time.Time
	DueTo      *time.Time
	Limit      int
	Offset     int
	Desc       bool
}

type ReminderCreateRequest struct {
	CustomerID    string
	CustomerName  string
	CustomerPhone string
	Type          ReminderType
	ScheduledAt   *time.Time
	Notes         string
}

// ReminderView is a reminder decorated for the dashboard.
type ReminderView struct {
	Reminder
	Urgency        Urgency   `json:"urgency"`
	Overdue        bool      `json:"overdue"`
	DueAt          time.Time `json:"due_at"`
	RelativeTime   string    `json:"relative_time"`
	FormattedPhone string    `json:"formatted_phone"`
	Title          string    `json:"title"`
	ZaloURL        string    `json:"zalo_url"`
	SMSURL         string    `json:"sms_url"`
	TelURL         string    `json:"tel_url"`
}

type ReminderSummary struct {
	Overdue   int                    `json:"overdue"`
	Upcoming  int                    `json:"upcoming"`
	ByStatus  map[ReminderStatus]int `json:"by_status"`
	ByUrgency map[Urgency]int        `json:"by_urgency"`
}

type ReminderDashboard struct {
	Summary      ReminderSummary `json:"summary"`
	WindowHours  int             `json:"window_hours"`
	OverdueItems []*ReminderView `json:"overdue_items"`
	Items        []*ReminderView `json:"items"`
}
