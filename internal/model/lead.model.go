package model

import (
	"errors"
	"time"
)

type LeadStatus string

const (
	LeadStatusNew       LeadStatus = "new"
	LeadStatusContacted LeadStatus = "contacted"
	LeadStatusQualified LeadStatus = "qualified"
	LeadStatusConverted LeadStatus = "converted"
	LeadStatusLost      LeadStatus = "lost"
)

func (s LeadStatus) Valid() bool {
	switch s {
	case LeadStatusNew, LeadStatusContacted, LeadStatusQualified, LeadStatusConverted, LeadStatusLost:
		return true
	}
	return false
}

type LeadPriority string

const (
	LeadPriorityLow    LeadPriority = "low"
	LeadPriorityMedium LeadPriority = "medium"
	LeadPriorityHigh   LeadPriority = "high"
	LeadPriorityUrgent LeadPriority = "urgent"
)

func (p LeadPriority) Valid() bool {
	switch p {
	case LeadPriorityLow, LeadPriorityMedium, LeadPriorityHigh, LeadPriorityUrgent:
		return true
	}
	return false
}

// LeadSource is the channel a lead came in through.
type LeadSource string

const (
	LeadSourceWebsite     LeadSource = "website"
	LeadSourceLandingPage LeadSource = "landing_page"
	LeadSourcePopup       LeadSource = "popup"
	LeadSourcePhone       LeadSource = "phone"
	LeadSourceZalo        LeadSource = "zalo"
	LeadSourceFacebook    LeadSource = "facebook"
	LeadSourceReferral    LeadSource = "referral"
	LeadSourceWalkIn      LeadSource = "walk_in"
)

func (s LeadSource) Valid() bool {
	switch s {
	case LeadSourceWebsite, LeadSourceLandingPage, LeadSourcePopup, LeadSourcePhone,
		LeadSourceZalo, LeadSourceFacebook, LeadSourceReferral, LeadSourceWalkIn:
		return true
	}
	return false
}

// ServiceOther is the catch-all "other service" slug of the contact form.
const ServiceOther = "khac"

var ErrLeadNameRequired = errors.New("name is required")

// LeadInput is the raw contact-form submission.
type LeadInput struct {
	Name            string     `json:"name"`
	Phone           string     `json:"phone"`
	Email           string     `json:"email,omitempty"`
	ServiceInterest string     `json:"service_interest,omitempty"`
	Source          LeadSource `json:"source,omitempty"`
	Notes           string     `json:"notes,omitempty"`
}

type Lead struct {
	ID              string       `json:"id"`
	Name            string       `json:"name"`
	Phone           string       `json:"phone"`
	Email           string       `json:"email,omitempty"`
	ServiceInterest string       `json:"service_interest,omitempty"`
	Source          LeadSource   `json:"source"`
	Notes           string       `json:"notes,omitempty"`
	Status          LeadStatus   `json:"status"`
	Priority        LeadPriority `json:"priority"`
	Score           int          `json:"score"`
	AssignedTo      string       `json:"assigned_to,omitempty"`
	LastContactAt   *time.Time   `json:"last_contact_at,omitempty"`
	FollowUpAt      *time.Time   `json:"follow_up_at,omitempty"`
	CreatedAt       time.Time    `json:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at"`
}

// Input returns the form fields the lead was scored from.
func (l *Lead) Input() LeadInput {
	return LeadInput{
		Name:            l.Name,
		Phone:           l.Phone,
		Email:           l.Email,
		ServiceInterest: l.ServiceInterest,
		Source:          l.Source,
		Notes:           l.Notes,
	}
}

// LeadFilter controls List queries. [From, To) bounds created_at.
type LeadFilter struct {
	Statuses []LeadStatus
	Source   *LeadSource
	Priority *LeadPriority
	Search   string // matches name or phone
	From     *time.Time
	To       *time.Time
	Limit    int
	Offset   int
	Desc     bool
}

// LeadSubmission is the result of accepting a contact-form submission.
type LeadSubmission struct {
	Lead      *Lead      `json:"lead"`
	Reminders []Reminder `json:"reminders"`
	Warnings  []string   `json:"warnings,omitempty"`
}
