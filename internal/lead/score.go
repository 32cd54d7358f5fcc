package lead

import (
	"time"
	"unicode/utf8"

	"github.com/thammystudio/studio-crm/internal/model"
)

const maxScore = 100

// Score rates how complete and actionable a submission is, from 0 to 100.
// Every criterion is independent; a failing criterion simply earns nothing.
func Score(in model.LeadInput) int {
	score := 0

	if ValidatePhone(in.Phone) {
		score += 20
	}
	if in.Email != "" {
		score += 15
	}
	if hasServiceInterest(in) {
		score += 25
	}
	if utf8.RuneCountInString(in.Name) >= 3 {
		score += 10
	}
	if utf8.RuneCountInString(in.Notes) >= 10 {
		score += 15
	}

	switch in.Source {
	case model.LeadSourceReferral:
		score += 15
	case model.LeadSourceLandingPage:
		score += 10
	case model.LeadSourceWebsite:
		score += 5
	}

	return min(score, maxScore)
}

// Priority is the coarse readiness tier of a lead. It never returns urgent;
// that tier is reserved for manual escalation.
func Priority(in model.LeadInput) model.LeadPriority {
	if hasServiceInterest(in) {
		return model.LeadPriorityHigh
	}
	if ValidatePhone(in.Phone) {
		return model.LeadPriorityMedium
	}
	return model.LeadPriorityLow
}

// BuildRecord fills the business fields of a new lead. The caller assigns the id.
func BuildRecord(in model.LeadInput, source model.LeadSource, now time.Time) *model.Lead {
	in.Source = source
	return &model.Lead{
		Name:            in.Name,
		Phone:           in.Phone,
		Email:           in.Email,
		ServiceInterest: in.ServiceInterest,
		Source:          source,
		Notes:           in.Notes,
		Status:          model.LeadStatusNew,
		Priority:        Priority(in),
		Score:           Score(in),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// Warnings lists the soft validation problems of a submission. None of them
// block intake; they only cost score.
func Warnings(in model.LeadInput) []string {
	var w []string
	if !ValidatePhone(in.Phone) {
		w = append(w, "phone is not a valid Vietnamese mobile number")
	}
	if in.Email == "" {
		w = append(w, "email is missing")
	}
	return w
}

func hasServiceInterest(in model.LeadInput) bool {
	return in.ServiceInterest != "" && in.ServiceInterest != model.ServiceOther
}
