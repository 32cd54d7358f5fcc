package lead

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thammystudio/studio-crm/internal/model"
)

func completeInput() model.LeadInput {
	return model.LeadInput{
		Name:            "Nguyễn Thị Lan",
		Phone:           "0901234567",
		Email:           "lan@example.com",
		ServiceInterest: "tri-nam",
		Source:          model.LeadSourceReferral,
		Notes:           "Muốn tư vấn trị nám vào cuối tuần",
	}
}

func TestScore_CompleteReferral(t *testing.T) {
	in := completeInput()

	assert.Equal(t, 100, Score(in))
	assert.Equal(t, model.LeadPriorityHigh, Priority(in))
}

func TestScore_NameOnly(t *testing.T) {
	in := model.LeadInput{Name: "Lan"}

	assert.Equal(t, 10, Score(in))
	assert.Equal(t, model.LeadPriorityLow, Priority(in))
}

func TestScore_Criteria(t *testing.T) {
	tests := []struct {
		name string
		in   model.LeadInput
		want int
	}{
		{"empty", model.LeadInput{}, 0},
		{"valid phone", model.LeadInput{Phone: "+84901234567"}, 20},
		{"invalid phone", model.LeadInput{Phone: "12345"}, 0},
		{"email", model.LeadInput{Email: "a@b.vn"}, 15},
		{"service", model.LeadInput{ServiceInterest: "giam-mo"}, 25},
		{"catch-all service", model.LeadInput{ServiceInterest: model.ServiceOther}, 0},
		{"short name", model.LeadInput{Name: "An"}, 0},
		{"name counted in characters", model.LeadInput{Name: "Ân"}, 0},
		{"short notes", model.LeadInput{Notes: "gọi tôi"}, 0},
		{"notes", model.LeadInput{Notes: "gọi lại giúp"}, 15},
		{"landing page", model.LeadInput{Source: model.LeadSourceLandingPage}, 10},
		{"website", model.LeadInput{Source: model.LeadSourceWebsite}, 5},
		{"zalo", model.LeadInput{Source: model.LeadSourceZalo}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Score(tt.in))
		})
	}
}

func TestScore_Bounds(t *testing.T) {
	inputs := []model.LeadInput{
		{},
		completeInput(),
		{Name: "x", Phone: "0", Source: model.LeadSourceWalkIn},
	}
	for _, in := range inputs {
		s := Score(in)
		assert.GreaterOrEqual(t, s, 0)
		assert.LessOrEqual(t, s, 100)
	}
}

func TestPriority(t *testing.T) {
	assert.Equal(t, model.LeadPriorityHigh, Priority(model.LeadInput{ServiceInterest: "tri-mun"}))
	assert.Equal(t, model.LeadPriorityMedium, Priority(model.LeadInput{ServiceInterest: model.ServiceOther, Phone: "0901234567"}))
	assert.Equal(t, model.LeadPriorityLow, Priority(model.LeadInput{ServiceInterest: model.ServiceOther}))
}

func TestBuildRecord(t *testing.T) {
	now := time.Date(2026, 3, 8, 9, 30, 0, 0, time.UTC)
	in := completeInput()

	l := BuildRecord(in, model.LeadSourceLandingPage, now)
	require.NotNil(t, l)

	assert.Empty(t, l.ID)
	assert.Equal(t, model.LeadStatusNew, l.Status)
	assert.Equal(t, model.LeadSourceLandingPage, l.Source)
	assert.Equal(t, model.LeadPriorityHigh, l.Priority)
	assert.Equal(t, 95, l.Score)
	assert.Equal(t, now, l.CreatedAt)
	assert.Equal(t, now, l.UpdatedAt)
	assert.Equal(t, in.Phone, l.Phone)
}

func TestWarnings(t *testing.T) {
	assert.Empty(t, Warnings(completeInput()))
	assert.Len(t, Warnings(model.LeadInput{Name: "Lan"}), 2)
}
