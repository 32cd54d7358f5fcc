package reminder

import (
	"strings"
	"time"

	"github.com/thammystudio/studio-crm/internal/model"
)

const defaultIntervalHours = 24

var intervalHours = map[model.ReminderType]int{
	model.ReminderInitialContact:      1,
	model.ReminderFollowUp:            24,
	model.ReminderAppointmentReminder: 24,
	model.ReminderPostService:         72,
	model.ReminderBirthday:            8760,
	model.ReminderPromotion:           168,
	model.ReminderReEngagement:        720,
}

// StaffTemplate is the title and instruction shown to staff for a reminder type.
type StaffTemplate struct {
	Title   string `json:"title"`
	Message string `json:"message"`
}

var staffTemplates = map[model.ReminderType]StaffTemplate{
	model.ReminderInitialContact:      {"Liên hệ lần đầu", "Gọi liên hệ với khách hàng để tư vấn dịch vụ"},
	model.ReminderFollowUp:            {"Theo dõi khách hàng", "Gọi lại khách hàng đã tư vấn trước đó"},
	model.ReminderAppointmentReminder: {"Nhắc lịch hẹn", "Nhắc khách hàng về lịch hẹn sắp tới"},
	model.ReminderPostService:         {"Chăm sóc sau điều trị", "Hỏi thăm khách hàng sau khi sử dụng dịch vụ"},
	model.ReminderBirthday:            {"Chúc mừng sinh nhật", "Gửi lời chúc và ưu đãi cho khách hàng"},
	model.ReminderPromotion:           {"Thông báo khuyến mãi", "Thông báo chương trình khuyến mãi mới"},
	model.ReminderReEngagement:        {"Kích hoạt lại", "Liên hệ khách hàng đã lâu không quay lại"},
}

// Customer-facing SMS/Zalo texts. Placeholders: {name}, {time}, {promotion}, {date}.
var messageTemplates = map[model.ReminderType]string{
	model.ReminderInitialContact:      "Chào {name}, cảm ơn bạn đã quan tâm đến Thẩm Mỹ Studio. Chuyên gia của chúng tôi sẽ gọi lại trong 5 phút.",
	model.ReminderAppointmentReminder: "Chào {name}, nhớ bạn có lịch hẹn tại Thẩm Mỹ Studio vào {time}. Vui lòng xác nhận hoặc gọi 1900xxxx để đổi lịch.",
	model.ReminderPostService:         "Chào {name}, Thẩm Mỹ Studio mong bạn đang có những kết quả tốt. Nếu cần hỗ trợ, vui lòng liên hệ 1900xxxx.",
	model.ReminderPromotion:           "Chào {name}, Thẩm Mỹ Studio có ưu đãi đặc biệt {promotion}. Áp dụng đến {date}. Chi tiết: 1900xxxx",
	model.ReminderBirthday:            "Chúc mừng sinh nhật {name}! Thẩm Mỹ Studio tặng bạn mã giảm 20% dịch vụ. Áp dụng trong tháng này. LH: 1900xxxx",
}

// Interval returns the delay before a reminder of type t is due. Unknown types
// use 24 hours.
func Interval(t model.ReminderType) time.Duration {
	h, ok := intervalHours[t]
	if !ok {
		h = defaultIntervalHours
	}
	return time.Duration(h) * time.Hour
}

// NextFollowUp returns from plus the interval of t.
func NextFollowUp(t model.ReminderType, from time.Time) time.Time {
	return from.Add(Interval(t))
}

// Template returns the staff-facing template of t.
func Template(t model.ReminderType) (StaffTemplate, bool) {
	tpl, ok := staffTemplates[t]
	return tpl, ok
}

// MessageTemplate returns the raw customer message of t, if the type has one.
func MessageTemplate(t model.ReminderType) (string, bool) {
	tpl, ok := messageTemplates[t]
	return tpl, ok
}

// Render substitutes {key} placeholders in tpl. Unknown placeholders are left in place.
func Render(tpl string, vars map[string]string) string {
	if len(vars) == 0 {
		return tpl
	}
	pairs := make([]string, 0, len(vars)*2)
	for k, v := range vars {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(tpl)
}
