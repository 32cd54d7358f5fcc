package fixtures

import "github.com/thammystudio/studio-crm/internal/model"

// Contact-form submissions covering the scoring bands.
var (
	// HotLead has every optional field and an urgent note.
	HotLead = model.LeadInput{
		Name:            "Nguyễn Thị Lan",
		Phone:           "0901 234 567",
		Email:           "Lan.Nguyen@Example.com",
		ServiceInterest: "tri-nam",
		Source:          model.LeadSourceReferral,
		Notes:           "Muốn đặt lịch gấp trong tuần này, đã tham khảo giá",
	}

	// WarmLead is a website submission without e-mail.
	WarmLead = model.LeadInput{
		Name:            "Trần Thu Hoa",
		Phone:           "0387654321",
		ServiceInterest: "cham-soc",
	}

	// ColdLead carries an unreachable number; it is stored but not messaged.
	ColdLead = model.LeadInput{
		Name:  "Lê Mai",
		Phone: "12345",
	}

	// ScriptLead carries markup that must be stripped before storage.
	ScriptLead = model.LeadInput{
		Name:  `<script>alert(1)</script>Phạm Ngọc`,
		Phone: "+84912345678",
		Notes: `<img src=x onerror=alert(1)>Gọi buổi tối`,
	}
)
