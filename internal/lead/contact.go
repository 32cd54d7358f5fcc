package lead

import (
	"net/url"
	"strings"
)

// ServiceOption is one entry of the contact form's service selector.
type ServiceOption struct {
	Slug string `json:"slug"`
	Name string `json:"name"`
}

var serviceOptions = []ServiceOption{
	{Slug: "tri-nam", Name: "Trị nám da"},
	{Slug: "tai-tao", Name: "Tái tạo da"},
	{Slug: "giam-mo", Name: "Giảm mỡ"},
	{Slug: "nang-co", Name: "Nâng cơ da"},
	{Slug: "cham-soc", Name: "Chăm sóc da"},
	{Slug: "tri-mun", Name: "Trị mụn"},
	{Slug: "phun-xam", Name: "Phun xăm"},
	{Slug: "khac", Name: "Dịch vụ khác"},
}

// ServiceOptions returns a copy of the service catalogue.
func ServiceOptions() []ServiceOption {
	out := make([]ServiceOption, len(serviceOptions))
	copy(out, serviceOptions)
	return out
}

// ServiceName returns the display name for slug, or slug itself if unknown.
func ServiceName(slug string) string {
	for _, o := range serviceOptions {
		if o.Slug == slug {
			return o.Name
		}
	}
	return slug
}

func ZaloURL(phone, message string) string {
	base := "https://zalo.me/" + phone
	if message == "" {
		return base
	}
	return base + "?text=" + escapeComponent(message)
}

func SMSURL(phone, message string) string {
	base := "sms:" + onlyDigits(phone)
	if message == "" {
		return base
	}
	return base + "?body=" + escapeComponent(message)
}

func TelURL(phone string) string {
	digits := onlyDigits(phone)
	if digits == "" {
		return ""
	}
	if strings.HasPrefix(strings.TrimSpace(phone), "+") {
		return "tel:+" + digits
	}
	return "tel:" + digits
}

// escapeComponent percent-encodes s the way browsers encode URI components,
// spaces as %20 rather than "+".
func escapeComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
