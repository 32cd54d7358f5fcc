package notify

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"time"

	"gopkg.in/gomail.v2"

	"github.com/thammystudio/studio-crm/internal/lead"
	"github.com/thammystudio/studio-crm/internal/model"
	"github.com/thammystudio/studio-crm/pkg/logger"
)

// ErrNoRecipients is returned by NewMailer when no staff address is configured.
var ErrNoRecipients = errors.New("notify: no staff recipients")

// Dialer delivers composed messages. *gomail.Dialer satisfies it.
type Dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

type MailerConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	To       []string
	// Location renders timestamps for staff; defaults to Asia/Ho_Chi_Minh.
	Location *time.Location
}

// Mailer e-mails staff about new leads.
type Mailer struct {
	dialer Dialer
	from   string
	to     []string
	loc    *time.Location
}

func NewMailer(cfg MailerConfig) (*Mailer, error) {
	if len(cfg.To) == 0 {
		return nil, ErrNoRecipients
	}
	if cfg.From == "" {
		cfg.From = cfg.User
	}
	return newMailer(gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password), cfg), nil
}

func newMailer(d Dialer, cfg MailerConfig) *Mailer {
	loc := cfg.Location
	if loc == nil {
		var err error
		if loc, err = time.LoadLocation("Asia/Ho_Chi_Minh"); err != nil {
			loc = time.FixedZone("ICT", 7*60*60)
		}
	}
	return &Mailer{dialer: d, from: cfg.From, to: cfg.To, loc: loc}
}

var leadTemplate = template.Must(template.New("lead").Parse(`<h2>Khách hàng mới: {{.Name}}</h2>
<table>
<tr><td>Số điện thoại</td><td><a href="{{.TelURL}}">{{.Phone}}</a> · <a href="{{.ZaloURL}}">Zalo</a></td></tr>
{{if .Email}}<tr><td>Email</td><td>{{.Email}}</td></tr>
{{end}}<tr><td>Dịch vụ quan tâm</td><td>{{.Service}}</td></tr>
<tr><td>Nguồn</td><td>{{.Source}}</td></tr>
<tr><td>Mức ưu tiên</td><td>{{.Priority}} ({{.Score}} điểm)</td></tr>
<tr><td>Thời gian</td><td>{{.CreatedAt}}</td></tr>
</table>
{{if .Notes}}<p>{{.Notes}}</p>
{{end}}`))

type leadView struct {
	Name, Phone, Email, Service, Source, Priority, Notes string
	Score                                                int
	CreatedAt                                            string
	TelURL, ZaloURL                                      template.URL
}

// NotifyNewLead sends one message to every staff recipient.
func (m *Mailer) NotifyNewLead(ctx context.Context, l *model.Lead) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg, err := m.compose(l)
	if err != nil {
		return err
	}
	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("send lead notification: %w", err)
	}
	logger.Info("staff notified", "lead_id", l.ID, "recipients", len(m.to))
	return nil
}

func (m *Mailer) compose(l *model.Lead) (*gomail.Message, error) {
	body, err := m.renderLead(l)
	if err != nil {
		return nil, err
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", m.to...)
	msg.SetHeader("Subject", subject(l))
	msg.SetBody("text/html", body)
	return msg, nil
}

func (m *Mailer) renderLead(l *model.Lead) (string, error) {
	service := "Chưa chọn"
	if l.ServiceInterest != "" {
		service = lead.ServiceName(l.ServiceInterest)
	}
	view := leadView{
		Name:      l.Name,
		Phone:     lead.FormatPhone(l.Phone),
		Email:     l.Email,
		Service:   service,
		Source:    string(l.Source),
		Priority:  string(l.Priority),
		Notes:     l.Notes,
		Score:     l.Score,
		CreatedAt: l.CreatedAt.In(m.loc).Format("15:04 02/01/2006"),
		TelURL:    template.URL(lead.TelURL(l.Phone)),
		ZaloURL:   template.URL(lead.ZaloURL(l.Phone, "")),
	}

	var body bytes.Buffer
	if err := leadTemplate.Execute(&body, view); err != nil {
		return "", fmt.Errorf("render lead notification: %w", err)
	}
	return body.String(), nil
}

func subject(l *model.Lead) string {
	if l.Priority == model.LeadPriorityHigh || l.Priority == model.LeadPriorityUrgent {
		return fmt.Sprintf("[Ưu tiên cao] Khách hàng mới: %s", l.Name)
	}
	return fmt.Sprintf("Khách hàng mới: %s", l.Name)
}
