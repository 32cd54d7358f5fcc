package notify

import (
	"bytes"
	"context"
	"errors"
	"mime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"

	"github.com/thammystudio/studio-crm/internal/model"
)

type fakeDialer struct {
	sent []*gomail.Message
	err  error
}

func (f *fakeDialer) DialAndSend(m ...*gomail.Message) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, m...)
	return nil
}

func testLead() *model.Lead {
	return &model.Lead{
		ID:              "lead-1",
		Name:            "Nguyễn Thị <b>Lan</b>",
		Phone:           "0901234567",
		ServiceInterest: "tri-nam",
		Source:          model.LeadSourceWebsite,
		Priority:        model.LeadPriorityHigh,
		Score:           85,
		Notes:           "Gọi sau 5h chiều",
		CreatedAt:       time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC),
	}
}

// decodedSubject undoes the RFC 2047 encoding gomail applies to non-ASCII headers.
func decodedSubject(t *testing.T, msg *gomail.Message) string {
	t.Helper()
	h := msg.GetHeader("Subject")
	require.Len(t, h, 1)
	s, err := new(mime.WordDecoder).DecodeHeader(h[0])
	require.NoError(t, err)
	return s
}

func TestNewMailer_RequiresRecipients(t *testing.T) {
	_, err := NewMailer(MailerConfig{Host: "smtp.example.com", Port: 587})
	assert.ErrorIs(t, err, ErrNoRecipients)

	m, err := NewMailer(MailerConfig{Host: "smtp.example.com", Port: 587, User: "crm@example.com", To: []string{"staff@example.com"}})
	require.NoError(t, err)
	assert.Equal(t, "crm@example.com", m.from)
}

func TestNotifyNewLead(t *testing.T) {
	d := &fakeDialer{}
	m := newMailer(d, MailerConfig{From: "crm@example.com", To: []string{"a@example.com", "b@example.com"}, Location: time.FixedZone("ICT", 7*3600)})

	require.NoError(t, m.NotifyNewLead(context.Background(), testLead()))
	require.Len(t, d.sent, 1)

	msg := d.sent[0]
	assert.Equal(t, []string{"a@example.com", "b@example.com"}, msg.GetHeader("To"))
	assert.Equal(t, "[Ưu tiên cao] Khách hàng mới: Nguyễn Thị <b>Lan</b>", decodedSubject(t, msg))

	var raw bytes.Buffer
	_, err := msg.WriteTo(&raw)
	require.NoError(t, err)

	body, err := m.renderLead(testLead())
	require.NoError(t, err)
	assert.Contains(t, body, "0901 234 567")
	assert.Contains(t, body, "Trị nám da")
	assert.Contains(t, body, "15:00 01/04/2026")
	assert.Contains(t, body, "tel:0901234567")
	assert.NotContains(t, body, "<b>Lan</b>", "lead fields are escaped")
}

func TestNotifyNewLead_NormalPriority(t *testing.T) {
	d := &fakeDialer{}
	m := newMailer(d, MailerConfig{From: "crm@example.com", To: []string{"a@example.com"}})

	l := testLead()
	l.Priority = model.LeadPriorityMedium
	l.ServiceInterest = ""
	require.NoError(t, m.NotifyNewLead(context.Background(), l))
	assert.Equal(t, "Khách hàng mới: Nguyễn Thị <b>Lan</b>", decodedSubject(t, d.sent[0]))
}

func TestNotifyNewLead_SendError(t *testing.T) {
	d := &fakeDialer{err: errors.New("535 auth failed")}
	m := newMailer(d, MailerConfig{To: []string{"a@example.com"}})

	err := m.NotifyNewLead(context.Background(), testLead())
	assert.ErrorContains(t, err, "535 auth failed")
}

func TestNotifyNewLead_CancelledContext(t *testing.T) {
	d := &fakeDialer{}
	m := newMailer(d, MailerConfig{To: []string{"a@example.com"}})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, m.NotifyNewLead(ctx, testLead()), context.Canceled)
	assert.Empty(t, d.sent)
}
