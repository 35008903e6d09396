package notify

import (
	"embed"
	"fmt"
	"html/template"

	"github.com/sysu-ecnc-dev/roster-board/internal/domain"
	"github.com/wneessen/go-mail"
)

//go:embed templates/*.html
var templates embed.FS

var headlines = map[string]struct {
	subject  string
	headline string
}{
	domain.ScheduleEventPublished: {"排班板 - 新班表已发布", "新的班表已经发布，请及时查看。"},
	domain.ScheduleEventUpdated:   {"排班板 - 班表已更新", "当前班表已被修改，请及时查看。"},
}

// Notifier 把班表事件转换成发给固定收件人的邮件
type Notifier struct {
	from       string
	recipients []string
	tmpl       *template.Template
}

func New(from string, recipients []string) (*Notifier, error) {
	if len(recipients) == 0 {
		return nil, fmt.Errorf("没有配置邮件收件人")
	}

	tmpl, err := template.ParseFS(templates, "templates/schedule_event.html")
	if err != nil {
		return nil, err
	}

	return &Notifier{from: from, recipients: recipients, tmpl: tmpl}, nil
}

type eventData struct {
	Headline    string
	ScheduleID  string
	Actor       string
	Days        int
	Assignments int
	OccurredAt  string
}

func (n *Notifier) Message(ev domain.ScheduleEvent) (*mail.Msg, error) {
	h, ok := headlines[ev.Type]
	if !ok {
		return nil, fmt.Errorf("不支持的事件类型 %q", ev.Type)
	}

	msg := mail.NewMsg()
	if err := msg.From(n.from); err != nil {
		return nil, fmt.Errorf("无法设置邮件发件人: %w", err)
	}
	if err := msg.To(n.recipients...); err != nil {
		return nil, fmt.Errorf("无法设置邮件收件人: %w", err)
	}
	msg.Subject(h.subject)

	data := eventData{
		Headline:    h.headline,
		ScheduleID:  ev.ScheduleID,
		Actor:       ev.Actor,
		Days:        ev.Days,
		Assignments: ev.Assignments,
		OccurredAt:  ev.OccurredAt.Format("2006-01-02 15:04:05"),
	}
	if err := msg.SetBodyHTMLTemplate(n.tmpl, data); err != nil {
		return nil, fmt.Errorf("无法设置邮件正文: %w", err)
	}

	return msg, nil
}
