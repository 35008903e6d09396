package domain

import "time"

const (
	ScheduleEventPublished = "schedule_published"
	ScheduleEventUpdated   = "schedule_updated"
)

// ScheduleEvent 在班表写入成功之后发送到消息队列中
type ScheduleEvent struct {
	Type        string    `json:"type"`
	ScheduleID  string    `json:"scheduleID"`
	Actor       string    `json:"actor"`
	Days        int       `json:"days"`
	Assignments int       `json:"assignments"`
	OccurredAt  time.Time `json:"occurredAt"`
}
