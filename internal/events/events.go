package events

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sysu-ecnc-dev/roster-board/internal/domain"
)

// NewScheduleEvent 根据写入的 Day 树生成一条班表事件
func NewScheduleEvent(kind, scheduleID, actor string, days []domain.Day) domain.ScheduleEvent {
	ev := domain.ScheduleEvent{
		Type:       kind,
		ScheduleID: scheduleID,
		Actor:      actor,
		Days:       len(days),
		OccurredAt: time.Now(),
	}
	for _, day := range days {
		for _, shift := range day.Shifts {
			ev.Assignments += len(shift.Assignments)
		}
	}
	return ev
}

// DeclareQueue 声明持久化的事件队列，发布端和消费端都需要调用
func DeclareQueue(ch *amqp.Channel, name string) (amqp.Queue, error) {
	return ch.QueueDeclare(
		name,
		true,  // 持久化
		false, // 没有消费者时不自动删除
		false, // 不独占
		false, // 等待 RabbitMQ 确认
		nil,
	)
}

type Publisher struct {
	ch      *amqp.Channel
	queue   string
	timeout time.Duration
}

func NewPublisher(ch *amqp.Channel, queue string, timeout time.Duration) *Publisher {
	return &Publisher{ch: ch, queue: queue, timeout: timeout}
}

func (p *Publisher) Publish(ctx context.Context, ev domain.ScheduleEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	return p.ch.PublishWithContext(
		ctx,
		"",
		p.queue,
		true,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
		},
	)
}

func Decode(body []byte) (domain.ScheduleEvent, error) {
	ev := domain.ScheduleEvent{}
	err := json.Unmarshal(body, &ev)
	return ev, err
}
