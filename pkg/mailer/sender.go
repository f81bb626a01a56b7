package mailer

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"
)

// Sender delivers a rendered email. A nil error means the message was
// accepted for delivery, not that it reached the inbox.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Publisher is the queue side of QueueSender.
type Publisher interface {
	PublishJSON(ctx context.Context, body any) error
}

// QueueSender hands messages to the email worker through a queue.
type QueueSender struct {
	Pub Publisher
}

func NewQueueSender(pub Publisher) *QueueSender {
	return &QueueSender{Pub: pub}
}

func (q *QueueSender) Send(ctx context.Context, msg Message) error {
	if q.Pub == nil {
		return errors.New("mailer: queue publisher not configured")
	}
	return q.Pub.PublishJSON(ctx, msg.Job())
}

// LogSender writes messages to the log instead of sending them. Used in
// development when MAIL_DRIVER=log.
type LogSender struct {
	Logger *logrus.Logger
}

func NewLogSender(logger *logrus.Logger) *LogSender {
	return &LogSender{Logger: logger}
}

func (l *LogSender) Send(_ context.Context, msg Message) error {
	if l.Logger != nil {
		l.Logger.WithFields(logrus.Fields{"to": msg.To, "subject": msg.Subject}).Info("email not sent (log driver)")
		l.Logger.Debug(msg.Text)
	}
	return nil
}

var (
	_ Sender = (*Mailgun)(nil)
	_ Sender = (*QueueSender)(nil)
	_ Sender = (*LogSender)(nil)
)
