package mailer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	tpl "github.com/oksasatya/project-management-api/pkg/mailer/templates"
)

const sendTimeout = 15 * time.Second

// Worker turns queued EmailJobs into delivered messages.
type Worker struct {
	Sender Sender
	Logger *logrus.Logger
}

func NewWorker(sender Sender, logger *logrus.Logger) *Worker {
	return &Worker{Sender: sender, Logger: logger}
}

// Resolve renders a job into a Message. Pre-rendered jobs pass through;
// template jobs are rendered from the embedded templates with job.Data.
func Resolve(job EmailJob) (Message, error) {
	if strings.TrimSpace(job.To) == "" {
		return Message{}, errors.New("job has no recipient")
	}
	msg := Message{To: job.To, Subject: job.Subject, Text: job.Text, HTML: job.HTML}
	if job.Template == "" {
		if msg.Subject == "" || (msg.Text == "" && msg.HTML == "") {
			return Message{}, errors.New("job needs a template or a subject with a body")
		}
		return msg, nil
	}

	data := make(map[string]any, len(job.Data)+1)
	for k, v := range job.Data {
		data[k] = v
	}
	if v, ok := data["Email"]; !ok || fmt.Sprintf("%v", v) == "" {
		data["Email"] = job.To
	}
	subject, text, html, err := tpl.Render(job.Template, data)
	if err != nil {
		return Message{}, err
	}
	if msg.Subject == "" {
		msg.Subject = subject
	}
	msg.Text, msg.HTML = text, html
	return msg, nil
}

// Process handles one queue payload. requeue reports whether a failure is
// worth retrying; malformed jobs are never retried.
func (w *Worker) Process(ctx context.Context, body []byte) (requeue bool, err error) {
	var job EmailJob
	if err := json.Unmarshal(body, &job); err != nil {
		return false, fmt.Errorf("decode job: %w", err)
	}
	msg, err := Resolve(job)
	if err != nil {
		return false, err
	}
	c, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()
	if err := w.Sender.Send(c, msg); err != nil {
		return true, fmt.Errorf("send: %w", err)
	}
	return false, nil
}

// Run consumes deliveries until the channel closes or ctx is done.
func (w *Worker) Run(ctx context.Context, deliveries <-chan amqp.Delivery) {
	for {
		select {
		case <-ctx.Done():
			return
		case d, ok := <-deliveries:
			if !ok {
				return
			}
			requeue, err := w.Process(ctx, d.Body)
			if err != nil {
				if w.Logger != nil {
					w.Logger.WithError(err).WithField("requeue", requeue).Warn("email job failed")
				}
				_ = d.Nack(false, requeue)
				continue
			}
			_ = d.Ack(false)
		}
	}
}
