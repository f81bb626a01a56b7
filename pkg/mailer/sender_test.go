package mailer

import (
	"context"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePublisher struct {
	got []any
	err error
}

func (f *fakePublisher) PublishJSON(_ context.Context, body any) error {
	f.got = append(f.got, body)
	return f.err
}

func TestQueueSender_PublishesJob(t *testing.T) {
	pub := &fakePublisher{}
	s := NewQueueSender(pub)

	err := s.Send(context.Background(), Message{To: "a@x.com", Subject: "Hi", HTML: "<p>x</p>", Text: "x"})
	require.NoError(t, err)
	require.Len(t, pub.got, 1)
	assert.Equal(t, EmailJob{To: "a@x.com", Subject: "Hi", HTML: "<p>x</p>", Text: "x"}, pub.got[0])
}

func TestQueueSender_SurfacesPublishError(t *testing.T) {
	s := NewQueueSender(&fakePublisher{err: errors.New("channel closed")})
	assert.Error(t, s.Send(context.Background(), Message{To: "a@x.com"}))

	assert.Error(t, NewQueueSender(nil).Send(context.Background(), Message{}))
}

func TestLogSender(t *testing.T) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.InfoLevel)

	require.NoError(t, NewLogSender(logger).Send(context.Background(), Message{To: "a@x.com", Subject: "Hi"}))
	require.NotEmpty(t, hook.Entries)
	assert.Equal(t, "a@x.com", hook.LastEntry().Data["to"])
}
