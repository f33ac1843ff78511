package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-workforce-engine/internal/domain/notification"
	"github.com/cmlabs-hris/hris-workforce-engine/internal/domain/user"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	msgs []kafkago.Message
	err  error
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafkago.Message) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func TestNotificationPublisher_Publish(t *testing.T) {
	w := &fakeWriter{}
	p := NewNotificationPublisher(w, "")
	emp := "emp-1"

	err := p.Publish(context.Background(), []*notification.Notification{
		{
			ID:          "n1",
			CompanyID:   "c1",
			RecipientID: &emp,
			Type:        notification.TypeLeaveApproved,
			Title:       "Leave approved",
			CreatedAt:   time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC),
		},
		{
			ID:             "n2",
			CompanyID:      "c1",
			RecipientRoles: []user.Role{user.RoleHR},
			Type:           notification.TypeLeaveRequested,
			Title:          "New leave request",
		},
	})
	require.NoError(t, err)
	require.Len(t, w.msgs, 2)

	assert.Equal(t, NotificationTopic, w.msgs[0].Topic)
	assert.Equal(t, "c1", string(w.msgs[0].Key))
	assert.Equal(t, "event_type", w.msgs[0].Headers[0].Key)
	assert.Equal(t, "leave_approved", string(w.msgs[0].Headers[0].Value))

	var ev notificationEvent
	require.NoError(t, json.Unmarshal(w.msgs[1].Value, &ev))
	assert.Equal(t, []string{"HR"}, ev.RecipientRoles)
	assert.Nil(t, ev.RecipientID)
}

func TestNotificationPublisher_WriterError(t *testing.T) {
	p := NewNotificationPublisher(&fakeWriter{err: errors.New("broker down")}, "custom")
	err := p.Publish(context.Background(), []*notification.Notification{{ID: "n1", CompanyID: "c1"}})
	assert.ErrorContains(t, err, "broker down")

	assert.NoError(t, p.Publish(context.Background(), nil))
}
