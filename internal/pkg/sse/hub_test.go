package sse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_PublishDeliversOncePerSubscriber(t *testing.T) {
	h := NewHub()
	ch, cleanup := h.Subscribe("employee:e1", "role:c1:HR")
	defer cleanup()

	h.Publish([]string{"employee:e1", "role:c1:HR"}, Event{Event: "notification", Data: "hello"})

	require.Len(t, ch, 1)
	ev := <-ch
	assert.Equal(t, "employee:e1", ev.Key)
	assert.Equal(t, "hello", ev.Data)
}

func TestHub_CleanupRemovesAllKeys(t *testing.T) {
	h := NewHub()
	_, cleanup := h.Subscribe("a", "b")
	assert.Equal(t, 1, h.SubscriberCount("a"))
	assert.Equal(t, 1, h.SubscriberCount("b"))

	cleanup()
	cleanup()

	assert.Zero(t, h.SubscriberCount("a"))
	assert.Zero(t, h.SubscriberCount("b"))
	h.Publish([]string{"a"}, Event{Event: "noop"})
}
