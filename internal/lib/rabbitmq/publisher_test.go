package rabbitmq

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingChannel struct {
	exchange string
	key      string
	msgs     []amqp.Publishing
	err      error
}

func (c *recordingChannel) Publish(exchange, key string, _, _ bool, msg amqp.Publishing) error {
	c.exchange, c.key = exchange, key
	c.msgs = append(c.msgs, msg)
	return c.err
}

func TestPublisher_Publish(t *testing.T) {
	ch := &recordingChannel{}
	sent := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	p := newPublisher(ch, NotificationsExchange)
	p.now = func() time.Time { return sent }

	require.NoError(t, p.Publish(RoutingKeyExpiring, map[string]int{"client_id": 3}))
	require.NoError(t, p.Publish(RoutingKeyExpiring, map[string]int{"client_id": 4}))

	require.Len(t, ch.msgs, 2)
	assert.Equal(t, NotificationsExchange, ch.exchange)
	assert.Equal(t, RoutingKeyExpiring, ch.key)

	first := ch.msgs[0]
	assert.JSONEq(t, `{"client_id":3}`, string(first.Body))
	assert.Equal(t, "application/json", first.ContentType)
	assert.Equal(t, amqp.Persistent, first.DeliveryMode)
	assert.Equal(t, AppID, first.AppId)
	assert.Equal(t, RoutingKeyExpiring, first.Type)
	assert.Equal(t, sent, first.Timestamp)
	assert.NotEmpty(t, first.MessageId)
	assert.NotEqual(t, first.MessageId, ch.msgs[1].MessageId)
}

func TestPublisher_Errors(t *testing.T) {
	t.Run("marshal error", func(t *testing.T) {
		ch := &recordingChannel{}
		err := newPublisher(ch, NotificationsExchange).Publish(RoutingKeyExpiring, struct {
			Ch chan int `json:"ch"`
		}{Ch: make(chan int)})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "rabbitmq.Publish")
		assert.Empty(t, ch.msgs)
	})

	t.Run("channel error", func(t *testing.T) {
		closed := errors.New("channel closed")
		err := newPublisher(&recordingChannel{err: closed}, NotificationsExchange).Publish(RoutingKeyExpiring, 1)

		require.ErrorIs(t, err, closed)
		assert.Contains(t, err.Error(), "gym.notifications/expiring")
	})
}

func TestPublisher_RoutesToExpiringQueue(t *testing.T) {
	uri := brokerURI(t)

	conn, err := Connect(uri, 5, time.Second)
	require.NoError(t, err)
	defer func() {
		_ = conn.Close()
	}()

	ch, err := SetupChannel(conn, NotificationsExchange, NotificationQueues())
	require.NoError(t, err)
	defer func() {
		_ = ch.Close()
	}()

	type testMsg struct {
		ClientID int    `json:"client_id"`
		FullName string `json:"full_name"`
	}
	msg := testMsg{ClientID: 3, FullName: "Ivan"}

	require.NoError(t, NewPublisher(ch, NotificationsExchange).Publish(RoutingKeyExpiring, msg))

	deliveries, err := ch.Consume("gym.notifications.expiring", "test-consumer", true, false, false, false, nil)
	require.NoError(t, err)

	select {
	case d := <-deliveries:
		var got testMsg
		require.NoError(t, json.Unmarshal(d.Body, &got))
		assert.Equal(t, msg, got)
		assert.Equal(t, AppID, d.AppId)
	case <-time.After(5 * time.Second):
		t.Fatal("timeout waiting for message via exchange")
	}
}
