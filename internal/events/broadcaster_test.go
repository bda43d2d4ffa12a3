package events_test

import (
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kerhoff/TodoWidget/internal/events"
)

func newBroadcaster() *events.Broadcaster {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return events.NewBroadcaster(logger)
}

func Test_Broadcaster_Publish_Reaches_Every_Subscriber(t *testing.T) {
	t.Parallel()

	b := newBroadcaster()
	first, cancelFirst := b.Subscribe()
	defer cancelFirst()
	second, cancelSecond := b.Subscribe()
	defer cancelSecond()

	b.Publish(events.DBReconnected)

	assert.Equal(t, events.DBReconnected, <-first)
	assert.Equal(t, events.DBReconnected, <-second)
}

func Test_Broadcaster_Cancel_Closes_Channel(t *testing.T) {
	t.Parallel()

	b := newBroadcaster()
	ch, cancel := b.Subscribe()
	require.Equal(t, 1, b.Subscribers())

	cancel()
	cancel()

	_, ok := <-ch
	assert.False(t, ok)
	assert.Equal(t, 0, b.Subscribers())

	assert.NotPanics(t, func() { b.Publish(events.DBReconnected) })
}

func Test_Broadcaster_Does_Not_Block_On_Slow_Subscriber(t *testing.T) {
	t.Parallel()

	b := newBroadcaster()
	ch, cancel := b.Subscribe()
	defer cancel()

	for i := 0; i < 100; i++ {
		b.Publish(events.DBReconnected)
	}

	assert.Equal(t, 8, len(ch))
}

func Test_Broadcaster_Close_Ends_All_Streams(t *testing.T) {
	t.Parallel()

	b := newBroadcaster()
	ch, cancel := b.Subscribe()
	b.Close()

	_, ok := <-ch
	assert.False(t, ok)
	cancel()

	late, _ := b.Subscribe()
	_, ok = <-late
	assert.False(t, ok)
}
