package main

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kerhoff/TodoWidget/internal/events"
)

type failingSender struct {
	mu    sync.Mutex
	chats []int64
}

func (s *failingSender) SendMessage(chatID int64, _ string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chats = append(s.chats, chatID)
	return errors.New("telegram unavailable")
}

func (s *failingSender) sent() []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]int64(nil), s.chats...)
}

func Test_NotifyReconnects_Logs_Send_Failures(t *testing.T) {
	t.Parallel()

	logger, hook := logtest.NewNullLogger()
	broadcaster := events.NewBroadcaster(logger)
	defer broadcaster.Close()
	sender := &failingSender{}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		notifyReconnects(ctx, broadcaster, sender, 4242, logger)
		close(done)
	}()

	require.Eventually(t, func() bool { return broadcaster.Subscribers() == 1 }, time.Second, 5*time.Millisecond)
	broadcaster.Publish(events.DBReconnected)

	require.Eventually(t, func() bool {
		for _, e := range hook.AllEntries() {
			if e.Level == logrus.WarnLevel && e.Message == "Failed to send reconnect notice" {
				return true
			}
		}
		return false
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, []int64{4242}, sender.sent())

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("notifier did not stop after cancel")
	}
}
