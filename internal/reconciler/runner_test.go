package reconciler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (f *fakeFeed) subscribeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.subscribes
}

func (f *fakeFeed) notify() {
	f.mu.Lock()
	fn := f.onChange
	f.mu.Unlock()
	if fn != nil {
		fn()
	}
}

func TestRun_RefreshesOnScopeChangeAndPush(t *testing.T) {
	oracle := &fakeOracle{listFn: fixedSlots(slot("09:00", "10:00", true))}
	feed := &fakeFeed{}
	r := New(oracle, &fakeStore{}, feed, Options{PollInterval: time.Hour}, noopLogger{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	// Установка scope немедленно запускает обновление и подписку на feed
	r.SetScope(1, testDate)
	require.Eventually(t, func() bool { return oracle.listCallCount() >= 1 },
		time.Second, time.Millisecond)
	require.Eventually(t, func() bool { return feed.subscribeCount() == 1 },
		time.Second, time.Millisecond)

	// Push-уведомление - только триггер обновления, не источник данных
	callsBefore := oracle.listCallCount()
	feed.notify()
	require.Eventually(t, func() bool { return oracle.listCallCount() > callsBefore },
		time.Second, time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}

func TestRun_ResubscribesOnScopeChange(t *testing.T) {
	oracle := &fakeOracle{listFn: fixedSlots(slot("09:00", "10:00", true))}
	feed := &fakeFeed{}
	r := New(oracle, &fakeStore{}, feed, Options{PollInterval: time.Hour}, noopLogger{})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = r.Run(ctx) }()

	r.SetScope(1, testDate)
	require.Eventually(t, func() bool { return feed.subscribeCount() == 1 },
		time.Second, time.Millisecond)

	r.SetScope(2, testDate)
	require.Eventually(t, func() bool { return feed.subscribeCount() == 2 },
		time.Second, time.Millisecond)
}

func TestRun_PollsOnTicker(t *testing.T) {
	oracle := &fakeOracle{listFn: fixedSlots(slot("09:00", "10:00", true))}
	r := New(oracle, &fakeStore{}, nil, Options{PollInterval: 5 * time.Millisecond}, noopLogger{})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = r.Run(ctx) }()

	r.SetScope(1, testDate)

	// Таймер продолжает обновлять снапшот без внешних триггеров
	require.Eventually(t, func() bool { return oracle.listCallCount() >= 3 },
		time.Second, time.Millisecond)
}
