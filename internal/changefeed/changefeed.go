package changefeed

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/tutorlink/TL-AdminService/internal/domain"
	"github.com/tutorlink/TL-AdminService/internal/reconciler"
)

// ErrSubscribeFailed возвращается, когда подписка на канал не установилась
var ErrSubscribeFailed = errors.New("changefeed: failed to subscribe")

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Feed push-уведомления об изменениях бронирований поверх Redis pub/sub
// Доставка best-effort: подписчики обязаны сохранять периодический опрос
// как основной механизм актуализации
type Feed struct {
	client *redis.Client
	log    Logger
}

// New создает change feed поверх подключения к Redis
func New(client *redis.Client, log Logger) *Feed {
	return &Feed{client: client, log: log}
}

// channelFor имя канала для пары (преподаватель, дата)
func channelFor(staffID int64, date time.Time) string {
	return fmt.Sprintf("bookings:%d:%s", staffID, date.Format(domain.DateFormat))
}

// Subscribe подписывается на изменения бронирований для (преподаватель, дата)
// onChange вызывается на каждое уведомление; содержимое сообщения
// игнорируется - уведомление лишь триггер для обновления снапшота
func (f *Feed) Subscribe(ctx context.Context, staffID int64, date time.Time, onChange func()) (reconciler.Unsubscribe, error) {
	channel := channelFor(staffID, date)

	pubsub := f.client.Subscribe(ctx, channel)

	// Дожидаемся подтверждения подписки, чтобы не терять ранние уведомления
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("%w: channel %s: %v", ErrSubscribeFailed, channel, err)
	}

	go func() {
		for range pubsub.Channel() {
			onChange()
		}
	}()

	f.log.Info("ChangeFeed: subscribed to %s", channel)

	return func() {
		if err := pubsub.Close(); err != nil {
			f.log.Warn("ChangeFeed: failed to close subscription to %s: %v", channel, err)
		}
	}, nil
}

// PublishBookingChanged публикует уведомление об изменении бронирований
// для пары (преподаватель, дата). Ошибка публикации не фатальна:
// подписчики добирают изменения опросом
func (f *Feed) PublishBookingChanged(ctx context.Context, staffID int64, date time.Time) {
	channel := channelFor(staffID, date)
	if err := f.client.Publish(ctx, channel, "changed").Err(); err != nil {
		f.log.Warn("ChangeFeed: failed to publish to %s: %v", channel, err)
		return
	}
	f.log.Info("ChangeFeed: published booking change to %s", channel)
}
