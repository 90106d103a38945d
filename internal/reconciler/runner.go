package reconciler

import (
	"context"
	"time"

	"github.com/tutorlink/TL-AdminService/internal/domain"
)

// Run единственный логический поток управления реконсилера:
// периодический таймер, ручные триггеры и уведомления change feed
// сходятся в последовательные вызовы RefreshSnapshot для активного scope.
// Смена scope переподписывает change feed; подписка для старого scope
// снимается. Блокируется до отмены контекста
func (r *Reconciler) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.pollInterval)
	defer ticker.Stop()

	var (
		unsubscribe Unsubscribe
		subscribed  domain.Scope
	)
	defer func() {
		if unsubscribe != nil {
			unsubscribe()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		case <-r.triggerCh:
		}

		scope := r.Scope()
		if scope.IsZero() {
			continue
		}

		// Переподписываем change feed при смене scope
		// Неудачная подписка не фатальна: опрос по таймеру остаётся fallback
		if r.feed != nil && !scope.Equal(subscribed) {
			if unsubscribe != nil {
				unsubscribe()
				unsubscribe = nil
			}

			unsub, err := r.feed.Subscribe(ctx, scope.StaffID, scope.Date, r.TriggerRefresh)
			if err != nil {
				r.logger.Warn("Reconciler: change feed subscription failed for staff=%d, date=%s: %v",
					scope.StaffID, scope.Date.Format(domain.DateFormat), err)
				subscribed = domain.Scope{}
			} else {
				unsubscribe = unsub
				subscribed = scope
				r.logger.Info("Reconciler: subscribed to change feed for staff=%d, date=%s",
					scope.StaffID, scope.Date.Format(domain.DateFormat))
			}
		}

		if err := r.RefreshSnapshot(ctx); err != nil {
			// Ошибки обновления не фатальны: предыдущий снапшот остаётся
			// авторитетным для отображения до успешного обновления
			r.logger.Warn("Reconciler: background refresh failed: %v", err)
		}
	}
}
