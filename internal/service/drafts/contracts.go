package drafts

import (
	"github.com/tutorlink/TL-AdminService/internal/reconciler"
)

// MetricsRecorder интерфейс для записи метрик работы черновиков
type MetricsRecorder interface {
	ObserveSnapshotRefresh(result string)
	ObserveSelectionInvalidated()
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Переиспользуем контракты reconciler: менеджер лишь владеет
// жизненным циклом экземпляров
type AvailabilityOracle = reconciler.AvailabilityOracle
type BookingStore = reconciler.BookingStore
type ChangeFeed = reconciler.ChangeFeed
