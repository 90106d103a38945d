package reconciler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/tutorlink/TL-AdminService/internal/domain"
)

const (
	// DefaultPollInterval период фонового обновления снапшота
	DefaultPollInterval = 30 * time.Second

	// DefaultFetchTimeout таймаут одного запроса к движку доступности
	DefaultFetchTimeout = 10 * time.Second
)

// Options настройки реконсилера
type Options struct {
	PollInterval time.Duration
	FetchTimeout time.Duration
}

// refreshCall одно выполняющееся обновление снапшота
// Параллельные вызовы RefreshSnapshot для того же scope ждут закрытия done
// и получают err; seq привязывает вызов к scope, для которого он запущен
type refreshCall struct {
	done chan struct{}
	err  error
	seq  uint64
}

// Reconciler единственный владелец снапшота доступности и выбранного слота
// для одного черновика бронирования. Все мутации строго последовательны:
// новое обновление снапшота не запускается, пока предыдущее не завершилось
type Reconciler struct {
	oracle       AvailabilityOracle
	store        BookingStore
	feed         ChangeFeed
	timeProvider TimeProvider
	logger       Logger

	pollInterval time.Duration
	fetchTimeout time.Duration

	mu            sync.Mutex
	scope         domain.Scope
	scopeSeq      uint64 // растёт при каждой смене scope, поздние ответы для старого scope отбрасываются
	snapshot      *domain.AvailabilitySnapshot
	selection     *domain.TimeSlot
	validated     *domain.TimeSlot // слот, прошедший авторитетную валидацию после последней смены scope
	editBookingID *int64           // исключается из валидации при редактировании существующего бронирования
	notice        domain.Notice
	inflight      *refreshCall

	triggerCh chan struct{}
}

// New создает реконсилер для одного черновика бронирования
func New(oracle AvailabilityOracle, store BookingStore, feed ChangeFeed, opts Options, logger Logger) *Reconciler {
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = DefaultFetchTimeout
	}

	return &Reconciler{
		oracle:       oracle,
		store:        store,
		feed:         feed,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
		pollInterval: opts.PollInterval,
		fetchTimeout: opts.FetchTimeout,
		triggerCh:    make(chan struct{}, 1),
	}
}

// SetScope заменяет активный scope (преподаватель, дата)
// Безусловно сбрасывает выбранный слот, снапшот и валидацию,
// после чего сигнализирует о немедленном обновлении снапшота
func (r *Reconciler) SetScope(staffID int64, date time.Time) {
	r.mu.Lock()
	r.scope = domain.Scope{StaffID: staffID, Date: truncateToDate(date)}
	r.scopeSeq++
	r.snapshot = nil
	r.selection = nil
	r.validated = nil
	r.editBookingID = nil
	r.notice = ""
	r.mu.Unlock()

	r.logger.Info("Reconciler: scope set to staff=%d, date=%s", staffID, date.Format(domain.DateFormat))
	r.TriggerRefresh()
}

// SeedFromBooking инициализирует scope и выбранный слот из редактируемого
// бронирования. Собственное бронирование исключается из проверок доступности,
// чтобы запись могла сохранить свой же слот
func (r *Reconciler) SeedFromBooking(booking *domain.Booking) {
	r.SetScope(booking.StaffID, booking.Date)

	r.mu.Lock()
	slot := domain.TimeSlot{Start: booking.StartTime, End: booking.EndTime, Available: true}
	r.selection = &slot
	bookingID := booking.ID
	r.editBookingID = &bookingID
	r.mu.Unlock()

	r.logger.Info("Reconciler: seeded selection %s-%s from booking id=%d",
		booking.StartTime, booking.EndTime, booking.ID)
}

// TriggerRefresh сигнализирует фоновому циклу о необходимости обновления
// Неблокирующий: если сигнал уже ожидает обработки, новый не добавляется
func (r *Reconciler) TriggerRefresh() {
	select {
	case r.triggerCh <- struct{}{}:
	default:
	}
}

// RefreshSnapshot получает свежий снапшот доступности для активного scope
//
// Политика коалесценции: если обновление уже выполняется, вызов ждёт его
// завершения и возвращает его результат — два параллельных запроса для
// одного scope никогда не выполняются, чтобы снапшоты не применялись
// в произвольном порядке.
//
// При ошибке получения предыдущий снапшот и выбранный слот остаются
// нетронутыми: временный сетевой сбой не должен уничтожать ввод пользователя.
// Ответ для уже сменившегося scope отбрасывается и не применяется
func (r *Reconciler) RefreshSnapshot(ctx context.Context) error {
	r.mu.Lock()
	if r.scope.IsZero() {
		r.mu.Unlock()
		return ErrNoScope
	}

	// Уже есть обновление в полёте для текущего scope - ждём его результат
	// Обновление для устаревшего scope не коалесцируется: его результат
	// всё равно будет отброшен, а новый scope требует собственного снапшота
	if r.inflight != nil && r.inflight.seq == r.scopeSeq {
		call := r.inflight
		r.mu.Unlock()
		select {
		case <-call.done:
			return call.err
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	call := &refreshCall{done: make(chan struct{}), seq: r.scopeSeq}
	r.inflight = call
	scope := r.scope
	seq := r.scopeSeq
	r.mu.Unlock()

	fetchCtx, cancel := context.WithTimeout(ctx, r.fetchTimeout)
	defer cancel()

	slots, err := r.oracle.ListSlots(fetchCtx, scope.StaffID, scope.Date)
	fetchedAt := r.timeProvider.Now()

	r.mu.Lock()
	defer r.mu.Unlock()

	// Не затираем более новое обновление, запущенное для сменившегося scope
	if r.inflight == call {
		r.inflight = nil
	}

	if err != nil {
		call.err = fmt.Errorf("%w: %v", ErrAvailabilityFetchFailed, err)
		close(call.done)
		r.logger.Warn("Reconciler: snapshot fetch failed for staff=%d, date=%s: %v",
			scope.StaffID, scope.Date.Format(domain.DateFormat), err)
		return call.err
	}

	if seq != r.scopeSeq {
		// Scope сменился, пока шёл запрос - ответ устарел и не применяется
		close(call.done)
		r.logger.Info("Reconciler: discarding stale snapshot for staff=%d, date=%s",
			scope.StaffID, scope.Date.Format(domain.DateFormat))
		return nil
	}

	r.snapshot = domain.NewAvailabilitySnapshot(scope, slots, fetchedAt)
	r.reconcileLocked()
	close(call.done)

	r.logger.Info("Reconciler: applied snapshot with %d slots for staff=%d, date=%s",
		len(slots), scope.StaffID, scope.Date.Format(domain.DateFormat))
	return nil
}

// reconcileLocked применяет правило инвалидации выбора к текущему снапшоту
// Вызывается после каждого принятого снапшота, под мьютексом
func (r *Reconciler) reconcileLocked() {
	if r.selection == nil {
		return
	}
	if selectionSurvives(r.selection, r.snapshot) {
		return
	}

	r.logger.Warn("Reconciler: selection %s-%s invalidated by fresh snapshot",
		r.selection.Start, r.selection.End)
	r.selection = nil
	r.validated = nil
	r.notice = domain.NoticeSelectionInvalidated
}

// selectionSurvives чистая функция правила реконсиляции:
// выбор выживает, только если снапшот содержит слот с точно теми же
// (start, end) и available = true
func selectionSurvives(selection *domain.TimeSlot, snapshot *domain.AvailabilitySnapshot) bool {
	if selection == nil {
		return true
	}
	if snapshot == nil {
		return false
	}
	return snapshot.HasAvailable(selection.Start, selection.End)
}

// SelectSlot устанавливает выбранный слот
// Слот должен присутствовать в текущем снапшоте и быть доступным,
// иначе возвращается ErrSlotUnavailable и выбор не меняется
func (r *Reconciler) SelectSlot(slot domain.TimeSlot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.scope.IsZero() {
		return ErrNoScope
	}
	if r.snapshot == nil || !r.snapshot.HasAvailable(slot.Start, slot.End) {
		return fmt.Errorf("%w: %s-%s", ErrSlotUnavailable, slot.Start, slot.End)
	}

	selected := domain.TimeSlot{Start: slot.Start, End: slot.End, Available: true}
	r.selection = &selected
	r.validated = nil // новый выбор требует новой авторитетной валидации
	r.notice = ""

	r.logger.Info("Reconciler: selected slot %s-%s for staff=%d, date=%s",
		slot.Start, slot.End, r.scope.StaffID, r.scope.Date.Format(domain.DateFormat))
	return nil
}

// ValidateForSubmit выполняет одну авторитетную проверку выбранного слота
// перед отправкой. При отрицательном результате выбор сбрасывается, снапшот
// обновляется, и возвращается ErrSlotNoLongerAvailable. Сбой транспорта
// не меняет состояние - попытку можно повторить
func (r *Reconciler) ValidateForSubmit(ctx context.Context) (*domain.ValidationOutcome, error) {
	r.mu.Lock()
	if r.selection == nil {
		r.mu.Unlock()
		return nil, ErrNoSelection
	}
	scope := r.scope
	seq := r.scopeSeq
	selection := *r.selection
	excludeID := r.editBookingID
	r.mu.Unlock()

	checkCtx, cancel := context.WithTimeout(ctx, r.fetchTimeout)
	defer cancel()

	outcome, err := r.oracle.ValidateSlot(checkCtx, scope.StaffID, scope.Date, selection.Start, selection.End, excludeID)
	if err != nil {
		r.logger.Error("Reconciler: submit validation transport failure for staff=%d, date=%s: %v",
			scope.StaffID, scope.Date.Format(domain.DateFormat), err)
		return nil, fmt.Errorf("%w: validate slot: %v", ErrAvailabilityFetchFailed, err)
	}

	r.mu.Lock()
	if seq != r.scopeSeq {
		r.mu.Unlock()
		return nil, ErrScopeChanged
	}

	if !outcome.Valid {
		r.selection = nil
		r.validated = nil
		r.mu.Unlock()

		r.logger.Warn("Reconciler: slot %s-%s rejected at submit validation: %s",
			selection.Start, selection.End, outcome.Reason)

		// Обновляем снапшот, чтобы UI показывал актуальную доступность
		if refreshErr := r.RefreshSnapshot(ctx); refreshErr != nil {
			r.logger.Warn("Reconciler: post-validation refresh failed: %v", refreshErr)
		}
		return nil, fmt.Errorf("%w: %s", ErrSlotNoLongerAvailable, outcome.Reason)
	}

	validated := selection
	r.validated = &validated
	r.mu.Unlock()

	r.logger.Info("Reconciler: slot %s-%s validated for submit", selection.Start, selection.End)
	return outcome, nil
}

// Commit передаёт бронирование в BookingStore
// Допустим только сразу после успешной валидации всё ещё актуального выбора.
// Конфликт записи (гонка, проигранная между валидацией и записью)
// обрабатывается так же, как отрицательная валидация: валидация и запись
// не атомарны относительно внешнего хранилища
func (r *Reconciler) Commit(ctx context.Context, details domain.ClientDetails) (*domain.Booking, error) {
	r.mu.Lock()
	if r.selection == nil {
		r.mu.Unlock()
		return nil, ErrNoSelection
	}
	if r.validated == nil || !r.validated.SameRange(*r.selection) {
		r.mu.Unlock()
		return nil, ErrSelectionNotValidated
	}
	scope := r.scope
	seq := r.scopeSeq
	selection := *r.selection
	editBookingID := r.editBookingID
	r.mu.Unlock()

	var (
		record *domain.Booking
		err    error
	)

	if editBookingID != nil {
		update := &domain.BookingUpdate{
			StaffID:     &scope.StaffID,
			Date:        &scope.Date,
			StartTime:   &selection.Start,
			EndTime:     &selection.End,
			ClientName:  &details.Name,
			ClientPhone: details.Phone,
			Notes:       details.Notes,
		}
		record, err = r.store.Update(ctx, *editBookingID, update)
	} else {
		booking := &domain.Booking{
			StaffID:     scope.StaffID,
			Date:        scope.Date,
			StartTime:   selection.Start,
			EndTime:     selection.End,
			Status:      domain.StatusPending,
			ClientName:  details.Name,
			ClientPhone: details.Phone,
			Notes:       details.Notes,
		}
		record, err = r.store.Create(ctx, booking)
	}

	if err != nil {
		if errors.Is(err, ErrConflictDetected) {
			// Гонка проиграна после валидации - слот уже занят
			r.mu.Lock()
			if seq == r.scopeSeq {
				r.selection = nil
				r.validated = nil
			}
			r.mu.Unlock()

			r.logger.Warn("Reconciler: commit conflict for slot %s-%s, staff=%d, date=%s",
				selection.Start, selection.End, scope.StaffID, scope.Date.Format(domain.DateFormat))

			if refreshErr := r.RefreshSnapshot(ctx); refreshErr != nil {
				r.logger.Warn("Reconciler: post-conflict refresh failed: %v", refreshErr)
			}
			return nil, fmt.Errorf("%w: commit conflict", ErrSlotNoLongerAvailable)
		}

		r.logger.Error("Reconciler: commit failed for staff=%d, date=%s: %v",
			scope.StaffID, scope.Date.Format(domain.DateFormat), err)
		if errors.Is(err, ErrStoreUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	// Успешная отправка уничтожает выбор
	r.mu.Lock()
	if seq == r.scopeSeq {
		r.selection = nil
		r.validated = nil
		r.notice = ""
	}
	r.mu.Unlock()

	r.logger.Info("Reconciler: committed booking id=%d for staff=%d, date=%s, slot=%s-%s",
		record.ID, scope.StaffID, scope.Date.Format(domain.DateFormat), selection.Start, selection.End)
	return record, nil
}

// Scope возвращает активный scope
func (r *Reconciler) Scope() domain.Scope {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.scope
}

// Snapshot возвращает последний принятый снапшот (nil, если его ещё нет)
// Снапшот иммутабелен после создания, копирование не требуется
func (r *Reconciler) Snapshot() *domain.AvailabilitySnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshot
}

// Selection возвращает копию выбранного слота и признак его наличия
func (r *Reconciler) Selection() (domain.TimeSlot, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.selection == nil {
		return domain.TimeSlot{}, false
	}
	return *r.selection, true
}

// Notice возвращает последнее уведомление реконсиляции ("" если нет)
func (r *Reconciler) Notice() domain.Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.notice
}

// EditBookingID возвращает id редактируемого бронирования (nil для нового)
func (r *Reconciler) EditBookingID() *int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.editBookingID
}

func truncateToDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
