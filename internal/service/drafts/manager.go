package drafts

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/tutorlink/TL-AdminService/internal/domain"
	bookingRepo "github.com/tutorlink/TL-AdminService/internal/infra/storage/booking"
	"github.com/tutorlink/TL-AdminService/internal/reconciler"
	"github.com/tutorlink/TL-AdminService/internal/service/drafts/models"
	"github.com/tutorlink/TL-AdminService/pkg/types"
)

// BookingProvider интерфейс чтения бронирований для режима редактирования
type BookingProvider interface {
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
}

// Options настройки менеджера черновиков
type Options struct {
	// TTL время жизни черновика без обращений
	TTL time.Duration

	// CleanupSchedule cron-расписание удаления истёкших черновиков
	CleanupSchedule string

	// Reconciler настройки каждого экземпляра reconciler
	Reconciler reconciler.Options
}

// draft одна сессия черновика бронирования
type draft struct {
	id         string
	rec        *reconciler.Reconciler
	cancel     context.CancelFunc
	lastActive time.Time
}

// Manager владеет жизненным циклом черновиков бронирования
// Каждый черновик держит собственный reconciler с фоновым циклом
// опроса и подпиской на change feed; черновики без обращений дольше
// TTL удаляются по расписанию
type Manager struct {
	mu     sync.Mutex
	drafts map[string]*draft

	oracle      AvailabilityOracle
	store       BookingStore
	feed        ChangeFeed
	bookingRepo BookingProvider
	metrics     MetricsRecorder
	logger      Logger
	opts        Options

	cron *cron.Cron
}

// NewManager создает новый менеджер черновиков
func NewManager(
	oracle AvailabilityOracle,
	store BookingStore,
	feed ChangeFeed,
	bookingProvider BookingProvider,
	metrics MetricsRecorder,
	logger Logger,
	opts Options,
) *Manager {
	if opts.TTL <= 0 {
		opts.TTL = 30 * time.Minute
	}
	if opts.CleanupSchedule == "" {
		opts.CleanupSchedule = "@every 1m"
	}
	return &Manager{
		drafts:      make(map[string]*draft),
		oracle:      oracle,
		store:       store,
		feed:        feed,
		bookingRepo: bookingProvider,
		metrics:     metrics,
		logger:      logger,
		opts:        opts,
		cron:        cron.New(),
	}
}

// Start запускает периодическое удаление истёкших черновиков
func (m *Manager) Start() error {
	if _, err := m.cron.AddFunc(m.opts.CleanupSchedule, m.cleanupExpired); err != nil {
		return fmt.Errorf("%w: Start - schedule cleanup: %v", ErrInternal, err)
	}
	m.cron.Start()
	m.logger.Info("DraftManager: started, ttl=%s cleanup=%q", m.opts.TTL, m.opts.CleanupSchedule)
	return nil
}

// Stop останавливает очистку и завершает все черновики
func (m *Manager) Stop() {
	ctx := m.cron.Stop()
	<-ctx.Done()

	m.mu.Lock()
	defer m.mu.Unlock()
	for id, d := range m.drafts {
		d.cancel()
		delete(m.drafts, id)
	}
	m.logger.Info("DraftManager: stopped")
}

// Create создает новый черновик бронирования
// Если указан editBookingID, черновик создаётся в режиме редактирования:
// scope и выбранный слот заполняются из существующего бронирования
func (m *Manager) Create(ctx context.Context, editBookingID *int64) (*models.DraftResponse, error) {
	rec := reconciler.New(m.oracle, m.store, m.feed, m.opts.Reconciler, m.logger)

	if editBookingID != nil {
		booking, err := m.bookingRepo.GetByID(ctx, *editBookingID)
		if err != nil {
			if errors.Is(err, bookingRepo.ErrBookingNotFound) {
				m.logger.Warn("Create: booking id=%d not found for edit draft", *editBookingID)
				return nil, ErrBookingNotFound
			}
			m.logger.Error("Create: repository error for booking id=%d: %v", *editBookingID, err)
			return nil, fmt.Errorf("%w: Create - fetch booking: %v", ErrInternal, err)
		}
		rec.SeedFromBooking(booking)
	}

	runCtx, cancel := context.WithCancel(context.Background())
	d := &draft{
		id:         uuid.NewString(),
		rec:        rec,
		cancel:     cancel,
		lastActive: time.Now(),
	}

	go func() {
		if err := rec.Run(runCtx); err != nil && !errors.Is(err, context.Canceled) {
			m.logger.Warn("DraftManager: runner for draft=%s exited: %v", d.id, err)
		}
	}()

	m.mu.Lock()
	m.drafts[d.id] = d
	m.mu.Unlock()

	m.logger.Info("DraftManager: created draft=%s edit=%v", d.id, editBookingID != nil)

	// Для режима редактирования сразу подтягиваем снапшот, чтобы ответ
	// содержал доступность редактируемой даты
	if editBookingID != nil {
		m.refreshAndObserve(ctx, d)
	}

	return m.stateOf(d), nil
}

// Get возвращает текущее состояние черновика
func (m *Manager) Get(draftID string) (*models.DraftResponse, error) {
	d, err := m.touch(draftID)
	if err != nil {
		return nil, err
	}
	return m.stateOf(d), nil
}

// SetScope переключает черновик на пару (преподаватель, дата)
// Прежние снапшот и выбор сбрасываются немедленно, свежий снапшот
// запрашивается синхронно; ошибка запроса не фатальна - черновик
// останется без снапшота до следующего обновления
func (m *Manager) SetScope(ctx context.Context, draftID string, staffID int64, date time.Time) (*models.DraftResponse, error) {
	if staffID <= 0 {
		return nil, fmt.Errorf("%w: staffId must be positive", ErrInvalidInput)
	}

	d, err := m.touch(draftID)
	if err != nil {
		return nil, err
	}

	d.rec.SetScope(staffID, date)
	m.refreshAndObserve(ctx, d)

	return m.stateOf(d), nil
}

// Refresh принудительно обновляет снапшот доступности черновика
func (m *Manager) Refresh(ctx context.Context, draftID string) (*models.DraftResponse, error) {
	d, err := m.touch(draftID)
	if err != nil {
		return nil, err
	}

	if err := m.refreshAndObserve(ctx, d); err != nil {
		return nil, err
	}

	return m.stateOf(d), nil
}

// SelectSlot выбирает слот из текущего снапшота черновика
func (m *Manager) SelectSlot(draftID string, start, end types.TimeString) (*models.DraftResponse, error) {
	d, err := m.touch(draftID)
	if err != nil {
		return nil, err
	}

	slot := domain.TimeSlot{Start: start, End: end, Available: true}
	if err := d.rec.SelectSlot(slot); err != nil {
		return nil, err
	}

	return m.stateOf(d), nil
}

// Submit отправляет черновик: авторитетная проверка выбранного слота
// и запись бронирования. Ошибки проверки и конфликты возвращаются
// sentinel-ошибками reconciler
func (m *Manager) Submit(ctx context.Context, draftID string, details domain.ClientDetails) (*domain.Booking, *models.DraftResponse, error) {
	if details.Name == "" {
		return nil, nil, fmt.Errorf("%w: clientName is required", ErrInvalidInput)
	}

	d, err := m.touch(draftID)
	if err != nil {
		return nil, nil, err
	}

	if _, err := d.rec.ValidateForSubmit(ctx); err != nil {
		return nil, m.stateOf(d), err
	}

	booking, err := d.rec.Commit(ctx, details)
	if err != nil {
		return nil, m.stateOf(d), err
	}

	m.logger.Info("DraftManager: draft=%s committed booking id=%d", draftID, booking.ID)
	return booking, m.stateOf(d), nil
}

// Discard удаляет черновик и останавливает его фоновый цикл
func (m *Manager) Discard(draftID string) error {
	m.mu.Lock()
	d, ok := m.drafts[draftID]
	if ok {
		delete(m.drafts, draftID)
	}
	m.mu.Unlock()

	if !ok {
		return ErrDraftNotFound
	}

	d.cancel()
	m.logger.Info("DraftManager: discarded draft=%s", draftID)
	return nil
}

// touch возвращает черновик и продлевает его время жизни
func (m *Manager) touch(draftID string) (*draft, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	d, ok := m.drafts[draftID]
	if !ok {
		return nil, ErrDraftNotFound
	}
	d.lastActive = time.Now()
	return d, nil
}

// refreshAndObserve обновляет снапшот и записывает метрики
// Инвалидация выбора фиксируется по смене notice после обновления
func (m *Manager) refreshAndObserve(ctx context.Context, d *draft) error {
	noticeBefore := d.rec.Notice()

	err := d.rec.RefreshSnapshot(ctx)
	switch {
	case err == nil:
		m.metrics.ObserveSnapshotRefresh("success")
	case errors.Is(err, reconciler.ErrNoScope):
		return nil
	default:
		m.metrics.ObserveSnapshotRefresh("error")
		m.logger.Warn("DraftManager: refresh failed for draft=%s: %v", d.id, err)
		return err
	}

	if noticeBefore != domain.NoticeSelectionInvalidated && d.rec.Notice() == domain.NoticeSelectionInvalidated {
		m.metrics.ObserveSelectionInvalidated()
	}
	return nil
}

// stateOf собирает ответное состояние черновика
func (m *Manager) stateOf(d *draft) *models.DraftResponse {
	response := &models.DraftResponse{
		DraftID:       d.id,
		Scope:         models.FromDomainScope(d.rec.Scope()),
		Snapshot:      models.FromDomainSnapshot(d.rec.Snapshot()),
		EditBookingID: d.rec.EditBookingID(),
	}

	if selection, ok := d.rec.Selection(); ok {
		slot := models.FromDomainSlot(selection)
		response.Selection = &slot
	}
	if notice := d.rec.Notice(); notice != "" {
		response.Notice = string(notice)
	}

	return response
}

// cleanupExpired удаляет черновики, к которым не обращались дольше TTL
func (m *Manager) cleanupExpired() {
	deadline := time.Now().Add(-m.opts.TTL)

	m.mu.Lock()
	expired := make([]*draft, 0)
	for id, d := range m.drafts {
		if d.lastActive.Before(deadline) {
			expired = append(expired, d)
			delete(m.drafts, id)
		}
	}
	m.mu.Unlock()

	for _, d := range expired {
		d.cancel()
		m.logger.Info("DraftManager: expired draft=%s", d.id)
	}
}
