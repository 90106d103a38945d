package drafts

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tutorlink/TL-AdminService/internal/domain"
	bookingRepo "github.com/tutorlink/TL-AdminService/internal/infra/storage/booking"
	"github.com/tutorlink/TL-AdminService/internal/reconciler"
	"github.com/tutorlink/TL-AdminService/pkg/ptr"
	"github.com/tutorlink/TL-AdminService/pkg/types"
)

// ---- фейки коллабораторов ----

type fakeOracle struct {
	mu        sync.Mutex
	listCalls int
	slots     []domain.TimeSlot
	listErr   error
	outcome   *domain.ValidationOutcome
}

func (f *fakeOracle) ListSlots(ctx context.Context, staffID int64, date time.Time) ([]domain.TimeSlot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.slots, nil
}

func (f *fakeOracle) ValidateSlot(ctx context.Context, staffID int64, date time.Time, start, end types.TimeString, excludeBookingID *int64) (*domain.ValidationOutcome, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.outcome != nil {
		return f.outcome, nil
	}
	return &domain.ValidationOutcome{Valid: true}, nil
}

func (f *fakeOracle) listCallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listCalls
}

type fakeStore struct{}

func (f *fakeStore) Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error) {
	created := *booking
	created.ID = 100
	return &created, nil
}

func (f *fakeStore) Update(ctx context.Context, bookingID int64, update *domain.BookingUpdate) (*domain.Booking, error) {
	return &domain.Booking{ID: bookingID}, nil
}

type fakeFeed struct{}

func (f *fakeFeed) Subscribe(ctx context.Context, staffID int64, date time.Time, onChange func()) (reconciler.Unsubscribe, error) {
	return func() {}, nil
}

type fakeBookingProvider struct {
	bookings map[int64]*domain.Booking
}

func (f *fakeBookingProvider) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	if b, ok := f.bookings[id]; ok {
		return b, nil
	}
	return nil, bookingRepo.ErrBookingNotFound
}

type fakeMetrics struct {
	mu          sync.Mutex
	refreshes   map[string]int
	invalidated int
}

func (f *fakeMetrics) ObserveSnapshotRefresh(result string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.refreshes == nil {
		f.refreshes = make(map[string]int)
	}
	f.refreshes[result]++
}

func (f *fakeMetrics) ObserveSelectionInvalidated() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.invalidated++
}

type noopLogger struct{}

func (noopLogger) Info(format string, v ...interface{})  {}
func (noopLogger) Warn(format string, v ...interface{})  {}
func (noopLogger) Error(format string, v ...interface{}) {}

// ---- вспомогательные конструкторы ----

func openSlot(start, end string) domain.TimeSlot {
	return domain.TimeSlot{
		Start:     types.TimeString(start),
		End:       types.TimeString(end),
		Available: true,
	}
}

func testDate() time.Time {
	return time.Date(2026, 9, 14, 0, 0, 0, 0, time.UTC)
}

func newTestManager(oracle *fakeOracle, provider *fakeBookingProvider) (*Manager, *fakeMetrics) {
	if provider == nil {
		provider = &fakeBookingProvider{}
	}
	metrics := &fakeMetrics{}
	mgr := NewManager(oracle, &fakeStore{}, &fakeFeed{}, provider, metrics, noopLogger{}, Options{
		TTL: time.Minute,
		Reconciler: reconciler.Options{
			PollInterval: time.Hour, // фоновый опрос не должен срабатывать в тестах
			FetchTimeout: time.Second,
		},
	})
	return mgr, metrics
}

// ---- тесты ----

func TestCreateDraft(t *testing.T) {
	mgr, _ := newTestManager(&fakeOracle{}, nil)
	defer mgr.Stop()

	state, err := mgr.Create(context.Background(), nil)
	require.NoError(t, err)
	assert.NotEmpty(t, state.DraftID)
	assert.Nil(t, state.Scope)
	assert.Nil(t, state.Snapshot)
	assert.Nil(t, state.Selection)
}

func TestCreateEditDraftSeedsFromBooking(t *testing.T) {
	oracle := &fakeOracle{slots: []domain.TimeSlot{openSlot("10:00", "11:00")}}
	provider := &fakeBookingProvider{bookings: map[int64]*domain.Booking{
		42: {
			ID:        42,
			StaffID:   7,
			Date:      testDate(),
			StartTime: "10:00",
			EndTime:   "11:00",
			Status:    domain.StatusConfirmed,
		},
	}}
	mgr, _ := newTestManager(oracle, provider)
	defer mgr.Stop()

	state, err := mgr.Create(context.Background(), ptr.Ptr(int64(42)))
	require.NoError(t, err)

	require.NotNil(t, state.Scope)
	assert.Equal(t, int64(7), state.Scope.StaffID)
	assert.Equal(t, "2026-09-14", state.Scope.Date)
	require.NotNil(t, state.Selection)
	assert.Equal(t, "10:00", state.Selection.Start)
	require.NotNil(t, state.EditBookingID)
	assert.Equal(t, int64(42), *state.EditBookingID)

	// Снапшот подтягивается синхронно при создании черновика редактирования
	require.NotNil(t, state.Snapshot)
	assert.Equal(t, 1, oracle.listCallCount())
}

func TestCreateEditDraftBookingNotFound(t *testing.T) {
	mgr, _ := newTestManager(&fakeOracle{}, nil)
	defer mgr.Stop()

	_, err := mgr.Create(context.Background(), ptr.Ptr(int64(404)))
	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestGetUnknownDraft(t *testing.T) {
	mgr, _ := newTestManager(&fakeOracle{}, nil)
	defer mgr.Stop()

	_, err := mgr.Get("no-such-draft")
	assert.ErrorIs(t, err, ErrDraftNotFound)
}

func TestSetScope(t *testing.T) {
	oracle := &fakeOracle{slots: []domain.TimeSlot{openSlot("10:00", "11:00")}}
	mgr, metrics := newTestManager(oracle, nil)
	defer mgr.Stop()

	created, err := mgr.Create(context.Background(), nil)
	require.NoError(t, err)

	state, err := mgr.SetScope(context.Background(), created.DraftID, 7, testDate())
	require.NoError(t, err)

	require.NotNil(t, state.Scope)
	assert.Equal(t, int64(7), state.Scope.StaffID)
	require.NotNil(t, state.Snapshot)
	require.Len(t, state.Snapshot.Slots, 1)
	assert.Equal(t, 1, metrics.refreshes["success"])
}

func TestSetScopeInvalidStaff(t *testing.T) {
	mgr, _ := newTestManager(&fakeOracle{}, nil)
	defer mgr.Stop()

	created, err := mgr.Create(context.Background(), nil)
	require.NoError(t, err)

	_, err = mgr.SetScope(context.Background(), created.DraftID, 0, testDate())
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestSelectSlot(t *testing.T) {
	oracle := &fakeOracle{slots: []domain.TimeSlot{
		openSlot("10:00", "11:00"),
		{Start: "11:00", End: "12:00", Available: false},
	}}
	mgr, _ := newTestManager(oracle, nil)
	defer mgr.Stop()

	created, err := mgr.Create(context.Background(), nil)
	require.NoError(t, err)
	_, err = mgr.SetScope(context.Background(), created.DraftID, 7, testDate())
	require.NoError(t, err)

	state, err := mgr.SelectSlot(created.DraftID, "10:00", "11:00")
	require.NoError(t, err)
	require.NotNil(t, state.Selection)
	assert.Equal(t, "10:00", state.Selection.Start)

	// Занятый слот выбрать нельзя
	_, err = mgr.SelectSlot(created.DraftID, "11:00", "12:00")
	assert.ErrorIs(t, err, reconciler.ErrSlotUnavailable)
}

func TestSubmitDraft(t *testing.T) {
	oracle := &fakeOracle{slots: []domain.TimeSlot{openSlot("10:00", "11:00")}}
	mgr, _ := newTestManager(oracle, nil)
	defer mgr.Stop()

	created, err := mgr.Create(context.Background(), nil)
	require.NoError(t, err)
	_, err = mgr.SetScope(context.Background(), created.DraftID, 7, testDate())
	require.NoError(t, err)
	_, err = mgr.SelectSlot(created.DraftID, "10:00", "11:00")
	require.NoError(t, err)

	booking, _, err := mgr.Submit(context.Background(), created.DraftID, domain.ClientDetails{Name: "Диляра"})
	require.NoError(t, err)
	assert.Equal(t, int64(100), booking.ID)
	assert.Equal(t, int64(7), booking.StaffID)
}

func TestSubmitRequiresClientName(t *testing.T) {
	mgr, _ := newTestManager(&fakeOracle{}, nil)
	defer mgr.Stop()

	created, err := mgr.Create(context.Background(), nil)
	require.NoError(t, err)

	_, _, err = mgr.Submit(context.Background(), created.DraftID, domain.ClientDetails{})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestSubmitSlotNoLongerAvailable(t *testing.T) {
	oracle := &fakeOracle{slots: []domain.TimeSlot{openSlot("10:00", "11:00")}}
	mgr, _ := newTestManager(oracle, nil)
	defer mgr.Stop()

	created, err := mgr.Create(context.Background(), nil)
	require.NoError(t, err)
	_, err = mgr.SetScope(context.Background(), created.DraftID, 7, testDate())
	require.NoError(t, err)
	_, err = mgr.SelectSlot(created.DraftID, "10:00", "11:00")
	require.NoError(t, err)

	// Движок авторитетно отклоняет слот на этапе отправки
	oracle.outcome = &domain.ValidationOutcome{Valid: false, Reason: "slot taken"}

	_, state, err := mgr.Submit(context.Background(), created.DraftID, domain.ClientDetails{Name: "Диляра"})
	assert.ErrorIs(t, err, reconciler.ErrSlotNoLongerAvailable)
	require.NotNil(t, state, "конфликт должен возвращать состояние черновика")
	assert.NotEmpty(t, state.DraftID)
}

func TestRefreshObservesInvalidation(t *testing.T) {
	oracle := &fakeOracle{slots: []domain.TimeSlot{openSlot("10:00", "11:00")}}
	mgr, metrics := newTestManager(oracle, nil)
	defer mgr.Stop()

	created, err := mgr.Create(context.Background(), nil)
	require.NoError(t, err)
	_, err = mgr.SetScope(context.Background(), created.DraftID, 7, testDate())
	require.NoError(t, err)
	_, err = mgr.SelectSlot(created.DraftID, "10:00", "11:00")
	require.NoError(t, err)

	// Слот пропадает из нового снапшота
	oracle.mu.Lock()
	oracle.slots = []domain.TimeSlot{{Start: "10:00", End: "11:00", Available: false}}
	oracle.mu.Unlock()

	state, err := mgr.Refresh(context.Background(), created.DraftID)
	require.NoError(t, err)
	assert.Equal(t, string(domain.NoticeSelectionInvalidated), state.Notice)
	assert.Nil(t, state.Selection)
	assert.Equal(t, 1, metrics.invalidated)
}

func TestDiscardDraft(t *testing.T) {
	mgr, _ := newTestManager(&fakeOracle{}, nil)
	defer mgr.Stop()

	created, err := mgr.Create(context.Background(), nil)
	require.NoError(t, err)

	require.NoError(t, mgr.Discard(created.DraftID))
	assert.ErrorIs(t, mgr.Discard(created.DraftID), ErrDraftNotFound)

	_, err = mgr.Get(created.DraftID)
	assert.ErrorIs(t, err, ErrDraftNotFound)
}

func TestCleanupExpiredDrafts(t *testing.T) {
	mgr, _ := newTestManager(&fakeOracle{}, nil)
	defer mgr.Stop()

	created, err := mgr.Create(context.Background(), nil)
	require.NoError(t, err)

	mgr.mu.Lock()
	mgr.drafts[created.DraftID].lastActive = time.Now().Add(-2 * time.Minute)
	mgr.mu.Unlock()

	mgr.cleanupExpired()

	_, err = mgr.Get(created.DraftID)
	assert.ErrorIs(t, err, ErrDraftNotFound)
}
