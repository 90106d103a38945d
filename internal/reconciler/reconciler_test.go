package reconciler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tutorlink/TL-AdminService/internal/domain"
	"github.com/tutorlink/TL-AdminService/pkg/types"
)

// ---- фейки коллабораторов ----

type fakeOracle struct {
	mu            sync.Mutex
	listCalls     int
	validateCalls int

	listFn     func(staffID int64, date time.Time) ([]domain.TimeSlot, error)
	validateFn func(staffID int64, date time.Time, start, end types.TimeString, excludeBookingID *int64) (*domain.ValidationOutcome, error)
}

func (f *fakeOracle) ListSlots(ctx context.Context, staffID int64, date time.Time) ([]domain.TimeSlot, error) {
	f.mu.Lock()
	f.listCalls++
	fn := f.listFn
	f.mu.Unlock()
	if fn == nil {
		return nil, nil
	}
	return fn(staffID, date)
}

func (f *fakeOracle) ValidateSlot(ctx context.Context, staffID int64, date time.Time, start, end types.TimeString, excludeBookingID *int64) (*domain.ValidationOutcome, error) {
	f.mu.Lock()
	f.validateCalls++
	fn := f.validateFn
	f.mu.Unlock()
	if fn == nil {
		return &domain.ValidationOutcome{Valid: true}, nil
	}
	return fn(staffID, date, start, end, excludeBookingID)
}

func (f *fakeOracle) listCallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listCalls
}

type fakeStore struct {
	mu          sync.Mutex
	createCalls int
	updateCalls int
	createFn    func(booking *domain.Booking) (*domain.Booking, error)
	updateFn    func(bookingID int64, update *domain.BookingUpdate) (*domain.Booking, error)
}

func (f *fakeStore) Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error) {
	f.mu.Lock()
	f.createCalls++
	fn := f.createFn
	f.mu.Unlock()
	if fn == nil {
		created := *booking
		created.ID = 1
		return &created, nil
	}
	return fn(booking)
}

func (f *fakeStore) Update(ctx context.Context, bookingID int64, update *domain.BookingUpdate) (*domain.Booking, error) {
	f.mu.Lock()
	f.updateCalls++
	fn := f.updateFn
	f.mu.Unlock()
	if fn == nil {
		return &domain.Booking{ID: bookingID}, nil
	}
	return fn(bookingID, update)
}

type fakeFeed struct {
	mu         sync.Mutex
	subscribes int
	onChange   func()
}

func (f *fakeFeed) Subscribe(ctx context.Context, staffID int64, date time.Time, onChange func()) (Unsubscribe, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.subscribes++
	f.onChange = onChange
	return func() {}, nil
}

type noopLogger struct{}

func (noopLogger) Info(format string, v ...interface{})  {}
func (noopLogger) Warn(format string, v ...interface{})  {}
func (noopLogger) Error(format string, v ...interface{}) {}

// ---- вспомогательные конструкторы ----

func slot(start, end string, available bool) domain.TimeSlot {
	return domain.TimeSlot{
		Start:     types.TimeString(start),
		End:       types.TimeString(end),
		Available: available,
	}
}

func fixedSlots(slots ...domain.TimeSlot) func(int64, time.Time) ([]domain.TimeSlot, error) {
	return func(int64, time.Time) ([]domain.TimeSlot, error) {
		return slots, nil
	}
}

func newTestReconciler(oracle *fakeOracle, store *fakeStore) *Reconciler {
	return New(oracle, store, nil, Options{}, noopLogger{})
}

var testDate = time.Date(2026, 9, 14, 0, 0, 0, 0, time.UTC)

// ---- тесты ----

func TestRefreshSnapshot_NoScope(t *testing.T) {
	r := newTestReconciler(&fakeOracle{}, &fakeStore{})

	err := r.RefreshSnapshot(context.Background())

	assert.ErrorIs(t, err, ErrNoScope)
}

func TestRefreshSnapshot_AppliesSnapshot(t *testing.T) {
	oracle := &fakeOracle{listFn: fixedSlots(
		slot("09:00", "10:00", true),
		slot("10:00", "11:00", false),
	)}
	r := newTestReconciler(oracle, &fakeStore{})
	r.SetScope(1, testDate)

	err := r.RefreshSnapshot(context.Background())

	require.NoError(t, err)
	snap := r.Snapshot()
	require.NotNil(t, snap)
	assert.Len(t, snap.Slots, 2)
	assert.Equal(t, int64(1), snap.Scope.StaffID)
}

func TestRefreshSnapshot_PreservesOracleOrder(t *testing.T) {
	// Дубликаты и нарушенный порядок от движка передаются как есть,
	// без пересортировки и дедупликации
	oracle := &fakeOracle{listFn: fixedSlots(
		slot("11:00", "12:00", true),
		slot("09:00", "10:00", true),
		slot("09:00", "10:00", true),
	)}
	r := newTestReconciler(oracle, &fakeStore{})
	r.SetScope(1, testDate)

	require.NoError(t, r.RefreshSnapshot(context.Background()))

	snap := r.Snapshot()
	require.Len(t, snap.Slots, 3)
	assert.Equal(t, types.TimeString("11:00"), snap.Slots[0].Start)
	assert.Equal(t, types.TimeString("09:00"), snap.Slots[1].Start)
	assert.Equal(t, types.TimeString("09:00"), snap.Slots[2].Start)
}

func TestRefreshSnapshot_FetchErrorKeepsPreviousState(t *testing.T) {
	oracle := &fakeOracle{listFn: fixedSlots(slot("09:00", "10:00", true))}
	r := newTestReconciler(oracle, &fakeStore{})
	r.SetScope(1, testDate)
	require.NoError(t, r.RefreshSnapshot(context.Background()))
	require.NoError(t, r.SelectSlot(slot("09:00", "10:00", true)))

	oracle.mu.Lock()
	oracle.listFn = func(int64, time.Time) ([]domain.TimeSlot, error) {
		return nil, errors.New("connection refused")
	}
	oracle.mu.Unlock()

	err := r.RefreshSnapshot(context.Background())

	// Сетевой сбой не уничтожает ни снапшот, ни выбор пользователя
	assert.ErrorIs(t, err, ErrAvailabilityFetchFailed)
	assert.NotNil(t, r.Snapshot())
	_, selected := r.Selection()
	assert.True(t, selected)
	assert.Empty(t, r.Notice())
}

func TestRefreshSnapshot_InvalidatesLostSelection(t *testing.T) {
	// Сценарий из брони конкурента: слот 09:00-10:00 занят между снапшотами
	oracle := &fakeOracle{listFn: fixedSlots(
		slot("09:00", "10:00", true),
		slot("10:00", "11:00", false),
	)}
	r := newTestReconciler(oracle, &fakeStore{})
	r.SetScope(1, testDate)
	require.NoError(t, r.RefreshSnapshot(context.Background()))
	require.NoError(t, r.SelectSlot(slot("09:00", "10:00", true)))

	oracle.mu.Lock()
	oracle.listFn = fixedSlots(
		slot("09:00", "10:00", false),
		slot("10:00", "11:00", true),
	)
	oracle.mu.Unlock()

	require.NoError(t, r.RefreshSnapshot(context.Background()))

	_, selected := r.Selection()
	assert.False(t, selected)
	assert.Equal(t, domain.NoticeSelectionInvalidated, r.Notice())
}

func TestRefreshSnapshot_KeepsSurvivingSelection(t *testing.T) {
	oracle := &fakeOracle{listFn: fixedSlots(
		slot("09:00", "10:00", true),
		slot("10:00", "11:00", true),
	)}
	r := newTestReconciler(oracle, &fakeStore{})
	r.SetScope(1, testDate)
	require.NoError(t, r.RefreshSnapshot(context.Background()))
	require.NoError(t, r.SelectSlot(slot("09:00", "10:00", true)))

	// Реконсиляция идемпотентна, пока выбор остаётся валидным
	require.NoError(t, r.RefreshSnapshot(context.Background()))
	require.NoError(t, r.RefreshSnapshot(context.Background()))

	selection, selected := r.Selection()
	require.True(t, selected)
	assert.Equal(t, types.TimeString("09:00"), selection.Start)
	assert.Empty(t, r.Notice())
}

func TestRefreshSnapshot_DiscardsStaleScopeResponse(t *testing.T) {
	gateA := make(chan struct{})
	oracle := &fakeOracle{}
	oracle.listFn = func(staffID int64, _ time.Time) ([]domain.TimeSlot, error) {
		if staffID == 1 {
			<-gateA // ответ для scope A задерживается
			return []domain.TimeSlot{slot("08:00", "09:00", true)}, nil
		}
		return []domain.TimeSlot{slot("14:00", "15:00", true)}, nil
	}
	r := newTestReconciler(oracle, &fakeStore{})

	r.SetScope(1, testDate)
	refreshA := make(chan error, 1)
	go func() { refreshA <- r.RefreshSnapshot(context.Background()) }()

	// Дожидаемся, пока запрос для A реально уйдёт в движок
	require.Eventually(t, func() bool { return oracle.listCallCount() == 1 },
		time.Second, time.Millisecond)

	r.SetScope(2, testDate)
	require.NoError(t, r.RefreshSnapshot(context.Background()))

	// Поздний ответ для вытесненного scope A должен быть отброшен
	close(gateA)
	require.NoError(t, <-refreshA)

	snap := r.Snapshot()
	require.NotNil(t, snap)
	assert.Equal(t, int64(2), snap.Scope.StaffID)
	assert.Equal(t, types.TimeString("14:00"), snap.Slots[0].Start)
}

func TestRefreshSnapshot_CoalescesConcurrentCalls(t *testing.T) {
	gate := make(chan struct{})
	oracle := &fakeOracle{}
	oracle.listFn = func(int64, time.Time) ([]domain.TimeSlot, error) {
		<-gate
		return []domain.TimeSlot{slot("09:00", "10:00", true)}, nil
	}
	r := newTestReconciler(oracle, &fakeStore{})
	r.SetScope(1, testDate)

	results := make(chan error, 2)
	go func() { results <- r.RefreshSnapshot(context.Background()) }()
	require.Eventually(t, func() bool { return oracle.listCallCount() == 1 },
		time.Second, time.Millisecond)
	go func() { results <- r.RefreshSnapshot(context.Background()) }()
	// Даём второму вызову дойти до ожидания результата первого
	time.Sleep(50 * time.Millisecond)

	close(gate)
	require.NoError(t, <-results)
	require.NoError(t, <-results)

	// Второй вызов дождался первого, а не запустил параллельный запрос
	assert.Equal(t, 1, oracle.listCallCount())
}

func TestSelectSlot_RejectsSlotNotInSnapshot(t *testing.T) {
	oracle := &fakeOracle{listFn: fixedSlots(slot("09:00", "10:00", true))}
	r := newTestReconciler(oracle, &fakeStore{})
	r.SetScope(1, testDate)
	require.NoError(t, r.RefreshSnapshot(context.Background()))

	err := r.SelectSlot(slot("12:00", "13:00", true))

	assert.ErrorIs(t, err, ErrSlotUnavailable)
	_, selected := r.Selection()
	assert.False(t, selected)
}

func TestSelectSlot_RejectsUnavailableSlot(t *testing.T) {
	oracle := &fakeOracle{listFn: fixedSlots(
		slot("09:00", "10:00", true),
		slot("10:00", "11:00", false),
	)}
	r := newTestReconciler(oracle, &fakeStore{})
	r.SetScope(1, testDate)
	require.NoError(t, r.RefreshSnapshot(context.Background()))
	require.NoError(t, r.SelectSlot(slot("09:00", "10:00", true)))

	err := r.SelectSlot(slot("10:00", "11:00", false))

	// Отказ не трогает уже сделанный выбор
	assert.ErrorIs(t, err, ErrSlotUnavailable)
	selection, selected := r.Selection()
	require.True(t, selected)
	assert.Equal(t, types.TimeString("09:00"), selection.Start)
}

func TestSelectSlot_WithoutSnapshot(t *testing.T) {
	r := newTestReconciler(&fakeOracle{}, &fakeStore{})
	r.SetScope(1, testDate)

	err := r.SelectSlot(slot("09:00", "10:00", true))

	assert.ErrorIs(t, err, ErrSlotUnavailable)
}

func TestSetScope_AlwaysClearsSelection(t *testing.T) {
	oracle := &fakeOracle{listFn: fixedSlots(slot("09:00", "10:00", true))}
	r := newTestReconciler(oracle, &fakeStore{})
	r.SetScope(1, testDate)
	require.NoError(t, r.RefreshSnapshot(context.Background()))
	require.NoError(t, r.SelectSlot(slot("09:00", "10:00", true)))

	r.SetScope(1, testDate.AddDate(0, 0, 1))

	_, selected := r.Selection()
	assert.False(t, selected)
	assert.Nil(t, r.Snapshot())
	assert.Empty(t, r.Notice())
}

func TestValidateForSubmit_NoSelection(t *testing.T) {
	r := newTestReconciler(&fakeOracle{}, &fakeStore{})
	r.SetScope(1, testDate)

	_, err := r.ValidateForSubmit(context.Background())

	assert.ErrorIs(t, err, ErrNoSelection)
}

func TestValidateForSubmit_Success(t *testing.T) {
	oracle := &fakeOracle{listFn: fixedSlots(slot("09:00", "10:00", true))}
	r := newTestReconciler(oracle, &fakeStore{})
	r.SetScope(1, testDate)
	require.NoError(t, r.RefreshSnapshot(context.Background()))
	require.NoError(t, r.SelectSlot(slot("09:00", "10:00", true)))

	outcome, err := r.ValidateForSubmit(context.Background())

	require.NoError(t, err)
	assert.True(t, outcome.Valid)
}

func TestValidateForSubmit_InvalidClearsSelectionAndRefreshes(t *testing.T) {
	oracle := &fakeOracle{listFn: fixedSlots(slot("09:00", "10:00", true))}
	oracle.validateFn = func(int64, time.Time, types.TimeString, types.TimeString, *int64) (*domain.ValidationOutcome, error) {
		return &domain.ValidationOutcome{Valid: false, Reason: "taken"}, nil
	}
	r := newTestReconciler(oracle, &fakeStore{})
	r.SetScope(1, testDate)
	require.NoError(t, r.RefreshSnapshot(context.Background()))
	require.NoError(t, r.SelectSlot(slot("09:00", "10:00", true)))
	callsBefore := oracle.listCallCount()

	_, err := r.ValidateForSubmit(context.Background())

	assert.ErrorIs(t, err, ErrSlotNoLongerAvailable)
	_, selected := r.Selection()
	assert.False(t, selected)
	// После отказа снапшот обновляется автоматически
	assert.Equal(t, callsBefore+1, oracle.listCallCount())
}

func TestValidateForSubmit_TransportFailureKeepsSelection(t *testing.T) {
	oracle := &fakeOracle{listFn: fixedSlots(slot("09:00", "10:00", true))}
	oracle.validateFn = func(int64, time.Time, types.TimeString, types.TimeString, *int64) (*domain.ValidationOutcome, error) {
		return nil, errors.New("availability engine: 502")
	}
	r := newTestReconciler(oracle, &fakeStore{})
	r.SetScope(1, testDate)
	require.NoError(t, r.RefreshSnapshot(context.Background()))
	require.NoError(t, r.SelectSlot(slot("09:00", "10:00", true)))

	_, err := r.ValidateForSubmit(context.Background())

	assert.ErrorIs(t, err, ErrAvailabilityFetchFailed)
	_, selected := r.Selection()
	assert.True(t, selected)
}

func TestValidateForSubmit_PassesExcludedBookingID(t *testing.T) {
	var gotExclude *int64
	oracle := &fakeOracle{listFn: fixedSlots(slot("09:00", "10:00", true))}
	oracle.validateFn = func(_ int64, _ time.Time, _, _ types.TimeString, excludeBookingID *int64) (*domain.ValidationOutcome, error) {
		gotExclude = excludeBookingID
		return &domain.ValidationOutcome{Valid: true}, nil
	}
	r := newTestReconciler(oracle, &fakeStore{})
	r.SeedFromBooking(&domain.Booking{
		ID:        42,
		StaffID:   1,
		Date:      testDate,
		StartTime: "09:00",
		EndTime:   "10:00",
	})

	_, err := r.ValidateForSubmit(context.Background())

	require.NoError(t, err)
	require.NotNil(t, gotExclude)
	assert.Equal(t, int64(42), *gotExclude)
}

func TestCommit_RequiresValidation(t *testing.T) {
	oracle := &fakeOracle{listFn: fixedSlots(slot("09:00", "10:00", true))}
	r := newTestReconciler(oracle, &fakeStore{})
	r.SetScope(1, testDate)
	require.NoError(t, r.RefreshSnapshot(context.Background()))
	require.NoError(t, r.SelectSlot(slot("09:00", "10:00", true)))

	_, err := r.Commit(context.Background(), domain.ClientDetails{Name: "Aziza"})

	assert.ErrorIs(t, err, ErrSelectionNotValidated)
}

func TestCommit_ReselectionInvalidatesValidation(t *testing.T) {
	oracle := &fakeOracle{listFn: fixedSlots(
		slot("09:00", "10:00", true),
		slot("10:00", "11:00", true),
	)}
	r := newTestReconciler(oracle, &fakeStore{})
	r.SetScope(1, testDate)
	require.NoError(t, r.RefreshSnapshot(context.Background()))
	require.NoError(t, r.SelectSlot(slot("09:00", "10:00", true)))
	_, err := r.ValidateForSubmit(context.Background())
	require.NoError(t, err)

	// Смена выбора после валидации требует новой валидации
	require.NoError(t, r.SelectSlot(slot("10:00", "11:00", true)))

	_, err = r.Commit(context.Background(), domain.ClientDetails{Name: "Aziza"})
	assert.ErrorIs(t, err, ErrSelectionNotValidated)
}

func TestCommit_Success(t *testing.T) {
	oracle := &fakeOracle{listFn: fixedSlots(slot("09:00", "10:00", true))}
	store := &fakeStore{}
	r := newTestReconciler(oracle, store)
	r.SetScope(1, testDate)
	require.NoError(t, r.RefreshSnapshot(context.Background()))
	require.NoError(t, r.SelectSlot(slot("09:00", "10:00", true)))
	_, err := r.ValidateForSubmit(context.Background())
	require.NoError(t, err)

	phone := "+998901234567"
	record, err := r.Commit(context.Background(), domain.ClientDetails{Name: "Aziza", Phone: &phone})

	require.NoError(t, err)
	assert.Equal(t, int64(1), record.ID)
	assert.Equal(t, types.TimeString("09:00"), record.StartTime)
	assert.Equal(t, "Aziza", record.ClientName)

	// Успешная отправка уничтожает выбор
	_, selected := r.Selection()
	assert.False(t, selected)
}

func TestCommit_EditFlowUsesUpdate(t *testing.T) {
	oracle := &fakeOracle{listFn: fixedSlots(
		slot("09:00", "10:00", true),
		slot("11:00", "12:00", true),
	)}
	store := &fakeStore{}
	r := newTestReconciler(oracle, store)
	r.SeedFromBooking(&domain.Booking{
		ID:        42,
		StaffID:   1,
		Date:      testDate,
		StartTime: "09:00",
		EndTime:   "10:00",
	})
	require.NoError(t, r.RefreshSnapshot(context.Background()))
	require.NoError(t, r.SelectSlot(slot("11:00", "12:00", true)))
	_, err := r.ValidateForSubmit(context.Background())
	require.NoError(t, err)

	record, err := r.Commit(context.Background(), domain.ClientDetails{Name: "Aziza"})

	require.NoError(t, err)
	assert.Equal(t, int64(42), record.ID)
	assert.Equal(t, 1, store.updateCalls)
	assert.Equal(t, 0, store.createCalls)
}

func TestCommit_ConflictTreatedAsSlotNoLongerAvailable(t *testing.T) {
	oracle := &fakeOracle{listFn: fixedSlots(slot("09:00", "10:00", true))}
	store := &fakeStore{createFn: func(*domain.Booking) (*domain.Booking, error) {
		return nil, fmt.Errorf("%w: overlapping booking exists", ErrConflictDetected)
	}}
	r := newTestReconciler(oracle, store)
	r.SetScope(1, testDate)
	require.NoError(t, r.RefreshSnapshot(context.Background()))
	require.NoError(t, r.SelectSlot(slot("09:00", "10:00", true)))
	_, err := r.ValidateForSubmit(context.Background())
	require.NoError(t, err)
	callsBefore := oracle.listCallCount()

	_, err = r.Commit(context.Background(), domain.ClientDetails{Name: "Aziza"})

	// Гонка, проигранная между валидацией и записью, равносильна
	// отрицательной валидации
	assert.ErrorIs(t, err, ErrSlotNoLongerAvailable)
	_, selected := r.Selection()
	assert.False(t, selected)
	assert.Equal(t, callsBefore+1, oracle.listCallCount())
}

func TestCommit_StoreUnavailableKeepsState(t *testing.T) {
	oracle := &fakeOracle{listFn: fixedSlots(slot("09:00", "10:00", true))}
	store := &fakeStore{createFn: func(*domain.Booking) (*domain.Booking, error) {
		return nil, fmt.Errorf("%w: connection refused", ErrStoreUnavailable)
	}}
	r := newTestReconciler(oracle, store)
	r.SetScope(1, testDate)
	require.NoError(t, r.RefreshSnapshot(context.Background()))
	require.NoError(t, r.SelectSlot(slot("09:00", "10:00", true)))
	_, err := r.ValidateForSubmit(context.Background())
	require.NoError(t, err)

	_, err = r.Commit(context.Background(), domain.ClientDetails{Name: "Aziza"})

	// Инфраструктурный сбой не трогает состояние, отправку можно повторить
	assert.ErrorIs(t, err, ErrStoreUnavailable)
	selection, selected := r.Selection()
	require.True(t, selected)
	assert.Equal(t, types.TimeString("09:00"), selection.Start)
}

func TestSelectionSurvives(t *testing.T) {
	picked := slot("09:00", "10:00", true)

	tests := []struct {
		name     string
		snapshot []domain.TimeSlot
		want     bool
	}{
		{
			name:     "slot present and available",
			snapshot: []domain.TimeSlot{slot("09:00", "10:00", true)},
			want:     true,
		},
		{
			name:     "slot present but taken",
			snapshot: []domain.TimeSlot{slot("09:00", "10:00", false)},
			want:     false,
		},
		{
			name:     "slot missing",
			snapshot: []domain.TimeSlot{slot("10:00", "11:00", true)},
			want:     false,
		},
		{
			name:     "empty snapshot",
			snapshot: nil,
			want:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := domain.NewAvailabilitySnapshot(
				domain.Scope{StaffID: 1, Date: testDate}, tt.snapshot, time.Now())
			assert.Equal(t, tt.want, selectionSurvives(&picked, snap))
		})
	}
}
