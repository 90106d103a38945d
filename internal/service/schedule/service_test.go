package schedule

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tutorlink/TL-AdminService/internal/domain"
	scheduleRepo "github.com/tutorlink/TL-AdminService/internal/infra/storage/schedule"
	staffRepo "github.com/tutorlink/TL-AdminService/internal/infra/storage/staff"
	"github.com/tutorlink/TL-AdminService/pkg/types"
)

// ---- фейки коллабораторов ----

type fakeScheduleRepo struct {
	days       map[string]*domain.DaySchedule // ключ YYYY-MM-DD
	addedSlots []domain.ScheduleSlot
	removed    []int64
	nextSlotID int64
}

func dayKey(date time.Time) string {
	return date.Format(domain.DateFormat)
}

func (f *fakeScheduleRepo) GetRange(ctx context.Context, staffID int64, from, to time.Time) ([]*domain.DaySchedule, error) {
	var result []*domain.DaySchedule
	for date := from; !date.After(to); date = date.AddDate(0, 0, 1) {
		if day, ok := f.days[dayKey(date)]; ok {
			result = append(result, day)
		}
	}
	return result, nil
}

func (f *fakeScheduleRepo) GetByDate(ctx context.Context, staffID int64, date time.Time) (*domain.DaySchedule, error) {
	day, ok := f.days[dayKey(date)]
	if !ok {
		return nil, scheduleRepo.ErrScheduleNotFound
	}
	return day, nil
}

func (f *fakeScheduleRepo) UpsertWorkingDay(ctx context.Context, staffID int64, date time.Time, isWorking bool) (int64, error) {
	key := dayKey(date)
	if day, ok := f.days[key]; ok {
		day.IsWorking = isWorking
		return *day.ID, nil
	}
	id := int64(len(f.days) + 1)
	if f.days == nil {
		f.days = make(map[string]*domain.DaySchedule)
	}
	f.days[key] = &domain.DaySchedule{
		ID:        &id,
		StaffID:   staffID,
		Date:      date,
		IsWorking: isWorking,
		Slots:     []domain.ScheduleSlot{},
	}
	return id, nil
}

func (f *fakeScheduleRepo) AddSlot(ctx context.Context, scheduleID int64, start, end string) (*domain.ScheduleSlot, error) {
	f.nextSlotID++
	slot := domain.ScheduleSlot{
		ID:    f.nextSlotID,
		Start: types.TimeString(start),
		End:   types.TimeString(end),
	}
	f.addedSlots = append(f.addedSlots, slot)
	for _, day := range f.days {
		if day.ID != nil && *day.ID == scheduleID {
			day.Slots = append(day.Slots, slot)
		}
	}
	return &slot, nil
}

func (f *fakeScheduleRepo) RemoveSlot(ctx context.Context, slotID int64) error {
	for _, day := range f.days {
		for i, slot := range day.Slots {
			if slot.ID == slotID {
				day.Slots = append(day.Slots[:i], day.Slots[i+1:]...)
				f.removed = append(f.removed, slotID)
				return nil
			}
		}
	}
	return scheduleRepo.ErrSlotNotFound
}

type fakeStaffRepo struct {
	missing bool
}

func (f *fakeStaffRepo) GetByID(ctx context.Context, id int64) (*domain.StaffMember, error) {
	if f.missing {
		return nil, staffRepo.ErrStaffNotFound
	}
	return &domain.StaffMember{ID: id, Name: "Aziza Karimova"}, nil
}

type passthroughTxManager struct{}

func (passthroughTxManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (passthroughTxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (passthroughTxManager) DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type noopLogger struct{}

func (noopLogger) Info(format string, v ...interface{})  {}
func (noopLogger) Warn(format string, v ...interface{})  {}
func (noopLogger) Error(format string, v ...interface{}) {}

func newTestService(repo *fakeScheduleRepo, staff *fakeStaffRepo) *Service {
	if staff == nil {
		staff = &fakeStaffRepo{}
	}
	return NewService(repo, staff, passthroughTxManager{}, noopLogger{})
}

func date(day int) time.Time {
	return time.Date(2026, 9, day, 0, 0, 0, 0, time.UTC)
}

func workingDay(id int64, day time.Time, slots ...domain.ScheduleSlot) *domain.DaySchedule {
	return &domain.DaySchedule{
		ID:        &id,
		StaffID:   7,
		Date:      day,
		IsWorking: true,
		Slots:     slots,
	}
}

// ---- тесты ----

func TestGetRangeFillsMissingDays(t *testing.T) {
	repo := &fakeScheduleRepo{
		days: map[string]*domain.DaySchedule{
			dayKey(date(15)): workingDay(1, date(15), domain.ScheduleSlot{ID: 1, Start: "09:00", End: "13:00"}),
		},
	}
	svc := newTestService(repo, nil)

	result, err := svc.GetRange(context.Background(), 7, date(14), date(16))
	require.NoError(t, err)
	require.Len(t, result.Days, 3)

	assert.Equal(t, "2026-09-14", result.Days[0].Date)
	assert.False(t, result.Days[0].IsWorking)
	assert.Empty(t, result.Days[0].Slots)

	assert.Equal(t, "2026-09-15", result.Days[1].Date)
	assert.True(t, result.Days[1].IsWorking)
	require.Len(t, result.Days[1].Slots, 1)
	assert.Equal(t, "09:00", result.Days[1].Slots[0].Start)

	assert.False(t, result.Days[2].IsWorking)
}

func TestGetRangeInvalidRange(t *testing.T) {
	svc := newTestService(&fakeScheduleRepo{}, nil)

	_, err := svc.GetRange(context.Background(), 7, date(16), date(14))
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.GetRange(context.Background(), 7, date(1), date(1).AddDate(0, 0, domain.MaxScheduleRangeDays+1))
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestGetRangeStaffNotFound(t *testing.T) {
	svc := newTestService(&fakeScheduleRepo{}, &fakeStaffRepo{missing: true})

	_, err := svc.GetRange(context.Background(), 404, date(14), date(16))
	assert.ErrorIs(t, err, ErrStaffNotFound)
}

func TestSetWorkingDay(t *testing.T) {
	repo := &fakeScheduleRepo{}
	svc := newTestService(repo, nil)

	result, err := svc.SetWorkingDay(context.Background(), 7, date(15), true)
	require.NoError(t, err)
	assert.Equal(t, "2026-09-15", result.Date)
	assert.True(t, result.IsWorking)
	assert.Empty(t, result.Slots)

	// Повторный вызов переключает существующий день
	result, err = svc.SetWorkingDay(context.Background(), 7, date(15), false)
	require.NoError(t, err)
	assert.False(t, result.IsWorking)
}

func TestAddSlot(t *testing.T) {
	repo := &fakeScheduleRepo{
		days: map[string]*domain.DaySchedule{
			dayKey(date(15)): workingDay(1, date(15)),
		},
	}
	svc := newTestService(repo, nil)

	result, err := svc.AddSlot(context.Background(), 7, date(15), "09:00", "13:00")
	require.NoError(t, err)
	require.Len(t, result.Slots, 1)
	assert.Equal(t, "09:00", result.Slots[0].Start)
	assert.Equal(t, "13:00", result.Slots[0].End)
}

func TestAddSlotInvalidRange(t *testing.T) {
	svc := newTestService(&fakeScheduleRepo{}, nil)

	_, err := svc.AddSlot(context.Background(), 7, date(15), "13:00", "09:00")
	assert.ErrorIs(t, err, ErrInvalidTimeRange)

	_, err = svc.AddSlot(context.Background(), 7, date(15), "9am", "13:00")
	assert.ErrorIs(t, err, ErrInvalidTimeRange)

	_, err = svc.AddSlot(context.Background(), 7, date(15), "09:00", "09:00")
	assert.ErrorIs(t, err, ErrInvalidTimeRange)
}

func TestAddSlotDayNotWorking(t *testing.T) {
	dayOff := workingDay(1, date(15))
	dayOff.IsWorking = false
	repo := &fakeScheduleRepo{
		days: map[string]*domain.DaySchedule{dayKey(date(15)): dayOff},
	}
	svc := newTestService(repo, nil)

	_, err := svc.AddSlot(context.Background(), 7, date(15), "09:00", "13:00")
	assert.ErrorIs(t, err, ErrDayNotWorking)

	// День без записи в расписании тоже нерабочий
	_, err = svc.AddSlot(context.Background(), 7, date(16), "09:00", "13:00")
	assert.ErrorIs(t, err, ErrDayNotWorking)
}

func TestAddSlotOverlap(t *testing.T) {
	repo := &fakeScheduleRepo{
		days: map[string]*domain.DaySchedule{
			dayKey(date(15)): workingDay(1, date(15), domain.ScheduleSlot{ID: 1, Start: "09:00", End: "13:00"}),
		},
	}
	svc := newTestService(repo, nil)

	_, err := svc.AddSlot(context.Background(), 7, date(15), "12:00", "14:00")
	assert.ErrorIs(t, err, ErrSlotOverlap)

	// Соприкасающиеся границами интервалы не пересекаются
	result, err := svc.AddSlot(context.Background(), 7, date(15), "13:00", "15:00")
	require.NoError(t, err)
	assert.Len(t, result.Slots, 2)
}

func TestRemoveSlot(t *testing.T) {
	repo := &fakeScheduleRepo{
		days: map[string]*domain.DaySchedule{
			dayKey(date(15)): workingDay(1, date(15), domain.ScheduleSlot{ID: 42, Start: "09:00", End: "13:00"}),
		},
	}
	svc := newTestService(repo, nil)

	require.NoError(t, svc.RemoveSlot(context.Background(), 42))
	assert.Equal(t, []int64{42}, repo.removed)

	assert.ErrorIs(t, svc.RemoveSlot(context.Background(), 42), ErrSlotNotFound)
}
