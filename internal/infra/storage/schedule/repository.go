package schedule

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/tutorlink/TL-AdminService/internal/domain"
	"github.com/tutorlink/TL-AdminService/pkg/dbmetrics"
	"github.com/tutorlink/TL-AdminService/pkg/psqlbuilder"
	"github.com/tutorlink/TL-AdminService/pkg/types"
)

// Repository репозиторий для работы с рабочим расписанием преподавателей
// Расписание хранится в двух таблицах: schedules (день) и schedule_slots
// (рабочие интервалы дня)
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория расписаний
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetRange получает расписание преподавателя за период [from, to]
// Возвращает только дни, для которых есть записи; отсутствующая дата
// означает, что день не настроен
func (r *Repository) GetRange(ctx context.Context, staffID int64, from, to time.Time) ([]*domain.DaySchedule, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"s.id",
		"s.staff_id",
		"s.schedule_date",
		"s.is_working",
		"sl.id",
		"sl.start_time",
		"sl.end_time",
	).
		From("schedules s").
		LeftJoin("schedule_slots sl ON sl.schedule_id = s.id").
		Where(squirrel.Eq{"s.staff_id": staffID}).
		Where(squirrel.GtOrEq{"s.schedule_date": from}).
		Where(squirrel.LtOrEq{"s.schedule_date": to}).
		OrderBy("s.schedule_date ASC", "sl.start_time ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetRange - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetRange - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	days := make([]*domain.DaySchedule, 0)
	var current *domain.DaySchedule

	for rows.Next() {
		var (
			dayID     int64
			day       domain.DaySchedule
			slotID    sql.NullInt64
			slotStart sql.NullString
			slotEnd   sql.NullString
		)

		if err := rows.Scan(
			&dayID,
			&day.StaffID,
			&day.Date,
			&day.IsWorking,
			&slotID,
			&slotStart,
			&slotEnd,
		); err != nil {
			return nil, fmt.Errorf("%w: GetRange - scan row: %v", ErrScanRow, err)
		}

		// Строки отсортированы по дате: LEFT JOIN размножает день по слотам
		if current == nil || *current.ID != dayID {
			day.ID = &dayID
			day.Slots = make([]domain.ScheduleSlot, 0)
			days = append(days, &day)
			current = days[len(days)-1]
		}

		if slotID.Valid {
			current.Slots = append(current.Slots, domain.ScheduleSlot{
				ID:    slotID.Int64,
				Start: trimTime(slotStart.String),
				End:   trimTime(slotEnd.String),
			})
		}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: GetRange - rows error: %v", ErrScanRow, err)
	}

	return days, nil
}

// GetByDate получает расписание преподавателя на конкретную дату
func (r *Repository) GetByDate(ctx context.Context, staffID int64, date time.Time) (*domain.DaySchedule, error) {
	days, err := r.GetRange(ctx, staffID, date, date)
	if err != nil {
		return nil, err
	}
	if len(days) == 0 {
		return nil, ErrScheduleNotFound
	}
	return days[0], nil
}

// UpsertWorkingDay создает или обновляет запись дня расписания
// Возвращает id записи
func (r *Repository) UpsertWorkingDay(ctx context.Context, staffID int64, date time.Time, isWorking bool) (int64, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("schedules").
		Columns("staff_id", "schedule_date", "is_working").
		Values(staffID, date, isWorking).
		Suffix("ON CONFLICT (staff_id, schedule_date) DO UPDATE SET is_working = EXCLUDED.is_working, updated_at = NOW()").
		Suffix("RETURNING id").
		ToSql()

	if err != nil {
		return 0, fmt.Errorf("%w: UpsertWorkingDay - build insert query: %v", ErrBuildQuery, err)
	}

	var id int64
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&id); err != nil {
		return 0, fmt.Errorf("%w: UpsertWorkingDay - execute insert: %v", ErrExecQuery, err)
	}

	return id, nil
}

// AddSlot добавляет рабочий интервал в день расписания
func (r *Repository) AddSlot(ctx context.Context, scheduleID int64, start, end string) (*domain.ScheduleSlot, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("schedule_slots").
		Columns("schedule_id", "start_time", "end_time").
		Values(scheduleID, start, end).
		Suffix("RETURNING id, start_time, end_time").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: AddSlot - build insert query: %v", ErrBuildQuery, err)
	}

	var (
		slot      domain.ScheduleSlot
		slotStart string
		slotEnd   string
	)
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&slot.ID, &slotStart, &slotEnd); err != nil {
		return nil, fmt.Errorf("%w: AddSlot - execute insert: %v", ErrExecQuery, err)
	}

	slot.Start = trimTime(slotStart)
	slot.End = trimTime(slotEnd)

	return &slot, nil
}

// RemoveSlot удаляет рабочий интервал из дня расписания
func (r *Repository) RemoveSlot(ctx context.Context, slotID int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Delete("schedule_slots").
		Where(squirrel.Eq{"id": slotID}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: RemoveSlot - build delete query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: RemoveSlot - execute delete: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: RemoveSlot - get rows affected: %v", ErrExecQuery, err)
	}
	if rowsAffected == 0 {
		return ErrSlotNotFound
	}

	return nil
}

// trimTime приводит время Postgres (HH:MM:SS) к формату HH:MM
func trimTime(value string) types.TimeString {
	if len(value) > 5 {
		value = value[:5]
	}
	return types.TimeString(value)
}
