package booking

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/tutorlink/TL-AdminService/internal/domain"
	"github.com/tutorlink/TL-AdminService/pkg/dbmetrics"
	"github.com/tutorlink/TL-AdminService/pkg/psqlbuilder"
)

// bookingColumns полный набор колонок таблицы bookings в порядке сканирования
var bookingColumns = []string{
	"id",
	"staff_id",
	"booking_date",
	"start_time",
	"end_time",
	"status",
	"client_name",
	"client_phone",
	"notes",
	"payment_id",
	"zoom_link",
	"bitrix_event_id",
	"cancellation_reason",
	"cancelled_at",
	"created_at",
	"updated_at",
}

// Repository репозиторий для работы с бронированиями
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория бронирований
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает новое бронирование
// Если в контексте передана активная транзакция, использует её - это
// обязательный режим для создания с проверкой пересечений слотов
func (r *Repository) Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("bookings").
		Columns(
			"staff_id",
			"booking_date",
			"start_time",
			"end_time",
			"status",
			"client_name",
			"client_phone",
			"notes",
			"payment_id",
			"zoom_link",
			"bitrix_event_id",
		).
		Values(
			booking.StaffID,
			booking.Date,
			booking.StartTime,
			booking.EndTime,
			booking.Status,
			booking.ClientName,
			booking.ClientPhone,
			booking.Notes,
			booking.PaymentID,
			booking.ZoomLink,
			booking.BitrixEventID,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&booking.ID,
		&createdAt,
		&updatedAt,
	)

	if err != nil {
		if isConflictError(err) {
			return nil, fmt.Errorf("%w: Create: %w", ErrSlotConflict, err)
		}
		return nil, fmt.Errorf("%w: Create - execute insert: %w", ErrExecQuery, err)
	}

	booking.CreatedAt = createdAt.Time
	booking.UpdatedAt = updatedAt.Time

	return booking, nil
}

// GetByID получает бронирование по ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	booking, err := r.scanBooking(executor.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan booking: %w", ErrScanRow, err)
	}

	return booking, nil
}

// ListWithFilter получает бронирования с гибкой фильтрацией
// Поддерживает фильтрацию по:
// - Преподавателю (StaffID) - опционально
// - Периоду (StartDate, EndDate) - опционально
// - Статусу (Status) - опционально
// - Включению отменённых бронирований (IncludeInactive)
func (r *Repository) ListWithFilter(ctx context.Context, filter domain.BookingsFilter) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(bookingColumns...).
		From("bookings")

	if filter.StaffID != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"staff_id": *filter.StaffID})
	}

	// Фильтрация по периоду
	if filter.StartDate != nil {
		selectBuilder = selectBuilder.Where(squirrel.GtOrEq{"booking_date": *filter.StartDate})
	}
	if filter.EndDate != nil {
		selectBuilder = selectBuilder.Where(squirrel.LtOrEq{"booking_date": *filter.EndDate})
	}

	// Фильтрация по статусу
	if filter.Status != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": *filter.Status})
	} else if !filter.IncludeInactive {
		// Если не указан конкретный статус и не нужны неактивные - исключаем их
		inactiveStatusStrings := make([]string, len(domain.InactiveStatuses))
		for i, s := range domain.InactiveStatuses {
			inactiveStatusStrings[i] = string(s)
		}
		selectBuilder = selectBuilder.Where(squirrel.NotEq{"status": inactiveStatusStrings})
	}

	// Для конкретной даты сортируем по времени начала, для периода - сначала новые
	if filter.StartDate != nil && filter.EndDate != nil && filter.StartDate.Equal(*filter.EndDate) {
		selectBuilder = selectBuilder.OrderBy("start_time ASC")
	} else {
		selectBuilder = selectBuilder.OrderBy("booking_date DESC, start_time DESC")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListWithFilter - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListWithFilter - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	return r.scanBookings(rows)
}

// ListActiveForDate получает активные бронирования преподавателя на дату
// Внутри транзакции блокирует строки через FOR UPDATE - используется
// для проверки пересечений перед записью
func (r *Repository) ListActiveForDate(ctx context.Context, staffID int64, date time.Time) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	inactiveStatusStrings := make([]string, len(domain.InactiveStatuses))
	for i, s := range domain.InactiveStatuses {
		inactiveStatusStrings[i] = string(s)
	}

	selectBuilder := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Eq{"staff_id": staffID}).
		Where(squirrel.Eq{"booking_date": date}).
		Where(squirrel.NotEq{"status": inactiveStatusStrings}).
		OrderBy("start_time ASC")

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListActiveForDate - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListActiveForDate - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	return r.scanBookings(rows)
}

// Update применяет частичное обновление бронирования
// nil-поля BookingUpdate оставляют текущее значение
func (r *Repository) Update(ctx context.Context, id int64, update domain.BookingUpdate) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	updateBuilder := psqlbuilder.Update("bookings").
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		Suffix("RETURNING " + joinColumns(bookingColumns))

	if update.StaffID != nil {
		updateBuilder = updateBuilder.Set("staff_id", *update.StaffID)
	}
	if update.Date != nil {
		updateBuilder = updateBuilder.Set("booking_date", *update.Date)
	}
	if update.StartTime != nil {
		updateBuilder = updateBuilder.Set("start_time", *update.StartTime)
	}
	if update.EndTime != nil {
		updateBuilder = updateBuilder.Set("end_time", *update.EndTime)
	}
	if update.Status != nil {
		updateBuilder = updateBuilder.Set("status", *update.Status)
	}
	if update.ClientName != nil {
		updateBuilder = updateBuilder.Set("client_name", *update.ClientName)
	}
	if update.ClientPhone != nil {
		updateBuilder = updateBuilder.Set("client_phone", *update.ClientPhone)
	}
	if update.Notes != nil {
		updateBuilder = updateBuilder.Set("notes", *update.Notes)
	}

	query, args, err := updateBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Update - build update query: %v", ErrBuildQuery, err)
	}

	booking, err := r.scanBooking(executor.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		if isConflictError(err) {
			return nil, fmt.Errorf("%w: Update: %w", ErrSlotConflict, err)
		}
		return nil, fmt.Errorf("%w: Update - scan booking: %w", ErrScanRow, err)
	}

	return booking, nil
}

// SetIntegrationLinks сохраняет ссылки внешних интеграций для бронирования
// nil-поля не изменяются
func (r *Repository) SetIntegrationLinks(ctx context.Context, id int64, zoomLink, bitrixEventID *string) error {
	if zoomLink == nil && bitrixEventID == nil {
		return nil
	}

	executor := dbmetrics.GetExecutor(ctx, r.db)

	updateBuilder := psqlbuilder.Update("bookings").
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id})

	if zoomLink != nil {
		updateBuilder = updateBuilder.Set("zoom_link", *zoomLink)
	}
	if bitrixEventID != nil {
		updateBuilder = updateBuilder.Set("bitrix_event_id", *bitrixEventID)
	}

	query, args, err := updateBuilder.ToSql()
	if err != nil {
		return fmt.Errorf("%w: SetIntegrationLinks - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: SetIntegrationLinks - execute update: %w", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: SetIntegrationLinks - get rows affected: %w", ErrExecQuery, err)
	}
	if rowsAffected == 0 {
		return ErrBookingNotFound
	}

	return nil
}

// Cancel отменяет бронирование с указанием причины
func (r *Repository) Cancel(ctx context.Context, id int64, reason string) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("bookings").
		Set("status", domain.StatusCancelled).
		Set("cancellation_reason", reason).
		Set("cancelled_at", squirrel.Expr("NOW()")).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: Cancel - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: Cancel - execute update: %w", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: Cancel - get rows affected: %w", ErrExecQuery, err)
	}
	if rowsAffected == 0 {
		return ErrBookingNotFound
	}

	return nil
}

// GetDailyStats агрегирует бронирования по датам за период
func (r *Repository) GetDailyStats(ctx context.Context, from, to time.Time) ([]domain.DailyStats, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"b.booking_date",
		"COUNT(*)",
		"COUNT(*) FILTER (WHERE b.status = 'confirmed')",
		"COUNT(*) FILTER (WHERE b.status = 'cancelled')",
		"COALESCE(SUM(s.pricing) FILTER (WHERE b.status IN ('confirmed', 'completed')), 0)",
	).
		From("bookings b").
		Join("staff s ON s.id = b.staff_id").
		Where(squirrel.GtOrEq{"b.booking_date": from}).
		Where(squirrel.LtOrEq{"b.booking_date": to}).
		GroupBy("b.booking_date").
		OrderBy("b.booking_date ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetDailyStats - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetDailyStats - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	stats := make([]domain.DailyStats, 0)
	for rows.Next() {
		var day domain.DailyStats
		if err := rows.Scan(
			&day.Date,
			&day.TotalBookings,
			&day.ConfirmedBookings,
			&day.CancelledBookings,
			&day.Revenue,
		); err != nil {
			return nil, fmt.Errorf("%w: GetDailyStats - scan row: %w", ErrScanRow, err)
		}
		stats = append(stats, day)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: GetDailyStats - rows error: %w", ErrScanRow, err)
	}

	return stats, nil
}

// GetStaffStats агрегирует бронирования по преподавателям за период
func (r *Repository) GetStaffStats(ctx context.Context, from, to time.Time) ([]domain.StaffStats, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"s.id",
		"s.name",
		"COUNT(b.id)",
		"COALESCE(SUM(s.pricing) FILTER (WHERE b.status IN ('confirmed', 'completed')), 0)",
	).
		From("staff s").
		LeftJoin("bookings b ON b.staff_id = s.id AND b.booking_date >= ? AND b.booking_date <= ?", from, to).
		GroupBy("s.id", "s.name").
		OrderBy("COUNT(b.id) DESC, s.id ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetStaffStats - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetStaffStats - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	stats := make([]domain.StaffStats, 0)
	for rows.Next() {
		var staff domain.StaffStats
		if err := rows.Scan(
			&staff.StaffID,
			&staff.StaffName,
			&staff.TotalBookings,
			&staff.Revenue,
		); err != nil {
			return nil, fmt.Errorf("%w: GetStaffStats - scan row: %w", ErrScanRow, err)
		}
		stats = append(stats, staff)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: GetStaffStats - rows error: %w", ErrScanRow, err)
	}

	return stats, nil
}

// scanBooking сканирует одну строку bookings
func (r *Repository) scanBooking(row squirrel.RowScanner) (*domain.Booking, error) {
	var booking domain.Booking
	var createdAt, updatedAt sql.NullTime

	err := row.Scan(
		&booking.ID,
		&booking.StaffID,
		&booking.Date,
		&booking.StartTime,
		&booking.EndTime,
		&booking.Status,
		&booking.ClientName,
		&booking.ClientPhone,
		&booking.Notes,
		&booking.PaymentID,
		&booking.ZoomLink,
		&booking.BitrixEventID,
		&booking.CancellationReason,
		&booking.CancelledAt,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	booking.CreatedAt = createdAt.Time
	booking.UpdatedAt = updatedAt.Time

	return &booking, nil
}

// scanBookings сканирует множество строк bookings
func (r *Repository) scanBookings(rows *sql.Rows) ([]*domain.Booking, error) {
	bookings := make([]*domain.Booking, 0)

	for rows.Next() {
		booking, err := r.scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scan booking: %w", ErrScanRow, err)
		}
		bookings = append(bookings, booking)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: rows error: %w", ErrScanRow, err)
	}

	return bookings, nil
}

// isConflictError проверяет, является ли ошибка нарушением ограничений
// уникальности или пересечения интервалов (exclusion constraint)
func isConflictError(err error) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	// 23505 - unique_violation, 23P01 - exclusion_violation
	return pqErr.Code == "23505" || pqErr.Code == "23P01"
}

func joinColumns(columns []string) string {
	return strings.Join(columns, ", ")
}
