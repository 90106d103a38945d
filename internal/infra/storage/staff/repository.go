package staff

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"

	"github.com/tutorlink/TL-AdminService/internal/domain"
	"github.com/tutorlink/TL-AdminService/pkg/dbmetrics"
	"github.com/tutorlink/TL-AdminService/pkg/psqlbuilder"
)

var staffColumns = []string{
	"id",
	"name",
	"position",
	"photo_url",
	"description_en",
	"description_ru",
	"description_uz",
	"pricing",
	"available",
	"created_at",
	"updated_at",
}

// Repository репозиторий для работы с преподавателями
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория преподавателей
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает нового преподавателя
func (r *Repository) Create(ctx context.Context, member *domain.StaffMember) (*domain.StaffMember, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("staff").
		Columns(
			"name",
			"position",
			"photo_url",
			"description_en",
			"description_ru",
			"description_uz",
			"pricing",
			"available",
		).
		Values(
			member.Name,
			member.Position,
			member.PhotoURL,
			member.DescriptionEN,
			member.DescriptionRU,
			member.DescriptionUZ,
			member.Pricing,
			member.Available,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&member.ID,
		&createdAt,
		&updatedAt,
	)

	if err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	member.CreatedAt = createdAt.Time
	member.UpdatedAt = updatedAt.Time

	return member, nil
}

// GetByID получает преподавателя по ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.StaffMember, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(staffColumns...).
		From("staff").
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	member, err := r.scanStaffMember(executor.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, ErrStaffNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan staff member: %v", ErrScanRow, err)
	}

	return member, nil
}

// List получает всех преподавателей
// onlyAvailable ограничивает выборку принимающими новые бронирования
func (r *Repository) List(ctx context.Context, onlyAvailable bool) ([]*domain.StaffMember, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(staffColumns...).
		From("staff").
		OrderBy("id ASC")

	if onlyAvailable {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"available": true})
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: List - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: List - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	members := make([]*domain.StaffMember, 0)
	for rows.Next() {
		member, err := r.scanStaffMember(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: List - scan staff member: %v", ErrScanRow, err)
		}
		members = append(members, member)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: List - rows error: %v", ErrScanRow, err)
	}

	return members, nil
}

// Update применяет частичное обновление преподавателя
// nil-поля StaffUpdate оставляют текущее значение
func (r *Repository) Update(ctx context.Context, id int64, update domain.StaffUpdate) (*domain.StaffMember, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	updateBuilder := psqlbuilder.Update("staff").
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		Suffix("RETURNING " + joinColumns(staffColumns))

	if update.Name != nil {
		updateBuilder = updateBuilder.Set("name", *update.Name)
	}
	if update.Position != nil {
		updateBuilder = updateBuilder.Set("position", *update.Position)
	}
	if update.PhotoURL != nil {
		updateBuilder = updateBuilder.Set("photo_url", *update.PhotoURL)
	}
	if update.DescriptionEN != nil {
		updateBuilder = updateBuilder.Set("description_en", *update.DescriptionEN)
	}
	if update.DescriptionRU != nil {
		updateBuilder = updateBuilder.Set("description_ru", *update.DescriptionRU)
	}
	if update.DescriptionUZ != nil {
		updateBuilder = updateBuilder.Set("description_uz", *update.DescriptionUZ)
	}
	if update.Pricing != nil {
		updateBuilder = updateBuilder.Set("pricing", *update.Pricing)
	}
	if update.Available != nil {
		updateBuilder = updateBuilder.Set("available", *update.Available)
	}

	query, args, err := updateBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Update - build update query: %v", ErrBuildQuery, err)
	}

	member, err := r.scanStaffMember(executor.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, ErrStaffNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: Update - scan staff member: %v", ErrScanRow, err)
	}

	return member, nil
}

// Delete удаляет преподавателя
func (r *Repository) Delete(ctx context.Context, id int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Delete("staff").
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: Delete - build delete query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: Delete - execute delete: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: Delete - get rows affected: %v", ErrExecQuery, err)
	}
	if rowsAffected == 0 {
		return ErrStaffNotFound
	}

	return nil
}

// scanStaffMember сканирует одну строку staff
func (r *Repository) scanStaffMember(row squirrel.RowScanner) (*domain.StaffMember, error) {
	var member domain.StaffMember
	var createdAt, updatedAt sql.NullTime

	err := row.Scan(
		&member.ID,
		&member.Name,
		&member.Position,
		&member.PhotoURL,
		&member.DescriptionEN,
		&member.DescriptionRU,
		&member.DescriptionUZ,
		&member.Pricing,
		&member.Available,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	member.CreatedAt = createdAt.Time
	member.UpdatedAt = updatedAt.Time

	return &member, nil
}

func joinColumns(columns []string) string {
	return strings.Join(columns, ", ")
}
