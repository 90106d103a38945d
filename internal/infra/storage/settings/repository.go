package settings

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/tutorlink/TL-AdminService/internal/domain"
	"github.com/tutorlink/TL-AdminService/pkg/dbmetrics"
	"github.com/tutorlink/TL-AdminService/pkg/psqlbuilder"
)

// Переиспользуем интерфейсы из dbmetrics для работы с БД
type DBExecutor = dbmetrics.DBExecutor

// Repository репозиторий для работы с настройками интеграций
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория настроек
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// ListIntegrations получает состояние всех переключателей интеграций
func (r *Repository) ListIntegrations(ctx context.Context) ([]domain.IntegrationToggle, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("name", "enabled", "updated_at").
		From("integration_settings").
		OrderBy("name ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: ListIntegrations - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListIntegrations - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	toggles := make([]domain.IntegrationToggle, 0)
	for rows.Next() {
		var toggle domain.IntegrationToggle
		if err := rows.Scan(&toggle.Name, &toggle.Enabled, &toggle.UpdatedAt); err != nil {
			return nil, fmt.Errorf("%w: ListIntegrations - scan row: %v", ErrScanRow, err)
		}
		toggles = append(toggles, toggle)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListIntegrations - rows error: %v", ErrScanRow, err)
	}

	return toggles, nil
}

// GetIntegration получает состояние одной интеграции
func (r *Repository) GetIntegration(ctx context.Context, name string) (*domain.IntegrationToggle, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("name", "enabled", "updated_at").
		From("integration_settings").
		Where(squirrel.Eq{"name": name}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetIntegration - build select query: %v", ErrBuildQuery, err)
	}

	var toggle domain.IntegrationToggle
	err = executor.QueryRowContext(ctx, query, args...).Scan(&toggle.Name, &toggle.Enabled, &toggle.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrIntegrationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetIntegration - scan row: %v", ErrScanRow, err)
	}

	return &toggle, nil
}

// UpsertIntegration включает или выключает интеграцию
func (r *Repository) UpsertIntegration(ctx context.Context, name string, enabled bool) (*domain.IntegrationToggle, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("integration_settings").
		Columns("name", "enabled").
		Values(name, enabled).
		Suffix("ON CONFLICT (name) DO UPDATE SET enabled = EXCLUDED.enabled, updated_at = NOW()").
		Suffix("RETURNING name, enabled, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: UpsertIntegration - build insert query: %v", ErrBuildQuery, err)
	}

	var toggle domain.IntegrationToggle
	err = executor.QueryRowContext(ctx, query, args...).Scan(&toggle.Name, &toggle.Enabled, &toggle.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("%w: UpsertIntegration - execute insert: %v", ErrExecQuery, err)
	}

	return &toggle, nil
}
