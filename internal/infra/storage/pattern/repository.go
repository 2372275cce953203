package pattern

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/m04kA/SMC-AvailabilityService/internal/domain"
	"github.com/m04kA/SMC-AvailabilityService/pkg/dbmetrics"
	"github.com/m04kA/SMC-AvailabilityService/pkg/psqlbuilder"
)

const tableName = "weekly_patterns"

var columns = []string{
	"id",
	"consultant_id",
	"session_type",
	"day_of_week",
	"start_time",
	"end_time",
	"is_active",
	"timezone",
	"created_at",
	"updated_at",
}

// Repository репозиторий недельных шаблонов доступности
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория шаблонов
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает шаблон, ID генерируется, если не задан
func (r *Repository) Create(ctx context.Context, p *domain.WeeklyPattern) (*domain.WeeklyPattern, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	if p.ID == "" {
		p.ID = uuid.NewString()
	}

	query, args, err := psqlbuilder.Insert(tableName).
		Columns(
			"id",
			"consultant_id",
			"session_type",
			"day_of_week",
			"start_time",
			"end_time",
			"is_active",
			"timezone",
		).
		Values(
			p.ID,
			p.ConsultantID,
			p.SessionType,
			p.DayOfWeek,
			p.StartTime,
			p.EndTime,
			p.IsActive,
			p.Timezone,
		).
		Suffix("RETURNING created_at, updated_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	if err := executor.QueryRowContext(ctx, query, args...).Scan(&p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %w", ErrExecQuery, err)
	}

	return p, nil
}

// GetByID получает шаблон консультанта по ID
// Внутри транзакции строка блокируется FOR UPDATE
func (r *Repository) GetByID(ctx context.Context, consultantID, id string) (*domain.WeeklyPattern, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrPatternNotFound
	}

	selectBuilder := psqlbuilder.Select(columns...).
		From(tableName).
		Where(squirrel.Eq{"id": id, "consultant_id": consultantID})

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	p, err := scanPattern(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPatternNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan pattern: %w", ErrScanRow, err)
	}

	return p, nil
}

// List возвращает шаблоны консультанта, отсортированные по дню недели и времени начала
func (r *Repository) List(ctx context.Context, filter domain.PatternFilter) ([]*domain.WeeklyPattern, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(columns...).
		From(tableName).
		Where(squirrel.Eq{"consultant_id": filter.ConsultantID}).
		OrderBy("day_of_week ASC", "start_time ASC")

	if filter.SessionType != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"session_type": *filter.SessionType})
	}
	if filter.DayOfWeek != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"day_of_week": *filter.DayOfWeek})
	}
	if filter.ActiveOnly {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"is_active": true})
	}

	// Блокировка строк для проверки пересечений внутри serializable транзакции
	if filter.ForUpdate && dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: List - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: List - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	patterns := make([]*domain.WeeklyPattern, 0)
	for rows.Next() {
		p, err := scanPattern(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: List - scan pattern: %w", ErrScanRow, err)
		}
		patterns = append(patterns, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: List - rows error: %w", ErrScanRow, err)
	}

	return patterns, nil
}

// Update сохраняет изменяемые поля шаблона
func (r *Repository) Update(ctx context.Context, p *domain.WeeklyPattern) (*domain.WeeklyPattern, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update(tableName).
		Set("session_type", p.SessionType).
		Set("day_of_week", p.DayOfWeek).
		Set("start_time", p.StartTime).
		Set("end_time", p.EndTime).
		Set("is_active", p.IsActive).
		Set("timezone", p.Timezone).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": p.ID, "consultant_id": p.ConsultantID}).
		Suffix("RETURNING updated_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Update - build update query: %v", ErrBuildQuery, err)
	}

	err = executor.QueryRowContext(ctx, query, args...).Scan(&p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPatternNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: Update - execute update: %w", ErrExecQuery, err)
	}

	return p, nil
}

// Delete удаляет шаблон консультанта
func (r *Repository) Delete(ctx context.Context, consultantID, id string) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Delete(tableName).
		Where(squirrel.Eq{"id": id, "consultant_id": consultantID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: Delete - build delete query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: Delete - execute delete: %w", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: Delete - get rows affected: %w", ErrExecQuery, err)
	}
	if rowsAffected == 0 {
		return ErrPatternNotFound
	}

	return nil
}

// DeleteByConsultant удаляет все шаблоны консультанта (используется при массовой замене)
func (r *Repository) DeleteByConsultant(ctx context.Context, consultantID string) (int64, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Delete(tableName).
		Where(squirrel.Eq{"consultant_id": consultantID}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("%w: DeleteByConsultant - build delete query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("%w: DeleteByConsultant - execute delete: %w", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: DeleteByConsultant - get rows affected: %w", ErrExecQuery, err)
	}

	return rowsAffected, nil
}

// ListConsultantIDsWithActivePatterns возвращает консультантов, у которых есть активные шаблоны
// Используется планировщиком генерации
func (r *Repository) ListConsultantIDsWithActivePatterns(ctx context.Context) ([]string, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("DISTINCT consultant_id").
		From(tableName).
		Where(squirrel.Eq{"is_active": true}).
		OrderBy("consultant_id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListConsultantIDsWithActivePatterns - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListConsultantIDsWithActivePatterns - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("%w: ListConsultantIDsWithActivePatterns - scan consultant_id: %w", ErrScanRow, err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListConsultantIDsWithActivePatterns - rows error: %w", ErrScanRow, err)
	}

	return ids, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPattern(row rowScanner) (*domain.WeeklyPattern, error) {
	var p domain.WeeklyPattern
	err := row.Scan(
		&p.ID,
		&p.ConsultantID,
		&p.SessionType,
		&p.DayOfWeek,
		&p.StartTime,
		&p.EndTime,
		&p.IsActive,
		&p.Timezone,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
