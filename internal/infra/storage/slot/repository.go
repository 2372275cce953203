package slot

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

const (
	tableName  = "availability_slots"
	onConflict = "ON CONFLICT (consultant_id, session_type, date, start_time) DO NOTHING"
)

var columns = []string{
	"id",
	"consultant_id",
	"session_type",
	"date",
	"start_time",
	"end_time",
	"is_booked",
	"is_blocked",
	"session_id",
	"created_at",
	"updated_at",
}

// Repository репозиторий слотов доступности
type Repository struct {
	db        DBExecutor
	batchSize int
}

// NewRepository создает новый экземпляр репозитория слотов
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db, batchSize: domain.SlotBatchSize}
}

// Find возвращает слоты по фильтру, отсортированные по (date, start_time)
func (r *Repository) Find(ctx context.Context, filter domain.SlotFilter) ([]*domain.AvailabilitySlot, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(columns...).
		From(tableName).
		Where(buildConditions(filter)).
		OrderBy("date ASC", "start_time ASC")

	if filter.Limit > 0 {
		selectBuilder = selectBuilder.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		selectBuilder = selectBuilder.Offset(uint64(filter.Offset))
	}

	// FOR UPDATE имеет смысл только внутри транзакции
	if filter.ForUpdate && dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Find - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: Find - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	slots := make([]*domain.AvailabilitySlot, 0)
	for rows.Next() {
		s, err := scanSlot(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: Find - scan slot: %w", ErrScanRow, err)
		}
		slots = append(slots, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: Find - rows error: %w", ErrScanRow, err)
	}

	return slots, nil
}

// Count считает слоты по фильтру без учета пагинации
func (r *Repository) Count(ctx context.Context, filter domain.SlotFilter) (int, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("COUNT(*)").
		From(tableName).
		Where(buildConditions(filter)).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("%w: Count - build select query: %v", ErrBuildQuery, err)
	}

	var total int
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("%w: Count - scan count: %w", ErrScanRow, err)
	}

	return total, nil
}

// GetByID получает слот по ID
func (r *Repository) GetByID(ctx context.Context, id string) (*domain.AvailabilitySlot, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrSlotNotFound
	}

	query, args, err := psqlbuilder.Select(columns...).
		From(tableName).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	s, err := scanSlot(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSlotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan slot: %w", ErrScanRow, err)
	}

	return s, nil
}

// CreateBatch вставляет слоты пачками по batchSize строк
// Каждая пачка - отдельный атомарный INSERT, дубликаты по уникальному ключу пропускаются
// Возвращает количество реально вставленных строк
func (r *Repository) CreateBatch(ctx context.Context, slots []*domain.AvailabilitySlot) (int, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	inserted := 0
	for start := 0; start < len(slots); start += r.batchSize {
		end := start + r.batchSize
		if end > len(slots) {
			end = len(slots)
		}

		insertBuilder := psqlbuilder.Insert(tableName).
			Columns(
				"id",
				"consultant_id",
				"session_type",
				"date",
				"start_time",
				"end_time",
				"is_booked",
				"is_blocked",
			).
			Suffix(onConflict)

		for _, s := range slots[start:end] {
			if s.ID == "" {
				s.ID = uuid.NewString()
			}
			insertBuilder = insertBuilder.Values(
				s.ID,
				s.ConsultantID,
				s.SessionType,
				s.Date.Format(domain.DateFormat),
				s.StartTime,
				s.EndTime,
				s.IsBooked,
				s.IsBlocked,
			)
		}

		query, args, err := insertBuilder.ToSql()
		if err != nil {
			return inserted, fmt.Errorf("%w: CreateBatch - build insert query: %v", ErrBuildQuery, err)
		}

		result, err := executor.ExecContext(ctx, query, args...)
		if err != nil {
			return inserted, fmt.Errorf("%w: CreateBatch - execute insert: %w", ErrExecQuery, err)
		}

		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return inserted, fmt.Errorf("%w: CreateBatch - get rows affected: %w", ErrExecQuery, err)
		}
		inserted += int(rowsAffected)
	}

	return inserted, nil
}

// Update выполняет условное обновление слотов, подходящих под фильтр
// Возвращает количество затронутых строк; это основа compare-and-swap переходов
func (r *Repository) Update(ctx context.Context, filter domain.SlotFilter, update domain.SlotUpdate) (int64, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	if update.IsEmpty() {
		return 0, ErrEmptyUpdate
	}

	updateBuilder := psqlbuilder.Update(tableName).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(buildConditions(filter))

	if update.IsBooked != nil {
		updateBuilder = updateBuilder.Set("is_booked", *update.IsBooked)
	}
	if update.IsBlocked != nil {
		updateBuilder = updateBuilder.Set("is_blocked", *update.IsBlocked)
	}
	if update.EndTime != nil {
		updateBuilder = updateBuilder.Set("end_time", *update.EndTime)
	}
	if update.ClearSessionID {
		updateBuilder = updateBuilder.Set("session_id", nil)
	} else if update.SessionID != nil {
		updateBuilder = updateBuilder.Set("session_id", *update.SessionID)
	}

	query, args, err := updateBuilder.ToSql()
	if err != nil {
		return 0, fmt.Errorf("%w: Update - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("%w: Update - execute update: %w", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: Update - get rows affected: %w", ErrExecQuery, err)
	}

	return rowsAffected, nil
}

// DeleteUnbooked удаляет слот консультанта, только если он не забронирован
// Возвращает количество удаленных строк (0 - слот занят, чужой или уже удален)
func (r *Repository) DeleteUnbooked(ctx context.Context, consultantID, id string) (int64, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Delete(tableName).
		Where(squirrel.Eq{
			"id":            id,
			"consultant_id": consultantID,
			"is_booked":     false,
		}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("%w: DeleteUnbooked - build delete query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("%w: DeleteUnbooked - execute delete: %w", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: DeleteUnbooked - get rows affected: %w", ErrExecQuery, err)
	}

	return rowsAffected, nil
}

// buildConditions переводит SlotFilter в WHERE условие
func buildConditions(filter domain.SlotFilter) squirrel.And {
	conds := squirrel.And{}

	if filter.ConsultantID != "" {
		conds = append(conds, squirrel.Eq{"consultant_id": filter.ConsultantID})
	}
	if len(filter.IDs) > 0 {
		conds = append(conds, squirrel.Eq{"id": filter.IDs})
	}
	if filter.SessionType != nil {
		conds = append(conds, squirrel.Eq{"session_type": *filter.SessionType})
	}
	if filter.StartDate != nil {
		conds = append(conds, squirrel.GtOrEq{"date": filter.StartDate.Format(domain.DateFormat)})
	}
	if filter.EndDate != nil {
		conds = append(conds, squirrel.LtOrEq{"date": filter.EndDate.Format(domain.DateFormat)})
	}
	if filter.StartTime != nil {
		conds = append(conds, squirrel.Eq{"start_time": *filter.StartTime})
	}
	// День недели вычисляется из даты слота (0 = воскресенье)
	if filter.DayOfWeek != nil {
		conds = append(conds, squirrel.Expr("EXTRACT(DOW FROM date) = ?", *filter.DayOfWeek))
	}
	if filter.IsBooked != nil {
		conds = append(conds, squirrel.Eq{"is_booked": *filter.IsBooked})
	}
	if filter.IsBlocked != nil {
		conds = append(conds, squirrel.Eq{"is_blocked": *filter.IsBlocked})
	}

	return conds
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSlot(row rowScanner) (*domain.AvailabilitySlot, error) {
	var (
		s         domain.AvailabilitySlot
		sessionID sql.NullString
	)

	err := row.Scan(
		&s.ID,
		&s.ConsultantID,
		&s.SessionType,
		&s.Date,
		&s.StartTime,
		&s.EndTime,
		&s.IsBooked,
		&s.IsBlocked,
		&sessionID,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	s.Date = domain.TruncateToDate(s.Date)
	if sessionID.Valid {
		s.SessionID = &sessionID.String
	}

	return &s, nil
}
