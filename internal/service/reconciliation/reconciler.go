package reconciliation

import (
	"context"
	"fmt"

	"github.com/m04kA/SMC-AvailabilityService/internal/domain"
	"github.com/m04kA/SMC-AvailabilityService/pkg/ptr"
	"github.com/m04kA/SMC-AvailabilityService/pkg/types"
)

// Reconciler поддерживает слоты в согласованном состоянии при изменении шаблонов
// Связь шаблон -> слот неявная: (sessionType, день недели даты слота, startTime)
// Все методы выполняются в транзакции вызывающего кода (через ctx)
type Reconciler struct {
	slots        SlotUpdater
	timeProvider TimeProvider
	metrics      Metrics
	serviceName  string
	logger       Logger
}

// NewReconciler создает новый экземпляр
func NewReconciler(slots SlotUpdater, timeProvider TimeProvider, metrics Metrics, serviceName string, logger Logger) *Reconciler {
	return &Reconciler{
		slots:        slots,
		timeProvider: timeProvider,
		metrics:      metrics,
		serviceName:  serviceName,
		logger:       logger,
	}
}

// Result итог согласования слотов
type Result struct {
	Blocked  int64
	Restored int64
	Retimed  int64
}

// Reconcile сравнивает набор шаблонов до и после изменения и приводит слоты в соответствие:
// исчезнувшие ключи блокируются, появившиеся разблокируются,
// у новых ключей и ключей с измененным endTime переносится время окончания
// Неактивные шаблоны слотов не порождают и считаются отсутствующими
func (r *Reconciler) Reconcile(ctx context.Context, consultantID string, before, after []*domain.WeeklyPattern) (*Result, error) {
	beforeKeys := domain.KeysOf(before, true)
	afterKeys := domain.KeysOf(after, true)

	result := &Result{}

	blocked, err := r.BlockRemoved(ctx, consultantID, beforeKeys.Minus(afterKeys))
	if err != nil {
		return nil, err
	}
	result.Blocked = blocked

	added := afterKeys.Minus(beforeKeys)
	restored, err := r.RestoreAdded(ctx, consultantID, added)
	if err != nil {
		return nil, err
	}
	result.Restored = restored

	previousEnd := make(map[domain.PatternKey]types.TimeString, len(before))
	for _, p := range before {
		if p.IsActive {
			previousEnd[p.Key()] = p.EndTime
		}
	}

	for _, p := range after {
		if !p.IsActive {
			continue
		}
		end, existed := previousEnd[p.Key()]
		if existed && end == p.EndTime {
			continue
		}
		retimed, err := r.RetimeChanged(ctx, consultantID, p.Key(), p.EndTime)
		if err != nil {
			return nil, err
		}
		result.Retimed += retimed
	}

	return result, nil
}

// BlockRemoved блокирует будущие свободные слоты удаленных ключей
// Забронированные слоты не трогаются: это история и действующие записи клиентов
func (r *Reconciler) BlockRemoved(ctx context.Context, consultantID string, keys []domain.PatternKey) (int64, error) {
	var total int64
	for _, key := range keys {
		n, err := r.slots.Update(ctx,
			r.futureKeyFilter(consultantID, key, false),
			domain.SlotUpdate{IsBlocked: ptr.Ptr(true)},
		)
		if err != nil {
			return total, fmt.Errorf("%w: BlockRemoved - key=%s: %w", ErrInternal, key, err)
		}
		total += n
		r.logger.Info("Reconciler: blocked %d slots for consultant=%s, key=%s", n, consultantID, key)
	}

	if r.metrics != nil {
		r.metrics.AddSlotsBlocked(r.serviceName, total)
	}
	return total, nil
}

// RestoreAdded снимает блокировку с будущих свободных слотов вновь появившихся ключей
// Генератор сам никогда не разблокирует слоты, поэтому повторное создание шаблона возвращает горизонт здесь
func (r *Reconciler) RestoreAdded(ctx context.Context, consultantID string, keys []domain.PatternKey) (int64, error) {
	var total int64
	for _, key := range keys {
		n, err := r.slots.Update(ctx,
			r.futureKeyFilter(consultantID, key, true),
			domain.SlotUpdate{IsBlocked: ptr.Ptr(false)},
		)
		if err != nil {
			return total, fmt.Errorf("%w: RestoreAdded - key=%s: %w", ErrInternal, key, err)
		}
		total += n
		if n > 0 {
			r.logger.Info("Reconciler: restored %d slots for consultant=%s, key=%s", n, consultantID, key)
		}
	}
	return total, nil
}

// RetimeChanged переносит время окончания у будущих свободных слотов ключа
// Используется, когда у шаблона изменилось только endTime
func (r *Reconciler) RetimeChanged(ctx context.Context, consultantID string, key domain.PatternKey, newEnd types.TimeString) (int64, error) {
	n, err := r.slots.Update(ctx,
		r.futureKeyFilter(consultantID, key, false),
		domain.SlotUpdate{EndTime: ptr.Ptr(newEnd)},
	)
	if err != nil {
		return 0, fmt.Errorf("%w: RetimeChanged - key=%s: %w", ErrInternal, key, err)
	}

	r.logger.Info("Reconciler: retimed %d slots for consultant=%s, key=%s, end=%s", n, consultantID, key, newEnd)
	return n, nil
}

// futureKeyFilter слоты ключа начиная с сегодняшнего дня, не забронированные, с заданным флагом блокировки
func (r *Reconciler) futureKeyFilter(consultantID string, key domain.PatternKey, blocked bool) domain.SlotFilter {
	today := domain.TruncateToDate(r.timeProvider.Now())
	sessionType := key.SessionType
	startTime := key.StartTime
	dayOfWeek := key.DayOfWeek

	return domain.SlotFilter{
		ConsultantID: consultantID,
		SessionType:  &sessionType,
		StartTime:    &startTime,
		DayOfWeek:    &dayOfWeek,
		StartDate:    &today,
		IsBooked:     ptr.Ptr(false),
		IsBlocked:    ptr.Ptr(blocked),
	}
}
