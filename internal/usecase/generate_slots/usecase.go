package generate_slots

import (
	"context"
	"fmt"

	"github.com/m04kA/SMC-AvailabilityService/internal/domain"
)

const allSessionTypes = "all"

// UseCase use case генерации слотов доступности по недельным шаблонам
// Повторный запуск на том же диапазоне ничего не создает
type UseCase struct {
	patternRepo PatternRepository
	slotRepo    SlotRepository
	cache       CacheInvalidator
	metrics     Metrics
	serviceName string
	logger      Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	patternRepo PatternRepository,
	slotRepo SlotRepository,
	cache CacheInvalidator,
	metrics Metrics,
	serviceName string,
	logger Logger,
) *UseCase {
	return &UseCase{
		patternRepo: patternRepo,
		slotRepo:    slotRepo,
		cache:       cache,
		metrics:     metrics,
		serviceName: serviceName,
		logger:      logger,
	}
}

// Execute выполняет use case генерации слотов
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	sessionLabel := allSessionTypes
	if req.SessionType != nil {
		sessionLabel = string(*req.SessionType)
	}
	uc.logger.Info("GenerateSlots: consultant=%s, start=%s, end=%s, type=%s",
		req.ConsultantID, req.StartDate.Format(domain.DateFormat), req.EndDate.Format(domain.DateFormat), sessionLabel)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("GenerateSlots: validation failed: %v", err)
		return nil, err
	}

	start := domain.TruncateToDate(req.StartDate)
	end := domain.TruncateToDate(req.EndDate)

	// 2. Активные шаблоны консультанта
	patterns, err := uc.patternRepo.List(ctx, domain.PatternFilter{
		ConsultantID: req.ConsultantID,
		SessionType:  req.SessionType,
		ActiveOnly:   true,
	})
	if err != nil {
		uc.logger.Error("GenerateSlots: failed to list patterns for consultant=%s: %v", req.ConsultantID, err)
		return nil, fmt.Errorf("%w: failed to list patterns: %v", ErrInternal, err)
	}

	if len(patterns) == 0 {
		uc.logger.Info("GenerateSlots: no active patterns for consultant=%s", req.ConsultantID)
		return &Response{}, nil
	}

	// 3. Все существующие слоты диапазона одним запросом, включая забронированные и заблокированные
	existing, err := uc.slotRepo.Find(ctx, domain.SlotFilter{
		ConsultantID: req.ConsultantID,
		SessionType:  req.SessionType,
		StartDate:    &start,
		EndDate:      &end,
	})
	if err != nil {
		uc.logger.Error("GenerateSlots: failed to load existing slots for consultant=%s: %v", req.ConsultantID, err)
		return nil, fmt.Errorf("%w: failed to load existing slots: %v", ErrInternal, err)
	}

	taken := make(map[string]struct{}, len(existing))
	for _, s := range existing {
		taken[s.Key()] = struct{}{}
	}

	// 4. Обходим даты диапазона и ставим в очередь недостающие слоты
	resp := &Response{PatternsFound: len(patterns)}
	queue := planSlots(req.ConsultantID, patterns, start, end, taken, resp)

	// 5. Сохраняем пачками, дубликаты от параллельных генераций пропускаются хранилищем
	inserted := 0
	if len(queue) > 0 {
		inserted, err = uc.slotRepo.CreateBatch(ctx, queue)
		if err != nil {
			uc.logger.Error("GenerateSlots: failed to persist %d slots for consultant=%s: %v", len(queue), req.ConsultantID, err)
			return nil, fmt.Errorf("%w: failed to persist slots: %v", ErrInternal, err)
		}
	}
	resp.SlotsCreated = inserted
	resp.ExistingSlotsSkipped += len(queue) - inserted

	if inserted > 0 {
		if uc.metrics != nil {
			uc.metrics.AddSlotsGenerated(uc.serviceName, sessionLabel, inserted)
		}
		uc.cache.InvalidateConsultant(ctx, req.ConsultantID)
	}

	uc.logger.Info("GenerateSlots: consultant=%s, created=%d, skipped=%d, patterns=%d, days=%d",
		req.ConsultantID, resp.SlotsCreated, resp.ExistingSlotsSkipped, resp.PatternsFound, resp.DaysProcessed)
	return resp, nil
}
