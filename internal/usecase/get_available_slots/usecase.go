package get_available_slots

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-AvailabilityService/internal/domain"
	"github.com/m04kA/SMC-AvailabilityService/internal/infra/cache"
	consultantClient "github.com/m04kA/SMC-AvailabilityService/internal/integrations/consultantservice"
	"github.com/m04kA/SMC-AvailabilityService/pkg/ptr"
)

// UseCase use case для получения свободных слотов консультанта
type UseCase struct {
	slotRepo         SlotRepository
	consultantClient ConsultantServiceClient
	cache            AvailabilityCache
	timeProvider     TimeProvider
	logger           Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	slotRepo SlotRepository,
	consultantClient ConsultantServiceClient,
	cache AvailabilityCache,
	timeProvider TimeProvider,
	logger Logger,
) *UseCase {
	return &UseCase{
		slotRepo:         slotRepo,
		consultantClient: consultantClient,
		cache:            cache,
		timeProvider:     timeProvider,
		logger:           logger,
	}
}

// Execute выполняет use case получения свободных слотов
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("GetAvailableSlots: consultant=%s, limit=%d, offset=%d", req.Consultant, req.Limit, req.Offset)

	// 1. Нормализуем период и пагинацию
	today := domain.TruncateToDate(uc.timeProvider.Now())
	w, err := resolveWindow(req, today)
	if err != nil {
		uc.logger.Warn("GetAvailableSlots: validation failed: %v", err)
		return nil, err
	}

	// 2. Консультант должен существовать и принимать записи
	consultant, err := uc.resolveConsultant(ctx, req.Consultant)
	if err != nil {
		return nil, err
	}

	// Период целиком в прошлом
	if w.empty {
		uc.logger.Info("GetAvailableSlots: consultant=%s, window %s..%s is in the past",
			consultant.ID, w.start.Format(domain.DateFormat), w.end.Format(domain.DateFormat))
		return emptyResponse(consultant.ID, w), nil
	}

	// 3. Кэш по ID консультанта, чтобы инвалидация не зависела от slug
	key := cache.AvailabilityKey{
		ConsultantID: consultant.ID,
		StartDate:    w.start.Format(domain.DateFormat),
		EndDate:      w.end.Format(domain.DateFormat),
		Limit:        w.limit,
		Offset:       w.offset,
	}
	if w.sessionType != nil {
		key.SessionType = string(*w.sessionType)
	}

	var cached Response
	if uc.cache.Get(ctx, key, &cached) {
		uc.logger.Info("GetAvailableSlots: cache hit for consultant=%s", consultant.ID)
		return &cached, nil
	}

	// 4. Только свободные и незаблокированные слоты периода
	filter := domain.SlotFilter{
		ConsultantID: consultant.ID,
		SessionType:  w.sessionType,
		StartDate:    &w.start,
		EndDate:      &w.end,
		IsBooked:     ptr.Ptr(false),
		IsBlocked:    ptr.Ptr(false),
	}

	total, err := uc.slotRepo.Count(ctx, filter)
	if err != nil {
		uc.logger.Error("GetAvailableSlots: failed to count slots for consultant=%s: %v", consultant.ID, err)
		return nil, fmt.Errorf("%w: failed to count slots: %v", ErrInternal, err)
	}

	filter.Limit = w.limit
	filter.Offset = w.offset
	found, err := uc.slotRepo.Find(ctx, filter)
	if err != nil {
		uc.logger.Error("GetAvailableSlots: failed to find slots for consultant=%s: %v", consultant.ID, err)
		return nil, fmt.Errorf("%w: failed to find slots: %v", ErrInternal, err)
	}

	// 5. Формируем ответ
	slots := toSlots(found)
	resp := &Response{
		ConsultantID:   consultant.ID,
		StartDate:      w.start,
		EndDate:        w.end,
		Slots:          slots,
		SlotsByDate:    groupByDate(slots),
		TotalAvailable: total,
		Pagination: Pagination{
			Limit:   w.limit,
			Offset:  w.offset,
			Total:   total,
			HasMore: w.offset+len(slots) < total,
		},
	}

	uc.cache.Set(ctx, key, resp)

	uc.logger.Info("GetAvailableSlots: consultant=%s, returned=%d, total=%d", consultant.ID, len(slots), total)
	return resp, nil
}

// resolveConsultant ищет консультанта сначала в кэше, затем в справочнике
func (uc *UseCase) resolveConsultant(ctx context.Context, slugOrID string) (*consultantClient.Consultant, error) {
	var consultant consultantClient.Consultant
	if uc.cache.GetConsultant(ctx, slugOrID, &consultant) {
		if !consultant.IsBookable() {
			return nil, ErrConsultantNotFound
		}
		return &consultant, nil
	}

	found, err := uc.consultantClient.GetConsultant(ctx, slugOrID)
	if err != nil {
		if errors.Is(err, consultantClient.ErrConsultantNotFound) {
			uc.logger.Warn("GetAvailableSlots: consultant=%s not found", slugOrID)
			return nil, ErrConsultantNotFound
		}
		uc.logger.Error("GetAvailableSlots: failed to get consultant=%s: %v", slugOrID, err)
		return nil, fmt.Errorf("%w: failed to get consultant: %v", ErrInternal, err)
	}
	uc.cache.SetConsultant(ctx, slugOrID, found)

	if !found.IsBookable() {
		uc.logger.Warn("GetAvailableSlots: consultant=%s has status %s", slugOrID, found.Status)
		return nil, ErrConsultantNotFound
	}
	return found, nil
}

func emptyResponse(consultantID string, w *window) *Response {
	return &Response{
		ConsultantID: consultantID,
		StartDate:    w.start,
		EndDate:      w.end,
		Slots:        []Slot{},
		SlotsByDate:  map[string][]Slot{},
		Pagination: Pagination{
			Limit:  w.limit,
			Offset: w.offset,
		},
	}
}
