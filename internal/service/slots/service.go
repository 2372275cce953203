package slots

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-AvailabilityService/internal/domain"
	slotRepo "github.com/m04kA/SMC-AvailabilityService/internal/infra/storage/slot"
	"github.com/m04kA/SMC-AvailabilityService/internal/service/slots/models"
	"github.com/m04kA/SMC-AvailabilityService/pkg/ptr"
)

const (
	opBook    = "book"
	opRelease = "release"
	opBlock   = "block"
	opDelete  = "delete"
)

// Service сервис слотов: бронирование, блокировка, удаление
// Каждая смена статуса - условный UPDATE (compare-and-swap) внутри serializable транзакции
type Service struct {
	slotRepo     SlotRepository
	txManager    TransactionManager
	cache        CacheInvalidator
	timeProvider TimeProvider
	metrics      Metrics
	serviceName  string
	logger       Logger
}

// NewService создает новый экземпляр сервиса слотов
func NewService(
	slotRepo SlotRepository,
	txManager TransactionManager,
	cache CacheInvalidator,
	timeProvider TimeProvider,
	metrics Metrics,
	serviceName string,
	logger Logger,
) *Service {
	return &Service{
		slotRepo:     slotRepo,
		txManager:    txManager,
		cache:        cache,
		timeProvider: timeProvider,
		metrics:      metrics,
		serviceName:  serviceName,
		logger:       logger,
	}
}

// SetBookedStatus бронирует или освобождает слоты консультанта
// Все или ничего: если хотя бы один слот не прошел условие, транзакция откатывается
func (s *Service) SetBookedStatus(ctx context.Context, consultantID string, req *models.SetBookedStatusRequest) (*models.StatusUpdateResponse, error) {
	ids := uniqueIDs(req.SlotIDs)
	s.logger.Info("SetBookedStatus: consultant=%s, slots=%d, isBooked=%t", consultantID, len(ids), req.IsBooked)

	if len(ids) == 0 {
		return nil, ErrEmptySlotIDs
	}
	if !allUUIDs(ids) {
		s.logger.Warn("SetBookedStatus: malformed slot ids for consultant=%s", consultantID)
		return nil, ErrSlotsNotOwned
	}

	var updated int64
	err := s.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		if err := s.checkOwnership(txCtx, consultantID, ids); err != nil {
			return err
		}

		filter := domain.SlotFilter{ConsultantID: consultantID, IDs: ids}
		update := domain.SlotUpdate{IsBooked: ptr.Ptr(req.IsBooked)}
		conflict := ErrSlotsNotBooked

		if req.IsBooked {
			today := domain.TruncateToDate(s.timeProvider.Now())
			filter.IsBooked = ptr.Ptr(false)
			filter.IsBlocked = ptr.Ptr(false)
			filter.StartDate = &today
			update.SessionID = req.SessionID
			conflict = ErrSlotsUnavailable
		} else {
			filter.IsBooked = ptr.Ptr(true)
			update.ClearSessionID = true
		}

		n, err := s.slotRepo.Update(txCtx, filter, update)
		if err != nil {
			return fmt.Errorf("%w: SetBookedStatus - update slots: %w", ErrInternal, err)
		}
		if n != int64(len(ids)) {
			return conflict
		}
		updated = n
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrSlotsUnavailable) {
			s.incConflict(opBook)
		} else if errors.Is(err, ErrSlotsNotBooked) {
			s.incConflict(opRelease)
		}
		return nil, s.fail("SetBookedStatus", consultantID, err)
	}

	s.cache.InvalidateConsultant(ctx, consultantID)

	s.logger.Info("SetBookedStatus: consultant=%s, updated=%d, isBooked=%t", consultantID, updated, req.IsBooked)
	return &models.StatusUpdateResponse{SlotIDs: ids, UpdatedCount: updated}, nil
}

// SetBlockedStatus вручную блокирует или разблокирует свободные слоты консультанта
func (s *Service) SetBlockedStatus(ctx context.Context, consultantID string, req *models.SetBlockedStatusRequest) (*models.StatusUpdateResponse, error) {
	ids := uniqueIDs(req.SlotIDs)
	s.logger.Info("SetBlockedStatus: consultant=%s, slots=%d, isBlocked=%t", consultantID, len(ids), req.IsBlocked)

	if len(ids) == 0 {
		return nil, ErrEmptySlotIDs
	}
	if !allUUIDs(ids) {
		return nil, ErrSlotsNotOwned
	}

	var updated int64
	err := s.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		if err := s.checkOwnership(txCtx, consultantID, ids); err != nil {
			return err
		}

		n, err := s.slotRepo.Update(txCtx,
			domain.SlotFilter{ConsultantID: consultantID, IDs: ids, IsBooked: ptr.Ptr(false)},
			domain.SlotUpdate{IsBlocked: ptr.Ptr(req.IsBlocked)},
		)
		if err != nil {
			return fmt.Errorf("%w: SetBlockedStatus - update slots: %w", ErrInternal, err)
		}
		if n != int64(len(ids)) {
			return ErrSlotsBooked
		}
		updated = n
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrSlotsBooked) {
			s.incConflict(opBlock)
		}
		return nil, s.fail("SetBlockedStatus", consultantID, err)
	}

	s.cache.InvalidateConsultant(ctx, consultantID)

	s.logger.Info("SetBlockedStatus: consultant=%s, updated=%d", consultantID, updated)
	return &models.StatusUpdateResponse{SlotIDs: ids, UpdatedCount: updated}, nil
}

// IsBookable проверяет, можно ли забронировать слот прямо сейчас
func (s *Service) IsBookable(ctx context.Context, slotID string) (*models.BookableResponse, error) {
	if _, err := uuid.Parse(slotID); err != nil {
		return nil, ErrSlotNotFound
	}

	slot, err := s.slotRepo.GetByID(ctx, slotID)
	if err != nil {
		if errors.Is(err, slotRepo.ErrSlotNotFound) {
			return nil, ErrSlotNotFound
		}
		s.logger.Error("IsBookable: repository error for slot=%s: %v", slotID, err)
		return nil, fmt.Errorf("%w: IsBookable - repository error: %v", ErrInternal, err)
	}

	resp := &models.BookableResponse{SlotID: slotID, Bookable: true}
	today := domain.TruncateToDate(s.timeProvider.Now())

	switch {
	case slot.IsBooked:
		resp.Bookable, resp.Reason = false, ReasonBooked
	case slot.IsBlocked:
		resp.Bookable, resp.Reason = false, ReasonBlocked
	case slot.Date.Before(today):
		resp.Bookable, resp.Reason = false, ReasonPast
	}

	view := models.FromDomainSlot(slot)
	resp.Slot = &view
	return resp, nil
}

// Delete удаляет свободный слот консультанта
// Забронированные слоты никогда не удаляются
func (s *Service) Delete(ctx context.Context, consultantID, slotID string) error {
	s.logger.Info("Delete: consultant=%s, slot=%s", consultantID, slotID)

	if _, err := uuid.Parse(slotID); err != nil {
		return ErrSlotNotFound
	}

	err := s.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		slot, err := s.slotRepo.GetByID(txCtx, slotID)
		if err != nil {
			if errors.Is(err, slotRepo.ErrSlotNotFound) {
				return ErrSlotNotFound
			}
			return fmt.Errorf("%w: Delete - get slot: %w", ErrInternal, err)
		}
		if slot.ConsultantID != consultantID {
			return ErrSlotNotFound
		}
		if slot.IsBooked {
			return ErrCannotDeleteBooked
		}

		n, err := s.slotRepo.DeleteUnbooked(txCtx, consultantID, slotID)
		if err != nil {
			return fmt.Errorf("%w: Delete - delete slot: %w", ErrInternal, err)
		}
		if n == 0 {
			return ErrDeleteConflict
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrDeleteConflict) {
			s.incConflict(opDelete)
		}
		return s.fail("Delete", consultantID, err)
	}

	s.cache.InvalidateConsultant(ctx, consultantID)

	s.logger.Info("Delete: deleted slot=%s", slotID)
	return nil
}

// List возвращает слоты консультанта в любом состоянии постранично
func (s *Service) List(ctx context.Context, consultantID string, req *models.ListSlotsRequest) (*models.SlotListResponse, error) {
	filter, err := toDomainFilter(consultantID, req)
	if err != nil {
		return nil, err
	}

	total, err := s.slotRepo.Count(ctx, filter)
	if err != nil {
		s.logger.Error("List: count error for consultant=%s: %v", consultantID, err)
		return nil, fmt.Errorf("%w: List - count slots: %v", ErrInternal, err)
	}

	found, err := s.slotRepo.Find(ctx, filter)
	if err != nil {
		s.logger.Error("List: find error for consultant=%s: %v", consultantID, err)
		return nil, fmt.Errorf("%w: List - find slots: %v", ErrInternal, err)
	}

	return &models.SlotListResponse{
		Slots: models.FromDomainSlots(found),
		Pagination: models.Pagination{
			Limit:   filter.Limit,
			Offset:  filter.Offset,
			Total:   total,
			HasMore: filter.Offset+len(found) < total,
		},
	}, nil
}

// checkOwnership все ids существуют и принадлежат консультанту
func (s *Service) checkOwnership(ctx context.Context, consultantID string, ids []string) error {
	owned, err := s.slotRepo.Count(ctx, domain.SlotFilter{ConsultantID: consultantID, IDs: ids})
	if err != nil {
		return fmt.Errorf("%w: checkOwnership - count slots: %w", ErrInternal, err)
	}
	if owned != len(ids) {
		return ErrSlotsNotOwned
	}
	return nil
}

func (s *Service) incConflict(op string) {
	if s.metrics != nil {
		s.metrics.IncBookingConflict(s.serviceName, op)
	}
}

// fail логирует ошибку транзакции; ошибки без вида считаются внутренними
func (s *Service) fail(op, consultantID string, err error) error {
	de, ok := domain.AsError(err)
	if !ok {
		s.logger.Error("%s: transaction error for consultant=%s: %v", op, consultantID, err)
		return fmt.Errorf("%w: %s - transaction: %v", ErrInternal, op, err)
	}
	if de.Kind == domain.KindInternal {
		s.logger.Error("%s: internal error for consultant=%s: %v", op, consultantID, err)
		return err
	}
	s.logger.Warn("%s: rejected for consultant=%s: %v", op, consultantID, err)
	return err
}

func toDomainFilter(consultantID string, req *models.ListSlotsRequest) (domain.SlotFilter, error) {
	filter := domain.SlotFilter{
		ConsultantID: consultantID,
		IsBooked:     req.IsBooked,
		IsBlocked:    req.IsBlocked,
		Limit:        req.Limit,
		Offset:       req.Offset,
	}

	if req.SessionType != nil {
		sessionType := domain.SessionType(*req.SessionType)
		if !sessionType.IsValid() {
			return filter, ErrInvalidSessionType
		}
		filter.SessionType = &sessionType
	}
	if req.StartDate != nil {
		d, err := domain.ParseDate(*req.StartDate)
		if err != nil {
			return filter, ErrInvalidDate
		}
		filter.StartDate = &d
	}
	if req.EndDate != nil {
		d, err := domain.ParseDate(*req.EndDate)
		if err != nil {
			return filter, ErrInvalidDate
		}
		filter.EndDate = &d
	}

	if filter.Limit <= 0 {
		filter.Limit = domain.DefaultQueryLimit
	}
	if filter.Limit > domain.MaxQueryLimit {
		filter.Limit = domain.MaxQueryLimit
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	return filter, nil
}

// uniqueIDs убирает дубликаты, сохраняя порядок
func uniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func allUUIDs(ids []string) bool {
	for _, id := range ids {
		if _, err := uuid.Parse(id); err != nil {
			return false
		}
	}
	return true
}
