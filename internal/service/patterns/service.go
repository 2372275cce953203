package patterns

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-AvailabilityService/internal/domain"
	patternRepo "github.com/m04kA/SMC-AvailabilityService/internal/infra/storage/pattern"
	"github.com/m04kA/SMC-AvailabilityService/internal/service/patterns/models"
	"github.com/m04kA/SMC-AvailabilityService/internal/service/reconciliation"
)

// Service сервис недельных шаблонов доступности консультанта
// Любое изменение шаблонов и согласование слотов выполняются в одной serializable транзакции
type Service struct {
	patternRepo PatternRepository
	reconciler  Reconciler
	txManager   TransactionManager
	cache       CacheInvalidator
	logger      Logger
}

// NewService создает новый экземпляр сервиса шаблонов
func NewService(
	patternRepo PatternRepository,
	reconciler Reconciler,
	txManager TransactionManager,
	cache CacheInvalidator,
	logger Logger,
) *Service {
	return &Service{
		patternRepo: patternRepo,
		reconciler:  reconciler,
		txManager:   txManager,
		cache:       cache,
		logger:      logger,
	}
}

// Create создает шаблон, отклоняя пересечения с существующими шаблонами того же типа и дня
func (s *Service) Create(ctx context.Context, consultantID string, in *models.PatternInput) (*models.PatternMutationResponse, error) {
	s.logger.Info("Create: consultant=%s, type=%s, day=%d, %s-%s", consultantID, in.SessionType, in.DayOfWeek, in.StartTime, in.EndTime)

	pattern := in.ToDomain(consultantID)
	if err := pattern.Validate(); err != nil {
		s.logger.Warn("Create: validation failed for consultant=%s: %v", consultantID, err)
		return nil, err
	}

	var (
		created *domain.WeeklyPattern
		result  *reconciliation.Result
	)
	err := s.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		if err := s.checkOverlap(txCtx, pattern); err != nil {
			return err
		}

		var err error
		created, err = s.patternRepo.Create(txCtx, pattern)
		if err != nil {
			return fmt.Errorf("%w: Create - create pattern: %w", ErrInternal, err)
		}

		result, err = s.reconciler.Reconcile(txCtx, consultantID, nil, []*domain.WeeklyPattern{created})
		return err
	})
	if err != nil {
		return nil, s.fail("Create", consultantID, err)
	}

	s.cache.InvalidateConsultant(ctx, consultantID)

	s.logger.Info("Create: created pattern id=%s for consultant=%s, restored=%d", created.ID, consultantID, result.Restored)
	return &models.PatternMutationResponse{
		Pattern:        models.FromDomainPattern(created),
		Reconciliation: summary(result),
	}, nil
}

// List возвращает шаблоны консультанта, упорядоченные по (dayOfWeek, startTime)
func (s *Service) List(ctx context.Context, consultantID string, req *models.ListPatternsRequest) (*models.PatternListResponse, error) {
	filter := domain.PatternFilter{
		ConsultantID: consultantID,
		ActiveOnly:   req.ActiveOnly,
	}
	if req.SessionType != nil {
		sessionType := domain.SessionType(*req.SessionType)
		if !sessionType.IsValid() {
			return nil, ErrInvalidSessionType
		}
		filter.SessionType = &sessionType
	}

	patterns, err := s.patternRepo.List(ctx, filter)
	if err != nil {
		s.logger.Error("List: repository error for consultant=%s: %v", consultantID, err)
		return nil, fmt.Errorf("%w: List - repository error: %v", ErrInternal, err)
	}

	return &models.PatternListResponse{
		Patterns: models.FromDomainPatterns(patterns),
		Total:    len(patterns),
	}, nil
}

// Update частично обновляет шаблон и согласует его слоты
func (s *Service) Update(ctx context.Context, consultantID, id string, req *models.UpdatePatternRequest) (*models.PatternMutationResponse, error) {
	s.logger.Info("Update: consultant=%s, pattern=%s", consultantID, id)

	if req.IsEmpty() {
		return nil, ErrEmptyUpdate
	}

	var (
		updated *domain.WeeklyPattern
		result  *reconciliation.Result
	)
	err := s.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		current, err := s.getPattern(txCtx, consultantID, id)
		if err != nil {
			return err
		}

		candidate := req.Apply(current)
		if err := candidate.Validate(); err != nil {
			return err
		}
		if err := s.checkOverlap(txCtx, candidate); err != nil {
			return err
		}

		updated, err = s.patternRepo.Update(txCtx, candidate)
		if err != nil {
			if errors.Is(err, patternRepo.ErrPatternNotFound) {
				return ErrPatternNotFound
			}
			return fmt.Errorf("%w: Update - update pattern: %w", ErrInternal, err)
		}

		result, err = s.reconciler.Reconcile(txCtx, consultantID,
			[]*domain.WeeklyPattern{current},
			[]*domain.WeeklyPattern{updated},
		)
		return err
	})
	if err != nil {
		return nil, s.fail("Update", consultantID, err)
	}

	s.cache.InvalidateConsultant(ctx, consultantID)

	s.logger.Info("Update: updated pattern id=%s, blocked=%d, restored=%d, retimed=%d",
		id, result.Blocked, result.Restored, result.Retimed)
	return &models.PatternMutationResponse{
		Pattern:        models.FromDomainPattern(updated),
		Reconciliation: summary(result),
	}, nil
}

// Delete удаляет шаблон и блокирует его будущие свободные слоты
func (s *Service) Delete(ctx context.Context, consultantID, id string) (*models.DeletePatternResponse, error) {
	s.logger.Info("Delete: consultant=%s, pattern=%s", consultantID, id)

	var result *reconciliation.Result
	err := s.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		current, err := s.getPattern(txCtx, consultantID, id)
		if err != nil {
			return err
		}

		if err := s.patternRepo.Delete(txCtx, consultantID, id); err != nil {
			if errors.Is(err, patternRepo.ErrPatternNotFound) {
				return ErrPatternNotFound
			}
			return fmt.Errorf("%w: Delete - delete pattern: %w", ErrInternal, err)
		}

		result, err = s.reconciler.Reconcile(txCtx, consultantID, []*domain.WeeklyPattern{current}, nil)
		return err
	})
	if err != nil {
		return nil, s.fail("Delete", consultantID, err)
	}

	s.cache.InvalidateConsultant(ctx, consultantID)

	s.logger.Info("Delete: deleted pattern id=%s, blocked=%d", id, result.Blocked)
	return &models.DeletePatternResponse{
		ID:             id,
		Reconciliation: summary(result),
	}, nil
}

// BulkReplace заменяет весь набор шаблонов консультанта
// Слоты исчезнувших ключей блокируются, вновь появившихся разблокируются
func (s *Service) BulkReplace(ctx context.Context, consultantID string, inputs []models.PatternInput) (*models.BulkReplaceResponse, error) {
	s.logger.Info("BulkReplace: consultant=%s, patterns=%d", consultantID, len(inputs))

	incoming := make([]*domain.WeeklyPattern, 0, len(inputs))
	for i := range inputs {
		p := inputs[i].ToDomain(consultantID)
		if err := p.Validate(); err != nil {
			s.logger.Warn("BulkReplace: validation failed for item %d: %v", i, err)
			return nil, err
		}
		if other := domain.FindOverlap(p, incoming); other != nil {
			s.logger.Warn("BulkReplace: item %d overlaps %s", i, other.Key())
			return nil, ErrPatternsOverlapInRequest
		}
		incoming = append(incoming, p)
	}

	var (
		created = make([]*domain.WeeklyPattern, 0, len(incoming))
		removed int64
		result  *reconciliation.Result
	)
	err := s.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		created = created[:0]

		previous, err := s.patternRepo.List(txCtx, domain.PatternFilter{ConsultantID: consultantID, ForUpdate: true})
		if err != nil {
			return fmt.Errorf("%w: BulkReplace - list patterns: %w", ErrInternal, err)
		}

		removed, err = s.patternRepo.DeleteByConsultant(txCtx, consultantID)
		if err != nil {
			return fmt.Errorf("%w: BulkReplace - delete patterns: %w", ErrInternal, err)
		}

		for _, p := range incoming {
			// ID выдается заново при каждой попытке транзакции
			fresh := *p
			c, err := s.patternRepo.Create(txCtx, &fresh)
			if err != nil {
				return fmt.Errorf("%w: BulkReplace - create pattern: %w", ErrInternal, err)
			}
			created = append(created, c)
		}

		result, err = s.reconciler.Reconcile(txCtx, consultantID, previous, created)
		return err
	})
	if err != nil {
		return nil, s.fail("BulkReplace", consultantID, err)
	}

	s.cache.InvalidateConsultant(ctx, consultantID)

	s.logger.Info("BulkReplace: consultant=%s, removed=%d, created=%d, blocked=%d, restored=%d",
		consultantID, removed, len(created), result.Blocked, result.Restored)
	return &models.BulkReplaceResponse{
		Patterns:       models.FromDomainPatterns(created),
		Removed:        removed,
		Reconciliation: summary(result),
	}, nil
}

// checkOverlap ищет пересечение среди шаблонов того же типа и дня, включая неактивные
func (s *Service) checkOverlap(ctx context.Context, p *domain.WeeklyPattern) error {
	sessionType := p.SessionType
	dayOfWeek := p.DayOfWeek

	existing, err := s.patternRepo.List(ctx, domain.PatternFilter{
		ConsultantID: p.ConsultantID,
		SessionType:  &sessionType,
		DayOfWeek:    &dayOfWeek,
		ForUpdate:    true,
	})
	if err != nil {
		return fmt.Errorf("%w: checkOverlap - list patterns: %w", ErrInternal, err)
	}

	if other := domain.FindOverlap(p, existing); other != nil {
		s.logger.Warn("checkOverlap: %s-%s overlaps pattern id=%s (%s-%s)",
			p.StartTime, p.EndTime, other.ID, other.StartTime, other.EndTime)
		return ErrPatternOverlap
	}
	return nil
}

func (s *Service) getPattern(ctx context.Context, consultantID, id string) (*domain.WeeklyPattern, error) {
	p, err := s.patternRepo.GetByID(ctx, consultantID, id)
	if err != nil {
		if errors.Is(err, patternRepo.ErrPatternNotFound) {
			return nil, ErrPatternNotFound
		}
		return nil, fmt.Errorf("%w: getPattern - repository error: %w", ErrInternal, err)
	}
	return p, nil
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

func summary(r *reconciliation.Result) models.ReconciliationSummary {
	if r == nil {
		return models.ReconciliationSummary{}
	}
	return models.ReconciliationSummary{
		SlotsBlocked:  r.Blocked,
		SlotsRestored: r.Restored,
		SlotsRetimed:  r.Retimed,
	}
}
