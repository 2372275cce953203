package scheduler

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-AvailabilityService/internal/domain"
	"github.com/m04kA/SMC-AvailabilityService/internal/usecase/generate_slots"
)

const defaultListLimit = 20

// Scheduler периодически продлевает горизонт слотов всех консультантов с активными шаблонами
// Одновременно выполняется не больше одного прогона
type Scheduler struct {
	patternRepo  PatternRepository
	generator    Generator
	store        StatusStore
	timeProvider TimeProvider
	interval     time.Duration
	horizonDays  int
	logger       Logger

	// Базовый контекст всех прогонов, отменяется в Stop
	baseCtx context.Context
	cancel  context.CancelFunc

	running  atomic.Bool
	wg       sync.WaitGroup
	stopOnce sync.Once
	stopChan chan struct{}
}

// NewScheduler создаёт новый планировщик
func NewScheduler(
	patternRepo PatternRepository,
	generator Generator,
	store StatusStore,
	timeProvider TimeProvider,
	interval time.Duration,
	horizonDays int,
	logger Logger,
) *Scheduler {
	baseCtx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		baseCtx:      baseCtx,
		cancel:       cancel,
		patternRepo:  patternRepo,
		generator:    generator,
		store:        store,
		timeProvider: timeProvider,
		interval:     interval,
		horizonDays:  horizonDays,
		logger:       logger,
		stopChan:     make(chan struct{}),
	}
}

// Start запускает периодическую генерацию, первый прогон сразу
func (s *Scheduler) Start(ctx context.Context) {
	s.logger.Info("Scheduler: starting, interval=%s, horizon_days=%d", s.interval, s.horizonDays)

	// Отмена контекста приложения прерывает и ручные прогоны
	context.AfterFunc(ctx, s.cancel)
	ctx = s.baseCtx

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.tick(ctx)

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.tick(ctx)
			case <-s.stopChan:
				s.logger.Info("Scheduler: stopped")
				return
			case <-ctx.Done():
				s.logger.Info("Scheduler: cancelled")
				return
			}
		}
	}()
}

// Stop останавливает тикер, прерывает текущий прогон на границе консультанта и ждет его завершения
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopChan)
		s.cancel()
	})
	s.wg.Wait()
}

func (s *Scheduler) tick(ctx context.Context) {
	if _, err := s.RunOnce(ctx, TriggerSchedule); err != nil {
		s.logger.Warn("Scheduler: scheduled run skipped: %v", err)
	}
}

// RunOnce синхронно выполняет прогон и возвращает его итоговый статус
func (s *Scheduler) RunOnce(ctx context.Context, trigger Trigger) (*JobStatus, error) {
	job, err := s.begin(ctx, trigger)
	if err != nil {
		return nil, err
	}
	s.run(ctx, job)
	return job.clone(), nil
}

// Trigger запускает прогон в фоне и сразу возвращает статус running
func (s *Scheduler) Trigger(ctx context.Context) (*JobStatus, error) {
	job, err := s.begin(ctx, TriggerManual)
	if err != nil {
		return nil, err
	}
	snapshot := job.clone()

	// Контекст запроса завершится раньше прогона
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.run(s.baseCtx, job)
	}()
	return snapshot, nil
}

// Get статус прогона по id
func (s *Scheduler) Get(ctx context.Context, id string) (*JobStatus, error) {
	job, ok, err := s.store.Get(ctx, id)
	if err != nil {
		s.logger.Error("Scheduler: failed to get job=%s: %v", id, err)
		return nil, fmt.Errorf("%w: get job: %v", ErrInternal, err)
	}
	if !ok {
		return nil, ErrJobNotFound
	}
	return job, nil
}

// List последние прогоны, новые первыми
func (s *Scheduler) List(ctx context.Context, limit int) ([]*JobStatus, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	jobs, err := s.store.List(ctx, limit)
	if err != nil {
		s.logger.Error("Scheduler: failed to list jobs: %v", err)
		return nil, fmt.Errorf("%w: list jobs: %v", ErrInternal, err)
	}
	return jobs, nil
}

func (s *Scheduler) begin(ctx context.Context, trigger Trigger) (*JobStatus, error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, ErrJobAlreadyRunning
	}

	today := domain.TruncateToDate(s.timeProvider.Now())
	job := &JobStatus{
		ID:        uuid.NewString(),
		Trigger:   trigger,
		Status:    StatusRunning,
		StartedAt: s.timeProvider.Now(),
		StartDate: today.Format(domain.DateFormat),
		EndDate:   today.AddDate(0, 0, s.horizonDays).Format(domain.DateFormat),
	}
	s.save(ctx, job)
	return job, nil
}

func (s *Scheduler) run(ctx context.Context, job *JobStatus) {
	defer s.running.Store(false)

	s.logger.Info("Scheduler: job=%s started, trigger=%s, range=%s..%s", job.ID, job.Trigger, job.StartDate, job.EndDate)

	// 1. Консультанты с активными шаблонами
	consultantIDs, err := s.patternRepo.ListConsultantIDsWithActivePatterns(ctx)
	if err != nil {
		s.logger.Error("Scheduler: job=%s failed to list consultants: %v", job.ID, err)
		job.Errors = append(job.Errors, err.Error())
		s.finish(ctx, job, StatusFailed)
		return
	}
	job.ConsultantsTotal = len(consultantIDs)

	// 2. Генерация по каждому, ошибка одного не останавливает остальных
	start, _ := domain.ParseDate(job.StartDate)
	end, _ := domain.ParseDate(job.EndDate)
	for _, consultantID := range consultantIDs {
		if ctx.Err() != nil {
			job.addError(consultantID, ctx.Err())
			continue
		}

		resp, err := s.generator.Execute(ctx, &generate_slots.Request{
			ConsultantID: consultantID,
			StartDate:    start,
			EndDate:      end,
		})
		if err != nil {
			s.logger.Warn("Scheduler: job=%s consultant=%s failed: %v", job.ID, consultantID, err)
			job.addError(consultantID, err)
			continue
		}
		job.SlotsCreated += resp.SlotsCreated
	}

	// 3. Прогон неуспешен, только если не удалось ни одному консультанту
	status := StatusCompleted
	if job.ConsultantsTotal > 0 && job.ConsultantsFailed == job.ConsultantsTotal {
		status = StatusFailed
	}
	s.finish(ctx, job, status)
}

func (s *Scheduler) finish(ctx context.Context, job *JobStatus, status Status) {
	finished := s.timeProvider.Now()
	job.Status = status
	job.FinishedAt = &finished
	// Итог сохраняется и после остановки
	s.save(context.WithoutCancel(ctx), job)

	s.logger.Info("Scheduler: job=%s %s, consultants=%d, failed=%d, slots_created=%d",
		job.ID, job.Status, job.ConsultantsTotal, job.ConsultantsFailed, job.SlotsCreated)
}

// Ошибка записи статуса не прерывает генерацию
func (s *Scheduler) save(ctx context.Context, job *JobStatus) {
	if err := s.store.Save(ctx, job); err != nil {
		s.logger.Warn("Scheduler: failed to save job=%s: %v", job.ID, err)
	}
}
