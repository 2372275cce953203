// Package memstore in-memory реализация репозиториев и менеджера транзакций для тестов
package memstore

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-AvailabilityService/internal/domain"
	patternRepo "github.com/m04kA/SMC-AvailabilityService/internal/infra/storage/pattern"
	slotRepo "github.com/m04kA/SMC-AvailabilityService/internal/infra/storage/slot"
)

type txKey struct{}

// Store общее состояние: шаблоны и слоты
// Транзакции сериализуются глобальным мьютексом, при ошибке состояние откатывается к снимку
type Store struct {
	mu       sync.Mutex
	txMu     sync.Mutex
	patterns map[string]*domain.WeeklyPattern
	slots    map[string]*domain.AvailabilitySlot
	failures map[string]error
}

func New() *Store {
	return &Store{
		patterns: make(map[string]*domain.WeeklyPattern),
		slots:    make(map[string]*domain.AvailabilitySlot),
		failures: make(map[string]error),
	}
}

// Fail заставляет операцию op (например "slots.Find") возвращать err
func (s *Store) Fail(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[op] = err
}

// Recover снимает все внедренные ошибки
func (s *Store) Recover() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = make(map[string]error)
}

func (s *Store) failure(op string) error {
	return s.failures[op]
}

func (s *Store) Patterns() *PatternRepo {
	return &PatternRepo{s: s}
}

func (s *Store) Slots() *SlotRepo {
	return &SlotRepo{s: s}
}

func (s *Store) TxManager() *TxManager {
	return &TxManager{s: s}
}

// AllSlots снимок всех слотов, отсортированный по (date, startTime, sessionType)
func (s *Store) AllSlots() []*domain.AvailabilitySlot {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*domain.AvailabilitySlot, 0, len(s.slots))
	for _, sl := range s.slots {
		out = append(out, cloneSlot(sl))
	}
	sortSlots(out)
	return out
}

// PutSlot кладет слот напрямую (подготовка данных в тестах)
func (s *Store) PutSlot(sl *domain.AvailabilitySlot) *domain.AvailabilitySlot {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := cloneSlot(sl)
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	s.slots[c.ID] = c
	return cloneSlot(c)
}

// Slot возвращает копию слота по ID
func (s *Store) Slot(id string) *domain.AvailabilitySlot {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sl, ok := s.slots[id]; ok {
		return cloneSlot(sl)
	}
	return nil
}

// TxManager выполняет функции под глобальной блокировкой с откатом при ошибке
type TxManager struct {
	s *Store
}

func (m *TxManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.run(ctx, fn)
}

func (m *TxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.run(ctx, fn)
}

func (m *TxManager) DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.run(ctx, fn)
}

func (m *TxManager) run(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txKey{}) != nil {
		return fn(ctx)
	}

	m.s.txMu.Lock()
	defer m.s.txMu.Unlock()

	patterns, slots := m.s.snapshot()
	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		m.s.restore(patterns, slots)
		return err
	}
	return nil
}

func (s *Store) snapshot() (map[string]*domain.WeeklyPattern, map[string]*domain.AvailabilitySlot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	patterns := make(map[string]*domain.WeeklyPattern, len(s.patterns))
	for k, v := range s.patterns {
		patterns[k] = clonePattern(v)
	}
	slots := make(map[string]*domain.AvailabilitySlot, len(s.slots))
	for k, v := range s.slots {
		slots[k] = cloneSlot(v)
	}
	return patterns, slots
}

func (s *Store) restore(patterns map[string]*domain.WeeklyPattern, slots map[string]*domain.AvailabilitySlot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.patterns = patterns
	s.slots = slots
}

// PatternRepo реализация репозитория шаблонов
type PatternRepo struct {
	s *Store
}

func (r *PatternRepo) Create(_ context.Context, p *domain.WeeklyPattern) (*domain.WeeklyPattern, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if err := r.s.failure("patterns.Create"); err != nil {
		return nil, err
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	r.s.patterns[p.ID] = clonePattern(p)
	return p, nil
}

func (r *PatternRepo) GetByID(_ context.Context, consultantID, id string) (*domain.WeeklyPattern, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if err := r.s.failure("patterns.GetByID"); err != nil {
		return nil, err
	}
	p, ok := r.s.patterns[id]
	if !ok || p.ConsultantID != consultantID {
		return nil, patternRepo.ErrPatternNotFound
	}
	return clonePattern(p), nil
}

func (r *PatternRepo) List(_ context.Context, filter domain.PatternFilter) ([]*domain.WeeklyPattern, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if err := r.s.failure("patterns.List"); err != nil {
		return nil, err
	}

	out := make([]*domain.WeeklyPattern, 0)
	for _, p := range r.s.patterns {
		if p.ConsultantID != filter.ConsultantID {
			continue
		}
		if filter.SessionType != nil && p.SessionType != *filter.SessionType {
			continue
		}
		if filter.DayOfWeek != nil && p.DayOfWeek != *filter.DayOfWeek {
			continue
		}
		if filter.ActiveOnly && !p.IsActive {
			continue
		}
		out = append(out, clonePattern(p))
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].DayOfWeek != out[j].DayOfWeek {
			return out[i].DayOfWeek < out[j].DayOfWeek
		}
		if out[i].StartTime != out[j].StartTime {
			return out[i].StartTime < out[j].StartTime
		}
		return out[i].SessionType < out[j].SessionType
	})
	return out, nil
}

func (r *PatternRepo) Update(_ context.Context, p *domain.WeeklyPattern) (*domain.WeeklyPattern, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if err := r.s.failure("patterns.Update"); err != nil {
		return nil, err
	}
	existing, ok := r.s.patterns[p.ID]
	if !ok || existing.ConsultantID != p.ConsultantID {
		return nil, patternRepo.ErrPatternNotFound
	}
	r.s.patterns[p.ID] = clonePattern(p)
	return p, nil
}

func (r *PatternRepo) Delete(_ context.Context, consultantID, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if err := r.s.failure("patterns.Delete"); err != nil {
		return err
	}
	p, ok := r.s.patterns[id]
	if !ok || p.ConsultantID != consultantID {
		return patternRepo.ErrPatternNotFound
	}
	delete(r.s.patterns, id)
	return nil
}

func (r *PatternRepo) DeleteByConsultant(_ context.Context, consultantID string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if err := r.s.failure("patterns.DeleteByConsultant"); err != nil {
		return 0, err
	}
	var n int64
	for id, p := range r.s.patterns {
		if p.ConsultantID == consultantID {
			delete(r.s.patterns, id)
			n++
		}
	}
	return n, nil
}

func (r *PatternRepo) ListConsultantIDsWithActivePatterns(_ context.Context) ([]string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if err := r.s.failure("patterns.ListConsultantIDsWithActivePatterns"); err != nil {
		return nil, err
	}
	seen := make(map[string]struct{})
	ids := make([]string, 0)
	for _, p := range r.s.patterns {
		if !p.IsActive {
			continue
		}
		if _, ok := seen[p.ConsultantID]; ok {
			continue
		}
		seen[p.ConsultantID] = struct{}{}
		ids = append(ids, p.ConsultantID)
	}
	sort.Strings(ids)
	return ids, nil
}

// SlotRepo реализация репозитория слотов
type SlotRepo struct {
	s *Store
}

func (r *SlotRepo) Find(_ context.Context, filter domain.SlotFilter) ([]*domain.AvailabilitySlot, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if err := r.s.failure("slots.Find"); err != nil {
		return nil, err
	}

	out := r.s.match(filter)
	sortSlots(out)

	if filter.Offset > 0 {
		if filter.Offset >= len(out) {
			out = out[:0]
		} else {
			out = out[filter.Offset:]
		}
	}
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}

	result := make([]*domain.AvailabilitySlot, len(out))
	for i, sl := range out {
		result[i] = cloneSlot(sl)
	}
	return result, nil
}

func (r *SlotRepo) Count(_ context.Context, filter domain.SlotFilter) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if err := r.s.failure("slots.Count"); err != nil {
		return 0, err
	}
	return len(r.s.match(filter)), nil
}

func (r *SlotRepo) GetByID(_ context.Context, id string) (*domain.AvailabilitySlot, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if err := r.s.failure("slots.GetByID"); err != nil {
		return nil, err
	}
	sl, ok := r.s.slots[id]
	if !ok {
		return nil, slotRepo.ErrSlotNotFound
	}
	return cloneSlot(sl), nil
}

// CreateBatch пропускает слоты с уже существующим уникальным ключом
func (r *SlotRepo) CreateBatch(_ context.Context, slots []*domain.AvailabilitySlot) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if err := r.s.failure("slots.CreateBatch"); err != nil {
		return 0, err
	}

	existing := make(map[string]struct{}, len(r.s.slots))
	for _, sl := range r.s.slots {
		existing[sl.ConsultantID+"|"+sl.Key()] = struct{}{}
	}

	inserted := 0
	for _, sl := range slots {
		key := sl.ConsultantID + "|" + sl.Key()
		if _, ok := existing[key]; ok {
			continue
		}
		if sl.ID == "" {
			sl.ID = uuid.NewString()
		}
		r.s.slots[sl.ID] = cloneSlot(sl)
		existing[key] = struct{}{}
		inserted++
	}
	return inserted, nil
}

func (r *SlotRepo) Update(_ context.Context, filter domain.SlotFilter, update domain.SlotUpdate) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if err := r.s.failure("slots.Update"); err != nil {
		return 0, err
	}
	if update.IsEmpty() {
		return 0, slotRepo.ErrEmptyUpdate
	}

	var n int64
	for _, sl := range r.s.match(filter) {
		if update.IsBooked != nil {
			sl.IsBooked = *update.IsBooked
		}
		if update.IsBlocked != nil {
			sl.IsBlocked = *update.IsBlocked
		}
		if update.EndTime != nil {
			sl.EndTime = *update.EndTime
		}
		if update.ClearSessionID {
			sl.SessionID = nil
		} else if update.SessionID != nil {
			id := *update.SessionID
			sl.SessionID = &id
		}
		n++
	}
	return n, nil
}

func (r *SlotRepo) DeleteUnbooked(_ context.Context, consultantID, id string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if err := r.s.failure("slots.DeleteUnbooked"); err != nil {
		return 0, err
	}
	sl, ok := r.s.slots[id]
	if !ok || sl.ConsultantID != consultantID || sl.IsBooked {
		return 0, nil
	}
	delete(r.s.slots, id)
	return 1, nil
}

// match возвращает указатели на слоты хранилища, вызывать под s.mu
func (s *Store) match(f domain.SlotFilter) []*domain.AvailabilitySlot {
	var ids map[string]struct{}
	if len(f.IDs) > 0 {
		ids = make(map[string]struct{}, len(f.IDs))
		for _, id := range f.IDs {
			ids[id] = struct{}{}
		}
	}

	out := make([]*domain.AvailabilitySlot, 0)
	for _, sl := range s.slots {
		if f.ConsultantID != "" && sl.ConsultantID != f.ConsultantID {
			continue
		}
		if ids != nil {
			if _, ok := ids[sl.ID]; !ok {
				continue
			}
		}
		if f.SessionType != nil && sl.SessionType != *f.SessionType {
			continue
		}
		if f.StartDate != nil && sl.Date.Before(*f.StartDate) {
			continue
		}
		if f.EndDate != nil && sl.Date.After(*f.EndDate) {
			continue
		}
		if f.StartTime != nil && sl.StartTime != *f.StartTime {
			continue
		}
		if f.DayOfWeek != nil && sl.DayOfWeek() != *f.DayOfWeek {
			continue
		}
		if f.IsBooked != nil && sl.IsBooked != *f.IsBooked {
			continue
		}
		if f.IsBlocked != nil && sl.IsBlocked != *f.IsBlocked {
			continue
		}
		out = append(out, sl)
	}
	return out
}

func sortSlots(slots []*domain.AvailabilitySlot) {
	sort.Slice(slots, func(i, j int) bool {
		if !slots[i].Date.Equal(slots[j].Date) {
			return slots[i].Date.Before(slots[j].Date)
		}
		if slots[i].StartTime != slots[j].StartTime {
			return slots[i].StartTime < slots[j].StartTime
		}
		return slots[i].SessionType < slots[j].SessionType
	})
}

func clonePattern(p *domain.WeeklyPattern) *domain.WeeklyPattern {
	c := *p
	return &c
}

func cloneSlot(sl *domain.AvailabilitySlot) *domain.AvailabilitySlot {
	c := *sl
	if sl.SessionID != nil {
		id := *sl.SessionID
		c.SessionID = &id
	}
	return &c
}

// ErrInjected удобная ошибка для Fail
var ErrInjected = errors.New("memstore: injected failure")
