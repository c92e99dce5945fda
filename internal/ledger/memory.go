package ledger

import (
	"context"
	"sort"
	"sync"

	"github.com/Freeeeeet/receptionist_bot/internal/model"
)

// MemoryStore хранит календарь и записи в памяти.
// Используется в тестах и при запуске без базы.
type MemoryStore struct {
	mu       sync.RWMutex
	calendar map[string][]model.TimeRange // дата -> занятые блоки, по возрастанию старта
	bookings []*model.Booking
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		calendar: make(map[string][]model.TimeRange),
	}
}

func (s *MemoryStore) TakenRanges(ctx context.Context, date string) ([]model.TimeRange, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ranges := s.calendar[date]
	out := make([]model.TimeRange, len(ranges))
	copy(out, ranges)
	return out, nil
}

func (s *MemoryStore) Append(ctx context.Context, block model.TimeRange, booking *model.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	day := append(s.calendar[booking.Date], block)
	sort.Slice(day, func(i, j int) bool { return day[i].Start < day[j].Start })
	s.calendar[booking.Date] = day

	s.bookings = append(s.bookings, booking)
	return nil
}

// Bookings возвращает копию журнала записей (только для чтения)
func (s *MemoryStore) Bookings() []*model.Booking {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*model.Booking, len(s.bookings))
	copy(out, s.bookings)
	return out
}

// Seed добавляет занятый блок напрямую, минуя коммит
func (s *MemoryStore) Seed(date string, block model.TimeRange) {
	s.mu.Lock()
	defer s.mu.Unlock()

	day := append(s.calendar[date], block)
	sort.Slice(day, func(i, j int) bool { return day[i].Start < day[j].Start })
	s.calendar[date] = day
}
