// Package ledger единственная точка записи календаря: сериализованный
// по датам коммит "перепроверить и вставить".
package ledger

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Freeeeeet/receptionist_bot/internal/model"
	"github.com/Freeeeeet/receptionist_bot/internal/schedule"
	"github.com/Freeeeeet/receptionist_bot/internal/timegrid"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SlotUnavailableError запрошенный интервал занят на момент коммита
type SlotUnavailableError struct {
	Date  string
	Start string
}

func (e *SlotUnavailableError) Error() string {
	return fmt.Sprintf("slot %s %s is not available", e.Date, e.Start)
}

// Store персистентный слой календаря и записей.
// Append должен записать блок и Booking атомарно (одной транзакцией).
type Store interface {
	// TakenRanges возвращает занятые блоки даты, отсортированные по старту
	TakenRanges(ctx context.Context, date string) ([]model.TimeRange, error)
	// Append добавляет блок в календарь даты и сохраняет запись
	Append(ctx context.Context, block model.TimeRange, booking *model.Booking) error
}

// Ledger сериализует коммиты по датам: последовательность
// "разрешить слоты заново -> вставить" для одной даты выполняется
// в критической секции, коммиты на разные даты идут параллельно.
type Ledger struct {
	resolver *schedule.Resolver
	store    Store
	clock    func() time.Time
	logger   *zap.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex // дата -> мьютекс даты
}

func NewLedger(resolver *schedule.Resolver, store Store, clock func() time.Time, logger *zap.Logger) *Ledger {
	return &Ledger{
		resolver: resolver,
		store:    store,
		clock:    clock,
		logger:   logger,
		locks:    make(map[string]*sync.Mutex),
	}
}

func (l *Ledger) dateLock(date string) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()

	lock, ok := l.locks[date]
	if !ok {
		lock = &sync.Mutex{}
		l.locks[date] = lock
	}
	return lock
}

// Commit бронирует слот. Прямо перед записью заново выполняется полное
// разрешение доступности: это закрывает зазор между "предложили" и
// "забронировали". Из двух конкурирующих коммитов на пересекающиеся
// интервалы ровно один получает Booking, второй — SlotUnavailableError.
func (l *Ledger) Commit(
	ctx context.Context,
	date time.Time,
	start string,
	svc *model.ServiceDefinition,
	client model.Client,
) (*model.Booking, error) {
	dateStr := date.Format(timegrid.DateLayout)

	lock := l.dateLock(dateStr)
	lock.Lock()
	defer lock.Unlock()

	free, err := l.resolver.Resolve(ctx, date, svc, "", time.Time{})
	if err != nil {
		return nil, fmt.Errorf("re-resolve availability: %w", err)
	}
	if !contains(free, start) {
		return nil, &SlotUnavailableError{Date: dateStr, Start: start}
	}

	startMinutes, err := timegrid.NormalizeTime(start)
	if err != nil {
		return nil, fmt.Errorf("parse start time: %w", err)
	}
	block := model.TimeRange{Start: startMinutes, End: startMinutes + svc.DurationMinutes}

	booking := &model.Booking{
		ID:              uuid.NewString(),
		Date:            dateStr,
		Start:           model.MinutesToClock(block.Start),
		End:             model.MinutesToClock(block.End),
		ServiceName:     svc.Name,
		DurationMinutes: svc.DurationMinutes,
		Client:          client,
		CreatedAt:       l.clock(),
	}

	if err := l.store.Append(ctx, block, booking); err != nil {
		return nil, fmt.Errorf("append booking: %w", err)
	}

	l.logger.Info("Slot booked",
		zap.String("booking_id", booking.ID),
		zap.String("date", booking.Date),
		zap.String("time", booking.Start+"-"+booking.End),
		zap.String("service", booking.ServiceName),
	)

	return booking, nil
}

func contains(slots []string, start string) bool {
	for _, s := range slots {
		if s == start {
			return true
		}
	}
	return false
}
