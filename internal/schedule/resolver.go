// Package schedule вычисляет доступные стартовые слоты на дату
// по недельному шаблону, исключениям и занятым блокам календаря.
package schedule

import (
	"context"
	"fmt"
	"time"

	"github.com/Freeeeeet/receptionist_bot/internal/model"
	"github.com/Freeeeeet/receptionist_bot/internal/timegrid"
	"go.uber.org/zap"
)

// ConfigurationError некорректная конфигурация рабочих часов на дату.
// Не роняет весь движок: разрешение для этой даты возвращает пустой
// список слотов и эту ошибку.
type ConfigurationError struct {
	Date   string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("bad working hours for %s: %s", e.Date, e.Reason)
}

// HoursProvider отдаёт конфигурацию рабочих часов
type HoursProvider interface {
	WorkingHours(ctx context.Context) (*model.WorkingHours, error)
}

// CalendarReader читает занятые блоки на дату
type CalendarReader interface {
	TakenRanges(ctx context.Context, date string) ([]model.TimeRange, error)
}

// DayHours рабочие часы на конкретную дату (с учётом исключений)
type DayHours struct {
	Date    string            `json:"date"`
	Weekday string            `json:"weekday"`
	Ranges  []model.TimeRange `json:"ranges"`
	Closed  bool              `json:"closed"`
}

// Resolver отвечает на вопрос "какие стартовые времена доступны".
// Только читает: единственная точка записи календаря — Booking Ledger.
type Resolver struct {
	hours        HoursProvider
	calendar     CalendarReader
	slotInterval int
	clock        func() time.Time // текущее время в таймзоне салона
	logger       *zap.Logger
}

func NewResolver(
	hours HoursProvider,
	calendar CalendarReader,
	slotInterval int,
	clock func() time.Time,
	logger *zap.Logger,
) *Resolver {
	return &Resolver{
		hours:        hours,
		calendar:     calendar,
		slotInterval: slotInterval,
		clock:        clock,
		logger:       logger,
	}
}

// Hours возвращает рабочие интервалы на дату с применённым исключением
func (r *Resolver) Hours(ctx context.Context, date time.Time) (*DayHours, error) {
	wh, err := r.hours.WorkingHours(ctx)
	if err != nil {
		return nil, fmt.Errorf("load working hours: %w", err)
	}

	dateStr := date.Format(timegrid.DateLayout)
	ranges, _ := wh.RangesFor(dateStr, date.Weekday())
	if err := validateRanges(dateStr, ranges); err != nil {
		return nil, err
	}

	return &DayHours{
		Date:    dateStr,
		Weekday: date.Weekday().String()[:3],
		Ranges:  ranges,
		Closed:  len(ranges) == 0,
	}, nil
}

// Resolve возвращает упорядоченный список доступных стартов "HH:MM".
// Пустой список — не ошибка: это документированный исход "нет слотов".
// now переопределяет текущее время для отсечки "сегодня"; нулевое
// значение означает "взять из часов резолвера".
func (r *Resolver) Resolve(
	ctx context.Context,
	date time.Time,
	svc *model.ServiceDefinition,
	daypart timegrid.Daypart,
	now time.Time,
) ([]string, error) {
	day, err := r.Hours(ctx, date)
	if err != nil {
		return nil, err
	}
	if day.Closed {
		return nil, nil
	}

	// Интервалы дня дизъюнктны и отсортированы, поэтому конкатенация
	// сохраняет хронологический порядок без дедупликации.
	var candidates []int
	for _, open := range day.Ranges {
		candidates = append(candidates, timegrid.ExpandSlots(open, r.slotInterval, svc.DurationMinutes)...)
	}

	taken, err := r.calendar.TakenRanges(ctx, day.Date)
	if err != nil {
		return nil, fmt.Errorf("read calendar for %s: %w", day.Date, err)
	}

	var free []string
	if now.IsZero() {
		now = r.clock()
	}
	isToday := day.Date == now.Format(timegrid.DateLayout)
	nowMinutes := now.Hour()*60 + now.Minute()

	for _, start := range candidates {
		slot := model.TimeRange{Start: start, End: start + svc.DurationMinutes}
		if overlapsAny(slot, taken) {
			continue
		}
		if daypart != "" && !daypart.Contains(start) {
			continue
		}
		// На сегодняшнюю дату слот должен заканчиваться в будущем
		if isToday && slot.End <= nowMinutes {
			continue
		}
		free = append(free, model.MinutesToClock(start))
	}

	r.logger.Debug("Availability resolved",
		zap.String("date", day.Date),
		zap.String("service", svc.Name),
		zap.Int("free", len(free)),
		zap.Int("taken_blocks", len(taken)),
	)

	return free, nil
}

func overlapsAny(slot model.TimeRange, taken []model.TimeRange) bool {
	for _, t := range taken {
		if slot.Overlaps(t) {
			return true
		}
	}
	return false
}

// validateRanges проверяет инвариант конфигурации: интервалы корректны,
// отсортированы и не пересекаются
func validateRanges(date string, ranges []model.TimeRange) error {
	for i, rg := range ranges {
		if !rg.Valid() {
			return &ConfigurationError{Date: date, Reason: fmt.Sprintf("interval %s has end <= start", rg)}
		}
		if i > 0 && rg.Start < ranges[i-1].End {
			return &ConfigurationError{Date: date, Reason: fmt.Sprintf("intervals %s and %s overlap or are out of order", ranges[i-1], rg)}
		}
	}
	return nil
}
