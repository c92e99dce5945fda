package model

import "time"

// WeeklyHours недельный шаблон рабочих часов: день недели -> открытые интервалы.
// Интервалы внутри дня отсортированы и не пересекаются.
type WeeklyHours map[time.Weekday][]TimeRange

// WorkingHours конфигурация расписания салона.
// Exceptions полностью заменяют шаблон на конкретную дату
// (пустой список = салон закрыт в этот день).
type WorkingHours struct {
	Weekly     WeeklyHours            `json:"weekly_hours"`
	Exceptions map[string][]TimeRange `json:"exceptions"` // ключ — дата "YYYY-MM-DD"
}

// RangesFor возвращает открытые интервалы на дату с учётом исключений.
// Второе значение — true, если для даты есть исключение.
func (w *WorkingHours) RangesFor(date string, weekday time.Weekday) ([]TimeRange, bool) {
	if ranges, ok := w.Exceptions[date]; ok {
		return ranges, true
	}
	return w.Weekly[weekday], false
}
