package model

import "fmt"

// TimeRange полуоткрытый интервал [Start, End) в минутах от полуночи
type TimeRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Overlaps проверяет пересечение с другим интервалом
func (r TimeRange) Overlaps(other TimeRange) bool {
	return r.Start < other.End && other.Start < r.End
}

// Valid проверяет что границы корректны
func (r TimeRange) Valid() bool {
	return r.Start >= 0 && r.End <= 24*60 && r.End > r.Start
}

// String форматирует интервал как "HH:MM-HH:MM"
func (r TimeRange) String() string {
	return fmt.Sprintf("%s-%s", MinutesToClock(r.Start), MinutesToClock(r.End))
}

// MinutesToClock переводит минуты от полуночи в "HH:MM"
func MinutesToClock(m int) string {
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}
