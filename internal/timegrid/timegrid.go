// Package timegrid нормализует пользовательский ввод даты/времени
// и разворачивает рабочие интервалы в сетку стартовых слотов.
package timegrid

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Freeeeeet/receptionist_bot/internal/model"
)

// DateLayout формат дат во всём ядре
const DateLayout = "2006-01-02"

// ParseError ошибка разбора даты или времени.
// Никогда не подменяется значением по умолчанию: некорректный ввод
// всегда возвращается вызывающему.
type ParseError struct {
	Input string
	Want  string // что ожидалось: "time" или "date"
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("cannot parse %s %q", e.Want, e.Input)
}

// Daypart грубая часть дня для фильтрации слотов
type Daypart string

const (
	DaypartMorning   Daypart = "morning"   // до 12:00
	DaypartAfternoon Daypart = "afternoon" // 12:00-16:59
	DaypartEvening   Daypart = "evening"   // с 17:00
	DaypartNight     Daypart = "night"     // с 21:00, подмножество вечера
)

// Contains проверяет попадание старта слота (в минутах) в часть дня
func (d Daypart) Contains(startMinutes int) bool {
	switch d {
	case DaypartMorning:
		return startMinutes < 12*60
	case DaypartAfternoon:
		return startMinutes >= 12*60 && startMinutes < 17*60
	case DaypartEvening:
		return startMinutes >= 17*60
	case DaypartNight:
		return startMinutes >= 21*60
	}
	return true
}

// ExtractDaypart отделяет слово-часть дня от фразы ("tomorrow afternoon").
// Возвращает очищенную фразу и найденную часть дня (или "").
func ExtractDaypart(phrase string) (string, Daypart) {
	s := strings.ToLower(strings.TrimSpace(phrase))
	for _, dp := range []Daypart{DaypartMorning, DaypartAfternoon, DaypartEvening, DaypartNight} {
		if strings.Contains(s, string(dp)) {
			clean := strings.TrimSpace(strings.ReplaceAll(s, string(dp), ""))
			return clean, dp
		}
	}
	return s, ""
}

// NormalizeTime приводит ввод времени к минутам от полуночи.
// Принимает "9", "09", "9:00", "9.00", "9am", "1:30 pm", "13:45".
// Число без am/pm трактуется как час 24-часовой шкалы.
func NormalizeTime(text string) (int, error) {
	t := strings.ToLower(strings.TrimSpace(text))
	t = strings.ReplaceAll(t, ".", ":")
	t = strings.ReplaceAll(t, " ", "")
	if t == "" {
		return 0, &ParseError{Input: text, Want: "time"}
	}

	var meridiem string
	if strings.HasSuffix(t, "am") || strings.HasSuffix(t, "pm") {
		meridiem = t[len(t)-2:]
		t = t[:len(t)-2]
	}

	var hour, minute int
	if h, err := strconv.Atoi(t); err == nil {
		hour = h
	} else if before, after, found := strings.Cut(t, ":"); found {
		h, errH := strconv.Atoi(before)
		m, errM := strconv.Atoi(after)
		if errH != nil || errM != nil {
			return 0, &ParseError{Input: text, Want: "time"}
		}
		hour, minute = h, m
	} else {
		return 0, &ParseError{Input: text, Want: "time"}
	}

	switch meridiem {
	case "am":
		if hour == 12 {
			hour = 0
		}
	case "pm":
		if hour != 12 {
			hour += 12
		}
	}

	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, &ParseError{Input: text, Want: "time"}
	}
	return hour*60 + minute, nil
}

// NormalizeClock как NormalizeTime, но возвращает строку "HH:MM"
func NormalizeClock(text string) (string, error) {
	m, err := NormalizeTime(text)
	if err != nil {
		return "", err
	}
	return model.MinutesToClock(m), nil
}

var weekdayIndex = map[string]time.Weekday{
	"mon": time.Monday,
	"tue": time.Tuesday,
	"wed": time.Wednesday,
	"thu": time.Thursday,
	"fri": time.Friday,
	"sat": time.Saturday,
	"sun": time.Sunday,
}

// NormalizeDate разбирает фразу с датой относительно reference.
// Принимает ISO "YYYY-MM-DD", "MM/DD", "today", "tomorrow",
// название дня недели (ближайшее вхождение начиная с reference)
// и "next <weekday>" (всегда на следующей неделе, если день совпадает с сегодняшним).
func NormalizeDate(text string, reference time.Time) (time.Time, error) {
	s := strings.ToLower(strings.TrimSpace(text))
	if s == "" {
		return time.Time{}, &ParseError{Input: text, Want: "date"}
	}

	midnight := time.Date(reference.Year(), reference.Month(), reference.Day(), 0, 0, 0, 0, reference.Location())

	if d, err := time.ParseInLocation(DateLayout, s, reference.Location()); err == nil {
		return d, nil
	}

	// MM/DD в пределах года точки отсчёта
	if before, after, found := strings.Cut(s, "/"); found {
		m, errM := strconv.Atoi(before)
		d, errD := strconv.Atoi(after)
		if errM == nil && errD == nil && m >= 1 && m <= 12 && d >= 1 && d <= 31 {
			candidate := time.Date(reference.Year(), time.Month(m), d, 0, 0, 0, 0, reference.Location())
			if candidate.Month() == time.Month(m) && candidate.Day() == d {
				return candidate, nil
			}
		}
		return time.Time{}, &ParseError{Input: text, Want: "date"}
	}

	switch s {
	case "today", "todays":
		return midnight, nil
	case "tomorrow", "tmrw", "tmr":
		return midnight.AddDate(0, 0, 1), nil
	}

	tokens := strings.Fields(s)
	if len(tokens) == 1 {
		if wd, ok := weekdayIndex[prefix3(tokens[0])]; ok {
			delta := (int(wd) - int(midnight.Weekday()) + 7) % 7
			return midnight.AddDate(0, 0, delta), nil
		}
	}
	if len(tokens) == 2 && tokens[0] == "next" {
		if wd, ok := weekdayIndex[prefix3(tokens[1])]; ok {
			delta := (int(wd) - int(midnight.Weekday()) + 7) % 7
			if delta == 0 {
				delta = 7
			}
			return midnight.AddDate(0, 0, delta), nil
		}
	}

	return time.Time{}, &ParseError{Input: text, Want: "date"}
}

func prefix3(s string) string {
	if len(s) > 3 {
		return s[:3]
	}
	return s
}

// ExpandSlots разворачивает открытый интервал в стартовые слоты.
// Кандидаты идут с шагом slotInterval от начала интервала; слот остаётся,
// только если услуга целиком помещается до закрытия.
func ExpandSlots(open model.TimeRange, slotInterval, serviceMinutes int) []int {
	var slots []int
	for t := open.Start; t+serviceMinutes <= open.End; t += slotInterval {
		slots = append(slots, t)
	}
	return slots
}
