package formatting

import (
	"fmt"
	"time"

	"github.com/Freeeeeet/receptionist_bot/internal/model"
)

// FormatPrice форматирует цену из центов
func FormatPrice(priceCents int64) string {
	price := float64(priceCents) / 100
	return fmt.Sprintf("$%.2f", price)
}

// FormatPriceShort форматирует цену без центов, если они равны 0
func FormatPriceShort(priceCents int64) string {
	if priceCents%100 == 0 {
		return fmt.Sprintf("$%.0f", float64(priceCents)/100)
	}
	return FormatPrice(priceCents)
}

// FormatDuration форматирует длительность в минутах
func FormatDuration(minutes int) string {
	if minutes < 60 {
		return fmt.Sprintf("%d мин", minutes)
	}
	hours := minutes / 60
	mins := minutes % 60
	if mins == 0 {
		return fmt.Sprintf("%d ч", hours)
	}
	return fmt.Sprintf("%d ч %d мин", hours, mins)
}

// FormatService строка услуги для списка
func FormatService(svc *model.ServiceDefinition) string {
	line := fmt.Sprintf("• %s — %s", svc.Name, FormatDuration(svc.DurationMinutes))
	if svc.PriceCents != nil {
		line += ", " + FormatPriceShort(*svc.PriceCents)
	}
	return line
}

// FormatDateTime форматирует дату и время
func FormatDateTime(t time.Time) string {
	return t.Format("02.01.2006 15:04")
}

// FormatRanges форматирует рабочие интервалы дня
func FormatRanges(ranges []model.TimeRange) string {
	if len(ranges) == 0 {
		return "закрыто"
	}
	out := ""
	for i, rg := range ranges {
		if i > 0 {
			out += ", "
		}
		out += rg.String()
	}
	return out
}
