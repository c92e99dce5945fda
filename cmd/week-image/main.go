package main

import (
	"fmt"
	"os"
	"time"

	"github.com/Freeeeeet/receptionist_bot/internal/controller/weekimage"
	"github.com/Freeeeeet/receptionist_bot/internal/model"
)

// Отладочный рендер недельной картинки на тестовых данных, без базы
func main() {
	now := time.Now()
	startDate := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	// Начинаем с понедельника текущей недели
	for startDate.Weekday() != time.Monday {
		startDate = startDate.AddDate(0, 0, -1)
	}

	weekday := model.TimeRange{Start: 9 * 60, End: 17 * 60}
	saturday := model.TimeRange{Start: 10 * 60, End: 14 * 60}

	days := make([]weekimage.DaySchedule, 0, 7)
	for i := 0; i < 7; i++ {
		date := startDate.AddDate(0, 0, i)
		day := weekimage.DaySchedule{Date: date}
		switch date.Weekday() {
		case time.Sunday:
			// выходной
		case time.Saturday:
			day.Open = []model.TimeRange{saturday}
		default:
			day.Open = []model.TimeRange{weekday}
		}
		days = append(days, day)
	}

	// Немного занятых блоков для наглядности
	days[0].Taken = []model.TimeRange{{Start: 10 * 60, End: 10*60 + 30}, {Start: 14 * 60, End: 15 * 60}}
	days[2].Taken = []model.TimeRange{{Start: 9 * 60, End: 9*60 + 45}}

	imageData, err := weekimage.Render(days)
	if err != nil {
		fmt.Fprintf(os.Stderr, "render: %v\n", err)
		os.Exit(1)
	}

	if err := os.WriteFile("week.png", imageData, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "write week.png: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("week.png written")
}
