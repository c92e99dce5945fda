// Package weekimage рисует картинку недельной загрузки салона:
// рабочие интервалы и уже занятые блоки по дням.
package weekimage

import (
	"bytes"
	"fmt"
	"image/color"
	"time"

	"github.com/Freeeeeet/receptionist_bot/internal/model"
	"github.com/fogleman/gg"
	"golang.org/x/image/font/basicfont"
)

// DaySchedule данные одного дня для отрисовки
type DaySchedule struct {
	Date  time.Time
	Open  []model.TimeRange
	Taken []model.TimeRange
}

const (
	imageWidth      = 1120
	imageHeight     = 640
	headerHeight    = 70
	leftLabelsWidth = 64
	dayPaddingX     = 6
	totalDays       = 7
)

var (
	bgColor        = color.RGBA{245, 246, 248, 255}
	gridColor      = color.RGBA{210, 214, 218, 255}
	textColor      = color.RGBA{80, 85, 90, 255}
	openColor      = color.RGBA{178, 223, 191, 255}
	takenColor     = color.RGBA{240, 160, 160, 255}
	closedDayColor = color.RGBA{232, 233, 236, 255}
)

// Render рисует сетку недели и возвращает PNG
func Render(days []DaySchedule) ([]byte, error) {
	if len(days) != totalDays {
		return nil, fmt.Errorf("expected %d days, got %d", totalDays, len(days))
	}

	minHour, maxHour := hourBounds(days)
	dc := gg.NewContext(imageWidth, imageHeight)
	dc.SetFontFace(basicfont.Face7x13)

	dc.SetColor(bgColor)
	dc.Clear()

	dayWidth := float64(imageWidth-leftLabelsWidth) / totalDays
	bodyHeight := float64(imageHeight - headerHeight - 20)
	hourHeight := bodyHeight / float64(maxHour-minHour)

	yFor := func(minutes int) float64 {
		return float64(headerHeight) + (float64(minutes)/60-float64(minHour))*hourHeight
	}

	// Часовая шкала слева и горизонтальные линии
	dc.SetColor(textColor)
	for h := minHour; h <= maxHour; h++ {
		y := yFor(h * 60)
		dc.SetColor(gridColor)
		dc.DrawLine(leftLabelsWidth, y, imageWidth, y)
		dc.Stroke()
		dc.SetColor(textColor)
		dc.DrawStringAnchored(fmt.Sprintf("%02d:00", h), leftLabelsWidth-8, y, 1, 0.35)
	}

	for i, day := range days {
		x := float64(leftLabelsWidth) + float64(i)*dayWidth

		// Заголовок дня
		dc.SetColor(textColor)
		label := day.Date.Weekday().String()[:3] + " " + day.Date.Format("02.01")
		dc.DrawStringAnchored(label, x+dayWidth/2, headerHeight/2, 0.5, 0.35)

		if len(day.Open) == 0 {
			dc.SetColor(closedDayColor)
			dc.DrawRectangle(x+dayPaddingX, headerHeight, dayWidth-2*dayPaddingX, bodyHeight)
			dc.Fill()
			continue
		}

		for _, rg := range day.Open {
			drawBlock(dc, x, dayWidth, yFor, rg, openColor)
		}
		for _, rg := range day.Taken {
			drawBlock(dc, x, dayWidth, yFor, rg, takenColor)
			dc.SetColor(textColor)
			dc.DrawStringAnchored(rg.String(), x+dayWidth/2, (yFor(rg.Start)+yFor(rg.End))/2, 0.5, 0.35)
		}

		// Вертикальная граница колонки
		dc.SetColor(gridColor)
		dc.DrawLine(x, headerHeight, x, float64(imageHeight))
		dc.Stroke()
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encode week image: %w", err)
	}
	return buf.Bytes(), nil
}

func drawBlock(dc *gg.Context, x, dayWidth float64, yFor func(int) float64, rg model.TimeRange, c color.RGBA) {
	top := yFor(rg.Start)
	dc.SetColor(c)
	dc.DrawRectangle(x+dayPaddingX, top, dayWidth-2*dayPaddingX, yFor(rg.End)-top)
	dc.Fill()
}

// hourBounds подбирает видимый диапазон часов по рабочим интервалам недели
func hourBounds(days []DaySchedule) (int, int) {
	minHour, maxHour := 24, 0
	for _, day := range days {
		for _, rg := range day.Open {
			if rg.Start/60 < minHour {
				minHour = rg.Start / 60
			}
			if (rg.End+59)/60 > maxHour {
				maxHour = (rg.End + 59) / 60
			}
		}
	}
	if minHour >= maxHour {
		return 8, 20
	}
	return minHour, maxHour
}
