package controller

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Freeeeeet/receptionist_bot/internal/controller/formatting"
	"github.com/Freeeeeet/receptionist_bot/internal/controller/weekimage"
	"github.com/Freeeeeet/receptionist_bot/internal/dialog"
	"github.com/Freeeeeet/receptionist_bot/internal/schedule"
	"github.com/Freeeeeet/receptionist_bot/internal/service"
	"github.com/Freeeeeet/receptionist_bot/internal/timegrid"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// Handlers содержит все зависимости для обработки команд
type Handlers struct {
	reception    *service.ReceptionService
	machine      *dialog.Machine
	sessions     *dialog.Manager
	calendar     schedule.CalendarReader
	clock        func() time.Time
	businessName string
	logger       *zap.Logger
}

func NewHandlers(
	reception *service.ReceptionService,
	machine *dialog.Machine,
	sessions *dialog.Manager,
	calendar schedule.CalendarReader,
	clock func() time.Time,
	businessName string,
	logger *zap.Logger,
) *Handlers {
	return &Handlers{
		reception:    reception,
		machine:      machine,
		sessions:     sessions,
		calendar:     calendar,
		clock:        clock,
		businessName: businessName,
		logger:       logger,
	}
}

func sessionID(update *models.Update) string {
	return strconv.FormatInt(update.Message.From.ID, 10)
}

// HandleStart приветствие
func (h *Handlers) HandleStart(ctx context.Context, b *bot.Bot, update *models.Update) {
	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: update.Message.Chat.ID,
		Text: fmt.Sprintf("Здравствуйте! Это «%s».\n\n"+
			"/services — список услуг\n"+
			"/hours — часы работы\n"+
			"/book — записаться\n"+
			"/cancel — отменить запись", h.businessName),
	})
}

// HandleServices список услуг
func (h *Handlers) HandleServices(ctx context.Context, b *bot.Bot, update *models.Update) {
	services, err := h.reception.Services(ctx)
	if err != nil {
		h.logger.Error("Failed to list services", zap.Error(err))
		h.sendError(ctx, b, update.Message.Chat.ID)
		return
	}

	var sb strings.Builder
	sb.WriteString("Наши услуги:\n")
	for _, svc := range services {
		sb.WriteString(formatting.FormatService(svc) + "\n")
	}
	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: update.Message.Chat.ID,
		Text:   sb.String(),
	})
}

// HandleHours часы работы на дату: "/hours", "/hours tomorrow", "/hours 10/18"
func (h *Handlers) HandleHours(ctx context.Context, b *bot.Bot, update *models.Update) {
	phrase := strings.TrimSpace(strings.TrimPrefix(update.Message.Text, "/hours"))

	day, err := h.reception.GetHours(ctx, phrase)
	if err != nil {
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: update.Message.Chat.ID,
			Text:   "Не получилось разобрать дату. Напишите, например, «/hours tomorrow».",
		})
		return
	}

	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: update.Message.Chat.ID,
		Text:   fmt.Sprintf("%s (%s): %s", day.Date, day.Weekday, formatting.FormatRanges(day.Ranges)),
	})
}

// HandleBook начинает диалог записи заново
func (h *Handlers) HandleBook(ctx context.Context, b *bot.Bot, update *models.Update) {
	id := sessionID(update)
	h.sessions.Turn(id, func(st *dialog.ConversationState) {
		*st = dialog.ConversationState{SessionID: id, Stage: dialog.StageCollectingService}
	})

	h.logger.Info("Booking dialog started", zap.String("session_id", id))

	services, err := h.reception.Services(ctx)
	if err != nil {
		h.logger.Error("Failed to list services", zap.Error(err))
		h.sendError(ctx, b, update.Message.Chat.ID)
		return
	}

	var sb strings.Builder
	sb.WriteString("Давайте запишем вас! На какую услугу?\n")
	for _, svc := range services {
		sb.WriteString(formatting.FormatService(svc) + "\n")
	}
	sb.WriteString("\nДля отмены используйте /cancel")

	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: update.Message.Chat.ID,
		Text:   sb.String(),
	})
}

// HandleCancel отменяет активный диалог
func (h *Handlers) HandleCancel(ctx context.Context, b *bot.Bot, update *models.Update) {
	id := sessionID(update)
	var reply string
	h.sessions.Turn(id, func(st *dialog.ConversationState) {
		reply = h.machine.Cancel(st).Reply
	})
	h.sessions.Clear(id)

	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: update.Message.Chat.ID,
		Text:   reply,
	})
}

// HandleWeek рисует картинку загрузки на ближайшую неделю
func (h *Handlers) HandleWeek(ctx context.Context, b *bot.Bot, update *models.Update) {
	days, err := h.weekSchedule(ctx)
	if err != nil {
		h.logger.Error("Failed to build week schedule", zap.Error(err))
		h.sendError(ctx, b, update.Message.Chat.ID)
		return
	}

	imageData, err := weekimage.Render(days)
	if err != nil {
		h.logger.Error("Failed to render week image", zap.Error(err))
		h.sendError(ctx, b, update.Message.Chat.ID)
		return
	}

	b.SendPhoto(ctx, &bot.SendPhotoParams{
		ChatID: update.Message.Chat.ID,
		Photo:  &models.InputFileUpload{Filename: "week.png", Data: bytes.NewReader(imageData)},
	})
}

func (h *Handlers) weekSchedule(ctx context.Context) ([]weekimage.DaySchedule, error) {
	now := h.clock()
	days := make([]weekimage.DaySchedule, 0, 7)
	for i := 0; i < 7; i++ {
		date := now.AddDate(0, 0, i)
		day, err := h.reception.GetHours(ctx, date.Format(timegrid.DateLayout))
		if err != nil {
			return nil, err
		}
		taken, err := h.calendar.TakenRanges(ctx, day.Date)
		if err != nil {
			return nil, err
		}
		days = append(days, weekimage.DaySchedule{Date: date, Open: day.Ranges, Taken: taken})
	}
	return days, nil
}

// HandleTextMessage свободный текст: очередная реплика диалога записи
func (h *Handlers) HandleTextMessage(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || strings.HasPrefix(update.Message.Text, "/") {
		return
	}

	// Бот запускает обработчики параллельно; Turn гарантирует, что
	// два хода одной сессии не выполняются одновременно
	id := sessionID(update)
	var result *dialog.StepResult
	var stepErr error
	h.sessions.Turn(id, func(st *dialog.ConversationState) {
		result, stepErr = h.machine.Advance(ctx, st, update.Message.Text)
		if stepErr == nil && result.State.Stage.Terminal() {
			h.sessions.Clear(id)
		}
	})
	if stepErr != nil {
		h.logger.Error("Dialog step failed",
			zap.String("session_id", id),
			zap.Error(stepErr))
		h.sendError(ctx, b, update.Message.Chat.ID)
		return
	}

	if result.Err != nil {
		h.logger.Warn("Slot validation failed",
			zap.String("session_id", id),
			zap.String("stage", string(result.State.Stage)),
			zap.Error(result.Err))
	}

	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: update.Message.Chat.ID,
		Text:   result.Reply,
	})
}

func (h *Handlers) sendError(ctx context.Context, b *bot.Bot, chatID int64) {
	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   "Что-то пошло не так, попробуйте ещё раз чуть позже.",
	})
}
