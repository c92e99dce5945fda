package dialog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Freeeeeet/receptionist_bot/internal/contact"
	"github.com/Freeeeeet/receptionist_bot/internal/ledger"
	"github.com/Freeeeeet/receptionist_bot/internal/model"
	"github.com/Freeeeeet/receptionist_bot/internal/timegrid"
	"go.uber.org/zap"
)

// ErrUnknownService введённая услуга не найдена в каталоге
var ErrUnknownService = errors.New("unknown service")

const (
	clientNameMinLength = 2
	offeredSlotsLimit   = 8
)

// Machine машина состояний диалога записи. Все операции принимают
// состояние явно и возвращают его же внутри StepResult; машина не
// хранит собственного изменяемого состояния между вызовами.
type Machine struct {
	catalog      Catalog
	availability Availability
	booker       Booker
	clock        func() time.Time
	logger       *zap.Logger
}

func NewMachine(
	catalog Catalog,
	availability Availability,
	booker Booker,
	clock func() time.Time,
	logger *zap.Logger,
) *Machine {
	return &Machine{
		catalog:      catalog,
		availability: availability,
		booker:       booker,
		clock:        clock,
		logger:       logger,
	}
}

// stepPlan скрытый план фразировки перед переходом. Вычисляется заново
// на каждом шаге, никогда не изменяет ConversationState и не входит
// во внешний контракт машины.
type stepPlan struct {
	missing []string
	prompt  string
}

func (m *Machine) plan(st *ConversationState) stepPlan {
	var p stepPlan
	if st.Service == "" {
		p.missing = append(p.missing, "service")
	}
	if st.Date == "" {
		p.missing = append(p.missing, "date")
	}
	if st.StartTime == "" {
		p.missing = append(p.missing, "time")
	}
	if st.ClientName == "" || st.ClientPhone == "" || st.ClientEmail == "" {
		p.missing = append(p.missing, "contact")
	}

	switch st.Stage {
	case StageCollectingService:
		p.prompt = "На какую услугу вас записать?"
	case StageCollectingDate:
		p.prompt = "На какой день? Можно написать дату, «today», «tomorrow» или день недели."
	case StageCollectingTime:
		p.prompt = "Какое время вам подходит?"
	case StageCollectingContact:
		switch {
		case st.ClientName == "":
			p.prompt = "Как вас зовут?"
		case st.ClientPhone == "":
			p.prompt = "Оставьте, пожалуйста, номер телефона."
		default:
			p.prompt = "И последний шаг — ваш email."
		}
	case StageConfirming:
		p.prompt = "Подтверждаете запись? (да/нет)"
	}
	return p
}

var cancelWords = map[string]bool{
	"cancel": true, "/cancel": true, "отмена": true, "стоп": true,
}

// Cancel переводит диалог в терминальное состояние Cancelled
// и очищает все собранные слоты
func (m *Machine) Cancel(st *ConversationState) *StepResult {
	*st = ConversationState{SessionID: st.SessionID, Stage: StageCancelled}
	return &StepResult{
		State: st,
		Reply: "Хорошо, запись отменена. Если передумаете — просто напишите /book.",
	}
}

// Advance обрабатывает одну реплику пользователя для текущего этапа.
// При ошибке валидации слота машина остаётся на месте, уже принятые
// слоты не перепроверяются. Невосстановимые ошибки (база, конфигурация)
// возвращаются вторым значением.
func (m *Machine) Advance(ctx context.Context, st *ConversationState, input string) (*StepResult, error) {
	text := strings.TrimSpace(input)
	if cancelWords[strings.ToLower(text)] {
		return m.Cancel(st), nil
	}
	if st.Stage.Terminal() {
		return &StepResult{State: st, Reply: "Диалог уже завершён. Начните новую запись командой /book."}, nil
	}

	switch st.Stage {
	case StageCollectingService:
		return m.collectService(ctx, st, text)
	case StageCollectingDate:
		return m.collectDate(ctx, st, text)
	case StageCollectingTime:
		return m.collectTime(ctx, st, text)
	case StageCollectingContact:
		return m.collectContact(ctx, st, text)
	case StageConfirming:
		return m.confirm(ctx, st, text)
	}
	return nil, fmt.Errorf("unexpected stage %q", st.Stage)
}

func (m *Machine) collectService(ctx context.Context, st *ConversationState, text string) (*StepResult, error) {
	svc, err := m.catalog.ServiceByName(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("lookup service: %w", err)
	}
	if svc == nil || !svc.IsActive {
		names, err := m.serviceNames(ctx)
		if err != nil {
			return nil, err
		}
		return &StepResult{
			State: st,
			Err:   fmt.Errorf("%w %q", ErrUnknownService, text),
			Reply: "Такой услуги у нас нет. Выберите одну из списка:\n" + names,
		}, nil
	}

	st.Service = svc.Name
	st.Stage = StageCollectingDate
	m.logStage(st)
	return &StepResult{
		State: st,
		Reply: fmt.Sprintf("Отлично, «%s» (%d мин). %s", svc.Name, svc.DurationMinutes, m.plan(st).prompt),
	}, nil
}

func (m *Machine) collectDate(ctx context.Context, st *ConversationState, text string) (*StepResult, error) {
	phrase, daypart := timegrid.ExtractDaypart(text)
	date, err := timegrid.NormalizeDate(phrase, m.clock())
	if err != nil {
		return &StepResult{
			State: st,
			Err:   err,
			Reply: "Не получилось разобрать дату. Напишите, например, «2025-10-18», «10/18», «tomorrow» или «friday».",
		}, nil
	}

	svc, err := m.service(ctx, st)
	if err != nil {
		return nil, err
	}

	free, err := m.availability.Resolve(ctx, date, svc, daypart, time.Time{})
	if err != nil {
		return nil, err
	}
	if len(free) == 0 {
		return &StepResult{
			State: st,
			Reply: fmt.Sprintf("На %s свободных окон нет. Попробуйте другой день.", date.Format(timegrid.DateLayout)),
		}, nil
	}

	st.Date = date.Format(timegrid.DateLayout)
	st.Stage = StageCollectingTime
	m.logStage(st)
	return &StepResult{
		State: st,
		Reply: fmt.Sprintf("Свободно на %s:\n%s\n%s", st.Date, formatSlots(free), m.plan(st).prompt),
	}, nil
}

func (m *Machine) collectTime(ctx context.Context, st *ConversationState, text string) (*StepResult, error) {
	start, err := timegrid.NormalizeClock(text)
	if err != nil {
		return &StepResult{
			State: st,
			Err:   err,
			Reply: "Не получилось разобрать время. Напишите, например, «14:30» или «2:30 pm».",
		}, nil
	}

	svc, err := m.service(ctx, st)
	if err != nil {
		return nil, err
	}
	date, err := m.date(st)
	if err != nil {
		return nil, err
	}

	free, err := m.availability.Resolve(ctx, date, svc, "", time.Time{})
	if err != nil {
		return nil, err
	}
	if !slotListed(free, start) {
		return &StepResult{
			State: st,
			Err:   &ledger.SlotUnavailableError{Date: st.Date, Start: start},
			Reply: fmt.Sprintf("Время %s занято или вне рабочих часов. Свободно:\n%s", start, formatSlots(free)),
		}, nil
	}

	st.StartTime = start
	st.Stage = StageCollectingContact
	m.logStage(st)
	return &StepResult{State: st, Reply: "Записываю на " + st.Date + " в " + start + ". " + m.plan(st).prompt}, nil
}

// collectContact собирает имя, телефон и email по очереди,
// оставаясь в одном этапе, пока не заполнены все три поля
func (m *Machine) collectContact(ctx context.Context, st *ConversationState, text string) (*StepResult, error) {
	switch {
	case st.ClientName == "":
		if len([]rune(text)) < clientNameMinLength {
			return &StepResult{
				State: st,
				Err:   fmt.Errorf("client name too short"),
				Reply: "Слишком короткое имя, попробуйте ещё раз.",
			}, nil
		}
		st.ClientName = text

	case st.ClientPhone == "":
		phone, err := contact.NormalizePhone(text)
		if err != nil {
			return &StepResult{
				State: st,
				Err:   err,
				Reply: "Не получилось распознать номер. Нужен формат +15551234567 или 10 цифр.",
			}, nil
		}
		st.ClientPhone = phone

	default:
		email, err := contact.NormalizeEmail(text)
		if err != nil {
			return &StepResult{
				State: st,
				Err:   err,
				Reply: "Похоже, в email опечатка. Попробуйте ещё раз.",
			}, nil
		}
		st.ClientEmail = email
	}

	if st.ClientName == "" || st.ClientPhone == "" || st.ClientEmail == "" {
		return &StepResult{State: st, Reply: m.plan(st).prompt}, nil
	}

	svc, err := m.service(ctx, st)
	if err != nil {
		return nil, err
	}

	st.Stage = StageConfirming
	m.logStage(st)
	return &StepResult{State: st, Reply: m.draftSummary(st, svc)}, nil
}

func (m *Machine) confirm(ctx context.Context, st *ConversationState, text string) (*StepResult, error) {
	switch strings.ToLower(text) {
	case "да", "yes", "y", "ok", "ок", "confirm", "подтверждаю":
	case "нет", "no":
		return m.Cancel(st), nil
	default:
		return &StepResult{State: st, Reply: m.plan(st).prompt}, nil
	}

	svc, err := m.service(ctx, st)
	if err != nil {
		return nil, err
	}
	date, err := m.date(st)
	if err != nil {
		return nil, err
	}

	booking, err := m.booker.Commit(ctx, date, st.StartTime, svc, model.Client{
		Name:  st.ClientName,
		Phone: st.ClientPhone,
		Email: st.ClientEmail,
	})

	var unavailable *ledger.SlotUnavailableError
	if errors.As(err, &unavailable) {
		// Слот увели между предложением и подтверждением: возвращаемся
		// к выбору времени, дата и услуга остаются, время сбрасывается
		st.StartTime = ""
		st.Stage = StageCollectingTime
		m.logStage(st)

		free, resolveErr := m.availability.Resolve(ctx, date, svc, "", time.Time{})
		if resolveErr != nil {
			return nil, resolveErr
		}
		return &StepResult{
			State: st,
			Err:   unavailable,
			Reply: "К сожалению, это время только что заняли. Свободно:\n" + formatSlots(free),
		}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("commit booking: %w", err)
	}

	st.Stage = StageCompleted
	m.logStage(st)
	return &StepResult{
		State:   st,
		Booking: booking,
		Reply: fmt.Sprintf("Готово! Вы записаны: %s, %s в %s. Ждём вас!",
			booking.ServiceName, booking.Date, booking.Start),
	}, nil
}

func (m *Machine) service(ctx context.Context, st *ConversationState) (*model.ServiceDefinition, error) {
	svc, err := m.catalog.ServiceByName(ctx, st.Service)
	if err != nil {
		return nil, fmt.Errorf("lookup service: %w", err)
	}
	if svc == nil {
		return nil, fmt.Errorf("%w %q", ErrUnknownService, st.Service)
	}
	return svc, nil
}

func (m *Machine) date(st *ConversationState) (time.Time, error) {
	date, err := time.ParseInLocation(timegrid.DateLayout, st.Date, m.clock().Location())
	if err != nil {
		return time.Time{}, fmt.Errorf("parse stored date: %w", err)
	}
	return date, nil
}

func (m *Machine) serviceNames(ctx context.Context) (string, error) {
	services, err := m.catalog.Services(ctx)
	if err != nil {
		return "", fmt.Errorf("list services: %w", err)
	}
	var b strings.Builder
	for _, svc := range services {
		if !svc.IsActive {
			continue
		}
		fmt.Fprintf(&b, "• %s (%d мин)\n", svc.Name, svc.DurationMinutes)
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

func (m *Machine) draftSummary(st *ConversationState, svc *model.ServiceDefinition) string {
	var b strings.Builder
	b.WriteString("Проверьте, всё ли верно:\n")
	fmt.Fprintf(&b, "• Услуга: %s (%d мин)\n", svc.Name, svc.DurationMinutes)
	fmt.Fprintf(&b, "• Дата: %s\n", st.Date)
	fmt.Fprintf(&b, "• Время: %s\n", st.StartTime)
	fmt.Fprintf(&b, "• Имя: %s\n", st.ClientName)
	fmt.Fprintf(&b, "• Телефон: %s\n", st.ClientPhone)
	fmt.Fprintf(&b, "• Email: %s\n", st.ClientEmail)
	b.WriteString("\n" + m.plan(st).prompt)
	return b.String()
}

func (m *Machine) logStage(st *ConversationState) {
	m.logger.Info("Dialog stage changed",
		zap.String("session_id", st.SessionID),
		zap.String("stage", string(st.Stage)),
		zap.Strings("missing", m.plan(st).missing),
	)
}

func formatSlots(slots []string) string {
	if len(slots) > offeredSlotsLimit {
		slots = slots[:offeredSlotsLimit]
	}
	return "• " + strings.Join(slots, "\n• ")
}

func slotListed(slots []string, start string) bool {
	for _, s := range slots {
		if s == start {
			return true
		}
	}
	return false
}
