package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Freeeeeet/receptionist_bot/internal/contact"
	"github.com/Freeeeeet/receptionist_bot/internal/dialog"
	"github.com/Freeeeeet/receptionist_bot/internal/ledger"
	"github.com/Freeeeeet/receptionist_bot/internal/model"
	"github.com/Freeeeeet/receptionist_bot/internal/schedule"
	"github.com/Freeeeeet/receptionist_bot/internal/timegrid"
	"go.uber.org/zap"
)

// BookingLog журнал подтверждённых записей (только чтение)
type BookingLog interface {
	BookingsByDate(ctx context.Context, date string) ([]*model.Booking, error)
}

// AvailabilityResult ответ на запрос доступности
type AvailabilityResult struct {
	Date            string   `json:"date"`
	Weekday         string   `json:"weekday"`
	Service         string   `json:"service"`
	DurationMinutes int      `json:"duration_minutes"`
	Available       []string `json:"available"`
	Total           int      `json:"total_available"`
	Closed          bool     `json:"closed"`
}

// NowInfo текущий момент в таймзоне салона
type NowInfo struct {
	Timezone string `json:"timezone"`
	ISO      string `json:"iso"`
	Date     string `json:"date"`
	Time     string `json:"time"`
	Weekday  string `json:"weekday"`
}

// ReceptionService операции ядра, которые видит внешний слой оркестрации:
// часы работы, доступность, бронирование и состояние диалога.
type ReceptionService struct {
	catalog  dialog.Catalog
	resolver *schedule.Resolver
	ledger   *ledger.Ledger
	log      BookingLog
	sessions *dialog.Manager
	clock    func() time.Time
	logger   *zap.Logger
}

func NewReceptionService(
	catalog dialog.Catalog,
	resolver *schedule.Resolver,
	bookingLedger *ledger.Ledger,
	bookingLog BookingLog,
	sessions *dialog.Manager,
	clock func() time.Time,
	logger *zap.Logger,
) *ReceptionService {
	return &ReceptionService{
		catalog:  catalog,
		resolver: resolver,
		ledger:   bookingLedger,
		log:      bookingLog,
		sessions: sessions,
		clock:    clock,
		logger:   logger,
	}
}

// Now возвращает текущие дату и время салона
func (s *ReceptionService) Now() NowInfo {
	now := s.clock()
	return NowInfo{
		Timezone: now.Location().String(),
		ISO:      now.Format(time.RFC3339),
		Date:     now.Format(timegrid.DateLayout),
		Time:     model.MinutesToClock(now.Hour()*60 + now.Minute()),
		Weekday:  now.Weekday().String()[:3],
	}
}

// Services возвращает активные услуги салона
func (s *ReceptionService) Services(ctx context.Context) ([]*model.ServiceDefinition, error) {
	return s.catalog.Services(ctx)
}

// GetHours возвращает рабочие интервалы на дату из фразы
// (недельный шаблон с применённым исключением)
func (s *ReceptionService) GetHours(ctx context.Context, datePhrase string) (*schedule.DayHours, error) {
	phrase, _ := timegrid.ExtractDaypart(datePhrase)
	if phrase == "" {
		phrase = "today"
	}
	date, err := timegrid.NormalizeDate(phrase, s.clock())
	if err != nil {
		return nil, err
	}
	return s.resolver.Hours(ctx, date)
}

// CheckAvailability возвращает упорядоченный список доступных стартов.
// Часть дня может быть встроена во фразу ("tomorrow afternoon").
// now переопределяет "сейчас" для отсечки сегодняшних слотов; нулевое
// значение — часы салона. limit <= 0 означает лимит по умолчанию.
func (s *ReceptionService) CheckAvailability(
	ctx context.Context,
	datePhrase, serviceName string,
	limit int,
	now time.Time,
) (*AvailabilityResult, error) {
	phrase, daypart := timegrid.ExtractDaypart(datePhrase)
	if phrase == "" {
		phrase = "today"
	}
	date, err := timegrid.NormalizeDate(phrase, s.clock())
	if err != nil {
		return nil, err
	}

	svc, err := s.serviceByName(ctx, serviceName)
	if err != nil {
		return nil, err
	}

	day, err := s.resolver.Hours(ctx, date)
	if err != nil {
		return nil, err
	}

	free, err := s.resolver.Resolve(ctx, date, svc, daypart, now)
	if err != nil {
		return nil, err
	}

	// Closed означает "нет рабочих часов", а не "всё разобрано":
	// полностью занятый открытый день отдаёт Closed=false и Total=0
	result := &AvailabilityResult{
		Date:            date.Format(timegrid.DateLayout),
		Weekday:         date.Weekday().String()[:3],
		Service:         svc.Name,
		DurationMinutes: svc.DurationMinutes,
		Available:       free,
		Total:           len(free),
		Closed:          day.Closed,
	}

	if limit <= 0 {
		limit = 8
	}
	if len(result.Available) > limit {
		result.Available = result.Available[:limit]
	}

	return result, nil
}

// BookAppointment проверяет контакты, нормализует дату и время
// и коммитит запись через Booking Ledger
func (s *ReceptionService) BookAppointment(
	ctx context.Context,
	datePhrase, startTime, serviceName string,
	client model.Client,
) (*model.Booking, error) {
	phone, err := contact.NormalizePhone(client.Phone)
	if err != nil {
		return nil, err
	}
	email, err := contact.NormalizeEmail(client.Email)
	if err != nil {
		return nil, err
	}
	client.Phone = phone
	client.Email = email

	phrase, _ := timegrid.ExtractDaypart(datePhrase)
	date, err := timegrid.NormalizeDate(phrase, s.clock())
	if err != nil {
		return nil, err
	}
	start, err := timegrid.NormalizeClock(startTime)
	if err != nil {
		return nil, err
	}
	svc, err := s.serviceByName(ctx, serviceName)
	if err != nil {
		return nil, err
	}

	return s.ledger.Commit(ctx, date, start, svc, client)
}

// BookingsOn возвращает журнал записей на дату
func (s *ReceptionService) BookingsOn(ctx context.Context, datePhrase string) ([]*model.Booking, error) {
	date, err := timegrid.NormalizeDate(datePhrase, s.clock())
	if err != nil {
		return nil, err
	}
	return s.log.BookingsByDate(ctx, date.Format(timegrid.DateLayout))
}

// ConversationState возвращает состояние сессии диалога
// (создаёт новое при первом обращении)
func (s *ReceptionService) ConversationState(sessionID string) *dialog.ConversationState {
	return s.sessions.Get(sessionID)
}

// UpdateConversationState применяет частичное обновление слотов.
// Дата в обновлении нормализуется сразу, как и остальной ввод дат.
func (s *ReceptionService) UpdateConversationState(sessionID string, upd dialog.StateUpdate) (*dialog.ConversationState, error) {
	if upd.Date != nil {
		normalized, err := s.normalizeDate(*upd.Date)
		if err != nil {
			return nil, err
		}
		upd.Date = &normalized
	}
	return s.sessions.Apply(sessionID, upd), nil
}

// NormalizeAndStoreDate нормализует фразу с датой и сохраняет её
// в состояние сессии
func (s *ReceptionService) NormalizeAndStoreDate(sessionID, datePhrase string) (string, error) {
	normalized, err := s.normalizeDate(datePhrase)
	if err != nil {
		return "", err
	}
	s.sessions.Apply(sessionID, dialog.StateUpdate{Date: &normalized})
	return normalized, nil
}

func (s *ReceptionService) normalizeDate(phrase string) (string, error) {
	cleaned, _ := timegrid.ExtractDaypart(phrase)
	date, err := timegrid.NormalizeDate(cleaned, s.clock())
	if err != nil {
		return "", err
	}
	return date.Format(timegrid.DateLayout), nil
}

func (s *ReceptionService) serviceByName(ctx context.Context, name string) (*model.ServiceDefinition, error) {
	svc, err := s.catalog.ServiceByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("lookup service: %w", err)
	}
	if svc == nil {
		return nil, fmt.Errorf("%w %q", dialog.ErrUnknownService, name)
	}
	return svc, nil
}
