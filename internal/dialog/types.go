package dialog

import (
	"context"
	"time"

	"github.com/Freeeeeet/receptionist_bot/internal/model"
	"github.com/Freeeeeet/receptionist_bot/internal/timegrid"
)

// Stage этап диалога записи. Этапы проходятся строго по порядку:
// услуга -> дата -> время -> контакты -> подтверждение.
type Stage string

const (
	StageCollectingService Stage = "collecting_service"
	StageCollectingDate    Stage = "collecting_date"
	StageCollectingTime    Stage = "collecting_time"
	StageCollectingContact Stage = "collecting_contact"
	StageConfirming        Stage = "confirming"
	StageCompleted         Stage = "completed"
	StageCancelled         Stage = "cancelled"
)

// Terminal проверяет, завершён ли диалог
func (s Stage) Terminal() bool {
	return s == StageCompleted || s == StageCancelled
}

// ConversationState заполняемые слоты одной сессии диалога.
// Передаётся явно в каждую операцию машины; никакого глобального
// изменяемого состояния.
type ConversationState struct {
	SessionID   string `json:"session_id"`
	Stage       Stage  `json:"stage"`
	Service     string `json:"service,omitempty"`
	Date        string `json:"date,omitempty"`       // "YYYY-MM-DD"
	StartTime   string `json:"start_time,omitempty"` // "HH:MM"
	ClientName  string `json:"client_name,omitempty"`
	ClientPhone string `json:"client_phone,omitempty"`
	ClientEmail string `json:"client_email,omitempty"`
}

// StateUpdate частичное обновление слотов состояния
type StateUpdate struct {
	Service   *string
	Date      *string
	StartTime *string
	Name      *string
	Phone     *string
	Email     *string
}

// StepResult итог обработки одной реплики пользователя.
// Err заполнен при восстановимой ошибке валидации текущего слота;
// машина при этом остаётся на том же этапе.
type StepResult struct {
	State   *ConversationState
	Reply   string
	Booking *model.Booking
	Err     error
}

// Catalog каталог услуг салона
type Catalog interface {
	Services(ctx context.Context) ([]*model.ServiceDefinition, error)
	ServiceByName(ctx context.Context, name string) (*model.ServiceDefinition, error)
}

// Availability разрешение доступных стартов (реализуется schedule.Resolver)
type Availability interface {
	Resolve(ctx context.Context, date time.Time, svc *model.ServiceDefinition, daypart timegrid.Daypart, now time.Time) ([]string, error)
}

// Booker коммит записи (реализуется ledger.Ledger)
type Booker interface {
	Commit(ctx context.Context, date time.Time, start string, svc *model.ServiceDefinition, client model.Client) (*model.Booking, error)
}
