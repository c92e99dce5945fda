package schedule

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/Freeeeeet/receptionist_bot/internal/model"
	"go.uber.org/zap"
)

type fakeHours struct {
	wh *model.WorkingHours
}

func (f *fakeHours) WorkingHours(ctx context.Context) (*model.WorkingHours, error) {
	return f.wh, nil
}

type fakeCalendar struct {
	taken map[string][]model.TimeRange
	err   error
}

func (f *fakeCalendar) TakenRanges(ctx context.Context, date string) ([]model.TimeRange, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.taken[date], nil
}

// Понедельник
var monday = time.Date(2025, time.October, 13, 0, 0, 0, 0, time.UTC)

func defaultWorkingHours() *model.WorkingHours {
	return &model.WorkingHours{
		Weekly: model.WeeklyHours{
			time.Monday: {{Start: 9 * 60, End: 17 * 60}},
		},
		Exceptions: map[string][]model.TimeRange{},
	}
}

func haircut() *model.ServiceDefinition {
	return &model.ServiceDefinition{Name: "Basic Haircut", DurationMinutes: 30, IsActive: true}
}

func newTestResolver(t *testing.T, wh *model.WorkingHours, cal *fakeCalendar, now time.Time) *Resolver {
	t.Helper()
	if cal == nil {
		cal = &fakeCalendar{}
	}
	clock := func() time.Time { return now }
	return NewResolver(&fakeHours{wh: wh}, cal, 15, clock, zap.NewNop())
}

func TestResolveWeeklyHours(t *testing.T) {
	// Пн 09:00-17:00, шаг 15, услуга 30 минут:
	// первый слот 09:00, последний 16:30
	r := newTestResolver(t, defaultWorkingHours(), nil, monday)

	free, err := r.Resolve(context.Background(), monday, haircut(), "", time.Time{})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(free) == 0 {
		t.Fatal("expected slots")
	}
	if free[0] != "09:00" {
		t.Errorf("first slot = %s, want 09:00", free[0])
	}
	if last := free[len(free)-1]; last != "16:30" {
		t.Errorf("last slot = %s, want 16:30", last)
	}
}

func TestResolveSubtractsCommittedBlocks(t *testing.T) {
	// Занят блок 10:00-10:30: слот 10:00 пропадает,
	// 09:45 и 10:30 остаются
	cal := &fakeCalendar{taken: map[string][]model.TimeRange{
		"2025-10-13": {{Start: 10 * 60, End: 10*60 + 30}},
	}}
	r := newTestResolver(t, defaultWorkingHours(), cal, monday)

	free, err := r.Resolve(context.Background(), monday, haircut(), "", time.Time{})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}

	listed := make(map[string]bool, len(free))
	for _, s := range free {
		listed[s] = true
	}
	if listed["10:00"] {
		t.Error("10:00 overlaps a committed block and must be absent")
	}
	if !listed["09:45"] {
		t.Error("09:45 must be present")
	}
	if !listed["10:30"] {
		t.Error("10:30 must be present")
	}
}

func TestResolveExceptionOverridesWeekly(t *testing.T) {
	// Исключение 09:00-13:00 заменяет недельные 09:00-17:00 целиком
	wh := defaultWorkingHours()
	wh.Exceptions["2025-10-13"] = []model.TimeRange{{Start: 9 * 60, End: 13 * 60}}
	r := newTestResolver(t, wh, nil, monday)

	free, err := r.Resolve(context.Background(), monday, haircut(), "", time.Time{})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(free) == 0 {
		t.Fatal("expected slots")
	}
	if last := free[len(free)-1]; last != "12:30" {
		t.Errorf("last slot = %s, want 12:30", last)
	}
}

func TestResolveEmptyExceptionMeansClosed(t *testing.T) {
	wh := defaultWorkingHours()
	wh.Exceptions["2025-10-13"] = []model.TimeRange{}
	r := newTestResolver(t, wh, nil, monday)

	free, err := r.Resolve(context.Background(), monday, haircut(), "", time.Time{})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(free) != 0 {
		t.Fatalf("closed day must yield no slots, got %v", free)
	}
}

func TestResolveTodayCutoff(t *testing.T) {
	// Сейчас 14:31: слот 14:00 (конец 14:30) отброшен,
	// слот 14:15 (конец 14:45) остаётся
	now := time.Date(2025, time.October, 13, 14, 31, 0, 0, time.UTC)
	r := newTestResolver(t, defaultWorkingHours(), nil, now)

	free, err := r.Resolve(context.Background(), monday, haircut(), "", time.Time{})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}

	listed := make(map[string]bool, len(free))
	for _, s := range free {
		listed[s] = true
	}
	if listed["14:00"] {
		t.Error("14:00 ends in the past and must be dropped")
	}
	if !listed["14:15"] {
		t.Error("14:15 ends in the future and must be kept")
	}
}

func TestResolveDaypartFilter(t *testing.T) {
	r := newTestResolver(t, defaultWorkingHours(), nil, monday)

	free, err := r.Resolve(context.Background(), monday, haircut(), "afternoon", time.Time{})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(free) == 0 {
		t.Fatal("expected afternoon slots")
	}
	if free[0] != "12:00" {
		t.Errorf("first afternoon slot = %s, want 12:00", free[0])
	}
	if last := free[len(free)-1]; last != "16:30" {
		t.Errorf("last afternoon slot = %s, want 16:30", last)
	}
}

func TestResolveIsIdempotent(t *testing.T) {
	r := newTestResolver(t, defaultWorkingHours(), nil, monday)

	first, err := r.Resolve(context.Background(), monday, haircut(), "", time.Time{})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	second, err := r.Resolve(context.Background(), monday, haircut(), "", time.Time{})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("resolve is not idempotent: %v vs %v", first, second)
	}
}

func TestResolveBadConfiguration(t *testing.T) {
	tests := []struct {
		name   string
		ranges []model.TimeRange
	}{
		{name: "end before start", ranges: []model.TimeRange{{Start: 17 * 60, End: 9 * 60}}},
		{name: "overlapping", ranges: []model.TimeRange{{Start: 9 * 60, End: 13 * 60}, {Start: 12 * 60, End: 17 * 60}}},
		{name: "out of order", ranges: []model.TimeRange{{Start: 14 * 60, End: 17 * 60}, {Start: 9 * 60, End: 12 * 60}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wh := &model.WorkingHours{
				Weekly:     model.WeeklyHours{time.Monday: tt.ranges},
				Exceptions: map[string][]model.TimeRange{},
			}
			r := newTestResolver(t, wh, nil, monday)

			free, err := r.Resolve(context.Background(), monday, haircut(), "", time.Time{})
			if err == nil {
				t.Fatal("expected configuration error")
			}
			var confErr *ConfigurationError
			if !errors.As(err, &confErr) {
				t.Fatalf("expected *ConfigurationError, got %T", err)
			}
			if len(free) != 0 {
				t.Fatalf("bad configuration must yield no slots, got %v", free)
			}
		})
	}
}

func TestResolveSurfacesCalendarError(t *testing.T) {
	// Сбой чтения календаря не превращается в "все слоты свободны"
	readErr := errors.New("connection reset")
	cal := &fakeCalendar{err: readErr}
	r := newTestResolver(t, defaultWorkingHours(), cal, monday)

	free, err := r.Resolve(context.Background(), monday, haircut(), "", time.Time{})
	if !errors.Is(err, readErr) {
		t.Fatalf("err = %v, want wrapped %v", err, readErr)
	}
	if free != nil {
		t.Fatalf("free = %v, want nil on calendar error", free)
	}
}

func TestHoursAppliesException(t *testing.T) {
	wh := defaultWorkingHours()
	wh.Exceptions["2025-10-13"] = []model.TimeRange{{Start: 10 * 60, End: 14 * 60}}
	r := newTestResolver(t, wh, nil, monday)

	day, err := r.Hours(context.Background(), monday)
	if err != nil {
		t.Fatalf("hours: %v", err)
	}
	if day.Closed {
		t.Fatal("day must not be closed")
	}
	want := []model.TimeRange{{Start: 10 * 60, End: 14 * 60}}
	if !reflect.DeepEqual(day.Ranges, want) {
		t.Fatalf("ranges = %v, want %v", day.Ranges, want)
	}
	if day.Weekday != "Mon" {
		t.Errorf("weekday = %s, want Mon", day.Weekday)
	}
}
